// Package ledger records what every crawl run did in a sqlite database:
// adapter outcomes, persisted datasets and merge collisions.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"wikispider/internal/components/assert"
	"wikispider/internal/components/chrono"
	"wikispider/internal/scheduler"

	_ "embed"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

var tracer = otel.Tracer("wikispider/internal/ledger")

func wrapOpen(err error) error {
	return fmt.Errorf("open ledger: %w", err)
}

// Open opens the ledger database and applies the schema. Paths starting
// with libsql:// are opened with the libsql driver, anything else is a
// local sqlite file.
func Open(file string) (*sql.DB, error) {
	if strings.HasPrefix(file, "libsql://") {
		db, err := sql.Open("libsql", file)
		if err != nil {
			return nil, wrapOpen(err)
		}
		_, err = db.Exec(Schema)
		if err != nil {
			db.Close()
			return nil, wrapOpen(err)
		}
		return db, nil
	}

	if file != ":memory:" {
		err := os.MkdirAll(filepath.Dir(file), 0777)
		if err != nil {
			return nil, wrapOpen(err)
		}
	}
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapOpen(err)
	}

	// sqlite only supports a single writer
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, wrapOpen(err)
	}
	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, wrapOpen(err)
	}
	return db, nil
}

// Ledger records a single run, it implements scheduler.Observer.
type Ledger struct {
	db    *sql.DB
	clock chrono.API
	runID string
}

// Begin creates a new run with a random id.
func Begin(ctx context.Context, db *sql.DB, clock chrono.API) (*Ledger, error) {
	assert.NotNil(db, "db")
	assert.NotNil(clock, "clock")

	id, err := random.String(8)
	if err != nil {
		return nil, err
	}
	_, err = db.ExecContext(
		ctx,
		"insert into run(id, started_at) values (?, ?)",
		id, clock.Now().UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	return &Ledger{db: db, clock: clock, runID: id}, nil
}

func (l *Ledger) RunID() string {
	return l.runID
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (l *Ledger) ObserveGroup(ctx context.Context, result scheduler.GroupResult) error {
	ctx, span := tracer.Start(ctx, "ObserveGroup")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", l.runID),
		attribute.String("game", string(result.Game)),
		attribute.String("category", string(result.Category)),
	)

	err := l.observeGroup(ctx, result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to record group")
		return fmt.Errorf("record %s/%s: %w", result.Game, result.Category, err)
	}
	return nil
}

func (l *Ledger) observeGroup(ctx context.Context, result scheduler.GroupResult) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, a := range result.Adapters {
		_, err = tx.ExecContext(
			ctx,
			`insert into adapter_result(run_id, game, category, source, priority, records, error, duration_ms)
			values (?, ?, ?, ?, ?, ?, ?, ?)`,
			l.runID, string(result.Game), string(result.Category),
			a.Source, a.Priority, a.Flattened, errorText(a.Err), a.Duration.Milliseconds(),
		)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(
		ctx,
		`insert into dataset(run_id, game, category, path, records, dropped, error)
		values (?, ?, ?, ?, ?, ?, ?)`,
		l.runID, string(result.Game), string(result.Category),
		result.Path, result.Records, result.Dropped, errorText(result.Err),
	)
	if err != nil {
		return err
	}

	for _, c := range result.Collisions {
		_, err = tx.ExecContext(
			ctx,
			`insert into collision(run_id, game, category, record_key, field, kept, discarded, batch, similarity)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.runID, string(result.Game), string(result.Category),
			c.Key, c.Field, fmt.Sprint(c.Kept), fmt.Sprint(c.Discarded), c.Batch, c.Similarity,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Finish marks the run as done, runErr is the error the run ended with.
func (l *Ledger) Finish(ctx context.Context, failed bool, runErr error) error {
	_, err := l.db.ExecContext(
		ctx,
		"update run set finished_at = ?, failed = ?, error = ? where id = ?",
		l.clock.Now().UnixMilli(), failed || runErr != nil, errorText(runErr), l.runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Failed     bool
	Error      string
	Datasets   int
	Records    int
	Collisions int
}

// Recent returns the latest runs, newest first.
func Recent(ctx context.Context, db *sql.DB, limit int, loc *time.Location) ([]Run, error) {
	rows, err := db.QueryContext(
		ctx,
		`select
			run.id, run.started_at, coalesce(run.finished_at, 0), run.failed, run.error,
			(select count(*) from dataset where dataset.run_id = run.id and dataset.path != ''),
			(select coalesce(sum(records), 0) from dataset where dataset.run_id = run.id),
			(select count(*) from collision where collision.run_id = run.id)
		from run
		order by run.started_at desc
		limit ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		err := rows.Scan(&r.ID, &started, &finished, &r.Failed, &r.Error, &r.Datasets, &r.Records, &r.Collisions)
		if err != nil {
			return nil, err
		}
		r.StartedAt = time.UnixMilli(started).In(loc)
		if finished > 0 {
			r.FinishedAt = time.UnixMilli(finished).In(loc)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type CollisionRow struct {
	Game       string
	Category   string
	Key        string
	Field      string
	Kept       string
	Discarded  string
	Similarity float64
}

// Collisions lists the collisions recorded for a run.
func Collisions(ctx context.Context, db *sql.DB, runID string) ([]CollisionRow, error) {
	rows, err := db.QueryContext(
		ctx,
		`select game, category, record_key, field, kept, discarded, similarity
		from collision where run_id = ?
		order by game, category, record_key`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CollisionRow
	for rows.Next() {
		var c CollisionRow
		err := rows.Scan(&c.Game, &c.Category, &c.Key, &c.Field, &c.Kept, &c.Discarded, &c.Similarity)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
