package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"
	"wikispider/internal/components/assert"
	"wikispider/internal/components/telemetry"
	"wikispider/internal/merge"
	"wikispider/internal/spider"
	"wikispider/internal/wiki"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("wikispider/internal/scheduler")
var meter = otel.Meter("wikispider/internal/scheduler")
var recordCounter, _ = meter.Int64Counter(
	"scheduler.adapter_records",
	metric.WithDescription("Records produced by an adapter."),
)

const (
	report_scheduler_crawl   = "scheduler.crawl"
	report_scheduler_flatten = "scheduler.flatten"
	report_scheduler_policy  = "scheduler.policy"
	report_scheduler_merge   = "scheduler.merge"
	report_scheduler_save    = "scheduler.save"
	report_scheduler_observe = "scheduler.observe"
	report_scheduler_nodata  = "scheduler.no-data"
	report_scheduler_count   = "scheduler.count"
)

var ErrAlreadyRan = errors.New("scheduler already ran")

// Sink persists the merged dataset of a group and returns where it went.
type Sink interface {
	Save(game wiki.Game, category wiki.Category, records []map[string]any) (string, error)
}

// Observer receives the outcome of every group once it is done.
type Observer interface {
	ObserveGroup(ctx context.Context, result GroupResult) error
}

type AdapterResult struct {
	Source   string
	Priority int
	Records  int
	// Flattened is the number of records that made it into the merge.
	Flattened int
	Err       error
	Duration  time.Duration
}

func (r AdapterResult) Failed() bool {
	return r.Err != nil
}

type GroupResult struct {
	Game       wiki.Game
	Category   wiki.Category
	Adapters   []AdapterResult
	Records    int
	Dropped    int
	Collisions []merge.Collision
	// Path is where the dataset was saved, empty when nothing was saved.
	Path string
	// Err is set when the group could not produce a dataset for a reason
	// other than every adapter coming back empty.
	Err error
}

// Failed reports whether the group or any of its adapters failed.
func (r GroupResult) Failed() bool {
	if r.Err != nil {
		return true
	}
	for _, a := range r.Adapters {
		if a.Failed() {
			return true
		}
	}
	return false
}

type Options struct {
	Registry *Registry
	Policies merge.Policies
	Sink     Sink
	// Observer is optional.
	Observer Observer
	// Enabled filters games, nil enables every game.
	Enabled func(wiki.Game) bool
}

type state int

const (
	idle state = iota
	running
	done
)

// Scheduler runs every registered group once.
type Scheduler struct {
	opts Options
	tel  telemetry.API

	mutex sync.Mutex
	state state
}

func NewScheduler(opts Options, tel telemetry.API) *Scheduler {
	assert.NotNil(opts.Registry, "registry")
	assert.NotNil(opts.Policies, "merge policies")
	assert.NotNil(opts.Sink, "sink")
	assert.NotNil(tel, "telemetry")
	if opts.Enabled == nil {
		opts.Enabled = func(wiki.Game) bool { return true }
	}
	return &Scheduler{opts: opts, tel: tel}
}

// Run crawls, merges and persists every enabled group in order. Failures
// are isolated to the adapter or group they happen in. It can only be
// called once.
func (s *Scheduler) Run(ctx context.Context) ([]GroupResult, error) {
	s.mutex.Lock()
	if s.state != idle {
		s.mutex.Unlock()
		return nil, ErrAlreadyRan
	}
	s.state = running
	s.mutex.Unlock()

	defer func() {
		s.mutex.Lock()
		s.state = done
		s.mutex.Unlock()
	}()

	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	var results []GroupResult
	for _, group := range s.opts.Registry.Groups() {
		if !s.opts.Enabled(group.Game) {
			continue
		}
		if ctx.Err() != nil {
			span.RecordError(ctx.Err())
			span.SetStatus(codes.Error, "run cancelled")
			return results, ctx.Err()
		}
		results = append(results, s.runGroup(ctx, group))
	}
	return results, nil
}

func (s *Scheduler) runGroup(ctx context.Context, group Group) GroupResult {
	ctx, span := tracer.Start(ctx, "runGroup")
	defer span.End()
	span.SetAttributes(
		attribute.String("game", string(group.Game)),
		attribute.String("category", string(group.Category)),
	)

	tel := telemetry.NewScopedAPI(fmt.Sprintf("%s_%s", group.Game, group.Category), s.tel)
	result := GroupResult{Game: group.Game, Category: group.Category}

	policy, err := s.opts.Policies.For(group.Game, group.Category)
	if err != nil {
		tel.ReportBroken(report_scheduler_policy, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "no merge policy")
		result.Err = err
		s.observe(ctx, tel, result)
		return result
	}

	batches := make([][]map[string]any, 0, len(group.Adapters))
	for _, adapter := range group.Adapters {
		batch, adapterResult := s.runAdapter(ctx, tel, adapter)
		batches = append(batches, batch)
		result.Adapters = append(result.Adapters, adapterResult)
	}

	merged, err := merge.Merge(batches, policy)
	if err != nil {
		tel.ReportBroken(report_scheduler_merge, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "merge failed")
		result.Err = err
		s.observe(ctx, tel, result)
		return result
	}
	result.Records = len(merged.Records)
	result.Dropped = merged.Dropped
	result.Collisions = merged.Collisions

	for _, c := range merged.Collisions {
		tel.ReportDebug(
			"collision",
			"key", c.Key,
			"field", c.Field,
			"kept", c.Kept,
			"discarded", c.Discarded,
			"similarity", c.Similarity,
		)
	}
	if merged.Dropped > 0 {
		tel.ReportWarning(report_scheduler_merge, fmt.Errorf("dropped %d records without '%s'", merged.Dropped, policy.Key))
	}

	if len(merged.Records) == 0 {
		tel.ReportWarning(report_scheduler_nodata)
		s.observe(ctx, tel, result)
		return result
	}

	path, err := s.opts.Sink.Save(group.Game, group.Category, merged.Records)
	if err != nil {
		tel.ReportBroken(report_scheduler_save, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save dataset")
		result.Err = err
		s.observe(ctx, tel, result)
		return result
	}
	result.Path = path
	tel.ReportCount(report_scheduler_count, int64(len(merged.Records)))

	s.observe(ctx, tel, result)
	return result
}

func (s *Scheduler) runAdapter(ctx context.Context, tel telemetry.API, adapter spider.Adapter) ([]map[string]any, AdapterResult) {
	ctx, span := tracer.Start(ctx, "runAdapter")
	defer span.End()
	span.SetAttributes(
		attribute.String("source", adapter.Source()),
		attribute.Int("priority", adapter.Priority()),
	)

	result := AdapterResult{Source: adapter.Source(), Priority: adapter.Priority()}
	start := time.Now()
	records, err := crawlRecovered(ctx, adapter)
	result.Duration = time.Since(start)

	if err != nil {
		tel.ReportBroken(report_scheduler_crawl, fmt.Errorf("%s (priority %d): %w", adapter.Source(), adapter.Priority(), err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "adapter failed")
		result.Err = err
		return nil, result
	}
	result.Records = len(records)

	batch := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		flat, err := wiki.Flatten(rec)
		if err != nil {
			tel.ReportWarning(report_scheduler_flatten, adapter.Source(), err)
			continue
		}
		batch = append(batch, flat)
	}
	result.Flattened = len(batch)

	tel.ReportCount(fmt.Sprintf("%s.%s", report_scheduler_crawl, adapter.Source()), int64(len(batch)))
	recordCounter.Add(ctx, int64(len(batch)), metric.WithAttributes(
		attribute.String("source", adapter.Source()),
		attribute.String("game", string(adapter.Game())),
		attribute.String("category", string(adapter.Category())),
	))
	return batch, result
}

func (s *Scheduler) observe(ctx context.Context, tel telemetry.API, result GroupResult) {
	if s.opts.Observer == nil {
		return
	}
	err := s.opts.Observer.ObserveGroup(ctx, result)
	if err != nil {
		tel.ReportWarning(report_scheduler_observe, err)
	}
}

func crawlRecovered(ctx context.Context, adapter spider.Adapter) (records []wiki.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return adapter.Crawl(ctx)
}
