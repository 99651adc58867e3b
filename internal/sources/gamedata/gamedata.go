// Package gamedata derives the Genshin Impact material tables (what every
// character and weapon needs, and which domain drops it on which weekday)
// from the game's excel data dumps.
package gamedata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"wikispider/internal/assets"
	"wikispider/internal/spider"
	"wikispider/internal/wiki"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("wikispider/internal/sources/gamedata")

const (
	report_gamedata_tables  = "gamedata.tables"
	report_gamedata_archive = "gamedata.archive"
	report_gamedata_roles   = "gamedata.roles"
	report_gamedata_daily   = "gamedata.daily"
)

const (
	Source   = "gamedata"
	Priority = spider.DefaultPriority
	// RecordID is the id of the single record the adapter produces.
	RecordID = "genshin"
)

const DefaultMirror = "https://gitlab.com/Dimbreath/AnimeGameData/-/raw/master"

const (
	avatarTable         = "ExcelBinOutput/AvatarExcelConfigData.json"
	avatarPromoteTable  = "ExcelBinOutput/AvatarPromoteExcelConfigData.json"
	avatarSkillDepot    = "ExcelBinOutput/AvatarSkillDepotExcelConfigData.json"
	avatarSkillTable    = "ExcelBinOutput/AvatarSkillExcelConfigData.json"
	dungeonEntryTable   = "ExcelBinOutput/DungeonEntryExcelConfigData.json"
	materialTable       = "ExcelBinOutput/MaterialExcelConfigData.json"
	proudSkillTable     = "ExcelBinOutput/ProudSkillExcelConfigData.json"
	weaponTable         = "ExcelBinOutput/WeaponExcelConfigData.json"
	weaponPromoteTable  = "ExcelBinOutput/WeaponPromoteExcelConfigData.json"
	textMapTable        = "TextMap/TextMapCHS.json"
	tableConcurrency    = 4
	derivedRolesTable   = "roles_material"
	derivedWeaponsTable = "weapons_material"
	derivedDailyTable   = "daily_material"
)

var Tables = []string{
	avatarTable,
	avatarPromoteTable,
	avatarSkillDepot,
	avatarSkillTable,
	dungeonEntryTable,
	materialTable,
	proudSkillTable,
	weaponTable,
	weaponPromoteTable,
	textMapTable,
}

type Options struct {
	Mirror string
	// Refresh downloads every table again. Otherwise tables downloaded by an
	// earlier run are reused and only missing ones are fetched.
	Refresh bool
}

type Adapter struct {
	spider.Base
	opts Options
}

func NewAdapter(deps spider.Deps, opts Options) *Adapter {
	if opts.Mirror == "" {
		opts.Mirror = DefaultMirror
	}
	return &Adapter{
		Base: spider.NewBase(spider.Identity{
			Game:     wiki.GENSHIN,
			Category: wiki.OTHER,
			Source:   Source,
			Priority: Priority,
		}, deps),
		opts: opts,
	}
}

func (a *Adapter) Crawl(ctx context.Context) ([]wiki.Record, error) {
	ctx, span := tracer.Start(ctx, "Crawl")
	defer span.End()

	raw, err := a.loadTables(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load tables")
		return nil, err
	}
	data, err := decodeTables(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode tables")
		return nil, err
	}

	d := deriver{data: data, tel: a.Tel}
	roles, err := d.roles()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to derive role materials")
		return nil, err
	}
	weapons := d.weapons()
	daily := d.daily(roles, weapons)

	other := &wiki.Other{ID: RecordID}
	for _, t := range []struct {
		name  string
		value any
		out   *json.RawMessage
	}{
		{name: derivedRolesTable, value: roles, out: &other.RolesMaterial},
		{name: derivedWeaponsTable, value: weapons, out: &other.WeaponsMaterial},
		{name: derivedDailyTable, value: daily, out: &other.DailyMaterial},
	} {
		buf, err := spider.EncodeJSON(t.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", t.name, err)
		}
		*t.out = buf

		// derived tables sit next to the raw payloads, named after the table
		_, err = a.Store.SaveRaw(wiki.GENSHIN, wiki.OTHER, t.name, "json", buf)
		if err != nil {
			a.Tel.ReportWarning(report_gamedata_archive, t.name, err)
		}
	}
	return []wiki.Record{other}, nil
}

// loadTables returns the contents of every table with obfuscated keys
// already rewritten.
func (a *Adapter) loadTables(ctx context.Context) (map[string][]byte, error) {
	ctx, span := tracer.Start(ctx, "loadTables")
	defer span.End()
	span.SetAttributes(attribute.Bool("refresh", a.opts.Refresh))

	var mutex sync.Mutex
	out := map[string][]byte{}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(tableConcurrency)
	for _, table := range Tables {
		group.Go(func() error {
			body, err := a.table(ctx, table)
			if err != nil {
				return fmt.Errorf("table %s: %w", table, err)
			}
			mutex.Lock()
			out[table] = body
			mutex.Unlock()
			return nil
		})
	}
	err := group.Wait()
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Adapter) table(ctx context.Context, table string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", strings.TrimSuffix(a.opts.Mirror, "/"), table)
	key, err := assets.KeyFromURL(wiki.GENSHIN, wiki.OTHER, Source, url)
	if err != nil {
		return nil, err
	}

	if !a.opts.Refresh && a.Store.Exists(key) {
		body, err := a.Store.Load(a.Store.RelPath(key))
		if err == nil {
			return body, nil
		}
		a.Tel.ReportWarning(report_gamedata_tables, table, err)
	}

	body, err := a.Client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	body = rewriteKeys(body)
	_, err = a.Store.Save(key, body)
	if err != nil {
		a.Tel.ReportWarning(report_gamedata_tables, table, err)
	}
	return body, nil
}
