package honey

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"wikispider/internal/spider"
	"wikispider/internal/wiki"
)

const NameCardPriority = spider.DefaultPriority

var (
	namecardID   = regexp.MustCompile(`/(.*?)/`)
	namecardName = regexp.MustCompile(`alt="(.*?)"`)
	namecardRank = regexp.MustCompile(`>(\d)<`)
)

type NameCardAdapter struct {
	adapter
}

func NewNameCardAdapter(deps spider.Deps, endpoints Endpoints) *NameCardAdapter {
	return &NameCardAdapter{adapter: newAdapter(wiki.NAMECARD, NameCardPriority, deps, endpoints)}
}

func (a *NameCardAdapter) Crawl(ctx context.Context) ([]wiki.Record, error) {
	page, err := a.endpoints.Resolve("fam_nameplate/?lang=CHS")
	if err != nil {
		return nil, err
	}
	body, err := a.Fetch(ctx, page, "")
	if err != nil {
		return nil, err
	}
	rows, err := extractRows(body)
	if err != nil {
		return nil, fmt.Errorf("namecard listing: %w", err)
	}

	// the rows are what gets archived, not the page around them
	raw, err := spider.EncodeJSON(rows)
	if err == nil {
		err = a.Archive("json", raw)
	}
	if err != nil {
		a.Tel.ReportWarning(report_honey_archive, err)
	}

	return spider.ParseAll(ctx, a.Tel, rows, a.parse), nil
}

func (a *NameCardAdapter) parse(ctx context.Context, r row) (wiki.Record, error) {
	id, ok := firstMatch(namecardID, r.cell(1))
	if !ok {
		return nil, fmt.Errorf("namecard row without id: %v", r)
	}
	name, ok := firstMatch(namecardName, r.cell(0))
	if !ok {
		return nil, fmt.Errorf("namecard %s: no name", id)
	}
	rankText, ok := firstMatch(namecardRank, r.cell(2))
	if !ok {
		return nil, fmt.Errorf("namecard %s: no rarity", id)
	}
	rank, err := strconv.Atoi(rankText)
	if err != nil {
		return nil, fmt.Errorf("namecard %s: %w", id, err)
	}

	// images keep the site id, the record carries the in-game one
	n := &wiki.NameCard{Base: wiki.NewBase(inGameID(id), name, "")}
	n.Rank = rank

	a.AcquireIcons(ctx, n, []spider.IconSpec{
		{Field: "icon", Filename: id, Format: wiki.WEBP},
		{Field: "navbar", Filename: id + "_back", Format: wiki.WEBP},
		{Field: "profile", Filename: id + "_profile", Format: wiki.WEBP},
	}, a.endpoints.images(), false)
	return n, nil
}
