package hakush

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"wikispider/internal/spider"
	"wikispider/internal/wiki"
)

var qualityRank = map[string]int{
	"QUALITY_ORANGE": 5,
	"QUALITY_PURPLE": 4,
}

type character struct {
	Icon    string `json:"icon"`
	Rank    string `json:"rank"`
	Weapon  string `json:"weapon"`
	Element string `json:"element"`
	CHS     string `json:"CHS"`
	EN      string `json:"EN"`
	Birth   []int  `json:"birth"`
}

type CharacterAdapter struct {
	adapter
}

func NewCharacterAdapter(deps spider.Deps, endpoints Endpoints) *CharacterAdapter {
	return &CharacterAdapter{adapter: newAdapter(wiki.CHARACTER, "character.json", deps, endpoints)}
}

func (a *CharacterAdapter) Crawl(ctx context.Context) ([]wiki.Record, error) {
	return crawl(ctx, a.adapter, a.parse)
}

// characterID gives each traveler variant (10000005-2503) the id ambr uses
// for it (10000005-anemo).
func characterID(key, element string) string {
	realID, _, found := strings.Cut(key, "-")
	if !found {
		return key
	}
	return fmt.Sprintf("%s-%s", realID, strings.ToLower(element))
}

func (a *CharacterAdapter) parse(ctx context.Context, entry spider.Keyed[character]) (wiki.Record, error) {
	data := entry.Value
	id := characterID(entry.Key, data.Element)

	element, err := wiki.ParseElement(data.Element)
	if err != nil {
		return nil, fmt.Errorf("character %s: %w", id, err)
	}
	weaponType, err := wiki.ParseWeaponType(data.Weapon)
	if err != nil {
		return nil, fmt.Errorf("character %s: %w", id, err)
	}
	rank, ok := qualityRank[data.Rank]
	if !ok {
		return nil, fmt.Errorf("character %s: unknown quality '%s'", id, data.Rank)
	}
	if len(data.Birth) < 2 {
		return nil, fmt.Errorf("character %s: malformed birthday %v", id, data.Birth)
	}

	c := &wiki.Character{
		Base:       wiki.NewBase(id, data.CHS, data.EN),
		Element:    element,
		WeaponType: weaponType,
		Birthday:   wiki.Birthday{Month: data.Birth[0], Day: data.Birth[1]},
	}
	c.Rank = rank

	a.AcquireIcons(ctx, c, spider.CharacterIcons(spider.CharacterGameName(data.Icon), wiki.WEBP), a.icons(), false)
	return c, nil
}

type weapon struct {
	Icon string `json:"icon"`
	Rank int    `json:"rank"`
	Type string `json:"type"`
	EN   string `json:"EN"`
	Desc string `json:"desc"`
	CHS  string `json:"CHS"`
}

type WeaponAdapter struct {
	adapter
}

func NewWeaponAdapter(deps spider.Deps, endpoints Endpoints) *WeaponAdapter {
	return &WeaponAdapter{adapter: newAdapter(wiki.WEAPON, "weapon.json", deps, endpoints)}
}

func (a *WeaponAdapter) Crawl(ctx context.Context) ([]wiki.Record, error) {
	return crawl(ctx, a.adapter, a.parse)
}

func (a *WeaponAdapter) parse(ctx context.Context, entry spider.Keyed[weapon]) (wiki.Record, error) {
	data := entry.Value
	weaponType, err := wiki.ParseWeaponType(data.Type)
	if err != nil {
		return nil, fmt.Errorf("weapon %s: %w", entry.Key, err)
	}

	w := &wiki.Weapon{
		Base:        wiki.NewBase(entry.Key, data.CHS, data.EN),
		WeaponType:  weaponType,
		Description: data.Desc,
	}
	w.Rank = data.Rank

	a.AcquireIcons(ctx, w, spider.WeaponIcons(spider.WeaponGameName(data.Icon), wiki.WEBP, true), a.icons(), false)
	return w, nil
}

type item struct {
	Name string `json:"Name"`
	Rank int    `json:"Rank"`
	Type string `json:"Type"`
	Icon string `json:"Icon"`
}

// placeholder items that only exist in the data files
var skippedMaterials = map[string]bool{
	"107024": true,
	"107029": true,
}

type MaterialAdapter struct {
	adapter
}

func NewMaterialAdapter(deps spider.Deps, endpoints Endpoints) *MaterialAdapter {
	return &MaterialAdapter{adapter: newAdapter(wiki.MATERIAL, "zh/item.json", deps, endpoints)}
}

func (a *MaterialAdapter) Crawl(ctx context.Context) ([]wiki.Record, error) {
	return crawl(ctx, a.adapter, a.parse)
}

func (a *MaterialAdapter) parse(ctx context.Context, entry spider.Keyed[item]) (wiki.Record, error) {
	data := entry.Value
	if data.Name == "？？？" || skippedMaterials[entry.Key] {
		return nil, spider.ErrSkip
	}

	m := &wiki.Material{
		Base:         wiki.NewBase(entry.Key, data.Name, ""),
		MaterialType: data.Type,
	}
	m.Rank = data.Rank

	if data.Icon != "" {
		a.AcquireIcons(
			ctx, m,
			[]spider.IconSpec{{Field: "icon", Filename: data.Icon, Format: wiki.WEBP}},
			a.icons(),
			false,
		)
	}
	return m, nil
}

type localized struct {
	CHS string `json:"CHS"`
}

type artifactSet struct {
	Name localized `json:"name"`
	Desc localized `json:"desc"`
}

type artifact struct {
	Rank []int                  `json:"rank"`
	Set  map[string]artifactSet `json:"set"`
}

type ArtifactAdapter struct {
	adapter
}

func NewArtifactAdapter(deps spider.Deps, endpoints Endpoints) *ArtifactAdapter {
	return &ArtifactAdapter{adapter: newAdapter(wiki.ARTIFACT, "artifact.json", deps, endpoints)}
}

func (a *ArtifactAdapter) Crawl(ctx context.Context) ([]wiki.Record, error) {
	return crawl(ctx, a.adapter, a.parse)
}

func (a *ArtifactAdapter) parse(ctx context.Context, entry spider.Keyed[artifact]) (wiki.Record, error) {
	data := entry.Value

	// json objects are unordered once decoded, the set bonus with the
	// fewest pieces names the set.
	pieces := make([]string, 0, len(data.Set))
	for k := range data.Set {
		pieces = append(pieces, k)
	}
	sortNumeric(pieces)

	affixes := map[string]string{}
	name := ""
	for _, k := range pieces {
		set := data.Set[k]
		affixes[k] = set.Desc.CHS
		if name == "" {
			name = set.Name.CHS
		}
	}

	rec := &wiki.Artifact{
		Base:      wiki.NewBase(entry.Key, name, ""),
		LevelList: data.Rank,
		AffixList: affixes,
	}
	a.AcquireIcons(
		ctx, rec,
		spider.ArtifactIcons(entry.Key, wiki.WEBP),
		a.icons(),
		wiki.IconlessArtifacts[entry.Key],
	)
	return rec, nil
}

// sortNumeric sorts numeric strings by value, anything else after them.
func sortNumeric(keys []string) {
	slices.SortFunc(keys, func(a, b string) int {
		x, errA := strconv.Atoi(a)
		y, errB := strconv.Atoi(b)
		switch {
		case errA == nil && errB == nil:
			return x - y
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		}
		return strings.Compare(a, b)
	})
}
