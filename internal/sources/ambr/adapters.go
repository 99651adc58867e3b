package ambr

import (
	"context"
	"fmt"
	"strings"
	"wikispider/internal/spider"
	"wikispider/internal/wiki"
)

type avatar struct {
	ID         spider.ID `json:"id"`
	Name       string    `json:"name"`
	Route      string    `json:"route"`
	Rank       int       `json:"rank"`
	Element    string    `json:"element"`
	WeaponType string    `json:"weaponType"`
	BodyType   string    `json:"bodyType"`
	Birthday   []int     `json:"birthday"`
	Region     string    `json:"region"`
	Icon       string    `json:"icon"`
}

type CharacterAdapter struct {
	adapter
}

func NewCharacterAdapter(deps spider.Deps, endpoints Endpoints) *CharacterAdapter {
	return &CharacterAdapter{adapter: newAdapter(wiki.CHARACTER, "avatar", deps, endpoints)}
}

func (a *CharacterAdapter) Crawl(ctx context.Context) ([]wiki.Record, error) {
	return crawl(ctx, a.adapter, a.parse)
}

func (a *CharacterAdapter) parse(ctx context.Context, data avatar) (wiki.Record, error) {
	element, err := wiki.ParseElement(data.Element)
	if err != nil {
		return nil, fmt.Errorf("character %s: %w", data.ID, err)
	}
	weaponType, err := wiki.ParseWeaponType(data.WeaponType)
	if err != nil {
		return nil, fmt.Errorf("character %s: %w", data.ID, err)
	}
	if len(data.Birthday) < 2 {
		return nil, fmt.Errorf("character %s: malformed birthday %v", data.ID, data.Birthday)
	}

	c := &wiki.Character{
		Base:        wiki.NewBase(data.ID.String(), data.Name, data.Route),
		Element:     element,
		WeaponType:  weaponType,
		BodyType:    data.BodyType,
		Birthday:    wiki.Birthday{Month: data.Birthday[0], Day: data.Birthday[1]},
		Association: wiki.ConvertAssociation(data.Region),
	}
	c.Rank = data.Rank

	a.AcquireIcons(
		ctx, c,
		spider.CharacterIcons(spider.CharacterGameName(data.Icon), wiki.PNG),
		spider.PrefixURL(a.endpoints.Enka),
		false,
	)
	return c, nil
}

type weapon struct {
	ID    spider.ID `json:"id"`
	Name  string    `json:"name"`
	Route string    `json:"route"`
	Rank  int       `json:"rank"`
	Type  string    `json:"type"`
	Icon  string    `json:"icon"`
}

type WeaponAdapter struct {
	adapter
}

func NewWeaponAdapter(deps spider.Deps, endpoints Endpoints) *WeaponAdapter {
	return &WeaponAdapter{adapter: newAdapter(wiki.WEAPON, "weapon", deps, endpoints)}
}

func (a *WeaponAdapter) Crawl(ctx context.Context) ([]wiki.Record, error) {
	return crawl(ctx, a.adapter, a.parse)
}

func (a *WeaponAdapter) parse(ctx context.Context, data weapon) (wiki.Record, error) {
	weaponType, err := wiki.ParseWeaponType(data.Type)
	if err != nil {
		return nil, fmt.Errorf("weapon %s: %w", data.ID, err)
	}

	w := &wiki.Weapon{
		Base:       wiki.NewBase(data.ID.String(), data.Name, data.Route),
		WeaponType: weaponType,
	}
	w.Rank = data.Rank

	// ambr does not host awakened weapon icons
	a.AcquireIcons(
		ctx, w,
		spider.WeaponIcons(spider.WeaponGameName(data.Icon), wiki.PNG, false),
		spider.PrefixURL(a.endpoints.Enka),
		false,
	)
	return w, nil
}

type material struct {
	ID    spider.ID `json:"id"`
	Name  string    `json:"name"`
	Route string    `json:"route"`
	Rank  int       `json:"rank"`
	Icon  string    `json:"icon"`
}

type MaterialAdapter struct {
	adapter
}

func NewMaterialAdapter(deps spider.Deps, endpoints Endpoints) *MaterialAdapter {
	return &MaterialAdapter{adapter: newAdapter(wiki.MATERIAL, "material", deps, endpoints)}
}

func (a *MaterialAdapter) Crawl(ctx context.Context) ([]wiki.Record, error) {
	return crawl(ctx, a.adapter, a.parse)
}

func (a *MaterialAdapter) parse(ctx context.Context, data material) (wiki.Record, error) {
	m := &wiki.Material{Base: wiki.NewBase(data.ID.String(), data.Name, data.Route)}
	m.Rank = data.Rank

	if data.Icon != "" {
		a.AcquireIcons(
			ctx, m,
			[]spider.IconSpec{{Field: "icon", Filename: data.Icon, Format: wiki.PNG}},
			spider.PrefixURL(a.endpoints.Assets),
			false,
		)
	}
	return m, nil
}

type reliquary struct {
	ID        spider.ID         `json:"id"`
	Name      string            `json:"name"`
	Route     string            `json:"route"`
	LevelList []int             `json:"levelList"`
	AffixList map[string]string `json:"affixList"`
}

type ArtifactAdapter struct {
	adapter
}

func NewArtifactAdapter(deps spider.Deps, endpoints Endpoints) *ArtifactAdapter {
	return &ArtifactAdapter{adapter: newAdapter(wiki.ARTIFACT, "reliquary", deps, endpoints)}
}

func (a *ArtifactAdapter) Crawl(ctx context.Context) ([]wiki.Record, error) {
	return crawl(ctx, a.adapter, a.parse)
}

func (a *ArtifactAdapter) parse(ctx context.Context, data reliquary) (wiki.Record, error) {
	id := data.ID.String()
	artifact := &wiki.Artifact{
		Base:      wiki.NewBase(id, data.Name, data.Route),
		LevelList: data.LevelList,
		AffixList: data.AffixList,
	}

	a.AcquireIcons(
		ctx, artifact,
		spider.ArtifactIcons(id, wiki.PNG),
		spider.PrefixURL(a.endpoints.Assets+"/reliquary"),
		wiki.IconlessArtifacts[id],
	)
	return artifact, nil
}

type namecard struct {
	ID    spider.ID `json:"id"`
	Name  string    `json:"name"`
	Route string    `json:"route"`
	Rank  int       `json:"rank"`
	Icon  string    `json:"icon"`
}

// profileName derives the profile picture of a namecard from its icon,
// ex. UI_NameCardIcon_Bp1 -> UI_NameCardPic_Bp1_P.
func profileName(icon string) string {
	parts := strings.Split(icon, "_")
	if len(parts) < 3 {
		return ""
	}
	return fmt.Sprintf("UI_NameCardPic_%s_P", strings.Join(parts[2:], "_"))
}

type NameCardAdapter struct {
	adapter
}

func NewNameCardAdapter(deps spider.Deps, endpoints Endpoints) *NameCardAdapter {
	return &NameCardAdapter{adapter: newAdapter(wiki.NAMECARD, "namecard", deps, endpoints)}
}

func (a *NameCardAdapter) Crawl(ctx context.Context) ([]wiki.Record, error) {
	return crawl(ctx, a.adapter, a.parse)
}

func (a *NameCardAdapter) parse(ctx context.Context, data namecard) (wiki.Record, error) {
	n := &wiki.NameCard{Base: wiki.NewBase(data.ID.String(), data.Name, data.Route)}
	n.Rank = data.Rank

	specs := []spider.IconSpec{{Field: "icon", Filename: data.Icon, Format: wiki.PNG}}
	if profile := profileName(data.Icon); profile != "" {
		specs = append(specs, spider.IconSpec{Field: "profile", Filename: profile, Format: wiki.PNG})
	}
	a.AcquireIcons(ctx, n, specs, spider.PrefixURL(a.endpoints.Assets+"/namecard"), false)
	return n, nil
}
