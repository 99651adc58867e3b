package wiki

import "encoding/json"

type Birthday struct {
	Month int `json:"month"`
	Day   int `json:"day"`
}

type Character struct {
	Base
	Element     Element     `json:"element"`
	WeaponType  WeaponType  `json:"weapon_type"`
	BodyType    string      `json:"body_type"`
	Birthday    Birthday    `json:"birthday"`
	Association Association `json:"association,omitempty"`

	Icon      *IconAsset `json:"icon"`
	Side      *IconAsset `json:"side"`
	Gacha     *IconAsset `json:"gacha"`
	GachaCard *IconAsset `json:"gacha_card"`
}

func (c *Character) IconFields() []string {
	return []string{"icon", "side", "gacha", "gacha_card"}
}

func (c *Character) SetIcon(field string, icon *IconAsset) error {
	switch field {
	case "icon":
		c.Icon = icon
	case "side":
		c.Side = icon
	case "gacha":
		c.Gacha = icon
	case "gacha_card":
		c.GachaCard = icon
	default:
		return unknownIconField(c, field)
	}
	return nil
}

type Weapon struct {
	Base
	WeaponType  WeaponType `json:"weapon_type"`
	Description string     `json:"description"`

	Icon   *IconAsset `json:"icon"`
	Awaken *IconAsset `json:"awaken"`
	Gacha  *IconAsset `json:"gacha"`
}

func (w *Weapon) IconFields() []string {
	return []string{"icon", "awaken", "gacha"}
}

func (w *Weapon) SetIcon(field string, icon *IconAsset) error {
	switch field {
	case "icon":
		w.Icon = icon
	case "awaken":
		w.Awaken = icon
	case "gacha":
		w.Gacha = icon
	default:
		return unknownIconField(w, field)
	}
	return nil
}

type Material struct {
	Base
	MaterialType string `json:"material_type"`

	Icon *IconAsset `json:"icon"`
}

func (m *Material) IconFields() []string {
	return []string{"icon"}
}

func (m *Material) SetIcon(field string, icon *IconAsset) error {
	if field != "icon" {
		return unknownIconField(m, field)
	}
	m.Icon = icon
	return nil
}

type Artifact struct {
	Base
	// LevelList holds the rarities the set drops in.
	LevelList []int `json:"level_list"`
	// AffixList maps piece count to set bonus description.
	AffixList map[string]string `json:"affix_list"`

	Flower  *IconAsset `json:"flower"`
	Plume   *IconAsset `json:"plume"`
	Sands   *IconAsset `json:"sands"`
	Goblet  *IconAsset `json:"goblet"`
	Circlet *IconAsset `json:"circlet"`
}

func (a *Artifact) IconFields() []string {
	return []string{"flower", "plume", "sands", "goblet", "circlet"}
}

func (a *Artifact) SetIcon(field string, icon *IconAsset) error {
	switch field {
	case "flower":
		a.Flower = icon
	case "plume":
		a.Plume = icon
	case "sands":
		a.Sands = icon
	case "goblet":
		a.Goblet = icon
	case "circlet":
		a.Circlet = icon
	default:
		return unknownIconField(a, field)
	}
	return nil
}

// Icon returns the first piece icon that is present.
func (a *Artifact) Icon() *IconAsset {
	for _, icon := range []*IconAsset{a.Flower, a.Plume, a.Sands, a.Goblet, a.Circlet} {
		if icon != nil {
			return icon
		}
	}
	return nil
}

type NameCard struct {
	Base

	Icon    *IconAsset `json:"icon"`
	Navbar  *IconAsset `json:"navbar"`
	Profile *IconAsset `json:"profile"`
}

func (n *NameCard) IconFields() []string {
	return []string{"icon", "navbar", "profile"}
}

func (n *NameCard) SetIcon(field string, icon *IconAsset) error {
	switch field {
	case "icon":
		n.Icon = icon
	case "navbar":
		n.Navbar = icon
	case "profile":
		n.Profile = icon
	default:
		return unknownIconField(n, field)
	}
	return nil
}

// Other bundles the derived tables of a game, it has no icons.
type Other struct {
	ID              string          `json:"id"`
	DailyMaterial   json.RawMessage `json:"daily_material"`
	RolesMaterial   json.RawMessage `json:"roles_material"`
	WeaponsMaterial json.RawMessage `json:"weapons_material"`
}

func (o *Other) Identity() string {
	return o.ID
}

func (o *Other) IconFields() []string {
	return nil
}

func (o *Other) SetIcon(field string, _ *IconAsset) error {
	return unknownIconField(o, field)
}

// IconlessArtifacts are artifact sets that no source publishes piece icons
// for, failing to download them is expected.
var IconlessArtifacts = map[string]bool{
	"15004": true, // 冰之川与雪之砂
	"15009": true, // 祭火之人
	"15010": true, // 祭水之人
	"15011": true, // 祭雷之人
	"15012": true, // 祭风之人
	"15013": true, // 祭冰之人
}

// ArtifactIconSlots pairs each piece field with the suffix of its icon file.
var ArtifactIconSlots = []struct {
	Field  string
	Suffix int
}{
	{Field: "flower", Suffix: 4},
	{Field: "plume", Suffix: 2},
	{Field: "sands", Suffix: 5},
	{Field: "goblet", Suffix: 1},
	{Field: "circlet", Suffix: 3},
}
