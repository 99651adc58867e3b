package wiki

import "fmt"

// Game identifies one of the crawled games. The string value is the
// directory name the game's data is stored under.
type Game string

const (
	GENSHIN  Game = "genshin"
	STARRAIL Game = "hkrpg"
	ZZZ      Game = "nap"
	WW       Game = "ww"
)

// Games lists every game in iteration order.
var Games = []Game{GENSHIN, STARRAIL, ZZZ, WW}

func ParseGame(s string) (Game, error) {
	for _, g := range Games {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown game '%s'", s)
}

// Category is the kind of entity a dataset holds.
type Category string

const (
	CHARACTER Category = "character"
	WEAPON    Category = "weapon"
	MATERIAL  Category = "material"
	ARTIFACT  Category = "artifact"
	NAMECARD  Category = "namecard"
	OTHER     Category = "other"
)

// Categories lists every category in iteration order.
var Categories = []Category{CHARACTER, WEAPON, MATERIAL, ARTIFACT, NAMECARD, OTHER}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category '%s'", s)
}

// Element values follow the in-game enum names.
type Element string

const (
	ANEMO   Element = "Wind"
	GEO     Element = "Rock"
	ELECTRO Element = "Electric"
	PYRO    Element = "Fire"
	HYDRO   Element = "Water"
	CRYO    Element = "Ice"
	DENDRO  Element = "Grass"
)

var elementByDisplayName = map[string]Element{
	"Anemo":   ANEMO,
	"Geo":     GEO,
	"Electro": ELECTRO,
	"Pyro":    PYRO,
	"Hydro":   HYDRO,
	"Cryo":    CRYO,
	"Dendro":  DENDRO,
}

// ParseElement accepts both display names (Pyro) and in-game names (Fire).
func ParseElement(s string) (Element, error) {
	if e, ok := elementByDisplayName[s]; ok {
		return e, nil
	}
	for _, e := range elementByDisplayName {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown element '%s'", s)
}

type WeaponType string

const (
	BOW      WeaponType = "WEAPON_BOW"
	CATALYST WeaponType = "WEAPON_CATALYST"
	CLAYMORE WeaponType = "WEAPON_CLAYMORE"
	SWORD    WeaponType = "WEAPON_SWORD_ONE_HAND"
	POLE     WeaponType = "WEAPON_POLE"
)

var WeaponTypes = []WeaponType{BOW, CATALYST, CLAYMORE, SWORD, POLE}

var weaponTypeByLocalName = map[string]WeaponType{
	"弓":    BOW,
	"法器":   CATALYST,
	"双手剑":  CLAYMORE,
	"单手剑":  SWORD,
	"长柄武器": POLE,
}

// ParseWeaponType accepts the in-game enum name or the CHS family name.
func ParseWeaponType(s string) (WeaponType, error) {
	if w, ok := weaponTypeByLocalName[s]; ok {
		return w, nil
	}
	for _, w := range WeaponTypes {
		if string(w) == s {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown weapon type '%s'", s)
}

// Association is the region a character belongs to.
type Association string

const (
	MONDSTADT Association = "MONDSTADT"
	LIYUE     Association = "LIYUE"
	INAZUMA   Association = "INAZUMA"
	SUMERU    Association = "SUMERU"
	FONTAINE  Association = "FONTAINE"
	NATLAN    Association = "NATLAN"
	SNEZHNAYA Association = "SNEZHNAYA"
	// characters that do not belong to a nation, ex. the traveler
	RANGER       Association = "RANGER"
	UNKNOWN_AREA Association = "UNKNOWN"
)

var associationAliases = map[string]Association{
	"MONDSTADT": MONDSTADT,
	"LIYUE":     LIYUE,
	"INAZUMA":   INAZUMA,
	"SUMERU":    SUMERU,
	"FONTAINE":  FONTAINE,
	"NATLAN":    NATLAN,
	"SNEZHNAYA": SNEZHNAYA,
	"FATUI":     SNEZHNAYA,
	"RANGER":    RANGER,
	"MAINACTOR": RANGER,
}

// ConvertAssociation normalizes an upstream region field, unknown values
// map to UNKNOWN_AREA.
func ConvertAssociation(region string) Association {
	if a, ok := associationAliases[region]; ok {
		return a
	}
	return UNKNOWN_AREA
}
