package gamedata

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"wikispider/internal/spider"
)

// keyAliases maps readable field names to the obfuscated names some dumps
// publish them under.
var keyAliases = map[string]string{
	"id":                        "ELKKIAIGOBK",
	"nameTextMapHash":           "DNINKKHEILA",
	"descTextMapHash":           "PGEPICIANFN",
	"skillIcon":                 "BGIHPNEDFOL",
	"forceCanDoSkill":           "CFAICKLGPDP",
	"costElemType":              "PNIDLNBBJIC",
	"proudSkillGroupId":         "DGIJCGLPDPI",
	"talentId":                  "JFALAEEKFMI",
	"icon":                      "CNPCNIGHGJJ",
	"itemType":                  "CEBMMGCMIJM",
	"equipType":                 "HNCDIADOINL",
	"rankLevel":                 "IMNCLIODOBL",
	"mainPropDepotId":           "AIPPMEGLAKJ",
	"appendPropDepotId":         "GIFPAPLPMGO",
	"affixId":                   "NEMBIFHOIKM",
	"openConfig":                "JIPJEMFCKAI",
	"propType":                  "JJNPGPFNJHP",
	"propValue":                 "AGDCHCBAGFO",
	"awakenIcon":                "KMOCENBGOEM",
	"materialType":              "HBBILKOGMIP",
	"picPath":                   "PPCKMKGIIMP",
	"textMapId":                 "EHLGDOCBKBO",
	"textMapContentTextMapHash": "ECIGIIKPLGD",
	"iconPath":                  "FPPENJGNALC",
	"skills":                    "CBJGLADMBHG",
	"energySkill":               "GIEFGHHKGDD",
	"talents":                   "IAGMADCJGIA",
	"iconName":                  "OCNPJGGMLLO",
	"sideIconName":              "IPNPPIGGOPB",
	"qualityType":               "ADLDGBEKECJ",
	"skillDepotId":              "HCBILEOPKHD",
	"candSkillDepotIds":         "FOCOLMLMEFN",
	"featureTagGroupID":         "EOCNJBDLDMK",
	"avatarPromoteId":           "ECMKJJIDKAE",
	"costItems":                 "FPIJIIENLBP",
	"promoteLevel":              "AKPHFJACMIB",
	"level":                     "BHFAPOEDIDB",
}

var keyReplacer = func() *strings.Replacer {
	pairs := []string{}
	for name, alias := range keyAliases {
		pairs = append(pairs, fmt.Sprintf(`"%s":`, alias), fmt.Sprintf(`"%s":`, name))
	}
	return strings.NewReplacer(pairs...)
}()

// rewriteKeys normalizes line endings and replaces obfuscated keys with
// their readable names.
func rewriteKeys(body []byte) []byte {
	s := strings.ReplaceAll(string(body), "\r\n", "\n")
	return []byte(keyReplacer.Replace(s))
}

type avatarRow struct {
	ID                int         `json:"id"`
	NameTextMapHash   json.Number `json:"nameTextMapHash"`
	FeatureTagGroupID int         `json:"featureTagGroupID"`
	SkillDepotID      int         `json:"skillDepotId"`
	AvatarPromoteID   int         `json:"avatarPromoteId"`
}

type skillDepotRow struct {
	ID          int `json:"id"`
	EnergySkill int `json:"energySkill"`
}

type skillRow struct {
	ID                int `json:"id"`
	ProudSkillGroupID int `json:"proudSkillGroupId"`
}

type materialRow struct {
	ID              int         `json:"id"`
	NameTextMapHash json.Number `json:"nameTextMapHash"`
}

type weaponRow struct {
	ID              int         `json:"id"`
	NameTextMapHash json.Number `json:"nameTextMapHash"`
	WeaponPromoteID int         `json:"weaponPromoteId"`
}

type dungeonRow struct {
	ID          int     `json:"id"`
	Type        string  `json:"type"`
	CycleReward [][]int `json:"descriptionCycleRewardList"`
}

type costItem struct {
	ID    int `json:"id"`
	Count int `json:"count"`
}

// costRow is a row of a table whose cost field name is not known up front.
type costRow map[string]json.RawMessage

func (r costRow) int(key string) int {
	var v int
	if raw, ok := r[key]; ok {
		_ = json.Unmarshal(raw, &v)
	}
	return v
}

// costs returns the cost list under key. Empty slots are kept as zero
// items so positions stay meaningful.
func (r costRow) costs(key string) []costItem {
	var items []costItem
	if raw, ok := r[key]; ok {
		_ = json.Unmarshal(raw, &items)
	}
	return items
}

// guessCostKey finds the field that holds cost items, a list of objects
// carrying a count. Its name is not stable across dumps.
func guessCostKey(rows []costRow) (string, bool) {
	for _, r := range rows {
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		for _, k := range keys {
			var items []map[string]json.RawMessage
			if json.Unmarshal(r[k], &items) != nil {
				continue
			}
			for _, item := range items {
				if _, ok := item["count"]; ok {
					return k, true
				}
			}
		}
	}
	return "", false
}

type tables struct {
	text           map[string]string
	avatars        []avatarRow
	avatarPromotes []costRow
	skillDepots    []skillDepotRow
	skills         []skillRow
	dungeons       []dungeonRow
	materials      []materialRow
	proudSkills    []costRow
	weapons        []weaponRow
	weaponPromotes []costRow
}

func decodeTables(raw map[string][]byte) (tables, error) {
	t := tables{}
	for _, target := range []struct {
		table string
		out   any
	}{
		{table: textMapTable, out: &t.text},
		{table: avatarTable, out: &t.avatars},
		{table: avatarPromoteTable, out: &t.avatarPromotes},
		{table: avatarSkillDepot, out: &t.skillDepots},
		{table: avatarSkillTable, out: &t.skills},
		{table: dungeonEntryTable, out: &t.dungeons},
		{table: materialTable, out: &t.materials},
		{table: proudSkillTable, out: &t.proudSkills},
		{table: weaponTable, out: &t.weapons},
		{table: weaponPromoteTable, out: &t.weaponPromotes},
	} {
		body, ok := raw[target.table]
		if !ok {
			return tables{}, fmt.Errorf("table %s was not loaded", target.table)
		}
		err := spider.DecodeJSON(target.table, body, target.out)
		if err != nil {
			return tables{}, err
		}
	}
	return t, nil
}
