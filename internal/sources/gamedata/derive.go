package gamedata

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"wikispider/internal/components/telemetry"
)

// ErrNoCostKey means the promote table has no recognizable cost field, none
// of the material tables can be derived without it.
var ErrNoCostKey = errors.New("cannot determine the cost items field of the promote table")

const (
	dungeonTalent = "DUNGEN_ENTRY_TYPE_AVATAR_TALENT"
	dungeonWeapon = "DUNGEN_ENTRY_TYPE_WEAPON_PROMOTE"

	// characters not yet released carry this tag group
	unreleasedTagGroup = 10000001
	// the promote level whose costs name a character's ascension materials
	maxPromoteLevel = 6
	// the talent level whose costs name a character's talent books
	talentBookLevel = 10
)

// Cities are the regions with domains, in the order the dungeon table lists
// them.
var Cities = []string{"蒙德", "璃月", "稻妻", "须弥", "枫丹", "纳塔"}

// characters sharing a name with a playable character, or not playable
var ignoredCharacters = map[string]bool{
	"旅行者":   true,
	"奇偶·男性": true,
	"奇偶·女性": true,
}

type Table[T any] struct {
	Status int          `json:"status"`
	Data   map[string]T `json:"data"`
}

func newTable[T any]() Table[T] {
	return Table[T]{Data: map[string]T{}}
}

type RoleMaterials struct {
	ID                 int      `json:"id"`
	Name               string   `json:"name"`
	AscensionMaterials string   `json:"ascension_materials"`
	LevelUpMaterials   string   `json:"level_up_materials"`
	Materials          []string `json:"materials"`
	// Talent is the talent book series followed by the weekly boss drop.
	Talent []string `json:"talent"`
}

type WeaponMaterials struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Materials []string `json:"materials"`
}

// AreaMaterials is what one region's domains drop on one weekday and who
// uses it.
type AreaMaterials struct {
	AvatarMaterials []string `json:"avatar_materials"`
	Avatar          []string `json:"avatar"`
	WeaponMaterials []string `json:"weapon_materials"`
	Weapon          []string `json:"weapon"`
}

// DailyMaterials is indexed by weekday, Monday first, then by city.
type DailyMaterials []map[string]*AreaMaterials

type deriver struct {
	data      tables
	tel       telemetry.API
	costKey   string
	materials map[int]string
}

func (d *deriver) materialName(id int) (string, bool) {
	if d.materials == nil {
		d.materials = map[int]string{}
		for _, m := range d.data.materials {
			if name, ok := d.data.text[m.NameTextMapHash.String()]; ok {
				d.materials[m.ID] = name
			}
		}
	}
	name, ok := d.materials[id]
	return name, ok
}

func (d *deriver) materialNames(ids []int) []string {
	names := []string{}
	for _, id := range ids {
		if id == 0 {
			continue
		}
		name, ok := d.materialName(id)
		if !ok {
			continue
		}
		names = append(names, name)
	}
	return names
}

// talentSeries is the series name inside the brackets of a talent book,
// 「自由」的教导 -> 自由.
func talentSeries(book string) string {
	runes := []rune(book)
	if len(runes) < 3 {
		return ""
	}
	return string(runes[1:3])
}

func appendUnique(ids []int, id int) []int {
	if id == 0 || slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

type character struct {
	id        int
	name      string
	promoteID int
	depotID   int
}

func (d *deriver) characters() []character {
	out := []character{}
	seen := map[string]bool{}
	for _, a := range d.data.avatars {
		if a.FeatureTagGroupID == unreleasedTagGroup {
			continue
		}
		name, ok := d.data.text[a.NameTextMapHash.String()]
		if !ok || ignoredCharacters[name] || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, character{id: a.ID, name: name, promoteID: a.AvatarPromoteID, depotID: a.SkillDepotID})
	}
	return out
}

// roles derives the materials every character needs to ascend, level up
// and raise talents, keyed by character name.
func (d *deriver) roles() (Table[*RoleMaterials], error) {
	key, ok := guessCostKey(d.data.avatarPromotes)
	if !ok {
		return Table[*RoleMaterials]{}, ErrNoCostKey
	}
	d.costKey = key

	// promote id -> the last promote row, and every distinct common and boss
	// material across levels
	finalPromote := map[int][]costItem{}
	promoteMaterials := map[int][]int{}
	for _, row := range d.data.avatarPromotes {
		pid := row.int("avatarPromoteId")
		costs := row.costs(d.costKey)
		if len(costs) != 4 {
			continue
		}
		for _, c := range costs[2:] {
			promoteMaterials[pid] = appendUnique(promoteMaterials[pid], c.ID)
		}
		if row.int("promoteLevel") == maxPromoteLevel {
			finalPromote[pid] = costs
		}
	}

	talents := d.talentMaterials()

	out := newTable[*RoleMaterials]()
	for _, c := range d.characters() {
		role := &RoleMaterials{ID: c.id, Name: c.name, Materials: []string{}, Talent: []string{}}
		out.Data[c.name] = role

		if costs, ok := finalPromote[c.promoteID]; ok {
			role.AscensionMaterials, _ = d.materialName(costs[0].ID)
			role.LevelUpMaterials, _ = d.materialName(costs[1].ID)
			ids := slices.Clone(promoteMaterials[c.promoteID])
			slices.Sort(ids)
			role.Materials = d.materialNames(ids)
		} else {
			d.tel.ReportWarning(report_gamedata_roles, c.name, fmt.Errorf("no promote data for promote id %d", c.promoteID))
		}

		if talent, ok := talents[c.depotID]; ok {
			role.Talent = talent
		} else {
			d.tel.ReportWarning(report_gamedata_roles, c.name, fmt.Errorf("no talent data for skill depot %d", c.depotID))
		}
	}
	return out, nil
}

// talentMaterials maps a skill depot to the talent book series and boss
// drop its elemental burst needs at the highest talent level.
func (d *deriver) talentMaterials() map[int][]string {
	burstByDepot := map[int]int{}
	for _, depot := range d.data.skillDepots {
		if depot.EnergySkill != 0 {
			burstByDepot[depot.ID] = depot.EnergySkill
		}
	}
	groupBySkill := map[int]int{}
	for _, skill := range d.data.skills {
		if skill.ProudSkillGroupID != 0 {
			groupBySkill[skill.ID] = skill.ProudSkillGroupID
		}
	}
	byGroup := map[int][]string{}
	for _, row := range d.data.proudSkills {
		if row.int("level") != talentBookLevel {
			continue
		}
		costs := row.costs(d.costKey)
		if len(costs) < 3 {
			continue
		}
		book, okBook := d.materialName(costs[0].ID)
		boss, okBoss := d.materialName(costs[2].ID)
		if !okBook || !okBoss {
			continue
		}
		byGroup[row.int("proudSkillGroupId")] = []string{talentSeries(book), boss}
	}

	out := map[int][]string{}
	for depot, burst := range burstByDepot {
		if talent, ok := byGroup[groupBySkill[burst]]; ok {
			out[depot] = talent
		}
	}
	return out
}

// weapons derives the ascension materials of every weapon, keyed by id.
func (d *deriver) weapons() Table[*WeaponMaterials] {
	byPromote := map[int][]int{}
	for _, row := range d.data.weaponPromotes {
		costs := row.costs(d.costKey)
		if len(costs) != 3 {
			continue
		}
		pid := row.int("weaponPromoteId")
		for _, c := range costs {
			byPromote[pid] = appendUnique(byPromote[pid], c.ID)
		}
	}

	out := newTable[*WeaponMaterials]()
	for _, w := range d.data.weapons {
		name := d.data.text[w.NameTextMapHash.String()]
		if strings.Contains(name, "test") || strings.Contains(name, "测试") {
			continue
		}
		ids, ok := byPromote[w.WeaponPromoteID]
		if !ok {
			continue
		}
		out.Data[strconv.Itoa(w.ID)] = &WeaponMaterials{
			ID:        w.ID,
			Name:      name,
			Materials: d.materialNames(ids),
		}
	}
	return out
}

// daily lays the domain rewards out per weekday and city, then lists the
// characters and weapons that can use them.
func (d *deriver) daily(roles Table[*RoleMaterials], weapons Table[*WeaponMaterials]) DailyMaterials {
	out := make(DailyMaterials, 7)
	for week := range out {
		out[week] = map[string]*AreaMaterials{}
		for _, city := range Cities {
			out[week][city] = &AreaMaterials{
				AvatarMaterials: []string{},
				Avatar:          []string{},
				WeaponMaterials: []string{},
				Weapon:          []string{},
			}
		}
	}

	talentDomains := []dungeonRow{}
	weaponDomains := []dungeonRow{}
	for _, dungeon := range d.data.dungeons {
		switch dungeon.Type {
		case dungeonTalent:
			talentDomains = append(talentDomains, dungeon)
		case dungeonWeapon:
			weaponDomains = append(weaponDomains, dungeon)
		}
	}

	d.layoutDomains(out, talentDomains, func(a *AreaMaterials, names []string) { a.AvatarMaterials = names })
	d.layoutDomains(out, weaponDomains, func(a *AreaMaterials, names []string) { a.WeaponMaterials = names })

	seriesUsers := map[string][]string{}
	for _, role := range roles.Data {
		if len(role.Talent) == 0 {
			continue
		}
		seriesUsers[role.Talent[0]] = append(seriesUsers[role.Talent[0]], strconv.Itoa(role.ID))
	}
	materialUsers := map[string][]string{}
	for _, w := range weapons.Data {
		if len(w.Materials) == 0 {
			continue
		}
		materialUsers[w.Materials[0]] = append(materialUsers[w.Materials[0]], strconv.Itoa(w.ID))
	}

	for _, cities := range out {
		for _, area := range cities {
			for _, book := range area.AvatarMaterials {
				for _, id := range seriesUsers[talentSeries(book)] {
					if !slices.Contains(area.Avatar, id) {
						area.Avatar = append(area.Avatar, id)
					}
				}
			}
			for _, material := range area.WeaponMaterials {
				for _, id := range materialUsers[material] {
					if !slices.Contains(area.Weapon, id) {
						area.Weapon = append(area.Weapon, id)
					}
				}
			}
			slices.Sort(area.Avatar)
			slices.Sort(area.Weapon)
		}
	}
	return out
}

// layoutDomains assigns the i-th domain to the i-th city. The reward cycle
// lists Monday to Wednesday followed by Sunday, Thursday to Saturday repeat
// the first three days.
func (d *deriver) layoutDomains(out DailyMaterials, domains []dungeonRow, set func(*AreaMaterials, []string)) {
	if len(domains) != len(Cities) {
		d.tel.ReportWarning(report_gamedata_daily, fmt.Errorf("%d domains for %d cities", len(domains), len(Cities)))
	}
	for i, dungeon := range domains {
		if i >= len(Cities) {
			break
		}
		cycle := dungeon.CycleReward
		if len(cycle) != 4 {
			d.tel.ReportWarning(report_gamedata_daily, dungeon.ID, fmt.Errorf("reward cycle of length %d", len(cycle)))
			continue
		}
		week := [][]int{cycle[0], cycle[1], cycle[2], cycle[0], cycle[1], cycle[2], cycle[3]}
		for day, rewards := range week {
			set(out[day][Cities[i]], d.materialNames(rewards))
		}
	}
}
