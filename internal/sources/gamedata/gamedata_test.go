package gamedata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"wikispider/internal/components/telemetry"
	"wikispider/internal/spider"
	"wikispider/internal/testutil"
	"wikispider/internal/wiki"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// the avatar, material and avatar promote tables use obfuscated keys
var mirrorTables = map[string]string{
	textMapTable: `{
		"1": "神里绫华", "2": "旅行者", "3": "「自由」的教导", "4": "「自由」的指引",
		"5": "「自由」的哲学", "6": "哀叙冰玉", "7": "冰雾花花朵", "8": "西风剑",
		"9": "高塔孤王的破瓦砾", "10": "测试武器", "11": "无锋剑", "12": "牢固的箭簇",
		"13": "智识之冕", "14": "北风之环", "15": "未上线"
	}`,
	avatarTable: `[
		{"ELKKIAIGOBK": 10000002, "DNINKKHEILA": 1, "EOCNJBDLDMK": 10000002, "HCBILEOPKHD": 201, "ECMKJJIDKAE": 2},
		{"ELKKIAIGOBK": 10000005, "DNINKKHEILA": 2, "EOCNJBDLDMK": 10000005, "HCBILEOPKHD": 504, "ECMKJJIDKAE": 1},
		{"ELKKIAIGOBK": 10000999, "DNINKKHEILA": 15, "EOCNJBDLDMK": 10000001, "HCBILEOPKHD": 999, "ECMKJJIDKAE": 9}
	]`,
	avatarPromoteTable: `[
		{"ECMKJJIDKAE": 2, "FPIJIIENLBP": [{}, {}, {}, {}]},
		{"ECMKJJIDKAE": 2, "AKPHFJACMIB": 1, "FPIJIIENLBP": [{"id": 104111, "count": 1}, {"id": 100055, "count": 3}, {"id": 112001, "count": 3}, {}]},
		{"ECMKJJIDKAE": 2, "AKPHFJACMIB": 6, "FPIJIIENLBP": [{"id": 104111, "count": 6}, {"id": 100055, "count": 20}, {"id": 112001, "count": 12}, {}]}
	]`,
	avatarSkillDepot: `[{"id": 201, "energySkill": 10019}, {"id": 202}]`,
	avatarSkillTable: `[{"id": 10019, "proudSkillGroupId": 3319}, {"id": 10018}]`,
	proudSkillTable: `[
		{"proudSkillGroupId": 3319, "level": 9, "costItems": [{"id": 104302, "count": 12}]},
		{"proudSkillGroupId": 3319, "level": 10, "costItems": [{"id": 104303, "count": 16}, {"id": 112001, "count": 12}, {"id": 113002, "count": 2}, {"id": 104319, "count": 1}]}
	]`,
	materialTable: `[
		{"ELKKIAIGOBK": 104301, "DNINKKHEILA": 3},
		{"ELKKIAIGOBK": 104302, "DNINKKHEILA": 4},
		{"ELKKIAIGOBK": 104303, "DNINKKHEILA": 5},
		{"ELKKIAIGOBK": 104111, "DNINKKHEILA": 6},
		{"ELKKIAIGOBK": 100055, "DNINKKHEILA": 7},
		{"ELKKIAIGOBK": 114001, "DNINKKHEILA": 9},
		{"ELKKIAIGOBK": 112001, "DNINKKHEILA": 12},
		{"ELKKIAIGOBK": 104319, "DNINKKHEILA": 13},
		{"ELKKIAIGOBK": 113002, "DNINKKHEILA": 14},
		{"ELKKIAIGOBK": 999999, "DNINKKHEILA": 404}
	]`,
	weaponTable: `[
		{"id": 11401, "nameTextMapHash": 8, "weaponPromoteId": 11401},
		{"id": 11999, "nameTextMapHash": 10, "weaponPromoteId": 11401},
		{"id": 11101, "nameTextMapHash": 11, "weaponPromoteId": 11101}
	]`,
	weaponPromoteTable: `[
		{"weaponPromoteId": 11401, "costItems": [{"id": 114001, "count": 3}, {"id": 112001, "count": 3}, {}]},
		{"weaponPromoteId": 11401, "costItems": [{"id": 114001, "count": 5}, {"id": 112001, "count": 10}, {}]},
		{"weaponPromoteId": 11101, "costItems": [{}, {}]}
	]`,
	dungeonEntryTable: `[
		{"id": 1, "type": "DUNGEN_ENTRY_TYPE_AVATAR_TALENT", "descriptionCycleRewardList": [[104301], [104302], [104303], [104301, 104302, 104303]]},
		{"id": 2, "type": "DUNGEN_ENTRY_TYPE_WEAPON_PROMOTE", "descriptionCycleRewardList": [[114001], [], [], [114001]]},
		{"id": 3, "type": "DUNGEN_ENTRY_TYPE_RELIQUARY"}
	]`,
}

type fixture struct {
	server *httptest.Server
	deps   spider.Deps
	tel    *telemetry.MemoryAPI
	hits   atomic.Int32
}

func newFixture(t *testing.T, overrides map[string]string) *fixture {
	t.Helper()
	f := &fixture{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		table := strings.TrimPrefix(r.URL.Path, "/mirror/")
		body, ok := overrides[table]
		if !ok {
			body, ok = mirrorTables[table]
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.hits.Add(1)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	f.server = server

	deps := testutil.SetupDeps(t, "gamedata")
	f.deps = deps.Deps
	f.tel = deps.Memory
	return f
}

func (f *fixture) adapter(refresh bool) *Adapter {
	return NewAdapter(f.deps, Options{Mirror: f.server.URL + "/mirror", Refresh: refresh})
}

func decodeInto(t *testing.T, raw json.RawMessage, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestCrawl(t *testing.T) {
	f := newFixture(t, nil)
	adapter := f.adapter(true)
	require.Equal(t, wiki.OTHER, adapter.Category())

	records, err := adapter.Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	other := records[0].(*wiki.Other)
	require.Equal(t, "genshin", other.ID)

	var roles Table[RoleMaterials]
	decodeInto(t, other.RolesMaterial, &roles)
	expectedRoles := map[string]RoleMaterials{
		"神里绫华": {
			ID:                 10000002,
			Name:               "神里绫华",
			AscensionMaterials: "哀叙冰玉",
			LevelUpMaterials:   "冰雾花花朵",
			Materials:          []string{"牢固的箭簇"},
			Talent:             []string{"自由", "北风之环"},
		},
	}
	if diff := cmp.Diff(expectedRoles, roles.Data); diff != "" {
		t.Fatal(diff)
	}

	var weapons Table[WeaponMaterials]
	decodeInto(t, other.WeaponsMaterial, &weapons)
	expectedWeapons := map[string]WeaponMaterials{
		"11401": {ID: 11401, Name: "西风剑", Materials: []string{"高塔孤王的破瓦砾", "牢固的箭簇"}},
	}
	if diff := cmp.Diff(expectedWeapons, weapons.Data); diff != "" {
		t.Fatal(diff)
	}

	var daily []map[string]AreaMaterials
	decodeInto(t, other.DailyMaterial, &daily)
	require.Len(t, daily, 7)
	monday := AreaMaterials{
		AvatarMaterials: []string{"「自由」的教导"},
		Avatar:          []string{"10000002"},
		WeaponMaterials: []string{"高塔孤王的破瓦砾"},
		Weapon:          []string{"11401"},
	}
	if diff := cmp.Diff(monday, daily[0]["蒙德"]); diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, daily[0]["蒙德"], daily[3]["蒙德"])
	require.Empty(t, daily[1]["蒙德"].Weapon)
	require.Equal(t, []string{"「自由」的教导", "「自由」的指引", "「自由」的哲学"}, daily[6]["蒙德"].AvatarMaterials)
	require.Empty(t, daily[0]["璃月"].AvatarMaterials)

	// one talent and one weapon domain for six cities
	require.Len(t, f.tel.Reports("warning"), 2)

	stored, err := f.deps.Store.Load("data/raw/genshin/other/gamedata/AvatarExcelConfigData.json")
	require.NoError(t, err)
	require.NotContains(t, string(stored), "ELKKIAIGOBK")
	require.Contains(t, string(stored), `"skillDepotId": 201`)

	archived, err := f.deps.Store.Load("data/raw/genshin/other/roles_material.json")
	require.NoError(t, err)
	require.JSONEq(t, string(other.RolesMaterial), string(archived))
}

func TestCrawlReusesDownloadedTables(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.adapter(true).Crawl(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, len(Tables), f.hits.Load())

	_, err = f.adapter(false).Crawl(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, len(Tables), f.hits.Load())

	_, err = f.adapter(true).Crawl(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2*len(Tables), f.hits.Load())
}

func TestCrawlWithoutCostItems(t *testing.T) {
	f := newFixture(t, map[string]string{
		avatarPromoteTable: `[{"avatarPromoteId": 2, "promoteLevel": 6, "scoinCost": 1000}]`,
	})
	records, err := f.adapter(true).Crawl(context.Background())
	require.ErrorIs(t, err, ErrNoCostKey)
	require.Nil(t, records)
}

func TestCrawlFailsOnMissingTable(t *testing.T) {
	f := newFixture(t, nil)
	adapter := NewAdapter(f.deps, Options{Mirror: f.server.URL + "/elsewhere", Refresh: true})
	_, err := adapter.Crawl(context.Background())
	require.ErrorContains(t, err, "table ")
}

func TestRewriteKeys(t *testing.T) {
	body := rewriteKeys([]byte("[{\"ELKKIAIGOBK\": 1,\r\n\"FPIJIIENLBP\": [], \"ELKKIAIGOBK\"}]"))
	require.Equal(t, "[{\"id\": 1,\n\"costItems\": [], \"ELKKIAIGOBK\"}]", string(body))
}

func TestGuessCostKey(t *testing.T) {
	var rows []costRow
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": 1, "items": [{}]},
		{"id": 2, "tags": ["a"], "items": [{"id": 7, "count": 1}]}
	]`), &rows))
	key, ok := guessCostKey(rows)
	require.True(t, ok)
	require.Equal(t, "items", key)
	require.Equal(t, []costItem{{ID: 7, Count: 1}}, rows[1].costs(key))
	require.Equal(t, 2, rows[1].int("id"))
	require.Equal(t, 0, rows[1].int("missing"))

	_, ok = guessCostKey(rows[:1])
	require.False(t, ok)
}

func TestTalentSeries(t *testing.T) {
	require.Equal(t, "自由", talentSeries("「自由」的教导"))
	require.Equal(t, "", talentSeries("书"))
}
