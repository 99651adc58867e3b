package hakush

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"wikispider/internal/components/telemetry"
	"wikispider/internal/spider"
	"wikispider/internal/testutil"
	"wikispider/internal/wiki"

	"github.com/stretchr/testify/require"
)

const characterPayload = `{
	"10000002": {
		"icon": "UI_AvatarIcon_Ayaka",
		"rank": "QUALITY_ORANGE",
		"weapon": "WEAPON_SWORD_ONE_HAND",
		"release": "2021/07/20 10:00:00",
		"element": "Cryo",
		"EN": "Kamisato Ayaka",
		"desc": "",
		"CHS": "神里绫华",
		"birth": [9, 28]
	},
	"10000005-2503": {
		"icon": "UI_AvatarIcon_PlayerBoy",
		"rank": "QUALITY_ORANGE",
		"weapon": "WEAPON_SWORD_ONE_HAND",
		"element": "Anemo",
		"EN": "Traveler",
		"CHS": "旅行者",
		"birth": [0, 0]
	},
	"10000099": {
		"icon": "UI_AvatarIcon_Test",
		"rank": "QUALITY_GREEN",
		"weapon": "WEAPON_BOW",
		"element": "Pyro",
		"CHS": "测试",
		"birth": [1, 1]
	}
}`

const itemPayload = `{
	"104001": {"Name": "流浪者的经验", "Rank": 2, "Type": "角色经验素材", "Icon": "UI_ItemIcon_104001"},
	"107024": {"Name": "占位", "Rank": 1, "Type": "", "Icon": "UI_ItemIcon_107024"},
	"999999": {"Name": "？？？", "Rank": 1, "Type": "", "Icon": ""}
}`

const artifactPayload = `{
	"15001": {
		"rank": [4, 5],
		"set": {
			"4": {"name": {"CHS": "角斗士的终幕礼"}, "desc": {"CHS": "普通攻击造成的伤害提升35%。"}},
			"2": {"name": {"CHS": "角斗士的终幕礼"}, "desc": {"CHS": "攻击力提高18%。"}}
		}
	}
}`

type fixture struct {
	server    *httptest.Server
	deps      spider.Deps
	tel       *telemetry.MemoryAPI
	endpoints Endpoints
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}

	mux := http.NewServeMux()
	mux.HandleFunc("/data/character.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(characterPayload))
	})
	mux.HandleFunc("/data/zh/item.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(itemPayload))
	})
	mux.HandleFunc("/data/artifact.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(artifactPayload))
	})
	mux.HandleFunc("/data/weapon.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"11101": `))
	})
	mux.HandleFunc("/UI/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/UI/")
		if strings.HasSuffix(name, "_Card.webp") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("webp:" + name))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	deps := testutil.SetupDeps(t, "hakush")
	f.deps = deps.Deps
	f.tel = deps.Memory
	f.endpoints = Endpoints{Data: f.server.URL + "/data", UI: f.server.URL + "/UI"}
	return f
}

func sortByID(records []wiki.Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Identity() < records[j].Identity()
	})
}

func TestCharacterAdapter(t *testing.T) {
	f := newFixture(t)
	adapter := NewCharacterAdapter(f.deps, f.endpoints)
	require.Equal(t, spider.DefaultPriority, adapter.Priority())

	records, err := adapter.Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	sortByID(records)

	ayaka := records[0].(*wiki.Character)
	require.Equal(t, "神里绫华", ayaka.Name)
	require.Equal(t, 5, ayaka.Rank)
	require.Equal(t, wiki.CRYO, ayaka.Element)
	require.Equal(t, "", ayaka.BodyType)
	require.Equal(t, f.server.URL+"/UI/UI_Gacha_AvatarImg_Ayaka.webp", ayaka.Gacha.URL())
	require.NotNil(t, ayaka.Gacha.WEBP)
	require.Nil(t, ayaka.GachaCard)

	traveler := records[1].(*wiki.Character)
	require.Equal(t, "10000005-anemo", traveler.ID)
	require.Equal(t, wiki.ANEMO, traveler.Element)
}

func TestMaterialAdapterSkipsPlaceholders(t *testing.T) {
	f := newFixture(t)
	records, err := NewMaterialAdapter(f.deps, f.endpoints).Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	m := records[0].(*wiki.Material)
	require.Equal(t, "104001", m.ID)
	require.Equal(t, "角色经验素材", m.MaterialType)
	require.Equal(t, 2, m.Rank)
	require.Equal(t, "data/raw/genshin/material/hakush/UI_ItemIcon_104001.webp", m.Icon.Path())
	require.Empty(t, f.tel.Reports("warning"))
}

func TestArtifactAdapter(t *testing.T) {
	f := newFixture(t)
	records, err := NewArtifactAdapter(f.deps, f.endpoints).Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	a := records[0].(*wiki.Artifact)
	require.Equal(t, "角斗士的终幕礼", a.Name)
	require.Equal(t, []int{4, 5}, a.LevelList)
	require.Equal(t, map[string]string{
		"2": "攻击力提高18%。",
		"4": "普通攻击造成的伤害提升35%。",
	}, a.AffixList)
	require.Equal(t, f.server.URL+"/UI/UI_RelicIcon_15001_5.webp", a.Sands.URL())
}

func TestWeaponAdapterRejectsMalformedPayload(t *testing.T) {
	f := newFixture(t)
	_, err := NewWeaponAdapter(f.deps, f.endpoints).Crawl(context.Background())
	require.ErrorContains(t, err, "decode weapon.json")
}

func TestCharacterID(t *testing.T) {
	require.Equal(t, "10000002", characterID("10000002", "Cryo"))
	require.Equal(t, "10000007-dendro", characterID("10000007-2708", "Dendro"))
}

func TestSortNumeric(t *testing.T) {
	keys := []string{"4", "x", "10", "2"}
	sortNumeric(keys)
	require.Equal(t, []string{"2", "4", "10", "x"}, keys)
}
