package ambr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"wikispider/internal/components/telemetry"
	"wikispider/internal/request"
	"wikispider/internal/spider"
	"wikispider/internal/testutil"
	"wikispider/internal/wiki"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const avatarPayload = `{
	"response": 200,
	"data": {
		"items": {
			"10000002": {
				"id": 10000002,
				"rank": 5,
				"name": "神里绫华",
				"element": "Ice",
				"weaponType": "WEAPON_SWORD_ONE_HAND",
				"region": "INAZUMA",
				"bodyType": "BODY_GIRL",
				"icon": "UI_AvatarIcon_Ayaka",
				"birthday": [9, 28],
				"route": "Kamisato Ayaka"
			},
			"10000005-anemo": {
				"id": "10000005-anemo",
				"rank": 5,
				"name": "旅行者",
				"element": "Wind",
				"weaponType": "WEAPON_SWORD_ONE_HAND",
				"region": "MAINACTOR",
				"bodyType": "BODY_BOY",
				"icon": "UI_AvatarIcon_PlayerBoy",
				"birthday": [0, 0],
				"route": "Traveler"
			},
			"10000999": {
				"id": 10000999,
				"name": "broken",
				"element": "Plasma",
				"weaponType": "WEAPON_BOW",
				"icon": "UI_AvatarIcon_Broken",
				"birthday": [1, 1]
			}
		}
	}
}`

const reliquaryPayload = `{
	"data": {
		"items": {
			"15001": {
				"id": 15001,
				"name": "角斗士的终幕礼",
				"route": "Gladiator's Finale",
				"levelList": [4, 5],
				"affixList": {"2": "攻击力提高18%。", "4": "普通攻击造成的伤害提升35%。"}
			},
			"15004": {
				"id": 15004,
				"name": "冰之川与雪之砂",
				"route": "Blizzard Walker",
				"levelList": [4, 5],
				"affixList": {}
			}
		}
	}
}`

const namecardPayload = `{
	"data": {
		"items": {
			"210001": {"id": 210001, "name": "原神·印象", "route": "Genshin Impact: Impression", "rank": 4, "icon": "UI_NameCardIcon_0"}
		}
	}
}`

type fixture struct {
	server    *httptest.Server
	deps      spider.Deps
	tel       *telemetry.MemoryAPI
	endpoints Endpoints
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/avatar", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(avatarPayload))
	})
	mux.HandleFunc("/api/reliquary", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(reliquaryPayload))
	})
	mux.HandleFunc("/api/namecard", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(namecardPayload))
	})
	mux.HandleFunc("/api/weapon", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	serveImage := func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		if strings.Contains(name, "_Card") || strings.HasPrefix(name, "UI_RelicIcon_15004") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("png:" + name))
	}
	mux.HandleFunc("/enka/", serveImage)
	mux.HandleFunc("/assets/", serveImage)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	deps := testutil.SetupDeps(t, "ambr")
	return fixture{
		server: server,
		tel:    deps.Memory,
		deps:   deps.Deps,
		endpoints: Endpoints{
			API:    server.URL + "/api",
			Assets: server.URL + "/assets/UI",
			Enka:   server.URL + "/enka/ui",
		},
	}
}

func sortByID(records []wiki.Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Identity() < records[j].Identity()
	})
}

func TestCharacterAdapter(t *testing.T) {
	f := newFixture(t)
	adapter := NewCharacterAdapter(f.deps, f.endpoints)
	require.Equal(t, Priority, adapter.Priority())
	require.Equal(t, Source, adapter.Source())

	records, err := adapter.Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	sortByID(records)

	ayaka := records[0].(*wiki.Character)
	require.Equal(t, "10000002", ayaka.ID)
	require.Equal(t, "Kamisato Ayaka", ayaka.ENName)
	require.Equal(t, 5, ayaka.Rank)
	require.Equal(t, wiki.CRYO, ayaka.Element)
	require.Equal(t, wiki.SWORD, ayaka.WeaponType)
	require.Equal(t, wiki.INAZUMA, ayaka.Association)
	require.Equal(t, wiki.Birthday{Month: 9, Day: 28}, ayaka.Birthday)

	require.Equal(t, f.server.URL+"/enka/ui/UI_AvatarIcon_Ayaka.png", ayaka.Icon.URL())
	require.Equal(t, "data/raw/genshin/character/ambr/UI_AvatarIcon_Ayaka.png", ayaka.Icon.Path())
	require.NotNil(t, ayaka.Side)
	require.NotNil(t, ayaka.Gacha)
	require.Nil(t, ayaka.GachaCard)

	traveler := records[1].(*wiki.Character)
	require.Equal(t, "10000005-anemo", traveler.ID)
	require.Equal(t, wiki.RANGER, traveler.Association)

	// the malformed element and the missing card icons
	require.NotEmpty(t, f.tel.Reports("warning"))

	raw, err := f.deps.Store.Load("data/raw/genshin/character/ambr.json")
	require.NoError(t, err)
	require.Equal(t, avatarPayload, string(raw))
}

func TestArtifactAdapterQuietList(t *testing.T) {
	f := newFixture(t)
	records, err := NewArtifactAdapter(f.deps, f.endpoints).Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	sortByID(records)

	gladiator := records[0].(*wiki.Artifact)
	require.Equal(t, []int{4, 5}, gladiator.LevelList)
	require.Equal(t, "攻击力提高18%。", gladiator.AffixList["2"])
	require.Equal(t, f.server.URL+"/assets/UI/reliquary/UI_RelicIcon_15001_4.png", gladiator.Flower.URL())
	require.NotNil(t, gladiator.Circlet)

	blizzard := records[1].(*wiki.Artifact)
	require.Nil(t, blizzard.Icon())
	require.Empty(t, f.tel.Reports("warning"))
}

func TestNameCardAdapter(t *testing.T) {
	f := newFixture(t)
	records, err := NewNameCardAdapter(f.deps, f.endpoints).Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	flat, err := wiki.Flatten(records[0])
	require.NoError(t, err)
	profile := flat["profile"].(map[string]any)["png"].(map[string]any)
	expected := map[string]any{
		"url":  f.server.URL + "/assets/UI/namecard/UI_NameCardPic_0_P.png",
		"path": "data/raw/genshin/namecard/ambr/UI_NameCardPic_0_P.png",
	}
	if diff := cmp.Diff(expected, profile); diff != "" {
		t.Fatal(diff)
	}
}

func TestWeaponAdapterFailsWhenListFails(t *testing.T) {
	f := newFixture(t)
	records, err := NewWeaponAdapter(f.deps, f.endpoints).Crawl(context.Background())
	require.Error(t, err)
	require.Nil(t, records)

	var reqErr *request.Error
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, http.StatusBadGateway, reqErr.Status)
}

func TestProfileName(t *testing.T) {
	require.Equal(t, "UI_NameCardPic_Bp1_P", profileName("UI_NameCardIcon_Bp1"))
	require.Equal(t, "UI_NameCardPic_Kokomi_Alpha_P", profileName("UI_NameCardIcon_Kokomi_Alpha"))
	require.Equal(t, "", profileName("broken"))
}

func TestAll(t *testing.T) {
	f := newFixture(t)
	categories := []wiki.Category{}
	for _, a := range All(f.deps, f.endpoints) {
		categories = append(categories, a.Category())
	}
	require.Equal(t, []wiki.Category{wiki.CHARACTER, wiki.WEAPON, wiki.MATERIAL, wiki.ARTIFACT, wiki.NAMECARD}, categories)
}
