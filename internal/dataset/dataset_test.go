package dataset

import (
	"encoding/json"
	"testing"
	"wikispider/internal/assets"
	"wikispider/internal/wiki"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	data, err := Encode([]map[string]any{
		{"id": "11101", "name": "无锋剑", "description": "<i>a & b</i>"},
	})
	require.NoError(t, err)

	expected := `[
    {
        "description": "<i>a & b</i>",
        "id": "11101",
        "name": "无锋剑"
    }
]`
	require.Equal(t, expected, string(data))

	data, err = Encode(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))
}

func TestWriterRoundTrip(t *testing.T) {
	store, err := assets.NewStore(t.TempDir())
	require.NoError(t, err)
	writer := NewWriter(store)

	records := []map[string]any{
		{"id": "1", "rank": json.Number("5")},
		{"id": "2", "icon": map[string]any{"png": map[string]any{"url": "u", "path": "p"}}},
	}
	path, err := writer.Save(wiki.GENSHIN, wiki.MATERIAL, records)
	require.NoError(t, err)
	require.Equal(t, "data/raw/genshin/material.json", path)

	loaded, err := writer.Load(wiki.GENSHIN, wiki.MATERIAL)
	require.NoError(t, err)
	if diff := cmp.Diff(records, loaded); diff != "" {
		t.Fatal(diff)
	}
}
