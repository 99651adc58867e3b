// Package dataset persists merged datasets as pretty printed JSON arrays.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"wikispider/internal/assets"
	"wikispider/internal/wiki"
)

// Writer saves datasets through the asset store, it implements
// scheduler.Sink.
type Writer struct {
	store assets.Store
}

func NewWriter(store assets.Store) Writer {
	return Writer{store: store}
}

// Encode renders records with a 4 space indent, leaving non-ASCII text and
// html characters unescaped.
func Encode(records []map[string]any) ([]byte, error) {
	if records == nil {
		records = []map[string]any{}
	}
	buf := bytes.NewBuffer(nil)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(records)
	if err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (w Writer) Save(game wiki.Game, category wiki.Category, records []map[string]any) (string, error) {
	data, err := Encode(records)
	if err != nil {
		return "", fmt.Errorf("encode %s/%s: %w", game, category, err)
	}
	return w.store.SaveDataset(game, category, data)
}

// Load reads a previously saved dataset.
func (w Writer) Load(game wiki.Game, category wiki.Category) ([]map[string]any, error) {
	data, err := w.store.Load(w.store.DatasetPath(game, category))
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var records []map[string]any
	err = decoder.Decode(&records)
	if err != nil {
		return nil, err
	}
	return records, nil
}
