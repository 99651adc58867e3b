package wiki

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultRank is used when a source does not publish a rarity.
const DefaultRank = 3

// Record is a canonical wiki entity produced by an adapter.
type Record interface {
	// Identity returns the record's id.
	Identity() string
	// IconFields lists the icon-bearing fields of the record type.
	IconFields() []string
	// SetIcon assigns icon to the named icon field.
	SetIcon(field string, icon *IconAsset) error
}

// Base carries the fields every record has.
type Base struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	ENName string `json:"en_name"`
	Rank   int    `json:"rank"`
}

func NewBase(id, name, enName string) Base {
	return Base{ID: id, Name: name, ENName: enName, Rank: DefaultRank}
}

func (b Base) Identity() string {
	return b.ID
}

func unknownIconField(r Record, field string) error {
	return fmt.Errorf("%T has no icon field '%s'", r, field)
}

// Flatten converts a record into the key-value form used for merging and
// persistence. Numbers are kept as json.Number so they round trip exactly.
func Flatten(r Record) (map[string]any, error) {
	buf, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(buf))
	decoder.UseNumber()

	var out map[string]any
	err = decoder.Decode(&out)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%T flattened to null", r)
	}
	return out, nil
}
