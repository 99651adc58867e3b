// Package merge folds the record batches of several sources for the same
// (game, category) into one dataset. Batches are given in ascending
// priority order and the first writer of a field wins.
package merge

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"wikispider/internal/wiki"
	"wikispider/lib/textutil"

	"github.com/antzucaro/matchr"
)

var ErrNoPolicy = errors.New("no merge policy")

// Policy describes how records of one category are matched and which
// fields are expected to agree between sources.
type Policy struct {
	// Key is the field records are matched on.
	Key string
	// Authoritative fields produce a Collision when two sources disagree on them.
	Authoritative []string
}

type GroupKey struct {
	Game     wiki.Game
	Category wiki.Category
}

// Policies is the table of merge policies per group.
type Policies map[GroupKey]Policy

func (p Policies) For(game wiki.Game, category wiki.Category) (Policy, error) {
	policy, ok := p[GroupKey{Game: game, Category: category}]
	if !ok || policy.Key == "" {
		return Policy{}, fmt.Errorf("%w for %s/%s", ErrNoPolicy, game, category)
	}
	return policy, nil
}

// DefaultPolicies keys every group by `id`, except genshin namecards which
// are keyed by `name`.
func DefaultPolicies() Policies {
	policies := Policies{}
	for _, game := range wiki.Games {
		for _, category := range wiki.Categories {
			policies[GroupKey{Game: game, Category: category}] = Policy{
				Key:           "id",
				Authoritative: []string{"name"},
			}
		}
	}
	policies[GroupKey{Game: wiki.GENSHIN, Category: wiki.NAMECARD}] = Policy{
		Key:           "name",
		Authoritative: []string{"id"},
	}
	return policies
}

// Collision is a disagreement on an authoritative field between the record
// already in the dataset and an incoming record with the same key.
type Collision struct {
	Key       string
	Field     string
	Kept      any
	Discarded any
	// Batch is the index of the batch the discarded value came from.
	Batch int
	// Similarity is the Jaro-Winkler similarity of the two values when both
	// are strings, otherwise 0. Strings that differ only by case or
	// whitespace do not collide.
	Similarity float64
}

type Result struct {
	Records    []map[string]any
	Collisions []Collision
	// Dropped counts records without a usable key.
	Dropped int
}

// Merge folds batches in order. The output holds one record per key in
// first-seen order. The input batches are not modified.
func Merge(batches [][]map[string]any, policy Policy) (Result, error) {
	if policy.Key == "" {
		return Result{}, ErrNoPolicy
	}

	result := Result{Records: []map[string]any{}}
	index := map[string]map[string]any{}

	for batchIdx, batch := range batches {
		for _, record := range batch {
			key, ok := keyOf(record, policy.Key)
			if !ok {
				result.Dropped++
				continue
			}

			existing, found := index[key]
			if !found {
				cloned := cloneMap(record)
				index[key] = cloned
				result.Records = append(result.Records, cloned)
				continue
			}

			for _, field := range policy.Authoritative {
				if c, ok := collide(existing, record, field); ok {
					c.Key = key
					c.Batch = batchIdx
					result.Collisions = append(result.Collisions, c)
				}
			}
			Overlay(existing, record)
		}
	}

	return result, nil
}

// Overlay copies every non-empty field of src into dst where dst's field is
// absent or empty. When both values are maps it recurses, any other
// existing value is kept. dst is modified in place, src is not.
func Overlay(dst, src map[string]any) {
	for key, value := range src {
		if key == "" || IsEmpty(value) {
			continue
		}

		current, present := dst[key]
		if !present || IsEmpty(current) {
			dst[key] = cloneValue(value)
			continue
		}

		currentMap, currentIsMap := current.(map[string]any)
		valueMap, valueIsMap := value.(map[string]any)
		if currentIsMap && valueIsMap {
			Overlay(currentMap, valueMap)
		}
	}
}

// IsEmpty reports whether a flattened value counts as absent: nil, false,
// zero, the empty string and empty collections.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case json.Number:
		if v == "" {
			return true
		}
		f, err := v.Float64()
		return err == nil && f == 0
	case float64:
		return v == 0
	case float32:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return rv.IsZero()
}

func keyOf(record map[string]any, field string) (string, bool) {
	value, ok := record[field]
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, v != ""
	case json.Number:
		return v.String(), v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	}
	return "", false
}

func collide(existing, incoming map[string]any, field string) (Collision, bool) {
	kept, ok := existing[field]
	if !ok || IsEmpty(kept) {
		return Collision{}, false
	}
	discarded, ok := incoming[field]
	if !ok || IsEmpty(discarded) {
		return Collision{}, false
	}
	if reflect.DeepEqual(kept, discarded) {
		return Collision{}, false
	}

	c := Collision{Field: field, Kept: kept, Discarded: discarded}
	keptStr, keptIsStr := kept.(string)
	discardedStr, discardedIsStr := discarded.(string)
	if keptIsStr && discardedIsStr {
		if textutil.SameName(keptStr, discardedStr) {
			return Collision{}, false
		}
		c.Similarity = matchr.JaroWinkler(keptStr, discardedStr, false)
	}
	return c, true
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	}
	return value
}
