package spider

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"strings"
	"wikispider/internal/components/telemetry"

	"golang.org/x/sync/errgroup"
)

const report_parse_all = "parse-all"

// ParseConcurrency is the most parse tasks an adapter runs at once.
const ParseConcurrency = 10

// ErrSkip is returned by a parse function to drop an item on purpose.
var ErrSkip = errors.New("skip item")

// ParseAll runs parse on every item with at most ParseConcurrency in flight.
// Items whose parse returns an error or panics are reported and dropped,
// ErrSkip drops silently. The output keeps the order of items.
func ParseAll[T any, R any](ctx context.Context, tel telemetry.API, items []T, parse func(context.Context, T) (R, error)) []R {
	results := make([]R, len(items))
	parsed := make([]bool, len(items))

	group := errgroup.Group{}
	group.SetLimit(ParseConcurrency)

	for i, item := range items {
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					tel.ReportBroken(report_parse_all, fmt.Errorf("panic: %v", r), string(debug.Stack()))
				}
			}()
			if ctx.Err() != nil {
				return nil
			}

			result, err := parse(ctx, item)
			if errors.Is(err, ErrSkip) {
				return nil
			}
			if err != nil {
				tel.ReportWarning(report_parse_all, err)
				return nil
			}

			results[i] = result
			parsed[i] = true
			return nil
		})
	}
	group.Wait()

	out := make([]R, 0, len(items))
	for i, ok := range parsed {
		if ok {
			out = append(out, results[i])
		}
	}
	return out
}

// Keyed is an upstream item whose id lives in the key of a JSON object.
type Keyed[T any] struct {
	Key   string
	Value T
}

// Entries turns a JSON object into a slice of its entries, sorted by key.
func Entries[T any](m map[string]T) []Keyed[T] {
	out := make([]Keyed[T], 0, len(m))
	for k, v := range m {
		out = append(out, Keyed[T]{Key: k, Value: v})
	}
	slices.SortFunc(out, func(a, b Keyed[T]) int {
		return strings.Compare(a.Key, b.Key)
	})
	return out
}
