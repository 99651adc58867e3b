package scheduler

import (
	"slices"
	"sync"
	"wikispider/internal/components/assert"
	"wikispider/internal/spider"
	"wikispider/internal/wiki"
)

// Group is the set of adapters producing one (game, category) dataset,
// sorted by ascending priority.
type Group struct {
	Game     wiki.Game
	Category wiki.Category
	Adapters []spider.Adapter
}

type registration struct {
	order   int
	adapter spider.Adapter
}

// Registry holds every adapter the bootstrap registered.
type Registry struct {
	mutex   sync.Mutex
	entries []registration
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(adapters ...spider.Adapter) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, a := range adapters {
		assert.NotNil(a, "adapter")
		r.entries = append(r.entries, registration{order: len(r.entries), adapter: a})
	}
}

// Adapters returns every registered adapter in registration order.
func (r *Registry) Adapters() []spider.Adapter {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]spider.Adapter, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.adapter
	}
	return out
}

// Groups returns the non-empty groups ordered by game then category
// declaration order. Adapters of equal priority keep registration order.
func (r *Registry) Groups() []Group {
	r.mutex.Lock()
	entries := slices.Clone(r.entries)
	r.mutex.Unlock()

	slices.SortStableFunc(entries, func(a, b registration) int {
		return a.adapter.Priority() - b.adapter.Priority()
	})

	var groups []Group
	for _, game := range wiki.Games {
		for _, category := range wiki.Categories {
			group := Group{Game: game, Category: category}
			for _, e := range entries {
				if e.adapter.Game() == game && e.adapter.Category() == category {
					group.Adapters = append(group.Adapters, e.adapter)
				}
			}
			if len(group.Adapters) > 0 {
				groups = append(groups, group)
			}
		}
	}
	return groups
}
