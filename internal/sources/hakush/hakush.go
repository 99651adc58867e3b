// Package hakush crawls the Genshin Impact data published by api.hakush.in.
package hakush

import (
	"context"
	"fmt"
	"strings"
	"wikispider/internal/spider"
	"wikispider/internal/wiki"
)

const (
	Source   = "hakush"
	Priority = spider.DefaultPriority
)

type Endpoints struct {
	// Data is the root of the json data files.
	Data string
	// UI hosts every image as webp.
	UI string
}

var DefaultEndpoints = Endpoints{
	Data: "https://api.hakush.in/gi/data",
	UI:   "https://api.hakush.in/gi/UI",
}

type adapter struct {
	spider.Base
	endpoints Endpoints
	file      string
}

func newAdapter(category wiki.Category, file string, deps spider.Deps, endpoints Endpoints) adapter {
	return adapter{
		Base: spider.NewBase(spider.Identity{
			Game:     wiki.GENSHIN,
			Category: category,
			Source:   Source,
			Priority: Priority,
		}, deps),
		endpoints: endpoints,
		file:      file,
	}
}

func (a adapter) icons() spider.URLFunc {
	return spider.PrefixURL(a.endpoints.UI)
}

// crawl fetches the data file, a json object keyed by id, and parses every
// entry.
func crawl[T any](ctx context.Context, a adapter, parse func(context.Context, spider.Keyed[T]) (wiki.Record, error)) ([]wiki.Record, error) {
	url := fmt.Sprintf("%s/%s", strings.TrimSuffix(a.endpoints.Data, "/"), a.file)
	body, err := a.Fetch(ctx, url, "json")
	if err != nil {
		return nil, err
	}

	var items map[string]T
	err = spider.DecodeJSON(a.file, body, &items)
	if err != nil {
		return nil, err
	}
	return spider.ParseAll(ctx, a.Tel, spider.Entries(items), parse), nil
}

func All(deps spider.Deps, endpoints Endpoints) []spider.Adapter {
	return []spider.Adapter{
		NewCharacterAdapter(deps, endpoints),
		NewWeaponAdapter(deps, endpoints),
		NewMaterialAdapter(deps, endpoints),
		NewArtifactAdapter(deps, endpoints),
	}
}
