// Package ambr crawls the Genshin Impact database published by
// gi.yatta.moe (formerly ambr.top).
package ambr

import (
	"context"
	"fmt"
	"strings"
	"wikispider/internal/spider"
	"wikispider/internal/wiki"
)

const (
	Source   = "ambr"
	Priority = 90
)

type Endpoints struct {
	// API is the root of the CHS json api.
	API string
	// Assets hosts material, artifact and namecard images.
	Assets string
	// Enka hosts character and weapon images.
	Enka string
}

var DefaultEndpoints = Endpoints{
	API:    "https://gi.yatta.moe/api/v2/chs",
	Assets: "https://gi.yatta.moe/assets/UI",
	Enka:   "https://enka.network/ui",
}

type listResponse[T any] struct {
	Data struct {
		Items map[string]T `json:"items"`
	} `json:"data"`
}

// adapter is the part every ambr adapter shares.
type adapter struct {
	spider.Base
	endpoints Endpoints
	resource  string
}

func newAdapter(category wiki.Category, resource string, deps spider.Deps, endpoints Endpoints) adapter {
	return adapter{
		Base: spider.NewBase(spider.Identity{
			Game:     wiki.GENSHIN,
			Category: category,
			Source:   Source,
			Priority: Priority,
		}, deps),
		endpoints: endpoints,
		resource:  resource,
	}
}

func fetchItems[T any](ctx context.Context, a adapter) ([]T, error) {
	url := fmt.Sprintf("%s/%s", strings.TrimSuffix(a.endpoints.API, "/"), a.resource)
	body, err := a.Fetch(ctx, url, "json")
	if err != nil {
		return nil, err
	}

	var res listResponse[T]
	err = spider.DecodeJSON(a.resource, body, &res)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(res.Data.Items))
	for _, item := range res.Data.Items {
		items = append(items, item)
	}
	return items, nil
}

func crawl[T any](ctx context.Context, a adapter, parse func(context.Context, T) (wiki.Record, error)) ([]wiki.Record, error) {
	items, err := fetchItems[T](ctx, a)
	if err != nil {
		return nil, err
	}
	return spider.ParseAll(ctx, a.Tel, items, parse), nil
}

// All returns every ambr adapter.
func All(deps spider.Deps, endpoints Endpoints) []spider.Adapter {
	return []spider.Adapter{
		NewCharacterAdapter(deps, endpoints),
		NewWeaponAdapter(deps, endpoints),
		NewMaterialAdapter(deps, endpoints),
		NewArtifactAdapter(deps, endpoints),
		NewNameCardAdapter(deps, endpoints),
	}
}
