// Package honey scrapes gensh.honeyhunterworld.com. The site serves its
// listings as html tables whose rows are embedded as a json array in an
// inline script, detail pages are plain html.
package honey

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"wikispider/internal/spider"
	"wikispider/internal/wiki"
)

const Source = "honey"

const (
	report_honey_archive = "honey.archive"
	report_honey_listing = "honey.listing"
)

type Endpoints struct {
	Host string
}

var DefaultEndpoints = Endpoints{
	Host: "https://gensh.honeyhunterworld.com",
}

// Resolve joins a site relative reference onto the host.
func (e Endpoints) Resolve(ref string) (string, error) {
	base, err := url.Parse(strings.TrimSuffix(e.Host, "/") + "/")
	if err != nil {
		return "", err
	}
	target, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(target).String(), nil
}

func (e Endpoints) images() spider.URLFunc {
	return spider.PrefixURL(strings.TrimSuffix(e.Host, "/") + "/img")
}

type adapter struct {
	spider.Base
	endpoints Endpoints
}

// newAdapter expects deps.Client to have the cloudflare bypass enabled, the
// site rejects plain clients.
func newAdapter(category wiki.Category, priority int, deps spider.Deps, endpoints Endpoints) adapter {
	return adapter{
		Base: spider.NewBase(spider.Identity{
			Game:     wiki.GENSHIN,
			Category: category,
			Source:   Source,
			Priority: priority,
		}, deps),
		endpoints: endpoints,
	}
}

var sortableData = regexp.MustCompile(`(?s)sortable_data\.push\((.*?)\);\s*sortable_cur_page`)

// row is one listing row, every cell is an html fragment.
type row []any

func (r row) cell(i int) string {
	if i >= len(r) {
		return ""
	}
	switch v := r[i].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// extractRows pulls the listing rows out of a page.
func extractRows(page []byte) ([]row, error) {
	match := sortableData.FindSubmatch(page)
	if match == nil {
		return nil, fmt.Errorf("no sortable data in page")
	}

	decoder := json.NewDecoder(bytes.NewReader(match[1]))
	decoder.UseNumber()
	var rows []row
	err := decoder.Decode(&rows)
	if err != nil {
		return nil, fmt.Errorf("decode sortable data: %w", err)
	}
	return rows, nil
}

// firstMatch returns the first capture group of re in s.
func firstMatch(re *regexp.Regexp, s string) (string, bool) {
	match := re.FindStringSubmatch(s)
	if match == nil {
		return "", false
	}
	return match[1], true
}

func All(deps spider.Deps, endpoints Endpoints) []spider.Adapter {
	return []spider.Adapter{
		NewWeaponAdapter(deps, endpoints),
		NewNameCardAdapter(deps, endpoints),
	}
}
