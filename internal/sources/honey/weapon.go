package honey

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"wikispider/internal/spider"
	"wikispider/internal/wiki"
	"wikispider/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("wikispider/internal/sources/honey")

// WeaponPriority puts honey last among weapon sources, it only fills gaps.
const WeaponPriority = 110

var (
	listingName = regexp.MustCompile(`>(.*)<`)
	listingHref = regexp.MustCompile(`"(.*?)"`)
	gachaImage  = regexp.MustCompile(`/img/(.*?)_gacha`)
)

// family listing pages, one per weapon type
var weaponFamilies = []string{"sword", "claymore", "polearm", "catalyst", "bow"}

type weaponPage struct {
	Name string
	URL  string
}

type WeaponAdapter struct {
	adapter
}

func NewWeaponAdapter(deps spider.Deps, endpoints Endpoints) *WeaponAdapter {
	return &WeaponAdapter{adapter: newAdapter(wiki.WEAPON, WeaponPriority, deps, endpoints)}
}

func (a *WeaponAdapter) Crawl(ctx context.Context) ([]wiki.Record, error) {
	pages, err := a.listPages(ctx)
	if err != nil {
		return nil, err
	}
	records := spider.ParseAll(ctx, a.Tel, pages, a.parse)

	raw, err := spider.EncodeJSON(records)
	if err == nil {
		err = a.Archive("json", raw)
	}
	if err != nil {
		a.Tel.ReportWarning(report_honey_archive, err)
	}
	return records, nil
}

// listPages collects the detail page of every weapon from the family
// listings. Some weapons are listed more than once, only the first
// occurrence of a name is kept.
func (a *WeaponAdapter) listPages(ctx context.Context) ([]weaponPage, error) {
	ctx, span := tracer.Start(ctx, "listPages")
	defer span.End()

	seen := map[string]bool{}
	pages := []weaponPage{}
	for _, family := range weaponFamilies {
		listing, err := a.endpoints.Resolve(fmt.Sprintf("fam_%s/?lang=CHS", family))
		if err != nil {
			return nil, err
		}
		body, err := a.Fetch(ctx, listing, "")
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch listing")
			return nil, err
		}
		rows, err := extractRows(body)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to read listing")
			return nil, fmt.Errorf("%s listing: %w", family, err)
		}

		for _, r := range rows {
			name, ok := firstMatch(listingName, r.cell(1))
			href, hasHref := firstMatch(listingHref, r.cell(0))
			if !ok || !hasHref {
				a.Tel.ReportWarning(report_honey_listing, family, fmt.Errorf("malformed row %v", r))
				continue
			}
			name = strings.TrimSpace(name)
			if seen[name] {
				continue
			}
			seen[name] = true

			detail, err := a.endpoints.Resolve(href)
			if err != nil {
				a.Tel.ReportWarning(report_honey_listing, family, err)
				continue
			}
			pages = append(pages, weaponPage{Name: name, URL: detail})
		}
	}
	span.SetAttributes(attribute.Int("pages", len(pages)))
	return pages, nil
}

func (a *WeaponAdapter) parse(ctx context.Context, page weaponPage) (wiki.Record, error) {
	body, err := a.Fetch(ctx, page.URL, "")
	if err != nil {
		return nil, fmt.Errorf("weapon %s: %w", page.Name, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("weapon %s: %w", page.Name, err)
	}
	w, err := parseWeaponDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("weapon %s: %w", page.Name, err)
	}
	return w, nil
}

// parseWeaponDocument reads the summary table at the top of a weapon page.
// The last cell of each row holds the value, row 0 is the name, row 1 the
// family, row 2 a star image per rarity level. The description sits lower
// for weapons with a passive.
func parseWeaponDocument(doc *goquery.Document) (*wiki.Weapon, error) {
	content := doc.Find(".wp-block-post-content").First()
	if content.Length() == 0 {
		return nil, fmt.Errorf("no post content")
	}
	rows := content.Find("table").First().Find("tr")
	if rows.Length() < 6 {
		return nil, fmt.Errorf("summary table has %d rows", rows.Length())
	}
	value := func(i int) string {
		return htmlutil.SelectionText(rows.Eq(i).Find("td").Last())
	}

	header, err := goquery.OuterHtml(rows.Eq(0))
	if err != nil {
		return nil, err
	}
	gameID, ok := firstMatch(gachaImage, header)
	if !ok {
		return nil, fmt.Errorf("no gacha image")
	}

	familyText := value(1)
	family := strings.TrimSpace(familyText[strings.LastIndex(familyText, ",")+1:])
	weaponType, err := wiki.ParseWeaponType(family)
	if err != nil {
		return nil, err
	}

	rarity := rows.Eq(2).Find("img").Length()
	descriptionRow := 5
	if rarity > 2 {
		descriptionRow = 9
	}
	if rows.Length() <= descriptionRow {
		return nil, fmt.Errorf("summary table has no description row")
	}

	w := &wiki.Weapon{
		Base:        wiki.NewBase(inGameID(gameID), value(0), ""),
		WeaponType:  weaponType,
		Description: value(descriptionRow),
	}
	w.Rank = rarity
	return w, nil
}

// inGameID maps the site's image id (i_n11101) to the in-game id the other
// sources use (11101).
func inGameID(gameID string) string {
	return strings.TrimPrefix(gameID, "i_n")
}
