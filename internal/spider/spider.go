package spider

import (
	"context"
	"fmt"
	"path"
	"strings"
	"wikispider/internal/assets"
	"wikispider/internal/components/assert"
	"wikispider/internal/components/telemetry"
	"wikispider/internal/request"
	"wikispider/internal/wiki"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("wikispider/internal/spider")

const (
	report_base_fetch    = "base.fetch"
	report_base_download = "base.download"
	report_base_icon     = "base.acquire-icons"
)

// DefaultPriority is used by adapters that do not need to run earlier or
// later than their peers.
const DefaultPriority = 100

// Adapter fetches one (game, category) from one source and normalizes it
// into canonical records.
type Adapter interface {
	Game() wiki.Game
	Category() wiki.Category
	// Source is a short lower-case tag, it names the adapter's raw payload
	// and asset directory.
	Source() string
	// Priority orders adapters of a group, lower runs earlier and wins
	// field conflicts.
	Priority() int
	// Crawl returns every record the source has. Individual records that
	// fail to parse are dropped, an error means the whole source failed.
	Crawl(ctx context.Context) ([]wiki.Record, error)
}

// Identity is the registration identity of an adapter.
type Identity struct {
	Game     wiki.Game
	Category wiki.Category
	Source   string
	Priority int
}

// Deps are the collaborators shared by every adapter.
type Deps struct {
	Client *request.Client
	Store  assets.Store
	Tel    telemetry.API
}

// Base implements the identity half of Adapter and holds the collaborators
// adapters share. Adapters embed it and implement Crawl.
type Base struct {
	id     Identity
	Client *request.Client
	Store  assets.Store
	Tel    telemetry.API
}

func NewBase(id Identity, deps Deps) Base {
	assert.NotEmptyStr(string(id.Game), "game")
	assert.NotEmptyStr(string(id.Category), "category")
	assert.NotEmptyStr(id.Source, "source")
	assert.NotNil(deps.Client, "request client")
	assert.NotNil(deps.Tel, "telemetry")
	if id.Priority == 0 {
		id.Priority = DefaultPriority
	}
	id.Source = strings.ToLower(id.Source)

	return Base{
		id:     id,
		Client: deps.Client,
		Store:  deps.Store,
		Tel: telemetry.NewScopedAPI(
			fmt.Sprintf("%s_%s_%s", id.Source, id.Game, id.Category),
			deps.Tel,
		),
	}
}

func (b Base) Game() wiki.Game         { return b.id.Game }
func (b Base) Category() wiki.Category { return b.id.Category }
func (b Base) Source() string          { return b.id.Source }
func (b Base) Priority() int           { return b.id.Priority }
func (b Base) Identity() Identity      { return b.id }

// Fetch GETs url. When archiveExt is non-empty the payload is also stored
// as the adapter's raw file with that extension.
func (b Base) Fetch(ctx context.Context, url, archiveExt string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	body, err := b.Client.Get(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, err
	}
	if archiveExt != "" {
		err = b.Archive(archiveExt, body)
		if err != nil {
			b.Tel.ReportWarning(report_base_fetch, fmt.Errorf("archive %s: %w", url, err))
		}
	}
	return body, nil
}

// Archive stores data as the adapter's raw payload.
func (b Base) Archive(ext string, data []byte) error {
	_, err := b.Store.SaveRaw(b.id.Game, b.id.Category, b.id.Source, ext, data)
	return err
}

// Download fetches url into the asset store and returns the stored relative
// path. A url whose key already exists is not fetched again.
func (b Base) Download(ctx context.Context, url string) (string, error) {
	key, err := assets.KeyFromURL(b.id.Game, b.id.Category, b.id.Source, url)
	if err != nil {
		return "", err
	}
	if b.Store.Exists(key) {
		return b.Store.RelPath(key), nil
	}

	body, err := b.Client.Get(ctx, url)
	if err != nil {
		return "", err
	}
	rel, err := b.Store.Save(key, body)
	if err != nil {
		b.Tel.ReportBroken(report_base_download, err, url)
		return "", err
	}
	return rel, nil
}

// IconSpec declares where one icon field of a record is downloaded from.
type IconSpec struct {
	Field    string
	Filename string
	Format   wiki.IconFormat
}

// URLFunc builds the download url of an icon file.
type URLFunc func(filename string, format wiki.IconFormat) string

// PrefixURL returns a URLFunc producing <prefix>/<filename>.<format>.
func PrefixURL(prefix string) URLFunc {
	return func(filename string, format wiki.IconFormat) string {
		return fmt.Sprintf("%s/%s.%s", strings.TrimSuffix(prefix, "/"), filename, format)
	}
}

// AcquireIcons downloads every icon in specs and assigns it to rec. A failed
// download leaves its field unset and is reported as a warning unless quiet
// is true. It returns the number of icons that were assigned.
func (b Base) AcquireIcons(ctx context.Context, rec wiki.Record, specs []IconSpec, urlFor URLFunc, quiet bool) int {
	assigned := 0
	for _, spec := range specs {
		url := urlFor(spec.Filename, spec.Format)
		rel, err := b.Download(ctx, url)
		if err != nil {
			if !quiet {
				b.Tel.ReportWarning(report_base_icon, rec.Identity(), spec.Field, err)
			}
			continue
		}

		icon, err := wiki.NewIconAsset(spec.Format, url, rel)
		if err == nil {
			err = rec.SetIcon(spec.Field, icon)
		}
		if err != nil {
			b.Tel.ReportBroken(report_base_icon, rec.Identity(), spec.Field, err)
			continue
		}
		assigned++
	}
	return assigned
}

// TrimExt drops the extension of a file name taken from a url or path.
func TrimExt(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}
