package wiki

import "fmt"

// IconFormat is one of the raster variants an IconAsset can carry.
type IconFormat string

const (
	JPG  IconFormat = "jpg"
	WEBP IconFormat = "webp"
	PNG  IconFormat = "png"
)

// IconAssetURL is where an icon was downloaded from and where it was stored,
// relative to the assets root.
type IconAssetURL struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// IconAsset holds at most one variant per acquisition. Merging records from
// different sources may leave more than one populated.
type IconAsset struct {
	JPG  *IconAssetURL `json:"jpg,omitempty"`
	WEBP *IconAssetURL `json:"webp,omitempty"`
	PNG  *IconAssetURL `json:"png,omitempty"`
}

// NewIconAsset creates an IconAsset with only the given variant set.
func NewIconAsset(format IconFormat, url, path string) (*IconAsset, error) {
	variant := &IconAssetURL{URL: url, Path: path}
	switch format {
	case JPG:
		return &IconAsset{JPG: variant}, nil
	case WEBP:
		return &IconAsset{WEBP: variant}, nil
	case PNG:
		return &IconAsset{PNG: variant}, nil
	}
	return nil, fmt.Errorf("unsupported icon format '%s'", format)
}

// Get returns the first present variant, png then webp then jpg.
func (i *IconAsset) Get() (IconAssetURL, bool) {
	if i == nil {
		return IconAssetURL{}, false
	}
	switch {
	case i.PNG != nil:
		return *i.PNG, true
	case i.WEBP != nil:
		return *i.WEBP, true
	case i.JPG != nil:
		return *i.JPG, true
	}
	return IconAssetURL{}, false
}

func (i *IconAsset) URL() string {
	v, _ := i.Get()
	return v.URL
}

func (i *IconAsset) Path() string {
	v, _ := i.Get()
	return v.Path
}
