// Package assets maps logical asset keys onto the filesystem layout under
// the assets root:
//
//	<root>/data/raw/<game>/<category>.json                 merged dataset
//	<root>/data/raw/<game>/<category>/<source>.<ext>       raw source payload
//	<root>/data/raw/<game>/<category>/<source>/<filename>  downloaded asset
//
// Paths handed back to callers are relative to the root.
package assets

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"wikispider/internal/wiki"
)

// RawDir is the directory, relative to the root, all data is stored under.
const RawDir = "data/raw"

// Key identifies a downloaded asset.
type Key struct {
	Game     wiki.Game
	Category wiki.Category
	Source   string
	Filename string
}

func (k Key) validate() error {
	if k.Game == "" || k.Category == "" || k.Source == "" {
		return fmt.Errorf("incomplete asset key %+v", k)
	}
	if k.Filename == "" || k.Filename == "." || k.Filename == ".." || strings.ContainsAny(k.Filename, `/\`) {
		return fmt.Errorf("invalid asset filename '%s'", k.Filename)
	}
	return nil
}

// KeyFromURL derives a key whose filename is the last segment of the URL path.
func KeyFromURL(game wiki.Game, category wiki.Category, source, rawURL string) (Key, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Key{}, err
	}
	key := Key{
		Game:     game,
		Category: category,
		Source:   source,
		Filename: path.Base(u.Path),
	}
	return key, key.validate()
}

// Store is a filesystem backed asset store, concurrent saves of the same key
// are safe, the last writer wins.
type Store struct {
	root string
}

func NewStore(root string) (Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Store{}, err
	}
	return Store{root: abs}, nil
}

func (s Store) Root() string {
	return s.root
}

// RelPath is the path of key relative to the root, using forward slashes.
func (s Store) RelPath(k Key) string {
	return path.Join(RawDir, string(k.Game), string(k.Category), strings.ToLower(k.Source), k.Filename)
}

func (s Store) abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func (s Store) Exists(k Key) bool {
	if k.validate() != nil {
		return false
	}
	info, err := os.Stat(s.abs(s.RelPath(k)))
	return err == nil && !info.IsDir()
}

// Save writes data under key and returns its relative path.
func (s Store) Save(k Key, data []byte) (string, error) {
	err := k.validate()
	if err != nil {
		return "", err
	}
	rel := s.RelPath(k)
	err = s.write(rel, data)
	if err != nil {
		return "", err
	}
	return rel, nil
}

// Load reads a file by its path relative to the root.
func (s Store) Load(rel string) ([]byte, error) {
	clean := path.Clean("/" + filepath.ToSlash(rel))
	return os.ReadFile(s.abs(clean))
}

// RawPath is the relative path of a raw payload or derived table of source.
func (s Store) RawPath(game wiki.Game, category wiki.Category, source, ext string) string {
	return path.Join(RawDir, string(game), string(category), fmt.Sprintf("%s.%s", strings.ToLower(source), ext))
}

// SaveRaw stores a raw payload and returns its relative path.
func (s Store) SaveRaw(game wiki.Game, category wiki.Category, source, ext string, data []byte) (string, error) {
	rel := s.RawPath(game, category, source, ext)
	return rel, s.write(rel, data)
}

// DatasetPath is the relative path of the merged dataset of a group.
func (s Store) DatasetPath(game wiki.Game, category wiki.Category) string {
	return path.Join(RawDir, string(game), fmt.Sprintf("%s.json", category))
}

// SaveDataset stores the merged dataset of a group and returns its relative path.
func (s Store) SaveDataset(game wiki.Game, category wiki.Category, data []byte) (string, error) {
	rel := s.DatasetPath(game, category)
	return rel, s.write(rel, data)
}

// write goes through a temporary file in the target directory so readers
// never observe a partially written file.
func (s Store) write(rel string, data []byte) error {
	target := s.abs(rel)
	dir := filepath.Dir(target)
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	err = os.Rename(tmp.Name(), target)
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
