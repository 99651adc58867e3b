// Package config loads the crawler configuration from config.json5, its
// local override and the environment.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"wikispider/internal/report"
	"wikispider/internal/wiki"
	"wikispider/lib/configutil"
)

const DefaultFile = "config.json5"

type GamesConfig struct {
	Genshin  bool `json:"genshin"`
	Starrail bool `json:"starrail"`
	ZZZ      bool `json:"zzz"`
	WW       bool `json:"ww"`
}

func (g GamesConfig) Enabled(game wiki.Game) bool {
	switch game {
	case wiki.GENSHIN:
		return g.Genshin
	case wiki.STARRAIL:
		return g.Starrail
	case wiki.ZZZ:
		return g.ZZZ
	case wiki.WW:
		return g.WW
	}
	return false
}

type LedgerConfig struct {
	// File is a sqlite path or a libsql:// url, empty disables the ledger.
	File string `json:"file"`
}

type ReportConfig struct {
	Email report.EmailConfig `json:"email"`
}

type Config struct {
	Debug bool        `json:"debug"`
	Games GamesConfig `json:"games"`
	// GenshinExcelData controls whether the game data tables are downloaded
	// again, when false previously downloaded tables are reused.
	GenshinExcelData bool         `json:"genshin_excel_data"`
	AssetsRoot       string       `json:"assets_root"`
	Ledger           LedgerConfig `json:"ledger"`
	Report           ReportConfig `json:"report"`
}

func Default() Config {
	return Config{
		Games: GamesConfig{
			Genshin:  true,
			Starrail: true,
			ZZZ:      true,
			WW:       true,
		},
		GenshinExcelData: true,
		AssetsRoot:       ".",
		Ledger: LedgerConfig{
			File: "data/ledger.db",
		},
	}
}

// Load reads the configuration. An empty path searches for config.json5
// from the working directory upwards and falls back to the defaults when
// none exists, an explicit path must exist. Relative paths in the
// configuration are resolved against the directory of the file.
func Load(path string) (Config, error) {
	config := Default()

	base := "."
	if path == "" {
		found, err := configutil.ReadRecursively(DefaultFile, &config)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
		if err == nil {
			base = filepath.Dir(found)
		}
	} else {
		err := configutil.ReadConfigInto(path, &config)
		if err != nil {
			return Config{}, err
		}
		base = filepath.Dir(path)
	}

	err := configutil.LoadDotenv()
	if err != nil {
		return Config{}, err
	}
	err = config.applyEnv()
	if err != nil {
		return Config{}, err
	}

	config.AssetsRoot = resolve(base, config.AssetsRoot)
	if config.Ledger.File != "" && config.Ledger.File != ":memory:" && !strings.Contains(config.Ledger.File, "://") {
		config.Ledger.File = resolve(base, config.Ledger.File)
	}
	return config, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func (c *Config) applyEnv() error {
	configutil.OverrideString("ASSETS_ROOT", &c.AssetsRoot)
	configutil.OverrideString("LEDGER_FILE", &c.Ledger.File)
	configutil.OverrideString("SMTP_PASSWORD", &c.Report.Email.Smtp.Password)
	return errors.Join(
		configutil.OverrideBool("DEBUG", &c.Debug),
		configutil.OverrideBool("GENSHIN", &c.Games.Genshin),
		configutil.OverrideBool("STARRAIL", &c.Games.Starrail),
		configutil.OverrideBool("ZZZ", &c.Games.ZZZ),
		configutil.OverrideBool("WW", &c.Games.WW),
		configutil.OverrideBool("GENSHIN_EXCEL_DATA", &c.GenshinExcelData),
	)
}
