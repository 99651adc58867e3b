package config

import (
	"os"
	"path/filepath"
	"testing"
	"wikispider/internal/wiki"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0666))
}

func TestLoadMergesLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{
		// json5 allows comments
		games: { zzz: false, ww: false },
		assets_root: "wiki",
		report: {
			email: {
				smtp: { server: "smtp.example.com", port: 587, email_address: "crawler@example.com" },
				recipients: ["maintainer@example.com"],
			},
		},
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{
		debug: true,
		ledger: { file: "state/ledger.db" },
	}`)

	config, err := Load(filepath.Join(dir, "config.json5"))
	require.NoError(t, err)

	require.True(t, config.Debug)
	require.True(t, config.Games.Enabled(wiki.GENSHIN))
	require.True(t, config.Games.Enabled(wiki.STARRAIL))
	require.False(t, config.Games.Enabled(wiki.ZZZ))
	require.False(t, config.Games.Enabled(wiki.WW))
	require.True(t, config.GenshinExcelData)
	require.Equal(t, filepath.Join(dir, "wiki"), config.AssetsRoot)
	require.Equal(t, filepath.Join(dir, "state/ledger.db"), config.Ledger.File)
	require.True(t, config.Report.Email.Enabled())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{ games: { starrail: true } }`)

	t.Setenv("STARRAIL", "false")
	t.Setenv("GENSHIN_EXCEL_DATA", "0")
	t.Setenv("DEBUG", "")
	t.Setenv("LEDGER_FILE", "libsql://ledger.example.com?authToken=x")
	t.Setenv("SMTP_PASSWORD", "hunter2")

	config, err := Load(filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.False(t, config.Games.Starrail)
	require.False(t, config.GenshinExcelData)
	require.False(t, config.Debug)
	require.Equal(t, "libsql://ledger.example.com?authToken=x", config.Ledger.File)
	require.Equal(t, "hunter2", config.Report.Email.Smtp.Password)

	t.Setenv("WW", "maybe")
	_, err = Load(filepath.Join(dir, "config.json5"))
	require.Error(t, err)
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadKeepsRemoteLedger(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{ ledger: { file: "libsql://ledger.example.turso.io?authToken=x" } }`)

	config, err := Load(filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "libsql://ledger.example.turso.io?authToken=x", config.Ledger.File)
}
