package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"wikispider/internal/config"
	"wikispider/lib/serviceutil"
	"wikispider/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "", "Path to the config file, defaults to the nearest config.json5.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output, same as setting debug in the config.")
}

var rootCmd = &cobra.Command{
	Use:   "wikispider",
	Short: "wikispider crawls game wikis and merges them into one dataset per category.",
	Run:   runCrawl,
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config and sets up logging to match it.
func loadConfig() config.Config {
	// log loading problems before the configured level is known
	telemetry.InitSlog(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to load config", err)
	}
	if *verbose {
		cfg.Debug = true
	}
	telemetry.InitSlog(cfg.Debug)
	slog.Debug("loaded config", "assets_root", cfg.AssetsRoot, "ledger", cfg.Ledger.File)
	return cfg
}
