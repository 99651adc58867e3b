package commands

import (
	"os"
	"wikispider/internal/assets"
	comptelemetry "wikispider/internal/components/telemetry"
	"wikispider/internal/report"
	"wikispider/internal/spider"
	"wikispider/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Lists every registered adapter in the order it runs.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store, err := assets.NewStore(cfg.AssetsRoot)
		if err != nil {
			serviceutil.Fatal("failed to open assets root", err)
		}
		registry := newRegistry(cfg, store, comptelemetry.SlogAPI{})

		var adapters []spider.Adapter
		for _, group := range registry.Groups() {
			if !cfg.Games.Enabled(group.Game) {
				continue
			}
			adapters = append(adapters, group.Adapters...)
		}
		t := report.SourcesTable(adapters)
		t.SetOutputMirror(os.Stdout)
		t.Render()
	},
}
