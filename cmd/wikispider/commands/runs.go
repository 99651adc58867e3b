package commands

import (
	"os"
	"wikispider/internal/components/chrono"
	"wikispider/internal/ledger"
	"wikispider/internal/report"
	"wikispider/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsLimit *int

func init() {
	runsLimit = runsCmd.Flags().IntP("limit", "n", 10, "The number of runs to list.")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs [run id] [-n <limit>]",
	Short: "Lists recent runs from the ledger, or the merge collisions of one run.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if cfg.Ledger.File == "" {
			serviceutil.Fatal("no ledger configured", os.ErrNotExist)
		}
		db, err := ledger.Open(cfg.Ledger.File)
		if err != nil {
			serviceutil.Fatal("failed to open ledger", err)
		}
		defer db.Close()

		var t table.Writer
		if len(args) == 1 {
			collisions, err := ledger.Collisions(cmd.Context(), db, args[0])
			if err != nil {
				serviceutil.Fatal("failed to read collisions", err)
			}
			t = report.CollisionsTable(collisions)
		} else {
			runs, err := ledger.Recent(cmd.Context(), db, *runsLimit, chrono.CN)
			if err != nil {
				serviceutil.Fatal("failed to read runs", err)
			}
			t = report.RunsTable(runs)
		}
		t.SetOutputMirror(os.Stdout)
		t.Render()
	},
}
