package commands

import (
	"context"
	"log/slog"
	"os"
	"time"
	"wikispider/internal/assets"
	"wikispider/internal/components/chrono"
	comptelemetry "wikispider/internal/components/telemetry"
	"wikispider/internal/dataset"
	"wikispider/internal/ledger"
	"wikispider/internal/merge"
	"wikispider/internal/report"
	"wikispider/internal/scheduler"
	"wikispider/lib/serviceutil"
	"wikispider/lib/telemetry"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [--config <path/to/config.json5>] [-v]",
	Short: "Crawls every enabled game and writes the merged datasets, this is the default command.",
	Run:   runCrawl,
}

func runCrawl(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	ctx, cancel := serviceutil.SignalContext(cmd.Context())
	defer cancel()

	otel, err := telemetry.SetupFromEnv(ctx, "wikispider")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := otel.Shutdown(shutdownCtx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	}()
	telemetry.InstrumentPerfStats(ctx, 5*time.Second)

	tel := comptelemetry.SlogAPI{}
	store, err := assets.NewStore(cfg.AssetsRoot)
	if err != nil {
		serviceutil.Fatal("failed to open assets root", err)
	}

	opts := scheduler.Options{
		Registry: newRegistry(cfg, store, tel),
		Policies: merge.DefaultPolicies(),
		Sink:     dataset.NewWriter(store),
		Enabled:  cfg.Games.Enabled,
	}

	var run *ledger.Ledger
	if cfg.Ledger.File != "" {
		db, err := ledger.Open(cfg.Ledger.File)
		if err != nil {
			serviceutil.Fatal("failed to open ledger", err)
		}
		defer db.Close()

		run, err = ledger.Begin(ctx, db, chrono.NewStandardImpl())
		if err != nil {
			serviceutil.Fatal("failed to begin run", err)
		}
		opts.Observer = run
		slog.Info("starting run", "run", run.RunID())
	}

	start := time.Now()
	results, runErr := scheduler.NewScheduler(opts, tel).Run(ctx)
	slog.Info("crawl finished", "seconds", time.Since(start).Seconds())

	report.Render(os.Stdout, results)
	failed := report.AnyFailed(results)

	// the run is recorded and reported even when it was interrupted
	finishCtx := context.WithoutCancel(ctx)
	runID := ""
	if run != nil {
		runID = run.RunID()
		err := run.Finish(finishCtx, failed, runErr)
		if err != nil {
			slog.Error("failed to finish run", "run", runID, "err", err)
		}
	}

	sent, err := report.NewMailer(cfg.Report.Email).SendFailures(finishCtx, runID, results)
	if err != nil {
		slog.Error("failed to send failure report", "err", err)
	} else if sent {
		slog.Info("sent failure report", "recipients", len(cfg.Report.Email.Recipients))
	}

	if runErr != nil {
		serviceutil.Fatal("crawl interrupted", runErr)
	}
}
