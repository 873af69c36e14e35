// Command crimefetch downloads street-level crimes for the configured area,
// one file per month.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/bristol-crime-etl/internal/adapter/http"
	"github.com/couchcryptid/bristol-crime-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/bristol-crime-etl/internal/adapter/police"
	"github.com/couchcryptid/bristol-crime-etl/internal/config"
	"github.com/couchcryptid/bristol-crime-etl/internal/observability"
	"github.com/couchcryptid/bristol-crime-etl/internal/pipeline"
)

const jobName = "crime"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg, jobName)
	metrics := observability.NewMetrics()

	store := csvfile.NewStore(cfg.OutputDirectory, cfg.AreaName)
	if err := store.EnsureDir(); err != nil {
		logger.Error("failed to prepare output directory", "error", err)
		return 1
	}

	client := police.NewClient(cfg.CrimeAPIURL, cfg.Center(), cfg.RequestTimeout, logger)
	job := pipeline.NewCrimeJob(client, store, pipeline.LoopConfig{
		Job:     jobName,
		Delay:   cfg.RequestDelay,
		Logger:  logger,
		Metrics: metrics,
	})

	if cfg.MetricsAddr != "" {
		stopServer := httpadapter.NewServer(cfg.MetricsAddr, job.Progress(), logger).StartBackground(cfg.ShutdownTimeout)
		defer stopServer()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := job.Run(ctx, cfg.StartMonth, cfg.EndMonth)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("interrupted, files written so far are kept")
	case err != nil:
		logger.Error("crime fetch failed", "error", err)
		return 1
	}

	fmt.Printf("Fetched %d months: %d saved, %d empty, %d failed, %d records in %s\n",
		summary.Months, summary.Saved, summary.Empty, summary.Failed, summary.Records, store.Dir())
	return 0
}
