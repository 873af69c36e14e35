// Command weatherfetch downloads daily historical weather for the configured
// area and writes it to a single file.
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
	"github.com/couchcryptid/bristol-crime-etl/internal/adapter/openmeteo"
	"github.com/couchcryptid/bristol-crime-etl/internal/config"
	"github.com/couchcryptid/bristol-crime-etl/internal/observability"
	"github.com/couchcryptid/bristol-crime-etl/internal/pipeline"
)

const jobName = "weather"

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

	client := openmeteo.NewClient(cfg.WeatherAPIURL, cfg.Center(), cfg.WeatherTimezone, cfg.RequestTimeout, logger)
	job := pipeline.NewWeatherJob(client, store, store.WeatherPath(cfg.StartMonth, cfg.EndMonth), pipeline.LoopConfig{
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
		logger.Info("interrupted, no weather file written")
		return 0
	case err != nil:
		logger.Error("weather fetch failed", "error", err)
		return 1
	}

	fmt.Printf("Saved %d weather rows from %d months (%d failed) to %s\n",
		summary.Rows, summary.Months, summary.Failed, summary.Path)
	return 0
}
