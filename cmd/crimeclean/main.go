// Command crimeclean merges the monthly crime files into a single table ready
// for modelling.
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
	kafkaadapter "github.com/couchcryptid/bristol-crime-etl/internal/adapter/kafka"
	"github.com/couchcryptid/bristol-crime-etl/internal/config"
	"github.com/couchcryptid/bristol-crime-etl/internal/domain"
	"github.com/couchcryptid/bristol-crime-etl/internal/observability"
	"github.com/couchcryptid/bristol-crime-etl/internal/pipeline"
)

const jobName = "clean"

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

	var publisher pipeline.RowPublisher
	if cfg.KafkaEnabled() {
		kp := kafkaadapter.NewPublisher(cfg, logger)
		defer func() {
			if err := kp.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = kp
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaCleanTopic)
	}

	job := pipeline.NewCleanJob(store, publisher, cfg.Area(), logger, metrics)

	if cfg.MetricsAddr != "" {
		stopServer := httpadapter.NewServer(cfg.MetricsAddr, job.Progress(), logger).StartBackground(cfg.ShutdownTimeout)
		defer stopServer()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := job.Run(ctx)
	switch {
	case errors.Is(err, domain.ErrNoData):
		fmt.Println("No data files found.")
		return 0
	case errors.Is(err, context.Canceled) && summary.Path != "":
		logger.Info("interrupted while publishing, cleaned table written", "path", summary.Path)
		return 0
	case errors.Is(err, context.Canceled):
		logger.Info("interrupted, cleaned table not written")
		return 0
	case err != nil:
		logger.Error("clean failed", "error", err)
		return 1
	}

	fmt.Printf("Cleaned %d of %d rows from %d files (%d skipped) into %s\n",
		summary.RowsOut, summary.RowsIn, summary.FilesRead, summary.FilesSkipped, summary.Path)
	return 0
}
