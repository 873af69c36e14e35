package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/bristol-crime-etl/internal/domain"
	"github.com/couchcryptid/bristol-crime-etl/internal/observability"
)

// WeatherWriter persists the combined weather table.
type WeatherWriter interface {
	WriteWeather(path string, records []domain.WeatherRecord) error
}

// WeatherSummary extends FetchSummary with the combined output.
type WeatherSummary struct {
	FetchSummary
	Rows int
	Path string
}

// WeatherJob fetches daily weather month by month, keeps it in memory, and
// writes a single deduplicated file once every month has been attempted.
type WeatherJob struct {
	loop    *FetchLoop[domain.WeatherRecord]
	writer  WeatherWriter
	path    string
	records []domain.WeatherRecord
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWeatherJob creates a WeatherJob that writes its output to path.
func NewWeatherJob(fetcher MonthFetcher[domain.WeatherRecord], writer WeatherWriter, path string, cfg LoopConfig) *WeatherJob {
	j := &WeatherJob{writer: writer, path: path, logger: cfg.Logger, metrics: cfg.Metrics}
	j.loop = NewFetchLoop(cfg, fetcher, j.collect)
	return j
}

// Progress returns the job's live progress.
func (j *WeatherJob) Progress() *Progress {
	return j.loop.Progress()
}

// Run fetches every month in the window and writes the combined file. Nothing
// is written if ctx is cancelled before the loop completes.
func (j *WeatherJob) Run(ctx context.Context, start, end domain.Month) (WeatherSummary, error) {
	j.records = nil
	fetched, err := j.loop.Run(ctx, start, end)
	summary := WeatherSummary{FetchSummary: fetched, Path: j.path}
	if err != nil {
		return summary, err
	}

	deduped := domain.DedupWeather(j.records)
	if err := j.writer.WriteWeather(j.path, deduped); err != nil {
		return summary, fmt.Errorf("write weather: %w", err)
	}
	j.metrics.FilesWritten.WithLabelValues(j.loop.job).Inc()
	summary.Rows = len(deduped)

	if summary.Rows == 0 {
		j.logger.Warn("no weather data fetched, wrote header only", "path", j.path)
	} else {
		j.logger.Info("saved weather records",
			"rows", summary.Rows,
			"duplicates", len(j.records)-summary.Rows,
			"path", j.path,
		)
	}
	return summary, nil
}

func (j *WeatherJob) collect(_ context.Context, month domain.Month, records []domain.WeatherRecord) error {
	j.records = append(j.records, records...)
	j.logger.Debug("collected weather records", "month", month.String(), "records", len(records))
	return nil
}
