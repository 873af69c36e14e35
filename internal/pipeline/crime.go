package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/bristol-crime-etl/internal/domain"
	"github.com/couchcryptid/bristol-crime-etl/internal/observability"
)

// CrimeWriter persists one month of crime records.
type CrimeWriter interface {
	WriteCrimeMonth(month domain.Month, records []domain.CrimeRecord) (string, error)
}

// CrimeJob fetches crimes month by month and writes one file per month that
// has data. A month's file is written before the next month is requested.
type CrimeJob struct {
	loop    *FetchLoop[domain.CrimeRecord]
	writer  CrimeWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCrimeJob creates a CrimeJob.
func NewCrimeJob(fetcher MonthFetcher[domain.CrimeRecord], writer CrimeWriter, cfg LoopConfig) *CrimeJob {
	j := &CrimeJob{writer: writer, logger: cfg.Logger, metrics: cfg.Metrics}
	j.loop = NewFetchLoop(cfg, fetcher, j.save)
	return j
}

// Progress returns the job's live progress.
func (j *CrimeJob) Progress() *Progress {
	return j.loop.Progress()
}

// Run fetches every month in the window.
func (j *CrimeJob) Run(ctx context.Context, start, end domain.Month) (FetchSummary, error) {
	return j.loop.Run(ctx, start, end)
}

func (j *CrimeJob) save(_ context.Context, month domain.Month, records []domain.CrimeRecord) error {
	path, err := j.writer.WriteCrimeMonth(month, records)
	if err != nil {
		return err
	}
	j.metrics.FilesWritten.WithLabelValues(j.loop.job).Inc()
	j.logger.Info("saved crime records", "month", month.String(), "records", len(records), "path", path)
	return nil
}
