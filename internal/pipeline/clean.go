package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/couchcryptid/bristol-crime-etl/internal/domain"
	"github.com/couchcryptid/bristol-crime-etl/internal/observability"
)

const cleanJobName = "clean"

// TableStore discovers, reads, and writes crime tables.
type TableStore interface {
	CrimeMonthFiles() ([]string, error)
	ReadTable(path string) (domain.Table, error)
	WriteTable(path string, t domain.Table) error
	CleanedPath() string
}

// RowPublisher forwards the cleaned table downstream.
type RowPublisher interface {
	Publish(ctx context.Context, t domain.Table) error
}

// CleanSummary describes a cleaning run.
type CleanSummary struct {
	FilesFound   int
	FilesRead    int
	FilesSkipped int
	RowsIn       int
	RowsOut      int
	Published    bool
	Path         string // set once the cleaned table is written
}

// CleanJob merges every monthly crime file into a single cleaned table.
type CleanJob struct {
	store     TableStore
	publisher RowPublisher
	area      domain.Area
	logger    *slog.Logger
	metrics   *observability.Metrics
	progress  *Progress
}

// NewCleanJob creates a CleanJob. publisher may be nil.
func NewCleanJob(store TableStore, publisher RowPublisher, area domain.Area, logger *slog.Logger, metrics *observability.Metrics) *CleanJob {
	return &CleanJob{
		store:     store,
		publisher: publisher,
		area:      area,
		logger:    logger,
		metrics:   metrics,
		progress:  NewProgress(cleanJobName, 0),
	}
}

// Progress returns the job's live progress.
func (j *CleanJob) Progress() *Progress {
	return j.progress
}

// Run reads, cleans, and writes. It returns domain.ErrNoData when no monthly
// file could be read, in which case nothing is written.
func (j *CleanJob) Run(ctx context.Context) (CleanSummary, error) {
	var summary CleanSummary
	j.metrics.JobRunning.WithLabelValues(cleanJobName).Set(1)
	defer j.metrics.JobRunning.WithLabelValues(cleanJobName).Set(0)

	paths, err := j.store.CrimeMonthFiles()
	if err != nil {
		return summary, fmt.Errorf("discover crime files: %w", err)
	}
	summary.FilesFound = len(paths)
	j.progress.setTotal(len(paths))
	j.logger.Info("discovered crime files", "files", len(paths))

	tables := make([]domain.Table, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		t, err := j.store.ReadTable(path)
		if err != nil {
			summary.FilesSkipped++
			j.metrics.FilesSkipped.Inc()
			j.progress.record(filepath.Base(path), domain.ErrorKind(err), 0)
			j.logger.Warn("skipping unreadable crime file", "path", path, "error", err)
			continue
		}
		summary.FilesRead++
		j.progress.record(filepath.Base(path), OutcomeSaved, len(t.Rows))
		tables = append(tables, t)
	}
	if len(tables) == 0 {
		return summary, domain.ErrNoData
	}

	merged := domain.Concat(tables...)
	summary.RowsIn = len(merged.Rows)

	cleaned := domain.CleanCrimeTable(merged, j.area)
	summary.RowsOut = len(cleaned.Rows)
	j.metrics.RowsCleaned.Set(float64(summary.RowsOut))

	path := j.store.CleanedPath()
	if err := j.store.WriteTable(path, cleaned); err != nil {
		return summary, fmt.Errorf("write cleaned table: %w", err)
	}
	summary.Path = path
	j.metrics.FilesWritten.WithLabelValues(cleanJobName).Inc()
	j.logger.Info("saved cleaned crime table",
		"rows_in", summary.RowsIn,
		"rows_out", summary.RowsOut,
		"dropped", summary.RowsIn-summary.RowsOut,
		"path", summary.Path,
	)

	if j.publisher != nil && len(cleaned.Rows) > 0 {
		if err := j.publisher.Publish(ctx, cleaned); err != nil {
			if errors.Is(err, context.Canceled) {
				return summary, fmt.Errorf("publish cleaned rows: %w", err)
			}
			j.logger.Warn("publish cleaned rows failed", "error", err)
			return summary, nil
		}
		summary.Published = true
		j.metrics.RowsPublished.Add(float64(len(cleaned.Rows)))
	}
	return summary, nil
}
