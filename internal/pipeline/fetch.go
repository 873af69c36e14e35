package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/bristol-crime-etl/internal/domain"
	"github.com/couchcryptid/bristol-crime-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Outcome labels recorded per month.
const (
	OutcomeSaved = "saved"
	OutcomeEmpty = "empty"
	OutcomeWrite = "write"
)

// MonthFetcher fetches the records for a single month.
type MonthFetcher[T any] interface {
	FetchMonth(ctx context.Context, month domain.Month) ([]T, error)
}

// MonthHandler consumes the non-empty records of one month.
type MonthHandler[T any] func(ctx context.Context, month domain.Month, records []T) error

// LoopConfig configures a FetchLoop.
type LoopConfig struct {
	Job     string
	Delay   time.Duration   // pause after every month, whatever the outcome
	Clock   clockwork.Clock // nil means the real clock
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// FetchSummary counts month outcomes for one run.
type FetchSummary struct {
	Months  int
	Saved   int
	Empty   int
	Failed  int
	Records int
}

// FetchLoop walks a window of months in ascending order, one request at a
// time. Failures are logged and skipped; they never stop the loop.
type FetchLoop[T any] struct {
	job      string
	fetcher  MonthFetcher[T]
	handle   MonthHandler[T]
	delay    time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	progress *Progress
}

// NewFetchLoop creates a loop that passes each month's records to handle.
func NewFetchLoop[T any](cfg LoopConfig, fetcher MonthFetcher[T], handle MonthHandler[T]) *FetchLoop[T] {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &FetchLoop[T]{
		job:      cfg.Job,
		fetcher:  fetcher,
		handle:   handle,
		delay:    cfg.Delay,
		clock:    clock,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		progress: NewProgress(cfg.Job, 0),
	}
}

// Progress returns the loop's live progress.
func (l *FetchLoop[T]) Progress() *Progress {
	return l.progress
}

// Run fetches every month from start to end inclusive. It returns early with
// the context's error if ctx is cancelled; months already handled stay handled.
func (l *FetchLoop[T]) Run(ctx context.Context, start, end domain.Month) (FetchSummary, error) {
	var summary FetchSummary
	l.progress.setTotal(domain.CountMonths(start, end))
	l.logger.Info("fetch started", "start", start.String(), "end", end.String(), "delay", l.delay)
	l.metrics.JobRunning.WithLabelValues(l.job).Set(1)
	defer l.metrics.JobRunning.WithLabelValues(l.job).Set(0)

	for month := range domain.Months(start, end) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		l.fetchMonth(ctx, month, &summary)

		if !sleepWithContext(ctx, l.clock, l.delay) {
			return summary, ctx.Err()
		}
	}

	l.logger.Info("fetch finished",
		"months", summary.Months,
		"saved", summary.Saved,
		"empty", summary.Empty,
		"failed", summary.Failed,
		"records", summary.Records,
	)
	return summary, nil
}

func (l *FetchLoop[T]) fetchMonth(ctx context.Context, month domain.Month, summary *FetchSummary) {
	l.logger.Info("fetching month", "month", month.String())
	summary.Months++

	began := l.clock.Now()
	records, err := l.fetcher.FetchMonth(ctx, month)
	l.metrics.RequestDuration.WithLabelValues(l.job).Observe(l.clock.Since(began).Seconds())
	if err == nil && len(records) == 0 {
		err = domain.ErrEmptyResult
	}

	var outcome string
	switch {
	case errors.Is(err, domain.ErrEmptyResult):
		outcome = OutcomeEmpty
		summary.Empty++
		l.logger.Info("no data for month", "month", month.String())
	case err != nil:
		outcome = domain.ErrorKind(err)
		summary.Failed++
		l.logger.Warn("fetch month failed, skipping",
			"month", month.String(),
			"error_kind", outcome,
			"error", err,
		)
	default:
		l.metrics.RecordsFetched.WithLabelValues(l.job).Add(float64(len(records)))
		if herr := l.handle(ctx, month, records); herr != nil {
			outcome = OutcomeWrite
			summary.Failed++
			l.logger.Warn("handle month failed, skipping",
				"month", month.String(),
				"error_kind", outcome,
				"error", herr,
			)
			break
		}
		outcome = OutcomeSaved
		summary.Saved++
		summary.Records += len(records)
	}

	n := 0
	if outcome == OutcomeSaved {
		n = len(records)
	}
	l.metrics.MonthsProcessed.WithLabelValues(l.job, outcome).Inc()
	l.progress.record(month.String(), outcome, n)
}

// sleepWithContext waits for d on clock. It returns false if ctx is done
// first.
func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
