package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the fetch
// and clean jobs.
type Metrics struct {
	MonthsProcessed *prometheus.CounterVec   // labels: job, outcome={saved,empty,transport,http,decode,write,other}
	RecordsFetched  *prometheus.CounterVec   // labels: job
	RequestDuration *prometheus.HistogramVec // labels: job
	FilesWritten    *prometheus.CounterVec   // labels: job
	JobRunning      *prometheus.GaugeVec     // labels: job

	// Cleaning metrics.
	FilesSkipped  prometheus.Counter
	RowsCleaned   prometheus.Gauge
	RowsPublished prometheus.Counter
}

// NewMetrics creates and registers all job metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.MonthsProcessed,
		m.RecordsFetched,
		m.RequestDuration,
		m.FilesWritten,
		m.JobRunning,
		m.FilesSkipped,
		m.RowsCleaned,
		m.RowsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MonthsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_etl",
			Name:      "months_processed_total",
			Help:      "Months fetched, by job and outcome.",
		}, []string{"job", "outcome"}),
		RecordsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_etl",
			Name:      "records_fetched_total",
			Help:      "Records returned by the remote API.",
		}, []string{"job"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crime_etl",
			Name:      "request_duration_seconds",
			Help:      "Duration of a single month request.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"job"}),
		FilesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_etl",
			Name:      "files_written_total",
			Help:      "Output files written.",
		}, []string{"job"}),
		JobRunning: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "crime_etl",
			Name:      "job_running",
			Help:      "1 while the job is running, 0 otherwise.",
		}, []string{"job"}),
		FilesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crime_etl",
			Name:      "clean_files_skipped_total",
			Help:      "Monthly crime files that could not be parsed.",
		}),
		RowsCleaned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crime_etl",
			Name:      "clean_rows",
			Help:      "Rows in the most recent cleaned table.",
		}),
		RowsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crime_etl",
			Name:      "clean_rows_published_total",
			Help:      "Cleaned rows published to Kafka.",
		}),
	}
}
