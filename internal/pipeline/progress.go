package pipeline

import (
	"context"
	"errors"
	"sync"
)

// Progress tracks a running job for the status endpoints. The job loop writes
// it; HTTP handlers read it concurrently.
type Progress struct {
	mu        sync.Mutex
	job       string
	total     int
	processed int
	outcomes  map[string]int
	records   int
	last      string
}

// ProgressSnapshot is the JSON form of Progress.
type ProgressSnapshot struct {
	Job       string         `json:"job"`
	Total     int            `json:"total"`
	Processed int            `json:"processed"`
	Outcomes  map[string]int `json:"outcomes"`
	Records   int            `json:"records"`
	Last      string         `json:"last,omitempty"`
}

// NewProgress creates a Progress for job with total expected units of work.
func NewProgress(job string, total int) *Progress {
	return &Progress{job: job, total: total, outcomes: make(map[string]int)}
}

func (p *Progress) setTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
}

func (p *Progress) record(unit, outcome string, records int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++
	p.outcomes[outcome]++
	p.records += records
	p.last = unit
}

// CheckReadiness returns nil once at least one unit of work has completed.
func (p *Progress) CheckReadiness(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.processed == 0 {
		return errors.New(p.job + " job has not completed any work yet")
	}
	return nil
}

// Status returns a ProgressSnapshot.
func (p *Progress) Status() any {
	return p.Snapshot()
}

// Snapshot copies the current progress.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	outcomes := make(map[string]int, len(p.outcomes))
	for k, v := range p.outcomes {
		outcomes[k] = v
	}
	return ProgressSnapshot{
		Job:       p.job,
		Total:     p.total,
		Processed: p.processed,
		Outcomes:  outcomes,
		Records:   p.records,
		Last:      p.last,
	}
}
