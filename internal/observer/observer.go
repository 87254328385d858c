package observer

import (
	"sync"
	"time"

	"github.com/hochfrequenz/simul/internal/domain"
)

// Recorder receives per-unit completions from the runner
type Recorder interface {
	RecordUnit(lane string, unit domain.Unit, duration time.Duration)
}

// Observer collects unit completions and batch reports
type Observer struct {
	completions []completion
	reports     []domain.RunReport
	mu          sync.RWMutex
}

type completion struct {
	Delay    time.Duration // requested delay
	Duration time.Duration // measured wall-clock time
}

// Metrics holds aggregated metrics
type Metrics struct {
	TotalCompleted int
	TotalDelay     time.Duration
	TotalDuration  time.Duration
	AvgDuration    time.Duration
	MaxDuration    time.Duration
}

// New creates a new Observer
func New() *Observer {
	return &Observer{}
}

// RecordUnit records a unit completion
func (o *Observer) RecordUnit(lane string, unit domain.Unit, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.completions = append(o.completions, completion{
		Delay:    unit.Total(),
		Duration: duration,
	})
}

// RecordRun records a finished batch
func (o *Observer) RecordRun(report domain.RunReport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports = append(o.reports, report)
}

// GetMetrics returns aggregated unit metrics
func (o *Observer) GetMetrics() Metrics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var metrics Metrics
	for _, c := range o.completions {
		metrics.TotalCompleted++
		metrics.TotalDelay += c.Delay
		metrics.TotalDuration += c.Duration
		if c.Duration > metrics.MaxDuration {
			metrics.MaxDuration = c.Duration
		}
	}

	if metrics.TotalCompleted > 0 {
		metrics.AvgDuration = metrics.TotalDuration / time.Duration(metrics.TotalCompleted)
	}

	return metrics
}

// Reports returns every recorded batch report in recording order
func (o *Observer) Reports() []domain.RunReport {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]domain.RunReport, len(o.reports))
	copy(out, o.reports)
	return out
}

// Speedup returns how many times faster b finished than a (a.Elapsed / b.Elapsed).
// It returns 0 when b has no elapsed time.
func Speedup(a, b domain.RunReport) float64 {
	if b.Elapsed <= 0 {
		return 0
	}
	return float64(a.Elapsed) / float64(b.Elapsed)
}

// Nop discards every completion
type Nop struct{}

func (Nop) RecordUnit(string, domain.Unit, time.Duration) {}
