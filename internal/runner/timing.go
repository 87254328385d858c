package runner

import (
	"time"

	"github.com/hochfrequenz/simul/internal/domain"
)

// Clock abstracts time operations for measurement
type Clock interface {
	Now() time.Time
}

// RealClock uses actual system time
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// TimeBatch stamps report immediately before and after fn and returns it
// with Elapsed filled in. Nothing outside fn is measured.
func TimeBatch(clock Clock, report domain.RunReport, fn func() error) (domain.RunReport, error) {
	report.StartedAt = clock.Now()
	err := fn()
	report.FinishedAt = clock.Now()

	report.Elapsed = report.FinishedAt.Sub(report.StartedAt)
	if err != nil {
		report.Err = err.Error()
	}
	return report, err
}
