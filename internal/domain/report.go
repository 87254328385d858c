package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunReport is the measured outcome of one batch execution
type RunReport struct {
	ID         string
	Scenario   string
	Strategy   Strategy
	Units      int
	StartedAt  time.Time
	FinishedAt time.Time
	Elapsed    time.Duration
	Err        string // empty on success
}

// NewRunReport creates a report with a fresh ID
func NewRunReport(scenario string, strategy Strategy, units int) RunReport {
	return RunReport{
		ID:       uuid.NewString(),
		Scenario: scenario,
		Strategy: strategy,
		Units:    units,
	}
}

// Seconds returns the elapsed wall-clock time in seconds
func (r RunReport) Seconds() float64 {
	return r.Elapsed.Seconds()
}

// Succeeded returns true if the batch completed without error
func (r RunReport) Succeeded() bool {
	return r.Err == ""
}

// Summary returns the final line printed after a batch
func (r RunReport) Summary() string {
	return fmt.Sprintf("Total time taken: %.2f seconds", r.Seconds())
}
