package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidDuration matches any *InvalidDurationError via errors.Is
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrInvalidUnit matches any *InvalidUnitError via errors.Is
	ErrInvalidUnit = errors.New("invalid unit")
)

// InvalidDurationError reports a negative or non-finite delay
type InvalidDurationError struct {
	Field string // e.g. "pre_delay"
	Value string
}

func (e *InvalidDurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid duration %s", e.Value)
	}
	return fmt.Sprintf("invalid %s %s: must be a finite, non-negative duration", e.Field, e.Value)
}

func (e *InvalidDurationError) Is(target error) bool { return target == ErrInvalidDuration }

func durationError(field string, d time.Duration) *InvalidDurationError {
	return &InvalidDurationError{Field: field, Value: d.String()}
}

// InvalidUnitError reports a malformed unit of work
type InvalidUnitError struct {
	Position int // position in the batch, -1 if unknown
	Name     string
	Reason   string
}

func (e *InvalidUnitError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("invalid unit #%d %q: %s", e.Position, e.Name, e.Reason)
	}
	return fmt.Sprintf("invalid unit %q: %s", e.Name, e.Reason)
}

func (e *InvalidUnitError) Is(target error) bool { return target == ErrInvalidUnit }
