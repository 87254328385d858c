package runner

import (
	"context"
	"time"

	"github.com/hochfrequenz/simul/internal/domain"
)

// Sleeper performs the delays of a unit. *coop.Task is a cooperative
// Sleeper; BlockingSleeper blocks the calling goroutine.
type Sleeper interface {
	Sleep(d time.Duration) error
}

// BlockingSleeper sleeps on the calling goroutine and wakes early when ctx is done
type BlockingSleeper struct {
	ctx context.Context
}

// NewBlockingSleeper creates a sleeper bound to ctx
func NewBlockingSleeper(ctx context.Context) BlockingSleeper {
	return BlockingSleeper{ctx: ctx}
}

// Sleep blocks for d or until the context is done
func (s BlockingSleeper) Sleep(d time.Duration) error {
	if d < 0 {
		return &domain.InvalidDurationError{Field: "delay", Value: d.String()}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-s.ctx.Done():
		return context.Cause(s.ctx)
	}
}
