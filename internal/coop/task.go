package coop

import (
	"fmt"
	"sync"
	"time"

	"github.com/hochfrequenz/simul/internal/domain"
)

// Task is a handle to work in progress on a Loop
type Task struct {
	name   string
	fn     func(*Task) error
	loop   *Loop
	resume chan error

	mu     sync.Mutex
	status domain.TaskStatus
	err    error
}

// Name returns the name the task was started with
func (t *Task) Name() string {
	return t.name
}

// Status returns the current lifecycle state
func (t *Task) Status() domain.TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Err returns the error the task finished with, if any
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Sleep suspends the task for at least d and lets other tasks run meanwhile.
// It returns a non-nil error when the loop is cancelled while the task waits.
// Sleep must only be called from the task's own function.
func (t *Task) Sleep(d time.Duration) error {
	if d < 0 {
		return &domain.InvalidDurationError{Field: "delay", Value: d.String()}
	}
	t.loop.events <- event{task: t, kind: eventSuspend, delay: d}
	return <-t.resume
}

// run executes the task function on its own goroutine; the loop guarantees
// that only one task goroutine is between resume and its next event
func (t *Task) run() {
	<-t.resume

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = t.fn(t)
	}()

	t.loop.events <- event{task: t, kind: eventDone, err: err}
}

func (t *Task) setStatus(s domain.TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

func (t *Task) finish(s domain.TaskStatus, err error) {
	t.mu.Lock()
	t.status = s
	t.err = err
	t.mu.Unlock()
}
