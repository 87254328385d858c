// Package coop runs units of work as cooperative tasks on a single-runner
// event loop. A task runs without preemption until it calls Sleep, which
// suspends it into a timer queue and hands control back to the loop.
package coop

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/hochfrequenz/simul/internal/domain"
)

// StatusChangeCallback is called when a task's status changes
type StatusChangeCallback func(task *Task, status domain.TaskStatus)

// Config configures a Loop
type Config struct {
	Debug          bool
	OnStatusChange StatusChangeCallback
	Now            func() time.Time // defaults to time.Now
}

// Loop schedules cooperative tasks. At most one task runs at any moment.
// A Loop is single-use: add tasks with Go, then call Wait once.
type Loop struct {
	config Config

	mu     sync.Mutex
	tasks  []*Task
	ready  *queue.Queue // FIFO of *Task
	timers timerQueue
	seq    uint64
	waited bool

	events chan event
}

type eventKind int

const (
	eventSuspend eventKind = iota
	eventDone
)

type event struct {
	task  *Task
	kind  eventKind
	delay time.Duration
	err   error
}

// New creates an empty loop
func New(config Config) *Loop {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Loop{
		config: config,
		ready:  queue.New(),
		events: make(chan event),
	}
}

// Go adds a task to the ready queue. Tasks start in the order they were added.
// Go may also be called from inside a running task.
func (l *Loop) Go(name string, fn func(*Task) error) *Task {
	t := &Task{
		name:   name,
		fn:     fn,
		loop:   l,
		resume: make(chan error),
		status: domain.TaskPending,
	}

	l.mu.Lock()
	l.tasks = append(l.tasks, t)
	l.ready.Add(t)
	l.mu.Unlock()

	return t
}

// Tasks returns every task added so far
func (l *Loop) Tasks() []*Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

// Wait runs the loop on the calling goroutine until every task has finished.
// When ctx is done, suspended tasks are resumed with the context's cause as
// the error returned from Sleep, and tasks that never started are cancelled.
// The returned error joins every task error, each prefixed with its task name.
func (l *Loop) Wait(ctx context.Context) error {
	l.mu.Lock()
	if l.waited {
		l.mu.Unlock()
		return errors.New("coop: Wait called twice")
	}
	l.waited = true
	l.mu.Unlock()

	for {
		if t := l.popReady(); t != nil {
			if ctx.Err() != nil {
				l.cancel(ctx, t)
				continue
			}
			l.step(t, nil)
			continue
		}

		next := l.timers.peek()
		if next == nil {
			break
		}

		if wait := next.at.Sub(l.config.Now()); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				l.pushReady(l.timers.drain()...)
				continue
			}
		}

		l.pushReady(l.timers.popExpired(l.config.Now())...)
	}

	var errs []error
	for _, t := range l.Tasks() {
		if err := t.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
		}
	}
	return errors.Join(errs...)
}

// cancel finishes a ready task after ctx is done: a task that never ran is
// marked cancelled, a suspended task is resumed with the cancellation cause
func (l *Loop) cancel(ctx context.Context, t *Task) {
	cause := context.Cause(ctx)
	if t.Status() == domain.TaskPending {
		t.finish(domain.TaskCancelled, cause)
		l.notify(t, domain.TaskCancelled)
		return
	}
	l.step(t, cause)
}

// step resumes t and blocks until it suspends or returns
func (l *Loop) step(t *Task, resumeErr error) {
	if t.Status() == domain.TaskPending {
		go t.run()
	}
	t.setStatus(domain.TaskRunning)
	l.notify(t, domain.TaskRunning)

	t.resume <- resumeErr
	ev := <-l.events

	switch ev.kind {
	case eventSuspend:
		l.mu.Lock()
		l.seq++
		heap.Push(&l.timers, &wakeup{at: l.config.Now().Add(ev.delay), seq: l.seq, task: t})
		l.mu.Unlock()
		t.setStatus(domain.TaskSuspended)
		l.notify(t, domain.TaskSuspended)
		if l.config.Debug {
			log.Printf("[coop] %s suspended for %v", t.name, ev.delay)
		}
	case eventDone:
		status := domain.TaskDone
		switch {
		case ev.err == nil:
		case errors.Is(ev.err, context.Canceled), errors.Is(ev.err, context.DeadlineExceeded):
			status = domain.TaskCancelled
		default:
			status = domain.TaskFailed
		}
		t.finish(status, ev.err)
		l.notify(t, status)
		if l.config.Debug {
			log.Printf("[coop] %s %s", t.name, status)
		}
	}
}

func (l *Loop) notify(t *Task, status domain.TaskStatus) {
	if l.config.OnStatusChange != nil {
		l.config.OnStatusChange(t, status)
	}
}

func (l *Loop) popReady() *Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready.Length() == 0 {
		return nil
	}
	return l.ready.Remove().(*Task)
}

func (l *Loop) pushReady(tasks ...*Task) {
	l.mu.Lock()
	for _, t := range tasks {
		l.ready.Add(t)
	}
	l.mu.Unlock()
}
