// Package runner executes batches of timed units of work sequentially,
// cooperatively on a single-runner loop, or in parallel goroutines.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hochfrequenz/simul/internal/coop"
	"github.com/hochfrequenz/simul/internal/domain"
	"github.com/hochfrequenz/simul/internal/observer"
	"github.com/hochfrequenz/simul/internal/sink"
	"golang.org/x/sync/errgroup"
)

// LaneStatusCallback is called when a lane starts, suspends, resumes or finishes
type LaneStatusCallback func(lane string, status domain.TaskStatus)

// Config configures a Runner
type Config struct {
	Sink         sink.Sink         // defaults to sink.Discard
	Recorder     observer.Recorder // optional
	Clock        Clock             // defaults to RealClock
	MaxParallel  int               // parallel strategy goroutine limit, 0 = unlimited
	OnLaneStatus LaneStatusCallback
	Debug        bool
}

// Runner executes batches under a chosen strategy
type Runner struct {
	config Config
}

// Batch is a set of lanes executed together under one strategy
type Batch struct {
	Scenario string
	Strategy domain.Strategy
	Lanes    []domain.Lane
}

// Units returns the total number of units in the batch
func (b Batch) Units() int {
	n := 0
	for _, l := range b.Lanes {
		n += len(l.Units)
	}
	return n
}

// New creates a Runner
func New(config Config) *Runner {
	if config.Sink == nil {
		config.Sink = sink.Discard{}
	}
	if config.Recorder == nil {
		config.Recorder = observer.Nop{}
	}
	if config.Clock == nil {
		config.Clock = RealClock{}
	}
	return &Runner{config: config}
}

// RunUnit performs the pre-delay, emits the start line, performs the
// post-delay and emits the counter line. The unit is validated before any
// delay is issued.
func (r *Runner) RunUnit(ctx context.Context, s Sleeper, unit domain.Unit) error {
	return r.runUnit(ctx, s, unit.Name, unit)
}

func (r *Runner) runUnit(ctx context.Context, s Sleeper, lane string, unit domain.Unit) error {
	if err := unit.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return context.Cause(ctx)
	}

	// render up front so a template failure cannot leave half a unit behind
	start, err := unit.StartLine()
	if err != nil {
		return err
	}
	counter, err := unit.CounterLine()
	if err != nil {
		return err
	}

	began := r.config.Clock.Now()

	if err := s.Sleep(unit.PreDelay); err != nil {
		return err
	}
	if err := r.config.Sink.Emit(start); err != nil {
		return fmt.Errorf("emit %s: %w", unit.Label(), err)
	}
	if err := s.Sleep(unit.PostDelay); err != nil {
		return err
	}
	if err := r.config.Sink.Emit(counter); err != nil {
		return fmt.Errorf("emit %s: %w", unit.Label(), err)
	}

	r.config.Recorder.RecordUnit(lane, unit, r.config.Clock.Now().Sub(began))
	return nil
}

// runLane runs the units of a lane in order, then emits its epilogue
func (r *Runner) runLane(ctx context.Context, s Sleeper, lane domain.Lane) error {
	r.laneStatus(lane.Name, domain.TaskRunning)

	for _, unit := range lane.Units {
		if err := r.runUnit(ctx, s, lane.Name, unit); err != nil {
			r.laneStatus(lane.Name, failureStatus(err))
			return err
		}
	}

	line, err := lane.EpilogueLine()
	if err != nil {
		r.laneStatus(lane.Name, domain.TaskFailed)
		return err
	}
	if line != "" {
		if err := r.config.Sink.Emit(line); err != nil {
			r.laneStatus(lane.Name, domain.TaskFailed)
			return fmt.Errorf("emit epilogue for %s: %w", lane.Name, err)
		}
	}

	r.laneStatus(lane.Name, domain.TaskDone)
	return nil
}

// Sequential runs units one at a time in input order on the calling goroutine
func (r *Runner) Sequential(ctx context.Context, units []domain.Unit) error {
	return r.runUnits(ctx, domain.StrategySequential, units)
}

// Concurrent runs every unit as a cooperative task and returns once all
// of them have finished. Units with equal delays finish in start order.
func (r *Runner) Concurrent(ctx context.Context, units []domain.Unit) error {
	return r.runUnits(ctx, domain.StrategyConcurrent, units)
}

// Parallel runs every unit on its own goroutine and returns once all of
// them have finished
func (r *Runner) Parallel(ctx context.Context, units []domain.Unit) error {
	return r.runUnits(ctx, domain.StrategyParallel, units)
}

// Run dispatches units to the given strategy
func (r *Runner) Run(ctx context.Context, strategy domain.Strategy, units []domain.Unit) error {
	return r.runUnits(ctx, strategy, units)
}

func (r *Runner) runUnits(ctx context.Context, strategy domain.Strategy, units []domain.Unit) error {
	if err := domain.ValidateBatch(units); err != nil {
		return err
	}
	return r.RunLanes(ctx, strategy, domain.SingleLanes(units))
}

// RunLanes validates every lane, then runs them under strategy. Units inside
// a lane always run in order; the strategy decides how lanes overlap.
func (r *Runner) RunLanes(ctx context.Context, strategy domain.Strategy, lanes []domain.Lane) error {
	for _, lane := range lanes {
		if err := lane.Validate(); err != nil {
			return err
		}
	}
	if len(lanes) == 0 {
		return nil
	}

	if r.config.Debug {
		log.Printf("[runner] %s batch: %d lanes", strategy, len(lanes))
	}

	switch strategy {
	case domain.StrategySequential:
		return r.sequential(ctx, lanes)
	case domain.StrategyConcurrent:
		return r.concurrent(ctx, lanes)
	case domain.StrategyParallel:
		return r.parallel(ctx, lanes)
	default:
		return fmt.Errorf("unknown strategy %q", strategy)
	}
}

func (r *Runner) sequential(ctx context.Context, lanes []domain.Lane) error {
	s := NewBlockingSleeper(ctx)
	for _, lane := range lanes {
		if err := r.runLane(ctx, s, lane); err != nil {
			return fmt.Errorf("%s: %w", lane.Name, err)
		}
	}
	return nil
}

func (r *Runner) concurrent(ctx context.Context, lanes []domain.Lane) error {
	loop := coop.New(coop.Config{
		Debug: r.config.Debug,
		OnStatusChange: func(t *coop.Task, status domain.TaskStatus) {
			// finish is reported by runLane
			if status == domain.TaskRunning || status == domain.TaskSuspended {
				r.laneStatus(t.Name(), status)
			}
		},
	})

	for _, lane := range lanes {
		lane := lane
		loop.Go(lane.Name, func(t *coop.Task) error {
			return r.runLane(ctx, t, lane)
		})
	}

	return loop.Wait(ctx)
}

func (r *Runner) parallel(ctx context.Context, lanes []domain.Lane) error {
	var g errgroup.Group
	if r.config.MaxParallel > 0 {
		g.SetLimit(r.config.MaxParallel)
	}

	s := NewBlockingSleeper(ctx)
	for _, lane := range lanes {
		lane := lane
		g.Go(func() error {
			if err := r.runLane(ctx, s, lane); err != nil {
				return fmt.Errorf("%s: %w", lane.Name, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// Execute runs the batch under its strategy and measures it
func (r *Runner) Execute(ctx context.Context, batch Batch) (domain.RunReport, error) {
	report := domain.NewRunReport(batch.Scenario, batch.Strategy, batch.Units())
	return TimeBatch(r.config.Clock, report, func() error {
		return r.RunLanes(ctx, batch.Strategy, batch.Lanes)
	})
}

func (r *Runner) laneStatus(lane string, status domain.TaskStatus) {
	if r.config.OnLaneStatus != nil {
		r.config.OnLaneStatus(lane, status)
	}
}

func failureStatus(err error) domain.TaskStatus {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.TaskCancelled
	}
	return domain.TaskFailed
}

var _ Sleeper = (*coop.Task)(nil)
