package domain

import "fmt"

// Strategy selects how a batch of units is executed
type Strategy string

const (
	StrategySequential Strategy = "sequential"
	StrategyConcurrent Strategy = "concurrent"
	StrategyParallel   Strategy = "parallel"
)

// Strategies lists every supported strategy in display order
var Strategies = []Strategy{StrategySequential, StrategyConcurrent, StrategyParallel}

// ParseStrategy parses a strategy name such as "concurrent"
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range Strategies {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid mode %q (expected sequential, concurrent or parallel)", s)
}

// TaskStatus represents the lifecycle state of a scheduled unit or lane
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskSuspended TaskStatus = "suspended"
	TaskDone      TaskStatus = "done"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// Finished returns true once the task will not run again
func (s TaskStatus) Finished() bool {
	return s == TaskDone || s == TaskFailed || s == TaskCancelled
}

// DefaultCounterpart is the player answering every opponent in a simul
const DefaultCounterpart = "LARRY"
