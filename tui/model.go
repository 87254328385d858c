package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hochfrequenz/simul/internal/domain"
)

// maxLogLines is how many output lines the dashboard keeps
const maxLogLines = 12

// StartFunc launches a batch under strategy and streams its progress into
// events. It must send a RunDoneMsg as its last message.
type StartFunc func(strategy domain.Strategy, events chan<- tea.Msg)

// Model is the TUI application model
type Model struct {
	// Data
	scenario string
	lanes    []*LaneView
	laneMap  map[string]*LaneView
	log      []string
	reports  []domain.RunReport

	// Run state
	strategy  domain.Strategy
	running   bool
	startedAt time.Time
	lastErr   error
	start     StartFunc
	events    chan tea.Msg
	autoStart bool

	// UI state
	width  int
	height int
	now    func() time.Time
}

// LaneView represents a lane (or several lanes sharing a name) in the TUI
type LaneView struct {
	Name   string
	Lanes  int // lanes sharing this name
	Total  int
	Done   int
	Status domain.TaskStatus

	finished  int
	active    domain.TaskStatus // last running/suspended status reported
	failed    bool
	cancelled bool
}

// apply folds a status reported by one of the view's lanes into the row.
// The row is only finished once every lane sharing the name has finished.
func (lv *LaneView) apply(status domain.TaskStatus) {
	switch status {
	case domain.TaskDone:
		lv.finished++
	case domain.TaskFailed:
		lv.finished++
		lv.failed = true
	case domain.TaskCancelled:
		lv.finished++
		lv.cancelled = true
	default:
		lv.active = status
	}

	switch {
	case lv.finished < lv.Lanes && lv.active != "":
		lv.Status = lv.active
	case lv.finished < lv.Lanes:
		lv.Status = domain.TaskRunning
	case lv.failed:
		lv.Status = domain.TaskFailed
	case lv.cancelled:
		lv.Status = domain.TaskCancelled
	default:
		lv.Status = domain.TaskDone
	}
}

func (lv *LaneView) reset() {
	lv.Done = 0
	lv.Status = domain.TaskPending
	lv.finished = 0
	lv.active = ""
	lv.failed = false
	lv.cancelled = false
}

// ModelConfig holds initial data for the TUI model
type ModelConfig struct {
	Scenario  string
	Lanes     []domain.Lane
	Strategy  domain.Strategy
	Start     StartFunc
	AutoStart bool
}

// NewModel creates a new TUI model
func NewModel(cfg ModelConfig) Model {
	m := Model{
		scenario:  cfg.Scenario,
		laneMap:   make(map[string]*LaneView),
		strategy:  cfg.Strategy,
		start:     cfg.Start,
		autoStart: cfg.AutoStart,
		now:       time.Now,
	}
	if m.strategy == "" {
		m.strategy = domain.StrategyConcurrent
	}

	for _, l := range cfg.Lanes {
		lv, ok := m.laneMap[l.Name]
		if !ok {
			lv = &LaneView{Name: l.Name, Status: domain.TaskPending}
			m.laneMap[l.Name] = lv
			m.lanes = append(m.lanes, lv)
		}
		lv.Lanes++
		lv.Total += len(l.Units)
	}

	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	if m.autoStart {
		return func() tea.Msg { return StartMsg{} }
	}
	return nil
}

// Reports returns every run finished in this session
func (m Model) Reports() []domain.RunReport {
	return m.reports
}

// TickMsg refreshes the elapsed time while a run is active
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// StartMsg requests a new run with the current strategy
type StartMsg struct{}

// LineMsg carries one output line from the sink
type LineMsg string

// UnitDoneMsg reports a completed unit
type UnitDoneMsg struct {
	Lane     string
	Index    int
	Duration time.Duration
}

// LaneStatusMsg reports a lane status change
type LaneStatusMsg struct {
	Lane   string
	Status domain.TaskStatus
}

// RunDoneMsg is sent when a run finishes
type RunDoneMsg struct {
	Report domain.RunReport
	Err    error
}

// waitForEvent reads the next progress message of the active run
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}
