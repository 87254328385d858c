package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hochfrequenz/simul/internal/domain"
)

// Bridge forwards runner output and progress into the TUI event stream.
// It implements sink.Sink and observer.Recorder.
type Bridge struct {
	events chan<- tea.Msg
}

// NewBridge creates a bridge sending to events
func NewBridge(events chan<- tea.Msg) Bridge {
	return Bridge{events: events}
}

// Emit forwards an output line
func (b Bridge) Emit(line string) error {
	b.events <- LineMsg(line)
	return nil
}

// RecordUnit forwards a unit completion
func (b Bridge) RecordUnit(lane string, unit domain.Unit, duration time.Duration) {
	b.events <- UnitDoneMsg{Lane: lane, Index: unit.Index, Duration: duration}
}

// LaneStatus forwards a lane status change
func (b Bridge) LaneStatus(lane string, status domain.TaskStatus) {
	b.events <- LaneStatusMsg{Lane: lane, Status: status}
}

// Done sends the final message of a run
func (b Bridge) Done(report domain.RunReport, err error) {
	b.events <- RunDoneMsg{Report: report, Err: err}
}
