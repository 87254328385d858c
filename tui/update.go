package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hochfrequenz/simul/internal/domain"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "m":
			// Cycle strategy between runs
			if !m.running {
				m.strategy = nextStrategy(m.strategy)
			}
		case "r", "enter":
			if !m.running {
				return m.startRun()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case StartMsg:
		if !m.running {
			return m.startRun()
		}

	case TickMsg:
		if m.running {
			return m, tickCmd()
		}

	case LineMsg:
		m.log = append(m.log, string(msg))
		if len(m.log) > maxLogLines {
			m.log = m.log[len(m.log)-maxLogLines:]
		}
		return m, waitForEvent(m.events)

	case UnitDoneMsg:
		if lv, ok := m.laneMap[msg.Lane]; ok && lv.Done < lv.Total {
			lv.Done++
		}
		return m, waitForEvent(m.events)

	case LaneStatusMsg:
		if lv, ok := m.laneMap[msg.Lane]; ok {
			lv.apply(msg.Status)
		}
		return m, waitForEvent(m.events)

	case RunDoneMsg:
		m.running = false
		m.lastErr = msg.Err
		m.reports = append(m.reports, msg.Report)
		m.log = append(m.log, msg.Report.Summary())
		if len(m.log) > maxLogLines {
			m.log = m.log[len(m.log)-maxLogLines:]
		}
		return m, nil
	}

	return m, nil
}

// startRun resets progress and launches a run with the current strategy
func (m Model) startRun() (tea.Model, tea.Cmd) {
	if m.start == nil {
		return m, nil
	}

	m.running = true
	m.lastErr = nil
	m.startedAt = m.now()
	m.log = nil
	for _, lv := range m.lanes {
		lv.reset()
	}

	events := make(chan tea.Msg, 64)
	m.events = events
	start, strategy := m.start, m.strategy

	return m, tea.Batch(
		func() tea.Msg {
			go start(strategy, events)
			return nil
		},
		waitForEvent(events),
		tickCmd(),
	)
}

func nextStrategy(s domain.Strategy) domain.Strategy {
	for i, st := range domain.Strategies {
		if st == s {
			return domain.Strategies[(i+1)%len(domain.Strategies)]
		}
	}
	return domain.Strategies[0]
}
