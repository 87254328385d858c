package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hochfrequenz/simul/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	suspendedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	queuedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimmedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

const progressWidth = 20

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	state := "idle"
	if m.running {
		state = fmt.Sprintf("running %.1fs", m.now().Sub(m.startedAt).Seconds())
	}
	header := fmt.Sprintf(" simul │ Scenario: %s │ Mode: %s │ Lanes: %d │ %s ",
		m.scenario, m.strategy, len(m.lanes), state)
	b.WriteString(headerStyle.Width(m.width).Render(header))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Width(m.width - 2).Render(m.renderLanes()))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Width(m.width - 2).Render(m.renderLog()))
	b.WriteString("\n")

	if len(m.reports) > 0 {
		b.WriteString(sectionStyle.Width(m.width - 2).Render(m.renderReports()))
		b.WriteString("\n")
	}

	if m.lastErr != nil {
		b.WriteString(failedStyle.Render("Error: " + m.lastErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString(dimmedStyle.Render(" r: run  m: switch mode  q: quit"))
	return b.String()
}

func (m Model) renderLanes() string {
	var b strings.Builder
	b.WriteString("LANES\n")
	if len(m.lanes) == 0 {
		b.WriteString(queuedStyle.Render("  (empty batch)"))
		return b.String()
	}

	nameWidth := 0
	for _, lv := range m.lanes {
		if len(lv.Name) > nameWidth {
			nameWidth = len(lv.Name)
		}
	}

	for _, lv := range m.lanes {
		fmt.Fprintf(&b, "  %-*s %s %d/%d  %s\n",
			nameWidth, lv.Name, progressBar(lv.Done, lv.Total), lv.Done, lv.Total, statusStyle(lv.Status).Render(string(lv.Status)))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m Model) renderLog() string {
	var b strings.Builder
	b.WriteString("OUTPUT\n")
	if len(m.log) == 0 {
		b.WriteString(queuedStyle.Render("  (no output yet)"))
		return b.String()
	}
	for _, line := range m.log {
		b.WriteString("  " + line + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m Model) renderReports() string {
	var b strings.Builder
	b.WriteString("RUNS\n")
	for _, r := range m.reports {
		line := fmt.Sprintf("  %-10s %6.2fs  %d units", r.Strategy, r.Seconds(), r.Units)
		if !r.Succeeded() {
			line += "  " + warningStyle.Render(r.Err)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func progressBar(done, total int) string {
	if total <= 0 {
		return "[" + strings.Repeat(" ", progressWidth) + "]"
	}
	filled := done * progressWidth / total
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", progressWidth-filled) + "]"
}

func statusStyle(s domain.TaskStatus) lipgloss.Style {
	switch s {
	case domain.TaskRunning:
		return runningStyle
	case domain.TaskSuspended:
		return suspendedStyle
	case domain.TaskDone:
		return completedStyle
	case domain.TaskFailed:
		return failedStyle
	case domain.TaskCancelled:
		return warningStyle
	default:
		return queuedStyle
	}
}
