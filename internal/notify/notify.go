// Package notify announces finished batches outside the terminal.
package notify

import (
	"fmt"

	"github.com/hochfrequenz/simul/internal/domain"
)

// NotificationType represents the type of notification
type NotificationType int

const (
	NotifyInfo NotificationType = iota
	NotifySuccess
	NotifyWarning
	NotifyError
)

// Notification represents a notification to be sent
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	RunID   string // Optional run reference
}

// Notifier is the interface for sending notifications
type Notifier interface {
	Send(n Notification) error
}

// FromReport builds the notification announcing a finished batch
func FromReport(r domain.RunReport) Notification {
	n := Notification{
		Title:   fmt.Sprintf("simul: %s (%s)", r.Scenario, r.Strategy),
		Message: fmt.Sprintf("%d units, %s", r.Units, r.Summary()),
		Type:    NotifySuccess,
		RunID:   r.ID,
	}
	if !r.Succeeded() {
		n.Message = fmt.Sprintf("failed after %.2f seconds: %s", r.Seconds(), r.Err)
		n.Type = NotifyError
	}
	return n
}

// MultiNotifier sends to multiple notifiers
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a notifier that sends to all provided notifiers
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Send sends the notification to all notifiers
func (m *MultiNotifier) Send(n Notification) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(n); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// NoopNotifier does nothing (for testing or disabled notifications)
type NoopNotifier struct{}

func (NoopNotifier) Send(n Notification) error { return nil }
