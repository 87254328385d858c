package notify

import (
	"os/exec"
	"runtime"
	"strings"
)

// DesktopNotifier sends desktop notifications
type DesktopNotifier struct {
	enabled bool
	goos    string
	run     func(name string, args ...string) error
}

// NewDesktopNotifier creates a new desktop notifier
func NewDesktopNotifier(enabled bool) *DesktopNotifier {
	return &DesktopNotifier{
		enabled: enabled,
		goos:    runtime.GOOS,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a desktop notification
func (d *DesktopNotifier) Send(n Notification) error {
	if !d.enabled {
		return nil
	}

	switch d.goos {
	case "darwin":
		script := `display notification "` + escapeAppleScript(n.Message) + `" with title "` + escapeAppleScript(n.Title) + `"`
		return d.run("osascript", "-e", script)
	case "linux":
		return d.run("notify-send", "--icon", IconForType(n.Type), n.Title, n.Message)
	default:
		return nil // Unsupported
	}
}

func escapeAppleScript(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// IconForType returns an icon name for the notification type
func IconForType(t NotificationType) string {
	switch t {
	case NotifySuccess:
		return "dialog-positive"
	case NotifyWarning:
		return "dialog-warning"
	case NotifyError:
		return "dialog-error"
	default:
		return "dialog-information"
	}
}
