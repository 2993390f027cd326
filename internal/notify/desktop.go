package notify

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
)

// DesktopNotifier shows a run summary through the platform's notification
// tool: osascript on macOS, notify-send on Linux. Other platforms are
// silently skipped.
type DesktopNotifier struct {
	enabled bool
}

// NewDesktopNotifier creates a new desktop notifier
func NewDesktopNotifier(enabled bool) *DesktopNotifier {
	return &DesktopNotifier{enabled: enabled}
}

// Send runs the notification tool and waits for it to exit
func (d *DesktopNotifier) Send(ctx context.Context, n Notification) error {
	if !d.enabled {
		return nil
	}
	argv := desktopCommand(runtime.GOOS, n)
	if argv == nil {
		return nil
	}
	return exec.CommandContext(ctx, argv[0], argv[1:]...).Run()
}

// desktopCommand returns the command line that shows n on goos, or nil
// when goos has no supported tool
func desktopCommand(goos string, n Notification) []string {
	switch goos {
	case "darwin":
		script := "display notification " + strconv.Quote(n.Message) + " with title " + strconv.Quote(n.Title)
		if n.RunID != "" {
			script += " subtitle " + strconv.Quote("run "+n.RunID)
		}
		return []string{"osascript", "-e", script}
	case "linux":
		urgency := "normal"
		if n.Type == NotifyError {
			urgency = "critical"
		}
		return []string{"notify-send", "-a", "judgerun", "-u", urgency, "-i", IconForType(n.Type), n.Title, n.Message}
	default:
		return nil
	}
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
