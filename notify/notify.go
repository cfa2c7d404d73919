// Package notify delivers user-facing notifications about performed
// redirects.
package notify

import (
	"context"

	"github.com/joeychilson/redirector/logger"
)

// maxURLLen is the longest URL fragment included in a notification
// message before truncation.
const maxURLLen = 50

// Notifier delivers a notification to the user.
type Notifier interface {
	Notify(ctx context.Context, title, message string)
}

// LogNotifier emits notifications through the structured logger. It is
// the default sink when no desktop integration is wired in.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a notifier that logs at info level.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Noop()
	}
	return &LogNotifier{log: log}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(ctx context.Context, title, message string) {
	n.log.Info("notification", "title", title, "message", message)
}

// Noop returns a notifier that discards all notifications.
func Noop() Notifier {
	return noopNotifier{}
}

type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, title, message string) {}

// TruncateURL shortens a URL for display in a notification message,
// appending an ellipsis when it exceeds the display limit.
func TruncateURL(url string) string {
	if len(url) <= maxURLLen {
		return url
	}
	return url[:maxURLLen] + "..."
}
