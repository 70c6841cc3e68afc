// Package notify sends desktop notifications and runs the daily reminder.
// It uses native notification mechanisms on macOS (osascript) and Linux (notify-send).
package notify

import "context"

// Daily reminder text.
const (
	DailyTitle = "Your Daily Thought"
	DailyBody  = "Take a moment to reflect on today's wisdom"
)

// Notification is a single desktop notification.
type Notification struct {
	Title string
	Body  string
	Sound bool
}

// Notifier delivers notifications.
type Notifier interface {
	Send(ctx context.Context, n Notification) error

	// IsSupported reports whether the platform back-end is usable.
	IsSupported() bool
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Send(ctx context.Context, n Notification) error { return f(ctx, n) }

func (f NotifierFunc) IsSupported() bool { return true }

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, Notification) error { return nil }

func (noopNotifier) IsSupported() bool { return false }

// New creates a platform-specific notifier.
// Returns a no-op notifier if the platform doesn't support notifications.
func New() Notifier {
	n := newPlatformNotifier()
	if n == nil || !n.IsSupported() {
		return noopNotifier{}
	}
	return n
}
