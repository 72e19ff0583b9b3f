// Package notification defines the outbound side-channel used to inform a
// guide's author about review outcomes. Delivery is best-effort: callers
// bound each Notify with a short timeout and must treat failure as a
// logged event, never as an operation error.
package notification

import "context"

// Event identifies what happened to the guide.
type Event string

const (
	EventApproved   Event = "approved"
	EventRejected   Event = "rejected"
	EventRolledBack Event = "rolled_back"
	EventRemoved    Event = "removed"
)

// Notifier is the notification port. Implementations must be safe for
// concurrent use.
type Notifier interface {
	// Notify delivers an event to the target user. The link points at the
	// affected guide so clients can deep-link from the notification.
	Notify(ctx context.Context, targetUserID string, event Event, message, link string) error
}

// Noop discards all notifications. Used when no webhook is configured.
type Noop struct{}

func (Noop) Notify(ctx context.Context, targetUserID string, event Event, message, link string) error {
	return nil
}
