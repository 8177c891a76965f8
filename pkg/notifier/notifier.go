package notifier

import (
	"context"
	"fmt"

	"github.com/calbot/calbot/pkg/calendar"
)

// Notifier delivers a reminder for a due event to the configured destination.
type Notifier interface {
	Notify(ctx context.Context, event calendar.Event) error
}

// NotifyError wraps a failed delivery (destination unreachable or forbidden).
// The scheduler logs it and moves on to the next due event.
type NotifyError struct {
	EventID string
	Err     error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notifying for event %s: %v", e.EventID, e.Err)
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}
