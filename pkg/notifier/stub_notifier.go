package notifier

import (
	"context"

	"github.com/calbot/calbot/pkg/calendar"
)

// StubNotifier records notified events in memory for tests.
type StubNotifier struct {
	Notified []calendar.Event

	// FailWith makes every Notify call fail until cleared. The event is
	// still recorded as attempted.
	FailWith error
}

func NewStubNotifier() *StubNotifier {
	return &StubNotifier{}
}

func (n *StubNotifier) Notify(_ context.Context, event calendar.Event) error {
	if n.FailWith != nil {
		return &NotifyError{EventID: event.ID, Err: n.FailWith}
	}
	n.Notified = append(n.Notified, event)
	return nil
}
