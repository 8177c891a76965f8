package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEventNotFound is returned when an operation targets an event that does
// not exist on the calendar (anymore).
var ErrEventNotFound = errors.New("event not found")

// FetchError wraps a failed read from the calendar backend (network, auth,
// quota). A tick that hits one is abandoned and retried on the next cycle.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching calendar events: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err is (or wraps) a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

type Calendar interface {
	// ListUpcoming returns events whose start time falls in [from, to),
	// ordered by start time ascending. Failures are reported as *FetchError.
	ListUpcoming(ctx context.Context, from time.Time, to time.Time) ([]Event, error)
	// CreateEvent stores a new event and returns it with the backend-assigned ID.
	CreateEvent(ctx context.Context, event Event) (Event, error)
	// DeleteEvent removes the event with the given ID.
	DeleteEvent(ctx context.Context, eventID string) error
	// FindByTitle returns the first upcoming event (within the given horizon)
	// whose title matches case-insensitively, or ErrEventNotFound.
	FindByTitle(ctx context.Context, title string, horizon time.Duration) (Event, error)
}
