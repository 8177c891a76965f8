package calendar

import "time"

// Event is an immutable snapshot of one calendar occurrence, fetched per poll.
type Event struct {
	ID          string
	Title       string
	StartTime   time.Time
	EndTime     time.Time
	Location    string
	Description string
	HTMLLink    string
	AllDay      bool
}

// IsValid reports whether the event satisfies the StartTime < EndTime
// invariant. All-day events carry date-only boundaries and are exempt.
func (e Event) IsValid() bool {
	if e.AllDay {
		return true
	}
	return e.StartTime.Before(e.EndTime)
}
