package reminder

import "time"

// NotifiedSet tracks which events already triggered a reminder in this
// process. Entries are keyed by event ID and remember the start time observed
// when the reminder fired, so a rescheduled event becomes eligible again.
// The set is owned exclusively by the Scheduler and only touched inside a
// tick; ticks are serialized, so no locking is needed.
type NotifiedSet struct {
	entries map[string]time.Time
}

func NewNotifiedSet() *NotifiedSet {
	return &NotifiedSet{entries: map[string]time.Time{}}
}

// Contains reports whether a reminder already fired for this event at this
// start time.
func (s *NotifiedSet) Contains(eventID string, startTime time.Time) bool {
	notifiedAt, ok := s.entries[eventID]
	return ok && notifiedAt.Equal(startTime)
}

func (s *NotifiedSet) Mark(eventID string, startTime time.Time) {
	s.entries[eventID] = startTime
}

// Prune drops entries whose start time is before cutoff and returns how many
// were removed. Such events can never become due again, so this only bounds
// memory over long uptimes.
func (s *NotifiedSet) Prune(cutoff time.Time) int {
	pruned := 0
	for id, startTime := range s.entries {
		if startTime.Before(cutoff) {
			delete(s.entries, id)
			pruned++
		}
	}
	return pruned
}

func (s *NotifiedSet) Len() int {
	return len(s.entries)
}
