package calendar

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StubCalendar is an in-memory Calendar used in tests.
type StubCalendar struct {
	data map[string]Event

	// FailFetch makes ListUpcoming and FindByTitle return a *FetchError
	// until cleared.
	FailFetch error
}

func NewStubCalendar() *StubCalendar {
	return &StubCalendar{data: map[string]Event{}}
}

func (c *StubCalendar) ListUpcoming(_ context.Context, from time.Time, to time.Time) ([]Event, error) {
	if c.FailFetch != nil {
		return nil, &FetchError{Err: c.FailFetch}
	}

	var events []Event
	for _, event := range c.data {
		if !event.StartTime.Before(from) && event.StartTime.Before(to) {
			events = append(events, event)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})

	return events, nil
}

func (c *StubCalendar) CreateEvent(_ context.Context, event Event) (Event, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	c.data[event.ID] = event
	return event, nil
}

func (c *StubCalendar) DeleteEvent(_ context.Context, eventID string) error {
	if _, ok := c.data[eventID]; !ok {
		return ErrEventNotFound
	}
	delete(c.data, eventID)
	return nil
}

func (c *StubCalendar) FindByTitle(ctx context.Context, title string, horizon time.Duration) (Event, error) {
	if c.FailFetch != nil {
		return Event{}, &FetchError{Err: c.FailFetch}
	}

	var all []Event
	for _, event := range c.data {
		all = append(all, event)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].StartTime.Before(all[j].StartTime)
	})
	for _, event := range all {
		if strings.EqualFold(event.Title, title) {
			return event, nil
		}
	}
	return Event{}, ErrEventNotFound
}

// Reschedule moves an existing event to a new start, keeping its duration.
func (c *StubCalendar) Reschedule(eventID string, newStart time.Time) {
	event, ok := c.data[eventID]
	if !ok {
		return
	}
	duration := event.EndTime.Sub(event.StartTime)
	event.StartTime = newStart
	event.EndTime = newStart.Add(duration)
	c.data[eventID] = event
}

func (c *StubCalendar) Cleanup() {
	c.data = map[string]Event{}
}
