package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calbot/calbot/internal/utils"
	"github.com/calbot/calbot/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAgendaSender struct {
	days   []time.Time
	events [][]calendar.Event
}

func (r *recordingAgendaSender) SendAgenda(_ context.Context, day time.Time, events []calendar.Event) error {
	r.days = append(r.days, day)
	r.events = append(r.events, events)
	return nil
}

func newTestService(t *testing.T, cal calendar.Calendar, sender AgendaSender, now time.Time, location *time.Location) *Service {
	t.Helper()
	service, err := NewService(cal, sender, location, "08:00")
	require.NoError(t, err)
	service.clock = &utils.MockClock{FixedNow: now}
	return service
}

func TestSendDaily(t *testing.T) {
	ctx := context.Background()
	location, _ := time.LoadLocation("Asia/Tokyo")
	now := time.Date(2025, time.August, 14, 8, 0, 0, 0, location)

	t.Run("sends only today's events", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		sender := &recordingAgendaSender{}
		service := newTestService(t, cal, sender, now, location)

		cal.CreateEvent(ctx, calendar.Event{Title: "Today", StartTime: now.Add(2 * time.Hour), EndTime: now.Add(3 * time.Hour)})
		cal.CreateEvent(ctx, calendar.Event{Title: "Tomorrow", StartTime: now.Add(26 * time.Hour), EndTime: now.Add(27 * time.Hour)})

		assert.NoError(t, service.SendDaily(ctx))
		require.Len(t, sender.events, 1)
		require.Len(t, sender.events[0], 1)
		assert.Equal(t, "Today", sender.events[0][0].Title)
	})

	t.Run("empty day still sends an agenda", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		sender := &recordingAgendaSender{}
		service := newTestService(t, cal, sender, now, location)

		assert.NoError(t, service.SendDaily(ctx))
		require.Len(t, sender.events, 1)
		assert.Empty(t, sender.events[0])
	})

	t.Run("fetch failure sends nothing", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		sender := &recordingAgendaSender{}
		service := newTestService(t, cal, sender, now, location)

		cal.FailFetch = errors.New("unreachable")

		assert.Error(t, service.SendDaily(ctx))
		assert.Empty(t, sender.events)
	})
}

func TestNextSendTime(t *testing.T) {
	location, _ := time.LoadLocation("Asia/Tokyo")
	cal := calendar.NewStubCalendar()
	sender := &recordingAgendaSender{}

	t.Run("before the send time, fires today", func(t *testing.T) {
		now := time.Date(2025, time.August, 14, 6, 30, 0, 0, location)
		service := newTestService(t, cal, sender, now, location)

		next := service.nextSendTime(now)
		assert.Equal(t, time.Date(2025, time.August, 14, 8, 0, 0, 0, location), next)
	})

	t.Run("at or after the send time, fires tomorrow", func(t *testing.T) {
		now := time.Date(2025, time.August, 14, 8, 0, 0, 0, location)
		service := newTestService(t, cal, sender, now, location)

		next := service.nextSendTime(now)
		assert.Equal(t, time.Date(2025, time.August, 15, 8, 0, 0, 0, location), next)
	})
}

func TestNewServiceRejectsBadSendTime(t *testing.T) {
	_, err := NewService(calendar.NewStubCalendar(), &recordingAgendaSender{}, time.UTC, "25:99")
	assert.Error(t, err)
}
