package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calbot/calbot/internal/utils"
	"github.com/calbot/calbot/pkg/calendar"
	"github.com/calbot/calbot/pkg/notifier"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestScheduler(cal calendar.Calendar, n notifier.Notifier, clock utils.Clock) *Scheduler {
	cfg := Config{
		LeadTime:     10 * time.Minute,
		PollInterval: time.Minute,
		Slop:         2 * time.Minute,
		Retention:    3 * time.Hour,
	}
	return &Scheduler{
		cal:      cal,
		notifier: n,
		clock:    clock,
		cfg:      cfg.withDefaults(),
		notified: NewNotifiedSet(),
	}
}

func timedEvent(title string, start time.Time) calendar.Event {
	return calendar.Event{
		ID:        uuid.NewString(),
		Title:     title,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
}

func TestTick(t *testing.T) {
	ctx := context.Background()
	location, _ := time.LoadLocation("Europe/Warsaw")
	baseTime := time.Date(2025, time.March, 14, 9, 0, 0, 0, location)

	t.Run("event outside the lookahead window is not notified", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		n := notifier.NewStubNotifier()
		clock := &utils.MockClock{FixedNow: baseTime}
		scheduler := newTestScheduler(cal, n, clock)

		cal.CreateEvent(ctx, timedEvent("Planning", baseTime.Add(time.Hour)))

		assert.NoError(t, scheduler.Tick(ctx))
		assert.Empty(t, n.Notified)
		assert.Equal(t, 0, scheduler.notified.Len())
	})

	t.Run("event becomes due at startTime minus lead time and fires once", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		n := notifier.NewStubNotifier()
		// Event starts at 10:00, lead time 10 minutes, first tick at 09:49.
		clock := &utils.MockClock{FixedNow: time.Date(2025, time.March, 14, 9, 49, 0, 0, location)}
		scheduler := newTestScheduler(cal, n, clock)

		start := time.Date(2025, time.March, 14, 10, 0, 0, 0, location)
		cal.CreateEvent(ctx, timedEvent("Standup", start))

		// 09:49: dueAt (09:50) is still ahead.
		assert.NoError(t, scheduler.Tick(ctx))
		assert.Empty(t, n.Notified)

		// 09:50: due, fires.
		clock.Advance(time.Minute)
		assert.NoError(t, scheduler.Tick(ctx))
		assert.Len(t, n.Notified, 1)
		assert.Equal(t, "Standup", n.Notified[0].Title)

		// 09:51 and later ticks: never fires again.
		for _, offset := range []time.Duration{time.Minute, 5 * time.Minute, 15 * time.Minute} {
			clock.SetNow(time.Date(2025, time.March, 14, 9, 50, 0, 0, location).Add(offset))
			assert.NoError(t, scheduler.Tick(ctx))
		}
		assert.Len(t, n.Notified, 1)
	})

	t.Run("event that already started is not notified", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		n := notifier.NewStubNotifier()
		clock := &utils.MockClock{FixedNow: baseTime}
		scheduler := newTestScheduler(cal, n, clock)

		cal.CreateEvent(ctx, timedEvent("Started already", baseTime.Add(-time.Minute)))

		assert.NoError(t, scheduler.Tick(ctx))
		assert.Empty(t, n.Notified)
	})

	t.Run("failed fetch leaves state untouched and sends nothing", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		n := notifier.NewStubNotifier()
		clock := &utils.MockClock{FixedNow: baseTime}
		scheduler := newTestScheduler(cal, n, clock)

		cal.CreateEvent(ctx, timedEvent("Due now", baseTime.Add(5*time.Minute)))
		cal.FailFetch = errors.New("quota exceeded")

		err := scheduler.Tick(ctx)
		assert.Error(t, err)
		assert.True(t, calendar.IsFetchError(err))
		assert.Empty(t, n.Notified)
		assert.Equal(t, 0, scheduler.notified.Len())

		// Next tick retries independently and succeeds.
		cal.FailFetch = nil
		assert.NoError(t, scheduler.Tick(ctx))
		assert.Len(t, n.Notified, 1)
	})

	t.Run("event deleted between polls is never notified", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		n := notifier.NewStubNotifier()
		clock := &utils.MockClock{FixedNow: baseTime}
		scheduler := newTestScheduler(cal, n, clock)

		event, _ := cal.CreateEvent(ctx, timedEvent("Cancelled", baseTime.Add(20*time.Minute)))

		// Not yet due on the first tick.
		assert.NoError(t, scheduler.Tick(ctx))
		assert.Empty(t, n.Notified)

		assert.NoError(t, cal.DeleteEvent(ctx, event.ID))
		clock.Advance(10 * time.Minute)
		assert.NoError(t, scheduler.Tick(ctx))
		assert.Empty(t, n.Notified)
	})

	t.Run("two events due in the same tick are both notified", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		n := notifier.NewStubNotifier()
		clock := &utils.MockClock{FixedNow: baseTime}
		scheduler := newTestScheduler(cal, n, clock)

		first, _ := cal.CreateEvent(ctx, timedEvent("First", baseTime.Add(5*time.Minute)))
		second, _ := cal.CreateEvent(ctx, timedEvent("Second", baseTime.Add(8*time.Minute)))

		assert.NoError(t, scheduler.Tick(ctx))
		assert.Len(t, n.Notified, 2)
		// Fetch order is start time ascending.
		assert.Equal(t, "First", n.Notified[0].Title)
		assert.Equal(t, "Second", n.Notified[1].Title)
		assert.True(t, scheduler.notified.Contains(first.ID, first.StartTime))
		assert.True(t, scheduler.notified.Contains(second.ID, second.StartTime))
	})

	t.Run("failed notify still marks the event as attempted", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		n := notifier.NewStubNotifier()
		clock := &utils.MockClock{FixedNow: baseTime}
		scheduler := newTestScheduler(cal, n, clock)

		event, _ := cal.CreateEvent(ctx, timedEvent("Unreachable channel", baseTime.Add(5*time.Minute)))
		n.FailWith = errors.New("forbidden")

		assert.NoError(t, scheduler.Tick(ctx))
		assert.Empty(t, n.Notified)
		assert.True(t, scheduler.notified.Contains(event.ID, event.StartTime))

		// Channel recovers, but the event is not retried.
		n.FailWith = nil
		clock.Advance(time.Minute)
		assert.NoError(t, scheduler.Tick(ctx))
		assert.Empty(t, n.Notified)
	})

	t.Run("rescheduled event becomes eligible again at its new time", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		n := notifier.NewStubNotifier()
		clock := &utils.MockClock{FixedNow: baseTime}
		scheduler := newTestScheduler(cal, n, clock)

		event, _ := cal.CreateEvent(ctx, timedEvent("Movable", baseTime.Add(5*time.Minute)))

		assert.NoError(t, scheduler.Tick(ctx))
		assert.Len(t, n.Notified, 1)

		cal.Reschedule(event.ID, baseTime.Add(40*time.Minute))
		clock.Advance(30 * time.Minute)
		assert.NoError(t, scheduler.Tick(ctx))
		assert.Len(t, n.Notified, 2)
	})

	t.Run("stale entries are pruned on the next tick", func(t *testing.T) {
		cal := calendar.NewStubCalendar()
		n := notifier.NewStubNotifier()
		clock := &utils.MockClock{FixedNow: baseTime}
		scheduler := newTestScheduler(cal, n, clock)

		event, _ := cal.CreateEvent(ctx, timedEvent("Long gone", baseTime.Add(5*time.Minute)))

		assert.NoError(t, scheduler.Tick(ctx))
		assert.Equal(t, 1, scheduler.notified.Len())

		assert.NoError(t, cal.DeleteEvent(ctx, event.ID))
		clock.Advance(4 * time.Hour)
		assert.NoError(t, scheduler.Tick(ctx))
		assert.Equal(t, 0, scheduler.notified.Len())
	})
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	assert.Equal(t, 10*time.Minute, cfg.LeadTime)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, 2*time.Minute, cfg.Slop)
	assert.Equal(t, 3*time.Hour, cfg.Retention)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
}

func TestConfigSlopNeverBelowPollInterval(t *testing.T) {
	cfg := Config{PollInterval: 5 * time.Minute, Slop: time.Minute}.withDefaults()

	assert.Equal(t, 10*time.Minute, cfg.Slop)
}
