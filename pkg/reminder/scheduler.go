package reminder

import (
	"context"
	"time"

	"github.com/calbot/calbot/internal/utils"
	"github.com/calbot/calbot/pkg/calendar"
	"github.com/calbot/calbot/pkg/notifier"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	// LeadTime is how far before an event's start the reminder fires.
	LeadTime time.Duration
	// PollInterval is the time between ticks.
	PollInterval time.Duration
	// Slop widens the lookahead window beyond LeadTime so an event cannot
	// slip between two polls. Must be at least one PollInterval.
	Slop time.Duration
	// Retention is how long after an event's start its NotifiedSet entry
	// is kept before pruning.
	Retention time.Duration
	// FetchTimeout bounds the calendar fetch within a tick; a hung call is
	// treated as a fetch failure instead of stalling all future ticks.
	FetchTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.LeadTime <= 0 {
		c.LeadTime = 10 * time.Minute
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Minute
	}
	if c.Slop < c.PollInterval {
		c.Slop = 2 * c.PollInterval
	}
	if c.Retention <= 0 {
		c.Retention = 3 * time.Hour
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
	return c
}

// Scheduler polls the calendar on a fixed interval and notifies the channel
// once per upcoming event. A failed notify still marks the event as
// attempted, so an unreachable channel produces one error log per event
// rather than a send attempt on every subsequent tick.
type Scheduler struct {
	cal      calendar.Calendar
	notifier notifier.Notifier
	clock    utils.Clock
	cfg      Config
	notified *NotifiedSet
}

func NewScheduler(cal calendar.Calendar, n notifier.Notifier, cfg Config) *Scheduler {
	return &Scheduler{
		cal:      cal,
		notifier: n,
		clock:    utils.SystemClock{},
		cfg:      cfg.withDefaults(),
		notified: NewNotifiedSet(),
	}
}

// Tick runs one scheduling check: fetch events starting inside the lookahead
// window, notify the due ones, prune stale dedup entries. On a fetch failure
// the tick is abandoned with no state mutation and the error is returned for
// the caller to log; the next tick retries independently.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := s.clock.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()
	events, err := s.cal.ListUpcoming(fetchCtx, now, now.Add(s.cfg.LeadTime+s.cfg.Slop))
	if err != nil {
		return err
	}

	// Fetch order (start time ascending) is the notification order.
	for _, event := range events {
		if !s.isDue(event, now) {
			continue
		}
		if err := s.notifier.Notify(ctx, event); err != nil {
			log.Errorf("failed to send reminder for %q (%s): %v", event.Title, event.ID, err)
		} else {
			log.Infof("Reminder sent for %q, starting at %s", event.Title, event.StartTime.Format(time.RFC3339))
		}
		s.notified.Mark(event.ID, event.StartTime)
	}

	if pruned := s.notified.Prune(now.Add(-s.cfg.Retention)); pruned > 0 {
		log.Debugf("Pruned %d stale entries from the notified set", pruned)
	}

	return nil
}

func (s *Scheduler) isDue(event calendar.Event, now time.Time) bool {
	dueAt := event.StartTime.Add(-s.cfg.LeadTime)
	if dueAt.After(now) {
		return false
	}
	// Never remind for an event that has already started.
	if !now.Before(event.StartTime) {
		return false
	}
	return !s.notified.Contains(event.ID, event.StartTime)
}

// Run drives Tick on the poll interval until ctx is cancelled. Ticks run on
// this single goroutine and never overlap; a slow fetch delays later ticks
// instead of running beside them.
func (s *Scheduler) Run(ctx context.Context) {
	log.Infof("Reminder scheduler started (lead time %s, polling every %s)", s.cfg.LeadTime, s.cfg.PollInterval)
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Reminder scheduler stopped")
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				log.Errorf("reminder check skipped, will retry next cycle: %v", err)
			}
		}
	}
}
