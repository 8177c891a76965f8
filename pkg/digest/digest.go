package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/calbot/calbot/internal/utils"
	"github.com/calbot/calbot/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

// AgendaSender posts a day's agenda to the destination channel.
// notifier.TelegramNotifier satisfies it.
type AgendaSender interface {
	SendAgenda(ctx context.Context, day time.Time, events []calendar.Event) error
}

// Service posts the day's agenda to the channel once a day at a fixed local
// time.
type Service struct {
	cal      calendar.Calendar
	sender   AgendaSender
	clock    utils.Clock
	location *time.Location
	sendAt   time.Time
}

// NewService builds the digest service. sendAt is a wall-clock time in the
// form "HH:MM", interpreted in location.
func NewService(cal calendar.Calendar, sender AgendaSender, location *time.Location, sendAt string) (*Service, error) {
	clockTime, err := time.Parse("15:04", sendAt)
	if err != nil {
		return nil, fmt.Errorf("invalid digest send time %q: %w", sendAt, err)
	}
	return &Service{
		cal:      cal,
		sender:   sender,
		clock:    utils.SystemClock{},
		location: location,
		sendAt:   clockTime,
	}, nil
}

// SendDaily fetches today's events and posts the agenda.
func (s *Service) SendDaily(ctx context.Context) error {
	now := s.clock.Now().In(s.location)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)

	events, err := s.cal.ListUpcoming(ctx, startOfDay, startOfDay.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	return s.sender.SendAgenda(ctx, now, events)
}

func (s *Service) nextSendTime(now time.Time) time.Time {
	now = now.In(s.location)
	next := time.Date(now.Year(), now.Month(), now.Day(), s.sendAt.Hour(), s.sendAt.Minute(), 0, 0, s.location)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run sends the agenda at the configured time every day until ctx is
// cancelled. Failures are logged and the next day's send proceeds as usual.
func (s *Service) Run(ctx context.Context) {
	log.Infof("Daily digest enabled at %s (%s)", s.sendAt.Format("15:04"), s.location)

	for {
		now := s.clock.Now()
		timer := time.NewTimer(s.nextSendTime(now).Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info("Daily digest stopped")
			return
		case <-timer.C:
			if err := s.SendDaily(ctx); err != nil {
				log.Errorf("failed to send daily digest: %v", err)
			}
		}
	}
}
