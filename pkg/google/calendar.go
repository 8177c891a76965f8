package google

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/calbot/calbot/internal/utils"
	"github.com/calbot/calbot/pkg/calendar"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
)

// Calendar implements calendar.Calendar on top of the Google Calendar v3 API,
// scoped to a single shared calendar.
type Calendar struct {
	service    *gcal.Service
	calendarId string
	location   *time.Location
	clock      utils.Clock
}

func NewCalendar(service *gcal.Service, calendarId string, location *time.Location) *Calendar {
	return &Calendar{
		service:    service,
		calendarId: calendarId,
		location:   location,
		clock:      utils.SystemClock{},
	}
}

// Verify checks that the configured calendar is reachable and shared with the
// service account. Called once at startup.
func (c *Calendar) Verify(ctx context.Context) error {
	info, err := c.service.Calendars.Get(c.calendarId).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to access calendar %s: %w", c.calendarId, err)
	}
	log.Infof("Connected to calendar %q (%s, timezone %s)", info.Summary, c.calendarId, info.TimeZone)
	return nil
}

func (c *Calendar) ListUpcoming(ctx context.Context, from time.Time, to time.Time) ([]calendar.Event, error) {
	result, err := c.service.Events.List(c.calendarId).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		log.Errorf("unable to retrieve events from Google Calendar: %v", err)
		return nil, &calendar.FetchError{Err: err}
	}

	events := make([]calendar.Event, 0, len(result.Items))
	for _, item := range result.Items {
		event, err := c.googleEventToEvent(item)
		if err != nil {
			log.Warnf("skipping malformed calendar event %s: %v", item.Id, err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (c *Calendar) CreateEvent(ctx context.Context, event calendar.Event) (calendar.Event, error) {
	result, err := c.service.Events.Insert(c.calendarId, &gcal.Event{
		Summary:     event.Title,
		Location:    event.Location,
		Description: event.Description,
		Start: &gcal.EventDateTime{
			DateTime: event.StartTime.Format(time.RFC3339),
			TimeZone: c.location.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: event.EndTime.Format(time.RFC3339),
			TimeZone: c.location.String(),
		},
	}).Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to insert event in Google Calendar: %w", err)
		log.Error(err)
		return calendar.Event{}, err
	}

	event.ID = result.Id
	event.HTMLLink = result.HtmlLink
	return event, nil
}

func (c *Calendar) DeleteEvent(ctx context.Context, eventID string) error {
	err := c.service.Events.Delete(c.calendarId, eventID).Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to delete event %s from Google Calendar: %w", eventID, err)
		log.Error(err)
		return err
	}
	return nil
}

func (c *Calendar) FindByTitle(ctx context.Context, title string, horizon time.Duration) (calendar.Event, error) {
	now := c.clock.Now()
	events, err := c.ListUpcoming(ctx, now, now.Add(horizon))
	if err != nil {
		return calendar.Event{}, err
	}
	for _, event := range events {
		if strings.EqualFold(event.Title, title) {
			return event, nil
		}
	}
	return calendar.Event{}, calendar.ErrEventNotFound
}

func (c *Calendar) googleEventToEvent(item *gcal.Event) (calendar.Event, error) {
	event := calendar.Event{
		ID:          item.Id,
		Title:       item.Summary,
		Location:    item.Location,
		Description: item.Description,
		HTMLLink:    item.HtmlLink,
	}

	if item.Start == nil || item.End == nil {
		return calendar.Event{}, fmt.Errorf("event has no start or end")
	}

	if item.Start.DateTime != "" {
		startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return calendar.Event{}, fmt.Errorf("invalid start time %q: %w", item.Start.DateTime, err)
		}
		endTime, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return calendar.Event{}, fmt.Errorf("invalid end time %q: %w", item.End.DateTime, err)
		}
		event.StartTime = startTime.In(c.location)
		event.EndTime = endTime.In(c.location)
		return event, nil
	}

	// Date-only boundaries mean an all-day event.
	startTime, err := time.ParseInLocation(time.DateOnly, item.Start.Date, c.location)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("invalid start date %q: %w", item.Start.Date, err)
	}
	endTime, err := time.ParseInLocation(time.DateOnly, item.End.Date, c.location)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("invalid end date %q: %w", item.End.Date, err)
	}
	event.StartTime = startTime
	event.EndTime = endTime
	event.AllDay = true
	return event, nil
}
