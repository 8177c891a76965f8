package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/calbot/calbot/pkg/calendar"
)

// ErrBadEventSpec is returned when an /add argument does not match the
// expected "date time-range title" shape.
var ErrBadEventSpec = errors.New("invalid event format")

// "1/2" uses non-padded verbs so both 8/15 and 08/15 parse.
var dateLayouts = []string{time.DateOnly, "1/2"}

// ParseEventSpec turns "2025-08-14 10:00-11:00 Team meeting" into an event.
// The date may also be given as MM/DD, in which case the year is taken from
// now. Times are interpreted in the given location.
func ParseEventSpec(text string, now time.Time, location *time.Location) (calendar.Event, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) < 3 {
		return calendar.Event{}, fmt.Errorf("%w: expected \"date start-end title\"", ErrBadEventSpec)
	}

	day, err := parseDate(fields[0], now, location)
	if err != nil {
		return calendar.Event{}, err
	}

	startClock, endClock, err := parseTimeRange(fields[1])
	if err != nil {
		return calendar.Event{}, err
	}

	title := strings.Join(fields[2:], " ")

	startTime := time.Date(day.Year(), day.Month(), day.Day(), startClock.Hour(), startClock.Minute(), 0, 0, location)
	endTime := time.Date(day.Year(), day.Month(), day.Day(), endClock.Hour(), endClock.Minute(), 0, 0, location)
	if !startTime.Before(endTime) {
		return calendar.Event{}, fmt.Errorf("%w: end time must be after start time", ErrBadEventSpec)
	}

	return calendar.Event{
		Title:     title,
		StartTime: startTime,
		EndTime:   endTime,
	}, nil
}

func parseDate(s string, now time.Time, location *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		day, err := time.ParseInLocation(layout, s, location)
		if err != nil {
			continue
		}
		if day.Year() == 0 {
			day = day.AddDate(now.Year(), 0, 0)
		}
		return day, nil
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", ErrBadEventSpec, s)
}

func parseTimeRange(s string) (time.Time, time.Time, error) {
	startStr, endStr, ok := strings.Cut(s, "-")
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: expected time range HH:MM-HH:MM", ErrBadEventSpec)
	}
	startClock, err := time.Parse("15:04", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: unrecognized start time %q", ErrBadEventSpec, startStr)
	}
	endClock, err := time.Parse("15:04", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: unrecognized end time %q", ErrBadEventSpec, endStr)
	}
	return startClock, endClock, nil
}
