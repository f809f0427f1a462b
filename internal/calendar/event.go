package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoStart is returned for events that carry neither a timestamp nor an
// all-day date.
var ErrNoStart = errors.New("calendar: event has no start")

// EventTime mirrors the Google Calendar start/end shape: timed events carry
// DateTime, all-day events carry Date.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Event is a busy interval on the venue calendar.
type Event struct {
	ID      string    `json:"id,omitempty"`
	Summary string    `json:"summary,omitempty"`
	Start   EventTime `json:"start"`
	End     EventTime `json:"end"`
}

// Day projects the event start onto a calendar day, preferring the full
// timestamp and falling back to the all-day date. Timestamps are read in loc.
func (e Event) Day(loc *time.Location) (Date, error) {
	if loc == nil {
		loc = time.UTC
	}
	if e.Start.DateTime != "" {
		t, err := time.Parse(time.RFC3339, e.Start.DateTime)
		if err != nil {
			return Date{}, fmt.Errorf("calendar: invalid start dateTime %q: %w", e.Start.DateTime, err)
		}
		return DateOf(t.In(loc)), nil
	}
	if e.Start.Date != "" {
		return ParseDate(e.Start.Date)
	}
	return Date{}, ErrNoStart
}

// BlockedDates projects every event to its start day. Events whose start
// cannot be read are returned in skipped and left out of the set.
func BlockedDates(events []Event, loc *time.Location) (set DateSet, skipped []Event) {
	set = NewDateSet()
	for _, ev := range events {
		day, err := ev.Day(loc)
		if err != nil {
			skipped = append(skipped, ev)
			continue
		}
		set.Add(day)
	}
	return set, skipped
}
