package calendar

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDayPrefersTimestamp(t *testing.T) {
	ev := Event{Start: EventTime{DateTime: "2025-03-10T18:00:00-05:00", Date: "2025-01-01"}}

	day, err := ev.Day(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.March, Day: 10}, day)
}

func TestEventDayProjectsIntoVenueZone(t *testing.T) {
	toronto, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	// 02:00 UTC on the 11th is still the evening of the 10th in Toronto.
	ev := Event{Start: EventTime{DateTime: "2025-03-11T02:00:00Z"}}

	day, err := ev.Day(toronto)
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.March, Day: 10}, day)

	day, err = ev.Day(nil)
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.March, Day: 11}, day)
}

func TestEventDayFallsBackToAllDay(t *testing.T) {
	day, err := Event{Start: EventTime{Date: "2025-07-04"}}.Day(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2025, Month: time.July, Day: 4}, day)
}

func TestEventDayErrors(t *testing.T) {
	_, err := Event{}.Day(time.UTC)
	assert.True(t, errors.Is(err, ErrNoStart))

	_, err = Event{Start: EventTime{DateTime: "not-a-time"}}.Day(time.UTC)
	assert.Error(t, err)
}

func TestBlockedDatesSkipsUnreadableEvents(t *testing.T) {
	events := []Event{
		{ID: "a", Start: EventTime{Date: "2025-03-10"}},
		{ID: "b"},
		{ID: "c", Start: EventTime{DateTime: "2025-03-10T20:00:00Z"}},
		{ID: "d", Start: EventTime{DateTime: "2025-03-12T09:00:00Z"}},
	}

	set, skipped := BlockedDates(events, time.UTC)
	assert.Equal(t, 2, set.Len())
	require.Len(t, skipped, 1)
	assert.Equal(t, "b", skipped[0].ID)
}
