package booking

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/locus-venue/internal/calendar"
	"github.com/wolfman30/locus-venue/internal/dialogue"
)

// DefaultMaxGuests is the venue capacity.
const DefaultMaxGuests = 200

// DisplayDateLayout is how event dates appear in relayed records.
const DisplayDateLayout = "Monday, January 2, 2006"

// EventType is the kind of event being booked.
type EventType string

const (
	Wedding   EventType = "Wedding"
	Corporate EventType = "Corporate"
	Birthday  EventType = "Birthday"
	Social    EventType = "Social"
	Other     EventType = "Other"
)

// EventTypes lists the selectable event types in display order.
var EventTypes = []EventType{Wedding, Corporate, Birthday, Social, Other}

func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Form is the booking surface input.
type Form struct {
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	EventDate       *calendar.Date `json:"eventDate,omitempty"`
	EventType       EventType      `json:"eventType"`
	GuestCount      int            `json:"guestCount"`
	AdditionalNotes string         `json:"additionalNotes"`
}

// UnmarshalJSON accepts guestCount as a number or a numeric string, and
// eventDate as YYYY-MM-DD or the display layout.
func (f *Form) UnmarshalJSON(data []byte) error {
	type alias Form
	var raw struct {
		alias
		EventDate  string          `json:"eventDate"`
		GuestCount json.RawMessage `json:"guestCount"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = Form(raw.alias)
	f.EventDate = nil
	f.GuestCount = 0

	if s := strings.TrimSpace(raw.EventDate); s != "" {
		d, err := ParseEventDate(s)
		if err != nil {
			return err
		}
		f.EventDate = &d
	}
	if len(raw.GuestCount) > 0 && string(raw.GuestCount) != "null" {
		n, err := parseCount(raw.GuestCount)
		if err != nil {
			return err
		}
		f.GuestCount = n
	}
	return nil
}

func parseCount(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("booking: guestCount must be a number")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("booking: guestCount must be a number")
	}
	return n, nil
}

// ParseEventDate reads a YYYY-MM-DD or "Monday, January 2, 2006" date.
func ParseEventDate(s string) (calendar.Date, error) {
	if d, err := calendar.ParseDate(s); err == nil {
		return d, nil
	}
	t, err := time.Parse(DisplayDateLayout, s)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("booking: invalid event date %q", s)
	}
	return calendar.DateOf(t), nil
}

// FormatEventDate renders d for relayed records; an absent date is empty.
func FormatEventDate(d *calendar.Date) string {
	if d == nil {
		return ""
	}
	return d.In(time.UTC).Format(DisplayDateLayout)
}

// Validate checks the form. The guest-count range is checked first.
func (f Form) Validate(maxGuests int, today calendar.Date) error {
	if maxGuests <= 0 {
		maxGuests = DefaultMaxGuests
	}
	if f.GuestCount < 1 || f.GuestCount > maxGuests {
		return invalid("guestCount", "Guest count must be between 1 and %d", maxGuests)
	}
	if strings.TrimSpace(f.Name) == "" {
		return invalid("name", "Name is required")
	}
	if !dialogue.ValidEmail(strings.TrimSpace(f.Email)) {
		return invalid("email", "Please enter a valid email address.")
	}
	if !dialogue.ValidPhone(strings.TrimSpace(f.Phone)) {
		return invalid("phone", "Please enter a valid phone number.")
	}
	if f.EventDate != nil && f.EventDate.Before(today) {
		return invalid("eventDate", "Event date cannot be in the past")
	}
	if !f.EventType.Valid() {
		return invalid("eventType", "Please select an event type")
	}
	return nil
}
