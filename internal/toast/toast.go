// Package toast models the transient success/failure notices shown to a
// visitor after a submission or calendar load.
package toast

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind distinguishes success notices from failures.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

const (
	SuccessDuration = 5 * time.Second
	ErrorDuration   = 4 * time.Second
)

// Toast is a single transient notice.
type Toast struct {
	Kind     Kind          `json:"kind"`
	Title    string        `json:"title,omitempty"`
	Body     string        `json:"body"`
	Duration time.Duration `json:"-"`
	IssuedAt time.Time     `json:"issued_at"`
}

type toastJSON struct {
	Kind       Kind      `json:"kind"`
	Title      string    `json:"title,omitempty"`
	Body       string    `json:"body"`
	DurationMS int64     `json:"duration_ms"`
	IssuedAt   time.Time `json:"issued_at"`
}

// MarshalJSON emits the duration in milliseconds for the widget.
func (t Toast) MarshalJSON() ([]byte, error) {
	return json.Marshal(toastJSON{
		Kind:       t.Kind,
		Title:      t.Title,
		Body:       t.Body,
		DurationMS: t.Duration.Milliseconds(),
		IssuedAt:   t.IssuedAt,
	})
}

func (t *Toast) UnmarshalJSON(data []byte) error {
	var raw toastJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Toast{
		Kind:     raw.Kind,
		Title:    raw.Title,
		Body:     raw.Body,
		Duration: time.Duration(raw.DurationMS) * time.Millisecond,
		IssuedAt: raw.IssuedAt,
	}
	return nil
}

// ExpiresAt is when the toast auto-dismisses.
func (t Toast) ExpiresAt() time.Time {
	return t.IssuedAt.Add(t.Duration)
}

// Active reports whether the toast is still visible at now.
func (t Toast) Active(now time.Time) bool {
	return now.Before(t.ExpiresAt())
}

// Success builds a success toast issued at now.
func Success(title, body string, now time.Time) Toast {
	return Toast{Kind: KindSuccess, Title: title, Body: body, Duration: SuccessDuration, IssuedAt: now}
}

// Error builds an error toast issued at now.
func Error(body string, now time.Time) Toast {
	return Toast{Kind: KindError, Body: body, Duration: ErrorDuration, IssuedAt: now}
}

const (
	BookingSentTitle = "Booking Request Sent!"
	BookingSentBody  = "Thank you for choosing Locus Venue. We will contact you shortly to confirm your booking details."
	BookingFailed    = "Error sending booking request. Please try again or contact us directly."
	CalendarFailed   = "Unable to load available dates. All dates are shown as open."
)

// BookingSent is the notice shown after a booking request is relayed.
func BookingSent(now time.Time) Toast {
	return Success(BookingSentTitle, BookingSentBody, now)
}

// BookingFailure is the notice shown when the relay rejects or is unreachable.
func BookingFailure(now time.Time) Toast {
	return Error(BookingFailed, now)
}

// GuestCountOutOfRange is the notice shown when the guest count fails validation.
func GuestCountOutOfRange(max int, now time.Time) Toast {
	return Error(fmt.Sprintf("Guest count must be between 1 and %d", max), now)
}

// CalendarFailure is the generic notice shown when blocked dates cannot load.
func CalendarFailure(now time.Time) Toast {
	return Error(CalendarFailed, now)
}
