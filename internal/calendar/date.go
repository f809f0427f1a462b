package calendar

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf projects t onto its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD all-day date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("calendar: invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateSet is the set of blocked days. The zero value is an empty set.
type DateSet struct {
	days map[Date]struct{}
}

// NewDateSet builds a set from the given days.
func NewDateSet(days ...Date) DateSet {
	s := DateSet{days: make(map[Date]struct{}, len(days))}
	for _, d := range days {
		s.days[d] = struct{}{}
	}
	return s
}

// Add inserts d.
func (s *DateSet) Add(d Date) {
	if s.days == nil {
		s.days = make(map[Date]struct{})
	}
	s.days[d] = struct{}{}
}

// Contains reports whether d is in the set.
func (s DateSet) Contains(d Date) bool {
	_, ok := s.days[d]
	return ok
}

// IsBlocked compares at day granularity; the time of day in t is ignored.
func (s DateSet) IsBlocked(t time.Time) bool {
	return s.Contains(DateOf(t))
}

// Clone returns a copy that shares no storage with s.
func (s DateSet) Clone() DateSet {
	out := DateSet{days: make(map[Date]struct{}, len(s.days))}
	for d := range s.days {
		out.days[d] = struct{}{}
	}
	return out
}

// Len returns the number of blocked days.
func (s DateSet) Len() int {
	return len(s.days)
}

// Dates returns the blocked days in ascending order.
func (s DateSet) Dates() []Date {
	out := make([]Date, 0, len(s.days))
	for d := range s.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (s DateSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Dates())
}

func (s *DateSet) UnmarshalJSON(data []byte) error {
	var days []Date
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	*s = NewDateSet(days...)
	return nil
}
