package calendar

import (
	"context"
	"time"

	"github.com/wolfman30/locus-venue/internal/observability/metrics"
	"github.com/wolfman30/locus-venue/pkg/logging"
)

// Availability turns a Source into the blocked-date predicate used by the
// booking date picker. It keeps no cache; each call reads the source once.
type Availability struct {
	source  Source
	loc     *time.Location
	timeout time.Duration
	logger  *logging.Logger
	metrics *metrics.FunnelMetrics
}

// Option customizes an Availability.
type Option func(*Availability)

// WithLocation sets the venue time zone used to project timestamps.
func WithLocation(loc *time.Location) Option {
	return func(a *Availability) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithTimeout bounds each fetch. Zero leaves the transport default in place.
func WithTimeout(d time.Duration) Option {
	return func(a *Availability) { a.timeout = d }
}

// WithMetrics records fetch outcomes.
func WithMetrics(m *metrics.FunnelMetrics) Option {
	return func(a *Availability) { a.metrics = m }
}

// NewAvailability builds the adapter. A nil source makes every fetch fail,
// which callers treat as "no dates blocked".
func NewAvailability(source Source, logger *logging.Logger, opts ...Option) *Availability {
	if logger == nil {
		logger = logging.Default()
	}
	a := &Availability{source: source, loc: time.UTC, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Location is the venue time zone.
func (a *Availability) Location() *time.Location {
	return a.loc
}

// FetchBlockedDates reads the source once and projects every event onto its
// start day.
func (a *Availability) FetchBlockedDates(ctx context.Context) (DateSet, error) {
	if a.source == nil {
		a.metrics.ObserveCalendarFetch("unconfigured", 0)
		return DateSet{}, ErrSourceUnavailable
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	events, err := a.source.Events(ctx)
	if err != nil {
		a.metrics.ObserveCalendarFetch("error", 0)
		return DateSet{}, err
	}

	set, skipped := BlockedDates(events, a.loc)
	for _, ev := range skipped {
		a.logger.Warn("calendar: skipping event without readable start", "event_id", ev.ID)
	}
	a.metrics.ObserveCalendarFetch("ok", set.Len())
	return set, nil
}

// Refresh replaces current with a fresh read. When the read fails, current is
// returned untouched together with the error.
func (a *Availability) Refresh(ctx context.Context, current DateSet) (DateSet, error) {
	fresh, err := a.FetchBlockedDates(ctx)
	if err != nil {
		a.logger.Warn("calendar: blocked dates unavailable, keeping previous set",
			"error", err,
			"previous_count", current.Len(),
		)
		return current, err
	}
	a.logger.Debug("calendar: blocked dates refreshed", "count", fresh.Len())
	return fresh, nil
}
