package booking

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/locus-venue/internal/calendar"
	"github.com/wolfman30/locus-venue/internal/observability/metrics"
	"github.com/wolfman30/locus-venue/internal/relay"
	"github.com/wolfman30/locus-venue/pkg/logging"
)

// Relay directives for booking records.
const (
	Subject      = "New Booking Request from Locus Venue"
	DefaultNotes = "No additional notes"
)

// Submitter delivers a record and reports the outcome.
type Submitter interface {
	Submit(ctx context.Context, sub relay.Submission) relay.Result
}

// Service validates booking forms and hands them to the booking channel.
type Service struct {
	gateway      Submitter
	maxGuests    int
	loc          *time.Location
	autoResponse string
	now          func() time.Time
	logger       *logging.Logger
	metrics      *metrics.FunnelMetrics
}

// Option customizes a Service.
type Option func(*Service)

func WithMaxGuests(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxGuests = n
		}
	}
}

// WithLocation sets the venue zone used to decide what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithAutoResponse(text string) Option {
	return func(s *Service) { s.autoResponse = text }
}

func WithMetrics(m *metrics.FunnelMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(gateway Submitter, logger *logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		gateway:   gateway,
		maxGuests: DefaultMaxGuests,
		loc:       time.UTC,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxGuests is the configured guest-count upper bound.
func (s *Service) MaxGuests() int {
	return s.maxGuests
}

// Submit validates f and, when valid, makes one delivery attempt. A
// validation failure is returned as a *ValidationError and nothing is sent.
func (s *Service) Submit(ctx context.Context, f Form) (relay.Result, error) {
	today := calendar.DateOf(s.now().In(s.loc))
	if err := f.Validate(s.maxGuests, today); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.metrics.ObserveBookingRejected(verr.Field)
		}
		s.logger.Info("booking: form rejected", "error", err)
		return relay.Result{}, err
	}
	if s.gateway == nil {
		return relay.Result{Kind: relay.Misconfigured, Err: relay.ErrNoDestination}, nil
	}

	res := s.gateway.Submit(ctx, s.Submission(f))
	if res.OK() {
		s.logger.Info("booking: request sent", "event_type", string(f.EventType), "guest_count", f.GuestCount)
	}
	return res, nil
}

// Submission renders f as a relay record.
func (s *Service) Submission(f Form) relay.Submission {
	notes := strings.TrimSpace(f.AdditionalNotes)
	if notes == "" {
		notes = DefaultNotes
	}
	email := strings.TrimSpace(f.Email)

	var sub relay.Submission
	sub.Set("name", strings.TrimSpace(f.Name))
	sub.Set("email", email)
	sub.Set("phone", strings.TrimSpace(f.Phone))
	sub.Set("eventDate", FormatEventDate(f.EventDate))
	sub.Set("eventType", string(f.EventType))
	sub.Set("guestCount", strconv.Itoa(f.GuestCount))
	sub.Set("additionalNotes", notes)
	sub.Directives = relay.Directives{
		Subject:      Subject,
		ReplyTo:      email,
		AutoResponse: s.autoResponse,
	}
	return sub
}
