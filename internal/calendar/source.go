package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/locus-venue/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// DefaultMaxResults caps a single events read.
const DefaultMaxResults = 100

// ErrSourceUnavailable is returned when no calendar source is configured.
var ErrSourceUnavailable = errors.New("calendar: no event source configured")

// Source reads upcoming busy events.
type Source interface {
	Events(ctx context.Context) ([]Event, error)
}

// GoogleSource reads events straight from Google Calendar with a service
// account.
type GoogleSource struct {
	service    *gcal.Service
	calendarID string
	maxResults int64
	now        func() time.Time
	tracer     trace.Tracer
}

// NewGoogleSource authenticates with the service-account key and builds a
// readonly calendar client.
func NewGoogleSource(ctx context.Context, creds config.CalendarCredentials, maxResults int64) (*GoogleSource, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	conf := &jwt.Config{
		Email:      creds.ClientEmail,
		PrivateKey: []byte(creds.PrivateKey),
		Scopes:     []string{gcal.CalendarReadonlyScope},
		TokenURL:   google.JWTTokenURL,
	}
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("calendar: failed to create google calendar client: %w", err)
	}
	return NewGoogleSourceWithService(svc, creds.CalendarID, maxResults), nil
}

// NewGoogleSourceWithService wraps an already-built calendar service.
func NewGoogleSourceWithService(svc *gcal.Service, calendarID string, maxResults int64) *GoogleSource {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &GoogleSource{
		service:    svc,
		calendarID: calendarID,
		maxResults: maxResults,
		now:        time.Now,
		tracer:     otel.Tracer("locus.internal.calendar"),
	}
}

// Events lists occurrences from now forward with recurring events expanded,
// ordered by start time.
func (s *GoogleSource) Events(ctx context.Context) ([]Event, error) {
	ctx, span := s.tracer.Start(ctx, "calendar.google.events",
		trace.WithAttributes(attribute.Int64("calendar.max_results", s.maxResults)))
	defer span.End()

	resp, err := s.service.Events.List(s.calendarID).
		TimeMin(s.now().UTC().Format(time.RFC3339)).
		MaxResults(s.maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("calendar: list events: %w", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, fromGoogle(item))
	}
	span.SetAttributes(attribute.Int("calendar.events", len(events)))
	return events, nil
}

func fromGoogle(item *gcal.Event) Event {
	ev := Event{ID: item.Id, Summary: item.Summary}
	if item.Start != nil {
		ev.Start = EventTime{DateTime: item.Start.DateTime, Date: item.Start.Date, TimeZone: item.Start.TimeZone}
	}
	if item.End != nil {
		ev.End = EventTime{DateTime: item.End.DateTime, Date: item.End.Date, TimeZone: item.End.TimeZone}
	}
	return ev
}

// ProxySource reads events through the /api/google-calendar/events proxy.
type ProxySource struct {
	url        string
	httpClient *http.Client
}

// NewProxySource builds a proxy reader. A nil client uses http.DefaultClient.
func NewProxySource(url string, client *http.Client) *ProxySource {
	if client == nil {
		client = http.DefaultClient
	}
	return &ProxySource{url: strings.TrimSpace(url), httpClient: client}
}

// Events performs one GET against the proxy.
func (p *ProxySource) Events(ctx context.Context) ([]Event, error) {
	if p.url == "" {
		return nil, ErrSourceUnavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("calendar: build proxy request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar: proxy request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("calendar: read proxy response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var failure errorResponse
		if json.Unmarshal(body, &failure) == nil && failure.Details != "" {
			return nil, fmt.Errorf("calendar: proxy returned %d: %s", resp.StatusCode, failure.Details)
		}
		return nil, fmt.Errorf("calendar: proxy returned %d", resp.StatusCode)
	}

	var payload eventsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("calendar: decode proxy response: %w", err)
	}
	return payload.Events, nil
}
