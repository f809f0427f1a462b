// Package bootstrap wires configuration into the running funnel: calendar
// readers, relay gateways, the dialogue engine, the visit store and the HTTP
// router. Both the long-running server and the Lambda adapter use it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/locus-venue/internal/api/router"
	"github.com/wolfman30/locus-venue/internal/booking"
	"github.com/wolfman30/locus-venue/internal/calendar"
	appconfig "github.com/wolfman30/locus-venue/internal/config"
	"github.com/wolfman30/locus-venue/internal/dialogue"
	httpmiddleware "github.com/wolfman30/locus-venue/internal/http/middleware"
	"github.com/wolfman30/locus-venue/internal/observability/metrics"
	"github.com/wolfman30/locus-venue/internal/webchat"
	"github.com/wolfman30/locus-venue/pkg/logging"
)

// AWSLoader resolves the shared AWS SDK config. It is only called when a
// component selected by configuration needs AWS.
type AWSLoader func(ctx context.Context, cfg *appconfig.Config) (aws.Config, error)

// App is the assembled service.
type App struct {
	Handler  http.Handler
	Registry *prometheus.Registry
	Chat     *webchat.Handler

	closers []func() error
}

// Close releases backing clients.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build assembles the funnel from cfg.
func Build(ctx context.Context, cfg *appconfig.Config, loadAWS AWSLoader, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewFunnelMetrics(reg)

	loc := LoadLocation(cfg.CalendarTimezone, logger)
	sources := BuildCalendarSources(ctx, cfg, logger)
	availability := calendar.NewAvailability(sources.Availability, logger,
		calendar.WithLocation(loc),
		calendar.WithTimeout(cfg.CalendarFetchTimeout),
		calendar.WithMetrics(m),
	)
	var proxySource calendar.Source
	if sources.Google != nil {
		proxySource = sources.Google
	}

	sender := BuildEmailSender(ctx, cfg, loadAWS, logger)
	gateways, err := BuildGateways(cfg, sender, m, logger)
	if err != nil {
		return nil, err
	}

	engine := dialogue.NewEngine(gateways.Inquiry, gateways.BookingLead, logger, dialogue.WithMetrics(m))
	bookingOpts := []booking.Option{
		booking.WithMaxGuests(cfg.MaxGuestCount),
		booking.WithLocation(loc),
		booking.WithAutoResponse(cfg.RelayAutoResponse),
		booking.WithMetrics(m),
	}
	bookings := booking.NewService(gateways.Booking, logger, bookingOpts...)
	bookingEmails := booking.NewService(gateways.BookingEmail, logger, bookingOpts...)

	store, closeStore, err := BuildSessionStore(ctx, cfg, loadAWS, logger)
	if err != nil {
		return nil, err
	}
	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	chat := webchat.NewHandler(engine, store, availability, bookings, logger)
	chat.SetLimiter(limiter)

	handler := router.New(&router.Config{
		Logger:             logger,
		CalendarHandler:    calendar.NewHandler(proxySource, cfg.CalendarCredentials(), logger),
		BookingHandler:     booking.NewHandler(bookingEmails, logger),
		ChatHandler:        chat,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})

	return &App{
		Handler:  handler,
		Registry: reg,
		Chat:     chat,
		closers:  []func() error{closeStore},
	}, nil
}
