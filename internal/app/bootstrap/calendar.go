package bootstrap

import (
	"context"
	"net/http"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/wolfman30/locus-venue/internal/calendar"
	appconfig "github.com/wolfman30/locus-venue/internal/config"
	"github.com/wolfman30/locus-venue/pkg/logging"
)

// CalendarSources holds the two ways blocked dates can be read. Google is the
// direct service-account reader and also backs the events proxy endpoint.
// Availability prefers Google and falls back to a remote proxy URL.
type CalendarSources struct {
	Google       *calendar.GoogleSource
	Availability calendar.Source
}

// BuildCalendarSources wires the calendar readers from config. Missing
// credentials are not an error: the proxy endpoint reports them per request
// and the booking surface fails open.
func BuildCalendarSources(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) CalendarSources {
	if logger == nil {
		logger = logging.Default()
	}
	var out CalendarSources

	google, err := calendar.NewGoogleSource(ctx, cfg.CalendarCredentials(), cfg.CalendarMaxResults)
	if err != nil {
		logger.Warn("google calendar not configured", "error", err)
	} else {
		out.Google = google
		out.Availability = google
		logger.Info("google calendar source enabled", "calendar_id", cfg.GoogleCalendarID)
	}

	if out.Availability == nil {
		if url := strings.TrimSpace(cfg.CalendarProxyURL); url != "" {
			timeout := cfg.CalendarFetchTimeout
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			out.Availability = calendar.NewProxySource(url, &http.Client{Timeout: timeout})
			logger.Info("calendar proxy source enabled", "url", url)
		} else {
			logger.Warn("no calendar source configured; every date will show as open")
		}
	}
	return out
}

// LoadLocation resolves the venue time zone, falling back to UTC.
func LoadLocation(name string, logger *logging.Logger) *time.Location {
	if logger == nil {
		logger = logging.Default()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("unknown calendar timezone; using UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}
