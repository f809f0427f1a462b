package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/locus-venue/internal/booking"
	"github.com/wolfman30/locus-venue/internal/calendar"
	httpmiddleware "github.com/wolfman30/locus-venue/internal/http/middleware"
	"github.com/wolfman30/locus-venue/internal/webchat"
	"github.com/wolfman30/locus-venue/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	CalendarHandler    *calendar.Handler
	BookingHandler     *booking.Handler
	ChatHandler        *webchat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimiter guards the endpoints that relay records to the venue.
	// Nil disables limiting.
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Socket messages are limited inside the chat handler; bootstrap hands it
	// the same limiter.
	limited := httpmiddleware.RateLimit(cfg.RateLimiter)

	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// The proxy functions answer 405 themselves for the wrong method, so they
	// are mounted without a method filter.
	r.Route("/api", func(api chi.Router) {
		if cfg.CalendarHandler != nil {
			api.HandleFunc("/google-calendar/events", cfg.CalendarHandler.ListEvents)
		}
		if cfg.BookingHandler != nil {
			api.With(limited).HandleFunc("/send-booking-email", cfg.BookingHandler.SendBookingEmail)
		}
	})

	if cfg.ChatHandler != nil {
		r.Route("/chat", func(chat chi.Router) {
			chat.Get("/ws", cfg.ChatHandler.HandleWebSocket)
			chat.With(limited).Post("/message", cfg.ChatHandler.HandleMessage)
			chat.Get("/history", cfg.ChatHandler.HandleHistory)
		})
		r.Route("/booking", func(b chi.Router) {
			b.Post("/open", cfg.ChatHandler.HandleOpenBooking)
			b.Post("/close", cfg.ChatHandler.HandleCloseBooking)
			b.With(limited).Post("/submit", cfg.ChatHandler.HandleSubmitBooking)
			b.Get("/availability", cfg.ChatHandler.HandleAvailability)
		})
	}

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
