package calendar

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wolfman30/locus-venue/internal/config"
	"github.com/wolfman30/locus-venue/pkg/logging"
)

type eventsResponse struct {
	Events  []Event `json:"events"`
	Message string  `json:"message,omitempty"`
}

type credentialPresence struct {
	ClientEmail bool `json:"clientEmail"`
	PrivateKey  bool `json:"privateKey"`
	CalendarID  bool `json:"calendarId"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
	Debug   struct {
		HasCredentials credentialPresence `json:"hasCredentials"`
	} `json:"debug"`
}

// Handler serves the calendar proxy endpoint.
type Handler struct {
	source Source
	creds  config.CalendarCredentials
	logger *logging.Logger
}

// NewHandler creates a calendar proxy handler. source may be nil when the
// credentials are missing; requests then get the configuration error.
func NewHandler(source Source, creds config.CalendarCredentials, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{source: source, creds: creds, logger: logger}
}

// ListEvents handles GET /api/google-calendar/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "Method not allowed"})
		return
	}

	presence := h.presence()
	h.logger.Debug("calendar: checking credentials",
		"has_client_email", presence.ClientEmail,
		"has_private_key", presence.PrivateKey,
		"has_calendar_id", presence.CalendarID,
	)

	if err := h.creds.Validate(); err != nil {
		h.fail(w, err, presence)
		return
	}
	if h.source == nil {
		h.fail(w, ErrSourceUnavailable, presence)
		return
	}

	events, err := h.source.Events(r.Context())
	if err != nil {
		h.fail(w, err, presence)
		return
	}
	if events == nil {
		events = []Event{}
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		Events:  events,
		Message: "Successfully fetched calendar events",
	})
}

func (h *Handler) fail(w http.ResponseWriter, err error, presence credentialPresence) {
	h.logger.Error("calendar: failed to fetch events", "error", err)
	resp := errorResponse{
		Error:   "Failed to fetch calendar events",
		Details: err.Error(),
	}
	resp.Debug.HasCredentials = presence
	writeJSON(w, http.StatusInternalServerError, resp)
}

func (h *Handler) presence() credentialPresence {
	return credentialPresence{
		ClientEmail: strings.TrimSpace(h.creds.ClientEmail) != "",
		PrivateKey:  strings.TrimSpace(h.creds.PrivateKey) != "",
		CalendarID:  strings.TrimSpace(h.creds.CalendarID) != "",
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
