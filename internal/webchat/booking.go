package webchat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/wolfman30/locus-venue/internal/booking"
	"github.com/wolfman30/locus-venue/internal/calendar"
	"github.com/wolfman30/locus-venue/internal/relay"
	"github.com/wolfman30/locus-venue/internal/sessionstore"
	"github.com/wolfman30/locus-venue/internal/toast"
)

// BookingResponse describes the booking surface after a request.
type BookingResponse struct {
	SessionID    string            `json:"session_id"`
	Open         bool              `json:"open"`
	State        string            `json:"state"`
	Sent         bool              `json:"sent,omitempty"`
	BlockedDates *calendar.DateSet `json:"blocked_dates,omitempty"`
	Toast        *toast.Toast      `json:"toast,omitempty"`
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

type submitRequest struct {
	SessionID string       `json:"session_id"`
	Form      booking.Form `json:"form"`
}

func (h *Handler) bookingResponse(id string, v *Visit) BookingResponse {
	resp := BookingResponse{
		SessionID: id,
		Open:      v.Booking.Open,
		State:     v.Session.State.String(),
		Toast:     h.currentToast(v),
	}
	if v.Booking.Open {
		blocked := v.Booking.BlockedDates.Clone()
		resp.BlockedDates = &blocked
	}
	return resp
}

func decodeSessionID(r *http.Request) (string, bool) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", false
	}
	id := strings.TrimSpace(req.SessionID)
	return id, id != ""
}

// HandleOpenBooking handles POST /booking/open. Every open reads the calendar
// once and replaces the blocked dates.
func (h *Handler) HandleOpenBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := decodeSessionID(r)
	if !ok {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	var resp BookingResponse
	err := h.withVisit(r.Context(), id, func(v *Visit) error {
		h.openBooking(r.Context(), v)
		resp = h.bookingResponse(id, v)
		return nil
	})
	if err != nil {
		h.logger.Error("webchat: failed to open booking", "error", err, "session_id", id)
		http.Error(w, "failed to open booking", http.StatusInternalServerError)
		return
	}

	h.logger.Info("webchat: booking surface opened", "session_id", id, "blocked_dates", resp.BlockedDates.Len())
	writeJSON(w, http.StatusOK, resp)
}

// HandleCloseBooking handles POST /booking/close.
func (h *Handler) HandleCloseBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := decodeSessionID(r)
	if !ok {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	var resp BookingResponse
	err := h.withVisit(r.Context(), id, func(v *Visit) error {
		h.closeBooking(v)
		resp = h.bookingResponse(id, v)
		return nil
	})
	if err != nil {
		h.logger.Error("webchat: failed to close booking", "error", err, "session_id", id)
		http.Error(w, "failed to close booking", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSubmitBooking handles POST /booking/submit.
func (h *Handler) HandleSubmitBooking(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	id := strings.TrimSpace(req.SessionID)
	if id == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	status := http.StatusOK
	var resp BookingResponse
	err := h.withVisit(r.Context(), id, func(v *Visit) error {
		var sent bool
		var err error
		status, sent, err = h.submitBooking(r.Context(), v, req.Form)
		resp = h.bookingResponse(id, v)
		resp.Sent = sent
		return err
	})
	if errors.Is(err, ErrSurfaceClosed) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.logger.Error("webchat: failed to submit booking", "error", err, "session_id", id)
		http.Error(w, "failed to submit booking", http.StatusInternalServerError)
		return
	}

	writeJSON(w, status, resp)
}

// submitBooking validates and relays f. A delivered request closes the
// surface; any failure leaves it open with an error notice.
func (h *Handler) submitBooking(ctx context.Context, v *Visit, f booking.Form) (int, bool, error) {
	if !v.Booking.Open {
		return http.StatusConflict, false, ErrSurfaceClosed
	}
	now := h.now()
	if h.bookings == nil {
		v.Toasts.Push(toast.BookingFailure(now))
		return http.StatusBadGateway, false, nil
	}

	res, err := h.bookings.Submit(ctx, f)
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		if verr.Field == "guestCount" {
			v.Toasts.Push(toast.GuestCountOutOfRange(h.bookings.MaxGuests(), now))
		} else {
			v.Toasts.Push(toast.Error(verr.Message, now))
		}
		return http.StatusUnprocessableEntity, false, nil
	case err != nil:
		return 0, false, err
	case !res.OK():
		h.logger.Warn("webchat: booking not delivered", "session_id", v.Session.ID, "kind", res.Kind.String(), "status", res.Status)
		v.Toasts.Push(toast.BookingFailure(now))
		return statusFor(res), false, nil
	}

	v.Toasts.Push(toast.BookingSent(now))
	h.closeBooking(v)
	return http.StatusOK, true, nil
}

func statusFor(res relay.Result) int {
	if res.Kind == relay.Misconfigured {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

// HandleAvailability handles GET /booking/availability?session=&date=YYYY-MM-DD
// against the blocked dates loaded by the last open.
func (h *Handler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("session"))
	if id == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	day, err := calendar.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	// A visitor who never opened the surface has no blocked dates.
	blocked := false
	err = h.viewVisit(r.Context(), id, func(v *Visit) {
		blocked = v.Booking.BlockedDates.Contains(day)
	})
	if err != nil && !errors.Is(err, sessionstore.ErrNotFound) {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":    day.String(),
		"blocked": blocked,
	})
}
