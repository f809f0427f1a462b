package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/locus-venue/internal/booking"
	"github.com/wolfman30/locus-venue/internal/calendar"
	"github.com/wolfman30/locus-venue/internal/dialogue"
	"github.com/wolfman30/locus-venue/internal/relay"
	"github.com/wolfman30/locus-venue/internal/sessionstore"
	"github.com/wolfman30/locus-venue/internal/toast"
	"github.com/wolfman30/locus-venue/pkg/logging"
	"golang.org/x/net/websocket"
)

// ErrSurfaceClosed is returned when a booking is submitted without the
// booking surface open.
var ErrSurfaceClosed = errors.New("webchat: booking surface is not open")

// ReplyRateLimited is sent over the socket when a client exceeds the limiter.
const ReplyRateLimited = "You're sending messages too quickly. Please wait a moment and try again."

// Availability refreshes the blocked-date set when the booking surface opens.
type Availability interface {
	Refresh(ctx context.Context, current calendar.DateSet) (calendar.DateSet, error)
}

// Limiter decides whether a client may post another record to the venue.
type Limiter interface {
	Allow(key string) bool
}

// BookingSubmitter validates and relays booking forms.
type BookingSubmitter interface {
	Submit(ctx context.Context, f booking.Form) (relay.Result, error)
	MaxGuests() int
}

// Handler manages web chat connections, chat turns and the booking surface.
type Handler struct {
	engine       *dialogue.Engine
	store        sessionstore.Store[*Visit]
	availability Availability
	bookings     BookingSubmitter
	logger       *logging.Logger
	now          func() time.Time
	locks        *sessionLocks
	limiter      Limiter

	mu       sync.RWMutex
	sessions map[string]*wsConn // sessionID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "ping"
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type         string            `json:"type"` // "message", "history", "session", "booking", "error", "pong"
	Text         string            `json:"text,omitempty"`
	Role         string            `json:"role,omitempty"` // "assistant" or "user"
	SessionID    string            `json:"session_id,omitempty"`
	State        string            `json:"state,omitempty"`
	Timestamp    string            `json:"timestamp,omitempty"`
	Messages     []HistoryMessage  `json:"messages,omitempty"`
	BlockedDates *calendar.DateSet `json:"blocked_dates,omitempty"`
	Toast        *toast.Toast      `json:"toast,omitempty"`
}

// HistoryMessage is a transcript line for history responses.
type HistoryMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// TurnResponse is returned by the HTTP chat fallback.
type TurnResponse struct {
	SessionID    string            `json:"session_id"`
	State        string            `json:"state"`
	Surface      string            `json:"surface"`
	Replies      []string          `json:"replies"`
	BlockedDates *calendar.DateSet `json:"blocked_dates,omitempty"`
	Toast        *toast.Toast      `json:"toast,omitempty"`
}

// NewHandler creates a web chat handler.
func NewHandler(engine *dialogue.Engine, store sessionstore.Store[*Visit], availability Availability, bookings BookingSubmitter, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine:       engine,
		store:        store,
		availability: availability,
		bookings:     bookings,
		logger:       logger,
		now:          time.Now,
		locks:        newSessionLocks(),
		sessions:     make(map[string]*wsConn),
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// SetLimiter limits inbound socket messages per client address. The HTTP
// routes are limited by middleware sharing the same limiter.
func (h *Handler) SetLimiter(l Limiter) {
	h.limiter = l
}

func (h *Handler) allow(r *http.Request) bool {
	if h.limiter == nil {
		return true
	}
	key := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		key = host
	}
	return h.limiter.Allow(key)
}

func (h *Handler) load(ctx context.Context, id string) (*Visit, error) {
	v, err := h.store.Load(ctx, id)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return newVisit(id), nil
	}
	if err != nil {
		return nil, err
	}
	if v == nil || v.Session == nil {
		return newVisit(id), nil
	}
	return v, nil
}

// withVisit runs fn on the visit for id under the per-session lock and saves
// the result. The memory store shares one *Visit between requests, so
// anything read from v must be copied inside fn.
func (h *Handler) withVisit(ctx context.Context, id string, fn func(*Visit) error) error {
	unlock := h.locks.lock(id)
	defer unlock()

	v, err := h.load(ctx, id)
	if err != nil {
		return fmt.Errorf("webchat: load visit: %w", err)
	}
	fnErr := fn(v)
	if err := h.store.Save(ctx, id, v); err != nil {
		return fmt.Errorf("webchat: save visit: %w", err)
	}
	return fnErr
}

// viewVisit runs fn on a stored visit under the per-session lock without
// saving it. A missing visit returns sessionstore.ErrNotFound.
func (h *Handler) viewVisit(ctx context.Context, id string, fn func(*Visit)) error {
	unlock := h.locks.lock(id)
	defer unlock()

	v, err := h.store.Load(ctx, id)
	if err != nil {
		return err
	}
	if v == nil || v.Session == nil {
		return sessionstore.ErrNotFound
	}
	fn(v)
	return nil
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	ctx := r.Context()
	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	var state string
	var transcript []HistoryMessage
	err := h.withVisit(ctx, sessionID, func(v *Visit) error {
		state = v.Session.State.String()
		transcript = history(v.Session)
		return nil
	})
	if err != nil {
		h.logger.Error("webchat: failed to open session", "error", err, "session_id", sessionID)
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: dialogue.ReplySendError})
		return
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
		State:     state,
	})
	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: transcript})

	wsc := &wsConn{conn: conn, done: make(chan struct{})}
	h.mu.Lock()
	h.sessions[sessionID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[sessionID] == wsc {
			delete(h.sessions, sessionID)
		}
		h.mu.Unlock()
		close(wsc.done)
	}()

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}
		if !h.allow(r) {
			h.logger.Warn("webchat: socket message rate limited", "session_id", sessionID)
			h.SendToSession(sessionID, OutboundMessage{Type: "error", Text: ReplyRateLimited})
			continue
		}

		resp, err := h.processMessage(ctx, sessionID, msg.Text)
		if err != nil {
			h.SendToSession(sessionID, OutboundMessage{Type: "error", Text: dialogue.ReplySendError})
			continue
		}
		h.pushTurn(resp)
	}
}

func (h *Handler) pushTurn(resp TurnResponse) {
	ts := h.now().UTC().Format(time.RFC3339)
	for _, reply := range resp.Replies {
		h.SendToSession(resp.SessionID, OutboundMessage{
			Type:      "message",
			Role:      "assistant",
			Text:      reply,
			State:     resp.State,
			Timestamp: ts,
		})
	}
	if resp.Surface == dialogue.SurfaceBooking.String() {
		h.SendToSession(resp.SessionID, OutboundMessage{
			Type:         "booking",
			State:        resp.State,
			BlockedDates: resp.BlockedDates,
			Toast:        resp.Toast,
		})
	}
}

// processMessage runs one dialogue turn. A handoff opens the booking surface
// in the same request.
func (h *Handler) processMessage(ctx context.Context, sessionID, text string) (TurnResponse, error) {
	resp := TurnResponse{SessionID: sessionID, Replies: []string{}}
	err := h.withVisit(ctx, sessionID, func(v *Visit) error {
		out, err := h.engine.Turn(ctx, v.Session, text)
		if err != nil {
			return err
		}
		if out.Handoff {
			h.openBooking(ctx, v)
			blocked := v.Booking.BlockedDates.Clone()
			resp.BlockedDates = &blocked
			resp.Toast = h.currentToast(v)
		}
		resp.State = v.Session.State.String()
		resp.Surface = v.Session.Surface.String()
		resp.Replies = append(resp.Replies, out.Replies...)
		return nil
	})
	if err != nil {
		h.logger.Error("webchat: turn failed", "error", err, "session_id", sessionID)
		return TurnResponse{}, err
	}
	return resp, nil
}

// openBooking shows the booking surface and reads the calendar exactly once.
// A failed read keeps the previous blocked dates and shows a notice.
func (h *Handler) openBooking(ctx context.Context, v *Visit) {
	v.Booking.Open = true
	v.Session.Surface = dialogue.SurfaceBooking

	if h.availability == nil {
		v.Toasts.Push(toast.CalendarFailure(h.now()))
		return
	}
	blocked, err := h.availability.Refresh(ctx, v.Booking.BlockedDates)
	v.Booking.BlockedDates = blocked
	if err != nil {
		v.Toasts.Push(toast.CalendarFailure(h.now()))
	}
}

func (h *Handler) closeBooking(v *Visit) {
	v.Booking.Open = false
	if v.Session.Surface == dialogue.SurfaceBooking {
		h.engine.EndHandoff(v.Session)
	}
}

func (h *Handler) currentToast(v *Visit) *toast.Toast {
	if t, ok := v.Toasts.Current(h.now()); ok {
		return &t
	}
	return nil
}

// SendToSession sends a message to an active WebSocket session.
func (h *Handler) SendToSession(sessionID string, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(wsc.conn, msg)
}

// HandleMessage is the HTTP fallback for sending messages.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = generateSessionID()
	}

	resp, err := h.processMessage(r.Context(), req.SessionID, req.Text)
	if err != nil {
		http.Error(w, "failed to process message", http.StatusInternalServerError)
		return
	}
	h.pushTurn(resp)
	writeJSON(w, http.StatusOK, resp)
}

// HandleHistory returns the transcript for a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	var state string
	var messages []HistoryMessage
	err := h.viewVisit(r.Context(), sessionID, func(v *Visit) {
		state = v.Session.State.String()
		messages = history(v.Session)
	})
	if errors.Is(err, sessionstore.ErrNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("webchat: failed to load history", "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"state":      state,
		"messages":   messages,
	})
}

func history(s *dialogue.Session) []HistoryMessage {
	out := make([]HistoryMessage, 0, len(s.Transcript))
	for _, m := range s.Transcript {
		role := "assistant"
		if m.FromUser {
			role = "user"
		}
		out = append(out, HistoryMessage{Role: role, Text: m.Text})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
