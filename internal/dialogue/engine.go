package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/locus-venue/internal/observability/metrics"
	"github.com/wolfman30/locus-venue/internal/relay"
	"github.com/wolfman30/locus-venue/pkg/logging"
)

// Engine replies.
const (
	PromptName         = "I'd be happy to help you book an event! What's your full name?"
	PromptEmailFormat  = "Nice to meet you, %s! What's your email address?"
	PromptInvalidEmail = "Please enter a valid email address."
	PromptPhone        = "Thanks! What's the best phone number to reach you?"
	PromptInvalidPhone = "Please enter a valid phone number."
	PromptConfirm      = "Great! Would you like to check available dates and book your event now?"
	ReplyDecline       = "No problem! Let me know if you need anything else."
	ReplyInquiryAck    = "Thanks for your message! We'll get back to you soon."
	ReplySendError     = "Sorry, there was an error sending your message. Please try again."
)

// Relay directives for chat records.
const (
	InquirySubject     = "New Chat Inquiry from Locus Website"
	BookingLeadSubject = "New Booking Inquiry from Locus Chat"
)

var (
	bookingKeywords     = []string{"book", "reserve", "schedule"}
	affirmativeKeywords = []string{"yes", "sure", "okay"}
)

// Submitter delivers a record and reports the outcome. *relay.Gateway
// satisfies it.
type Submitter interface {
	Submit(ctx context.Context, sub relay.Submission) relay.Result
}

// Outcome describes what one turn did.
type Outcome struct {
	From    State
	To      State
	Replies []string
	// Handoff is set when the lead was delivered and the booking surface
	// should open.
	Handoff bool
	// Delivery is the gateway result when the turn submitted a record.
	Delivery *relay.Result
}

type step struct {
	reply    string
	next     State
	handoff  bool
	delivery *relay.Result
}

type handler func(ctx context.Context, s *Session, text string) step

// Engine runs the scripted exchange. It holds no per-visitor state.
type Engine struct {
	inquiries Submitter
	leads     Submitter
	handlers  map[State]handler
	logger    *logging.Logger
	metrics   *metrics.FunnelMetrics
	now       func() time.Time
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

func WithMetrics(m *metrics.FunnelMetrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine wires the inquiry and booking-lead channels. Either may be the
// same gateway.
func NewEngine(inquiries, leads Submitter, logger *logging.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		inquiries: inquiries,
		leads:     leads,
		logger:    logger,
		now:       time.Now,
	}
	e.handlers = map[State]handler{
		Initial:         e.handleInitial,
		CollectingName:  e.handleName,
		CollectingEmail: e.handleEmail,
		CollectingPhone: e.handlePhone,
		Complete:        e.handleComplete,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Turn applies one line of visitor text to s. Blank text is ignored.
func (e *Engine) Turn(ctx context.Context, s *Session, text string) (Outcome, error) {
	from := s.State
	out := Outcome{From: from, To: from}
	if strings.TrimSpace(text) == "" {
		return out, nil
	}

	h, ok := e.handlers[s.State]
	if !ok {
		return out, fmt.Errorf("%w: %s", ErrUnknownState, s.State)
	}

	s.appendUser(text)
	st := h(ctx, s, text)
	s.State = st.next
	if st.handoff {
		s.Surface = SurfaceBooking
	} else if st.reply != "" {
		s.appendEngine(st.reply)
		out.Replies = append(out.Replies, st.reply)
	}

	out.To = st.next
	out.Handoff = st.handoff
	out.Delivery = st.delivery
	e.metrics.ObserveTurn(from.String(), st.next.String())
	e.logger.Debug("dialogue: turn handled",
		"session_id", s.ID,
		"from", from.String(),
		"to", st.next.String(),
		"handoff", st.handoff,
	)
	return out, nil
}

func (e *Engine) handleInitial(ctx context.Context, s *Session, text string) step {
	if containsAny(text, bookingKeywords) {
		return step{reply: PromptName, next: CollectingName}
	}

	var sub relay.Submission
	sub.Set("message", text)
	sub.Set("timestamp", e.now().Format("1/2/2006, 3:04:05 PM"))
	sub.Directives.Subject = InquirySubject

	res := e.submit(ctx, e.inquiries, sub)
	if !res.OK() {
		e.logger.Warn("dialogue: inquiry not delivered", "session_id", s.ID, "kind", res.Kind.String(), "error", res.Err)
		return step{reply: ReplySendError, next: Initial, delivery: &res}
	}
	return step{reply: ReplyInquiryAck, next: Initial, delivery: &res}
}

func (e *Engine) handleName(_ context.Context, s *Session, text string) step {
	name := strings.TrimSpace(text)
	s.Lead.Name = name
	return step{reply: fmt.Sprintf(PromptEmailFormat, name), next: CollectingEmail}
}

func (e *Engine) handleEmail(_ context.Context, s *Session, text string) step {
	if !ValidEmail(text) {
		return step{reply: PromptInvalidEmail, next: CollectingEmail}
	}
	s.Lead.Email = text
	return step{reply: PromptPhone, next: CollectingPhone}
}

func (e *Engine) handlePhone(_ context.Context, s *Session, text string) step {
	if !ValidPhone(text) {
		return step{reply: PromptInvalidPhone, next: CollectingPhone}
	}
	s.Lead.Phone = text
	return step{reply: PromptConfirm, next: Complete}
}

func (e *Engine) handleComplete(ctx context.Context, s *Session, text string) step {
	if !containsAny(text, affirmativeKeywords) {
		return step{reply: ReplyDecline, next: Initial}
	}

	var sub relay.Submission
	sub.Set("name", s.Lead.Name)
	sub.Set("email", s.Lead.Email)
	sub.Set("phone", s.Lead.Phone)
	sub.Directives = relay.Directives{Subject: BookingLeadSubject, ReplyTo: s.Lead.Email}

	res := e.submit(ctx, e.leads, sub)
	if !res.OK() {
		e.logger.Warn("dialogue: booking lead not delivered", "session_id", s.ID, "kind", res.Kind.String(), "error", res.Err)
		return step{reply: ReplySendError, next: Complete, delivery: &res}
	}
	return step{next: Complete, handoff: true, delivery: &res}
}

// EndHandoff returns a handed-off session to the chat surface in INITIAL once
// the booking surface is submitted or closed.
func (e *Engine) EndHandoff(s *Session) {
	if s.Surface != SurfaceBooking {
		return
	}
	from := s.State
	s.State = Initial
	s.Surface = SurfaceChat
	e.metrics.ObserveTurn(from.String(), Initial.String())
}

func (e *Engine) submit(ctx context.Context, to Submitter, sub relay.Submission) (res relay.Result) {
	if to == nil {
		return relay.Result{Kind: relay.Misconfigured, Err: relay.ErrNoDestination}
	}
	defer func() {
		if p := recover(); p != nil {
			res = relay.Result{Kind: relay.Transport, Err: fmt.Errorf("dialogue: submit panicked: %v", p)}
		}
	}()
	return to.Submit(ctx, sub)
}
