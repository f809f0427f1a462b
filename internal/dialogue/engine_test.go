package dialogue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/locus-venue/internal/relay"
	"github.com/wolfman30/locus-venue/pkg/logging"
)

type fakeSubmitter struct {
	result relay.Result
	panics bool
	subs   []relay.Submission
}

func (f *fakeSubmitter) Submit(ctx context.Context, sub relay.Submission) relay.Result {
	f.subs = append(f.subs, sub)
	if f.panics {
		panic("relay exploded")
	}
	return f.result
}

func okSubmitter() *fakeSubmitter {
	return &fakeSubmitter{result: relay.Result{Kind: relay.Delivered, Status: 200}}
}

func failingSubmitter() *fakeSubmitter {
	return &fakeSubmitter{result: relay.Result{Kind: relay.Transport, Err: errors.New("unreachable")}}
}

func newTestEngine(inquiries, leads Submitter) *Engine {
	clock := func() time.Time { return time.Date(2025, 3, 1, 14, 5, 9, 0, time.UTC) }
	return NewEngine(inquiries, leads, logging.Discard(), WithClock(clock))
}

func turn(t *testing.T, e *Engine, s *Session, text string) Outcome {
	t.Helper()
	out, err := e.Turn(context.Background(), s, text)
	require.NoError(t, err)
	return out
}

func lastMessage(s *Session) Message {
	return s.Transcript[len(s.Transcript)-1]
}

func TestNewSessionStartsWithGreeting(t *testing.T) {
	s := NewSession("")
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, Initial, s.State)
	assert.Equal(t, SurfaceChat, s.Surface)
	assert.Equal(t, []Message{{Text: Greeting}}, s.Transcript)

	assert.Equal(t, "visit-1", NewSession(" visit-1 ").ID)
}

func TestBookingScript(t *testing.T) {
	leads := okSubmitter()
	e := newTestEngine(okSubmitter(), leads)
	s := NewSession("s1")

	// Scenario A
	out := turn(t, e, s, "I'd like to schedule an event")
	assert.Equal(t, CollectingName, s.State)
	assert.Equal(t, []string{PromptName}, out.Replies)

	// Scenario B
	turn(t, e, s, "Jane Doe")
	assert.Equal(t, CollectingEmail, s.State)
	assert.Equal(t, "Nice to meet you, Jane Doe! What's your email address?", lastMessage(s).Text)

	// Scenario C
	turn(t, e, s, "not-an-email")
	assert.Equal(t, CollectingEmail, s.State)
	assert.Equal(t, PromptInvalidEmail, lastMessage(s).Text)
	assert.Empty(t, s.Lead.Email)

	// Scenario D
	turn(t, e, s, "jane@example.com")
	assert.Equal(t, CollectingPhone, s.State)
	assert.Equal(t, PromptPhone, lastMessage(s).Text)
	turn(t, e, s, "416-555-0100")
	assert.Equal(t, Complete, s.State)
	assert.Equal(t, PromptConfirm, lastMessage(s).Text)

	// Scenario E
	before := len(s.Transcript)
	out = turn(t, e, s, "yes")
	assert.True(t, out.Handoff)
	assert.Empty(t, out.Replies)
	assert.Equal(t, SurfaceBooking, s.Surface)
	require.Len(t, s.Transcript, before+1)
	assert.Equal(t, Message{Text: "yes", FromUser: true}, lastMessage(s))

	assert.Equal(t, Lead{Name: "Jane Doe", Email: "jane@example.com", Phone: "416-555-0100"}, s.Lead)

	require.Len(t, leads.subs, 1)
	sub := leads.subs[0]
	assert.Equal(t, []relay.Field{
		{Name: "name", Value: "Jane Doe"},
		{Name: "email", Value: "jane@example.com"},
		{Name: "phone", Value: "416-555-0100"},
	}, sub.Fields)
	assert.Equal(t, BookingLeadSubject, sub.Directives.Subject)
	assert.Equal(t, "jane@example.com", sub.Directives.ReplyTo)
}

func TestBookingKeywordsCaseInsensitive(t *testing.T) {
	for _, text := range []string{"BOOK", "can I Reserve a room", "Schedule please", "booking for 50"} {
		t.Run(text, func(t *testing.T) {
			inquiries := okSubmitter()
			e := newTestEngine(inquiries, okSubmitter())
			s := NewSession("s")
			turn(t, e, s, text)
			assert.Equal(t, CollectingName, s.State)
			assert.Empty(t, inquiries.subs)
		})
	}
}

func TestGeneralInquiry(t *testing.T) {
	inquiries := okSubmitter()
	e := newTestEngine(inquiries, okSubmitter())
	s := NewSession("s")

	out := turn(t, e, s, "Do you have parking?")

	assert.Equal(t, Initial, s.State)
	assert.Equal(t, []string{ReplyInquiryAck}, out.Replies)
	require.NotNil(t, out.Delivery)
	assert.True(t, out.Delivery.OK())
	require.Len(t, inquiries.subs, 1)
	msg, _ := inquiries.subs[0].Get("message")
	assert.Equal(t, "Do you have parking?", msg)
	ts, _ := inquiries.subs[0].Get("timestamp")
	assert.Equal(t, "3/1/2025, 2:05:09 PM", ts)
	assert.Equal(t, InquirySubject, inquiries.subs[0].Directives.Subject)
	assert.Len(t, s.Transcript, 3)
}

func TestGeneralInquiryFailureKeepsState(t *testing.T) {
	e := newTestEngine(failingSubmitter(), okSubmitter())
	s := NewSession("s")

	out := turn(t, e, s, "hello")
	assert.Equal(t, Initial, s.State)
	assert.Equal(t, []string{ReplySendError}, out.Replies)
	assert.False(t, out.Delivery.OK())
}

func TestSubmitterPanicBecomesSendError(t *testing.T) {
	e := newTestEngine(&fakeSubmitter{panics: true}, nil)
	s := NewSession("s")

	out := turn(t, e, s, "hello")
	assert.Equal(t, []string{ReplySendError}, out.Replies)
	assert.Equal(t, relay.Transport, out.Delivery.Kind)
}

func TestMissingLeadChannelIsMisconfigured(t *testing.T) {
	e := newTestEngine(okSubmitter(), nil)
	s := &Session{ID: "s", State: Complete}

	out := turn(t, e, s, "sure")
	assert.Equal(t, Complete, s.State)
	assert.Equal(t, relay.Misconfigured, out.Delivery.Kind)
	assert.Equal(t, ReplySendError, lastMessage(s).Text)
}

func TestLeadDeliveryFailureStaysComplete(t *testing.T) {
	e := newTestEngine(okSubmitter(), failingSubmitter())
	s := &Session{ID: "s", State: Complete, Lead: Lead{Name: "J", Email: "j@x.co", Phone: "1"}}

	out := turn(t, e, s, "okay")
	assert.False(t, out.Handoff)
	assert.Equal(t, Complete, s.State)
	assert.Equal(t, SurfaceChat, s.Surface)
	assert.Equal(t, []string{ReplySendError}, out.Replies)
}

func TestDeclineResetsToInitialAndKeepsLead(t *testing.T) {
	leads := okSubmitter()
	e := newTestEngine(okSubmitter(), leads)
	lead := Lead{Name: "J", Email: "j@x.co", Phone: "1"}
	s := &Session{ID: "s", State: Complete, Lead: lead}

	out := turn(t, e, s, "not right now")
	assert.Equal(t, Initial, s.State)
	assert.Equal(t, []string{ReplyDecline}, out.Replies)
	assert.Equal(t, lead, s.Lead)
	assert.Empty(t, leads.subs)
}

func TestBlankInputIgnored(t *testing.T) {
	e := newTestEngine(okSubmitter(), okSubmitter())
	s := NewSession("s")

	for _, text := range []string{"", "   ", "\t\n"} {
		out := turn(t, e, s, text)
		assert.Empty(t, out.Replies)
	}
	assert.Len(t, s.Transcript, 1)
	assert.Equal(t, Initial, s.State)
}

func TestInvalidEmailLeavesLeadUnchanged(t *testing.T) {
	e := newTestEngine(okSubmitter(), okSubmitter())
	for _, text := range []string{"jane", "jane@", "jane@example", "@example.com", "a@@b.co", "jane @example.com", "jane@example..com", "jane@.com"} {
		t.Run(text, func(t *testing.T) {
			s := &Session{ID: "s", State: CollectingEmail, Lead: Lead{Name: "Jane", Email: "prior@x.co"}}
			turn(t, e, s, text)
			assert.Equal(t, CollectingEmail, s.State)
			assert.Equal(t, "prior@x.co", s.Lead.Email)
		})
	}
}

func TestPhoneAcceptedVerbatim(t *testing.T) {
	e := newTestEngine(okSubmitter(), okSubmitter())
	for _, text := range []string{"416-555-0100", "(416) 555 0100", "4165550100", " 416 "} {
		t.Run(text, func(t *testing.T) {
			s := &Session{ID: "s", State: CollectingPhone}
			turn(t, e, s, text)
			assert.Equal(t, Complete, s.State)
			assert.Equal(t, text, s.Lead.Phone)
		})
	}
}

func TestInvalidPhoneReprompts(t *testing.T) {
	e := newTestEngine(okSubmitter(), okSubmitter())
	for _, text := range []string{"+1 416 555 0100", "call me", "416.555.0100"} {
		t.Run(text, func(t *testing.T) {
			s := &Session{ID: "s", State: CollectingPhone}
			turn(t, e, s, text)
			assert.Equal(t, CollectingPhone, s.State)
			assert.Empty(t, s.Lead.Phone)
			assert.Equal(t, PromptInvalidPhone, lastMessage(s).Text)
		})
	}
}

func TestUnknownStateIsAnError(t *testing.T) {
	e := newTestEngine(okSubmitter(), okSubmitter())
	s := &Session{ID: "s", State: State(42)}

	_, err := e.Turn(context.Background(), s, "hello")
	assert.ErrorIs(t, err, ErrUnknownState)
	assert.Empty(t, s.Transcript)
}

func TestEndHandoff(t *testing.T) {
	e := newTestEngine(okSubmitter(), okSubmitter())
	s := &Session{ID: "s", State: Complete, Surface: SurfaceBooking}

	e.EndHandoff(s)
	assert.Equal(t, Initial, s.State)
	assert.Equal(t, SurfaceChat, s.Surface)

	s.State = CollectingEmail
	e.EndHandoff(s)
	assert.Equal(t, CollectingEmail, s.State, "chat sessions are left alone")
}

func TestStatesNeverSkip(t *testing.T) {
	allowed := map[State][]State{
		Initial:         {Initial, CollectingName},
		CollectingName:  {CollectingEmail},
		CollectingEmail: {CollectingEmail, CollectingPhone},
		CollectingPhone: {CollectingPhone, Complete},
		Complete:        {Complete, Initial},
	}
	inputs := []string{"book", "Jane", "bad", "jane@x.co", "abc", "555-0100", "no", "reserve", "J", "j@x.co", "1", "yes"}

	e := newTestEngine(okSubmitter(), okSubmitter())
	s := NewSession("s")
	for _, in := range inputs {
		out := turn(t, e, s, in)
		assert.Contains(t, allowed[out.From], out.To, "%s -> %s on %q", out.From, out.To, in)
	}
}
