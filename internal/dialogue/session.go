package dialogue

import (
	"strings"

	"github.com/google/uuid"
)

// Greeting opens every fresh transcript.
const Greeting = "Hi! How can I help you today?"

// Lead holds the contact details collected by the script.
type Lead struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Message is one transcript line.
type Message struct {
	Text     string `json:"text"`
	FromUser bool   `json:"from_user"`
}

// Session is the per-visitor conversation context. The engine is the only
// writer of State and Lead.
type Session struct {
	ID         string    `json:"id"`
	State      State     `json:"state"`
	Lead       Lead      `json:"lead"`
	Transcript []Message `json:"transcript"`
	Surface    Surface   `json:"surface"`
}

// NewSession starts a conversation in INITIAL with the greeting shown. An
// empty id gets a random one.
func NewSession(id string) *Session {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		ID:         id,
		State:      Initial,
		Transcript: []Message{{Text: Greeting}},
		Surface:    SurfaceChat,
	}
}

func (s *Session) appendUser(text string) {
	s.Transcript = append(s.Transcript, Message{Text: text, FromUser: true})
}

func (s *Session) appendEngine(text string) {
	s.Transcript = append(s.Transcript, Message{Text: text})
}
