package webchat

import (
	"sync"

	"github.com/wolfman30/locus-venue/internal/calendar"
	"github.com/wolfman30/locus-venue/internal/dialogue"
	"github.com/wolfman30/locus-venue/internal/toast"
)

// BookingSurface is the date-selection panel state for one visitor.
type BookingSurface struct {
	Open         bool             `json:"open"`
	BlockedDates calendar.DateSet `json:"blocked_dates"`
}

// Visit is everything the site remembers about one visitor until the idle
// TTL runs out.
type Visit struct {
	Session *dialogue.Session `json:"session"`
	Booking BookingSurface    `json:"booking"`
	Toasts  toast.Board       `json:"toasts"`
}

func newVisit(id string) *Visit {
	return &Visit{Session: dialogue.NewSession(id)}
}

// sessionLocks serializes requests that touch the same visit.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*lockEntry)}
}

func (l *sessionLocks) lock(id string) (unlock func()) {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &lockEntry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
