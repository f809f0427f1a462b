package toast

import "time"

// Board holds the toast currently shown to one visitor. A new toast replaces
// the previous one; there is no queue.
type Board struct {
	Last *Toast `json:"last,omitempty"`
}

// Push replaces whatever toast is showing.
func (b *Board) Push(t Toast) {
	b.Last = &t
}

// Current returns the visible toast at now, if any.
func (b *Board) Current(now time.Time) (Toast, bool) {
	if b == nil || b.Last == nil {
		return Toast{}, false
	}
	if !b.Last.Active(now) {
		return Toast{}, false
	}
	return *b.Last, true
}

// Dismiss clears the board.
func (b *Board) Dismiss() {
	b.Last = nil
}
