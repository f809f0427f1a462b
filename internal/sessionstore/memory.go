package sessionstore

import (
	"context"
	"sync"
	"time"
)

const pruneEvery = 128

type memoryEntry[T any] struct {
	value   T
	expires time.Time
}

// Memory keeps sessions in process memory.
type Memory[T any] struct {
	mu      sync.Mutex
	entries map[string]memoryEntry[T]
	ttl     time.Duration
	now     func() time.Time
	saves   int
}

func NewMemory[T any](ttl time.Duration) *Memory[T] {
	return &Memory[T]{
		entries: make(map[string]memoryEntry[T]),
		ttl:     ttlOrDefault(ttl),
		now:     time.Now,
	}
}

func (m *Memory[T]) Load(_ context.Context, id string) (T, error) {
	var zero T
	if err := checkID(id); err != nil {
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return zero, ErrNotFound
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, id)
		return zero, ErrNotFound
	}
	return e.value, nil
}

func (m *Memory[T]) Save(_ context.Context, id string, v T) error {
	if err := checkID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.entries[id] = memoryEntry[T]{value: v, expires: now.Add(m.ttl)}
	m.saves++
	if m.saves%pruneEvery == 0 {
		m.pruneLocked(now)
	}
	return nil
}

func (m *Memory[T]) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Len counts stored entries, expired ones included until they are pruned.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Prune drops expired entries.
func (m *Memory[T]) Prune() {
	m.mu.Lock()
	m.pruneLocked(m.now())
	m.mu.Unlock()
}

func (m *Memory[T]) pruneLocked(now time.Time) {
	for id, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, id)
		}
	}
}
