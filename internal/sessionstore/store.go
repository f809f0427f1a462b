// Package sessionstore keeps per-visitor state between requests. Entries
// expire after an idle TTL and are never kept beyond it.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTTL is the idle lifetime of a stored session.
const DefaultTTL = 2 * time.Hour

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("sessionstore: session not found")
	// ErrEmptyID is returned when a caller passes a blank session ID.
	ErrEmptyID = errors.New("sessionstore: session id required")
)

// Store loads and saves values of type T keyed by session ID. Save refreshes
// the idle TTL.
type Store[T any] interface {
	Load(ctx context.Context, id string) (T, error)
	Save(ctx context.Context, id string, v T) error
	Delete(ctx context.Context, id string) error
}

func checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyID
	}
	return nil
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}

// Kind names a backing store.
type Kind string

const (
	KindMemory Kind = "memory"
	KindRedis  Kind = "redis"
	KindDynamo Kind = "dynamodb"
)

// ParseKind maps a configuration value onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "memory":
		return KindMemory, nil
	case "redis":
		return KindRedis, nil
	case "dynamo", "dynamodb":
		return KindDynamo, nil
	default:
		return "", fmt.Errorf("sessionstore: unknown store %q", s)
	}
}
