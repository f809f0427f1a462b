package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const redisKeyPrefix = "locus:visit:"

// Redis stores JSON-encoded sessions with a key expiry.
type Redis[T any] struct {
	client *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewRedis[T any](client *redis.Client, ttl time.Duration) *Redis[T] {
	if client == nil {
		return nil
	}
	return &Redis[T]{
		client: client,
		ttl:    ttlOrDefault(ttl),
		tracer: otel.Tracer("locus.internal.sessionstore.redis"),
	}
}

func (s *Redis[T]) Load(ctx context.Context, id string) (T, error) {
	var zero T
	if err := checkID(id); err != nil {
		return zero, err
	}
	ctx, span := s.tracer.Start(ctx, "sessionstore.redis.load")
	defer span.End()

	data, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return zero, fmt.Errorf("sessionstore: redis get: %w", err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		span.RecordError(err)
		return zero, fmt.Errorf("sessionstore: decode session: %w", err)
	}
	return v, nil
}

func (s *Redis[T]) Save(ctx context.Context, id string, v T) error {
	if err := checkID(id); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, "sessionstore.redis.save")
	defer span.End()

	data, err := json.Marshal(v)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessionstore: encode session: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+id, data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessionstore: redis set: %w", err)
	}
	return nil
}

func (s *Redis[T]) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	ctx, span := s.tracer.Start(ctx, "sessionstore.redis.delete")
	defer span.End()

	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessionstore: redis del: %w", err)
	}
	return nil
}
