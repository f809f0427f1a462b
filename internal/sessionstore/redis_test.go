package sessionstore

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*Redis[visit], *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis[visit](client, ttl), mr
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)

	require.NoError(t, store.Save(ctx, "abc", visit{State: "COLLECTING_EMAIL", Lines: []string{"hi", "Jane"}}))
	assert.True(t, mr.Exists("locus:visit:abc"))
	assert.Equal(t, time.Hour, mr.TTL("locus:visit:abc"))

	got, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, visit{State: "COLLECTING_EMAIL", Lines: []string{"hi", "Jane"}}, got)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	require.NoError(t, store.Save(ctx, "abc", visit{}))
	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisCorruptPayload(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	require.NoError(t, mr.Set("locus:visit:bad", "{not json"))

	_, err := store.Load(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisUnavailable(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	mr.Close()

	err := store.Save(context.Background(), "abc", visit{})
	assert.Error(t, err)
}

func TestNewRedisNilClient(t *testing.T) {
	assert.Nil(t, NewRedis[visit](nil, time.Minute))
}
