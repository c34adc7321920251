package idempotency

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = time.Minute

// newTestStore runs against TEST_REDIS_ADDR when set and an in-process
// miniredis otherwise. The returned server is nil for an external Redis.
func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	var mr *miniredis.Miniredis
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		mr = miniredis.RunT(t)
		addr = mr.Addr()
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return NewRedisStore(client, testTTL), mr
}

func requireMiniredis(t *testing.T, mr *miniredis.Miniredis) {
	t.Helper()
	if mr == nil {
		t.Skip("needs the in-process redis")
	}
}

func TestRedisStoreLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	key := uuid.NewString()

	res, err := s.Reserve(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, res)

	_, err = s.Reserve(ctx, key)
	assert.ErrorIs(t, err, ErrInProgress)

	require.NoError(t, s.Complete(ctx, key, Result{PurchaseID: 42}))

	res, err = s.Reserve(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, int64(42), res.PurchaseID)
}

func TestRedisStoreRelease(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	key := uuid.NewString()

	_, err := s.Reserve(ctx, key)
	require.NoError(t, err)
	require.NoError(t, s.Release(ctx, key))

	res, err := s.Reserve(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestRedisStoreKeysExpire(t *testing.T) {
	s, mr := newTestStore(t)
	requireMiniredis(t, mr)
	ctx := context.Background()

	_, err := s.Reserve(ctx, "stale")
	require.NoError(t, err)
	assert.Equal(t, testTTL, mr.TTL(s.key("stale")))

	require.NoError(t, s.Complete(ctx, "done", Result{PurchaseID: 7}))
	assert.Equal(t, testTTL, mr.TTL(s.key("done")))

	mr.FastForward(testTTL + time.Second)

	res, err := s.Reserve(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = s.Reserve(ctx, "done")
	require.NoError(t, err)
	assert.Nil(t, res, "an expired result is not replayed")
}

func TestRedisStoreClaimsUnknownState(t *testing.T) {
	s, mr := newTestStore(t)
	requireMiniredis(t, mr)
	ctx := context.Background()

	require.NoError(t, mr.Set(s.key("odd"), `{"status":"failed"}`))

	res, err := s.Reserve(ctx, "odd")
	require.NoError(t, err)
	assert.Nil(t, res)

	raw, err := mr.Get(s.key("odd"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"processing"}`, raw)
}

func TestRedisStoreCorruptState(t *testing.T) {
	s, mr := newTestStore(t)
	requireMiniredis(t, mr)

	require.NoError(t, mr.Set(s.key("broken"), "not json"))

	_, err := s.Reserve(context.Background(), "broken")
	assert.ErrorContains(t, err, "redis unmarshal")
}

func TestRedisStoreUnavailable(t *testing.T) {
	s, mr := newTestStore(t)
	requireMiniredis(t, mr)
	mr.Close()

	_, err := s.Reserve(context.Background(), "any")
	assert.ErrorContains(t, err, "redis set")
}

func TestRedisStoreReserveHonoursCancelledContext(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Reserve(ctx, uuid.NewString())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRedisStoreDefaultTTL(t *testing.T) {
	s := NewRedisStore(nil, 0)
	assert.Equal(t, DefaultTTL, s.ttl)
	assert.Equal(t, "idempotency:purchase:abc", s.key("abc"))
}
