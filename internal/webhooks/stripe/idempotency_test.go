package stripewebhook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idempotencyStoreStub struct {
	keys map[string]string
}

func newIdempotencyStoreStub() *idempotencyStoreStub {
	return &idempotencyStoreStub{keys: map[string]string{}}
}

func (s *idempotencyStoreStub) Get(ctx context.Context, key string) (string, error) {
	return s.keys[key], nil
}

func (s *idempotencyStoreStub) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := s.keys[key]; exists {
		return false, nil
	}
	s.keys[key] = "1"
	return true, nil
}

func (s *idempotencyStoreStub) IdempotencyKey(scope, id string) string {
	return "rp:idempotency:" + scope + ":" + id
}

func (s *idempotencyStoreStub) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.keys, key)
	}
	return nil
}

func TestIdempotencyGuardCheckAndMark(t *testing.T) {
	store := newIdempotencyStoreStub()
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe-webhook")
	require.NoError(t, err)
	ctx := context.Background()

	already, err := guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, already)

	already, err = guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, already, "second delivery of the same event must be flagged")

	already, err = guard.CheckAndMark(ctx, "evt_2")
	require.NoError(t, err)
	assert.False(t, already)
}

func TestIdempotencyGuardDeleteAllowsRetry(t *testing.T) {
	store := newIdempotencyStoreStub()
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe-webhook")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	require.NoError(t, guard.Delete(ctx, "evt_1"))

	already, err := guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, already, "deleted marker must allow redelivery")
}

func TestNewIdempotencyGuardValidation(t *testing.T) {
	_, err := NewIdempotencyGuard(nil, time.Hour, "scope")
	require.Error(t, err)

	_, err = NewIdempotencyGuard(newIdempotencyStoreStub(), time.Hour, "")
	require.Error(t, err)

	guard, err := NewIdempotencyGuard(newIdempotencyStoreStub(), time.Hour, "scope")
	require.NoError(t, err)

	_, err = guard.CheckAndMark(context.Background(), "")
	require.Error(t, err)
}
