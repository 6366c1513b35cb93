package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emryildiz/barberbot/internal/models"
)

func newMiniredisGuard(t *testing.T) (*miniredis.Miniredis, *RedisMessageGuard) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	return s, NewRedisMessageGuard(client)
}

func TestRedisMessageGuard_RateLimit(t *testing.T) {
	s, guard := newMiniredisGuard(t)
	ctx := context.Background()
	phone := "+905551112233"

	for i := 0; i < models.RateLimitMessages; i++ {
		allowed, err := guard.AllowMessage(ctx, phone)
		require.NoError(t, err)
		assert.True(t, allowed, "message %d should pass", i+1)
	}

	allowed, err := guard.AllowMessage(ctx, phone)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Another phone is unaffected.
	allowed, err = guard.AllowMessage(ctx, "+905559998877")
	require.NoError(t, err)
	assert.True(t, allowed)

	s.FastForward(models.RateLimitWindowSeconds*time.Second + time.Millisecond)
	allowed, err = guard.AllowMessage(ctx, phone)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisMessageGuard_Dedup(t *testing.T) {
	s, guard := newMiniredisGuard(t)
	ctx := context.Background()

	seen, err := guard.SeenMessage(ctx, "SM123")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = guard.SeenMessage(ctx, "SM123")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = guard.SeenMessage(ctx, "SM456")
	require.NoError(t, err)
	assert.False(t, seen)

	s.FastForward(models.MessageDedupTTLSeconds*time.Second + time.Millisecond)
	seen, err = guard.SeenMessage(ctx, "SM123")
	require.NoError(t, err)
	assert.False(t, seen, "expired id counts as new")
}

func TestRedisMessageGuard_NilClient(t *testing.T) {
	guard := NewRedisMessageGuard(nil)
	ctx := context.Background()

	_, err := guard.AllowMessage(ctx, "+905551112233")
	assert.Error(t, err)
	_, err = guard.SeenMessage(ctx, "SM123")
	assert.Error(t, err)
}

func TestMemoryMessageGuard(t *testing.T) {
	guard := NewMemoryMessageGuard()
	ctx := context.Background()
	phone := "+905551112233"

	for i := 0; i < models.RateLimitMessages; i++ {
		allowed, err := guard.AllowMessage(ctx, phone)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := guard.AllowMessage(ctx, phone)
	require.NoError(t, err)
	assert.False(t, allowed)

	seen, err := guard.SeenMessage(ctx, "SM123")
	require.NoError(t, err)
	assert.False(t, seen)
	seen, err = guard.SeenMessage(ctx, "SM123")
	require.NoError(t, err)
	assert.True(t, seen)
}

type failingGuard struct{}

func (failingGuard) AllowMessage(ctx context.Context, phone string) (bool, error) {
	return false, errors.New("connection refused")
}

func (failingGuard) SeenMessage(ctx context.Context, messageID string) (bool, error) {
	return false, errors.New("connection refused")
}

func TestFailoverMessageGuard(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("healthy primary is used", func(t *testing.T) {
		_, primary := newMiniredisGuard(t)
		fallback := NewMemoryMessageGuard()
		guard := NewFailoverMessageGuard(primary, fallback, &logger)

		allowed, err := guard.AllowMessage(ctx, "+905551112233")
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("falls back when primary fails", func(t *testing.T) {
		fallback := NewMemoryMessageGuard()
		guard := NewFailoverMessageGuard(failingGuard{}, fallback, &logger)

		allowed, err := guard.AllowMessage(ctx, "+905551112233")
		require.NoError(t, err)
		assert.True(t, allowed)

		seen, err := guard.SeenMessage(ctx, "SM123")
		require.NoError(t, err)
		assert.False(t, seen)
		seen, err = guard.SeenMessage(ctx, "SM123")
		require.NoError(t, err)
		assert.True(t, seen)
	})

	t.Run("primary not retried while marked down", func(t *testing.T) {
		fallback := NewMemoryMessageGuard()
		guard := NewFailoverMessageGuard(failingGuard{}, fallback, &logger)

		_, err := guard.AllowMessage(ctx, "+905551112233")
		require.NoError(t, err)
		assert.True(t, guard.isDown.Load())

		// Subsequent calls keep answering from the fallback.
		allowed, err := guard.AllowMessage(ctx, "+905551112233")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, guard.isDown.Load())
	})
}
