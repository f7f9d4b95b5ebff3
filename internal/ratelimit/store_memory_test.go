package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBucketStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewInMemoryBucketStore()
	store.now = func() time.Time { return now }

	t.Run("allows up to the limit", func(t *testing.T) {
		for i := range 3 {
			res, err := store.Allow(ctx, "k", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.Equal(t, 2-i, res.Remaining)
		}
	})

	t.Run("denies once the window is full", func(t *testing.T) {
		res, err := store.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 60, res.RetryAfter)
		assert.Equal(t, now.Add(time.Minute), res.ResetAt)
	})

	t.Run("keys are independent", func(t *testing.T) {
		res, err := store.Allow(ctx, "other", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("window slides", func(t *testing.T) {
		now = now.Add(time.Minute + time.Second)
		res, err := store.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2, res.Remaining)
	})
}

func TestUserKeyEscapesDelimiters(t *testing.T) {
	assert.Equal(t, "user:write:tenant_alice", userKey(ClassWrite, "tenant:alice"))
	assert.NotEqual(t, userKey(ClassWrite, "a:b"), "user:write:a:b")
}
