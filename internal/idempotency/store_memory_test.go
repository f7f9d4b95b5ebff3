package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewInMemoryStore()
	store.clock = func() time.Time { return now }

	t.Run("absent key", func(t *testing.T) {
		rec, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("reserve twice conflicts", func(t *testing.T) {
		require.NoError(t, store.Reserve(ctx, "k1", "h1", time.Minute))
		assert.ErrorIs(t, store.Reserve(ctx, "k1", "h1", time.Minute), sentinel.ErrConflict)

		rec, err := store.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, rec.Status)
		assert.Equal(t, "h1", rec.RequestHash)
	})

	t.Run("complete stores a copy", func(t *testing.T) {
		body := []byte(`{"ok":true}`)
		require.NoError(t, store.Complete(ctx, "k1", Record{RequestHash: "h1", StatusCode: 200, Body: body}, time.Minute))
		body[0] = 'X'

		rec, err := store.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, rec.Status)
		assert.Equal(t, `{"ok":true}`, string(rec.Body))
	})

	t.Run("release frees the key", func(t *testing.T) {
		require.NoError(t, store.Release(ctx, "k1"))
		require.NoError(t, store.Reserve(ctx, "k1", "h2", time.Minute))
	})

	t.Run("expired entries are gone", func(t *testing.T) {
		require.NoError(t, store.Reserve(ctx, "k2", "h", time.Minute))
		now = now.Add(time.Minute)
		rec, err := store.Get(ctx, "k2")
		require.NoError(t, err)
		assert.Nil(t, rec)
		require.NoError(t, store.Reserve(ctx, "k2", "h", time.Minute))
	})
}
