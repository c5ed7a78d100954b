package memory_test

import (
	"context"
	"testing"
	"time"

	"showcase-platform/internal/auth/adapter/persistence/memory"
	"showcase-platform/internal/auth/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockoutStore_CountLockReset(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := memory.NewLockoutStore(24 * time.Hour).WithClock(func() time.Time { return now })

	for i := 1; i <= 3; i++ {
		n, err := store.IncrementFailures(ctx, "a@example.com")
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	require.NoError(t, store.Lock(ctx, "a@example.com", now.Add(30*time.Minute)))
	state, err := store.Get(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, 3, state.FailedCount)
	assert.True(t, state.IsLocked(now))

	require.NoError(t, store.Reset(ctx, "a@example.com"))
	state, err = store.Get(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Zero(t, state.FailedCount)
	assert.False(t, state.IsLocked(now))
}

func TestLockoutStore_StaleCountersExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := memory.NewLockoutStore(time.Hour).WithClock(func() time.Time { return now })

	_, err := store.IncrementFailures(ctx, "b@example.com")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	n, err := store.IncrementFailures(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCSRFStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCSRFStore()

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	tok := &model.CSRFToken{Token: "abc", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save(ctx, "s1", tok))

	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Token)

	require.NoError(t, store.Delete(ctx, "s1"))
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCSRFStore_DropsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := memory.NewCSRFStore().WithClock(func() time.Time { return now })

	require.NoError(t, store.Save(ctx, "short", &model.CSRFToken{Token: "a", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, store.Save(ctx, "long", &model.CSRFToken{Token: "b", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, "idle", &model.CSRFToken{Token: "c", ExpiresAt: now.Add(time.Minute)}))

	now = now.Add(2 * time.Minute)

	got, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 2, store.Len(), "expired token is evicted on read")

	assert.Equal(t, 1, store.CleanExpired())
	assert.Equal(t, 1, store.Len())

	got, err = store.Get(ctx, "long")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Token)
}

func TestCSRFStore_StartCleanup(t *testing.T) {
	store := memory.NewCSRFStore()
	require.NoError(t, store.Save(context.Background(), "old", &model.CSRFToken{Token: "a", ExpiresAt: time.Now().Add(-time.Second)}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartCleanup(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 10*time.Millisecond)
}
