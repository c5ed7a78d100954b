package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	authredis "showcase-platform/internal/auth/adapter/persistence/redis"
	"showcase-platform/internal/auth/domain/model"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *goredis.Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/15"
	}
	opts, err := goredis.ParseURL(url)
	require.NoError(t, err)
	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestLockoutStore(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	store := authredis.NewLockoutStore(client, time.Hour)
	email := "lockout-test@example.com"
	require.NoError(t, store.Reset(ctx, email))
	defer store.Reset(ctx, email)

	for i := 1; i <= 5; i++ {
		n, err := store.IncrementFailures(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	until := time.Now().Add(30 * time.Minute).Truncate(time.Millisecond)
	require.NoError(t, store.Lock(ctx, email, until))

	state, err := store.Get(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, 5, state.FailedCount)
	assert.True(t, state.LockedUntil.Equal(until))
	assert.True(t, state.IsLocked(time.Now()))

	require.NoError(t, store.Reset(ctx, email))
	state, err = store.Get(ctx, email)
	require.NoError(t, err)
	assert.Zero(t, state.FailedCount)
}

func TestCSRFStore(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	store := authredis.NewCSRFStore(client)

	missing, err := store.Get(ctx, "no-such-session")
	require.NoError(t, err)
	assert.Nil(t, missing)

	tok := &model.CSRFToken{Token: "t-1", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, store.Save(ctx, "csrf-session", tok))
	got, err := store.Get(ctx, "csrf-session")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "t-1", got.Token)

	require.NoError(t, store.Delete(ctx, "csrf-session"))
	got, err = store.Get(ctx, "csrf-session")
	require.NoError(t, err)
	assert.Nil(t, got)
}
