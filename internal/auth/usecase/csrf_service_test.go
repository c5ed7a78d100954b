package usecase_test

import (
	"context"
	"testing"
	"time"

	"showcase-platform/internal/auth/adapter/persistence/memory"
	"showcase-platform/internal/auth/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := usecase.NewCSRFService(memory.NewCSRFStore().WithClock(clock), time.Hour).WithClock(clock)

	tok, err := svc.Generate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), tok.ExpiresAt)

	ok, err := svc.Validate(ctx, "s1", tok.Token)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Validate(ctx, "s2", tok.Token)
	require.NoError(t, err)
	assert.False(t, ok, "tokens are bound to their session")

	ok, err = svc.Validate(ctx, "s1", "")
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(2 * time.Hour)
	ok, err = svc.Validate(ctx, "s1", tok.Token)
	require.NoError(t, err)
	assert.False(t, ok, "expired tokens are rejected")

	// An expired token is gone; refreshing issues a new one.
	refreshed, err := svc.Refresh(ctx, "s1")
	require.NoError(t, err)
	assert.NotEqual(t, tok.Token, refreshed.Token)
	assert.Equal(t, now.Add(time.Hour), refreshed.ExpiresAt)

	ok, err = svc.Validate(ctx, "s1", tok.Token)
	require.NoError(t, err)
	assert.False(t, ok)

	// A live token keeps its value and gets a later expiry.
	now = now.Add(30 * time.Minute)
	extended, err := svc.Refresh(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, refreshed.Token, extended.Token)
	assert.Equal(t, now.Add(time.Hour), extended.ExpiresAt)

	ok, err = svc.Validate(ctx, "s1", refreshed.Token)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Clear(ctx, "s1"))
	ok, err = svc.Validate(ctx, "s1", refreshed.Token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCSRFService_GetReplacesExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := usecase.NewCSRFService(memory.NewCSRFStore().WithClock(clock), time.Minute).WithClock(clock)

	first, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	same, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, first.Token, same.Token)

	now = now.Add(2 * time.Minute)
	fresh, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, fresh.Token)
}
