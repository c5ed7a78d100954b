package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockoutState(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	var clean LockoutState
	assert.False(t, clean.IsLocked(now))
	assert.Zero(t, clean.Remaining(now))

	locked := LockoutState{FailedCount: 5, LockedUntil: now.Add(30 * time.Minute)}
	assert.True(t, locked.IsLocked(now))
	assert.Equal(t, 30*time.Minute, locked.Remaining(now))
	assert.False(t, locked.IsLocked(now.Add(30*time.Minute)), "expiry instant is no longer locked")
	assert.Zero(t, locked.Remaining(now.Add(time.Hour)))
}

func TestLockoutMessage(t *testing.T) {
	assert.Equal(t, "Account is locked out. Please try again in 30 minutes.", LockoutMessage(30*time.Minute))
	assert.Equal(t, "Account is locked out. Please try again in 1 minute.", LockoutMessage(10*time.Second))
	assert.Equal(t, "Account is locked out. Please try again in 2 minutes.", LockoutMessage(61*time.Second))
	assert.Equal(t, "Account is locked out. Please try again in 1 minute.", LockoutMessage(0))
}
