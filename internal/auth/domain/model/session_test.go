package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newSession(now time.Time) *Session {
	return &Session{
		ID:           "session-1",
		UserID:       "user-1",
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
		LastActivity: now,
		IsActive:     true,
	}
}

func TestSession_IsValid(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	timeout := time.Hour

	tests := []struct {
		name   string
		mutate func(s *Session)
		at     time.Time
		want   bool
	}{
		{"fresh", func(s *Session) {}, now, true},
		{"exactly at expiry", func(s *Session) {}, now.Add(time.Hour), true},
		{"past expiry", func(s *Session) {}, now.Add(time.Hour + time.Second), false},
		{"idle too long", func(s *Session) { s.ExpiresAt = now.Add(3 * time.Hour) }, now.Add(61 * time.Minute), false},
		{"inactive", func(s *Session) { s.IsActive = false }, now, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newSession(now)
			tc.mutate(s)
			assert.Equal(t, tc.want, s.IsValid(tc.at, timeout))
		})
	}

	var nilSession *Session
	assert.False(t, nilSession.IsValid(now, timeout))
}

func TestSession_TouchAndExtend(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newSession(now)

	later := now.Add(30 * time.Minute)
	assert.True(t, s.Touch(later, time.Hour))
	assert.Equal(t, later, s.LastActivity)
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt, "touch does not move expiry")

	assert.True(t, s.Extend(later, time.Hour))
	assert.Equal(t, later.Add(time.Hour), s.ExpiresAt)

	expired := newSession(now)
	tooLate := now.Add(2 * time.Hour)
	assert.False(t, expired.Touch(tooLate, time.Hour))
	assert.False(t, expired.Extend(tooLate, time.Hour))
	assert.Equal(t, now, expired.LastActivity)
}

func TestSession_Remaining(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newSession(now)
	s.ExpiresAt = now.Add(2 * time.Hour)

	assert.Equal(t, 50*time.Minute, s.Remaining(now.Add(10*time.Minute), time.Hour), "idle deadline comes first")

	s.LastActivity = now.Add(90 * time.Minute)
	assert.Equal(t, 20*time.Minute, s.Remaining(now.Add(100*time.Minute), time.Hour), "absolute expiry comes first")

	assert.Zero(t, s.Remaining(now.Add(3*time.Hour), time.Hour))
}

func TestDefaultSessionPolicy(t *testing.T) {
	p := DefaultSessionPolicy()
	assert.Equal(t, 60*time.Minute, p.Timeout)
	assert.Equal(t, 5, p.LockoutThreshold)
	assert.Equal(t, 30*time.Minute, p.LockoutDuration)
}
