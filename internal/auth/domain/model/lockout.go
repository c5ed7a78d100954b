package model

import (
	"fmt"
	"math"
	"time"
)

// LockoutState tracks failed logins for one normalized email.
type LockoutState struct {
	Email       string    `json:"email"`
	FailedCount int       `json:"failedCount"`
	LockedUntil time.Time `json:"lockedUntil,omitempty"`
}

// IsLocked reports whether a lockout is in force at now.
func (s LockoutState) IsLocked(now time.Time) bool {
	return !s.LockedUntil.IsZero() && s.LockedUntil.After(now)
}

// Remaining is the lockout time left, never negative.
func (s LockoutState) Remaining(now time.Time) time.Duration {
	if !s.IsLocked(now) {
		return 0
	}
	return s.LockedUntil.Sub(now)
}

// LockoutMessage is the user facing text for a locked account. Minutes round up.
func LockoutMessage(remaining time.Duration) string {
	minutes := int(math.Ceil(remaining.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("Account is locked out. Please try again in %d %s.", minutes, unit)
}
