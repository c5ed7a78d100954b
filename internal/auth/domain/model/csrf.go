package model

import "time"

// CSRFHeader carries the token on state changing requests.
const CSRFHeader = "X-CSRF-Token"

// CSRFToken is the anti-forgery token bound to a session.
type CSRFToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the token is past its expiry at now.
func (t *CSRFToken) Expired(now time.Time) bool {
	return t == nil || !t.ExpiresAt.After(now)
}
