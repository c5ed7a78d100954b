package model

import "time"

// Session is a server-side login session. Tokens reference it by ID so a session can be
// ended or expire independently of the token lifetime.
type Session struct {
	ID                 string    `json:"id" bson:"_id"`
	UserID             string    `json:"userId" bson:"user_id"`
	UserEmail          string    `json:"userEmail" bson:"user_email"`
	UserRole           Role      `json:"userRole" bson:"user_role"`
	CreatedAt          time.Time `json:"createdAt" bson:"created_at"`
	ExpiresAt          time.Time `json:"expiresAt" bson:"expires_at"`
	LastActivity       time.Time `json:"lastActivity" bson:"last_activity"`
	IPAddress          string    `json:"ipAddress,omitempty" bson:"ip_address,omitempty"`
	UserAgent          string    `json:"userAgent,omitempty" bson:"user_agent,omitempty"`
	IsActive           bool      `json:"isActive" bson:"is_active"`
	OriginalRequestURL string    `json:"originalRequestUrl,omitempty" bson:"original_request_url,omitempty"`
}

// SessionPolicy holds the session timeout and login lockout settings.
type SessionPolicy struct {
	Timeout          time.Duration
	LockoutThreshold int
	LockoutDuration  time.Duration
}

// DefaultSessionPolicy: 60 minute sessions, lockout for 30 minutes after 5 failures.
func DefaultSessionPolicy() SessionPolicy {
	return SessionPolicy{
		Timeout:          60 * time.Minute,
		LockoutThreshold: 5,
		LockoutDuration:  30 * time.Minute,
	}
}

// IsValid reports whether the session is active, not past its expiry and not idle
// for longer than timeout.
func (s *Session) IsValid(now time.Time, timeout time.Duration) bool {
	if s == nil || !s.IsActive {
		return false
	}
	if s.ExpiresAt.Before(now) {
		return false
	}
	return now.Sub(s.LastActivity) <= timeout
}

// Remaining is the time left before the session expires or goes idle, whichever is first.
func (s *Session) Remaining(now time.Time, timeout time.Duration) time.Duration {
	if !s.IsValid(now, timeout) {
		return 0
	}
	deadline := s.ExpiresAt
	if idle := s.LastActivity.Add(timeout); idle.Before(deadline) {
		deadline = idle
	}
	if d := deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Touch records activity. Invalid sessions are left untouched.
func (s *Session) Touch(now time.Time, timeout time.Duration) bool {
	if !s.IsValid(now, timeout) {
		return false
	}
	s.LastActivity = now
	return true
}

// Extend pushes the expiry to now+timeout and records activity.
func (s *Session) Extend(now time.Time, timeout time.Duration) bool {
	if !s.IsValid(now, timeout) {
		return false
	}
	s.ExpiresAt = now.Add(timeout)
	s.LastActivity = now
	return true
}
