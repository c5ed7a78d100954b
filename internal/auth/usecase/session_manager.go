package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/domain/repository"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"

	"github.com/google/uuid"
)

// Clock returns the current time.
type Clock func() time.Time

// ClientInfo describes where a request came from.
type ClientInfo struct {
	IPAddress  string
	UserAgent  string
	RequestURL string
}

// SessionManager owns session lifetime and the failed login lockout.
type SessionManager struct {
	repo     repository.AuthRepository
	lockouts repository.LockoutStore
	policy   model.SessionPolicy
	events   eventbus.EventBusInterface
	log      logger.Logger
	now      Clock
}

// NewSessionManager creates a SessionManager. events may be nil.
func NewSessionManager(
	repo repository.AuthRepository,
	lockouts repository.LockoutStore,
	policy model.SessionPolicy,
	events eventbus.EventBusInterface,
	log logger.Logger,
) *SessionManager {
	if log == nil {
		log = logger.NewNop()
	}
	return &SessionManager{
		repo:     repo,
		lockouts: lockouts,
		policy:   policy,
		events:   events,
		log:      log.WithComponent("session-manager"),
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (m *SessionManager) WithClock(c Clock) *SessionManager {
	m.now = c
	return m
}

// Policy returns the active policy.
func (m *SessionManager) Policy() model.SessionPolicy {
	return m.policy
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newSessionID(now time.Time) string {
	return "session-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CreateSession starts a session for user, clears any failed login history and
// records the login.
func (m *SessionManager) CreateSession(ctx context.Context, user *model.User, client ClientInfo) (*model.Session, error) {
	now := m.now()
	session := &model.Session{
		ID:                 newSessionID(now),
		UserID:             user.ID,
		UserEmail:          user.Email,
		UserRole:           user.PrimaryRole(),
		CreatedAt:          now,
		ExpiresAt:          now.Add(m.policy.Timeout),
		LastActivity:       now,
		IPAddress:          client.IPAddress,
		UserAgent:          client.UserAgent,
		IsActive:           true,
		OriginalRequestURL: client.RequestURL,
	}
	if err := m.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := m.ResetFailedLoginCount(ctx, user.Email); err != nil {
		m.log.WithContext(ctx).Warnf("failed to reset login failures for %s: %v", user.Email, err)
	}

	eventbus.Emit(ctx, m.events, m.log, eventbus.EventTypeUserLoggedIn, "auth", eventbus.ActivityPayload{
		ActorID:      user.ID,
		ActorEmail:   user.Email,
		ResourceType: "session",
		ResourceID:   session.ID,
		IPAddress:    client.IPAddress,
		UserAgent:    client.UserAgent,
		Details:      "Successful login",
		Metadata:     map[string]interface{}{"success": true},
	})
	return session, nil
}

// GetValidSession loads a session and checks it is still valid.
func (m *SessionManager) GetValidSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	session, err := m.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsValid(m.now(), m.policy.Timeout) {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// IsSessionValid reports whether sessionID refers to a live session.
func (m *SessionManager) IsSessionValid(ctx context.Context, sessionID string) bool {
	_, err := m.GetValidSession(ctx, sessionID)
	return err == nil
}

// UpdateLastActivity touches a valid session.
func (m *SessionManager) UpdateLastActivity(ctx context.Context, sessionID string) error {
	session, err := m.GetValidSession(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Touch(m.now(), m.policy.Timeout)
	return m.repo.UpdateSession(ctx, session)
}

// ExtendSession pushes the expiry of a valid session to now plus the timeout.
func (m *SessionManager) ExtendSession(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := m.GetValidSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Extend(m.now(), m.policy.Timeout)
	if err := m.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to extend session: %w", err)
	}
	return session, nil
}

// RemainingSessionTime is the time before the session expires or idles out.
func (m *SessionManager) RemainingSessionTime(ctx context.Context, sessionID string) (time.Duration, error) {
	session, err := m.GetValidSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return session.Remaining(m.now(), m.policy.Timeout), nil
}

// EndSession removes the session and records the logout. Ending an unknown session
// is not an error.
func (m *SessionManager) EndSession(ctx context.Context, sessionID, reason string) error {
	session, err := m.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}
	if err := m.repo.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("failed to end session: %w", err)
	}

	details := "User logged out"
	if reason != "" {
		details = reason
	}
	eventbus.Emit(ctx, m.events, m.log, eventbus.EventTypeUserLoggedOut, "auth", eventbus.ActivityPayload{
		ActorID:      session.UserID,
		ActorEmail:   session.UserEmail,
		ResourceType: "session",
		ResourceID:   session.ID,
		Details:      details,
		Metadata:     map[string]interface{}{"sessionId": session.ID},
	})
	return nil
}

// IsAccountLockedOut reports whether logins for email are currently blocked.
func (m *SessionManager) IsAccountLockedOut(ctx context.Context, email string) (bool, error) {
	state, err := m.lockouts.Get(ctx, normalizeEmail(email))
	if err != nil {
		return false, err
	}
	return state.IsLocked(m.now()), nil
}

// RemainingLockoutTime is how long email stays locked, zero when not locked.
func (m *SessionManager) RemainingLockoutTime(ctx context.Context, email string) (time.Duration, error) {
	state, err := m.lockouts.Get(ctx, normalizeEmail(email))
	if err != nil {
		return 0, err
	}
	return state.Remaining(m.now()), nil
}

// RecordFailedLogin counts a failed attempt and locks the account once the threshold
// is reached. It returns true when the account is locked after this attempt. Attempts
// against a locked account are recorded but neither counted nor extend the lockout.
func (m *SessionManager) RecordFailedLogin(ctx context.Context, email string, client ClientInfo) (bool, error) {
	key := normalizeEmail(email)
	now := m.now()

	state, err := m.lockouts.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if state.IsLocked(now) {
		m.emitLoginFailure(ctx, key, client, "Login attempt on locked account", state.FailedCount)
		return true, nil
	}

	count, err := m.lockouts.IncrementFailures(ctx, key)
	if err != nil {
		return false, err
	}
	m.emitLoginFailure(ctx, key, client, fmt.Sprintf("Failed login attempt %d", count), count)

	if count < m.policy.LockoutThreshold {
		return false, nil
	}

	if err := m.lockouts.Lock(ctx, key, now.Add(m.policy.LockoutDuration)); err != nil {
		return false, err
	}
	m.log.WithContext(ctx).WithFields(map[string]interface{}{"email": key, "attempts": count}).Warn("account locked out")
	eventbus.Emit(ctx, m.events, m.log, eventbus.EventTypeAccountLocked, "auth", eventbus.ActivityPayload{
		ActorEmail:   key,
		ResourceType: "user",
		IPAddress:    client.IPAddress,
		UserAgent:    client.UserAgent,
		Details:      fmt.Sprintf("Account locked out after %d failed attempts", count),
		Metadata:     map[string]interface{}{"success": false, "attempts": count},
	})
	return true, nil
}

func (m *SessionManager) emitLoginFailure(ctx context.Context, email string, client ClientInfo, details string, attempts int) {
	eventbus.Emit(ctx, m.events, m.log, eventbus.EventTypeLoginFailed, "auth", eventbus.ActivityPayload{
		ActorEmail:   email,
		ResourceType: "user",
		IPAddress:    client.IPAddress,
		UserAgent:    client.UserAgent,
		Details:      details,
		Metadata:     map[string]interface{}{"success": false, "attempts": attempts},
	})
}

// ResetFailedLoginCount clears the failure counter and any lockout for email.
func (m *SessionManager) ResetFailedLoginCount(ctx context.Context, email string) error {
	return m.lockouts.Reset(ctx, normalizeEmail(email))
}
