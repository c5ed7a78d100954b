package usecase

import (
	"context"
	"crypto/subtle"
	"time"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/domain/repository"

	"github.com/google/uuid"
)

// CSRFService issues and checks per-session anti-forgery tokens.
type CSRFService struct {
	store    repository.CSRFStore
	ttl      time.Duration
	now      Clock
	newToken func() string
}

func NewCSRFService(store repository.CSRFStore, ttl time.Duration) *CSRFService {
	return &CSRFService{
		store:    store,
		ttl:      ttl,
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

// WithClock replaces the time source.
func (s *CSRFService) WithClock(c Clock) *CSRFService {
	s.now = c
	return s
}

// Generate issues a fresh token for the session, replacing any previous one.
func (s *CSRFService) Generate(ctx context.Context, sessionID string) (*model.CSRFToken, error) {
	token := &model.CSRFToken{
		Token:     s.newToken(),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.store.Save(ctx, sessionID, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Get returns the stored token while it is valid, otherwise a newly generated one.
func (s *CSRFService) Get(ctx context.Context, sessionID string) (*model.CSRFToken, error) {
	token, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if token != nil && !token.Expired(s.now()) {
		return token, nil
	}
	return s.Generate(ctx, sessionID)
}

// Validate reports whether candidate matches the session's unexpired token.
func (s *CSRFService) Validate(ctx context.Context, sessionID, candidate string) (bool, error) {
	if candidate == "" {
		return false, nil
	}
	token, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if token == nil || token.Expired(s.now()) {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(token.Token), []byte(candidate)) == 1, nil
}

// Refresh extends the token's expiry, generating a token when none exists.
func (s *CSRFService) Refresh(ctx context.Context, sessionID string) (*model.CSRFToken, error) {
	token, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return s.Generate(ctx, sessionID)
	}
	token.ExpiresAt = s.now().Add(s.ttl)
	if err := s.store.Save(ctx, sessionID, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Clear removes the session's token.
func (s *CSRFService) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}
