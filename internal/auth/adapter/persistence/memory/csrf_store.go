package memory

import (
	"context"
	"sync"
	"time"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/domain/repository"
)

// CSRFStore keeps one token per session in memory. Expired tokens are dropped on
// read and by the periodic sweep started with StartCleanup.
type CSRFStore struct {
	mu     sync.Mutex
	tokens map[string]model.CSRFToken
	now    func() time.Time
}

func NewCSRFStore() *CSRFStore {
	return &CSRFStore{tokens: make(map[string]model.CSRFToken), now: time.Now}
}

// WithClock replaces the time source.
func (s *CSRFStore) WithClock(now func() time.Time) *CSRFStore {
	s.now = now
	return s
}

func (s *CSRFStore) Get(_ context.Context, sessionID string) (*model.CSRFToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[sessionID]
	if !ok {
		return nil, nil
	}
	if t.Expired(s.now()) {
		delete(s.tokens, sessionID)
		return nil, nil
	}
	return &t, nil
}

func (s *CSRFStore) Save(_ context.Context, sessionID string, token *model.CSRFToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[sessionID] = *token
	return nil
}

func (s *CSRFStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, sessionID)
	return nil
}

// Len reports how many tokens are held, expired or not.
func (s *CSRFStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// CleanExpired drops expired tokens and returns how many were removed.
func (s *CSRFStore) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, t := range s.tokens {
		if t.Expired(now) {
			delete(s.tokens, id)
			removed++
		}
	}
	return removed
}

// StartCleanup runs CleanExpired every interval until ctx is done.
func (s *CSRFStore) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanExpired()
			}
		}
	}()
}

var _ repository.CSRFStore = (*CSRFStore)(nil)
