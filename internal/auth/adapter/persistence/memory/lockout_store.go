// Package memory holds process-local security stores used when Redis is not
// configured and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/domain/repository"
)

type lockoutEntry struct {
	state     model.LockoutState
	updatedAt time.Time
}

// LockoutStore keeps failed login counters in memory. Counters untouched for
// longer than counterTTL are dropped on access.
type LockoutStore struct {
	mu         sync.Mutex
	entries    map[string]*lockoutEntry
	counterTTL time.Duration
	now        func() time.Time
}

func NewLockoutStore(counterTTL time.Duration) *LockoutStore {
	return &LockoutStore{
		entries:    make(map[string]*lockoutEntry),
		counterTTL: counterTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source.
func (s *LockoutStore) WithClock(now func() time.Time) *LockoutStore {
	s.now = now
	return s
}

func (s *LockoutStore) entry(email string, create bool) *lockoutEntry {
	e, ok := s.entries[email]
	if ok && s.counterTTL > 0 && s.now().Sub(e.updatedAt) > s.counterTTL && !e.state.IsLocked(s.now()) {
		delete(s.entries, email)
		ok = false
	}
	if !ok && create {
		e = &lockoutEntry{state: model.LockoutState{Email: email}}
		s.entries[email] = e
	}
	return e
}

func (s *LockoutStore) Get(_ context.Context, email string) (model.LockoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.entry(email, false); e != nil {
		return e.state, nil
	}
	return model.LockoutState{Email: email}, nil
}

func (s *LockoutStore) IncrementFailures(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(email, true)
	e.state.FailedCount++
	e.updatedAt = s.now()
	return e.state.FailedCount, nil
}

func (s *LockoutStore) Lock(_ context.Context, email string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(email, true)
	e.state.LockedUntil = until
	e.updatedAt = s.now()
	return nil
}

func (s *LockoutStore) Reset(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
	return nil
}

var _ repository.LockoutStore = (*LockoutStore)(nil)
