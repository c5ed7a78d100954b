package security

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// MemoryRateLimitStore keeps counters in process memory.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	entries map[string]*RateLimitEntry
	now     func() time.Time
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		entries: make(map[string]*RateLimitEntry),
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (s *MemoryRateLimitStore) WithClock(now func() time.Time) *MemoryRateLimitStore {
	s.now = now
	return s
}

// get returns the live entry for key; expired entries are removed. Caller holds mu.
func (s *MemoryRateLimitStore) get(key string) *RateLimitEntry {
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	if e.ResetAt.Before(s.now()) {
		delete(s.entries, key)
		return nil
	}
	return e
}

func (s *MemoryRateLimitStore) Increment(_ context.Context, key string, window time.Duration) (RateLimitEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.get(key)
	if e == nil {
		e = &RateLimitEntry{Count: 1, ResetAt: s.now().Add(window)}
		s.entries[key] = e
		return *e, nil
	}
	e.Count++
	return *e, nil
}

func (s *MemoryRateLimitStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// CleanExpired drops finished windows and returns how many were removed.
func (s *MemoryRateLimitStore) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, e := range s.entries {
		if e.ResetAt.Before(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// StartCleanup runs CleanExpired every interval until ctx is done.
func (s *MemoryRateLimitStore) StartCleanup(ctx context.Context, interval time.Duration) {
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

const rateLimitPrefix = "ratelimit:"

// RedisRateLimitStore implements fixed windows with INCR and PEXPIRE, so replicas
// share counters. Keys expire with their window.
type RedisRateLimitStore struct {
	client goredis.UniversalClient
	now    func() time.Time
}

func NewRedisRateLimitStore(client goredis.UniversalClient) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client, now: time.Now}
}

func (s *RedisRateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (RateLimitEntry, error) {
	k := rateLimitPrefix + key
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return RateLimitEntry{}, fmt.Errorf("failed to count request: %w", err)
	}

	ttl := pttl.Val()
	// A fresh key, or one left without expiry, starts a new window.
	if ttl < 0 {
		if err := s.client.PExpire(ctx, k, window).Err(); err != nil {
			return RateLimitEntry{}, fmt.Errorf("failed to set rate limit window: %w", err)
		}
		ttl = window
	}
	return RateLimitEntry{Count: int(incr.Val()), ResetAt: s.now().Add(ttl)}, nil
}

func (s *RedisRateLimitStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, rateLimitPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}

var (
	_ RateLimitStore = (*MemoryRateLimitStore)(nil)
	_ RateLimitStore = (*RedisRateLimitStore)(nil)
)
