// Package redis stores lockout counters and CSRF tokens in Redis so they are shared
// between API replicas.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/domain/repository"

	goredis "github.com/redis/go-redis/v9"
)

const (
	lockoutPrefix = "auth:lockout:"
	fieldFailures = "failures"
	fieldLocked   = "locked_until"
)

// LockoutStore keeps one hash per email with the failure count and lockout expiry.
// The hash expires counterTTL after the last write.
type LockoutStore struct {
	client     goredis.UniversalClient
	counterTTL time.Duration
}

func NewLockoutStore(client goredis.UniversalClient, counterTTL time.Duration) *LockoutStore {
	return &LockoutStore{client: client, counterTTL: counterTTL}
}

func lockoutKey(email string) string {
	return lockoutPrefix + email
}

func (s *LockoutStore) Get(ctx context.Context, email string) (model.LockoutState, error) {
	state := model.LockoutState{Email: email}
	vals, err := s.client.HGetAll(ctx, lockoutKey(email)).Result()
	if err != nil {
		return state, fmt.Errorf("failed to read lockout state: %w", err)
	}
	if v, ok := vals[fieldFailures]; ok {
		state.FailedCount, _ = strconv.Atoi(v)
	}
	if v, ok := vals[fieldLocked]; ok {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 {
			state.LockedUntil = time.UnixMilli(ms)
		}
	}
	return state, nil
}

func (s *LockoutStore) IncrementFailures(ctx context.Context, email string) (int, error) {
	key := lockoutKey(email)
	pipe := s.client.TxPipeline()
	incr := pipe.HIncrBy(ctx, key, fieldFailures, 1)
	pipe.Expire(ctx, key, s.counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to count login failure: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *LockoutStore) Lock(ctx context.Context, email string, until time.Time) error {
	key := lockoutKey(email)
	ttl := s.counterTTL
	if d := time.Until(until); d > ttl {
		ttl = d
	}
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fieldLocked, until.UnixMilli())
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to lock account: %w", err)
	}
	return nil
}

func (s *LockoutStore) Reset(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, lockoutKey(email)).Err(); err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("failed to reset lockout: %w", err)
	}
	return nil
}

var _ repository.LockoutStore = (*LockoutStore)(nil)
