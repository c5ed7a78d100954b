package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/domain/repository"

	goredis "github.com/redis/go-redis/v9"
)

const csrfPrefix = "auth:csrf:"

// CSRFStore saves each session's token as JSON with a TTL matching its expiry.
type CSRFStore struct {
	client goredis.UniversalClient
}

func NewCSRFStore(client goredis.UniversalClient) *CSRFStore {
	return &CSRFStore{client: client}
}

func (s *CSRFStore) Get(ctx context.Context, sessionID string) (*model.CSRFToken, error) {
	raw, err := s.client.Get(ctx, csrfPrefix+sessionID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csrf token: %w", err)
	}
	var token model.CSRFToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("corrupt csrf token: %w", err)
	}
	return &token, nil
}

func (s *CSRFStore) Save(ctx context.Context, sessionID string, token *model.CSRFToken) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return err
	}
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := s.client.Set(ctx, csrfPrefix+sessionID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store csrf token: %w", err)
	}
	return nil
}

func (s *CSRFStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, csrfPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete csrf token: %w", err)
	}
	return nil
}

var _ repository.CSRFStore = (*CSRFStore)(nil)
