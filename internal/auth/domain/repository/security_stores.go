package repository

import (
	"context"
	"time"

	"showcase-platform/internal/auth/domain/model"
)

// LockoutStore persists failed login counters keyed by normalized email.
type LockoutStore interface {
	// Get returns the current state; unknown emails yield a zero state.
	Get(ctx context.Context, email string) (model.LockoutState, error)
	// IncrementFailures atomically adds one failure and returns the new count.
	IncrementFailures(ctx context.Context, email string) (int, error)
	// Lock sets the lockout expiry.
	Lock(ctx context.Context, email string, until time.Time) error
	// Reset clears both the counter and any lockout.
	Reset(ctx context.Context, email string) error
}

// CSRFStore keeps one CSRF token per session.
type CSRFStore interface {
	// Get returns nil, nil when no token is stored.
	Get(ctx context.Context, sessionID string) (*model.CSRFToken, error)
	Save(ctx context.Context, sessionID string, token *model.CSRFToken) error
	Delete(ctx context.Context, sessionID string) error
}

// DelegationRepository persists permission delegations.
type DelegationRepository interface {
	Create(ctx context.Context, d *model.Delegation) error
	GetByID(ctx context.Context, id string) (*model.Delegation, error)
	Update(ctx context.Context, d *model.Delegation) error
	ListByDelegator(ctx context.Context, delegatorID string) ([]*model.Delegation, error)
	ListByDelegatee(ctx context.Context, delegateeID string) ([]*model.Delegation, error)
}
