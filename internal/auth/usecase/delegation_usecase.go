package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/domain/repository"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/utils"

	"github.com/google/uuid"
)

var (
	ErrDelegationNotFound  = errors.New("delegation not found")
	ErrDelegationForbidden = errors.New("only the delegator or an admin may revoke a delegation")
	ErrDelegationRevoked   = errors.New("delegation is already revoked")
)

// CreateDelegationRequest grants the caller's permissions to another user.
type CreateDelegationRequest struct {
	DelegateeID  string    `json:"delegateeId" validate:"required"`
	Permissions  []string  `json:"permissions" validate:"required,min=1,dive,required"`
	ResourceType string    `json:"resourceType,omitempty"`
	ResourceIDs  []string  `json:"resourceIds,omitempty"`
	Reason       string    `json:"reason,omitempty" validate:"max=500"`
	ExpiresAt    time.Time `json:"expiresAt" validate:"required"`
}

// DelegationUsecase manages temporary permission delegations between users.
type DelegationUsecase struct {
	repo   repository.DelegationRepository
	users  repository.AuthRepository
	events eventbus.EventBusInterface
	log    logger.Logger
	now    Clock
}

func NewDelegationUsecase(
	repo repository.DelegationRepository,
	users repository.AuthRepository,
	events eventbus.EventBusInterface,
	log logger.Logger,
) *DelegationUsecase {
	if log == nil {
		log = logger.NewNop()
	}
	return &DelegationUsecase{
		repo:   repo,
		users:  users,
		events: events,
		log:    log.WithComponent("delegation-usecase"),
		now:    time.Now,
	}
}

// WithClock replaces the time source.
func (uc *DelegationUsecase) WithClock(c Clock) *DelegationUsecase {
	uc.now = c
	return uc
}

// Create records a delegation from delegatorID. The delegatee must exist.
func (uc *DelegationUsecase) Create(ctx context.Context, delegatorID string, req CreateDelegationRequest) (*model.Delegation, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	now := uc.now()
	d := &model.Delegation{
		ID:           uuid.New().String(),
		DelegatorID:  delegatorID,
		DelegateeID:  req.DelegateeID,
		Permissions:  req.Permissions,
		ResourceType: req.ResourceType,
		ResourceIDs:  req.ResourceIDs,
		Reason:       req.Reason,
		CreatedAt:    now,
		ExpiresAt:    req.ExpiresAt,
	}
	if err := d.Validate(now); err != nil {
		return nil, err
	}
	if _, err := uc.users.GetUserByID(ctx, req.DelegateeID); err != nil {
		return nil, fmt.Errorf("delegatee: %w", err)
	}
	if err := uc.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	eventbus.Emit(ctx, uc.events, uc.log, eventbus.EventTypeDelegationCreated, "auth", eventbus.ActivityPayload{
		ActorID:      delegatorID,
		ResourceType: "delegation",
		ResourceID:   d.ID,
		Details:      "Permissions delegated",
		Metadata: map[string]interface{}{
			"delegateeId": d.DelegateeID,
			"permissions": d.Permissions,
			"expiresAt":   d.ExpiresAt,
		},
	})
	return d, nil
}

// Revoke ends a delegation early.
func (uc *DelegationUsecase) Revoke(ctx context.Context, actorID string, actorRole model.Role, id string) error {
	d, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d.DelegatorID != actorID && actorRole != model.RoleAdmin {
		return ErrDelegationForbidden
	}
	if d.RevokedAt != nil {
		return ErrDelegationRevoked
	}
	now := uc.now()
	d.RevokedAt = &now
	d.RevokedBy = actorID
	if err := uc.repo.Update(ctx, d); err != nil {
		return err
	}

	eventbus.Emit(ctx, uc.events, uc.log, eventbus.EventTypeDelegationRevoked, "auth", eventbus.ActivityPayload{
		ActorID:      actorID,
		ResourceType: "delegation",
		ResourceID:   d.ID,
		Details:      "Delegation revoked",
		Metadata:     map[string]interface{}{"delegateeId": d.DelegateeID},
	})
	return nil
}

// ListGranted lists delegations created by delegatorID.
func (uc *DelegationUsecase) ListGranted(ctx context.Context, delegatorID string) ([]*model.Delegation, error) {
	return uc.repo.ListByDelegator(ctx, delegatorID)
}

// ListReceived lists delegations held by delegateeID that are still active.
func (uc *DelegationUsecase) ListReceived(ctx context.Context, delegateeID string) ([]*model.Delegation, error) {
	all, err := uc.repo.ListByDelegatee(ctx, delegateeID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	active := make([]*model.Delegation, 0, len(all))
	for _, d := range all {
		if d.IsActive(now) {
			active = append(active, d)
		}
	}
	return active, nil
}

// ActivePermissions lists every permission userID currently holds through
// delegations.
func (uc *DelegationUsecase) ActivePermissions(ctx context.Context, userID string) ([]string, error) {
	all, err := uc.repo.ListByDelegatee(ctx, userID)
	if err != nil {
		return nil, err
	}
	return model.ActivePermissions(all, uc.now()), nil
}

// HasDelegatedPermission reports whether userID currently holds permission on the
// resource through any active delegation.
func (uc *DelegationUsecase) HasDelegatedPermission(ctx context.Context, userID, permission, resourceType, resourceID string) (bool, error) {
	active, err := uc.ListReceived(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, d := range active {
		if d.Covers(permission, resourceType, resourceID) {
			return true, nil
		}
	}
	return false, nil
}
