package usecase

import (
	"context"
	"errors"
	"time"

	"showcase-platform/internal/academy/domain/repository"
	authmodel "showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/security"
	apperrors "showcase-platform/internal/shared/errors"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"
)

var (
	ErrCohortNotFound     = apperrors.NewNotFoundError("cohort")
	ErrProfileNotFound    = apperrors.NewNotFoundError("profile")
	ErrSubmissionNotFound = apperrors.NewNotFoundError("submission")
	ErrTemplateNotFound   = apperrors.NewNotFoundError("template")
	ErrFileNotFound       = apperrors.NewNotFoundError("file")

	ErrForbidden         = apperrors.NewAuthorizationError("Insufficient permissions")
	ErrProfileExists     = apperrors.NewConflictError("profile already exists for this user")
	ErrProfileRequired   = apperrors.NewDomainError("a student profile is required first")
	ErrInvalidTransition = apperrors.NewDomainError("submission status does not allow this operation")
	ErrStatusViaUpdate   = apperrors.NewValidationError("status changes through submit, grade or archive")
	ErrNotGraded         = apperrors.NewDomainError("only graded submissions can be featured in a showcase")
)

// Clock returns the current time.
type Clock func() time.Time

// DelegationChecker answers whether a user holds a delegated permission.
type DelegationChecker interface {
	HasDelegatedPermission(ctx context.Context, userID, permission, resourceType, resourceID string) (bool, error)
}

// Delegated permission names understood by the academy.
const (
	PermissionGrade = "grade"
)

// deps is shared by every academy usecase.
type deps struct {
	events eventbus.EventBusInterface
	log    logger.Logger
	now    Clock
}

func newDeps(events eventbus.EventBusInterface, log logger.Logger, component string) deps {
	if log == nil {
		log = logger.NewNop()
	}
	return deps{
		events: events,
		log:    log.WithComponent(component),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (d deps) emit(ctx context.Context, eventType string, actor security.Subject, resourceType, resourceID, details string, meta map[string]interface{}) {
	eventbus.Emit(ctx, d.events, d.log, eventType, "academy", eventbus.ActivityPayload{
		ActorID:      actor.ID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		Metadata:     meta,
	})
}

func isAdmin(s security.Subject) bool { return s.Role == authmodel.RoleAdmin }

func isStaff(s security.Subject) bool { return s.Role.AtLeast(authmodel.RoleInstructor) }

// notFound maps the repository miss to the domain error.
func notFound(err, domain error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain
	}
	return err
}
