package usecase

import (
	"context"
	"errors"
	"time"

	authmodel "showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/security"
	"showcase-platform/internal/showcase/domain/model"
	"showcase-platform/internal/showcase/domain/repository"
	apperrors "showcase-platform/internal/shared/errors"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"
)

var (
	ErrShowcaseNotFound = apperrors.NewNotFoundError("showcase")
	ErrFileNotFound     = apperrors.NewNotFoundError("file")
	ErrPreviewNotFound  = apperrors.NewNotFoundError("preview")

	ErrForbidden       = apperrors.NewAuthorizationError("Insufficient permissions")
	ErrShowcaseExists  = apperrors.NewConflictError("a showcase already exists for this user or username")
	ErrProfileRequired = apperrors.NewDomainError("a student profile is required first")
	ErrNotPublished    = apperrors.NewDomainError("showcase is not published")
	ErrManagedField    = apperrors.NewDomainError("publication, analytics and preview data are managed by the platform")
	ErrRenamePublished = apperrors.NewDomainError("unpublish the showcase before changing its username")
)

// Clock returns the current time.
type Clock func() time.Time

// Student is what a showcase needs to know about its owner.
type Student struct {
	ProfileID    string
	FullName     string
	Title        string
	Bio          string
	ImageURL     string
	Location     string
	ContactEmail string
	SocialLinks  map[string]string
	Skills       []string
}

// StudentDirectory looks up the student profile of a user.
type StudentDirectory interface {
	Student(ctx context.Context, userID string) (*Student, error)
}

// ProjectSource lists the graded submissions a student picked for the showcase.
type ProjectSource interface {
	ShowcaseProjects(ctx context.Context, userID string) ([]model.Project, error)
}

// TemplateCatalog confirms that a template can be used.
type TemplateCatalog interface {
	TemplateExists(ctx context.Context, id string) error
}

// PreviewScheduler arranges for a preview to be removed after a delay.
type PreviewScheduler interface {
	ScheduleExpiry(ctx context.Context, userID string, timestamp int64, after time.Duration) error
}

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

func (d deps) emit(ctx context.Context, eventType string, actor security.Subject, showcaseID, details string, meta map[string]interface{}) {
	eventbus.Emit(ctx, d.events, d.log, eventType, "showcase", eventbus.ActivityPayload{
		ActorID:      actor.ID,
		ResourceType: "showcase",
		ResourceID:   showcaseID,
		Details:      details,
		Metadata:     meta,
	})
}

func isAdmin(s security.Subject) bool { return s.Role == authmodel.RoleAdmin }

func isStaff(s security.Subject) bool { return s.Role.AtLeast(authmodel.RoleInstructor) }

func owns(s security.Subject, sc *model.Showcase) bool {
	return s.ID != "" && s.ID == sc.UserID
}

// canManage reports whether s may publish, preview or delete sc.
func canManage(s security.Subject, sc *model.Showcase) bool {
	return isAdmin(s) || owns(s, sc)
}

func notFound(err, domain error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain
	}
	return err
}
