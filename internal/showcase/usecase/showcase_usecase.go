package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	authmodel "showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/security"
	"showcase-platform/internal/showcase/domain/model"
	"showcase-platform/internal/showcase/domain/repository"
	apperrors "showcase-platform/internal/shared/errors"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/storage"
	"showcase-platform/internal/shared/utils"

	"github.com/google/uuid"
)

// CreateShowcaseRequest starts a showcase. Only admins may name another user.
type CreateShowcaseRequest struct {
	UserID     string `json:"userId,omitempty"`
	Username   string `json:"username" validate:"required,min=3,max=40"`
	TemplateID string `json:"templateId,omitempty"`
}

// managedFields can only change through publish, unpublish, preview and view tracking.
var managedFields = []string{"publication", "analytics", "previewData"}

// ShowcaseUsecase manages showcase documents.
type ShowcaseUsecase struct {
	deps
	showcases repository.ShowcaseRepository
	analytics repository.AnalyticsRepository
	store     storage.ObjectStore
	students  StudentDirectory
	projects  ProjectSource
	templates TemplateCatalog
	fields    *security.FieldAccessControl
}

func NewShowcaseUsecase(
	showcases repository.ShowcaseRepository,
	analytics repository.AnalyticsRepository,
	store storage.ObjectStore,
	students StudentDirectory,
	projects ProjectSource,
	templates TemplateCatalog,
	fields *security.FieldAccessControl,
	events eventbus.EventBusInterface,
	log logger.Logger,
) *ShowcaseUsecase {
	if fields == nil {
		fields = security.MustFieldAccessControl()
	}
	return &ShowcaseUsecase{
		deps:      newDeps(events, log, "showcase-usecase"),
		showcases: showcases,
		analytics: analytics,
		store:     store,
		students:  students,
		projects:  projects,
		templates: templates,
		fields:    fields,
	}
}

func (uc *ShowcaseUsecase) WithClock(c Clock) *ShowcaseUsecase {
	uc.now = c
	return uc
}

func (uc *ShowcaseUsecase) Create(ctx context.Context, actor security.Subject, req CreateShowcaseRequest) (*model.Showcase, error) {
	owner := actor.ID
	switch {
	case isAdmin(actor) && req.UserID != "":
		owner = req.UserID
	case actor.Role != authmodel.RoleStudent && !isAdmin(actor):
		return nil, ErrForbidden
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if !model.ValidUsername(req.Username) {
		return nil, model.ErrUsername
	}
	if req.TemplateID != "" && uc.templates != nil {
		if err := uc.templates.TemplateExists(ctx, req.TemplateID); err != nil {
			return nil, err
		}
	}
	if uc.students == nil {
		return nil, ErrProfileRequired
	}
	student, err := uc.students.Student(ctx, owner)
	if err != nil {
		return nil, ErrProfileRequired
	}

	now := uc.now()
	sc := &model.Showcase{
		ID:               uuid.NewString(),
		StudentProfileID: student.ProfileID,
		UserID:           owner,
		Username:         req.Username,
		TemplateID:       req.TemplateID,
		Profile:          profileFrom(student),
		Projects:         []model.Project{},
		Visibility:       model.Visibility{AccessType: model.AccessPrivate},
		Publication:      model.Publication{Status: model.PublicationDraft},
		Meta:             model.Meta{Title: student.FullName, Description: student.Title},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if uc.projects != nil {
		projects, err := uc.projects.ShowcaseProjects(ctx, owner)
		if err != nil {
			uc.log.WithContext(ctx).Warnf("failed to load showcase projects of %s: %v", owner, err)
		} else {
			sc.Projects = mergeProjects(nil, projects)
		}
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if err := uc.showcases.Create(ctx, sc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrShowcaseExists
		}
		return nil, err
	}
	uc.emit(ctx, eventbus.EventTypeResourceCreated, actor, sc.ID, "", map[string]interface{}{"username": sc.Username})
	return sc, nil
}

func profileFrom(s *Student) map[string]interface{} {
	p := map[string]interface{}{"name": s.FullName}
	for k, v := range map[string]string{
		"title":        s.Title,
		"bio":          s.Bio,
		"imageUrl":     s.ImageURL,
		"location":     s.Location,
		"contactEmail": s.ContactEmail,
	} {
		if v != "" {
			p[k] = v
		}
	}
	if len(s.SocialLinks) > 0 {
		links := make(map[string]interface{}, len(s.SocialLinks))
		for k, v := range s.SocialLinks {
			links[k] = v
		}
		p["socialLinks"] = links
	}
	if len(s.Skills) > 0 {
		skills := make([]interface{}, len(s.Skills))
		for i, v := range s.Skills {
			skills[i] = v
		}
		p["skills"] = skills
	}
	return p
}

// load returns a showcase the actor may see. Students see other students' showcases
// only once they are public; guests never reach this path.
func (uc *ShowcaseUsecase) load(ctx context.Context, actor security.Subject, id string) (*model.Showcase, error) {
	sc, err := uc.showcases.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrShowcaseNotFound)
	}
	if owns(actor, sc) || isStaff(actor) {
		return sc, nil
	}
	if actor.Role == authmodel.RoleStudent && sc.IsVisible() {
		return sc, nil
	}
	return nil, ErrShowcaseNotFound
}

// Raw returns the full showcase for callers that already checked access.
func (uc *ShowcaseUsecase) Raw(ctx context.Context, actor security.Subject, id string) (*model.Showcase, error) {
	return uc.load(ctx, actor, id)
}

// View renders sc with only the fields actor may read.
func (uc *ShowcaseUsecase) View(actor security.Subject, sc *model.Showcase) (map[string]interface{}, error) {
	res, err := security.ToResourceMap(sc)
	if err != nil {
		return nil, err
	}
	return uc.fields.FilterAccessibleFields(actor, security.ResourceShowcase, res, security.AccessRead), nil
}

func (uc *ShowcaseUsecase) Get(ctx context.Context, actor security.Subject, id string) (map[string]interface{}, error) {
	sc, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return uc.View(actor, sc)
}

// GetMine returns the actor's own showcase.
func (uc *ShowcaseUsecase) GetMine(ctx context.Context, actor security.Subject) (map[string]interface{}, error) {
	sc, err := uc.showcases.GetByUserID(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, ErrShowcaseNotFound)
	}
	return uc.View(actor, sc)
}

// GetPublished returns a showcase anonymous visitors may open.
func (uc *ShowcaseUsecase) GetPublished(ctx context.Context, username string) (*model.Showcase, error) {
	sc, err := uc.showcases.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, ErrShowcaseNotFound)
	}
	if !sc.IsVisible() {
		return nil, ErrShowcaseNotFound
	}
	return sc, nil
}

// List returns every showcase, or only published ones. Staff only.
func (uc *ShowcaseUsecase) List(ctx context.Context, actor security.Subject, publishedOnly bool) ([]map[string]interface{}, error) {
	if !isStaff(actor) {
		return nil, ErrForbidden
	}
	list, err := uc.showcases.List(ctx, publishedOnly)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, sc := range list {
		v, err := uc.View(actor, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Update applies a partial change keyed by JSON field names. Every field is checked
// against the showcase field rules before anything is written.
func (uc *ShowcaseUsecase) Update(ctx context.Context, actor security.Subject, id string, changes map[string]interface{}) (map[string]interface{}, error) {
	sc, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	res, err := security.ToResourceMap(sc)
	if err != nil {
		return nil, err
	}
	if err := uc.fields.ValidateUpdate(actor, security.ResourceShowcase, res, changes); err != nil {
		return nil, err
	}
	for _, f := range managedFields {
		if _, ok := changes[f]; ok {
			return nil, ErrManagedField
		}
	}

	for k, v := range changes {
		res[k] = v
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	var updated model.Showcase
	if err := json.Unmarshal(raw, &updated); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid showcase: %v", err))
	}
	if updated.Username != sc.Username && sc.IsPublished() {
		return nil, ErrRenamePublished
	}
	if updated.TemplateID != sc.TemplateID && updated.TemplateID != "" && uc.templates != nil {
		if err := uc.templates.TemplateExists(ctx, updated.TemplateID); err != nil {
			return nil, err
		}
	}

	updated.ID = sc.ID
	updated.UserID = sc.UserID
	updated.StudentProfileID = sc.StudentProfileID
	updated.Analytics = sc.Analytics
	updated.Publication = sc.Publication
	updated.PreviewData = sc.PreviewData
	updated.CreatedAt = sc.CreatedAt
	updated.UpdatedAt = uc.now()
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := uc.showcases.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrShowcaseExists
		}
		return nil, notFound(err, ErrShowcaseNotFound)
	}

	fields := make([]string, 0, len(changes))
	for k := range changes {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	uc.emit(ctx, eventbus.EventTypeResourceUpdated, actor, sc.ID, "", map[string]interface{}{"fields": fields})
	return uc.View(actor, &updated)
}

// RefreshProjects resyncs projects with the submissions the student selected. Manual
// projects stay; display choices of known submissions are kept.
func (uc *ShowcaseUsecase) RefreshProjects(ctx context.Context, actor security.Subject, id string) (*model.Showcase, error) {
	sc, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, sc) {
		return nil, ErrForbidden
	}
	if uc.projects == nil {
		return sc, nil
	}
	projects, err := uc.projects.ShowcaseProjects(ctx, sc.UserID)
	if err != nil {
		return nil, err
	}
	sc.Projects = mergeProjects(sc.Projects, projects)
	sc.UpdatedAt = uc.now()
	if err := uc.showcases.Update(ctx, sc); err != nil {
		return nil, notFound(err, ErrShowcaseNotFound)
	}
	uc.emit(ctx, eventbus.EventTypeResourceUpdated, actor, sc.ID, "Projects refreshed", map[string]interface{}{"projects": len(sc.Projects)})
	return sc, nil
}

// mergeProjects keeps manual projects and the display settings of known submissions,
// drops submissions no longer selected and appends new ones in source order.
func mergeProjects(current, selected []model.Project) []model.Project {
	known := make(map[string]model.Project, len(current))
	out := make([]model.Project, 0, len(current)+len(selected))
	next := 0
	for _, p := range current {
		if p.SubmissionID == "" {
			out = append(out, p)
		} else {
			known[p.SubmissionID] = p
		}
		if p.DisplayOrder >= next {
			next = p.DisplayOrder + 1
		}
	}
	for _, p := range selected {
		if prev, ok := known[p.SubmissionID]; ok {
			p.ID = prev.ID
			p.IsIncluded = prev.IsIncluded
			p.DisplayOrder = prev.DisplayOrder
		} else {
			if p.ID == "" {
				p.ID = p.SubmissionID
			}
			p.IsIncluded = true
			p.DisplayOrder = next
			next++
		}
		out = append(out, p)
	}
	return out
}

// Delete removes the showcase together with its published files, previews and analytics.
func (uc *ShowcaseUsecase) Delete(ctx context.Context, actor security.Subject, id string) error {
	sc, err := uc.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if !canManage(actor, sc) {
		return ErrForbidden
	}
	if err := uc.showcases.Delete(ctx, id); err != nil {
		return notFound(err, ErrShowcaseNotFound)
	}

	log := uc.log.WithContext(ctx)
	if _, err := uc.store.DeletePrefix(ctx, storage.BucketShowcase, model.PublicPrefix(sc.Username)); err != nil {
		log.Warnf("failed to remove published files of %s: %v", sc.Username, err)
	}
	if _, err := uc.store.DeletePrefix(ctx, storage.BucketPreviews, "previews/"+sc.UserID+"/"); err != nil {
		log.Warnf("failed to remove previews of %s: %v", sc.UserID, err)
	}
	if uc.analytics != nil {
		if err := uc.analytics.DeleteShowcase(ctx, id); err != nil {
			log.Warnf("failed to remove analytics of %s: %v", id, err)
		}
	}
	uc.emit(ctx, eventbus.EventTypeResourceDeleted, actor, id, "", nil)
	return nil
}
