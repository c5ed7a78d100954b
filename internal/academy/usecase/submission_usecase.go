package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"showcase-platform/internal/academy/domain/model"
	"showcase-platform/internal/academy/domain/repository"
	authmodel "showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/security"
	apperrors "showcase-platform/internal/shared/errors"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/utils"

	"github.com/google/uuid"
)

// CreateSubmissionRequest starts a draft. StudentProfileID is honored for admins only.
type CreateSubmissionRequest struct {
	StudentProfileID string       `json:"studentProfileId,omitempty"`
	Title            string       `json:"title" validate:"required,max=200"`
	Description      string       `json:"description,omitempty" validate:"max=10000"`
	Week             int          `json:"week,omitempty" validate:"min=0,max=52"`
	DemoLink         string       `json:"demoLink,omitempty" validate:"omitempty,url"`
	RepoLink         string       `json:"repoLink,omitempty" validate:"omitempty,url"`
	BrainliftLink    string       `json:"brainliftLink,omitempty" validate:"omitempty,url"`
	SocialPost       string       `json:"socialPost,omitempty" validate:"omitempty,url"`
	DeployedURL      string       `json:"deployedUrl,omitempty" validate:"omitempty,url"`
	Technologies     []string     `json:"technologies,omitempty" validate:"dive,required"`
	FeaturedImageURL string       `json:"featuredImageUrl,omitempty" validate:"omitempty,url"`
	AdditionalLinks  []model.Link `json:"additionalLinks,omitempty"`
	Notes            string       `json:"notes,omitempty" validate:"max=10000"`
}

// GradeRequest records an instructor's assessment.
type GradeRequest struct {
	Grade   string `json:"grade" validate:"required,max=50"`
	Passing bool   `json:"passing"`
	Report  string `json:"report,omitempty" validate:"max=20000"`
}

// BulkGradeItem grades one submission of a batch.
type BulkGradeItem struct {
	SubmissionID string `json:"submissionId" validate:"required"`
	GradeRequest
}

// BulkGradeResult reports the outcome for one item of a batch.
type BulkGradeResult struct {
	SubmissionID string `json:"submissionId"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
}

// SubmissionUsecase runs the draft, submit, grade and archive lifecycle.
type SubmissionUsecase struct {
	deps
	submissions repository.SubmissionRepository
	students    repository.StudentProfileRepository
	delegations DelegationChecker
}

func NewSubmissionUsecase(
	submissions repository.SubmissionRepository,
	students repository.StudentProfileRepository,
	delegations DelegationChecker,
	events eventbus.EventBusInterface,
	log logger.Logger,
) *SubmissionUsecase {
	return &SubmissionUsecase{
		deps:        newDeps(events, log, "submission-usecase"),
		submissions: submissions,
		students:    students,
		delegations: delegations,
	}
}

func (uc *SubmissionUsecase) WithClock(c Clock) *SubmissionUsecase {
	uc.now = c
	return uc
}

// Create starts a draft for the calling student.
func (uc *SubmissionUsecase) Create(ctx context.Context, actor security.Subject, req CreateSubmissionRequest) (*model.Submission, error) {
	if actor.Role != authmodel.RoleStudent && !isAdmin(actor) {
		return nil, ErrForbidden
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var (
		profile *model.StudentProfile
		err     error
	)
	if isAdmin(actor) && req.StudentProfileID != "" {
		profile, err = uc.students.GetByID(ctx, req.StudentProfileID)
	} else {
		profile, err = uc.students.GetByUserID(ctx, actor.ID)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProfileRequired
	}
	if err != nil {
		return nil, err
	}

	now := uc.now()
	s := &model.Submission{
		ID:               uuid.NewString(),
		StudentProfileID: profile.ID,
		StudentID:        profile.UserID,
		CohortID:         profile.CohortID,
		Week:             req.Week,
		Title:            req.Title,
		Description:      req.Description,
		DemoLink:         req.DemoLink,
		RepoLink:         req.RepoLink,
		BrainliftLink:    req.BrainliftLink,
		SocialPost:       req.SocialPost,
		DeployedURL:      req.DeployedURL,
		Technologies:     req.Technologies,
		FeaturedImageURL: req.FeaturedImageURL,
		AdditionalLinks:  req.AdditionalLinks,
		Notes:            req.Notes,
		Status:           model.StatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if actor.Role == authmodel.RoleStudent {
		s.LastStudentEdit = &now
	}
	if err := uc.submissions.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.emit(ctx, eventbus.EventTypeSubmissionCreated, actor, "submission", s.ID, "", nil)
	return s, nil
}

// load fetches a submission and enforces that students only reach their own.
func (uc *SubmissionUsecase) load(ctx context.Context, actor security.Subject, id string) (*model.Submission, error) {
	s, err := uc.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	if actor.Role == authmodel.RoleStudent && s.StudentID != actor.ID {
		ok, derr := uc.delegated(ctx, actor, s.ID)
		if derr != nil {
			return nil, derr
		}
		if !ok {
			return nil, ErrSubmissionNotFound
		}
	}
	return s, nil
}

func (uc *SubmissionUsecase) delegated(ctx context.Context, actor security.Subject, id string) (bool, error) {
	if uc.delegations == nil || actor.ID == "" {
		return false, nil
	}
	return uc.delegations.HasDelegatedPermission(ctx, actor.ID, PermissionGrade, "submission", id)
}

// graderRole is the role used for grading decisions: students holding a grade
// delegation for the submission grade as instructors.
func (uc *SubmissionUsecase) graderRole(ctx context.Context, actor security.Subject, s *model.Submission) (authmodel.Role, error) {
	if isStaff(actor) {
		return actor.Role, nil
	}
	if s.StudentID == actor.ID {
		return actor.Role, nil
	}
	ok, err := uc.delegated(ctx, actor, s.ID)
	if err != nil {
		return "", err
	}
	if ok {
		return authmodel.RoleInstructor, nil
	}
	return actor.Role, nil
}

// Get returns the submission as the caller may see it.
func (uc *SubmissionUsecase) Get(ctx context.Context, actor security.Subject, id string) (map[string]interface{}, error) {
	s, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	role, err := uc.graderRole(ctx, actor, s)
	if err != nil {
		return nil, err
	}
	return model.ViewFor(s, role)
}

// List returns submissions matching filter. Students only ever see their own.
func (uc *SubmissionUsecase) List(ctx context.Context, actor security.Subject, filter repository.SubmissionFilter) ([]map[string]interface{}, error) {
	switch {
	case actor.Role == authmodel.RoleStudent:
		filter.StudentID = actor.ID
	case !isStaff(actor):
		return nil, ErrForbidden
	}
	subs, err := uc.submissions.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(subs))
	for _, s := range subs {
		v, err := model.ViewFor(s, actor.Role)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func permissionDenied(fields []string) error {
	verrs := apperrors.NewValidationErrors()
	for _, f := range fields {
		verrs.Add(f, fmt.Sprintf("You don't have permission to update the %s field.", f), nil)
	}
	return verrs
}

// Update applies changes keyed by JSON field name. Every field must be editable by the
// caller in the submission's current status. The edit is appended to the history.
// Status is never changed here; Submit, Grade and Archive own the lifecycle.
func (uc *SubmissionUsecase) Update(ctx context.Context, actor security.Subject, id string, changes map[string]interface{}) (map[string]interface{}, error) {
	if len(changes) == 0 {
		return nil, apperrors.NewValidationError("no changes supplied")
	}
	if _, ok := changes["status"]; ok {
		return nil, ErrStatusViaUpdate
	}
	s, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	role, err := uc.graderRole(ctx, actor, s)
	if err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(changes))
	for f := range changes {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	denied := make([]string, 0)
	for _, f := range fields {
		if !model.IsFieldEditable(f, s.Status, role) {
			denied = append(denied, f)
		}
	}
	if len(denied) > 0 {
		return nil, permissionDenied(denied)
	}

	before, err := model.ToMap(s)
	if err != nil {
		return nil, err
	}
	updated, err := model.ApplyChanges(s, changes)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid field value").WithCause(err)
	}

	now := uc.now()
	previous := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		previous[f] = before[f]
	}
	updated.EditHistory = append(s.EditHistory, model.EditRecord{
		EditedAt: now,
		EditedBy: actor.ID,
		Role:     role,
		Fields:   fields,
		Previous: previous,
	})
	if actor.Role == authmodel.RoleStudent && s.StudentID == actor.ID {
		updated.LastStudentEdit = &now
	}
	updated.UpdatedAt = now

	if err := uc.submissions.Update(ctx, updated); err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	uc.emit(ctx, eventbus.EventTypeResourceUpdated, actor, "submission", s.ID,
		"Updated fields: "+strings.Join(fields, ", "), map[string]interface{}{"changes": changes})
	return model.ViewFor(updated, role)
}

// Submit hands a draft in for grading.
func (uc *SubmissionUsecase) Submit(ctx context.Context, actor security.Subject, id string) (*model.Submission, error) {
	s, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == authmodel.RoleStudent && s.StudentID != actor.ID {
		return nil, ErrForbidden
	}
	if s.Status != model.StatusDraft {
		return nil, ErrInvalidTransition
	}
	if !model.CanSubmitForGrading(s.Status, actor.Role) {
		return nil, ErrForbidden
	}

	now := uc.now()
	s.Status = model.StatusSubmitted
	s.SubmittedAt = &now
	s.UpdatedAt = now
	if actor.Role == authmodel.RoleStudent {
		s.LastStudentEdit = &now
	}
	if err := uc.submissions.Update(ctx, s); err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	uc.emit(ctx, eventbus.EventTypeSubmissionSubmitted, actor, "submission", s.ID, "Submission handed in for grading",
		map[string]interface{}{"changes": map[string]interface{}{"status": model.StatusSubmitted}})
	return s, nil
}

// Grade records a grade on a submitted submission.
func (uc *SubmissionUsecase) Grade(ctx context.Context, actor security.Subject, id string, req GradeRequest) (*model.Submission, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	s, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	role, err := uc.graderRole(ctx, actor, s)
	if err != nil {
		return nil, err
	}
	if role != authmodel.RoleInstructor && role != authmodel.RoleAdmin {
		return nil, ErrForbidden
	}
	if !model.CanGrade(s.Status, role) {
		return nil, ErrInvalidTransition
	}

	now := uc.now()
	passing := req.Passing
	s.Grade = req.Grade
	s.Passing = &passing
	s.Report = req.Report
	s.GradedAt = &now
	s.GradedBy = actor.ID
	s.Status = model.StatusGraded
	s.UpdatedAt = now
	s.EditHistory = append(s.EditHistory, model.EditRecord{
		EditedAt: now,
		EditedBy: actor.ID,
		Role:     role,
		Fields:   []string{"grade", "gradedAt", "gradedBy", "passing", "report", "status"},
	})
	if err := uc.submissions.Update(ctx, s); err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	uc.emit(ctx, eventbus.EventTypeSubmissionGraded, actor, "submission", s.ID, "",
		map[string]interface{}{"grade": s.Grade, "passing": passing})
	return s, nil
}

// BulkGrade grades every item independently; one failure does not stop the batch.
func (uc *SubmissionUsecase) BulkGrade(ctx context.Context, actor security.Subject, items []BulkGradeItem) []BulkGradeResult {
	results := make([]BulkGradeResult, 0, len(items))
	for _, item := range items {
		res := BulkGradeResult{SubmissionID: item.SubmissionID, Status: string(model.StatusGraded)}
		if item.SubmissionID == "" {
			res.Status, res.Error = "error", "submissionId is required"
		} else if _, err := uc.Grade(ctx, actor, item.SubmissionID, item.GradeRequest); err != nil {
			res.Status, res.Error = "error", err.Error()
		}
		results = append(results, res)
	}
	return results
}

// Archive retires a graded submission.
func (uc *SubmissionUsecase) Archive(ctx context.Context, actor security.Subject, id string) (*model.Submission, error) {
	if !isStaff(actor) {
		return nil, ErrForbidden
	}
	s, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(s.Status, model.StatusArchived) {
		return nil, ErrInvalidTransition
	}
	s.Status = model.StatusArchived
	s.UpdatedAt = uc.now()
	if err := uc.submissions.Update(ctx, s); err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	uc.emit(ctx, eventbus.EventTypeResourceUpdated, actor, "submission", s.ID, "Submission archived",
		map[string]interface{}{"changes": map[string]interface{}{"status": model.StatusArchived}})
	return s, nil
}

// SetShowcaseSelection features a graded submission in its owner's showcase.
func (uc *SubmissionUsecase) SetShowcaseSelection(ctx context.Context, actor security.Subject, id string, included bool, priority int) (*model.Submission, error) {
	s, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if s.StudentID != actor.ID && !isAdmin(actor) {
		return nil, ErrForbidden
	}
	if included && s.Status != model.StatusGraded && s.Status != model.StatusArchived {
		return nil, ErrNotGraded
	}
	s.ShowcaseIncluded = included
	s.ShowcasePriority = priority
	s.UpdatedAt = uc.now()
	if err := uc.submissions.Update(ctx, s); err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	return s, nil
}

// ShowcaseProjects returns the graded submissions a student selected for the showcase,
// highest priority first.
func (uc *SubmissionUsecase) ShowcaseProjects(ctx context.Context, studentID string) ([]*model.Submission, error) {
	included := true
	subs, err := uc.submissions.List(ctx, repository.SubmissionFilter{StudentID: studentID, ShowcaseIncluded: &included})
	if err != nil {
		return nil, err
	}
	out := make([]*model.Submission, 0, len(subs))
	for _, s := range subs {
		if s.Status == model.StatusGraded || s.Status == model.StatusArchived {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ShowcasePriority > out[j].ShowcasePriority })
	return out, nil
}

func (uc *SubmissionUsecase) Delete(ctx context.Context, actor security.Subject, id string) error {
	if !isAdmin(actor) {
		return ErrForbidden
	}
	if err := uc.submissions.Delete(ctx, id); err != nil {
		return notFound(err, ErrSubmissionNotFound)
	}
	uc.emit(ctx, eventbus.EventTypeResourceDeleted, actor, "submission", id, "", nil)
	return nil
}
