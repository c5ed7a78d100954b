package usecase

import (
	"context"
	"errors"
	"time"

	"showcase-platform/internal/academy/domain/model"
	"showcase-platform/internal/academy/domain/repository"
	"showcase-platform/internal/security"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/utils"

	"github.com/google/uuid"
)

// CohortRequest creates or replaces a cohort.
type CohortRequest struct {
	Name        string             `json:"name" validate:"required,max=200"`
	StartDate   time.Time          `json:"startDate" validate:"required"`
	EndDate     *time.Time         `json:"endDate,omitempty"`
	Program     string             `json:"program,omitempty" validate:"max=200"`
	Description string             `json:"description,omitempty" validate:"max=5000"`
	Instructors []string           `json:"instructors,omitempty" validate:"dive,required"`
	Status      model.CohortStatus `json:"status,omitempty" validate:"omitempty,oneof=planned active completed archived"`
}

// CohortUsecase manages cohorts. Mutations are admin only.
type CohortUsecase struct {
	deps
	cohorts     repository.CohortRepository
	students    repository.StudentProfileRepository
	instructors repository.InstructorProfileRepository
	submissions repository.SubmissionRepository
}

func NewCohortUsecase(
	cohorts repository.CohortRepository,
	students repository.StudentProfileRepository,
	instructors repository.InstructorProfileRepository,
	submissions repository.SubmissionRepository,
	events eventbus.EventBusInterface,
	log logger.Logger,
) *CohortUsecase {
	return &CohortUsecase{
		deps:        newDeps(events, log, "cohort-usecase"),
		cohorts:     cohorts,
		students:    students,
		instructors: instructors,
		submissions: submissions,
	}
}

// WithClock replaces the time source.
func (uc *CohortUsecase) WithClock(c Clock) *CohortUsecase {
	uc.now = c
	return uc
}

func (uc *CohortUsecase) Create(ctx context.Context, actor security.Subject, req CohortRequest) (*model.Cohort, error) {
	if !isAdmin(actor) {
		return nil, ErrForbidden
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	now := uc.now()
	c := &model.Cohort{
		ID:          uuid.NewString(),
		Name:        req.Name,
		StartDate:   req.StartDate.UTC(),
		EndDate:     req.EndDate,
		Program:     req.Program,
		Description: req.Description,
		Instructors: dedupe(req.Instructors),
		Status:      req.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Status == "" {
		c.Status = model.CohortPlanned
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := uc.cohorts.Create(ctx, c); err != nil {
		return nil, err
	}
	uc.syncInstructors(ctx, c.ID, nil, c.Instructors)
	uc.emit(ctx, eventbus.EventTypeResourceCreated, actor, "cohort", c.ID, "", nil)
	return c, nil
}

func (uc *CohortUsecase) Get(ctx context.Context, id string) (*model.Cohort, error) {
	c, err := uc.cohorts.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCohortNotFound)
	}
	return c, nil
}

// List returns cohorts, optionally only those in status.
func (uc *CohortUsecase) List(ctx context.Context, status model.CohortStatus) ([]*model.Cohort, error) {
	if status != "" && !status.Valid() {
		return nil, model.ErrCohortStatus
	}
	return uc.cohorts.List(ctx, status)
}

// Update replaces the cohort's editable fields.
func (uc *CohortUsecase) Update(ctx context.Context, actor security.Subject, id string, req CohortRequest) (*model.Cohort, error) {
	if !isAdmin(actor) {
		return nil, ErrForbidden
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	c, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := c.Instructors
	c.Name = req.Name
	c.StartDate = req.StartDate.UTC()
	c.EndDate = req.EndDate
	c.Program = req.Program
	c.Description = req.Description
	if req.Instructors != nil {
		c.Instructors = dedupe(req.Instructors)
	}
	if req.Status != "" {
		c.Status = req.Status
	}
	c.UpdatedAt = uc.now()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := uc.cohorts.Update(ctx, c); err != nil {
		return nil, notFound(err, ErrCohortNotFound)
	}
	uc.syncInstructors(ctx, c.ID, previous, c.Instructors)
	uc.emit(ctx, eventbus.EventTypeResourceUpdated, actor, "cohort", c.ID, "", map[string]interface{}{
		"changes": map[string]interface{}{"name": c.Name, "status": c.Status},
	})
	return c, nil
}

// SetStatus moves a cohort through its lifecycle.
func (uc *CohortUsecase) SetStatus(ctx context.Context, actor security.Subject, id string, status model.CohortStatus) (*model.Cohort, error) {
	if !isAdmin(actor) {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, model.ErrCohortStatus
	}
	c, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Status = status
	c.UpdatedAt = uc.now()
	if err := uc.cohorts.Update(ctx, c); err != nil {
		return nil, notFound(err, ErrCohortNotFound)
	}
	uc.emit(ctx, eventbus.EventTypeResourceUpdated, actor, "cohort", c.ID, "", map[string]interface{}{
		"changes": map[string]interface{}{"status": status},
	})
	return c, nil
}

// AssignInstructors replaces the cohort's instructors and mirrors the assignment onto
// their instructor profiles.
func (uc *CohortUsecase) AssignInstructors(ctx context.Context, actor security.Subject, id string, userIDs []string) (*model.Cohort, error) {
	if !isAdmin(actor) {
		return nil, ErrForbidden
	}
	c, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := c.Instructors
	c.Instructors = dedupe(userIDs)
	c.UpdatedAt = uc.now()
	if err := uc.cohorts.Update(ctx, c); err != nil {
		return nil, notFound(err, ErrCohortNotFound)
	}
	uc.syncInstructors(ctx, c.ID, previous, c.Instructors)
	uc.emit(ctx, eventbus.EventTypeResourceUpdated, actor, "cohort", c.ID, "Instructors assigned", map[string]interface{}{
		"changes": map[string]interface{}{"instructors": c.Instructors},
	})
	return c, nil
}

func (uc *CohortUsecase) Delete(ctx context.Context, actor security.Subject, id string) error {
	if !isAdmin(actor) {
		return ErrForbidden
	}
	c, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.cohorts.Delete(ctx, id); err != nil {
		return notFound(err, ErrCohortNotFound)
	}
	uc.syncInstructors(ctx, id, c.Instructors, nil)
	uc.emit(ctx, eventbus.EventTypeResourceDeleted, actor, "cohort", id, "", nil)
	return nil
}

// Stats counts students and submissions of a cohort. The passing rate is the share of
// graded submissions marked passing.
func (uc *CohortUsecase) Stats(ctx context.Context, id string) (*model.CohortStats, error) {
	if _, err := uc.Get(ctx, id); err != nil {
		return nil, err
	}
	students, err := uc.students.ListByCohort(ctx, id)
	if err != nil {
		return nil, err
	}
	subs, err := uc.submissions.List(ctx, repository.SubmissionFilter{CohortID: id})
	if err != nil {
		return nil, err
	}

	stats := &model.CohortStats{CohortID: id, Students: len(students), Submissions: len(subs)}
	for _, s := range subs {
		switch s.Status {
		case model.StatusSubmitted:
			stats.Submitted++
		case model.StatusGraded, model.StatusArchived:
			if s.GradedAt == nil {
				continue
			}
			stats.Graded++
			if s.IsPassing() {
				stats.Passing++
			}
		}
	}
	if stats.Graded > 0 {
		stats.PassingRate = float64(stats.Passing) / float64(stats.Graded)
	}
	return stats, nil
}

// syncInstructors adds cohortID to newly assigned instructors' profiles and removes it
// from dropped ones. Instructors without a profile are skipped.
func (uc *CohortUsecase) syncInstructors(ctx context.Context, cohortID string, before, after []string) {
	keep := make(map[string]bool, len(after))
	for _, id := range after {
		keep[id] = true
	}
	had := make(map[string]bool, len(before))
	for _, id := range before {
		had[id] = true
	}

	update := func(userID string, assign bool) {
		p, err := uc.instructors.GetByUserID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return
		}
		if err != nil {
			uc.log.WithContext(ctx).Warnf("failed to load instructor %s: %v", userID, err)
			return
		}
		if assign {
			if p.Teaches(cohortID) {
				return
			}
			p.AssignedCohorts = append(p.AssignedCohorts, cohortID)
		} else {
			p.AssignedCohorts = remove(p.AssignedCohorts, cohortID)
		}
		p.UpdatedAt = uc.now()
		if err := uc.instructors.Update(ctx, p); err != nil {
			uc.log.WithContext(ctx).Warnf("failed to update instructor %s: %v", userID, err)
		}
	}

	for _, id := range after {
		if !had[id] {
			update(id, true)
		}
	}
	for _, id := range before {
		if !keep[id] {
			update(id, false)
		}
	}
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func remove(in []string, v string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
