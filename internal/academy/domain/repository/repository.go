package repository

import (
	"context"
	"errors"

	"showcase-platform/internal/academy/domain/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type CohortRepository interface {
	Create(ctx context.Context, c *model.Cohort) error
	GetByID(ctx context.Context, id string) (*model.Cohort, error)
	// List returns cohorts ordered by start date, optionally narrowed to status.
	List(ctx context.Context, status model.CohortStatus) ([]*model.Cohort, error)
	Update(ctx context.Context, c *model.Cohort) error
	Delete(ctx context.Context, id string) error
}

type StudentProfileRepository interface {
	Create(ctx context.Context, p *model.StudentProfile) error
	GetByID(ctx context.Context, id string) (*model.StudentProfile, error)
	GetByUserID(ctx context.Context, userID string) (*model.StudentProfile, error)
	ListByCohort(ctx context.Context, cohortID string) ([]*model.StudentProfile, error)
	Update(ctx context.Context, p *model.StudentProfile) error
	Delete(ctx context.Context, id string) error
}

type InstructorProfileRepository interface {
	Create(ctx context.Context, p *model.InstructorProfile) error
	GetByID(ctx context.Context, id string) (*model.InstructorProfile, error)
	GetByUserID(ctx context.Context, userID string) (*model.InstructorProfile, error)
	ListByCohort(ctx context.Context, cohortID string) ([]*model.InstructorProfile, error)
	Update(ctx context.Context, p *model.InstructorProfile) error
	Delete(ctx context.Context, id string) error
}

// SubmissionFilter narrows a submission listing. Zero values match everything.
type SubmissionFilter struct {
	StudentProfileID string
	StudentID        string
	CohortID         string
	Status           model.SubmissionStatus
	Week             int
	ShowcaseIncluded *bool
}

// Matches reports whether s satisfies the filter.
func (f SubmissionFilter) Matches(s *model.Submission) bool {
	switch {
	case f.StudentProfileID != "" && s.StudentProfileID != f.StudentProfileID,
		f.StudentID != "" && s.StudentID != f.StudentID,
		f.CohortID != "" && s.CohortID != f.CohortID,
		f.Status != "" && s.Status != f.Status,
		f.Week != 0 && s.Week != f.Week,
		f.ShowcaseIncluded != nil && s.ShowcaseIncluded != *f.ShowcaseIncluded:
		return false
	}
	return true
}

type SubmissionRepository interface {
	Create(ctx context.Context, s *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	// List returns matching submissions ordered by week then creation time.
	List(ctx context.Context, filter SubmissionFilter) ([]*model.Submission, error)
	Update(ctx context.Context, s *model.Submission) error
	Delete(ctx context.Context, id string) error
}

type TemplateRepository interface {
	Create(ctx context.Context, t *model.Template) error
	GetByID(ctx context.Context, id string) (*model.Template, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Template, error)
	Update(ctx context.Context, t *model.Template) error
	Delete(ctx context.Context, id string) error
}
