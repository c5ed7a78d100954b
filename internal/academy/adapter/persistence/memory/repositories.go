package memory

import (
	"context"

	"showcase-platform/internal/academy/domain/model"
	"showcase-platform/internal/academy/domain/repository"
)

type CohortRepository struct{ t *table[model.Cohort] }

func NewCohortRepository() *CohortRepository {
	return &CohortRepository{t: newTable(func(c *model.Cohort) string { return c.ID })}
}

func (r *CohortRepository) Create(_ context.Context, c *model.Cohort) error { return r.t.create(c) }
func (r *CohortRepository) GetByID(_ context.Context, id string) (*model.Cohort, error) {
	return r.t.get(id)
}
func (r *CohortRepository) Update(_ context.Context, c *model.Cohort) error { return r.t.update(c) }
func (r *CohortRepository) Delete(_ context.Context, id string) error       { return r.t.delete(id) }

func (r *CohortRepository) List(_ context.Context, status model.CohortStatus) ([]*model.Cohort, error) {
	return r.t.list(
		func(c *model.Cohort) bool { return status == "" || c.Status == status },
		func(a, b *model.Cohort) bool { return a.StartDate.Before(b.StartDate) },
	), nil
}

type StudentProfileRepository struct{ t *table[model.StudentProfile] }

func NewStudentProfileRepository() *StudentProfileRepository {
	return &StudentProfileRepository{t: newTable(func(p *model.StudentProfile) string { return p.ID })}
}

func (r *StudentProfileRepository) Create(_ context.Context, p *model.StudentProfile) error {
	if _, err := r.t.find(func(o *model.StudentProfile) bool { return o.UserID == p.UserID }); err == nil {
		return repository.ErrDuplicate
	}
	return r.t.create(p)
}
func (r *StudentProfileRepository) GetByID(_ context.Context, id string) (*model.StudentProfile, error) {
	return r.t.get(id)
}
func (r *StudentProfileRepository) GetByUserID(_ context.Context, userID string) (*model.StudentProfile, error) {
	return r.t.find(func(p *model.StudentProfile) bool { return p.UserID == userID })
}
func (r *StudentProfileRepository) ListByCohort(_ context.Context, cohortID string) ([]*model.StudentProfile, error) {
	return r.t.list(
		func(p *model.StudentProfile) bool { return cohortID == "" || p.CohortID == cohortID },
		func(a, b *model.StudentProfile) bool { return a.LastName+a.FirstName < b.LastName+b.FirstName },
	), nil
}
func (r *StudentProfileRepository) Update(_ context.Context, p *model.StudentProfile) error {
	return r.t.update(p)
}
func (r *StudentProfileRepository) Delete(_ context.Context, id string) error { return r.t.delete(id) }

type InstructorProfileRepository struct{ t *table[model.InstructorProfile] }

func NewInstructorProfileRepository() *InstructorProfileRepository {
	return &InstructorProfileRepository{t: newTable(func(p *model.InstructorProfile) string { return p.ID })}
}

func (r *InstructorProfileRepository) Create(_ context.Context, p *model.InstructorProfile) error {
	if _, err := r.t.find(func(o *model.InstructorProfile) bool { return o.UserID == p.UserID }); err == nil {
		return repository.ErrDuplicate
	}
	return r.t.create(p)
}
func (r *InstructorProfileRepository) GetByID(_ context.Context, id string) (*model.InstructorProfile, error) {
	return r.t.get(id)
}
func (r *InstructorProfileRepository) GetByUserID(_ context.Context, userID string) (*model.InstructorProfile, error) {
	return r.t.find(func(p *model.InstructorProfile) bool { return p.UserID == userID })
}
func (r *InstructorProfileRepository) ListByCohort(_ context.Context, cohortID string) ([]*model.InstructorProfile, error) {
	return r.t.list(
		func(p *model.InstructorProfile) bool { return cohortID == "" || p.Teaches(cohortID) },
		func(a, b *model.InstructorProfile) bool { return a.LastName+a.FirstName < b.LastName+b.FirstName },
	), nil
}
func (r *InstructorProfileRepository) Update(_ context.Context, p *model.InstructorProfile) error {
	return r.t.update(p)
}
func (r *InstructorProfileRepository) Delete(_ context.Context, id string) error { return r.t.delete(id) }

type SubmissionRepository struct{ t *table[model.Submission] }

func NewSubmissionRepository() *SubmissionRepository {
	return &SubmissionRepository{t: newTable(func(s *model.Submission) string { return s.ID })}
}

func (r *SubmissionRepository) Create(_ context.Context, s *model.Submission) error { return r.t.create(s) }
func (r *SubmissionRepository) GetByID(_ context.Context, id string) (*model.Submission, error) {
	return r.t.get(id)
}
func (r *SubmissionRepository) List(_ context.Context, f repository.SubmissionFilter) ([]*model.Submission, error) {
	return r.t.list(f.Matches, func(a, b *model.Submission) bool {
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}), nil
}
func (r *SubmissionRepository) Update(_ context.Context, s *model.Submission) error { return r.t.update(s) }
func (r *SubmissionRepository) Delete(_ context.Context, id string) error          { return r.t.delete(id) }

type TemplateRepository struct{ t *table[model.Template] }

func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{t: newTable(func(t *model.Template) string { return t.ID })}
}

func (r *TemplateRepository) Create(_ context.Context, t *model.Template) error { return r.t.create(t) }
func (r *TemplateRepository) GetByID(_ context.Context, id string) (*model.Template, error) {
	return r.t.get(id)
}
func (r *TemplateRepository) List(_ context.Context, activeOnly bool) ([]*model.Template, error) {
	return r.t.list(
		func(t *model.Template) bool { return !activeOnly || t.IsActive },
		func(a, b *model.Template) bool { return a.Name < b.Name },
	), nil
}
func (r *TemplateRepository) Update(_ context.Context, t *model.Template) error { return r.t.update(t) }
func (r *TemplateRepository) Delete(_ context.Context, id string) error         { return r.t.delete(id) }

var (
	_ repository.CohortRepository            = (*CohortRepository)(nil)
	_ repository.StudentProfileRepository    = (*StudentProfileRepository)(nil)
	_ repository.InstructorProfileRepository = (*InstructorProfileRepository)(nil)
	_ repository.SubmissionRepository        = (*SubmissionRepository)(nil)
	_ repository.TemplateRepository          = (*TemplateRepository)(nil)
)
