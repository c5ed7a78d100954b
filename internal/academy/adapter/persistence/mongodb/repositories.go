package mongodb

import (
	"context"

	"showcase-platform/internal/academy/domain/model"
	"showcase-platform/internal/academy/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repositories bundles the academy collections.
type Repositories struct {
	Cohorts     *CohortRepository
	Students    *StudentProfileRepository
	Instructors *InstructorProfileRepository
	Submissions *SubmissionRepository
	Templates   *TemplateRepository
}

// NewRepositories opens every academy collection and ensures its indexes.
func NewRepositories(db *mongo.Database) (*Repositories, error) {
	cohorts, err := newCollection[model.Cohort](db, "cohorts", []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "start_date", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	students, err := newCollection[model.StudentProfile](db, "student_profiles", []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "cohort_id", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	instructors, err := newCollection[model.InstructorProfile](db, "instructor_profiles", []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "assigned_cohorts", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	submissions, err := newCollection[model.Submission](db, "submissions", []mongo.IndexModel{
		{Keys: bson.D{{Key: "student_profile_id", Value: 1}, {Key: "week", Value: 1}}},
		{Keys: bson.D{{Key: "cohort_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "student_id", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	templates, err := newCollection[model.Template](db, "templates", []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "name", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Cohorts:     &CohortRepository{cohorts},
		Students:    &StudentProfileRepository{students},
		Instructors: &InstructorProfileRepository{instructors},
		Submissions: &SubmissionRepository{submissions},
		Templates:   &TemplateRepository{templates},
	}, nil
}

type CohortRepository struct{ col *collection[model.Cohort] }

func (r *CohortRepository) Create(ctx context.Context, c *model.Cohort) error {
	return r.col.insert(ctx, c)
}

func (r *CohortRepository) GetByID(ctx context.Context, id string) (*model.Cohort, error) {
	return r.col.findOne(ctx, bson.M{"_id": id})
}

func (r *CohortRepository) List(ctx context.Context, status model.CohortStatus) ([]*model.Cohort, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.col.find(ctx, filter, bson.D{{Key: "start_date", Value: 1}})
}

func (r *CohortRepository) Update(ctx context.Context, c *model.Cohort) error {
	return r.col.replace(ctx, c.ID, c)
}

func (r *CohortRepository) Delete(ctx context.Context, id string) error {
	return r.col.delete(ctx, id)
}

var byName = bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}}

type StudentProfileRepository struct{ col *collection[model.StudentProfile] }

func (r *StudentProfileRepository) Create(ctx context.Context, p *model.StudentProfile) error {
	return r.col.insert(ctx, p)
}

func (r *StudentProfileRepository) GetByID(ctx context.Context, id string) (*model.StudentProfile, error) {
	return r.col.findOne(ctx, bson.M{"_id": id})
}

func (r *StudentProfileRepository) GetByUserID(ctx context.Context, userID string) (*model.StudentProfile, error) {
	return r.col.findOne(ctx, bson.M{"user_id": userID})
}

func (r *StudentProfileRepository) ListByCohort(ctx context.Context, cohortID string) ([]*model.StudentProfile, error) {
	filter := bson.M{}
	if cohortID != "" {
		filter["cohort_id"] = cohortID
	}
	return r.col.find(ctx, filter, byName)
}

func (r *StudentProfileRepository) Update(ctx context.Context, p *model.StudentProfile) error {
	return r.col.replace(ctx, p.ID, p)
}

func (r *StudentProfileRepository) Delete(ctx context.Context, id string) error {
	return r.col.delete(ctx, id)
}

type InstructorProfileRepository struct{ col *collection[model.InstructorProfile] }

func (r *InstructorProfileRepository) Create(ctx context.Context, p *model.InstructorProfile) error {
	return r.col.insert(ctx, p)
}

func (r *InstructorProfileRepository) GetByID(ctx context.Context, id string) (*model.InstructorProfile, error) {
	return r.col.findOne(ctx, bson.M{"_id": id})
}

func (r *InstructorProfileRepository) GetByUserID(ctx context.Context, userID string) (*model.InstructorProfile, error) {
	return r.col.findOne(ctx, bson.M{"user_id": userID})
}

func (r *InstructorProfileRepository) ListByCohort(ctx context.Context, cohortID string) ([]*model.InstructorProfile, error) {
	filter := bson.M{}
	if cohortID != "" {
		filter["assigned_cohorts"] = cohortID
	}
	return r.col.find(ctx, filter, byName)
}

func (r *InstructorProfileRepository) Update(ctx context.Context, p *model.InstructorProfile) error {
	return r.col.replace(ctx, p.ID, p)
}

func (r *InstructorProfileRepository) Delete(ctx context.Context, id string) error {
	return r.col.delete(ctx, id)
}

type SubmissionRepository struct{ col *collection[model.Submission] }

func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return r.col.insert(ctx, s)
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	return r.col.findOne(ctx, bson.M{"_id": id})
}

func (r *SubmissionRepository) List(ctx context.Context, f repository.SubmissionFilter) ([]*model.Submission, error) {
	filter := bson.M{}
	if f.StudentProfileID != "" {
		filter["student_profile_id"] = f.StudentProfileID
	}
	if f.StudentID != "" {
		filter["student_id"] = f.StudentID
	}
	if f.CohortID != "" {
		filter["cohort_id"] = f.CohortID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Week != 0 {
		filter["week"] = f.Week
	}
	if f.ShowcaseIncluded != nil {
		filter["showcase_included"] = *f.ShowcaseIncluded
	}
	return r.col.find(ctx, filter, bson.D{{Key: "week", Value: 1}, {Key: "created_at", Value: 1}})
}

func (r *SubmissionRepository) Update(ctx context.Context, s *model.Submission) error {
	return r.col.replace(ctx, s.ID, s)
}

func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	return r.col.delete(ctx, id)
}

type TemplateRepository struct{ col *collection[model.Template] }

func (r *TemplateRepository) Create(ctx context.Context, t *model.Template) error {
	return r.col.insert(ctx, t)
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*model.Template, error) {
	return r.col.findOne(ctx, bson.M{"_id": id})
}

func (r *TemplateRepository) List(ctx context.Context, activeOnly bool) ([]*model.Template, error) {
	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}
	return r.col.find(ctx, filter, bson.D{{Key: "name", Value: 1}})
}

func (r *TemplateRepository) Update(ctx context.Context, t *model.Template) error {
	return r.col.replace(ctx, t.ID, t)
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	return r.col.delete(ctx, id)
}

var (
	_ repository.CohortRepository            = (*CohortRepository)(nil)
	_ repository.StudentProfileRepository    = (*StudentProfileRepository)(nil)
	_ repository.InstructorProfileRepository = (*InstructorProfileRepository)(nil)
	_ repository.SubmissionRepository        = (*SubmissionRepository)(nil)
	_ repository.TemplateRepository          = (*TemplateRepository)(nil)
)
