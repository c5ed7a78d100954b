package usecase

import (
	"context"
	"errors"

	"showcase-platform/internal/academy/domain/model"
	"showcase-platform/internal/academy/domain/repository"
	"showcase-platform/internal/security"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/utils"

	"github.com/google/uuid"
)

// StudentProfileRequest carries the editable fields of a student profile. UserID and
// CohortID are honored for admins only.
type StudentProfileRequest struct {
	UserID          string                 `json:"userId,omitempty"`
	FirstName       string                 `json:"firstName" validate:"required,max=100"`
	LastName        string                 `json:"lastName" validate:"required,max=100"`
	Title           string                 `json:"title,omitempty" validate:"max=200"`
	Bio             string                 `json:"bio,omitempty" validate:"max=5000"`
	ProfileImageURL string                 `json:"profileImageUrl,omitempty" validate:"omitempty,url"`
	Location        string                 `json:"location,omitempty" validate:"max=200"`
	Education       []model.Education      `json:"education,omitempty" validate:"dive"`
	ExperienceYears int                    `json:"experienceYears,omitempty" validate:"min=0,max=80"`
	SocialLinks     map[string]string      `json:"socialLinks,omitempty" validate:"dive,keys,required,endkeys,omitempty,url"`
	ContactEmail    string                 `json:"contactEmail,omitempty" validate:"omitempty,email"`
	Skills          []model.Skill          `json:"skills,omitempty" validate:"dive"`
	ContactInfo     map[string]interface{} `json:"contactInfo,omitempty"`
	Preferences     map[string]interface{} `json:"preferences,omitempty"`
	CohortID        string                 `json:"cohortId,omitempty"`
	IsStaff         bool                   `json:"isStaff,omitempty"`
	OrgName         string                 `json:"orgName,omitempty"`
}

// InstructorProfileRequest carries the editable fields of an instructor profile.
type InstructorProfileRequest struct {
	UserID          string                 `json:"userId,omitempty"`
	FirstName       string                 `json:"firstName" validate:"required,max=100"`
	LastName        string                 `json:"lastName" validate:"required,max=100"`
	Title           string                 `json:"title,omitempty" validate:"max=200"`
	Bio             string                 `json:"bio,omitempty" validate:"max=5000"`
	ProfileImageURL string                 `json:"profileImageUrl,omitempty" validate:"omitempty,url"`
	Specialties     []string               `json:"specialties,omitempty" validate:"dive,required"`
	ContactInfo     map[string]interface{} `json:"contactInfo,omitempty"`
}

// ProfileUsecase manages student and instructor profiles. Owners and admins edit.
type ProfileUsecase struct {
	deps
	students    repository.StudentProfileRepository
	instructors repository.InstructorProfileRepository
	cohorts     repository.CohortRepository
}

func NewProfileUsecase(
	students repository.StudentProfileRepository,
	instructors repository.InstructorProfileRepository,
	cohorts repository.CohortRepository,
	events eventbus.EventBusInterface,
	log logger.Logger,
) *ProfileUsecase {
	return &ProfileUsecase{
		deps:        newDeps(events, log, "profile-usecase"),
		students:    students,
		instructors: instructors,
		cohorts:     cohorts,
	}
}

func (uc *ProfileUsecase) WithClock(c Clock) *ProfileUsecase {
	uc.now = c
	return uc
}

// targetUser resolves whose profile is being created: admins may name anyone.
func targetUser(actor security.Subject, requested string) string {
	if isAdmin(actor) && requested != "" {
		return requested
	}
	return actor.ID
}

func (uc *ProfileUsecase) checkCohort(ctx context.Context, cohortID string) error {
	if cohortID == "" {
		return nil
	}
	if _, err := uc.cohorts.GetByID(ctx, cohortID); err != nil {
		return notFound(err, ErrCohortNotFound)
	}
	return nil
}

func applyStudent(p *model.StudentProfile, req StudentProfileRequest) {
	p.FirstName = req.FirstName
	p.LastName = req.LastName
	p.Title = req.Title
	p.Bio = req.Bio
	p.ProfileImageURL = req.ProfileImageURL
	p.Location = req.Location
	p.Education = req.Education
	p.ExperienceYears = req.ExperienceYears
	p.SocialLinks = req.SocialLinks
	p.ContactEmail = req.ContactEmail
	p.Skills = req.Skills
	p.ContactInfo = req.ContactInfo
	p.Preferences = req.Preferences
	p.OrgName = req.OrgName
}

// CreateStudentProfile creates the caller's profile, or any user's for admins.
func (uc *ProfileUsecase) CreateStudentProfile(ctx context.Context, actor security.Subject, req StudentProfileRequest) (*model.StudentProfile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	userID := targetUser(actor, req.UserID)
	if userID == "" {
		return nil, ErrForbidden
	}
	if _, err := uc.students.GetByUserID(ctx, userID); err == nil {
		return nil, ErrProfileExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := uc.now()
	p := &model.StudentProfile{ID: uuid.NewString(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	applyStudent(p, req)
	if isAdmin(actor) {
		if err := uc.checkCohort(ctx, req.CohortID); err != nil {
			return nil, err
		}
		p.CohortID = req.CohortID
		p.IsStaff = req.IsStaff
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := uc.students.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrProfileExists
		}
		return nil, err
	}
	uc.emit(ctx, eventbus.EventTypeResourceCreated, actor, "student_profile", p.ID, "", nil)
	return p, nil
}

func (uc *ProfileUsecase) GetStudentProfile(ctx context.Context, id string) (*model.StudentProfile, error) {
	p, err := uc.students.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	return p, nil
}

func (uc *ProfileUsecase) GetStudentProfileByUser(ctx context.Context, userID string) (*model.StudentProfile, error) {
	p, err := uc.students.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	return p, nil
}

// ListStudents lists the students of a cohort, or all students when cohortID is empty.
// Staff only.
func (uc *ProfileUsecase) ListStudents(ctx context.Context, actor security.Subject, cohortID string) ([]*model.StudentProfile, error) {
	if !isStaff(actor) {
		return nil, ErrForbidden
	}
	return uc.students.ListByCohort(ctx, cohortID)
}

// UpdateStudentProfile replaces the editable fields. Cohort and staff flags change only
// through an admin.
func (uc *ProfileUsecase) UpdateStudentProfile(ctx context.Context, actor security.Subject, id string, req StudentProfileRequest) (*model.StudentProfile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	p, err := uc.GetStudentProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != actor.ID && !isAdmin(actor) {
		return nil, ErrForbidden
	}
	applyStudent(p, req)
	if isAdmin(actor) {
		if err := uc.checkCohort(ctx, req.CohortID); err != nil {
			return nil, err
		}
		p.CohortID = req.CohortID
		p.IsStaff = req.IsStaff
	}
	p.UpdatedAt = uc.now()
	if err := uc.students.Update(ctx, p); err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	uc.emit(ctx, eventbus.EventTypeResourceUpdated, actor, "student_profile", p.ID, "", nil)
	return p, nil
}

func (uc *ProfileUsecase) DeleteStudentProfile(ctx context.Context, actor security.Subject, id string) error {
	if !isAdmin(actor) {
		return ErrForbidden
	}
	if err := uc.students.Delete(ctx, id); err != nil {
		return notFound(err, ErrProfileNotFound)
	}
	uc.emit(ctx, eventbus.EventTypeResourceDeleted, actor, "student_profile", id, "", nil)
	return nil
}

func applyInstructor(p *model.InstructorProfile, req InstructorProfileRequest) {
	p.FirstName = req.FirstName
	p.LastName = req.LastName
	p.Title = req.Title
	p.Bio = req.Bio
	p.ProfileImageURL = req.ProfileImageURL
	p.Specialties = req.Specialties
	p.ContactInfo = req.ContactInfo
}

// CreateInstructorProfile creates a profile for the calling instructor, or for any
// user when called by an admin. Cohort assignments are picked up from existing cohorts.
func (uc *ProfileUsecase) CreateInstructorProfile(ctx context.Context, actor security.Subject, req InstructorProfileRequest) (*model.InstructorProfile, error) {
	if !isStaff(actor) {
		return nil, ErrForbidden
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	userID := targetUser(actor, req.UserID)
	if _, err := uc.instructors.GetByUserID(ctx, userID); err == nil {
		return nil, ErrProfileExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	cohorts, err := uc.cohorts.List(ctx, "")
	if err != nil {
		return nil, err
	}
	assigned := make([]string, 0)
	for _, c := range cohorts {
		if c.HasInstructor(userID) {
			assigned = append(assigned, c.ID)
		}
	}

	now := uc.now()
	p := &model.InstructorProfile{
		ID:              uuid.NewString(),
		UserID:          userID,
		AssignedCohorts: assigned,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	applyInstructor(p, req)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := uc.instructors.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrProfileExists
		}
		return nil, err
	}
	uc.emit(ctx, eventbus.EventTypeResourceCreated, actor, "instructor_profile", p.ID, "", nil)
	return p, nil
}

func (uc *ProfileUsecase) GetInstructorProfile(ctx context.Context, id string) (*model.InstructorProfile, error) {
	p, err := uc.instructors.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	return p, nil
}

func (uc *ProfileUsecase) GetInstructorProfileByUser(ctx context.Context, userID string) (*model.InstructorProfile, error) {
	p, err := uc.instructors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	return p, nil
}

func (uc *ProfileUsecase) ListInstructors(ctx context.Context, cohortID string) ([]*model.InstructorProfile, error) {
	return uc.instructors.ListByCohort(ctx, cohortID)
}

func (uc *ProfileUsecase) UpdateInstructorProfile(ctx context.Context, actor security.Subject, id string, req InstructorProfileRequest) (*model.InstructorProfile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	p, err := uc.GetInstructorProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != actor.ID && !isAdmin(actor) {
		return nil, ErrForbidden
	}
	applyInstructor(p, req)
	p.UpdatedAt = uc.now()
	if err := uc.instructors.Update(ctx, p); err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	uc.emit(ctx, eventbus.EventTypeResourceUpdated, actor, "instructor_profile", p.ID, "", nil)
	return p, nil
}

func (uc *ProfileUsecase) DeleteInstructorProfile(ctx context.Context, actor security.Subject, id string) error {
	if !isAdmin(actor) {
		return ErrForbidden
	}
	if err := uc.instructors.Delete(ctx, id); err != nil {
		return notFound(err, ErrProfileNotFound)
	}
	uc.emit(ctx, eventbus.EventTypeResourceDeleted, actor, "instructor_profile", id, "", nil)
	return nil
}

// AssignedCohorts returns the cohorts an instructor teaches.
func (uc *ProfileUsecase) AssignedCohorts(ctx context.Context, userID string) ([]*model.Cohort, error) {
	p, err := uc.GetInstructorProfileByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Cohort, 0, len(p.AssignedCohorts))
	for _, id := range p.AssignedCohorts {
		c, err := uc.cohorts.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
