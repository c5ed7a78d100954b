package model

import (
	"errors"
	"strings"
	"time"
)

var ErrProfileName = errors.New("first and last name are required")

// Education is one entry of a student's education history.
type Education struct {
	Institution string `json:"institution" bson:"institution"`
	Degree      string `json:"degree,omitempty" bson:"degree,omitempty"`
	Field       string `json:"field,omitempty" bson:"field,omitempty"`
	StartYear   int    `json:"startYear,omitempty" bson:"start_year,omitempty"`
	EndYear     int    `json:"endYear,omitempty" bson:"end_year,omitempty"`
}

// Skill is a named skill with an optional proficiency level.
type Skill struct {
	Name  string `json:"name" bson:"name"`
	Level string `json:"level,omitempty" bson:"level,omitempty"`
}

// StudentProfile is the public facing profile of a student.
type StudentProfile struct {
	ID              string                 `json:"id" bson:"_id"`
	UserID          string                 `json:"userId" bson:"user_id"`
	FirstName       string                 `json:"firstName" bson:"first_name"`
	LastName        string                 `json:"lastName" bson:"last_name"`
	Title           string                 `json:"title,omitempty" bson:"title,omitempty"`
	Bio             string                 `json:"bio,omitempty" bson:"bio,omitempty"`
	ProfileImageURL string                 `json:"profileImageUrl,omitempty" bson:"profile_image_url,omitempty"`
	Location        string                 `json:"location,omitempty" bson:"location,omitempty"`
	Education       []Education            `json:"education,omitempty" bson:"education,omitempty"`
	ExperienceYears int                    `json:"experienceYears,omitempty" bson:"experience_years,omitempty"`
	SocialLinks     map[string]string      `json:"socialLinks,omitempty" bson:"social_links,omitempty"`
	ContactEmail    string                 `json:"contactEmail,omitempty" bson:"contact_email,omitempty"`
	Skills          []Skill                `json:"skills,omitempty" bson:"skills,omitempty"`
	ContactInfo     map[string]interface{} `json:"contactInfo,omitempty" bson:"contact_info,omitempty"`
	Preferences     map[string]interface{} `json:"preferences,omitempty" bson:"preferences,omitempty"`
	CohortID        string                 `json:"cohortId,omitempty" bson:"cohort_id,omitempty"`
	IsStaff         bool                   `json:"isStaff,omitempty" bson:"is_staff,omitempty"`
	OrgName         string                 `json:"orgName,omitempty" bson:"org_name,omitempty"`
	CreatedAt       time.Time              `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time              `json:"updatedAt" bson:"updated_at"`
}

func (p *StudentProfile) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return ErrProfileName
	}
	return nil
}

// FullName joins first and last name.
func (p *StudentProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// InstructorProfile describes an instructor and the cohorts they teach.
type InstructorProfile struct {
	ID              string                 `json:"id" bson:"_id"`
	UserID          string                 `json:"userId" bson:"user_id"`
	FirstName       string                 `json:"firstName" bson:"first_name"`
	LastName        string                 `json:"lastName" bson:"last_name"`
	Title           string                 `json:"title,omitempty" bson:"title,omitempty"`
	Bio             string                 `json:"bio,omitempty" bson:"bio,omitempty"`
	ProfileImageURL string                 `json:"profileImageUrl,omitempty" bson:"profile_image_url,omitempty"`
	AssignedCohorts []string               `json:"assignedCohorts" bson:"assigned_cohorts"`
	Specialties     []string               `json:"specialties,omitempty" bson:"specialties,omitempty"`
	ContactInfo     map[string]interface{} `json:"contactInfo,omitempty" bson:"contact_info,omitempty"`
	CreatedAt       time.Time              `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time              `json:"updatedAt" bson:"updated_at"`
}

func (p *InstructorProfile) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return ErrProfileName
	}
	return nil
}

// Teaches reports whether the instructor is assigned to cohortID.
func (p *InstructorProfile) Teaches(cohortID string) bool {
	for _, id := range p.AssignedCohorts {
		if id == cohortID {
			return true
		}
	}
	return false
}
