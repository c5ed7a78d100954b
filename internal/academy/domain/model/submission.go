package model

import (
	"encoding/json"
	"errors"
	"time"

	authmodel "showcase-platform/internal/auth/domain/model"
)

// SubmissionStatus is the grading lifecycle of a submission.
type SubmissionStatus string

const (
	StatusDraft     SubmissionStatus = "draft"
	StatusSubmitted SubmissionStatus = "submitted"
	StatusGraded    SubmissionStatus = "graded"
	StatusArchived  SubmissionStatus = "archived"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusGraded, StatusArchived:
		return true
	}
	return false
}

var transitions = map[SubmissionStatus][]SubmissionStatus{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusGraded, StatusDraft},
	StatusGraded:    {StatusArchived},
}

// CanTransition reports whether a submission may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to SubmissionStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

var ErrSubmissionTitle = errors.New("submission title is required")

// Link is an extra labelled URL attached to a submission.
type Link struct {
	Label string `json:"label" bson:"label"`
	URL   string `json:"url" bson:"url"`
}

// EditRecord captures one student or staff edit of a submission.
type EditRecord struct {
	EditedAt time.Time              `json:"editedAt" bson:"edited_at"`
	EditedBy string                 `json:"editedBy" bson:"edited_by"`
	Role     authmodel.Role         `json:"role" bson:"role"`
	Fields   []string               `json:"fields" bson:"fields"`
	Previous map[string]interface{} `json:"previous,omitempty" bson:"previous,omitempty"`
}

// Submission is a weekly project handed in by a student.
type Submission struct {
	ID               string           `json:"id" bson:"_id"`
	StudentProfileID string           `json:"studentProfileId" bson:"student_profile_id"`
	StudentID        string           `json:"studentId" bson:"student_id"`
	CohortID         string           `json:"cohortId,omitempty" bson:"cohort_id,omitempty"`
	Week             int              `json:"week,omitempty" bson:"week,omitempty"`
	Title            string           `json:"title" bson:"title"`
	Description      string           `json:"description,omitempty" bson:"description,omitempty"`
	DemoLink         string           `json:"demoLink,omitempty" bson:"demo_link,omitempty"`
	RepoLink         string           `json:"repoLink,omitempty" bson:"repo_link,omitempty"`
	BrainliftLink    string           `json:"brainliftLink,omitempty" bson:"brainlift_link,omitempty"`
	SocialPost       string           `json:"socialPost,omitempty" bson:"social_post,omitempty"`
	DeployedURL      string           `json:"deployedUrl,omitempty" bson:"deployed_url,omitempty"`
	Technologies     []string         `json:"technologies,omitempty" bson:"technologies,omitempty"`
	FeaturedImageURL string           `json:"featuredImageUrl,omitempty" bson:"featured_image_url,omitempty"`
	AdditionalLinks  []Link           `json:"additionalLinks,omitempty" bson:"additional_links,omitempty"`
	Notes            string           `json:"notes,omitempty" bson:"notes,omitempty"`
	Passing          *bool            `json:"passing,omitempty" bson:"passing,omitempty"`
	Grade            string           `json:"grade,omitempty" bson:"grade,omitempty"`
	Report           string           `json:"report,omitempty" bson:"report,omitempty"`
	GradedAt         *time.Time       `json:"gradedAt,omitempty" bson:"graded_at,omitempty"`
	GradedBy         string           `json:"gradedBy,omitempty" bson:"graded_by,omitempty"`
	Status           SubmissionStatus `json:"status" bson:"status"`
	ShowcaseIncluded bool             `json:"showcaseIncluded" bson:"showcase_included"`
	ShowcasePriority int              `json:"showcasePriority,omitempty" bson:"showcase_priority,omitempty"`
	SubmittedAt      *time.Time       `json:"submittedAt,omitempty" bson:"submitted_at,omitempty"`
	LastStudentEdit  *time.Time       `json:"lastStudentEdit,omitempty" bson:"last_student_edit,omitempty"`
	EditHistory      []EditRecord     `json:"editHistory,omitempty" bson:"edit_history,omitempty"`
	CreatedAt        time.Time        `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" bson:"updated_at"`
}

// IsPassing reports a recorded passing grade.
func (s *Submission) IsPassing() bool {
	return s.Passing != nil && *s.Passing
}

var (
	instructorEditable = fieldSet("grade", "passing", "report", "gradedBy", "gradedAt", "status")
	studentAlways      = fieldSet("demoLink", "repoLink", "deployedUrl", "notes", "socialPost")
	studentDraftOnly   = fieldSet("title", "description", "week", "brainliftLink", "technologies", "featuredImageUrl")
	studentNever       = fieldSet("id", "studentProfileId", "studentId", "grade", "passing", "report",
		"gradedBy", "gradedAt", "createdAt", "updatedAt", "cohortId", "editHistory", "lastStudentEdit", "submittedAt")
	gradingFields = []string{"grade", "passing", "report", "gradedBy", "gradedAt"}
)

func fieldSet(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

func in(set map[string]struct{}, field string) bool {
	_, ok := set[field]
	return ok
}

// IsFieldEditable reports whether role may change field of a submission in status.
// Students edit links and notes at any time, content fields only while drafting and
// grading fields never.
func IsFieldEditable(field string, status SubmissionStatus, role authmodel.Role) bool {
	switch role {
	case authmodel.RoleAdmin:
		return true
	case authmodel.RoleInstructor:
		return in(instructorEditable, field)
	case authmodel.RoleStudent:
		switch {
		case in(studentAlways, field):
			return true
		case in(studentDraftOnly, field):
			return status == StatusDraft
		case in(studentNever, field):
			return false
		}
		return status == StatusDraft
	}
	return false
}

// CanSubmitForGrading reports whether role may hand in a submission in status.
func CanSubmitForGrading(status SubmissionStatus, role authmodel.Role) bool {
	if status != StatusDraft {
		return false
	}
	return role == authmodel.RoleStudent || role == authmodel.RoleAdmin
}

// CanGrade reports whether role may grade a submission in status.
func CanGrade(status SubmissionStatus, role authmodel.Role) bool {
	if status != StatusSubmitted {
		return false
	}
	return role == authmodel.RoleInstructor || role == authmodel.RoleAdmin
}

// ViewFor renders the submission as role is allowed to see it. Staff see everything,
// students see grading fields once graded, anyone else gets a summary.
func ViewFor(s *Submission, role authmodel.Role) (map[string]interface{}, error) {
	full, err := ToMap(s)
	if err != nil {
		return nil, err
	}
	switch role {
	case authmodel.RoleAdmin, authmodel.RoleInstructor:
		return full, nil
	case authmodel.RoleStudent:
		if s.Status != StatusGraded && s.Status != StatusArchived {
			for _, f := range gradingFields {
				delete(full, f)
			}
		}
		return full, nil
	}
	return map[string]interface{}{
		"id":        full["id"],
		"title":     full["title"],
		"status":    full["status"],
		"createdAt": full["createdAt"],
		"updatedAt": full["updatedAt"],
	}, nil
}

// ToMap converts v into its JSON object form.
func ToMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyChanges returns a copy of s with changes, keyed by JSON field name, applied.
func ApplyChanges(s *Submission, changes map[string]interface{}) (*Submission, error) {
	current, err := ToMap(s)
	if err != nil {
		return nil, err
	}
	for k, v := range changes {
		current[k] = v
	}
	raw, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	var out Submission
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
