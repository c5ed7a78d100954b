package model

import (
	"time"
)

// ActionType classifies what an actor did.
type ActionType string

const (
	ActionLogin        ActionType = "login"
	ActionLogout       ActionType = "logout"
	ActionCreate       ActionType = "create"
	ActionRead         ActionType = "read"
	ActionUpdate       ActionType = "update"
	ActionDelete       ActionType = "delete"
	ActionPublish      ActionType = "publish"
	ActionGrade        ActionType = "grade"
	ActionDelegate     ActionType = "delegate"
	ActionRevoke       ActionType = "revoke"
	ActionImport       ActionType = "import"
	ActionExport       ActionType = "export"
	ActionSystemChange ActionType = "system_change"
)

var actionTypes = map[ActionType]struct{}{
	ActionLogin: {}, ActionLogout: {}, ActionCreate: {}, ActionRead: {}, ActionUpdate: {},
	ActionDelete: {}, ActionPublish: {}, ActionGrade: {}, ActionDelegate: {}, ActionRevoke: {},
	ActionImport: {}, ActionExport: {}, ActionSystemChange: {},
}

// Valid reports whether a is a known action type.
func (a ActionType) Valid() bool {
	_, ok := actionTypes[a]
	return ok
}

// ResourceType classifies what an action touched.
type ResourceType string

const (
	ResourceUser              ResourceType = "user"
	ResourceStudentProfile    ResourceType = "student_profile"
	ResourceInstructorProfile ResourceType = "instructor_profile"
	ResourceSubmission        ResourceType = "submission"
	ResourceShowcase          ResourceType = "showcase"
	ResourceTemplate          ResourceType = "template"
	ResourceCohort            ResourceType = "cohort"
	ResourceSystemSettings    ResourceType = "system_settings"
	ResourceSession           ResourceType = "session"
	ResourceDelegation        ResourceType = "delegation"
	ResourceLMSIntegration    ResourceType = "lms_integration"
)

var resourceTypes = map[ResourceType]struct{}{
	ResourceUser: {}, ResourceStudentProfile: {}, ResourceInstructorProfile: {},
	ResourceSubmission: {}, ResourceShowcase: {}, ResourceTemplate: {}, ResourceCohort: {},
	ResourceSystemSettings: {}, ResourceSession: {}, ResourceDelegation: {},
	ResourceLMSIntegration: {},
}

// Valid reports whether r is a known resource type.
func (r ResourceType) Valid() bool {
	_, ok := resourceTypes[r]
	return ok
}

// AuditLog is one immutable entry of the audit trail.
type AuditLog struct {
	ID           string                 `json:"id" bson:"_id"`
	UserID       string                 `json:"userId" bson:"user_id"`
	UserEmail    string                 `json:"userEmail" bson:"user_email"`
	ActionType   ActionType             `json:"actionType" bson:"action_type"`
	ResourceType ResourceType           `json:"resourceType" bson:"resource_type"`
	ResourceID   string                 `json:"resourceId" bson:"resource_id"`
	Timestamp    time.Time              `json:"timestamp" bson:"timestamp"`
	IPAddress    string                 `json:"ipAddress" bson:"ip_address"`
	UserAgent    string                 `json:"userAgent" bson:"user_agent"`
	Details      string                 `json:"details" bson:"details"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// Filter narrows an audit query. Zero values match everything.
type Filter struct {
	UserID       string
	ActionType   ActionType
	ResourceType ResourceType
	ResourceID   string
	From         time.Time
	To           time.Time
	Limit        int64
}

const (
	DefaultQueryLimit int64 = 100
	MaxQueryLimit     int64 = 1000
)

// Normalize clamps the limit into [1, MaxQueryLimit].
func (f Filter) Normalize() Filter {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultQueryLimit
	case f.Limit > MaxQueryLimit:
		f.Limit = MaxQueryLimit
	}
	return f
}

// Matches reports whether entry satisfies the filter.
func (f Filter) Matches(entry *AuditLog) bool {
	if f.UserID != "" && entry.UserID != f.UserID {
		return false
	}
	if f.ActionType != "" && entry.ActionType != f.ActionType {
		return false
	}
	if f.ResourceType != "" && entry.ResourceType != f.ResourceType {
		return false
	}
	if f.ResourceID != "" && entry.ResourceID != f.ResourceID {
		return false
	}
	if !f.From.IsZero() && entry.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && entry.Timestamp.After(f.To) {
		return false
	}
	return true
}
