package security

import (
	"context"
	"encoding/json"
	"fmt"

	"showcase-platform/internal/auth/domain/model"
	apperrors "showcase-platform/internal/shared/errors"
	"showcase-platform/internal/shared/utils"

	"github.com/google/cel-go/cel"
)

// ResourceType names a resource governed by field rules.
type ResourceType string

const (
	ResourceStudentProfile    ResourceType = "studentProfile"
	ResourceInstructorProfile ResourceType = "instructorProfile"
	ResourceSubmission        ResourceType = "submission"
	ResourceShowcase          ResourceType = "showcase"
	ResourceTemplate          ResourceType = "template"
	ResourceCohort            ResourceType = "cohort"
	ResourceSystemSettings    ResourceType = "systemSettings"
)

// AccessType is read or write.
type AccessType string

const (
	AccessRead  AccessType = "read"
	AccessWrite AccessType = "write"
)

// Subject is the user a field decision is made for.
type Subject struct {
	ID   string
	Role model.Role
}

// FieldRule grants access to the listed roles when Condition, a CEL expression over
// resource, user and newValue, holds. An empty condition always holds.
type FieldRule struct {
	Roles     []model.Role
	Condition string
}

// FieldRules holds the read and write rules of one field; nil means no access.
type FieldRules struct {
	Read  *FieldRule
	Write *FieldRule
}

var (
	everyone       = []model.Role{model.RoleAdmin, model.RoleInstructor, model.RoleStudent}
	staff          = []model.Role{model.RoleAdmin, model.RoleInstructor}
	adminOnly      = []model.Role{model.RoleAdmin}
	ownerOrAdmin   = []model.Role{model.RoleAdmin, model.RoleStudent}
	readAll        = &FieldRule{Roles: everyone}
	ownShowcase    = `user.role != "student" || resource.userId == user.id`
	studentSubmits = `user.role != "student" || (resource.status == "draft" && newValue == "submitted")`
)

func ownerWrite() *FieldRule {
	return &FieldRule{Roles: ownerOrAdmin, Condition: ownShowcase}
}

// DefaultFieldRules is the platform's field access table. Field names are the
// JSON names of the corresponding models.
func DefaultFieldRules() map[ResourceType]map[string]FieldRules {
	return map[ResourceType]map[string]FieldRules{
		ResourceSubmission: {
			"id":          {Read: readAll},
			"studentId":   {Read: &FieldRule{Roles: staff}},
			"week":        {Read: readAll, Write: &FieldRule{Roles: staff, Condition: `resource.status == "draft"`}},
			"demoLink":    {Read: readAll, Write: &FieldRule{Roles: everyone}},
			"repoLink":    {Read: readAll, Write: &FieldRule{Roles: everyone}},
			"deployedUrl": {Read: readAll, Write: &FieldRule{Roles: everyone}},
			"passing":     {Read: readAll, Write: &FieldRule{Roles: staff}},
			"grade":       {Read: readAll, Write: &FieldRule{Roles: staff}},
			"notes":       {Read: readAll, Write: &FieldRule{Roles: everyone}},
			"report":      {Read: readAll, Write: &FieldRule{Roles: staff}},
			"status":      {Read: readAll, Write: &FieldRule{Roles: staff, Condition: studentSubmits}},
			"createdAt":   {Read: readAll},
			"updatedAt":   {Read: readAll},
			"gradedAt":    {Read: readAll},
			"gradedBy":    {Read: readAll},
			"cohortId":    {Read: readAll, Write: &FieldRule{Roles: adminOnly}},
		},
		ResourceShowcase: {
			"id":               {Read: readAll},
			"userId":           {Read: readAll},
			"templateId":       {Read: readAll, Write: ownerWrite()},
			"profile":          {Read: readAll, Write: ownerWrite()},
			"projects":         {Read: readAll, Write: ownerWrite()},
			"experience":       {Read: readAll, Write: ownerWrite()},
			"career":           {Read: readAll, Write: ownerWrite()},
			"blogs":            {Read: readAll, Write: ownerWrite()},
			"customization":    {Read: readAll, Write: ownerWrite()},
			"visibility":       {Read: readAll, Write: ownerWrite()},
			"analytics":        {Read: &FieldRule{Roles: everyone, Condition: ownShowcase}},
			"publication":      {Read: readAll, Write: ownerWrite()},
			"meta":             {Read: readAll, Write: ownerWrite()},
			"previewData":      {Read: &FieldRule{Roles: everyone, Condition: ownShowcase}},
			"username":         {Read: readAll},
			"studentProfileId": {Read: readAll},
			"createdAt":        {Read: readAll},
			"updatedAt":        {Read: readAll},
		},
		ResourceStudentProfile:    {"id": {Read: readAll}},
		ResourceInstructorProfile: {"id": {Read: &FieldRule{Roles: staff}}},
		ResourceTemplate:          {"id": {Read: readAll}},
		ResourceCohort:            {"id": {Read: &FieldRule{Roles: staff}}},
		ResourceSystemSettings:    {"id": {Read: &FieldRule{Roles: adminOnly}}},
	}
}

type compiledRule struct {
	roles   []model.Role
	program cel.Program
}

// FieldAccessControl evaluates the field table. Conditions are compiled once.
type FieldAccessControl struct {
	rules map[ResourceType]map[string]map[AccessType]*compiledRule
}

func newCELEnvironment() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("resource", cel.DynType),
		cel.Variable("user", cel.DynType),
		cel.Variable("newValue", cel.DynType),
	)
}

// NewFieldAccessControl compiles rules; nil uses DefaultFieldRules.
func NewFieldAccessControl(rules map[ResourceType]map[string]FieldRules) (*FieldAccessControl, error) {
	if rules == nil {
		rules = DefaultFieldRules()
	}
	env, err := newCELEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	fac := &FieldAccessControl{rules: make(map[ResourceType]map[string]map[AccessType]*compiledRule)}
	for rt, fields := range rules {
		fac.rules[rt] = make(map[string]map[AccessType]*compiledRule)
		for field, fr := range fields {
			compiled := make(map[AccessType]*compiledRule)
			for access, rule := range map[AccessType]*FieldRule{AccessRead: fr.Read, AccessWrite: fr.Write} {
				if rule == nil {
					continue
				}
				cr := &compiledRule{roles: rule.Roles}
				if rule.Condition != "" {
					ast, issues := env.Compile(rule.Condition)
					if issues != nil && issues.Err() != nil {
						return nil, fmt.Errorf("invalid condition for %s.%s (%s): %w", rt, field, access, issues.Err())
					}
					prg, err := env.Program(ast)
					if err != nil {
						return nil, fmt.Errorf("failed to create CEL program for %s.%s: %w", rt, field, err)
					}
					cr.program = prg
				}
				compiled[access] = cr
			}
			fac.rules[rt][field] = compiled
		}
	}
	return fac, nil
}

// MustFieldAccessControl is NewFieldAccessControl with the default table, panicking
// on error.
func MustFieldAccessControl() *FieldAccessControl {
	fac, err := NewFieldAccessControl(nil)
	if err != nil {
		panic(err)
	}
	return fac
}

// HasFieldAccess reports whether user may access field of resource. Admins always may;
// unknown resources, fields and access types are denied. A condition that fails to
// evaluate denies.
func (f *FieldAccessControl) HasFieldAccess(user Subject, rt ResourceType, resource map[string]interface{}, field string, access AccessType, newValue interface{}) bool {
	if user.Role == model.RoleAdmin {
		return true
	}
	rule, ok := f.rules[rt][field][access]
	if !ok {
		return false
	}

	allowed := false
	for _, r := range rule.roles {
		if r == user.Role {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}
	if rule.program == nil {
		return true
	}

	if resource == nil {
		resource = map[string]interface{}{}
	}
	out, _, err := rule.program.Eval(map[string]interface{}{
		"resource": resource,
		"user":     map[string]interface{}{"id": user.ID, "role": string(user.Role)},
		"newValue": newValue,
	})
	if err != nil {
		return false
	}
	result, ok := out.Value().(bool)
	return ok && result
}

// FilterAccessibleFields returns the subset of resource the user may access.
func (f *FieldAccessControl) FilterAccessibleFields(user Subject, rt ResourceType, resource map[string]interface{}, access AccessType) map[string]interface{} {
	out := make(map[string]interface{}, len(resource))
	for field, v := range resource {
		if f.HasFieldAccess(user, rt, resource, field, access, nil) {
			out[field] = v
		}
	}
	return out
}

// ValidateUpdate checks every changed field for write access. It returns nil or a
// *errors.ValidationErrors naming each refused field.
func (f *FieldAccessControl) ValidateUpdate(user Subject, rt ResourceType, resource, changes map[string]interface{}) error {
	if user.Role == model.RoleAdmin {
		return nil
	}
	verrs := apperrors.NewValidationErrors()
	for field, v := range changes {
		if !f.HasFieldAccess(user, rt, resource, field, AccessWrite, v) {
			verrs.Add(field, fmt.Sprintf("You don't have permission to update the %s field.", field), v)
		}
	}
	if verrs.HasErrors() {
		return verrs
	}
	return nil
}

// ToResourceMap converts a model into the map form rules are evaluated against,
// keyed by JSON field names.
func ToResourceMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubjectFromContext reads the caller placed on ctx by the auth middleware. Anonymous
// callers are guests.
func SubjectFromContext(ctx context.Context) Subject {
	role, _ := model.ParseRole(utils.GetUserRoleOrDefault(ctx, string(model.RoleGuest)))
	return Subject{ID: utils.GetUserIDOrDefault(ctx, ""), Role: role}
}
