package security

import (
	"context"
	"testing"

	"showcase-platform/internal/auth/domain/model"
	apperrors "showcase-platform/internal/shared/errors"
	"showcase-platform/internal/shared/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type FieldAccessTestSuite struct {
	suite.Suite
	fac        *FieldAccessControl
	admin      Subject
	instructor Subject
	student    Subject
}

func (suite *FieldAccessTestSuite) SetupTest() {
	fac, err := NewFieldAccessControl(nil)
	require.NoError(suite.T(), err)
	suite.fac = fac
	suite.admin = Subject{ID: "admin-1", Role: model.RoleAdmin}
	suite.instructor = Subject{ID: "instructor-1", Role: model.RoleInstructor}
	suite.student = Subject{ID: "student-1", Role: model.RoleStudent}
}

func (suite *FieldAccessTestSuite) TestAdminHasAccessToEverything() {
	assert.True(suite.T(), suite.fac.HasFieldAccess(suite.admin, ResourceSubmission, nil, "anything", AccessWrite, nil))
	assert.True(suite.T(), suite.fac.HasFieldAccess(suite.admin, "unknown", nil, "id", AccessRead, nil))
}

func (suite *FieldAccessTestSuite) TestUnknownResourceFieldOrAccessDenied() {
	draft := map[string]interface{}{"status": "draft"}
	assert.False(suite.T(), suite.fac.HasFieldAccess(suite.student, "unknown", draft, "id", AccessRead, nil))
	assert.False(suite.T(), suite.fac.HasFieldAccess(suite.student, ResourceSubmission, draft, "nope", AccessRead, nil))
	assert.False(suite.T(), suite.fac.HasFieldAccess(suite.student, ResourceSubmission, draft, "id", AccessWrite, nil))
}

func (suite *FieldAccessTestSuite) TestSubmissionRules() {
	draft := map[string]interface{}{"status": "draft"}
	submitted := map[string]interface{}{"status": "submitted"}

	assert.True(suite.T(), suite.fac.HasFieldAccess(suite.student, ResourceSubmission, submitted, "demoLink", AccessWrite, "x"))
	assert.False(suite.T(), suite.fac.HasFieldAccess(suite.student, ResourceSubmission, draft, "grade", AccessWrite, 90))
	assert.True(suite.T(), suite.fac.HasFieldAccess(suite.instructor, ResourceSubmission, submitted, "grade", AccessWrite, 90))

	assert.True(suite.T(), suite.fac.HasFieldAccess(suite.instructor, ResourceSubmission, draft, "week", AccessWrite, 3))
	assert.False(suite.T(), suite.fac.HasFieldAccess(suite.instructor, ResourceSubmission, submitted, "week", AccessWrite, 3))

	assert.False(suite.T(), suite.fac.HasFieldAccess(suite.student, ResourceSubmission, draft, "studentId", AccessRead, nil))
	assert.False(suite.T(), suite.fac.HasFieldAccess(suite.instructor, ResourceSubmission, draft, "cohortId", AccessWrite, "c2"))
}

func (suite *FieldAccessTestSuite) TestShowcaseOwnership() {
	own := map[string]interface{}{"userId": "student-1"}
	other := map[string]interface{}{"userId": "student-2"}

	assert.True(suite.T(), suite.fac.HasFieldAccess(suite.student, ResourceShowcase, own, "profile", AccessWrite, nil))
	assert.False(suite.T(), suite.fac.HasFieldAccess(suite.student, ResourceShowcase, other, "profile", AccessWrite, nil))
	assert.False(suite.T(), suite.fac.HasFieldAccess(suite.instructor, ResourceShowcase, own, "profile", AccessWrite, nil))

	assert.True(suite.T(), suite.fac.HasFieldAccess(suite.student, ResourceShowcase, own, "analytics", AccessRead, nil))
	assert.False(suite.T(), suite.fac.HasFieldAccess(suite.student, ResourceShowcase, other, "analytics", AccessRead, nil))
	assert.True(suite.T(), suite.fac.HasFieldAccess(suite.instructor, ResourceShowcase, other, "analytics", AccessRead, nil))
}

func (suite *FieldAccessTestSuite) TestMissingResourceFieldDenies() {
	assert.False(suite.T(), suite.fac.HasFieldAccess(suite.student, ResourceShowcase, nil, "profile", AccessWrite, nil))
}

func (suite *FieldAccessTestSuite) TestFilterAccessibleFields() {
	resource := map[string]interface{}{
		"id":        "s1",
		"studentId": "student-1",
		"status":    "draft",
		"secret":    "x",
	}
	filtered := suite.fac.FilterAccessibleFields(suite.student, ResourceSubmission, resource, AccessRead)
	assert.Equal(suite.T(), map[string]interface{}{"id": "s1", "status": "draft"}, filtered)

	assert.Equal(suite.T(), resource, suite.fac.FilterAccessibleFields(suite.admin, ResourceSubmission, resource, AccessRead))
}

func (suite *FieldAccessTestSuite) TestValidateUpdate() {
	resource := map[string]interface{}{"id": "s1", "status": "draft"}

	err := suite.fac.ValidateUpdate(suite.student, ResourceSubmission, resource, map[string]interface{}{
		"demoLink": "https://demo",
		"grade":    100,
	})
	require.Error(suite.T(), err)
	var verrs *apperrors.ValidationErrors
	require.ErrorAs(suite.T(), err, &verrs)
	require.Len(suite.T(), verrs.Errors, 1)
	assert.Equal(suite.T(), "grade", verrs.Errors[0].Field)
	assert.Equal(suite.T(), "You don't have permission to update the grade field.", verrs.Errors[0].Message)

	assert.NoError(suite.T(), suite.fac.ValidateUpdate(suite.admin, ResourceSubmission, resource, map[string]interface{}{"grade": 100}))
}

func (suite *FieldAccessTestSuite) TestInvalidConditionFailsCompilation() {
	_, err := NewFieldAccessControl(map[ResourceType]map[string]FieldRules{
		ResourceCohort: {"name": {Write: &FieldRule{Roles: []model.Role{model.RoleInstructor}, Condition: "resource.("}}},
	})
	assert.Error(suite.T(), err)
}

func TestFieldAccessTestSuite(t *testing.T) {
	suite.Run(t, new(FieldAccessTestSuite))
}

func TestToResourceMap(t *testing.T) {
	type sample struct {
		ID     string `json:"id"`
		UserID string `json:"userId"`
	}
	m, err := ToResourceMap(sample{ID: "1", UserID: "u"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"id": "1", "userId": "u"}, m)
}

func TestSubjectFromContext(t *testing.T) {
	ctx := utils.WithUserRole(utils.WithUserID(context.Background(), "u-1"), "Instructor")
	assert.Equal(t, Subject{ID: "u-1", Role: model.RoleInstructor}, SubjectFromContext(ctx))
	assert.Equal(t, Subject{Role: model.RoleGuest}, SubjectFromContext(context.Background()))
}
