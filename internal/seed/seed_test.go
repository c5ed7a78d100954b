package seed_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"showcase-platform/internal/academy/adapter/persistence/memory"
	academyusecase "showcase-platform/internal/academy/usecase"
	authmodel "showcase-platform/internal/auth/domain/model"
	authusecase "showcase-platform/internal/auth/usecase"
	"showcase-platform/internal/security"
	"showcase-platform/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
users:
  - email: grace@example.com
    password: Sup3r$ecret
    first_name: Grace
    last_name: Hopper
    roles: [instructor]
    specialties: [compilers]
  - email: ada@example.com
    password: Sup3r$ecret
    first_name: Ada
    last_name: Lovelace
    roles: [student]
    cohort: fall
  - email: taken@example.com
    password: Sup3r$ecret
    first_name: Old
    last_name: Account
    cohort: fall
cohorts:
  - key: fall
    name: Fall 2024
    start_date: 2024-09-02
    status: active
    instructors: [grace@example.com]
`

type fakeProvisioner struct {
	existing map[string]bool
	n        int
}

func (f *fakeProvisioner) CreateUser(_ context.Context, req authusecase.ProvisionRequest) (*authmodel.User, error) {
	if f.existing[req.Email] {
		return nil, authusecase.ErrEmailTaken
	}
	f.n++
	roles := req.Roles
	if len(roles) == 0 {
		roles = []authmodel.Role{authmodel.RoleStudent}
	}
	return &authmodel.User{ID: fmt.Sprintf("user-%d", f.n), Email: req.Email, Roles: roles}, nil
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	cohortRepo := memory.NewCohortRepository()
	students := memory.NewStudentProfileRepository()
	instructors := memory.NewInstructorProfileRepository()
	cohorts := academyusecase.NewCohortUsecase(cohortRepo, students, instructors, memory.NewSubmissionRepository(), nil, nil)
	profiles := academyusecase.NewProfileUsecase(students, instructors, cohortRepo, nil, nil)

	f, err := seed.Parse(strings.NewReader(fixture))
	require.NoError(t, err)

	users := &fakeProvisioner{existing: map[string]bool{"taken@example.com": true}}
	res, err := seed.NewSeeder(users, cohorts, profiles, nil).Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, &seed.Result{Users: 2, SkippedUsers: 1, Cohorts: 1, StudentProfiles: 1, InstructorProfiles: 1}, res)

	all, err := cohorts.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"user-1"}, all[0].Instructors)

	grace, err := profiles.GetInstructorProfileByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{all[0].ID}, grace.AssignedCohorts)

	admin := security.Subject{ID: "system", Role: authmodel.RoleAdmin}
	enrolled, err := profiles.ListStudents(ctx, admin, all[0].ID)
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, "user-2", enrolled[0].UserID)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown cohort", "users:\n  - email: a@example.com\n    cohort: nope\n", "unknown cohort"},
		{"missing email", "users:\n  - password: x\n", "email is required"},
		{"duplicate key", "cohorts:\n  - key: a\n    name: A\n  - key: a\n    name: B\n", "duplicate key"},
		{"unknown field", "users:\n  - email: a@example.com\n    nickname: x\n", "field nickname not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seed.Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApplyRejectsUnknownRole(t *testing.T) {
	f := &seed.File{Users: []seed.UserYAML{{Email: "a@example.com", Roles: []string{"root"}}}}
	_, err := seed.NewSeeder(&fakeProvisioner{}, nil, nil, nil).Apply(context.Background(), f)
	assert.ErrorIs(t, err, authusecase.ErrInvalidRole)
}
