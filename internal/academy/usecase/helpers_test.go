package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"showcase-platform/internal/academy/adapter/persistence/memory"
	"showcase-platform/internal/academy/domain/model"
	"showcase-platform/internal/academy/usecase"
	authmodel "showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/security"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

var (
	admin      = security.Subject{ID: "admin-1", Role: authmodel.RoleAdmin}
	instructor = security.Subject{ID: "inst-1", Role: authmodel.RoleInstructor}
	student    = security.Subject{ID: "stud-1", Role: authmodel.RoleStudent}
	classmate  = security.Subject{ID: "stud-2", Role: authmodel.RoleStudent}
	guest      = security.Subject{Role: authmodel.RoleGuest}
)

type mockDelegations struct {
	mock.Mock
}

func (m *mockDelegations) HasDelegatedPermission(ctx context.Context, userID, permission, resourceType, resourceID string) (bool, error) {
	args := m.Called(ctx, userID, permission, resourceType, resourceID)
	return args.Bool(0), args.Error(1)
}

// recorder collects every published activity event.
type recorder struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (r *recorder) handle(_ context.Context, e eventbus.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type())
	}
	return out
}

func (r *recorder) last() eventbus.ActivityPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1].Data().(eventbus.ActivityPayload)
}

type fixture struct {
	cohorts     *usecase.CohortUsecase
	profiles    *usecase.ProfileUsecase
	submissions *usecase.SubmissionUsecase
	delegations *mockDelegations
	events      *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cohortRepo := memory.NewCohortRepository()
	studentRepo := memory.NewStudentProfileRepository()
	instructorRepo := memory.NewInstructorProfileRepository()
	submissionRepo := memory.NewSubmissionRepository()

	bus := eventbus.NewEventBus(logger.NewNop())
	rec := &recorder{}
	for _, typ := range []string{
		eventbus.EventTypeResourceCreated, eventbus.EventTypeResourceUpdated, eventbus.EventTypeResourceDeleted,
		eventbus.EventTypeSubmissionCreated, eventbus.EventTypeSubmissionSubmitted, eventbus.EventTypeSubmissionGraded,
	} {
		bus.Subscribe(typ, rec.handle)
	}

	delegations := &mockDelegations{}
	log := logger.NewNop()
	return &fixture{
		cohorts:     usecase.NewCohortUsecase(cohortRepo, studentRepo, instructorRepo, submissionRepo, bus, log).WithClock(clock),
		profiles:    usecase.NewProfileUsecase(studentRepo, instructorRepo, cohortRepo, bus, log).WithClock(clock),
		submissions: usecase.NewSubmissionUsecase(submissionRepo, studentRepo, delegations, bus, log).WithClock(clock),
		delegations: delegations,
		events:      rec,
	}
}

func (f *fixture) cohort(t *testing.T, instructors ...string) *model.Cohort {
	t.Helper()
	c, err := f.cohorts.Create(context.Background(), admin, usecase.CohortRequest{
		Name:        "Spring 2024",
		StartDate:   time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		Instructors: instructors,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) studentProfile(t *testing.T, userID, cohortID string) *model.StudentProfile {
	t.Helper()
	p, err := f.profiles.CreateStudentProfile(context.Background(), admin, usecase.StudentProfileRequest{
		UserID:    userID,
		FirstName: "Ada",
		LastName:  "Lovelace",
		CohortID:  cohortID,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) draft(t *testing.T, owner security.Subject) *model.Submission {
	t.Helper()
	s, err := f.submissions.Create(context.Background(), owner, usecase.CreateSubmissionRequest{
		Title:    "Chat app",
		Week:     2,
		RepoLink: "https://github.com/ada/chat",
	})
	require.NoError(t, err)
	return s
}
