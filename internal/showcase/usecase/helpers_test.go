package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	authmodel "showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/security"
	"showcase-platform/internal/showcase/adapter/persistence/memory"
	"showcase-platform/internal/showcase/config"
	"showcase-platform/internal/showcase/domain/model"
	"showcase-platform/internal/showcase/usecase"
	apperrors "showcase-platform/internal/shared/errors"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/storage"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	admin      = security.Subject{ID: "admin-1", Role: authmodel.RoleAdmin}
	instructor = security.Subject{ID: "inst-1", Role: authmodel.RoleInstructor}
	student    = security.Subject{ID: "stud-1", Role: authmodel.RoleStudent}
	classmate  = security.Subject{ID: "stud-2", Role: authmodel.RoleStudent}
	guest      = security.Subject{Role: authmodel.RoleGuest}
)

// testClock is a settable time source.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type stubStudents map[string]*usecase.Student

func (s stubStudents) Student(_ context.Context, userID string) (*usecase.Student, error) {
	if st, ok := s[userID]; ok {
		return st, nil
	}
	return nil, apperrors.NewNotFoundError("profile")
}

type mockProjects struct{ mock.Mock }

func (m *mockProjects) ShowcaseProjects(ctx context.Context, userID string) ([]model.Project, error) {
	args := m.Called(ctx, userID)
	projects, _ := args.Get(0).([]model.Project)
	return projects, args.Error(1)
}

type mockScheduler struct{ mock.Mock }

func (m *mockScheduler) ScheduleExpiry(ctx context.Context, userID string, ts int64, after time.Duration) error {
	return m.Called(ctx, userID, ts, after).Error(0)
}

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
	clock     *testClock
	cfg       *config.Config
	store     *storage.MemoryStore
	showcases *usecase.ShowcaseUsecase
	publisher *usecase.Publisher
	analytics *usecase.AnalyticsUsecase
	projects  *mockProjects
	scheduler *mockScheduler
	events    *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	cfg := config.Default()
	store := storage.NewMemoryStore()
	showcaseRepo := memory.NewShowcaseRepository()
	analyticsRepo := memory.NewAnalyticsRepository()

	bus := eventbus.NewEventBus(logger.NewNop())
	rec := &recorder{}
	for _, typ := range []string{
		eventbus.EventTypeResourceCreated, eventbus.EventTypeResourceUpdated, eventbus.EventTypeResourceDeleted,
		eventbus.EventTypeShowcasePublished, eventbus.EventTypeShowcaseUnpublished, eventbus.EventTypePreviewCreated,
	} {
		bus.Subscribe(typ, rec.handle)
	}

	students := stubStudents{
		student.ID:   {ProfileID: "sp-1", FullName: "Ada Lovelace", Title: "Engineer", SocialLinks: map[string]string{"github": "ada"}},
		classmate.ID: {ProfileID: "sp-2", FullName: "Grace Hopper"},
	}
	projects := &mockProjects{}
	scheduler := &mockScheduler{}
	log := logger.NewNop()

	return &fixture{
		clock:     clk,
		cfg:       cfg,
		store:     store,
		showcases: usecase.NewShowcaseUsecase(showcaseRepo, analyticsRepo, store, students, projects, nil, nil, bus, log).WithClock(clk.Now),
		publisher: usecase.NewPublisher(cfg, showcaseRepo, store, scheduler, bus, log).WithClock(clk.Now),
		analytics: usecase.NewAnalyticsUsecase(cfg, showcaseRepo, analyticsRepo, log).WithClock(clk.Now),
		projects:  projects,
		scheduler: scheduler,
		events:    rec,
	}
}

// create makes a showcase for owner with no selected projects.
func (f *fixture) create(t *testing.T, owner security.Subject, username string) *model.Showcase {
	t.Helper()
	f.projects.On("ShowcaseProjects", mock.Anything, owner.ID).Return([]model.Project{}, nil).Once()
	sc, err := f.showcases.Create(context.Background(), owner, usecase.CreateShowcaseRequest{Username: username})
	require.NoError(t, err)
	return sc
}

// publishPublic makes the showcase public and publishes a small site.
func (f *fixture) publishPublic(t *testing.T, owner security.Subject, sc *model.Showcase) {
	t.Helper()
	_, err := f.showcases.Update(context.Background(), owner, sc.ID, map[string]interface{}{
		"visibility": map[string]interface{}{"isPublic": true, "accessType": "public"},
	})
	require.NoError(t, err)
	_, err = f.publisher.Publish(context.Background(), owner, sc.ID, model.Bundle{HTML: "<h1>hi</h1>", CSS: "h1{}"})
	require.NoError(t, err)
}
