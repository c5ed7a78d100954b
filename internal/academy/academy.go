package academy

import (
	"fmt"

	academyhttp "showcase-platform/internal/academy/adapter/http"
	"showcase-platform/internal/academy/adapter/persistence/memory"
	"showcase-platform/internal/academy/adapter/persistence/mongodb"
	"showcase-platform/internal/academy/domain/repository"
	"showcase-platform/internal/academy/usecase"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/storage"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// Module wires cohorts, profiles, submissions and templates.
type Module struct {
	cohorts     *usecase.CohortUsecase
	profiles    *usecase.ProfileUsecase
	submissions *usecase.SubmissionUsecase
	templates   *usecase.TemplateUsecase
	handler     *academyhttp.Handler
}

type repositories struct {
	cohorts     repository.CohortRepository
	students    repository.StudentProfileRepository
	instructors repository.InstructorProfileRepository
	submissions repository.SubmissionRepository
	templates   repository.TemplateRepository
}

func openRepositories(db *mongo.Database, log logger.Logger) (repositories, error) {
	if db == nil {
		log.Warn("academy data kept in memory")
		return repositories{
			cohorts:     memory.NewCohortRepository(),
			students:    memory.NewStudentProfileRepository(),
			instructors: memory.NewInstructorProfileRepository(),
			submissions: memory.NewSubmissionRepository(),
			templates:   memory.NewTemplateRepository(),
		}, nil
	}
	repos, err := mongodb.NewRepositories(db)
	if err != nil {
		return repositories{}, fmt.Errorf("failed to create academy repositories: %w", err)
	}
	return repositories{
		cohorts:     repos.Cohorts,
		students:    repos.Students,
		instructors: repos.Instructors,
		submissions: repos.Submissions,
		templates:   repos.Templates,
	}, nil
}

// NewModule builds the academy on db, or on in-memory repositories when db is nil.
// Template files go to store. delegations may be nil.
func NewModule(
	db *mongo.Database,
	store storage.ObjectStore,
	delegations usecase.DelegationChecker,
	log logger.Logger,
	bus eventbus.EventBusInterface,
) (*Module, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}
	repos, err := openRepositories(db, log)
	if err != nil {
		return nil, err
	}

	m := &Module{
		cohorts:     usecase.NewCohortUsecase(repos.cohorts, repos.students, repos.instructors, repos.submissions, bus, log),
		profiles:    usecase.NewProfileUsecase(repos.students, repos.instructors, repos.cohorts, bus, log),
		submissions: usecase.NewSubmissionUsecase(repos.submissions, repos.students, delegations, bus, log),
		templates:   usecase.NewTemplateUsecase(repos.templates, store, bus, log),
	}
	m.handler = academyhttp.NewHandler(m.cohorts, m.profiles, m.submissions, m.templates)
	return m, nil
}

// RegisterRoutes mounts the academy API; protect runs before every route.
func (m *Module) RegisterRoutes(router fiber.Router, protect ...fiber.Handler) {
	m.handler.RegisterRoutes(router, protect...)
}

func (m *Module) Cohorts() *usecase.CohortUsecase { return m.cohorts }

func (m *Module) Profiles() *usecase.ProfileUsecase { return m.profiles }

// Submissions is used by the showcase to resolve selected projects.
func (m *Module) Submissions() *usecase.SubmissionUsecase { return m.submissions }

func (m *Module) Templates() *usecase.TemplateUsecase { return m.templates }
