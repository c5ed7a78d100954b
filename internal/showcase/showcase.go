package showcase

import (
	"fmt"

	"showcase-platform/internal/academy"
	"showcase-platform/internal/security"
	showcasehttp "showcase-platform/internal/showcase/adapter/http"
	"showcase-platform/internal/showcase/adapter/persistence/memory"
	"showcase-platform/internal/showcase/adapter/persistence/mongodb"
	"showcase-platform/internal/showcase/config"
	"showcase-platform/internal/showcase/domain/repository"
	"showcase-platform/internal/showcase/jobs"
	"showcase-platform/internal/showcase/usecase"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/storage"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// Options configures the showcase module. Only Config is required to be meaningful;
// every other field has an in-process fallback.
type Options struct {
	Config *config.Config
	// DB holds showcases and analytics; nil keeps them in memory.
	DB *mongo.Database
	// Store receives published sites and previews; nil keeps them in memory.
	Store storage.ObjectStore
	// Academy supplies student profiles, selected projects and templates.
	Academy *academy.Module
	// RedisURL enables asynq preview expiry; empty uses in-process timers.
	RedisURL string
	Fields   *security.FieldAccessControl
	Log      logger.Logger
	Bus      eventbus.EventBusInterface
}

// Module wires showcases, publishing and analytics.
type Module struct {
	showcases *usecase.ShowcaseUsecase
	publisher *usecase.Publisher
	analytics *usecase.AnalyticsUsecase
	handler   *showcasehttp.Handler
	jobs      *jobs.Manager
	timers    *jobs.TimerScheduler
	log       logger.Logger
}

func openRepositories(db *mongo.Database, log logger.Logger) (repository.ShowcaseRepository, repository.AnalyticsRepository, error) {
	if db == nil {
		log.Warn("showcase data kept in memory")
		return memory.NewShowcaseRepository(), memory.NewAnalyticsRepository(), nil
	}
	showcases, err := mongodb.NewShowcaseRepository(db)
	if err != nil {
		return nil, nil, err
	}
	analytics, err := mongodb.NewAnalyticsRepository(db)
	if err != nil {
		return nil, nil, err
	}
	return showcases, analytics, nil
}

func NewModule(opts Options) (*Module, error) {
	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	store := opts.Store
	if store == nil {
		store = storage.NewMemoryStore()
	}
	showcases, analytics, err := openRepositories(opts.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create showcase repositories: %w", err)
	}

	var (
		students  usecase.StudentDirectory
		projects  usecase.ProjectSource
		templates usecase.TemplateCatalog
	)
	if opts.Academy != nil {
		bridge := academyBridge{academy: opts.Academy}
		students, projects, templates = bridge, bridge, bridge
	}

	m := &Module{log: log.WithComponent("showcase")}
	m.showcases = usecase.NewShowcaseUsecase(showcases, analytics, store, students, projects, templates, opts.Fields, opts.Bus, log)
	m.publisher = usecase.NewPublisher(cfg, showcases, store, nil, opts.Bus, log)
	m.analytics = usecase.NewAnalyticsUsecase(cfg, showcases, analytics, log)

	if opts.RedisURL != "" {
		manager, err := jobs.NewManager(opts.RedisURL, cfg.JobQueue, cfg.JobConcurrency, log)
		if err != nil {
			return nil, err
		}
		manager.Register(m.publisher)
		m.jobs = manager
		m.publisher.SetScheduler(manager)
	} else {
		m.log.Warn("preview expiry runs on in-process timers")
		m.timers = jobs.NewTimerScheduler(m.publisher, log)
		m.publisher.SetScheduler(m.timers)
	}

	m.handler = showcasehttp.NewHandler(cfg, m.showcases, m.publisher, m.analytics)
	return m, nil
}

// RegisterRoutes mounts the authenticated showcase API.
func (m *Module) RegisterRoutes(router fiber.Router, protect ...fiber.Handler) {
	m.handler.RegisterRoutes(router, protect...)
}

// RegisterPublicRoutes mounts /p/:username.
func (m *Module) RegisterPublicRoutes(router fiber.Router, middleware ...fiber.Handler) {
	m.handler.RegisterPublicRoutes(router, middleware...)
}

// Start runs the preview expiry worker when Redis is configured.
func (m *Module) Start() {
	if m.jobs != nil {
		m.jobs.Start()
		m.log.Info("Preview expiry worker started")
	}
}

func (m *Module) Shutdown() error {
	if m.timers != nil {
		m.timers.Stop()
	}
	if m.jobs != nil {
		return m.jobs.Shutdown()
	}
	return nil
}

func (m *Module) Showcases() *usecase.ShowcaseUsecase { return m.showcases }

func (m *Module) Publisher() *usecase.Publisher { return m.publisher }

func (m *Module) Analytics() *usecase.AnalyticsUsecase { return m.analytics }
