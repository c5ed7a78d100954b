package audit

import (
	"showcase-platform/internal/audit/adapter/persistence/memory"
	"showcase-platform/internal/audit/adapter/persistence/mongodb"
	"showcase-platform/internal/audit/adapter/sink"
	audithttp "showcase-platform/internal/audit/adapter/http"
	"showcase-platform/internal/audit/domain/repository"
	"showcase-platform/internal/audit/usecase"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// Config selects the audit sinks.
type Config struct {
	LogPath       string `env:"AUDIT_LOG_FILE"`
	LogMaxSizeMB  int    `env:"AUDIT_LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"AUDIT_LOG_MAX_BACKUPS" envDefault:"10"`
	LogMaxAgeDays int    `env:"AUDIT_LOG_MAX_AGE_DAYS" envDefault:"90"`
	JSONSink      bool   `env:"AUDIT_JSON_SINK" envDefault:"true"`
}

// Module wires the audit trail.
type Module struct {
	recorder *usecase.Recorder
	handler  *audithttp.Handler
	zapSink  *sink.ZapSink
}

// NewModule stores entries in db, or in memory when db is nil, and subscribes to bus.
func NewModule(db *mongo.Database, cfg Config, log logger.Logger, bus eventbus.EventBusInterface) (*Module, error) {
	var repo repository.AuditRepository
	if db != nil {
		mrepo, err := mongodb.NewMongoAuditRepository(db)
		if err != nil {
			return nil, err
		}
		repo = mrepo
	} else {
		log.Warn("audit trail kept in memory")
		repo = memory.NewAuditRepository()
	}

	m := &Module{}
	var sinks []repository.Sink
	if cfg.JSONSink {
		m.zapSink = sink.NewFileSink(sink.FileConfig{
			Path:       cfg.LogPath,
			MaxSizeMB:  cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAgeDays: cfg.LogMaxAgeDays,
			Compress:   true,
		})
		sinks = append(sinks, m.zapSink)
	}

	m.recorder = usecase.NewRecorder(repo, log, sinks...)
	if bus != nil {
		m.recorder.Subscribe(bus)
	}
	m.handler = audithttp.NewHandler(m.recorder)
	return m, nil
}

func (m *Module) Recorder() *usecase.Recorder { return m.recorder }

// RegisterRoutes mounts the admin query endpoint behind guards.
func (m *Module) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	m.handler.RegisterRoutes(router, guards...)
}

// Stop flushes the JSON sink.
func (m *Module) Stop() {
	if m.zapSink != nil {
		_ = m.zapSink.Sync()
	}
}
