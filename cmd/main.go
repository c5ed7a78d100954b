package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"showcase-platform/internal/audit"
	"showcase-platform/internal/auth/config"
	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/di"
	"showcase-platform/internal/security"
	showcaseconfig "showcase-platform/internal/showcase/config"
	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/redisclient"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const apiPrefix = "/api/v1"

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string `env:"SERVER_HOST" envDefault:"localhost"`
	Port         string `env:"SERVER_PORT" envDefault:"8080"`
	AllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	BodyLimitMB  int    `env:"BODY_LIMIT_MB" envDefault:"60"`
}

// StoreConfig locates MongoDB and, optionally, Redis.
type StoreConfig struct {
	MongoURI     string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"showcase_platform"`
	Redis        redisclient.Config
}

// LogConfig selects the application log level, format and rotating file.
type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"LOG_FORMAT" envDefault:"text"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	serverCfg := &ServerConfig{}
	storeCfg := &StoreConfig{}
	logCfg := &LogConfig{}
	auditCfg := audit.Config{}
	for _, target := range []interface{}{serverCfg, storeCfg, logCfg, &auditCfg} {
		if err := env.Parse(target); err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	authConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load auth configuration: %v", err)
	}
	securityCfg, err := security.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load security configuration: %v", err)
	}
	showcaseCfg, err := showcaseconfig.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load showcase configuration: %v", err)
	}

	appLogger := logger.NewLoggerWithFile(logCfg.Level, logCfg.Format, logger.FileConfig{
		Path:       logCfg.File,
		MaxSizeMB:  logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
		MaxAgeDays: logCfg.MaxAgeDays,
		Compress:   true,
	})
	appLogger.Info("Application configuration loaded successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(storeCfg.MongoURI))
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Errorf("Failed to disconnect MongoDB: %v", err)
		}
	}()
	if err := mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Fatalf("Failed to ping MongoDB: %v", err)
	}
	appLogger.Info("MongoDB connection established successfully")
	mongoDB := mongoClient.Database(storeCfg.DatabaseName)

	var rdb *goredis.Client
	if storeCfg.Redis.Enabled() {
		rdb, err = redisclient.Connect(ctx, storeCfg.Redis)
		if err != nil {
			appLogger.Fatalf("Failed to connect to Redis: %v", err)
		}
		appLogger.Info("Redis connection established successfully")
	} else {
		appLogger.Warn("Redis not configured, shared state is kept in process memory")
	}

	container := di.NewContainer(mongoDB, rdb, appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	if err := container.InitializeAudit(auditCfg); err != nil {
		appLogger.Fatalf("Failed to initialize audit module: %v", err)
	}
	if err := container.InitializeAuth(authConfig); err != nil {
		appLogger.Fatalf("Failed to initialize auth module: %v", err)
	}
	if err := container.InitializeAcademy(); err != nil {
		appLogger.Fatalf("Failed to initialize academy module: %v", err)
	}
	if err := container.InitializeShowcase(showcaseCfg, storeCfg.Redis.URI()); err != nil {
		appLogger.Fatalf("Failed to initialize showcase module: %v", err)
	}
	appLogger.Info("All modules initialized")

	app := fiber.New(fiber.Config{
		AppName:      "Student Showcase Platform API v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    serverCfg.BodyLimitMB << 20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			appLogger.WithContext(c.UserContext()).Errorf("HTTP Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		},
	})

	authModule := container.AuthModule
	mw := authModule.GetMiddleware()

	app.Use(recover.New())
	app.Use(mw.RequestID(), mw.ClientContext())
	if securityCfg.HTTPSEnforce {
		app.Use(security.EnforceHTTPS(securityCfg.HTTPS()))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     serverCfg.AllowOrigins,
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-CSRF-Token",
		AllowCredentials: serverCfg.AllowOrigins != "*",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.Errorf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "UNHEALTHY",
				"error":   err.Error(),
				"message": "One or more services are unhealthy",
			})
		}
		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"message":   "Student Showcase Platform API is running",
			"timestamp": time.Now().UTC(),
			"modules":   container.Modules(),
		})
	})

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	limits := newRateLimits(runCtx, securityCfg.RateLimitEnabled, rdb, appLogger)

	api := app.Group(apiPrefix,
		security.Headers(securityCfg.Headers()),
		mw.OptionalAuth(),
		security.RouteGuard(security.DefaultRouteTable(apiPrefix)),
	)
	if limits != nil {
		api.Use("/auth/login", limits.login.Middleware())
		api.Use(limits.api.Middleware())
	}

	protect := []fiber.Handler{mw.Protect(), mw.VerifyCSRF()}
	authModule.RegisterRoutes(api.Group("/auth"))
	container.AuditModule.RegisterRoutes(api, mw.Protect(), mw.RequireRole(model.RoleAdmin))
	container.AcademyModule.RegisterRoutes(api, protect...)
	container.ShowcaseModule.RegisterRoutes(api, protect...)

	relaxed, _ := security.HeadersPreset("relaxed")
	public := []fiber.Handler{security.Headers(relaxed)}
	if limits != nil {
		public = append(public, limits.public.Middleware())
	}
	container.ShowcaseModule.RegisterPublicRoutes(app, public...)
	container.ShowcaseModule.Start()
	appLogger.Info("Routes registered")

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	appLogger.Infof("Starting HTTP server on %s", serverAddr)

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.Errorf("Server failed to start: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
}

type rateLimits struct {
	login  *security.RateLimiter
	api    *security.RateLimiter
	public *security.RateLimiter
}

// newRateLimits shares counters through Redis when available. In-memory counters are
// swept every minute until ctx ends. It returns nil when rate limiting is disabled.
func newRateLimits(ctx context.Context, enabled bool, rdb *goredis.Client, log logger.Logger) *rateLimits {
	if !enabled {
		log.Warn("Rate limiting disabled")
		return nil
	}
	var store security.RateLimitStore
	if rdb != nil {
		store = security.NewRedisRateLimitStore(rdb)
	} else {
		mem := security.NewMemoryRateLimitStore()
		mem.StartCleanup(ctx, time.Minute)
		store = mem
	}
	return &rateLimits{
		login:  security.NewRateLimiter(security.LoginRateLimit, store, log),
		api:    security.NewRateLimiter(security.APIRateLimit, store, log),
		public: security.NewRateLimiter(security.PublicAPIRateLimit, store, log),
	}
}
