package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"showcase-platform/internal/academy"
	academyusecase "showcase-platform/internal/academy/usecase"
	"showcase-platform/internal/audit"
	"showcase-platform/internal/auth"
	"showcase-platform/internal/auth/config"
	"showcase-platform/internal/security"
	"showcase-platform/internal/showcase"
	showcaseconfig "showcase-platform/internal/showcase/config"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/storage"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container owns the platform modules and their shared infrastructure, and tears
// them down in reverse order.
type Container struct {
	mu        sync.RWMutex
	services  map[reflect.Type]interface{}
	factories map[reflect.Type]func() (interface{}, error)

	AuthModule     *auth.AuthModule
	AuditModule    *audit.Module
	AcademyModule  *academy.Module
	ShowcaseModule *showcase.Module

	MongoDB *mongo.Database
	Redis   *goredis.Client
	Store   storage.ObjectStore
	Bus     eventbus.EventBusInterface
	Fields  *security.FieldAccessControl

	AuthConfig *config.Config
	Logger     logger.Logger
}

// NewContainer creates a container around the shared database, optional Redis client
// and logger. A nil db keeps every module but auth in memory.
func NewContainer(db *mongo.Database, rdb *goredis.Client, log logger.Logger) *Container {
	if log == nil {
		log = logger.NewNop()
	}
	c := &Container{
		services:  make(map[reflect.Type]interface{}),
		factories: make(map[reflect.Type]func() (interface{}, error)),
		MongoDB:   db,
		Redis:     rdb,
		Logger:    log,
		Bus:       eventbus.NewEventBus(log),
		Fields:    security.MustFieldAccessControl(),
	}
	if db != nil {
		c.Store = storage.NewGridFSStore(db, "")
	} else {
		c.Store = storage.NewMemoryStore()
	}
	return c
}

// InitializeAuth builds the auth module. It needs MongoDB.
func (c *Container) InitializeAuth(authConfig *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.MongoDB == nil {
		return fmt.Errorf("MongoDB must be initialized before the auth module")
	}

	var rdb goredis.UniversalClient
	if c.Redis != nil {
		rdb = c.Redis
	}
	authModule, err := auth.NewAuthModule(c.MongoDB, rdb, authConfig, c.Logger, c.Bus)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}
	c.AuthConfig = authConfig
	c.AuthModule = authModule
	return nil
}

// InitializeAudit subscribes the audit trail to the event bus. It runs before the
// modules that emit events.
func (c *Container) InitializeAudit(cfg audit.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := audit.NewModule(c.MongoDB, cfg, c.Logger, c.Bus)
	if err != nil {
		return fmt.Errorf("failed to create audit module: %w", err)
	}
	c.AuditModule = m
	return nil
}

// InitializeAcademy builds cohorts, profiles, submissions and templates. Delegated
// grading is honoured when the auth module is present.
func (c *Container) InitializeAcademy() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var delegations academyusecase.DelegationChecker
	if c.AuthModule != nil {
		delegations = c.AuthModule.Delegations()
	}
	m, err := academy.NewModule(c.MongoDB, c.Store, delegations, c.Logger, c.Bus)
	if err != nil {
		return fmt.Errorf("failed to create academy module: %w", err)
	}
	c.AcademyModule = m
	return nil
}

// InitializeShowcase builds the showcase module on top of the academy.
func (c *Container) InitializeShowcase(cfg *showcaseconfig.Config, redisURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.AcademyModule == nil {
		return fmt.Errorf("academy module must be initialized before the showcase module")
	}

	m, err := showcase.NewModule(showcase.Options{
		Config:   cfg,
		DB:       c.MongoDB,
		Store:    c.Store,
		Academy:  c.AcademyModule,
		RedisURL: redisURL,
		Fields:   c.Fields,
		Log:      c.Logger,
		Bus:      c.Bus,
	})
	if err != nil {
		return fmt.Errorf("failed to create showcase module: %w", err)
	}
	c.ShowcaseModule = m
	return nil
}

// Register registers a service instance
func (c *Container) Register(service interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	serviceType := reflect.TypeOf(service)
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}

	c.services[serviceType] = service
	return nil
}

// RegisterFactory registers a factory function for a service
func (c *Container) RegisterFactory(serviceType reflect.Type, factory func() (interface{}, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.factories[serviceType] = factory
	return nil
}

// Resolve returns the registered instance of serviceType, building it from its
// factory on first use.
func (c *Container) Resolve(serviceType reflect.Type) (interface{}, error) {
	c.mu.RLock()
	if service, exists := c.services[serviceType]; exists {
		c.mu.RUnlock()
		return service, nil
	}
	factory, exists := c.factories[serviceType]
	c.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("service of type %v not registered", serviceType)
	}

	service, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	c.mu.Lock()
	c.services[serviceType] = service
	c.mu.Unlock()
	return service, nil
}

// GetService is a generic helper for resolving services. Pointer types are looked up
// by their element type, matching Register.
func GetService[T any](c *Container) (T, error) {
	var zero T
	serviceType := reflect.TypeOf((*T)(nil)).Elem()
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}

	service, err := c.Resolve(serviceType)
	if err != nil {
		return zero, err
	}
	if typedService, ok := service.(T); ok {
		return typedService, nil
	}
	return zero, fmt.Errorf("service is not of expected type %T", zero)
}

// HealthCheck pings MongoDB and Redis.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}
	return nil
}

// Modules reports which modules are initialized.
func (c *Container) Modules() map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return map[string]bool{
		"auth":     c.AuthModule != nil,
		"audit":    c.AuditModule != nil,
		"academy":  c.AcademyModule != nil,
		"showcase": c.ShowcaseModule != nil,
	}
}

// Cleanup stops modules in reverse order of initialization and runs Cleanup on
// registered services that have one.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.ShowcaseModule != nil {
		if err := c.ShowcaseModule.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("showcase: %w", err))
		}
		c.ShowcaseModule = nil
	}
	c.AcademyModule = nil
	if c.AuthModule != nil {
		if err := c.AuthModule.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("auth: %w", err))
		}
		c.AuthModule = nil
	}
	if c.AuditModule != nil {
		c.AuditModule.Stop()
		c.AuditModule = nil
	}

	for _, service := range c.services {
		if cleaner, ok := service.(interface{ Cleanup(context.Context) error }); ok {
			if err := cleaner.Cleanup(ctx); err != nil {
				errs = append(errs, fmt.Errorf("failed to cleanup service: %w", err))
			}
		}
	}
	c.services = make(map[reflect.Type]interface{})
	c.factories = make(map[reflect.Type]func() (interface{}, error))

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
		c.Redis = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// Close shuts everything down within 30 seconds.
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.Warnf("cleanup errors occurred: %v", err)
		return err
	}
	c.Logger.Info("Container resources closed")
	return nil
}
