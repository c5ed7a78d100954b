package commands

import (
	"context"
	"fmt"
	"time"

	"showcase-platform/internal/academy"
	"showcase-platform/internal/auth/adapter/persistence/mongodb"
	authredis "showcase-platform/internal/auth/adapter/persistence/redis"
	"showcase-platform/internal/auth/domain/repository"
	"showcase-platform/internal/auth/usecase"
	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/redisclient"
	"showcase-platform/internal/shared/storage"

	"github.com/caarlos0/env/v6"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config is the subset of the server environment the CLI needs.
type Config struct {
	MongoURI          string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName      string        `env:"DATABASE_NAME" envDefault:"showcase_platform"`
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"10"`
	LockoutCounterTTL time.Duration `env:"LOCKOUT_COUNTER_TTL" envDefault:"24h"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	Redis             redisclient.Config
}

// environment holds the connections opened for one command.
type environment struct {
	cfg    Config
	log    logger.Logger
	mongo  *mongo.Client
	db     *mongo.Database
	redis  *goredis.Client
	users  repository.AuthRepository
	closed bool
}

func openEnvironment(ctx context.Context) (*environment, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	e := &environment{cfg: cfg, log: logger.NewLoggerWithConfig(cfg.LogLevel, "text")}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	e.mongo = client
	if err := client.Ping(ctx, nil); err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	e.db = client.Database(cfg.DatabaseName)

	e.users, err = mongodb.NewMongoAuthRepository(e.db)
	if err != nil {
		e.Close()
		return nil, err
	}

	if cfg.Redis.Enabled() {
		e.redis, err = redisclient.Connect(ctx, cfg.Redis)
		if err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

// provisioner clears lockouts through Redis when configured. Without Redis the
// counters live inside the API process and cannot be reached from here.
func (e *environment) provisioner() *usecase.Provisioner {
	var lockouts repository.LockoutStore
	if e.redis != nil {
		lockouts = authredis.NewLockoutStore(e.redis, e.cfg.LockoutCounterTTL)
	}
	return usecase.NewProvisioner(e.users, lockouts, e.cfg.BcryptCost, nil, e.log)
}

func (e *environment) academy() (*academy.Module, error) {
	return academy.NewModule(e.db, storage.NewGridFSStore(e.db, ""), nil, e.log, nil)
}

func (e *environment) Close() {
	if e.closed {
		return
	}
	e.closed = true
	if e.redis != nil {
		_ = e.redis.Close()
	}
	if e.mongo != nil {
		_ = e.mongo.Disconnect(context.Background())
	}
}
