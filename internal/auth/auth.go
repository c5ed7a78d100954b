package auth

import (
	"context"
	"fmt"
	"time"

	authhttp "showcase-platform/internal/auth/adapter/http"
	"showcase-platform/internal/auth/adapter/persistence/memory"
	"showcase-platform/internal/auth/adapter/persistence/mongodb"
	authredis "showcase-platform/internal/auth/adapter/persistence/redis"
	"showcase-platform/internal/auth/adapter/security"
	"showcase-platform/internal/auth/config"
	"showcase-platform/internal/auth/domain/repository"
	"showcase-platform/internal/auth/usecase"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuthModule represents the complete authentication module
type AuthModule struct {
	repository  repository.AuthRepository
	tokenSvc    repository.TokenService
	usecase     *usecase.AuthUsecase
	delegations *usecase.DelegationUsecase
	handler     *authhttp.AuthHTTPHandler
	delegation  *authhttp.DelegationHandler
	monitor     *authhttp.SessionMonitor
	middleware  *authhttp.AuthMiddleware
	config      *config.Config
	stop        context.CancelFunc
}

// csrfSweepInterval is how often in-memory CSRF tokens are swept for expiry.
const csrfSweepInterval = 5 * time.Minute

// NewAuthModule creates a new authentication module instance. Lockout counters and
// CSRF tokens live in Redis when rdb is non-nil and in process memory otherwise.
func NewAuthModule(
	db *mongo.Database,
	rdb goredis.UniversalClient,
	cfg *config.Config,
	log logger.Logger,
	bus eventbus.EventBusInterface,
) (*AuthModule, error) {
	if log == nil {
		log = logger.NewNop()
	}

	authRepo, err := mongodb.NewMongoAuthRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth repository: %w", err)
	}
	delegationRepo, err := mongodb.NewMongoDelegationRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create delegation repository: %w", err)
	}

	tokenSvc, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	sweepCtx, stop := context.WithCancel(context.Background())
	var (
		lockouts  repository.LockoutStore
		csrfStore repository.CSRFStore
	)
	if rdb != nil {
		lockouts = authredis.NewLockoutStore(rdb, cfg.LockoutCounterTTL)
		csrfStore = authredis.NewCSRFStore(rdb)
	} else {
		log.Warn("Redis not configured, lockout and CSRF state is kept in memory")
		lockouts = memory.NewLockoutStore(cfg.LockoutCounterTTL)
		memCSRF := memory.NewCSRFStore()
		memCSRF.StartCleanup(sweepCtx, csrfSweepInterval)
		csrfStore = memCSRF
	}

	authUsecase := usecase.NewAuthUsecase(authRepo, tokenSvc, lockouts, csrfStore, bus, cfg, log)
	delegationUsecase := usecase.NewDelegationUsecase(delegationRepo, authRepo, bus, log)

	return &AuthModule{
		repository:  authRepo,
		tokenSvc:    tokenSvc,
		usecase:     authUsecase,
		delegations: delegationUsecase,
		handler:     authhttp.NewAuthHTTPHandler(authUsecase, cfg),
		delegation:  authhttp.NewDelegationHandler(delegationUsecase),
		monitor:     authhttp.NewSessionMonitor(authUsecase, cfg.SessionCheckInterval, cfg.SessionWarningWindow, log),
		middleware:  authhttp.NewAuthMiddleware(authUsecase, cfg.CookieName, cfg.CSRFEnabled),
		config:      cfg,
		stop:        stop,
	}, nil
}

// RegisterRoutes registers authentication routes with the provided router
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	protected := am.handler.SetupAuthRoutesWithMiddleware(router, am.middleware)
	am.monitor.RegisterRoutes(protected)
	am.delegation.RegisterRoutes(protected, am.middleware)
}

// GetUsecase returns the auth usecase for external access
func (am *AuthModule) GetUsecase() usecase.AuthUsecaseInterface {
	return am.usecase
}

// Delegations returns the delegation usecase, used by modules that honour
// delegated grading permissions.
func (am *AuthModule) Delegations() *usecase.DelegationUsecase {
	return am.delegations
}

// Repository exposes the user store for modules that resolve user profiles.
func (am *AuthModule) Repository() repository.AuthRepository {
	return am.repository
}

// GetMiddleware returns the auth middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return am.middleware
}

// Stop performs cleanup when the module is shut down
func (am *AuthModule) Stop() error {
	if am.stop != nil {
		am.stop()
	}
	return nil
}
