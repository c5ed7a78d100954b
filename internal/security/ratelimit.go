package security

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// RateLimitConfig describes a fixed window limit and which request attributes make
// up the counter key.
type RateLimitConfig struct {
	MaxRequests     int
	Window          time.Duration
	IncludeUserID   bool
	IncludeIP       bool
	IncludeEndpoint bool
}

// DefaultRateLimitConfig allows 100 requests per hour per user, IP and endpoint.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests:     100,
		Window:          time.Hour,
		IncludeUserID:   true,
		IncludeIP:       true,
		IncludeEndpoint: true,
	}
}

var (
	LoginRateLimit = RateLimitConfig{
		MaxRequests: 5, Window: time.Minute, IncludeIP: true, IncludeEndpoint: true,
	}
	PasswordResetRateLimit = RateLimitConfig{
		MaxRequests: 3, Window: time.Hour, IncludeIP: true, IncludeEndpoint: true,
	}
	APIRateLimit = RateLimitConfig{
		MaxRequests: 100, Window: time.Minute, IncludeUserID: true, IncludeIP: true, IncludeEndpoint: true,
	}
	PublicAPIRateLimit = RateLimitConfig{
		MaxRequests: 30, Window: time.Minute, IncludeIP: true, IncludeEndpoint: true,
	}
)

// RateLimitKey joins the included key parts. The user part is skipped when userID
// is empty.
func RateLimitKey(userID, ip, endpoint string, cfg RateLimitConfig) string {
	parts := make([]string, 0, 3)
	if cfg.IncludeUserID && userID != "" {
		parts = append(parts, "user:"+userID)
	}
	if cfg.IncludeIP {
		parts = append(parts, "ip:"+ip)
	}
	if cfg.IncludeEndpoint {
		parts = append(parts, "endpoint:"+endpoint)
	}
	return strings.Join(parts, ":")
}

// RateLimitEntry is the state of one counter window.
type RateLimitEntry struct {
	Count   int
	ResetAt time.Time
}

// RateLimitStore counts hits per key. Increment starts a new window of the given
// length when none is active.
type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (RateLimitEntry, error)
	Reset(ctx context.Context, key string) error
}

// RateLimitResult is the outcome of one check.
type RateLimitResult struct {
	Limited   bool
	Remaining int
	ResetAt   time.Time
	Key       string
}

// Headers returns the X-RateLimit headers for the result.
func (r RateLimitResult) Headers() map[string]string {
	reset := int64(math.Ceil(float64(r.ResetAt.UnixMilli()) / 1000))
	return map[string]string{
		HeaderRateLimitRemaining: strconv.Itoa(r.Remaining),
		HeaderRateLimitReset:     strconv.FormatInt(reset, 10),
	}
}

// RateLimiter applies one RateLimitConfig against a store.
type RateLimiter struct {
	cfg   RateLimitConfig
	store RateLimitStore
	log   logger.Logger
}

// NewRateLimiter fills a zero MaxRequests or Window from DefaultRateLimitConfig.
func NewRateLimiter(cfg RateLimitConfig, store RateLimitStore, log logger.Logger) *RateLimiter {
	def := DefaultRateLimitConfig()
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = def.MaxRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RateLimiter{cfg: cfg, store: store, log: log.WithComponent("rate-limiter")}
}

// Config returns the effective configuration.
func (l *RateLimiter) Config() RateLimitConfig {
	return l.cfg
}

// Check counts one request and reports whether it exceeds the limit.
func (l *RateLimiter) Check(ctx context.Context, userID, ip, endpoint string) (RateLimitResult, error) {
	key := RateLimitKey(userID, ip, endpoint, l.cfg)
	entry, err := l.store.Increment(ctx, key, l.cfg.Window)
	if err != nil {
		return RateLimitResult{Key: key}, err
	}
	remaining := l.cfg.MaxRequests - entry.Count
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitResult{
		Limited:   entry.Count > l.cfg.MaxRequests,
		Remaining: remaining,
		ResetAt:   entry.ResetAt,
		Key:       key,
	}, nil
}

// Reset clears the counter for the given request attributes.
func (l *RateLimiter) Reset(ctx context.Context, userID, ip, endpoint string) error {
	return l.store.Reset(ctx, RateLimitKey(userID, ip, endpoint, l.cfg))
}

// Middleware rejects requests over the limit with 429. Store failures let the
// request through.
func (l *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		userID := utils.GetUserIDOrDefault(ctx, "")

		result, err := l.Check(ctx, userID, c.IP(), c.Path())
		if err != nil {
			l.log.WithContext(ctx).Warnf("rate limit check failed for %s: %v", result.Key, err)
			return c.Next()
		}
		for k, v := range result.Headers() {
			c.Set(k, v)
		}
		if result.Limited {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}
		return c.Next()
	}
}
