package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"showcase-platform/internal/auth/domain/model"

	"github.com/caarlos0/env/v6"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all configuration for the auth module.
type Config struct {
	// JWT Configuration
	JWTSecretKey   string        `env:"JWT_SECRET_KEY,required"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"showcase-platform-auth"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"60m"`

	// Session and lockout policy
	SessionTimeout       time.Duration `env:"SESSION_TIMEOUT" envDefault:"60m"`
	SessionCheckInterval time.Duration `env:"SESSION_CHECK_INTERVAL" envDefault:"1m"`
	SessionWarningWindow time.Duration `env:"SESSION_WARNING_WINDOW" envDefault:"5m"`
	LockoutThreshold     int           `env:"LOCKOUT_THRESHOLD" envDefault:"5"`
	LockoutDuration      time.Duration `env:"LOCKOUT_DURATION" envDefault:"30m"`
	LockoutCounterTTL    time.Duration `env:"LOCKOUT_COUNTER_TTL" envDefault:"24h"`

	// CSRF
	CSRFEnabled  bool          `env:"CSRF_ENABLED" envDefault:"true"`
	CSRFTokenTTL time.Duration `env:"CSRF_TOKEN_TTL" envDefault:"4h"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	// Cookie Configuration
	CookieName     string `env:"COOKIE_NAME" envDefault:"showcase_session"`
	CookiePath     string `env:"COOKIE_PATH" envDefault:"/"`
	CookieDomain   string `env:"COOKIE_DOMAIN" envDefault:""`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	CookieHTTPOnly bool   `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite string `env:"COOKIE_SAME_SITE" envDefault:"Lax"` // "Lax", "Strict", "None"
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load auth configuration from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes the cookie settings and rejects unusable values.
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("jwt_secret_key is required")
	}
	if c.SessionTimeout <= 0 {
		return errors.New("session_timeout must be positive")
	}
	if c.LockoutThreshold < 1 {
		return errors.New("lockout_threshold must be at least 1")
	}
	if c.LockoutDuration <= 0 {
		return errors.New("lockout_duration must be positive")
	}
	if c.CSRFTokenTTL <= 0 {
		return errors.New("csrf_token_ttl must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	sameSite := strings.ToLower(c.CookieSameSite)
	switch sameSite {
	case "lax", "strict", "none":
		c.CookieSameSite = strings.ToUpper(sameSite[:1]) + sameSite[1:]
	default:
		return errors.New("cookie_same_site must be one of 'Lax', 'Strict', or 'None'")
	}
	if c.CookieSameSite == "None" && !c.CookieSecure {
		return errors.New("cookie_same_site=None requires cookie_secure=true")
	}

	if c.AccessTokenTTL <= 0 {
		c.AccessTokenTTL = c.SessionTimeout
	}
	if c.SessionCheckInterval <= 0 {
		c.SessionCheckInterval = time.Minute
	}
	if c.LockoutCounterTTL < c.LockoutDuration {
		c.LockoutCounterTTL = c.LockoutDuration
	}
	return nil
}

// SessionPolicy returns the session/lockout policy described by the config.
func (c *Config) SessionPolicy() model.SessionPolicy {
	return model.SessionPolicy{
		Timeout:          c.SessionTimeout,
		LockoutThreshold: c.LockoutThreshold,
		LockoutDuration:  c.LockoutDuration,
	}
}
