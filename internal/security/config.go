package security

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
)

// Config holds the transport security settings.
type Config struct {
	HTTPSEnforce          bool     `env:"HTTPS_ENFORCE" envDefault:"false"`
	HSTSMaxAge            int      `env:"HSTS_MAX_AGE" envDefault:"63072000"`
	HSTSIncludeSubdomains bool     `env:"HSTS_INCLUDE_SUBDOMAINS" envDefault:"true"`
	HSTSPreload           bool     `env:"HSTS_PRELOAD" envDefault:"true"`
	HTTPSAllowedHosts     []string `env:"HTTPS_ALLOWED_HOSTS" envSeparator:","`
	HTTPSRedirect         bool     `env:"HTTPS_REDIRECT" envDefault:"true"`
	HTTPSRedirectStatus   int      `env:"HTTPS_REDIRECT_STATUS" envDefault:"301"`

	HeadersPreset string `env:"SECURITY_HEADERS_PRESET" envDefault:"default"`

	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
}

// LoadConfig parses the environment and validates the result.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load security configuration from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.HTTPSRedirectStatus {
	case fiber.StatusMovedPermanently, fiber.StatusFound,
		fiber.StatusTemporaryRedirect, fiber.StatusPermanentRedirect:
	default:
		return fmt.Errorf("https_redirect_status must be 301, 302, 307 or 308, got %d", c.HTTPSRedirectStatus)
	}
	if c.HSTSMaxAge < 0 {
		return fmt.Errorf("hsts_max_age must not be negative")
	}
	if _, ok := HeadersPreset(c.HeadersPreset); !ok {
		return fmt.Errorf("unknown security headers preset %q", c.HeadersPreset)
	}
	return nil
}

// HTTPS returns the HTTPS policy described by the config.
func (c *Config) HTTPS() HTTPSConfig {
	return HTTPSConfig{
		Enabled:            c.HTTPSEnforce,
		IncludeSubdomains:  c.HSTSIncludeSubdomains,
		Preload:            c.HSTSPreload,
		MaxAge:             c.HSTSMaxAge,
		AllowedHosts:       c.HTTPSAllowedHosts,
		RedirectHTTP:       c.HTTPSRedirect,
		RedirectStatusCode: c.HTTPSRedirectStatus,
	}
}

// Headers returns the configured header preset. When HTTPS is enforced the HSTS
// header is left to EnforceHTTPS, which only sends it over HTTPS.
func (c *Config) Headers() HeadersConfig {
	h, _ := HeadersPreset(c.HeadersPreset)
	if c.HTTPSEnforce {
		h.StrictTransportSecurity = HeaderOff
	}
	return h
}
