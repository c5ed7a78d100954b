package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds the showcase module settings.
type Config struct {
	PreviewTTL    time.Duration `env:"PREVIEW_TTL" envDefault:"24h"`
	PublicBaseURL string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080/p"`
	PreviewPath   string        `env:"PREVIEW_BASE_PATH" envDefault:"/api/v1/showcases"`
	MaxAssetSize  int           `env:"SHOWCASE_MAX_ASSET_SIZE" envDefault:"5242880"`
	MaxAssets     int           `env:"SHOWCASE_MAX_ASSETS" envDefault:"50"`

	// Analytics
	SummaryDays      int           `env:"ANALYTICS_SUMMARY_DAYS" envDefault:"30"`
	VisitorCookieTTL time.Duration `env:"ANALYTICS_VISITOR_TTL" envDefault:"24h"`

	// Preview expiry jobs
	JobQueue       string `env:"SHOWCASE_JOB_QUEUE" envDefault:"showcase"`
	JobConcurrency int    `env:"SHOWCASE_JOB_CONCURRENCY" envDefault:"2"`
}

// LoadConfig reads the showcase settings from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load showcase configuration from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		PreviewTTL:       24 * time.Hour,
		PublicBaseURL:    "http://localhost:8080/p",
		PreviewPath:      "/api/v1/showcases",
		MaxAssetSize:     5 << 20,
		MaxAssets:        50,
		SummaryDays:      30,
		VisitorCookieTTL: 24 * time.Hour,
		JobQueue:         "showcase",
		JobConcurrency:   2,
	}
}

func (c *Config) Validate() error {
	if c.PreviewTTL <= 0 {
		return errors.New("preview_ttl must be positive")
	}
	if c.MaxAssetSize <= 0 || c.MaxAssets < 0 {
		return errors.New("asset limits must be positive")
	}
	if c.SummaryDays < 1 {
		return errors.New("analytics_summary_days must be at least 1")
	}
	if c.JobConcurrency < 1 {
		c.JobConcurrency = 1
	}
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
	c.PreviewPath = strings.TrimRight(c.PreviewPath, "/")
	return nil
}

// PublicURL is where a published showcase is served.
func (c *Config) PublicURL(username string) string {
	return c.PublicBaseURL + "/" + username + "/"
}

// PreviewURL is where a preview's entry page is served.
func (c *Config) PreviewURL(showcaseID string, ts int64) string {
	return fmt.Sprintf("%s/%s/previews/%d/index.html", c.PreviewPath, showcaseID, ts)
}
