package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "a-test-secret-that-is-long-enough-123")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 60*time.Minute, cfg.SessionTimeout)
	assert.Equal(t, 5, cfg.LockoutThreshold)
	assert.Equal(t, 30*time.Minute, cfg.LockoutDuration)
	assert.Equal(t, 4*time.Hour, cfg.CSRFTokenTTL)
	assert.Equal(t, time.Minute, cfg.SessionCheckInterval)
	assert.Equal(t, "Lax", cfg.CookieSameSite)

	p := cfg.SessionPolicy()
	assert.Equal(t, cfg.SessionTimeout, p.Timeout)
	assert.Equal(t, cfg.LockoutThreshold, p.LockoutThreshold)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SESSION_TIMEOUT", "15m")
	t.Setenv("LOCKOUT_THRESHOLD", "3")
	t.Setenv("COOKIE_SAME_SITE", "strict")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.SessionTimeout)
	assert.Equal(t, 3, cfg.LockoutThreshold)
	assert.Equal(t, "Strict", cfg.CookieSameSite)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWTSecretKey:     "secret",
			SessionTimeout:   time.Hour,
			LockoutThreshold: 5,
			LockoutDuration:  30 * time.Minute,
			CSRFTokenTTL:     4 * time.Hour,
			BcryptCost:       10,
			CookieSameSite:   "lax",
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL, "token ttl falls back to session timeout")
	assert.Equal(t, 30*time.Minute, cfg.LockoutCounterTTL)

	bad := valid()
	bad.LockoutThreshold = 0
	assert.Error(t, bad.Validate())

	bad = valid()
	bad.CookieSameSite = "sometimes"
	assert.Error(t, bad.Validate())

	bad = valid()
	bad.CookieSameSite = "None"
	assert.Error(t, bad.Validate(), "SameSite=None needs Secure")

	bad = valid()
	bad.BcryptCost = 99
	assert.Error(t, bad.Validate())
}
