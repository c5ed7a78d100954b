package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.HTTPSEnforce)
	assert.Equal(t, 63072000, cfg.HSTSMaxAge)
	assert.Equal(t, 301, cfg.HTTPSRedirectStatus)
	assert.Equal(t, DefaultHeaders, cfg.Headers())
}

func TestLoadConfig_Enforced(t *testing.T) {
	t.Setenv("HTTPS_ENFORCE", "true")
	t.Setenv("HTTPS_ALLOWED_HOSTS", "localhost,127.0.0.1")
	t.Setenv("HTTPS_REDIRECT_STATUS", "308")
	t.Setenv("SECURITY_HEADERS_PRESET", "strict")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	https := cfg.HTTPS()
	assert.True(t, https.Enabled)
	assert.Equal(t, []string{"localhost", "127.0.0.1"}, https.AllowedHosts)
	assert.Equal(t, 308, https.RedirectStatusCode)
	assert.Equal(t, HeaderOff, cfg.Headers().StrictTransportSecurity)
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{HTTPSRedirectStatus: 303, HeadersPreset: "default"}
	assert.Error(t, cfg.Validate())

	cfg = &Config{HTTPSRedirectStatus: 302, HeadersPreset: "nope"}
	assert.Error(t, cfg.Validate())
}
