package redisclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{Host: "cache"}.Enabled())
	assert.True(t, Config{URL: "redis://cache:6379/0"}.Enabled())
}

func TestConfig_OptionsFromURL(t *testing.T) {
	opts, err := Config{URL: "redis://:secret@cache:6380/2"}.Options()
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
}

func TestConfig_OptionsFromHost(t *testing.T) {
	opts, err := Config{Host: "cache", Port: "6379", PoolSize: 5, EnableTLS: true, ConnMaxIdleTime: time.Minute}.Options()
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 5, opts.PoolSize)
	require.NotNil(t, opts.TLSConfig)
	assert.Equal(t, "cache", opts.TLSConfig.ServerName)
}

func TestConfig_OptionsInvalid(t *testing.T) {
	_, err := Config{}.Options()
	assert.Error(t, err)

	_, err = Config{URL: "http://not-redis"}.Options()
	assert.Error(t, err)
}

func TestConfig_URI(t *testing.T) {
	assert.Empty(t, Config{}.URI())
	assert.Equal(t, "redis://cache:6379/0", Config{URL: "redis://cache:6379/0", Host: "ignored"}.URI())
	assert.Equal(t, "redis://:secret@cache:6380/3", Config{Host: "cache", Port: "6380", Password: "secret", Database: 3}.URI())
	assert.Equal(t, "rediss://cache:6379/0", Config{Host: "cache", Port: "6379", EnableTLS: true}.URI())
}
