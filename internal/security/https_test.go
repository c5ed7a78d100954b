package security

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHSTSHeader(t *testing.T) {
	cfg := DefaultHTTPSConfig()
	assert.Equal(t, "max-age=63072000; includeSubDomains; preload", HSTSHeader(cfg))

	noSub := cfg
	noSub.IncludeSubdomains = false
	assert.Equal(t, "max-age=63072000; preload", HSTSHeader(noSub))

	noPreload := cfg
	noPreload.Preload = false
	assert.Equal(t, "max-age=63072000; includeSubDomains", HSTSHeader(noPreload))

	day := cfg
	day.MaxAge = 86400
	assert.Equal(t, "max-age=86400; includeSubDomains; preload", HSTSHeader(day))

	assert.Equal(t, "", HSTSHeader(DevelopmentHTTPSConfig()))
}

func TestIsAllowedHost(t *testing.T) {
	cfg := DefaultHTTPSConfig()
	cfg.AllowedHosts = []string{"localhost", "127.0.0.1"}

	assert.True(t, IsAllowedHost("localhost", cfg))
	assert.True(t, IsAllowedHost("localhost:3000", cfg))
	assert.True(t, IsAllowedHost("127.0.0.1:8080", cfg))
	assert.False(t, IsAllowedHost("example.com", cfg))
	assert.False(t, IsAllowedHost("example.com:443", cfg))
	assert.False(t, IsAllowedHost("", cfg))
}

func TestHTTPSURL(t *testing.T) {
	cases := map[string]string{
		"http://example.com":       "https://example.com",
		"HTTP://example.com/path":  "https://example.com/path",
		"http://example.com:80":    "https://example.com:80",
		"https://example.com:443":  "https://example.com:443",
		"example.com/path":         "https://example.com/path",
		"example.com:443":          "https://example.com:443",
	}
	for in, want := range cases {
		assert.Equal(t, want, HTTPSURL(in), in)
	}
}

func TestShouldEnforceHTTPS(t *testing.T) {
	cfg := DefaultHTTPSConfig()
	cfg.AllowedHosts = []string{"localhost"}

	assert.True(t, ShouldEnforceHTTPS("example.com", cfg))
	assert.False(t, ShouldEnforceHTTPS("localhost:3000", cfg))
	assert.False(t, ShouldEnforceHTTPS("example.com", DevelopmentHTTPSConfig()))
}

func TestEnforceHTTPS_Middleware(t *testing.T) {
	app := fiber.New()
	app.Use(EnforceHTTPS(DefaultHTTPSConfig()))
	app.Get("/page", func(c *fiber.Ctx) error { return c.SendString("ok") })

	t.Run("redirects plain http", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://example.com/page?x=1", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusMovedPermanently, resp.StatusCode)
		assert.Equal(t, "https://example.com/page?x=1", resp.Header.Get(fiber.HeaderLocation))
		assert.Equal(t, "max-age=63072000; includeSubDomains; preload", resp.Header.Get(fiber.HeaderStrictTransportSecurity))
	})

	t.Run("adds hsts behind a tls proxy", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://example.com/page", nil)
		req.Header.Set(fiber.HeaderXForwardedProto, "https")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get(fiber.HeaderStrictTransportSecurity))
	})

	t.Run("development config passes through", func(t *testing.T) {
		dev := fiber.New()
		dev.Use(EnforceHTTPS(DevelopmentHTTPSConfig()))
		dev.Get("/page", func(c *fiber.Ctx) error { return c.SendString("ok") })

		resp, err := dev.Test(httptest.NewRequest("GET", "http://localhost/page", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get(fiber.HeaderStrictTransportSecurity))
	})
}
