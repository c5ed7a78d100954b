package security

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// HTTPSConfig controls HTTPS redirects and the Strict-Transport-Security header.
type HTTPSConfig struct {
	Enabled            bool
	IncludeSubdomains  bool
	Preload            bool
	MaxAge             int
	AllowedHosts       []string
	RedirectHTTP       bool
	RedirectStatusCode int
}

// DefaultHTTPSConfig enforces HTTPS with a two year preloadable HSTS policy.
func DefaultHTTPSConfig() HTTPSConfig {
	return HTTPSConfig{
		Enabled:            true,
		IncludeSubdomains:  true,
		Preload:            true,
		MaxAge:             63072000,
		AllowedHosts:       []string{},
		RedirectHTTP:       true,
		RedirectStatusCode: fiber.StatusMovedPermanently,
	}
}

// DevelopmentHTTPSConfig disables enforcement and exempts local hosts.
func DevelopmentHTTPSConfig() HTTPSConfig {
	return HTTPSConfig{
		Enabled:            false,
		AllowedHosts:       []string{"localhost", "127.0.0.1"},
		RedirectHTTP:       false,
		RedirectStatusCode: fiber.StatusFound,
	}
}

// HSTSHeader formats the Strict-Transport-Security value, or "" when disabled.
func HSTSHeader(cfg HTTPSConfig) string {
	if !cfg.Enabled {
		return ""
	}
	parts := []string{fmt.Sprintf("max-age=%d", cfg.MaxAge)}
	if cfg.IncludeSubdomains {
		parts = append(parts, "includeSubDomains")
	}
	if cfg.Preload {
		parts = append(parts, "preload")
	}
	return strings.Join(parts, "; ")
}

// IsAllowedHost reports whether host, ignoring any port, is exempt from enforcement.
func IsAllowedHost(host string, cfg HTTPSConfig) bool {
	if host == "" {
		return false
	}
	name, _, _ := strings.Cut(host, ":")
	for _, allowed := range cfg.AllowedHosts {
		if allowed == name {
			return true
		}
	}
	return false
}

// HTTPSURL rewrites url to use the https scheme.
func HTTPSURL(url string) string {
	if strings.HasPrefix(url, "https://") {
		return url
	}
	if len(url) >= len("http://") && strings.EqualFold(url[:len("http://")], "http://") {
		return "https://" + url[len("http://"):]
	}
	return "https://" + url
}

// ShouldEnforceHTTPS reports whether requests for host must use HTTPS.
func ShouldEnforceHTTPS(host string, cfg HTTPSConfig) bool {
	if !cfg.Enabled {
		return false
	}
	return !IsAllowedHost(host, cfg)
}

// EnforceHTTPS redirects plain HTTP requests and adds HSTS to HTTPS responses. The
// scheme is taken from X-Forwarded-Proto since TLS usually ends at a proxy.
func EnforceHTTPS(cfg HTTPSConfig) fiber.Handler {
	hsts := HSTSHeader(cfg)
	return func(c *fiber.Ctx) error {
		host := string(c.Request().Host())
		proto := strings.ToLower(c.Get(fiber.HeaderXForwardedProto, "http"))

		if proto != "https" && cfg.RedirectHTTP && ShouldEnforceHTTPS(host, cfg) {
			if hsts != "" {
				c.Set(fiber.HeaderStrictTransportSecurity, hsts)
			}
			return c.Redirect(HTTPSURL(host+c.OriginalURL()), cfg.RedirectStatusCode)
		}

		if proto == "https" && cfg.Enabled {
			c.Set(fiber.HeaderStrictTransportSecurity, hsts)
		}
		return c.Next()
	}
}
