package security

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// HeaderSetting is one security header's configuration: HeaderOff omits it,
// HeaderDefault uses the value from DefaultHeaders and anything else is sent as is.
type HeaderSetting string

const (
	HeaderOff     HeaderSetting = ""
	HeaderDefault HeaderSetting = "default"
)

// HeadersConfig selects the security headers added to responses.
type HeadersConfig struct {
	ContentSecurityPolicy   HeaderSetting
	XSSProtection           HeaderSetting
	ContentTypeOptions      HeaderSetting
	FrameOptions            HeaderSetting
	ReferrerPolicy          HeaderSetting
	StrictTransportSecurity HeaderSetting
	PermissionsPolicy       HeaderSetting
	CacheControl            HeaderSetting
}

// DefaultHeaders is used when no preset is configured.
var DefaultHeaders = HeadersConfig{
	ContentSecurityPolicy:   "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:; font-src 'self'; connect-src 'self'; media-src 'self'; object-src 'none'; frame-src 'none';",
	XSSProtection:           "1; mode=block",
	ContentTypeOptions:      "nosniff",
	FrameOptions:            "DENY",
	ReferrerPolicy:          "strict-origin-when-cross-origin",
	StrictTransportSecurity: "max-age=63072000; includeSubDomains; preload",
	PermissionsPolicy:       "camera=(), microphone=(), geolocation=(), interest-cohort=()",
	CacheControl:            "no-store, max-age=0",
}

var headerPresets = map[string]HeadersConfig{
	"default": DefaultHeaders,
	// Sensitive pages.
	"strict": {
		ContentSecurityPolicy:   "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self'; font-src 'self'; connect-src 'self'; media-src 'self'; object-src 'none'; frame-src 'none'; base-uri 'self'; form-action 'self';",
		XSSProtection:           "1; mode=block",
		ContentTypeOptions:      "nosniff",
		FrameOptions:            "DENY",
		ReferrerPolicy:          "no-referrer",
		StrictTransportSecurity: "max-age=63072000; includeSubDomains; preload",
		PermissionsPolicy:       "camera=(), microphone=(), geolocation=(), interest-cohort=()",
		CacheControl:            "no-store, max-age=0",
	},
	"moderate": {
		ContentSecurityPolicy:   "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'; connect-src 'self'; media-src 'self'; object-src 'none'; frame-src 'self';",
		XSSProtection:           "1; mode=block",
		ContentTypeOptions:      "nosniff",
		FrameOptions:            "SAMEORIGIN",
		ReferrerPolicy:          "strict-origin-when-cross-origin",
		StrictTransportSecurity: "max-age=31536000; includeSubDomains",
		PermissionsPolicy:       "camera=(), microphone=(), geolocation=(self), interest-cohort=()",
		CacheControl:            "no-cache, max-age=0",
	},
	// Public portfolio pages.
	"relaxed": {
		ContentSecurityPolicy:   "default-src 'self'; script-src 'self' 'unsafe-inline' 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' data: https:; connect-src 'self' https:; media-src 'self' https:; object-src 'none'; frame-src 'self' https:;",
		XSSProtection:           "1; mode=block",
		ContentTypeOptions:      "nosniff",
		FrameOptions:            "SAMEORIGIN",
		ReferrerPolicy:          "strict-origin-when-cross-origin",
		StrictTransportSecurity: "max-age=31536000",
		PermissionsPolicy:       "camera=(self), microphone=(self), geolocation=(self), interest-cohort=()",
		CacheControl:            "public, max-age=3600",
	},
}

// HeadersPreset returns the named preset: strict, moderate, relaxed or default.
func HeadersPreset(name string) (HeadersConfig, bool) {
	cfg, ok := headerPresets[strings.ToLower(strings.TrimSpace(name))]
	return cfg, ok
}

func resolve(setting, fallback HeaderSetting) (string, bool) {
	switch setting {
	case HeaderOff:
		return "", false
	case HeaderDefault:
		return string(fallback), true
	default:
		return string(setting), true
	}
}

// GenerateHeaders returns the header map described by cfg.
func GenerateHeaders(cfg HeadersConfig) map[string]string {
	pairs := []struct {
		name     string
		setting  HeaderSetting
		fallback HeaderSetting
	}{
		{"Content-Security-Policy", cfg.ContentSecurityPolicy, DefaultHeaders.ContentSecurityPolicy},
		{"X-XSS-Protection", cfg.XSSProtection, DefaultHeaders.XSSProtection},
		{"X-Content-Type-Options", cfg.ContentTypeOptions, DefaultHeaders.ContentTypeOptions},
		{"X-Frame-Options", cfg.FrameOptions, DefaultHeaders.FrameOptions},
		{"Referrer-Policy", cfg.ReferrerPolicy, DefaultHeaders.ReferrerPolicy},
		{"Strict-Transport-Security", cfg.StrictTransportSecurity, DefaultHeaders.StrictTransportSecurity},
		{"Permissions-Policy", cfg.PermissionsPolicy, DefaultHeaders.PermissionsPolicy},
		{"Cache-Control", cfg.CacheControl, DefaultHeaders.CacheControl},
	}

	headers := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if v, ok := resolve(p.setting, p.fallback); ok {
			headers[p.name] = v
		}
	}
	return headers
}

// CSPOptions lists sources per directive. A nil slice keeps the directive's default;
// the optional directives are omitted when nil.
type CSPOptions struct {
	DefaultSrc  []string
	ScriptSrc   []string
	StyleSrc    []string
	ImgSrc      []string
	FontSrc     []string
	ConnectSrc  []string
	MediaSrc    []string
	ObjectSrc   []string
	FrameSrc    []string
	WorkerSrc   []string
	ManifestSrc []string
	FormAction  []string
	BaseURI     []string
	ReportTo    string
}

// CSP builds a Content-Security-Policy value.
func CSP(opts CSPOptions) string {
	var directives []string
	add := func(name string, sources []string, def string) {
		switch {
		case sources != nil:
			directives = append(directives, name+" "+strings.Join(sources, " "))
		case def != "":
			directives = append(directives, name+" "+def)
		}
	}

	add("default-src", opts.DefaultSrc, "'self'")
	add("script-src", opts.ScriptSrc, "'self'")
	add("style-src", opts.StyleSrc, "'self'")
	add("img-src", opts.ImgSrc, "'self' data:")
	add("font-src", opts.FontSrc, "'self'")
	add("connect-src", opts.ConnectSrc, "'self'")
	add("media-src", opts.MediaSrc, "'self'")
	add("object-src", opts.ObjectSrc, "'none'")
	add("frame-src", opts.FrameSrc, "'none'")
	add("worker-src", opts.WorkerSrc, "")
	add("manifest-src", opts.ManifestSrc, "")
	add("form-action", opts.FormAction, "")
	add("base-uri", opts.BaseURI, "")
	if opts.ReportTo != "" {
		directives = append(directives, "report-to "+opts.ReportTo)
	}
	return strings.Join(directives, "; ")
}

// Headers sets the configured security headers on every response. Later handlers
// may override individual values.
func Headers(cfg HeadersConfig) fiber.Handler {
	headers := GenerateHeaders(cfg)
	return func(c *fiber.Ctx) error {
		for k, v := range headers {
			c.Set(k, v)
		}
		return c.Next()
	}
}
