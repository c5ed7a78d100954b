package http

import (
	"context"
	"errors"
	"strings"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/domain/repository"
	"showcase-platform/internal/auth/usecase"
	"showcase-platform/internal/shared/contextkeys"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Locals keys mirrored from the user context so websocket handlers can read them.
const (
	LocalUserID    = "user_id"
	LocalUserRole  = "user_role"
	LocalSessionID = "session_id"
)

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	usecase     usecase.AuthUsecaseInterface
	cookieName  string
	csrfEnabled bool
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface, cookieName string, csrfEnabled bool) *AuthMiddleware {
	return &AuthMiddleware{
		usecase:     uc,
		cookieName:  cookieName,
		csrfEnabled: csrfEnabled,
	}
}

// RequestID middleware
func (m *AuthMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: "requestid",
	})
}

// ClientContext copies request id, client IP and user agent into the user context.
func (m *AuthMiddleware) ClientContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if rid := c.GetRespHeader(fiber.HeaderXRequestID); rid != "" {
			ctx = context.WithValue(ctx, contextkeys.RequestIDKey, rid)
		}
		ctx = context.WithValue(ctx, contextkeys.ClientIPKey, c.IP())
		ctx = context.WithValue(ctx, contextkeys.UserAgentKey, c.Get(fiber.HeaderUserAgent))
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*repository.Claims, error) {
	token, err := m.extractToken(c)
	if err != nil {
		return nil, err
	}
	return m.usecase.ValidateToken(c.UserContext(), token)
}

func setClaims(c *fiber.Ctx, claims *repository.Claims) {
	ctx := c.UserContext()
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, contextkeys.UserEmailKey, claims.Email)
	ctx = context.WithValue(ctx, contextkeys.UserRoleKey, string(claims.Role))
	ctx = context.WithValue(ctx, contextkeys.SessionIDKey, claims.SessionID)
	ctx = context.WithValue(ctx, contextkeys.ClaimsKey, claims)
	c.SetUserContext(ctx)

	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalUserRole, string(claims.Role))
	c.Locals(LocalSessionID, claims.SessionID)
}

// Protect returns middleware that requires a valid token bound to a live session.
// Each authenticated request counts as session activity. Claims already set by
// OptionalAuth are reused.
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := c.UserContext().Value(contextkeys.ClaimsKey).(*repository.Claims); ok {
			return c.Next()
		}
		claims, err := m.authenticate(c)
		if err != nil {
			msg := "Authentication required"
			if errors.Is(err, usecase.ErrSessionExpired) {
				msg = "Session expired"
			} else if _, terr := m.extractToken(c); terr == nil {
				msg = "Invalid token"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
		}
		setClaims(c, claims)
		return c.Next()
	}
}

// RequireRole returns middleware that requires role or a more privileged one. It
// authenticates the request itself when Protect has not run.
func (m *AuthMiddleware) RequireRole(role model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.UserContext().Value(contextkeys.ClaimsKey).(*repository.Claims)
		if !ok {
			var err error
			claims, err = m.authenticate(c)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authentication required",
				})
			}
			setClaims(c, claims)
		}

		if !claims.HasRole(role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}
		return c.Next()
	}
}

// OptionalAuth middleware that optionally validates authentication
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := m.authenticate(c); err == nil {
			setClaims(c, claims)
		}
		return c.Next()
	}
}

// VerifyCSRF rejects state changing requests whose X-CSRF-Token header does not
// match the session's token. It must run after Protect.
func (m *AuthMiddleware) VerifyCSRF() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !m.csrfEnabled {
			return c.Next()
		}
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		sessionID, _ := c.UserContext().Value(contextkeys.SessionIDKey).(string)
		if sessionID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		ok, err := m.usecase.ValidateCSRF(c.UserContext(), sessionID, c.Get(model.CSRFHeader))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Invalid CSRF token",
			})
		}
		return c.Next()
	}
}

// extractToken extracts the token from Authorization header or cookie
func (m *AuthMiddleware) extractToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")); token != "" {
			return token, nil
		}
	}

	if token := c.Cookies(m.cookieName); token != "" {
		return token, nil
	}

	// Browsers cannot set headers on websocket upgrades.
	if token := c.Query("token"); token != "" {
		return token, nil
	}

	return "", fiber.NewError(fiber.StatusUnauthorized, "No authentication token found")
}

// ClaimsFrom returns the claims placed on the request by the auth middleware.
func ClaimsFrom(c *fiber.Ctx) (*repository.Claims, bool) {
	claims, ok := c.UserContext().Value(contextkeys.ClaimsKey).(*repository.Claims)
	return claims, ok
}
