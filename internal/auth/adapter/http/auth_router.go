package http

import (
	"strconv"
	"time"

	"showcase-platform/internal/auth/config"
	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/domain/repository"
	"showcase-platform/internal/auth/usecase"
	"showcase-platform/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase        usecase.AuthUsecaseInterface
	cookieName     string
	cookiePath     string
	cookieDomain   string
	cookieMaxAge   int
	cookieSecure   bool
	cookieHTTPOnly bool
	cookieSameSite string
}

// NewAuthHTTPHandler creates a new authentication HTTP handler. The cookie lives as
// long as a session.
func NewAuthHTTPHandler(uc usecase.AuthUsecaseInterface, cfg *config.Config) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		usecase:        uc,
		cookieName:     cfg.CookieName,
		cookiePath:     cfg.CookiePath,
		cookieDomain:   cfg.CookieDomain,
		cookieMaxAge:   int(cfg.SessionTimeout.Seconds()),
		cookieSecure:   cfg.CookieSecure,
		cookieHTTPOnly: cfg.CookieHTTPOnly,
		cookieSameSite: cfg.CookieSameSite,
	}
}

// SetupAuthRoutesWithMiddleware sets up authentication routes with middleware and
// returns the authenticated group so callers can mount further protected routes.
func (h *AuthHTTPHandler) SetupAuthRoutesWithMiddleware(router fiber.Router, middleware *AuthMiddleware) fiber.Router {
	// Public routes
	router.Post("/register", h.Register)
	router.Post("/login", h.Login)
	router.Post("/refresh", h.RefreshToken)

	// Protected routes
	protected := router.Group("/", middleware.Protect(), middleware.VerifyCSRF())
	protected.Post("/logout", h.Logout)
	protected.Get("/me", h.GetCurrentUser)
	protected.Post("/change-password", h.ChangePassword)
	protected.Get("/session", h.SessionStatus)
	protected.Post("/session/extend", h.ExtendSession)
	protected.Get("/csrf-token", h.CSRFToken)

	// Admin routes; the protected group above has already authenticated them.
	admin := protected.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.Post("/users", h.CreateUser)
	admin.Get("/users", h.ListUsers)
	admin.Get("/users/:userId", h.GetUser)
	admin.Patch("/users/:userId", h.UpdateUserAccess)
	admin.Delete("/users/:userId", h.DeleteUser)
	admin.Get("/lockouts/:email", h.LockoutStatus)
	admin.Delete("/lockouts/:email", h.UnlockAccount)

	return protected
}

func clientInfo(c *fiber.Ctx) usecase.ClientInfo {
	return usecase.ClientInfo{
		IPAddress:  c.IP(),
		UserAgent:  c.Get(fiber.HeaderUserAgent),
		RequestURL: c.OriginalURL(),
	}
}

// Register handles user registration
func (h *AuthHTTPHandler) Register(c *fiber.Ctx) error {
	var req usecase.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	req.Roles = nil
	req.Client = clientInfo(c)

	response, err := h.usecase.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	h.setCookie(c, response.AccessToken)
	return c.Status(fiber.StatusCreated).JSON(response)
}

// CreateUser lets an admin create an account with explicit roles.
func (h *AuthHTTPHandler) CreateUser(c *fiber.Ctx) error {
	var req usecase.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	req.Client = clientInfo(c)

	user, err := h.usecase.CreateUser(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles user login
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	var req usecase.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	req.Client = clientInfo(c)

	response, err := h.usecase.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	h.setCookie(c, response.AccessToken)
	return c.JSON(response)
}

// Logout handles user logout
func (h *AuthHTTPHandler) Logout(c *fiber.Ctx) error {
	sessionID, err := utils.GetSessionIDFromContext(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	if err := h.usecase.Logout(c.UserContext(), sessionID); err != nil {
		return respondError(c, err)
	}

	h.clearCookie(c)
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// RefreshToken extends the current session and issues a fresh token. The token is
// read from the body, the Authorization header or the session cookie.
func (h *AuthHTTPHandler) RefreshToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}
	token := req.Token
	if token == "" {
		mw := AuthMiddleware{cookieName: h.cookieName}
		token, _ = mw.extractToken(c)
	}
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	response, err := h.usecase.RefreshToken(c.UserContext(), token)
	if err != nil {
		return respondError(c, err)
	}

	h.setCookie(c, response.AccessToken)
	return c.JSON(response)
}

// GetCurrentUser returns current user information
func (h *AuthHTTPHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	user, err := h.usecase.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// ChangePassword handles password change
func (h *AuthHTTPHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.usecase.ChangePassword(c.UserContext(), userID, req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}

	h.clearCookie(c)
	return c.JSON(fiber.Map{
		"message": "Password changed successfully",
	})
}

// SessionStatus reports how long the current session has left.
func (h *AuthHTTPHandler) SessionStatus(c *fiber.Ctx) error {
	sessionID, _ := utils.GetSessionIDFromContext(c.UserContext())
	status, err := h.usecase.SessionStatus(c.UserContext(), sessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}

// ExtendSession pushes the current session's expiry out by a full timeout.
func (h *AuthHTTPHandler) ExtendSession(c *fiber.Ctx) error {
	sessionID, _ := utils.GetSessionIDFromContext(c.UserContext())
	status, err := h.usecase.ExtendSession(c.UserContext(), sessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}

// CSRFToken returns the session's CSRF token for use in the X-CSRF-Token header.
func (h *AuthHTTPHandler) CSRFToken(c *fiber.Ctx) error {
	sessionID, _ := utils.GetSessionIDFromContext(c.UserContext())
	token, err := h.usecase.CSRFToken(c.UserContext(), sessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"token":     token.Token,
		"expiresAt": token.ExpiresAt,
		"header":    model.CSRFHeader,
	})
}

// ListUsers lists users (admin only)
func (h *AuthHTTPHandler) ListUsers(c *fiber.Ctx) error {
	filter := repository.UserFilter{
		Role:   model.Role(c.Query("role")),
		Status: model.UserStatus(c.Query("status")),
	}
	if v, err := strconv.ParseInt(c.Query("limit", "0"), 10, 64); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.ParseInt(c.Query("offset", "0"), 10, 64); err == nil {
		filter.Offset = v
	}

	users, err := h.usecase.ListUsers(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"users": users,
		"total": len(users),
	})
}

// GetUser gets a specific user (admin only)
func (h *AuthHTTPHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.usecase.GetUserByID(c.UserContext(), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateUserAccess changes a user's roles or status (admin only)
func (h *AuthHTTPHandler) UpdateUserAccess(c *fiber.Ctx) error {
	var req usecase.UpdateAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.usecase.UpdateUserAccess(c.UserContext(), c.Params("userId"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser deletes a user (admin only)
func (h *AuthHTTPHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.usecase.DeleteUser(c.UserContext(), c.Params("userId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}

// LockoutStatus reports the failed login state of an email (admin only)
func (h *AuthHTTPHandler) LockoutStatus(c *fiber.Ctx) error {
	status, err := h.usecase.LockoutStatus(c.UserContext(), c.Params("email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}

// UnlockAccount clears a lockout (admin only)
func (h *AuthHTTPHandler) UnlockAccount(c *fiber.Ctx) error {
	if err := h.usecase.UnlockAccount(c.UserContext(), c.Params("email")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Account unlocked",
	})
}

// Helper methods

func (h *AuthHTTPHandler) setCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     h.cookiePath,
		Domain:   h.cookieDomain,
		MaxAge:   h.cookieMaxAge,
		Secure:   h.cookieSecure,
		HTTPOnly: h.cookieHTTPOnly,
		SameSite: h.cookieSameSite,
		Expires:  time.Now().Add(time.Duration(h.cookieMaxAge) * time.Second),
	})
}

func (h *AuthHTTPHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     h.cookiePath,
		Domain:   h.cookieDomain,
		MaxAge:   -1,
		Secure:   h.cookieSecure,
		HTTPOnly: h.cookieHTTPOnly,
		SameSite: h.cookieSameSite,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
