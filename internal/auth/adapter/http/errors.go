package http

import (
	"errors"
	"strconv"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/usecase"
	apperrors "showcase-platform/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps usecase errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrEmailTaken), errors.Is(err, usecase.ErrUsernameTaken):
		return fiber.StatusConflict
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrTokenInvalid),
		errors.Is(err, usecase.ErrSessionExpired),
		errors.Is(err, usecase.ErrSessionNotFound):
		return fiber.StatusUnauthorized
	case errors.Is(err, usecase.ErrAccountLocked):
		return fiber.StatusTooManyRequests
	case errors.Is(err, usecase.ErrAccountInactive), errors.Is(err, usecase.ErrDelegationForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, usecase.ErrUserNotFound), errors.Is(err, usecase.ErrDelegationNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidEmailFormat),
		errors.Is(err, usecase.ErrInvalidUsername),
		errors.Is(err, usecase.ErrWeakPassword),
		errors.Is(err, usecase.ErrInvalidRole),
		errors.Is(err, usecase.ErrDelegationRevoked),
		errors.Is(err, model.ErrDelegationSelf),
		errors.Is(err, model.ErrDelegationExpiry),
		errors.Is(err, model.ErrDelegationNoPerms),
		errors.Is(err, model.ErrDelegationIncomplete):
		return fiber.StatusBadRequest
	}
	var verrs *apperrors.ValidationErrors
	if errors.As(err, &verrs) {
		return fiber.StatusBadRequest
	}
	return apperrors.HTTPStatus(err)
}

// respondError writes err as {"error": ...}. Validation failures carry their field
// details and lockouts carry a Retry-After header.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)

	var lockErr *usecase.LockoutError
	if errors.As(err, &lockErr) {
		c.Set(fiber.HeaderRetryAfter, strconv.FormatInt(int64(lockErr.Remaining.Seconds()), 10))
	}

	var verrs *apperrors.ValidationErrors
	if errors.As(err, &verrs) {
		return c.Status(status).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": verrs.Errors,
		})
	}

	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		msg = "Internal server error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
