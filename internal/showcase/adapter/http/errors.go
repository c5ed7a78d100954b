package http

import (
	"errors"

	"showcase-platform/internal/showcase/domain/model"
	"showcase-platform/internal/showcase/domain/repository"
	apperrors "showcase-platform/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrUsername), errors.Is(err, model.ErrAccessType):
		return fiber.StatusBadRequest
	case errors.Is(err, repository.ErrDuplicate):
		return fiber.StatusConflict
	case errors.Is(err, repository.ErrNotFound):
		return fiber.StatusNotFound
	}
	return apperrors.HTTPStatus(err)
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)

	var verrs *apperrors.ValidationErrors
	if errors.As(err, &verrs) {
		return c.Status(status).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": verrs.Errors,
		})
	}

	msg := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	if status >= fiber.StatusInternalServerError {
		msg = "Internal server error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
