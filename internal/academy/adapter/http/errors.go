package http

import (
	"errors"

	"showcase-platform/internal/academy/domain/model"
	"showcase-platform/internal/academy/domain/repository"
	apperrors "showcase-platform/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrCohortName),
		errors.Is(err, model.ErrCohortDates),
		errors.Is(err, model.ErrCohortStatus),
		errors.Is(err, model.ErrProfileName),
		errors.Is(err, model.ErrTemplateName),
		errors.Is(err, model.ErrSubmissionTitle):
		return fiber.StatusBadRequest
	case errors.Is(err, repository.ErrDuplicate):
		return fiber.StatusConflict
	case errors.Is(err, repository.ErrNotFound):
		return fiber.StatusNotFound
	}
	return apperrors.HTTPStatus(err)
}

// respondError writes err as {"error": ...}, with field details for validation errors.
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

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
}
