package http

import (
	"strconv"
	"time"

	"showcase-platform/internal/audit/domain/model"
	"showcase-platform/internal/audit/usecase"
	apperrors "showcase-platform/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// Handler serves audit log queries.
type Handler struct {
	recorder *usecase.Recorder
}

func NewHandler(recorder *usecase.Recorder) *Handler {
	return &Handler{recorder: recorder}
}

// RegisterRoutes mounts GET /audit-logs behind guards.
func (h *Handler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	handlers := append(append([]fiber.Handler{}, guards...), h.List)
	router.Get("/audit-logs", handlers...)
}

// ParseFilter reads userId, actionType, resourceType, resourceId, from, to and limit
// from the query string. Times are RFC 3339.
func ParseFilter(c *fiber.Ctx) (model.Filter, error) {
	verrs := apperrors.NewValidationErrors()
	f := model.Filter{
		UserID:       c.Query("userId"),
		ActionType:   model.ActionType(c.Query("actionType")),
		ResourceType: model.ResourceType(c.Query("resourceType")),
		ResourceID:   c.Query("resourceId"),
	}
	if f.ActionType != "" && !f.ActionType.Valid() {
		verrs.Add("actionType", "unknown action type", string(f.ActionType))
	}
	if f.ResourceType != "" && !f.ResourceType.Valid() {
		verrs.Add("resourceType", "unknown resource type", string(f.ResourceType))
	}
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			verrs.Add(p.name, "must be an RFC 3339 timestamp", raw)
			continue
		}
		*p.dst = t.UTC()
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			verrs.Add("limit", "must be a positive integer", raw)
		}
		f.Limit = n
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		verrs.Add("to", "must not be before from", c.Query("to"))
	}
	if verrs.HasErrors() {
		return f, verrs
	}
	return f.Normalize(), nil
}

func (h *Handler) List(c *fiber.Ctx) error {
	filter, err := ParseFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": err.(*apperrors.ValidationErrors).Errors,
		})
	}
	entries, err := h.recorder.Query(c.UserContext(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(fiber.Map{
		"auditLogs": entries,
		"count":     len(entries),
		"limit":     filter.Limit,
	})
}
