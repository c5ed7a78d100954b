package http

import (
	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/usecase"
	"showcase-platform/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// DelegationHandler exposes permission delegation endpoints.
type DelegationHandler struct {
	usecase *usecase.DelegationUsecase
}

func NewDelegationHandler(uc *usecase.DelegationUsecase) *DelegationHandler {
	return &DelegationHandler{usecase: uc}
}

// RegisterRoutes mounts the delegation endpoints on an authenticated router.
func (h *DelegationHandler) RegisterRoutes(router fiber.Router, middleware *AuthMiddleware) {
	g := router.Group("/delegations")
	g.Get("/received", h.ListReceived)
	g.Get("/permissions", h.ActivePermissions)
	g.Get("/", middleware.RequireRole(model.RoleInstructor), h.ListGranted)
	g.Post("/", middleware.RequireRole(model.RoleInstructor), h.Create)
	g.Delete("/:id", h.Revoke)
}

func (h *DelegationHandler) Create(c *fiber.Ctx) error {
	var req usecase.CreateDelegationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	d, err := h.usecase.Create(c.UserContext(), utils.GetUserIDOrDefault(c.UserContext(), ""), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(d)
}

func (h *DelegationHandler) ListGranted(c *fiber.Ctx) error {
	list, err := h.usecase.ListGranted(c.UserContext(), utils.GetUserIDOrDefault(c.UserContext(), ""))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"delegations": list})
}

func (h *DelegationHandler) ListReceived(c *fiber.Ctx) error {
	list, err := h.usecase.ListReceived(c.UserContext(), utils.GetUserIDOrDefault(c.UserContext(), ""))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"delegations": list})
}

func (h *DelegationHandler) ActivePermissions(c *fiber.Ctx) error {
	perms, err := h.usecase.ActivePermissions(c.UserContext(), utils.GetUserIDOrDefault(c.UserContext(), ""))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"permissions": perms})
}

func (h *DelegationHandler) Revoke(c *fiber.Ctx) error {
	ctx := c.UserContext()
	role := model.Role(utils.GetUserRoleOrDefault(ctx, string(model.RoleGuest)))
	if err := h.usecase.Revoke(ctx, utils.GetUserIDOrDefault(ctx, ""), role, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
