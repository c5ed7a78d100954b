package http

import (
	"strconv"
	"time"

	"showcase-platform/internal/security"
	"showcase-platform/internal/showcase/config"
	"showcase-platform/internal/showcase/domain/model"
	"showcase-platform/internal/showcase/usecase"
	"showcase-platform/internal/shared/storage"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes showcase management and the public portfolio routes.
type Handler struct {
	cfg       *config.Config
	showcases *usecase.ShowcaseUsecase
	publisher *usecase.Publisher
	analytics *usecase.AnalyticsUsecase
}

func NewHandler(cfg *config.Config, showcases *usecase.ShowcaseUsecase, publisher *usecase.Publisher, analytics *usecase.AnalyticsUsecase) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Handler{cfg: cfg, showcases: showcases, publisher: publisher, analytics: analytics}
}

// RegisterRoutes mounts the authenticated showcase API.
func (h *Handler) RegisterRoutes(router fiber.Router, protect ...fiber.Handler) {
	g := router.Group("/showcases", protect...)
	g.Get("/", h.List)
	g.Post("/", h.Create)
	g.Get("/me", h.Mine)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Delete("/:id", h.Delete)
	g.Post("/:id/projects/refresh", h.RefreshProjects)
	g.Post("/:id/publish", h.Publish)
	g.Post("/:id/unpublish", h.Unpublish)
	g.Post("/:id/preview", h.Preview)
	g.Get("/:id/previews/:ts/*", h.PreviewFile)
	g.Get("/:id/analytics", h.Summary)
}

// RegisterPublicRoutes mounts the anonymous portfolio routes. middleware runs first,
// typically the relaxed security headers.
func (h *Handler) RegisterPublicRoutes(router fiber.Router, middleware ...fiber.Handler) {
	g := router.Group("/p", middleware...)
	g.Post("/:username/views", h.TrackView)
	g.Get("/:username", h.PublicIndex)
	g.Get("/:username/*", h.PublicFile)
}

func subject(c *fiber.Ctx) security.Subject {
	return security.SubjectFromContext(c.UserContext())
}

func (h *Handler) List(c *fiber.Ctx) error {
	list, err := h.showcases.List(c.UserContext(), subject(c), c.QueryBool("published"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"showcases": list})
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var req usecase.CreateShowcaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	sc, err := h.showcases.Create(c.UserContext(), subject(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sc)
}

func (h *Handler) Mine(c *fiber.Ctx) error {
	view, err := h.showcases.GetMine(c.UserContext(), subject(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	view, err := h.showcases.Get(c.UserContext(), subject(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	changes := map[string]interface{}{}
	if err := c.BodyParser(&changes); err != nil || len(changes) == 0 {
		return badBody(c)
	}
	view, err := h.showcases.Update(c.UserContext(), subject(c), c.Params("id"), changes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.showcases.Delete(c.UserContext(), subject(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) RefreshProjects(c *fiber.Ctx) error {
	sc, err := h.showcases.RefreshProjects(c.UserContext(), subject(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"projects": sc.Projects})
}

func (h *Handler) Publish(c *fiber.Ctx) error {
	var b model.Bundle
	if err := c.BodyParser(&b); err != nil {
		return badBody(c)
	}
	sc, err := h.publisher.Publish(c.UserContext(), subject(c), c.Params("id"), b)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"publication": sc.Publication})
}

func (h *Handler) Unpublish(c *fiber.Ctx) error {
	sc, err := h.publisher.Unpublish(c.UserContext(), subject(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"publication": sc.Publication})
}

func (h *Handler) Preview(c *fiber.Ctx) error {
	var b model.Bundle
	if err := c.BodyParser(&b); err != nil {
		return badBody(c)
	}
	preview, err := h.publisher.Preview(c.UserContext(), subject(c), c.Params("id"), b)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(preview)
}

func (h *Handler) PreviewFile(c *fiber.Ctx) error {
	ts, err := strconv.ParseInt(c.Params("ts"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "preview not found"})
	}
	obj, err := h.publisher.PreviewFile(c.UserContext(), subject(c), c.Params("id"), ts, c.Params("*"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return sendObject(c, obj)
}

func (h *Handler) Summary(c *fiber.Ctx) error {
	from, err := parseDay(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be a date (YYYY-MM-DD)"})
	}
	to, err := parseDay(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must be a date (YYYY-MM-DD)"})
	}
	summary, err := h.analytics.Summary(c.UserContext(), subject(c), c.Params("id"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

func parseDay(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(model.DateLayout, v)
}

// PublicIndex serves the published entry page and counts the visit.
func (h *Handler) PublicIndex(c *fiber.Ctx) error {
	username := c.Params("username")
	obj, err := h.publisher.PublicFile(c.UserContext(), username, "")
	if err != nil {
		return respondError(c, err)
	}
	h.track(c, username)
	return sendObject(c, obj)
}

func (h *Handler) PublicFile(c *fiber.Ctx) error {
	username := c.Params("username")
	name := c.Params("*")
	obj, err := h.publisher.PublicFile(c.UserContext(), username, name)
	if err != nil {
		return respondError(c, err)
	}
	if name == "" || name == model.IndexFile {
		h.track(c, username)
	}
	return sendObject(c, obj)
}

// TrackView records a project view reported by the published page.
func (h *Handler) TrackView(c *fiber.Ctx) error {
	var req usecase.ViewRequest
	if err := c.BodyParser(&req); err != nil || req.ProjectID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "projectId is required"})
	}
	if err := h.analytics.RecordView(c.UserContext(), c.Params("username"), h.viewRequest(c, req)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) viewRequest(c *fiber.Ctx, req usecase.ViewRequest) usecase.ViewRequest {
	if req.Referrer == "" {
		req.Referrer = c.Get(fiber.HeaderReferer)
	}
	if req.Country == "" {
		req.Country = c.Get("CF-IPCountry")
	}
	req.UserAgent = c.Get(fiber.HeaderUserAgent)
	req.SelfHost = c.Hostname()
	return req
}

// track counts a page view. The first visit within the cookie lifetime is unique.
func (h *Handler) track(c *fiber.Ctx, username string) {
	cookie := "sv_" + username
	req := h.viewRequest(c, usecase.ViewRequest{})
	req.Unique = c.Cookies(cookie) == ""
	if req.Unique {
		c.Cookie(&fiber.Cookie{
			Name:     cookie,
			Value:    "1",
			Path:     "/p/" + username,
			MaxAge:   int(h.cfg.VisitorCookieTTL.Seconds()),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	_ = h.analytics.RecordView(c.UserContext(), username, req)
}

const httpTimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

func sendObject(c *fiber.Ctx, obj *storage.Object) error {
	c.Set(fiber.HeaderContentType, obj.ContentType)
	if !obj.UpdatedAt.IsZero() {
		c.Set(fiber.HeaderLastModified, obj.UpdatedAt.UTC().Format(httpTimeFormat))
	}
	return c.Send(obj.Data)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
}
