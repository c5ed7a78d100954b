package http

import (
	"strconv"

	"showcase-platform/internal/academy/domain/model"
	"showcase-platform/internal/academy/domain/repository"
	"showcase-platform/internal/academy/usecase"
	"showcase-platform/internal/security"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes cohorts, profiles, submissions and templates.
type Handler struct {
	cohorts     *usecase.CohortUsecase
	profiles    *usecase.ProfileUsecase
	submissions *usecase.SubmissionUsecase
	templates   *usecase.TemplateUsecase
}

func NewHandler(cohorts *usecase.CohortUsecase, profiles *usecase.ProfileUsecase, submissions *usecase.SubmissionUsecase, templates *usecase.TemplateUsecase) *Handler {
	return &Handler{cohorts: cohorts, profiles: profiles, submissions: submissions, templates: templates}
}

// RegisterRoutes mounts the academy API. protect runs before every route.
func (h *Handler) RegisterRoutes(router fiber.Router, protect ...fiber.Handler) {
	cohorts := router.Group("/cohorts", protect...)
	cohorts.Get("/", h.ListCohorts)
	cohorts.Post("/", h.CreateCohort)
	cohorts.Get("/:id", h.GetCohort)
	cohorts.Put("/:id", h.UpdateCohort)
	cohorts.Delete("/:id", h.DeleteCohort)
	cohorts.Put("/:id/status", h.SetCohortStatus)
	cohorts.Put("/:id/instructors", h.AssignInstructors)
	cohorts.Get("/:id/stats", h.CohortStats)
	cohorts.Get("/:id/students", h.CohortStudents)

	students := router.Group("/profiles/students", protect...)
	students.Get("/", h.ListStudents)
	students.Post("/", h.CreateStudentProfile)
	students.Get("/me", h.MyStudentProfile)
	students.Get("/:id", h.GetStudentProfile)
	students.Put("/:id", h.UpdateStudentProfile)
	students.Delete("/:id", h.DeleteStudentProfile)

	instructors := router.Group("/profiles/instructors", protect...)
	instructors.Get("/", h.ListInstructors)
	instructors.Post("/", h.CreateInstructorProfile)
	instructors.Get("/me", h.MyInstructorProfile)
	instructors.Get("/me/cohorts", h.MyCohorts)
	instructors.Get("/:id", h.GetInstructorProfile)
	instructors.Put("/:id", h.UpdateInstructorProfile)
	instructors.Delete("/:id", h.DeleteInstructorProfile)

	subs := router.Group("/submissions", protect...)
	subs.Get("/", h.ListSubmissions)
	subs.Post("/", h.CreateSubmission)
	subs.Post("/bulk-grade", h.BulkGrade)
	subs.Get("/:id", h.GetSubmission)
	subs.Patch("/:id", h.UpdateSubmission)
	subs.Delete("/:id", h.DeleteSubmission)
	subs.Post("/:id/submit", h.SubmitSubmission)
	subs.Post("/:id/grade", h.GradeSubmission)
	subs.Post("/:id/archive", h.ArchiveSubmission)
	subs.Put("/:id/showcase", h.SetShowcaseSelection)

	templates := router.Group("/templates", protect...)
	templates.Get("/", h.ListTemplates)
	templates.Post("/", h.CreateTemplate)
	templates.Get("/:id", h.GetTemplate)
	templates.Put("/:id", h.UpdateTemplate)
	templates.Delete("/:id", h.DeleteTemplate)
	templates.Get("/:id/files", h.ListTemplateFiles)
	templates.Get("/:id/files/*", h.GetTemplateFile)
	templates.Put("/:id/files/*", h.UploadTemplateFile)
	templates.Delete("/:id/files/*", h.DeleteTemplateFile)
}

func subject(c *fiber.Ctx) security.Subject {
	return security.SubjectFromContext(c.UserContext())
}

// Cohorts

func (h *Handler) ListCohorts(c *fiber.Ctx) error {
	list, err := h.cohorts.List(c.UserContext(), model.CohortStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"cohorts": list})
}

func (h *Handler) CreateCohort(c *fiber.Ctx) error {
	var req usecase.CohortRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	cohort, err := h.cohorts.Create(c.UserContext(), subject(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cohort)
}

func (h *Handler) GetCohort(c *fiber.Ctx) error {
	cohort, err := h.cohorts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cohort)
}

func (h *Handler) UpdateCohort(c *fiber.Ctx) error {
	var req usecase.CohortRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	cohort, err := h.cohorts.Update(c.UserContext(), subject(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cohort)
}

func (h *Handler) DeleteCohort(c *fiber.Ctx) error {
	if err := h.cohorts.Delete(c.UserContext(), subject(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) SetCohortStatus(c *fiber.Ctx) error {
	var req struct {
		Status model.CohortStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	cohort, err := h.cohorts.SetStatus(c.UserContext(), subject(c), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cohort)
}

func (h *Handler) AssignInstructors(c *fiber.Ctx) error {
	var req struct {
		Instructors []string `json:"instructors"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	cohort, err := h.cohorts.AssignInstructors(c.UserContext(), subject(c), c.Params("id"), req.Instructors)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cohort)
}

func (h *Handler) CohortStats(c *fiber.Ctx) error {
	stats, err := h.cohorts.Stats(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *Handler) CohortStudents(c *fiber.Ctx) error {
	if _, err := h.cohorts.Get(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	list, err := h.profiles.ListStudents(c.UserContext(), subject(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"students": list})
}

// Student profiles

func (h *Handler) ListStudents(c *fiber.Ctx) error {
	list, err := h.profiles.ListStudents(c.UserContext(), subject(c), c.Query("cohortId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"students": list})
}

func (h *Handler) CreateStudentProfile(c *fiber.Ctx) error {
	var req usecase.StudentProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	p, err := h.profiles.CreateStudentProfile(c.UserContext(), subject(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handler) MyStudentProfile(c *fiber.Ctx) error {
	p, err := h.profiles.GetStudentProfileByUser(c.UserContext(), subject(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) GetStudentProfile(c *fiber.Ctx) error {
	p, err := h.profiles.GetStudentProfile(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) UpdateStudentProfile(c *fiber.Ctx) error {
	var req usecase.StudentProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	p, err := h.profiles.UpdateStudentProfile(c.UserContext(), subject(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) DeleteStudentProfile(c *fiber.Ctx) error {
	if err := h.profiles.DeleteStudentProfile(c.UserContext(), subject(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Instructor profiles

func (h *Handler) ListInstructors(c *fiber.Ctx) error {
	list, err := h.profiles.ListInstructors(c.UserContext(), c.Query("cohortId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"instructors": list})
}

func (h *Handler) CreateInstructorProfile(c *fiber.Ctx) error {
	var req usecase.InstructorProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	p, err := h.profiles.CreateInstructorProfile(c.UserContext(), subject(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handler) MyInstructorProfile(c *fiber.Ctx) error {
	p, err := h.profiles.GetInstructorProfileByUser(c.UserContext(), subject(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) MyCohorts(c *fiber.Ctx) error {
	list, err := h.profiles.AssignedCohorts(c.UserContext(), subject(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"cohorts": list})
}

func (h *Handler) GetInstructorProfile(c *fiber.Ctx) error {
	p, err := h.profiles.GetInstructorProfile(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) UpdateInstructorProfile(c *fiber.Ctx) error {
	var req usecase.InstructorProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	p, err := h.profiles.UpdateInstructorProfile(c.UserContext(), subject(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) DeleteInstructorProfile(c *fiber.Ctx) error {
	if err := h.profiles.DeleteInstructorProfile(c.UserContext(), subject(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Submissions

func (h *Handler) ListSubmissions(c *fiber.Ctx) error {
	filter := repository.SubmissionFilter{
		StudentProfileID: c.Query("studentProfileId"),
		StudentID:        c.Query("studentId"),
		CohortID:         c.Query("cohortId"),
		Status:           model.SubmissionStatus(c.Query("status")),
	}
	if w := c.Query("week"); w != "" {
		week, err := strconv.Atoi(w)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "week must be a number"})
		}
		filter.Week = week
	}
	list, err := h.submissions.List(c.UserContext(), subject(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"submissions": list})
}

func (h *Handler) CreateSubmission(c *fiber.Ctx) error {
	var req usecase.CreateSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	s, err := h.submissions.Create(c.UserContext(), subject(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s)
}

func (h *Handler) GetSubmission(c *fiber.Ctx) error {
	view, err := h.submissions.Get(c.UserContext(), subject(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) UpdateSubmission(c *fiber.Ctx) error {
	var changes map[string]interface{}
	if err := c.BodyParser(&changes); err != nil {
		return badBody(c)
	}
	view, err := h.submissions.Update(c.UserContext(), subject(c), c.Params("id"), changes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) DeleteSubmission(c *fiber.Ctx) error {
	if err := h.submissions.Delete(c.UserContext(), subject(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) SubmitSubmission(c *fiber.Ctx) error {
	s, err := h.submissions.Submit(c.UserContext(), subject(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s)
}

func (h *Handler) GradeSubmission(c *fiber.Ctx) error {
	var req usecase.GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	s, err := h.submissions.Grade(c.UserContext(), subject(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s)
}

func (h *Handler) BulkGrade(c *fiber.Ctx) error {
	var req struct {
		Grades []usecase.BulkGradeItem `json:"grades"`
	}
	if err := c.BodyParser(&req); err != nil || len(req.Grades) == 0 {
		return badBody(c)
	}
	results := h.submissions.BulkGrade(c.UserContext(), subject(c), req.Grades)
	return c.JSON(fiber.Map{"results": results})
}

func (h *Handler) ArchiveSubmission(c *fiber.Ctx) error {
	s, err := h.submissions.Archive(c.UserContext(), subject(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s)
}

func (h *Handler) SetShowcaseSelection(c *fiber.Ctx) error {
	var req struct {
		Included bool `json:"included"`
		Priority int  `json:"priority"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	s, err := h.submissions.SetShowcaseSelection(c.UserContext(), subject(c), c.Params("id"), req.Included, req.Priority)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s)
}

// Templates

func (h *Handler) ListTemplates(c *fiber.Ctx) error {
	list, err := h.templates.List(c.UserContext(), subject(c), c.QueryBool("all"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"templates": list})
}

func (h *Handler) CreateTemplate(c *fiber.Ctx) error {
	var req usecase.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	t, err := h.templates.Create(c.UserContext(), subject(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *Handler) GetTemplate(c *fiber.Ctx) error {
	t, err := h.templates.Get(c.UserContext(), subject(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}

func (h *Handler) UpdateTemplate(c *fiber.Ctx) error {
	var req usecase.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	t, err := h.templates.Update(c.UserContext(), subject(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}

func (h *Handler) DeleteTemplate(c *fiber.Ctx) error {
	if err := h.templates.Delete(c.UserContext(), subject(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ListTemplateFiles(c *fiber.Ctx) error {
	names, err := h.templates.Files(c.UserContext(), subject(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"files": names})
}

func (h *Handler) GetTemplateFile(c *fiber.Ctx) error {
	obj, err := h.templates.File(c.UserContext(), subject(c), c.Params("id"), c.Params("*"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, obj.ContentType)
	return c.Send(obj.Data)
}

func (h *Handler) UploadTemplateFile(c *fiber.Ctx) error {
	data := append([]byte(nil), c.Body()...)
	t, err := h.templates.UploadFile(c.UserContext(), subject(c), c.Params("id"), c.Params("*"), data)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}

func (h *Handler) DeleteTemplateFile(c *fiber.Ctx) error {
	if err := h.templates.DeleteFile(c.UserContext(), subject(c), c.Params("id"), c.Params("*")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
