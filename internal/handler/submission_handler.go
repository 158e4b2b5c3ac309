package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/internal/service"
)

// SubmissionHandler serves the read-only dashboard views.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
	leadService       *service.LeadService
}

func NewSubmissionHandler(submissionService *service.SubmissionService, leadService *service.LeadService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		leadService:       leadService,
	}
}

// ListSubmissions returns the tenant's submissions, newest first.
// GET /api/v1/submissions?status=completed
func (h *SubmissionHandler) ListSubmissions(c *fiber.Ctx) error {
	status := domain.SubmissionStatus(c.Query("status"))
	submissions, err := h.submissionService.List(c.UserContext(), principal(c), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"submissions": submissions})
}

// GetSubmission GET /api/v1/submissions/:id
func (h *SubmissionHandler) GetSubmission(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.submissionService.Detail(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// ListLeads GET /api/v1/leads
func (h *SubmissionHandler) ListLeads(c *fiber.Ctx) error {
	leads, err := h.leadService.List(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"leads": leads})
}

// Stats GET /api/v1/stats
func (h *SubmissionHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.submissionService.Stats(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
