package handler

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/internal/service"
	"github.com/gomesrodrigo528/app-form/pkg/validator"
)

// fieldPrefix names the inputs of a form-encoded submission: field_<id> for single
// values and field_<id>[] for checkbox groups.
const fieldPrefix = "field_"

// PublicHandler serves the unauthenticated form pages of every tenant.
type PublicHandler struct {
	formService   *service.FormService
	intakeService *service.IntakeService
	validator     *validator.Validator
}

func NewPublicHandler(formService *service.FormService, intakeService *service.IntakeService, validator *validator.Validator) *PublicHandler {
	return &PublicHandler{
		formService:   formService,
		intakeService: intakeService,
		validator:     validator,
	}
}

// GetForm GET /f/:slug/:formId
func (h *PublicHandler) GetForm(c *fiber.Ctx) error {
	formID, err := paramID(c, "formId")
	if err != nil {
		return err
	}
	form, err := h.formService.PublicForm(c.UserContext(), c.Params("slug"), formID)
	if err != nil {
		return err
	}
	return c.JSON(form)
}

// Submit records a lead's answers. The lead is sent on to WhatsApp with 303 when the
// tenant has a number, otherwise the thank-you message comes back as JSON.
// POST /f/:slug/:formId
func (h *PublicHandler) Submit(c *fiber.Ctx) error {
	formID, err := paramID(c, "formId")
	if err != nil {
		return err
	}

	req, err := parseSubmission(c)
	if err != nil {
		return err
	}
	if err := h.validator.Validate(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	result, err := h.intakeService.Submit(c.UserContext(), c.Params("slug"), formID, req)
	if err != nil {
		return err
	}

	if result.RedirectURL != "" {
		return c.Redirect(result.RedirectURL, fiber.StatusSeeOther)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func parseSubmission(c *fiber.Ctx) (service.SubmitRequest, error) {
	var req service.SubmitRequest
	if c.Is("json") {
		if err := c.BodyParser(&req); err != nil {
			return req, errInvalidBody
		}
		return req, nil
	}

	values := map[string][]string{}
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return req, errInvalidBody
		}
		values = form.Value
	} else {
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			k := string(key)
			values[k] = append(values[k], string(value))
		})
	}
	return submissionFromValues(values), nil
}

func submissionFromValues(values map[string][]string) service.SubmitRequest {
	first := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	req := service.SubmitRequest{
		Name:    first("name"),
		Phone:   first("phone"),
		Email:   first("email"),
		Answers: map[string]service.AnswerValue{},
	}
	for key, vals := range values {
		id, ok := strings.CutPrefix(key, fieldPrefix)
		if !ok {
			continue
		}
		id = strings.TrimSuffix(id, "[]")
		req.Answers[id] = append(req.Answers[id], vals...)
	}
	return req
}
