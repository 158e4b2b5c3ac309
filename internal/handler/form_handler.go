package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/service"
	"github.com/gomesrodrigo528/app-form/pkg/validator"
)

// FormHandler serves the form builder of the caller's tenant.
type FormHandler struct {
	formService *service.FormService
	validator   *validator.Validator
}

func NewFormHandler(formService *service.FormService, validator *validator.Validator) *FormHandler {
	return &FormHandler{
		formService: formService,
		validator:   validator,
	}
}

// ListForms GET /api/v1/forms
func (h *FormHandler) ListForms(c *fiber.Ctx) error {
	forms, err := h.formService.ListForms(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"forms": forms})
}

// CreateForm POST /api/v1/forms
func (h *FormHandler) CreateForm(c *fiber.Ctx) error {
	var req service.CreateFormRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	form, err := h.formService.CreateForm(c.UserContext(), principal(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(form)
}

// GetForm returns the form with its fields.
// GET /api/v1/forms/:id
func (h *FormHandler) GetForm(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, p := c.UserContext(), principal(c)

	form, err := h.formService.GetForm(ctx, p, id)
	if err != nil {
		return err
	}
	fields, err := h.formService.ListFields(ctx, p, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"form":   form,
		"fields": fields,
	})
}

// UpdateForm PUT /api/v1/forms/:id
func (h *FormHandler) UpdateForm(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateFormRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	form, err := h.formService.UpdateForm(c.UserContext(), principal(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(form)
}

// DeleteForm removes the form together with its fields.
// DELETE /api/v1/forms/:id
func (h *FormHandler) DeleteForm(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.formService.DeleteForm(c.UserContext(), principal(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Link GET /api/v1/forms/:id/link
func (h *FormHandler) Link(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	link, err := h.formService.FormLink(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"url": link})
}

// ListFields GET /api/v1/forms/:id/fields
func (h *FormHandler) ListFields(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	fields, err := h.formService.ListFields(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"fields": fields})
}

// CreateField POST /api/v1/forms/:id/fields
func (h *FormHandler) CreateField(c *fiber.Ctx) error {
	formID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.FieldRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	field, err := h.formService.CreateField(c.UserContext(), principal(c), formID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(field)
}

// GetField GET /api/v1/forms/:id/fields/:fieldId
func (h *FormHandler) GetField(c *fiber.Ctx) error {
	formID, fieldID, err := fieldParams(c)
	if err != nil {
		return err
	}
	field, err := h.formService.GetField(c.UserContext(), principal(c), formID, fieldID)
	if err != nil {
		return err
	}
	return c.JSON(field)
}

// UpdateField PUT /api/v1/forms/:id/fields/:fieldId
func (h *FormHandler) UpdateField(c *fiber.Ctx) error {
	formID, fieldID, err := fieldParams(c)
	if err != nil {
		return err
	}
	var req service.FieldRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	field, err := h.formService.UpdateField(c.UserContext(), principal(c), formID, fieldID, req)
	if err != nil {
		return err
	}
	return c.JSON(field)
}

// DeleteField DELETE /api/v1/forms/:id/fields/:fieldId
func (h *FormHandler) DeleteField(c *fiber.Ctx) error {
	formID, fieldID, err := fieldParams(c)
	if err != nil {
		return err
	}
	if err := h.formService.DeleteField(c.UserContext(), principal(c), formID, fieldID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func fieldParams(c *fiber.Ctx) (formID, fieldID uuid.UUID, err error) {
	if formID, err = paramID(c, "id"); err != nil {
		return
	}
	fieldID, err = paramID(c, "fieldId")
	return
}
