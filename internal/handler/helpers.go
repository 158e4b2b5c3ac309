package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/internal/handler/middleware"
	"github.com/gomesrodrigo528/app-form/pkg/validator"
)

var errInvalidBody = fiber.NewError(fiber.StatusBadRequest, "invalid request body")

// bind parses the request body into req and validates its tags.
func bind(c *fiber.Ctx, v *validator.Validator, req any) error {
	if err := c.BodyParser(req); err != nil {
		return errInvalidBody
	}
	if err := v.Validate(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	return nil
}

// paramID reads a uuid route parameter.
func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func principal(c *fiber.Ctx) domain.Principal {
	return middleware.Principal(c)
}
