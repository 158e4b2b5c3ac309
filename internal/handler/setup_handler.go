package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gomesrodrigo528/app-form/internal/service"
	"github.com/gomesrodrigo528/app-form/pkg/validator"
)

type SetupHandler struct {
	userService *service.UserService
	validator   *validator.Validator
}

func NewSetupHandler(userService *service.UserService, validator *validator.Validator) *SetupHandler {
	return &SetupHandler{
		userService: userService,
		validator:   validator,
	}
}

// CreateSuperuser creates the first superuser.
// This endpoint only works if no superuser exists yet
// POST /api/v1/setup/superuser
func (h *SetupHandler) CreateSuperuser(c *fiber.Ctx) error {
	var req service.SetupSuperuserRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	user, err := h.userService.SetupSuperuser(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Superuser created successfully",
		"user":    user,
	})
}
