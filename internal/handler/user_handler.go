package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gomesrodrigo528/app-form/internal/service"
	"github.com/gomesrodrigo528/app-form/pkg/validator"
)

// UserHandler manages the users of the caller's tenant.
type UserHandler struct {
	userService *service.UserService
	validator   *validator.Validator
}

func NewUserHandler(userService *service.UserService, validator *validator.Validator) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator,
	}
}

// ListUsers GET /api/v1/users
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	p := principal(c)
	users, err := h.userService.List(c.UserContext(), p, p.TenantID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": users})
}

// CreateUser adds a user to the caller's tenant (tenant admin only)
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	p := principal(c)
	user, err := h.userService.AddUser(c.UserContext(), p, p.TenantID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetUser GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.userService.Get(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// UpdateUser PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateUserRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	user, err := h.userService.Update(c.UserContext(), principal(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// DeleteUser DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.userService.Delete(c.UserContext(), principal(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
