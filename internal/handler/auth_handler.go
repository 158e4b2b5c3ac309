package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gomesrodrigo528/app-form/internal/handler/middleware"
	"github.com/gomesrodrigo528/app-form/internal/service"
	"github.com/gomesrodrigo528/app-form/pkg/validator"
)

type AuthHandler struct {
	authService   *service.AuthService
	tenantService *service.TenantService
	userService   *service.UserService
	validator     *validator.Validator
}

func NewAuthHandler(
	authService *service.AuthService,
	tenantService *service.TenantService,
	userService *service.UserService,
	validator *validator.Validator,
) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		tenantService: tenantService,
		userService:   userService,
		validator:     validator,
	}
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// Register creates a workspace with its first admin and logs the admin in.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	if _, _, err := h.tenantService.Register(c.UserContext(), req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), service.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Logout revokes the presented token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	if err := h.authService.Logout(c.UserContext(), claims); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}

// Me returns the caller and their workspace
// GET /api/v1/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p := principal(c)
	user, err := h.userService.Me(c.UserContext(), p)
	if err != nil {
		return err
	}
	tenant, err := h.tenantService.GetByID(c.UserContext(), p.TenantID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"user":   user,
		"tenant": tenant,
	})
}
