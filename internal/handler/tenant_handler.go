package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gomesrodrigo528/app-form/internal/service"
	"github.com/gomesrodrigo528/app-form/pkg/validator"
)

type TenantHandler struct {
	tenantService *service.TenantService
	userService   *service.UserService
	validator     *validator.Validator
}

func NewTenantHandler(tenantService *service.TenantService, userService *service.UserService, validator *validator.Validator) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
		userService:   userService,
		validator:     validator,
	}
}

// GetSettings returns the caller's tenant with its public-page texts.
// GET /api/v1/settings
func (h *TenantHandler) GetSettings(c *fiber.Ctx) error {
	profile, err := h.tenantService.Profile(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// UpdateSettings PUT /api/v1/settings
func (h *TenantHandler) UpdateSettings(c *fiber.Ctx) error {
	var req service.UpdateProfileRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	profile, err := h.tenantService.UpdateProfile(c.UserContext(), principal(c), req)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// ListTenants lists every tenant (superuser only)
// GET /api/v1/admin/tenants
func (h *TenantHandler) ListTenants(c *fiber.Ctx) error {
	tenants, err := h.tenantService.List(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tenants": tenants})
}

// CreateTenant creates a tenant together with its first admin (superuser only)
// POST /api/v1/admin/tenants
func (h *TenantHandler) CreateTenant(c *fiber.Ctx) error {
	var req service.CreateTenantRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}

	tenant, admin, err := h.tenantService.CreateWithAdmin(c.UserContext(), principal(c), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Tenant created successfully",
		"tenant":  tenant,
		"admin":   admin,
	})
}

// GetTenant GET /api/v1/admin/tenants/:id
func (h *TenantHandler) GetTenant(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	tenant, err := h.tenantService.Get(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(tenant)
}

// UpdateTenant PUT /api/v1/admin/tenants/:id
func (h *TenantHandler) UpdateTenant(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.UpdateTenantRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	tenant, err := h.tenantService.AdminUpdate(c.UserContext(), principal(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(tenant)
}

// DeleteTenant removes a tenant without users
// DELETE /api/v1/admin/tenants/:id
func (h *TenantHandler) DeleteTenant(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.tenantService.Delete(c.UserContext(), principal(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListTenantUsers GET /api/v1/admin/tenants/:id/users
func (h *TenantHandler) ListTenantUsers(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	users, err := h.userService.List(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": users})
}

// AddTenantUser POST /api/v1/admin/tenants/:id/users
func (h *TenantHandler) AddTenantUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.CreateUserRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	user, err := h.userService.AddUser(c.UserContext(), principal(c), id, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}
