// Package service holds the tenant-scoped business operations. Every operation that
// reads or writes tenant data takes the caller's Principal and checks ownership itself.
package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrConflict, fmt.Sprintf(format, args...))
}

func forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrForbidden, fmt.Sprintf(format, args...))
}

func requireTenant(p domain.Principal) error {
	if p.UserID == uuid.Nil || p.TenantID == uuid.Nil {
		return forbidden("no tenant in session")
	}
	return nil
}

func requireAdmin(p domain.Principal) error {
	if err := requireTenant(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return forbidden("admin role required")
	}
	return nil
}

func requireSuperuser(p domain.Principal) error {
	if !p.IsSuperuser {
		return forbidden("superuser required")
	}
	return nil
}

// canManageTenant reports whether p may administer users of tenantID.
func canManageTenant(p domain.Principal, tenantID uuid.UUID) bool {
	return p.IsSuperuser || (p.IsAdmin() && p.Owns(tenantID))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
