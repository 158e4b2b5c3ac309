package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
)

type TenantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	// GetActiveBySlug ignores disabled tenants.
	GetActiveBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
	// SlugTaken reports whether another tenant than exclude already uses slug.
	SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	Create(ctx context.Context, tenant *domain.Tenant) error
	Update(ctx context.Context, tenant *domain.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Tenant, error)
}

type SettingsRepository interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*domain.TenantSettings, error)
	Create(ctx context.Context, settings *domain.TenantSettings) error
	Update(ctx context.Context, settings *domain.TenantSettings) error
}
