package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// GetByEmail returns the first user registered with email, in any tenant.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByTenantAndEmail(ctx context.Context, tenantID uuid.UUID, email string) (*domain.User, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	// CountAdmins counts active admins only.
	CountAdmins(ctx context.Context, tenantID uuid.UUID) (int64, error)
	SuperuserExists(ctx context.Context) (bool, error)
}
