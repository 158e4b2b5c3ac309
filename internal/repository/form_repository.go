package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
)

type FormRepository interface {
	Create(ctx context.Context, form *domain.Form) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Form, error)
	// ListByTenant returns the newest forms first.
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Form, error)
	Update(ctx context.Context, form *domain.Form) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type FieldRepository interface {
	Create(ctx context.Context, field *domain.FormField) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FormField, error)
	// ListByForm orders by field_order, then creation time.
	ListByForm(ctx context.Context, formID uuid.UUID) ([]*domain.FormField, error)
	Update(ctx context.Context, field *domain.FormField) error
	Delete(ctx context.Context, id uuid.UUID) error
}
