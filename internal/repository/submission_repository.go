package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error)
	GetByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*domain.Lead, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Lead, error)
	CountSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	// ListByTenant returns the newest submissions first; an empty status matches all.
	ListByTenant(ctx context.Context, tenantID uuid.UUID, status domain.SubmissionStatus) ([]*domain.Submission, error)
	Count(ctx context.Context, tenantID uuid.UUID, status domain.SubmissionStatus) (int64, error)
	Finalize(ctx context.Context, id uuid.UUID, at time.Time) error
	// MarkWhatsAppSent reports whether the flag flipped on this call.
	MarkWhatsAppSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type ResponseRepository interface {
	Create(ctx context.Context, response *domain.Response) error
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*domain.Response, error)
}
