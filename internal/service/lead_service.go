package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/internal/repository"
)

type LeadService struct {
	leadRepo repository.LeadRepository
	now      func() time.Time
}

func NewLeadService(leadRepo repository.LeadRepository) *LeadService {
	return &LeadService{leadRepo: leadRepo, now: time.Now}
}

// GetOrCreate returns the tenant's lead with phone, creating it when missing. An
// existing lead keeps its stored name and e-mail. When a concurrent request inserts the
// same phone first, the stored lead is returned.
func (s *LeadService) GetOrCreate(ctx context.Context, tenantID uuid.UUID, phone, email, name string) (*domain.Lead, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, invalid("phone is required")
	}

	lead, err := s.leadRepo.GetByPhone(ctx, tenantID, phone)
	if err == nil {
		return lead, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	lead = &domain.Lead{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Phone:     phone,
		Email:     strings.TrimSpace(email),
		Name:      strings.TrimSpace(name),
		CreatedAt: s.now().UTC(),
	}
	err = s.leadRepo.Create(ctx, lead)
	if errors.Is(err, domain.ErrConflict) {
		return s.leadRepo.GetByPhone(ctx, tenantID, phone)
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// List returns the caller's leads, newest first.
func (s *LeadService) List(ctx context.Context, p domain.Principal) ([]*domain.Lead, error) {
	if err := requireTenant(p); err != nil {
		return nil, err
	}
	return s.leadRepo.ListByTenant(ctx, p.TenantID)
}
