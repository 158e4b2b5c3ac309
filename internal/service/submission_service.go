package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/internal/repository"
)

// NewLeadWindow is how far back Stats counts leads as new.
const NewLeadWindow = 7 * 24 * time.Hour

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	responseRepo   repository.ResponseRepository
	leadRepo       repository.LeadRepository
	formRepo       repository.FormRepository
	fieldRepo      repository.FieldRepository
	now            func() time.Time
}

// SubmissionSummary is one row of the submissions list.
type SubmissionSummary struct {
	*domain.Submission
	FormTitle string       `json:"form_title"`
	Lead      *domain.Lead `json:"lead,omitempty"`
}

// Answer is a stored response labelled with its field.
type Answer struct {
	FieldID   uuid.UUID        `json:"field_id"`
	Label     string           `json:"label"`
	FieldType domain.FieldType `json:"field_type,omitempty"`
	Value     string           `json:"value"`
}

type SubmissionDetail struct {
	Submission *domain.Submission `json:"submission"`
	Form       *domain.Form       `json:"form,omitempty"`
	Lead       *domain.Lead       `json:"lead,omitempty"`
	Answers    []Answer           `json:"answers"`
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	responseRepo repository.ResponseRepository,
	leadRepo repository.LeadRepository,
	formRepo repository.FormRepository,
	fieldRepo repository.FieldRepository,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		responseRepo:   responseRepo,
		leadRepo:       leadRepo,
		formRepo:       formRepo,
		fieldRepo:      fieldRepo,
		now:            time.Now,
	}
}

// Create opens an incomplete submission started now.
func (s *SubmissionService) Create(ctx context.Context, formID, leadID, tenantID uuid.UUID) (*domain.Submission, error) {
	submission := &domain.Submission{
		ID:        uuid.New(),
		FormID:    formID,
		LeadID:    leadID,
		TenantID:  tenantID,
		Status:    domain.StatusIncomplete,
		StartedAt: s.now().UTC(),
	}
	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// RecordResponse stores the answer of one field. A second answer for the same field
// is a conflict.
func (s *SubmissionService) RecordResponse(ctx context.Context, submissionID, fieldID uuid.UUID, value string) (*domain.Response, error) {
	resp := &domain.Response{
		ID:           uuid.New(),
		SubmissionID: submissionID,
		FieldID:      fieldID,
		Value:        value,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.responseRepo.Create(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Finalize marks the submission completed now. Calling it again moves completed_at.
func (s *SubmissionService) Finalize(ctx context.Context, submissionID uuid.UUID) (time.Time, error) {
	at := s.now().UTC()
	if err := s.submissionRepo.Finalize(ctx, submissionID, at); err != nil {
		return time.Time{}, err
	}
	return at, nil
}

// MarkWhatsAppSent sets the one-way whatsapp_sent flag and reports whether this call
// set it.
func (s *SubmissionService) MarkWhatsAppSent(ctx context.Context, submissionID uuid.UUID) (bool, error) {
	return s.submissionRepo.MarkWhatsAppSent(ctx, submissionID, s.now().UTC())
}

// Stats counts the caller's submissions and the leads created in the last seven days.
func (s *SubmissionService) Stats(ctx context.Context, p domain.Principal) (*domain.Stats, error) {
	if err := requireTenant(p); err != nil {
		return nil, err
	}

	var stats domain.Stats
	var err error
	if stats.Total, err = s.submissionRepo.Count(ctx, p.TenantID, ""); err != nil {
		return nil, err
	}
	if stats.Completed, err = s.submissionRepo.Count(ctx, p.TenantID, domain.StatusCompleted); err != nil {
		return nil, err
	}
	if stats.Incomplete, err = s.submissionRepo.Count(ctx, p.TenantID, domain.StatusIncomplete); err != nil {
		return nil, err
	}
	since := s.now().UTC().Add(-NewLeadWindow)
	if stats.NewLeads, err = s.leadRepo.CountSince(ctx, p.TenantID, since); err != nil {
		return nil, err
	}
	return &stats, nil
}

// List returns the caller's submissions, newest first, optionally filtered by status.
func (s *SubmissionService) List(ctx context.Context, p domain.Principal, status domain.SubmissionStatus) ([]SubmissionSummary, error) {
	if err := requireTenant(p); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, invalid("unknown status %q", status)
	}

	subs, err := s.submissionRepo.ListByTenant(ctx, p.TenantID, status)
	if err != nil {
		return nil, err
	}

	leads := make(map[uuid.UUID]*domain.Lead)
	titles := make(map[uuid.UUID]string)
	out := make([]SubmissionSummary, 0, len(subs))
	for _, sub := range subs {
		lead, ok := leads[sub.LeadID]
		if !ok {
			if lead, err = s.optionalLead(ctx, sub.LeadID); err != nil {
				return nil, err
			}
			leads[sub.LeadID] = lead
		}
		title, ok := titles[sub.FormID]
		if !ok {
			form, err := s.formRepo.GetByID(ctx, sub.FormID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			if form != nil {
				title = form.Title
			}
			titles[sub.FormID] = title
		}
		out = append(out, SubmissionSummary{Submission: sub, FormTitle: title, Lead: lead})
	}
	return out, nil
}

func (s *SubmissionService) optionalLead(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return lead, err
}

// Detail returns one of the caller's submissions with its answers in field order.
// Answers to fields deleted since come last.
func (s *SubmissionService) Detail(ctx context.Context, p domain.Principal, submissionID uuid.UUID) (*SubmissionDetail, error) {
	if err := requireTenant(p); err != nil {
		return nil, err
	}
	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if !p.Owns(sub.TenantID) {
		return nil, domain.ErrNotFound
	}

	detail := &SubmissionDetail{Submission: sub, Answers: []Answer{}}
	if detail.Lead, err = s.optionalLead(ctx, sub.LeadID); err != nil {
		return nil, err
	}
	form, err := s.formRepo.GetByID(ctx, sub.FormID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	detail.Form = form

	responses, err := s.responseRepo.ListBySubmission(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	byField := make(map[uuid.UUID]*domain.Response, len(responses))
	for _, r := range responses {
		byField[r.FieldID] = r
	}

	if form != nil {
		fields, err := s.fieldRepo.ListByForm(ctx, form.ID)
		if err != nil {
			return nil, err
		}
		for _, f := range fields {
			r, ok := byField[f.ID]
			if !ok {
				continue
			}
			detail.Answers = append(detail.Answers, Answer{
				FieldID:   f.ID,
				Label:     f.Label,
				FieldType: f.FieldType,
				Value:     r.Value,
			})
			delete(byField, f.ID)
		}
	}
	for _, r := range responses {
		if _, orphan := byField[r.FieldID]; orphan {
			detail.Answers = append(detail.Answers, Answer{FieldID: r.FieldID, Value: r.Value})
		}
	}
	return detail, nil
}
