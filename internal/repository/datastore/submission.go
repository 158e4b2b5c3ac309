package datastore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/internal/repository"
	"github.com/gomesrodrigo528/app-form/internal/storage"
)

type leadRepository struct {
	db storage.Client
}

func NewLeadRepository(db storage.Client) repository.LeadRepository {
	return &leadRepository{db: db}
}

func leadFromRow(r storage.Row) *domain.Lead {
	return &domain.Lead{
		ID:        asUUID(r["id"]),
		TenantID:  asUUID(r["tenant_id"]),
		Phone:     asString(r["phone"]),
		Email:     asString(r["email"]),
		Name:      asString(r["name"]),
		CreatedAt: asTime(r["created_at"]),
	}
}

func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	lead.CreatedAt = stamp(lead.CreatedAt)
	_, err := r.db.Insert(ctx, tableLeads, storage.Row{
		"id":         lead.ID.String(),
		"tenant_id":  lead.TenantID.String(),
		"phone":      lead.Phone,
		"email":      lead.Email,
		"name":       lead.Name,
		"created_at": lead.CreatedAt,
	})
	return translate("insert lead", err)
}

func (r *leadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	row, err := selectOne(ctx, r.db, tableLeads, storage.Eq("id", id.String()))
	if err != nil {
		return nil, err
	}
	return leadFromRow(row), nil
}

func (r *leadRepository) GetByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*domain.Lead, error) {
	row, err := selectOne(ctx, r.db, tableLeads,
		storage.Eq("tenant_id", tenantID.String()), storage.Eq("phone", phone))
	if err != nil {
		return nil, err
	}
	return leadFromRow(row), nil
}

func (r *leadRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Lead, error) {
	rows, err := r.db.Select(ctx, tableLeads,
		storage.Where(storage.Eq("tenant_id", tenantID.String())).OrderBy(storage.Desc("created_at")))
	if err != nil {
		return nil, translate("list leads", err)
	}
	leads := make([]*domain.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, leadFromRow(row))
	}
	return leads, nil
}

func (r *leadRepository) CountSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error) {
	n, err := r.db.Count(ctx, tableLeads, []storage.Filter{
		storage.Eq("tenant_id", tenantID.String()),
		storage.Gte("created_at", since.UTC()),
	})
	if err != nil {
		return 0, translate("count leads", err)
	}
	return n, nil
}

type submissionRepository struct {
	db storage.Client
}

func NewSubmissionRepository(db storage.Client) repository.SubmissionRepository {
	return &submissionRepository{db: db}
}

func submissionFromRow(r storage.Row) *domain.Submission {
	return &domain.Submission{
		ID:             asUUID(r["id"]),
		FormID:         asUUID(r["form_id"]),
		LeadID:         asUUID(r["lead_id"]),
		TenantID:       asUUID(r["tenant_id"]),
		Status:         domain.SubmissionStatus(asString(r["status"])),
		StartedAt:      asTime(r["started_at"]),
		CompletedAt:    asTimePtr(r["completed_at"]),
		WhatsAppSent:   asBool(r["whatsapp_sent"]),
		WhatsAppSentAt: asTimePtr(r["whatsapp_sent_at"]),
	}
}

func (r *submissionRepository) Create(ctx context.Context, s *domain.Submission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.StartedAt = stamp(s.StartedAt)
	_, err := r.db.Insert(ctx, tableSubmissions, storage.Row{
		"id":               s.ID.String(),
		"form_id":          s.FormID.String(),
		"lead_id":          s.LeadID.String(),
		"tenant_id":        s.TenantID.String(),
		"status":           string(s.Status),
		"started_at":       s.StartedAt,
		"completed_at":     nullableTime(s.CompletedAt),
		"whatsapp_sent":    s.WhatsAppSent,
		"whatsapp_sent_at": nullableTime(s.WhatsAppSentAt),
	})
	return translate("insert submission", err)
}

func (r *submissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	row, err := selectOne(ctx, r.db, tableSubmissions, storage.Eq("id", id.String()))
	if err != nil {
		return nil, err
	}
	return submissionFromRow(row), nil
}

func statusFilters(tenantID uuid.UUID, status domain.SubmissionStatus) []storage.Filter {
	filters := []storage.Filter{storage.Eq("tenant_id", tenantID.String())}
	if status != "" {
		filters = append(filters, storage.Eq("status", string(status)))
	}
	return filters
}

func (r *submissionRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, status domain.SubmissionStatus) ([]*domain.Submission, error) {
	rows, err := r.db.Select(ctx, tableSubmissions,
		storage.Where(statusFilters(tenantID, status)...).OrderBy(storage.Desc("started_at")))
	if err != nil {
		return nil, translate("list submissions", err)
	}
	subs := make([]*domain.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, submissionFromRow(row))
	}
	return subs, nil
}

func (r *submissionRepository) Count(ctx context.Context, tenantID uuid.UUID, status domain.SubmissionStatus) (int64, error) {
	n, err := r.db.Count(ctx, tableSubmissions, statusFilters(tenantID, status))
	if err != nil {
		return 0, translate("count submissions", err)
	}
	return n, nil
}

func (r *submissionRepository) Finalize(ctx context.Context, id uuid.UUID, at time.Time) error {
	n, err := r.db.Update(ctx, tableSubmissions, idFilter(id), storage.Row{
		"status":       string(domain.StatusCompleted),
		"completed_at": at.UTC(),
	})
	return expectOne(n, err, "finalize submission")
}

func (r *submissionRepository) MarkWhatsAppSent(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	n, err := r.db.Update(ctx, tableSubmissions,
		[]storage.Filter{storage.Eq("id", id.String()), storage.Eq("whatsapp_sent", false)},
		storage.Row{"whatsapp_sent": true, "whatsapp_sent_at": at.UTC()})
	if err != nil {
		return false, translate("mark whatsapp sent", err)
	}
	if n > 0 {
		return true, nil
	}
	// already sent, or no such submission
	if _, err := r.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	return false, nil
}

type responseRepository struct {
	db storage.Client
}

func NewResponseRepository(db storage.Client) repository.ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) Create(ctx context.Context, resp *domain.Response) error {
	if resp.ID == uuid.Nil {
		resp.ID = uuid.New()
	}
	resp.CreatedAt = stamp(resp.CreatedAt)
	_, err := r.db.Insert(ctx, tableResponses, storage.Row{
		"id":             resp.ID.String(),
		"submission_id":  resp.SubmissionID.String(),
		"field_id":       resp.FieldID.String(),
		"response_value": resp.Value,
		"created_at":     resp.CreatedAt,
	})
	return translate("insert response", err)
}

func (r *responseRepository) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*domain.Response, error) {
	rows, err := r.db.Select(ctx, tableResponses,
		storage.Where(storage.Eq("submission_id", submissionID.String())).OrderBy(storage.Asc("created_at")))
	if err != nil {
		return nil, translate("list responses", err)
	}
	out := make([]*domain.Response, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.Response{
			ID:           asUUID(row["id"]),
			SubmissionID: asUUID(row["submission_id"]),
			FieldID:      asUUID(row["field_id"]),
			Value:        asString(row["response_value"]),
			CreatedAt:    asTime(row["created_at"]),
		})
	}
	return out, nil
}
