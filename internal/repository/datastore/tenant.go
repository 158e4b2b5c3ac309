package datastore

import (
	"context"

	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/internal/repository"
	"github.com/gomesrodrigo528/app-form/internal/storage"
)

type tenantRepository struct {
	db storage.Client
}

// NewTenantRepository creates a tenant repository backed by db
func NewTenantRepository(db storage.Client) repository.TenantRepository {
	return &tenantRepository{db: db}
}

func tenantToRow(t *domain.Tenant) storage.Row {
	return storage.Row{
		"id":              t.ID.String(),
		"name":            t.Name,
		"slug":            t.Slug,
		"owner_email":     t.OwnerEmail,
		"whatsapp_number": t.WhatsAppNumber,
		"primary_color":   t.PrimaryColor,
		"secondary_color": t.SecondaryColor,
		"is_active":       t.IsActive,
		"created_at":      t.CreatedAt,
		"updated_at":      t.UpdatedAt,
	}
}

func tenantFromRow(r storage.Row) *domain.Tenant {
	return &domain.Tenant{
		ID:             asUUID(r["id"]),
		Name:           asString(r["name"]),
		Slug:           asString(r["slug"]),
		OwnerEmail:     asString(r["owner_email"]),
		WhatsAppNumber: asString(r["whatsapp_number"]),
		PrimaryColor:   asString(r["primary_color"]),
		SecondaryColor: asString(r["secondary_color"]),
		IsActive:       asBool(r["is_active"]),
		CreatedAt:      asTime(r["created_at"]),
		UpdatedAt:      asTime(r["updated_at"]),
	}
}

func (r *tenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	row, err := selectOne(ctx, r.db, tableTenants, storage.Eq("id", id.String()))
	if err != nil {
		return nil, err
	}
	return tenantFromRow(row), nil
}

func (r *tenantRepository) GetActiveBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	row, err := selectOne(ctx, r.db, tableTenants, storage.Eq("slug", slug), storage.Eq("is_active", true))
	if err != nil {
		return nil, err
	}
	return tenantFromRow(row), nil
}

func (r *tenantRepository) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	filters := []storage.Filter{storage.Eq("slug", slug)}
	if exclude != uuid.Nil {
		filters = append(filters, storage.Neq("id", exclude.String()))
	}
	n, err := r.db.Count(ctx, tableTenants, filters)
	if err != nil {
		return false, translate("count tenants", err)
	}
	return n > 0, nil
}

func (r *tenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	tenant.CreatedAt = stamp(tenant.CreatedAt)
	if tenant.UpdatedAt.IsZero() {
		tenant.UpdatedAt = tenant.CreatedAt
	}
	if _, err := r.db.Insert(ctx, tableTenants, tenantToRow(tenant)); err != nil {
		return translate("insert tenant", err)
	}
	return nil
}

func (r *tenantRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	tenant.UpdatedAt = stamp(tenant.UpdatedAt)
	patch := tenantToRow(tenant)
	delete(patch, "id")
	delete(patch, "created_at")
	n, err := r.db.Update(ctx, tableTenants, idFilter(tenant.ID), patch)
	return expectOne(n, err, "update tenant")
}

func (r *tenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Delete(ctx, tableTenants, idFilter(id))
	return expectOne(n, err, "delete tenant")
}

func (r *tenantRepository) List(ctx context.Context) ([]*domain.Tenant, error) {
	rows, err := r.db.Select(ctx, tableTenants, storage.Query{}.OrderBy(storage.Desc("created_at")))
	if err != nil {
		return nil, translate("list tenants", err)
	}
	tenants := make([]*domain.Tenant, 0, len(rows))
	for _, row := range rows {
		tenants = append(tenants, tenantFromRow(row))
	}
	return tenants, nil
}

type settingsRepository struct {
	db storage.Client
}

func NewSettingsRepository(db storage.Client) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func settingsFromRow(r storage.Row) *domain.TenantSettings {
	return &domain.TenantSettings{
		TenantID:        asUUID(r["tenant_id"]),
		WelcomeMessage:  asString(r["welcome_message"]),
		ThankYouMessage: asString(r["thank_you_message"]),
	}
}

func (r *settingsRepository) Get(ctx context.Context, tenantID uuid.UUID) (*domain.TenantSettings, error) {
	row, err := selectOne(ctx, r.db, tableSettings, storage.Eq("tenant_id", tenantID.String()))
	if err != nil {
		return nil, err
	}
	return settingsFromRow(row), nil
}

func (r *settingsRepository) Create(ctx context.Context, s *domain.TenantSettings) error {
	_, err := r.db.Insert(ctx, tableSettings, storage.Row{
		"tenant_id":         s.TenantID.String(),
		"welcome_message":   s.WelcomeMessage,
		"thank_you_message": s.ThankYouMessage,
	})
	return translate("insert settings", err)
}

func (r *settingsRepository) Update(ctx context.Context, s *domain.TenantSettings) error {
	n, err := r.db.Update(ctx, tableSettings,
		[]storage.Filter{storage.Eq("tenant_id", s.TenantID.String())},
		storage.Row{
			"welcome_message":   s.WelcomeMessage,
			"thank_you_message": s.ThankYouMessage,
		})
	return expectOne(n, err, "update settings")
}
