package datastore

import (
	"context"

	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/internal/repository"
	"github.com/gomesrodrigo528/app-form/internal/storage"
)

type formRepository struct {
	db storage.Client
}

func NewFormRepository(db storage.Client) repository.FormRepository {
	return &formRepository{db: db}
}

func formFromRow(r storage.Row) *domain.Form {
	return &domain.Form{
		ID:          asUUID(r["id"]),
		TenantID:    asUUID(r["tenant_id"]),
		Title:       asString(r["title"]),
		Description: asString(r["description"]),
		IsActive:    asBool(r["is_active"]),
		CreatedBy:   asUUID(r["created_by"]),
		CreatedAt:   asTime(r["created_at"]),
		UpdatedAt:   asTime(r["updated_at"]),
	}
}

func (r *formRepository) Create(ctx context.Context, form *domain.Form) error {
	if form.ID == uuid.Nil {
		form.ID = uuid.New()
	}
	form.CreatedAt = stamp(form.CreatedAt)
	if form.UpdatedAt.IsZero() {
		form.UpdatedAt = form.CreatedAt
	}
	_, err := r.db.Insert(ctx, tableForms, storage.Row{
		"id":          form.ID.String(),
		"tenant_id":   form.TenantID.String(),
		"title":       form.Title,
		"description": form.Description,
		"is_active":   form.IsActive,
		"created_by":  nullableID(form.CreatedBy),
		"created_at":  form.CreatedAt,
		"updated_at":  form.UpdatedAt,
	})
	return translate("insert form", err)
}

func (r *formRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Form, error) {
	row, err := selectOne(ctx, r.db, tableForms, storage.Eq("id", id.String()))
	if err != nil {
		return nil, err
	}
	return formFromRow(row), nil
}

func (r *formRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Form, error) {
	rows, err := r.db.Select(ctx, tableForms,
		storage.Where(storage.Eq("tenant_id", tenantID.String())).OrderBy(storage.Desc("created_at")))
	if err != nil {
		return nil, translate("list forms", err)
	}
	forms := make([]*domain.Form, 0, len(rows))
	for _, row := range rows {
		forms = append(forms, formFromRow(row))
	}
	return forms, nil
}

func (r *formRepository) Update(ctx context.Context, form *domain.Form) error {
	form.UpdatedAt = stamp(form.UpdatedAt)
	n, err := r.db.Update(ctx, tableForms, idFilter(form.ID), storage.Row{
		"title":       form.Title,
		"description": form.Description,
		"is_active":   form.IsActive,
		"updated_at":  form.UpdatedAt,
	})
	return expectOne(n, err, "update form")
}

func (r *formRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Delete(ctx, tableForms, idFilter(id))
	return expectOne(n, err, "delete form")
}

type fieldRepository struct {
	db storage.Client
}

func NewFieldRepository(db storage.Client) repository.FieldRepository {
	return &fieldRepository{db: db}
}

func fieldToRow(f *domain.FormField) storage.Row {
	var options any
	if len(f.Options) > 0 {
		options = append([]string(nil), f.Options...)
	}
	return storage.Row{
		"form_id":     f.FormID.String(),
		"field_type":  string(f.FieldType),
		"label":       f.Label,
		"placeholder": f.Placeholder,
		"is_required": f.IsRequired,
		"field_order": f.FieldOrder,
		"options":     options,
		"is_multiple": f.IsMultiple,
		"updated_at":  f.UpdatedAt,
	}
}

func fieldFromRow(r storage.Row) *domain.FormField {
	return &domain.FormField{
		ID:          asUUID(r["id"]),
		FormID:      asUUID(r["form_id"]),
		FieldType:   domain.FieldType(asString(r["field_type"])),
		Label:       asString(r["label"]),
		Placeholder: asString(r["placeholder"]),
		IsRequired:  asBool(r["is_required"]),
		FieldOrder:  asInt(r["field_order"]),
		Options:     asStrings(r["options"]),
		IsMultiple:  asBool(r["is_multiple"]),
		CreatedAt:   asTime(r["created_at"]),
		UpdatedAt:   asTime(r["updated_at"]),
	}
}

func (r *fieldRepository) Create(ctx context.Context, field *domain.FormField) error {
	if field.ID == uuid.Nil {
		field.ID = uuid.New()
	}
	field.CreatedAt = stamp(field.CreatedAt)
	if field.UpdatedAt.IsZero() {
		field.UpdatedAt = field.CreatedAt
	}
	row := fieldToRow(field)
	row["id"] = field.ID.String()
	row["created_at"] = field.CreatedAt
	_, err := r.db.Insert(ctx, tableFields, row)
	return translate("insert field", err)
}

func (r *fieldRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FormField, error) {
	row, err := selectOne(ctx, r.db, tableFields, storage.Eq("id", id.String()))
	if err != nil {
		return nil, err
	}
	return fieldFromRow(row), nil
}

func (r *fieldRepository) ListByForm(ctx context.Context, formID uuid.UUID) ([]*domain.FormField, error) {
	rows, err := r.db.Select(ctx, tableFields,
		storage.Where(storage.Eq("form_id", formID.String())).
			OrderBy(storage.Asc("field_order"), storage.Asc("created_at")))
	if err != nil {
		return nil, translate("list fields", err)
	}
	fields := make([]*domain.FormField, 0, len(rows))
	for _, row := range rows {
		fields = append(fields, fieldFromRow(row))
	}
	return fields, nil
}

func (r *fieldRepository) Update(ctx context.Context, field *domain.FormField) error {
	field.UpdatedAt = stamp(field.UpdatedAt)
	patch := fieldToRow(field)
	delete(patch, "form_id")
	n, err := r.db.Update(ctx, tableFields, idFilter(field.ID), patch)
	return expectOne(n, err, "update field")
}

func (r *fieldRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Delete(ctx, tableFields, idFilter(id))
	return expectOne(n, err, "delete field")
}
