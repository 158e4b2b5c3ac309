package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/internal/repository"
)

type FormService struct {
	formRepo  repository.FormRepository
	fieldRepo repository.FieldRepository
	tenants   *TenantService
	baseURL   string
	log       *zap.Logger
	now       func() time.Time
}

type CreateFormRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

type UpdateFormRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsActive    *bool   `json:"is_active"`
}

// FieldRequest creates or replaces a field. On update an empty field_type keeps the
// current type.
type FieldRequest struct {
	FieldType   domain.FieldType `json:"field_type"`
	Label       string           `json:"label" validate:"required,max=255"`
	Placeholder string           `json:"placeholder" validate:"max=255"`
	IsRequired  bool             `json:"is_required"`
	FieldOrder  int              `json:"field_order" validate:"gte=0"`
	Options     []string         `json:"options"`
}

// PublicTenant is the part of a tenant shown on its public pages.
type PublicTenant struct {
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
}

// PublicForm is everything a lead needs to fill in a form.
type PublicForm struct {
	Tenant   PublicTenant           `json:"tenant"`
	Form     *domain.Form           `json:"form"`
	Fields   []*domain.FormField    `json:"fields"`
	Settings *domain.TenantSettings `json:"settings"`

	tenant *domain.Tenant
}

func NewFormService(
	formRepo repository.FormRepository,
	fieldRepo repository.FieldRepository,
	tenants *TenantService,
	baseURL string,
	log *zap.Logger,
) *FormService {
	return &FormService{
		formRepo:  formRepo,
		fieldRepo: fieldRepo,
		tenants:   tenants,
		baseURL:   strings.TrimRight(baseURL, "/"),
		log:       log,
		now:       time.Now,
	}
}

// owned loads a form of the caller's tenant; other tenants' forms are not found.
func (s *FormService) owned(ctx context.Context, p domain.Principal, formID uuid.UUID) (*domain.Form, error) {
	if err := requireTenant(p); err != nil {
		return nil, err
	}
	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !p.Owns(form.TenantID) {
		return nil, domain.ErrNotFound
	}
	return form, nil
}

func (s *FormService) ListForms(ctx context.Context, p domain.Principal) ([]*domain.Form, error) {
	if err := requireTenant(p); err != nil {
		return nil, err
	}
	return s.formRepo.ListByTenant(ctx, p.TenantID)
}

func (s *FormService) CreateForm(ctx context.Context, p domain.Principal, req CreateFormRequest) (*domain.Form, error) {
	if err := requireTenant(p); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title is required")
	}

	now := s.now().UTC()
	form := &domain.Form{
		ID:          uuid.New(),
		TenantID:    p.TenantID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
		CreatedBy:   p.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *FormService) GetForm(ctx context.Context, p domain.Principal, formID uuid.UUID) (*domain.Form, error) {
	return s.owned(ctx, p, formID)
}

func (s *FormService) UpdateForm(ctx context.Context, p domain.Principal, formID uuid.UUID, req UpdateFormRequest) (*domain.Form, error) {
	form, err := s.owned(ctx, p, formID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalid("title is required")
		}
		form.Title = title
	}
	if req.Description != nil {
		form.Description = strings.TrimSpace(*req.Description)
	}
	if req.IsActive != nil {
		form.IsActive = *req.IsActive
	}
	form.UpdatedAt = s.now().UTC()
	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *FormService) DeleteForm(ctx context.Context, p domain.Principal, formID uuid.UUID) error {
	form, err := s.owned(ctx, p, formID)
	if err != nil {
		return err
	}
	return s.formRepo.Delete(ctx, form.ID)
}

// ListFields returns the form's fields in display order.
func (s *FormService) ListFields(ctx context.Context, p domain.Principal, formID uuid.UUID) ([]*domain.FormField, error) {
	form, err := s.owned(ctx, p, formID)
	if err != nil {
		return nil, err
	}
	return s.fieldRepo.ListByForm(ctx, form.ID)
}

// field loads a field that belongs to a form of the caller's tenant.
func (s *FormService) field(ctx context.Context, p domain.Principal, formID, fieldID uuid.UUID) (*domain.FormField, error) {
	form, err := s.owned(ctx, p, formID)
	if err != nil {
		return nil, err
	}
	field, err := s.fieldRepo.GetByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	if field.FormID != form.ID {
		return nil, domain.ErrNotFound
	}
	return field, nil
}

func (s *FormService) GetField(ctx context.Context, p domain.Principal, formID, fieldID uuid.UUID) (*domain.FormField, error) {
	return s.field(ctx, p, formID, fieldID)
}

func (s *FormService) CreateField(ctx context.Context, p domain.Principal, formID uuid.UUID, req FieldRequest) (*domain.FormField, error) {
	form, err := s.owned(ctx, p, formID)
	if err != nil {
		return nil, err
	}
	if req.FieldType == "" {
		return nil, invalid("field_type is required")
	}

	now := s.now().UTC()
	field := &domain.FormField{
		ID:        uuid.New(),
		FormID:    form.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyFieldRequest(field, req); err != nil {
		return nil, err
	}
	if err := s.fieldRepo.Create(ctx, field); err != nil {
		return nil, err
	}
	return field, nil
}

func (s *FormService) UpdateField(ctx context.Context, p domain.Principal, formID, fieldID uuid.UUID, req FieldRequest) (*domain.FormField, error) {
	field, err := s.field(ctx, p, formID, fieldID)
	if err != nil {
		return nil, err
	}
	if req.FieldType == "" {
		req.FieldType = field.FieldType
	}
	// An option type sent without options keeps the stored ones.
	if req.FieldType.HasOptions() && len(cleanOptions(req.Options)) == 0 {
		req.Options = field.Options
	}
	if err := applyFieldRequest(field, req); err != nil {
		return nil, err
	}
	field.UpdatedAt = s.now().UTC()
	if err := s.fieldRepo.Update(ctx, field); err != nil {
		return nil, err
	}
	return field, nil
}

func (s *FormService) DeleteField(ctx context.Context, p domain.Principal, formID, fieldID uuid.UUID) error {
	field, err := s.field(ctx, p, formID, fieldID)
	if err != nil {
		return err
	}
	return s.fieldRepo.Delete(ctx, field.ID)
}

// applyFieldRequest copies req onto f. Options are kept only for option types and
// only when at least one non-blank option remains; is_multiple follows from them.
func applyFieldRequest(f *domain.FormField, req FieldRequest) error {
	if !req.FieldType.Valid() {
		return invalid("unknown field_type %q", req.FieldType)
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return invalid("label is required")
	}
	if req.FieldOrder < 0 {
		return invalid("field_order must not be negative")
	}

	f.FieldType = req.FieldType
	f.Label = label
	f.Placeholder = strings.TrimSpace(req.Placeholder)
	f.IsRequired = req.IsRequired
	f.FieldOrder = req.FieldOrder
	f.Options = nil
	f.IsMultiple = false

	if req.FieldType.HasOptions() {
		f.Options = cleanOptions(req.Options)
		f.IsMultiple = req.FieldType == domain.FieldCheckbox && len(f.Options) > 0
	}
	return nil
}

func cleanOptions(options []string) []string {
	var out []string
	for _, opt := range options {
		if opt = strings.TrimSpace(opt); opt != "" {
			out = append(out, opt)
		}
	}
	return out
}

// FormLink returns the public URL of a form.
func (s *FormService) FormLink(ctx context.Context, p domain.Principal, formID uuid.UUID) (string, error) {
	form, err := s.owned(ctx, p, formID)
	if err != nil {
		return "", err
	}
	tenant, err := s.tenants.GetByID(ctx, form.TenantID)
	if err != nil {
		return "", err
	}
	return s.publicURL(tenant.Slug, form.ID), nil
}

func (s *FormService) publicURL(tenantSlug string, formID uuid.UUID) string {
	return s.baseURL + "/f/" + tenantSlug + "/" + formID.String()
}

// PublicForm loads an active form of an active tenant for the public page. A form of
// another tenant, or a disabled one, is not found.
func (s *FormService) PublicForm(ctx context.Context, tenantSlug string, formID uuid.UUID) (*PublicForm, error) {
	tenant, err := s.tenants.GetBySlug(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}
	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form.TenantID != tenant.ID || !form.IsActive {
		return nil, domain.ErrNotFound
	}
	fields, err := s.fieldRepo.ListByForm(ctx, form.ID)
	if err != nil {
		return nil, err
	}
	settings, err := s.tenants.Settings(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	return &PublicForm{
		Tenant: PublicTenant{
			Name:           tenant.Name,
			Slug:           tenant.Slug,
			PrimaryColor:   tenant.PrimaryColor,
			SecondaryColor: tenant.SecondaryColor,
		},
		Form:     form,
		Fields:   fields,
		Settings: settings,
		tenant:   tenant,
	}, nil
}
