package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/internal/repository"
	"github.com/gomesrodrigo528/app-form/pkg/slug"
)

// maxSlugAttempts bounds the numbered suffixes tried before falling back to a random one.
const maxSlugAttempts = 50

type TenantService struct {
	tenantRepo   repository.TenantRepository
	settingsRepo repository.SettingsRepository
	userRepo     repository.UserRepository
	users        *UserService
	log          *zap.Logger
	now          func() time.Time
}

type CreateTenantRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	Slug          string `json:"slug" validate:"omitempty,slug"`
	AdminEmail    string `json:"admin_email" validate:"required,email"`
	AdminName     string `json:"admin_name" validate:"required,max=255"`
	AdminPassword string `json:"admin_password" validate:"required,min=8"`
}

type UpdateTenantRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Slug     *string `json:"slug" validate:"omitempty,slug"`
	IsActive *bool   `json:"is_active"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=255"`
}

// UpdateProfileRequest carries the tenant-admin settings screen. Empty colors and
// numbers clear the stored value; empty messages keep it.
type UpdateProfileRequest struct {
	Name            string `json:"name" validate:"required,max=255"`
	WhatsAppNumber  string `json:"whatsapp_number" validate:"max=30"`
	PrimaryColor    string `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor  string `json:"secondary_color" validate:"omitempty,hexcolor"`
	WelcomeMessage  string `json:"welcome_message" validate:"max=1000"`
	ThankYouMessage string `json:"thank_you_message" validate:"max=1000"`
}

// Profile is a tenant together with its public-page texts.
type Profile struct {
	Tenant   *domain.Tenant         `json:"tenant"`
	Settings *domain.TenantSettings `json:"settings"`
}

func NewTenantService(
	tenantRepo repository.TenantRepository,
	settingsRepo repository.SettingsRepository,
	userRepo repository.UserRepository,
	users *UserService,
	log *zap.Logger,
) *TenantService {
	return &TenantService{
		tenantRepo:   tenantRepo,
		settingsRepo: settingsRepo,
		userRepo:     userRepo,
		users:        users,
		log:          log,
		now:          time.Now,
	}
}

// GetBySlug resolves an active tenant. Disabled tenants are reported as not found.
func (s *TenantService) GetBySlug(ctx context.Context, tenantSlug string) (*domain.Tenant, error) {
	return s.tenantRepo.GetActiveBySlug(ctx, strings.ToLower(strings.TrimSpace(tenantSlug)))
}

// GetByID returns the tenant whether or not it is active.
func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}

// Create stores a new active tenant. An empty slug is derived from name.
func (s *TenantService) Create(ctx context.Context, name, tenantSlug, ownerEmail string) (*domain.Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if tenantSlug == "" {
		tenantSlug = slug.Generate(name)
	}
	if !slug.Valid(tenantSlug) {
		return nil, invalid("invalid slug %q: must be 3-100 lowercase letters, digits or hyphens", tenantSlug)
	}

	taken, err := s.tenantRepo.SlugTaken(ctx, tenantSlug, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflict("tenant with slug '%s' already exists", tenantSlug)
	}

	now := s.now().UTC()
	tenant := &domain.Tenant{
		ID:         uuid.New(),
		Name:       name,
		Slug:       tenantSlug,
		OwnerEmail: normalizeEmail(ownerEmail),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *TenantService) List(ctx context.Context, p domain.Principal) ([]*domain.Tenant, error) {
	if err := requireSuperuser(p); err != nil {
		return nil, err
	}
	return s.tenantRepo.List(ctx)
}

func (s *TenantService) Get(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Tenant, error) {
	if err := requireSuperuser(p); err != nil {
		return nil, err
	}
	return s.tenantRepo.GetByID(ctx, id)
}

// CreateWithAdmin creates a tenant and its first admin. The tenant is removed again
// when the admin cannot be stored.
func (s *TenantService) CreateWithAdmin(ctx context.Context, p domain.Principal, req CreateTenantRequest) (*domain.Tenant, *domain.User, error) {
	if err := requireSuperuser(p); err != nil {
		return nil, nil, err
	}
	if err := s.emailUnused(ctx, req.AdminEmail); err != nil {
		return nil, nil, err
	}

	tenant, err := s.Create(ctx, req.Name, req.Slug, req.AdminEmail)
	if err != nil {
		return nil, nil, err
	}
	admin, err := s.withAdmin(ctx, tenant, req.AdminEmail, req.AdminPassword, req.AdminName)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
		zap.String("by", p.UserID.String()),
	)
	return tenant, admin, nil
}

// Register is the self-service signup: a fresh tenant named after the user, with a
// slug taken from the e-mail domain, whose first user is its admin.
func (s *TenantService) Register(ctx context.Context, req RegisterRequest) (*domain.Tenant, *domain.User, error) {
	if err := s.emailUnused(ctx, req.Email); err != nil {
		return nil, nil, err
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, nil, invalid("full_name is required")
	}

	base := slug.FromEmailDomain(req.Email)
	if !slug.Valid(base) {
		base = slug.Generate(fullName)
	}
	if !slug.Valid(base) {
		base = "workspace"
	}
	tenantSlug, err := s.freeSlug(ctx, base)
	if err != nil {
		return nil, nil, err
	}

	tenant, err := s.Create(ctx, fullName+"'s Workspace", tenantSlug, req.Email)
	if err != nil {
		return nil, nil, err
	}
	admin, err := s.withAdmin(ctx, tenant, req.Email, req.Password, fullName)
	if err != nil {
		return nil, nil, err
	}
	return tenant, admin, nil
}

func (s *TenantService) withAdmin(ctx context.Context, tenant *domain.Tenant, email, password, fullName string) (*domain.User, error) {
	admin, err := s.users.Create(ctx, tenant.ID, email, password, fullName, domain.RoleAdmin)
	if err == nil {
		return admin, nil
	}
	if delErr := s.tenantRepo.Delete(ctx, tenant.ID); delErr != nil {
		s.log.Error("failed to remove tenant after admin creation failed",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Error(delErr),
		)
	}
	return nil, err
}

// emailUnused keeps login e-mails unique across tenants for new signups.
func (s *TenantService) emailUnused(ctx context.Context, email string) error {
	existing, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if existing != nil {
		return conflict("email %s is already registered", normalizeEmail(email))
	}
	return nil
}

// freeSlug returns base, or base with the first free numeric suffix.
func (s *TenantService) freeSlug(ctx context.Context, base string) (string, error) {
	if len(base) > slug.MaxLength-9 {
		base = strings.TrimRight(base[:slug.MaxLength-9], "-")
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := s.tenantRepo.SlugTaken(ctx, candidate, uuid.Nil)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func (s *TenantService) AdminUpdate(ctx context.Context, p domain.Principal, id uuid.UUID, req UpdateTenantRequest) (*domain.Tenant, error) {
	if err := requireSuperuser(p); err != nil {
		return nil, err
	}
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name is required")
		}
		tenant.Name = name
	}
	if req.Slug != nil && *req.Slug != tenant.Slug {
		if !slug.Valid(*req.Slug) {
			return nil, invalid("invalid slug %q: must be 3-100 lowercase letters, digits or hyphens", *req.Slug)
		}
		taken, err := s.tenantRepo.SlugTaken(ctx, *req.Slug, tenant.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, conflict("slug '%s' already exists", *req.Slug)
		}
		tenant.Slug = *req.Slug
	}
	if req.IsActive != nil {
		tenant.IsActive = *req.IsActive
	}

	tenant.UpdatedAt = s.now().UTC()
	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// Delete removes a tenant that has no users left.
func (s *TenantService) Delete(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	if err := requireSuperuser(p); err != nil {
		return err
	}
	if _, err := s.tenantRepo.GetByID(ctx, id); err != nil {
		return err
	}
	users, err := s.userRepo.CountByTenant(ctx, id)
	if err != nil {
		return err
	}
	if users > 0 {
		return conflict("tenant still has %d users; disable it instead", users)
	}
	return s.tenantRepo.Delete(ctx, id)
}

// Settings returns the tenant's settings, creating the defaults on first access.
func (s *TenantService) Settings(ctx context.Context, tenantID uuid.UUID) (*domain.TenantSettings, error) {
	settings, err := s.settingsRepo.Get(ctx, tenantID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	settings = domain.DefaultSettings(tenantID)
	err = s.settingsRepo.Create(ctx, settings)
	if errors.Is(err, domain.ErrConflict) {
		return s.settingsRepo.Get(ctx, tenantID)
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *TenantService) Profile(ctx context.Context, p domain.Principal) (*Profile, error) {
	if err := requireTenant(p); err != nil {
		return nil, err
	}
	tenant, err := s.tenantRepo.GetByID(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{Tenant: tenant, Settings: settings}, nil
}

func (s *TenantService) UpdateProfile(ctx context.Context, p domain.Principal, req UpdateProfileRequest) (*Profile, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	profile, err := s.Profile(ctx, p)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	tenant := profile.Tenant
	tenant.Name = name
	tenant.WhatsAppNumber = strings.TrimSpace(req.WhatsAppNumber)
	tenant.PrimaryColor = req.PrimaryColor
	tenant.SecondaryColor = req.SecondaryColor
	tenant.UpdatedAt = s.now().UTC()
	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}

	settings := profile.Settings
	if msg := strings.TrimSpace(req.WelcomeMessage); msg != "" {
		settings.WelcomeMessage = msg
	}
	if msg := strings.TrimSpace(req.ThankYouMessage); msg != "" {
		settings.ThankYouMessage = msg
	}
	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}
	return profile, nil
}
