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
	"github.com/gomesrodrigo528/app-form/pkg/blacklist"
	"github.com/gomesrodrigo528/app-form/pkg/hash"
	"github.com/gomesrodrigo528/app-form/pkg/slug"
)

type UserService struct {
	userRepo   repository.UserRepository
	tenantRepo repository.TenantRepository
	hasher     *hash.Hasher
	revoked    blacklist.Store
	tokenTTL   time.Duration
	log        *zap.Logger
	now        func() time.Time
}

type CreateUserRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8"`
	FullName string      `json:"full_name" validate:"required,max=255"`
	Role     domain.Role `json:"role" validate:"omitempty,oneof=admin user"`
}

type UpdateUserRequest struct {
	Email       *string      `json:"email" validate:"omitempty,email"`
	FullName    *string      `json:"full_name" validate:"omitempty,min=1,max=255"`
	Role        *domain.Role `json:"role" validate:"omitempty,oneof=admin user"`
	IsActive    *bool        `json:"is_active"`
	NewPassword string       `json:"new_password" validate:"omitempty,min=8"`
}

type SetupSuperuserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=255"`
}

// NewUserService wires user management. revoked may be nil, in which case role and
// password changes only apply to tokens issued afterwards.
func NewUserService(
	userRepo repository.UserRepository,
	tenantRepo repository.TenantRepository,
	hasher *hash.Hasher,
	revoked blacklist.Store,
	tokenTTL time.Duration,
	log *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
		hasher:     hasher,
		revoked:    revoked,
		tokenTTL:   tokenTTL,
		log:        log,
		now:        time.Now,
	}
}

// Create hashes password with bcrypt and stores a new active user. The e-mail must be
// unused within the tenant.
func (s *UserService) Create(ctx context.Context, tenantID uuid.UUID, email, password, fullName string, role domain.Role) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, invalid("unknown role %q", role)
	}

	existing, err := s.userRepo.GetByTenantAndEmail(ctx, tenantID, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, conflict("email %s is already registered in this tenant", email)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Me returns the caller's own record.
func (s *UserService) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, p.UserID)
}

// AddUser creates a user in tenantID on behalf of an admin of that tenant or a superuser.
func (s *UserService) AddUser(ctx context.Context, p domain.Principal, tenantID uuid.UUID, req CreateUserRequest) (*domain.User, error) {
	if !canManageTenant(p, tenantID) {
		if p.Owns(tenantID) {
			return nil, forbidden("admin role required")
		}
		return nil, domain.ErrNotFound
	}
	if _, err := s.tenantRepo.GetByID(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.Create(ctx, tenantID, req.Email, req.Password, req.FullName, req.Role)
}

func (s *UserService) List(ctx context.Context, p domain.Principal, tenantID uuid.UUID) ([]*domain.User, error) {
	if !canManageTenant(p, tenantID) {
		if p.Owns(tenantID) {
			return nil, forbidden("admin role required")
		}
		return nil, domain.ErrNotFound
	}
	return s.userRepo.ListByTenant(ctx, tenantID)
}

// managed loads a user the caller may administer. Users of other tenants are reported
// as not found.
func (s *UserService) managed(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsSuperuser {
		return user, nil
	}
	if !p.Owns(user.TenantID) {
		return nil, domain.ErrNotFound
	}
	if !p.IsAdmin() {
		return nil, forbidden("admin role required")
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.User, error) {
	return s.managed(ctx, p, id)
}

func (s *UserService) Update(ctx context.Context, p domain.Principal, id uuid.UUID, req UpdateUserRequest) (*domain.User, error) {
	user, err := s.managed(ctx, p, id)
	if err != nil {
		return nil, err
	}

	revoke := false
	activeAdmin := user.Role == domain.RoleAdmin && user.IsActive

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" {
			return nil, invalid("email is required")
		}
		if email != user.Email {
			other, err := s.userRepo.GetByTenantAndEmail(ctx, user.TenantID, email)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			if other != nil && other.ID != user.ID {
				return nil, conflict("email %s is already registered in this tenant", email)
			}
			user.Email = email
		}
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}

	if req.Role != nil && *req.Role != user.Role {
		if !req.Role.Valid() {
			return nil, invalid("unknown role %q", *req.Role)
		}
		user.Role = *req.Role
		revoke = true
	}

	if req.IsActive != nil && *req.IsActive != user.IsActive {
		if !*req.IsActive && user.ID == p.UserID {
			return nil, invalid("you cannot disable your own account")
		}
		user.IsActive = *req.IsActive
		revoke = true
	}

	if activeAdmin && !(user.Role == domain.RoleAdmin && user.IsActive) {
		if err := s.keepOneAdmin(ctx, user.TenantID); err != nil {
			return nil, err
		}
	}

	user.UpdatedAt = s.now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if req.NewPassword != "" {
		passwordHash, err := s.hasher.Hash(req.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, passwordHash); err != nil {
			return nil, err
		}
		user.PasswordHash = passwordHash
		revoke = true
	}

	if revoke {
		s.revokeSessions(ctx, user.ID)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	user, err := s.managed(ctx, p, id)
	if err != nil {
		return err
	}
	if user.ID == p.UserID {
		return invalid("you cannot delete your own account")
	}
	if user.Role == domain.RoleAdmin && user.IsActive {
		if err := s.keepOneAdmin(ctx, user.TenantID); err != nil {
			return err
		}
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.revokeSessions(ctx, user.ID)
	return nil
}

// keepOneAdmin refuses to remove an active admin when it is the last one of the tenant.
func (s *UserService) keepOneAdmin(ctx context.Context, tenantID uuid.UUID) error {
	admins, err := s.userRepo.CountAdmins(ctx, tenantID)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return conflict("tenant must keep at least one admin")
	}
	return nil
}

func (s *UserService) revokeSessions(ctx context.Context, userID uuid.UUID) {
	if s.revoked == nil {
		return
	}
	if err := s.revoked.RevokeUser(ctx, userID.String(), s.tokenTTL); err != nil {
		s.log.Warn("failed to revoke user sessions",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

// SetupSuperuser creates the platform superuser while none exists. An existing user
// with the same e-mail is promoted instead; otherwise the user gets its own admin
// tenant named after the e-mail domain.
func (s *UserService) SetupSuperuser(ctx context.Context, req SetupSuperuserRequest) (*domain.User, error) {
	exists, err := s.userRepo.SuperuserExists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflict("a superuser already exists")
	}

	email := normalizeEmail(req.Email)
	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		existing.Role = domain.RoleAdmin
		existing.IsSuperuser = true
		existing.IsActive = true
		existing.UpdatedAt = s.now().UTC()
		if err := s.userRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		if err := s.userRepo.UpdatePasswordHash(ctx, existing.ID, passwordHash); err != nil {
			return nil, err
		}
		existing.PasswordHash = passwordHash
		s.log.Info("promoted user to superuser", zap.String("user_id", existing.ID.String()))
		return existing, nil
	}

	tenant, err := s.adminTenant(ctx, email, req.FullName)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		TenantID:     tenant.ID,
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         domain.RoleAdmin,
		IsActive:     true,
		IsSuperuser:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("created superuser",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant", tenant.Slug),
	)
	return user, nil
}

func (s *UserService) adminTenant(ctx context.Context, email, fullName string) (*domain.Tenant, error) {
	tenantSlug := strings.TrimRight("admin-"+slug.FromEmailDomain(email), "-")
	tenant, err := s.tenantRepo.GetActiveBySlug(ctx, tenantSlug)
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	tenant = &domain.Tenant{
		ID:         uuid.New(),
		Name:       "Admin " + strings.TrimSpace(fullName),
		Slug:       tenantSlug,
		OwnerEmail: email,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}
