package datastore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/internal/repository"
	"github.com/gomesrodrigo528/app-form/internal/storage"
)

type userRepository struct {
	db storage.Client
}

// NewUserRepository creates a user repository backed by db
func NewUserRepository(db storage.Client) repository.UserRepository {
	return &userRepository{db: db}
}

func userToRow(u *domain.User) storage.Row {
	return storage.Row{
		"id":            u.ID.String(),
		"tenant_id":     u.TenantID.String(),
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"full_name":     u.FullName,
		"role":          string(u.Role),
		"is_active":     u.IsActive,
		"is_superuser":  u.IsSuperuser,
		"last_login":    nullableTime(u.LastLoginAt),
		"created_at":    u.CreatedAt,
		"updated_at":    u.UpdatedAt,
	}
}

func userFromRow(r storage.Row) *domain.User {
	return &domain.User{
		ID:           asUUID(r["id"]),
		TenantID:     asUUID(r["tenant_id"]),
		Email:        asString(r["email"]),
		PasswordHash: asString(r["password_hash"]),
		FullName:     asString(r["full_name"]),
		Role:         domain.Role(asString(r["role"])),
		IsActive:     asBool(r["is_active"]),
		IsSuperuser:  asBool(r["is_superuser"]),
		LastLoginAt:  asTimePtr(r["last_login"]),
		CreatedAt:    asTime(r["created_at"]),
		UpdatedAt:    asTime(r["updated_at"]),
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = stamp(user.CreatedAt)
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	if _, err := r.db.Insert(ctx, tableUsers, userToRow(user)); err != nil {
		return translate("insert user", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row, err := selectOne(ctx, r.db, tableUsers, storage.Eq("id", id.String()))
	if err != nil {
		return nil, err
	}
	return userFromRow(row), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	rows, err := r.db.Select(ctx, tableUsers,
		storage.Where(storage.Eq("email", strings.ToLower(strings.TrimSpace(email)))).
			OrderBy(storage.Asc("created_at")).
			Take(1))
	if err != nil {
		return nil, translate("select users", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return userFromRow(rows[0]), nil
}

func (r *userRepository) GetByTenantAndEmail(ctx context.Context, tenantID uuid.UUID, email string) (*domain.User, error) {
	row, err := selectOne(ctx, r.db, tableUsers,
		storage.Eq("tenant_id", tenantID.String()),
		storage.Eq("email", strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return nil, err
	}
	return userFromRow(row), nil
}

func (r *userRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.User, error) {
	rows, err := r.db.Select(ctx, tableUsers,
		storage.Where(storage.Eq("tenant_id", tenantID.String())).OrderBy(storage.Asc("created_at")))
	if err != nil {
		return nil, translate("list users", err)
	}
	users := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, userFromRow(row))
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = stamp(user.UpdatedAt)
	patch := storage.Row{
		"email":        strings.ToLower(strings.TrimSpace(user.Email)),
		"full_name":    user.FullName,
		"role":         string(user.Role),
		"is_active":    user.IsActive,
		"is_superuser": user.IsSuperuser,
		"updated_at":   user.UpdatedAt,
	}
	n, err := r.db.Update(ctx, tableUsers, idFilter(user.ID), patch)
	return expectOne(n, err, "update user")
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	n, err := r.db.Update(ctx, tableUsers, idFilter(id), storage.Row{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	})
	return expectOne(n, err, "update password hash")
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	n, err := r.db.Update(ctx, tableUsers, idFilter(id), storage.Row{"last_login": at.UTC()})
	return expectOne(n, err, "update last login")
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Delete(ctx, tableUsers, idFilter(id))
	return expectOne(n, err, "delete user")
}

func (r *userRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	n, err := r.db.Count(ctx, tableUsers, []storage.Filter{storage.Eq("tenant_id", tenantID.String())})
	if err != nil {
		return 0, translate("count users", err)
	}
	return n, nil
}

func (r *userRepository) CountAdmins(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	n, err := r.db.Count(ctx, tableUsers, []storage.Filter{
		storage.Eq("tenant_id", tenantID.String()),
		storage.Eq("role", string(domain.RoleAdmin)),
		storage.Eq("is_active", true),
	})
	if err != nil {
		return 0, translate("count admins", err)
	}
	return n, nil
}

func (r *userRepository) SuperuserExists(ctx context.Context) (bool, error) {
	n, err := r.db.Count(ctx, tableUsers, []storage.Filter{storage.Eq("is_superuser", true)})
	if err != nil {
		return false, translate("count superusers", err)
	}
	return n > 0, nil
}
