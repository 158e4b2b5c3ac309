package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
)

func TestCreateUserHashesWithBcrypt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tenant, _ := f.tenantWithAdmin(t, "acme")

	user, err := f.users.Create(ctx, tenant.ID, "  Bia@Acme.com ", "segredo123", "Bia", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.Email != "bia@acme.com" || user.Role != domain.RoleUser || !user.IsActive {
		t.Errorf("user = %+v", user)
	}
	if !strings.HasPrefix(user.PasswordHash, "$2a$") {
		t.Errorf("PasswordHash = %q, want bcrypt", user.PasswordHash)
	}

	if _, err := f.users.Create(ctx, tenant.ID, "bia@acme.com", "segredo123", "Bia", ""); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate Create() err = %v, want ErrConflict", err)
	}
	if _, err := f.users.Create(ctx, tenant.ID, "c@acme.com", "segredo123", "C", "owner"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Create(bad role) err = %v, want ErrValidation", err)
	}
}

func TestAddUserAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tenant, admin := f.tenantWithAdmin(t, "acme")
	_, otherAdmin := f.tenantWithAdmin(t, "globex")

	req := CreateUserRequest{Email: "bia@acme.com", Password: "segredo123", FullName: "Bia"}
	member, err := f.users.AddUser(ctx, admin, tenant.ID, req)
	if err != nil {
		t.Fatalf("AddUser(admin) error = %v", err)
	}

	memberP := principalOf(member)
	req.Email = "carla@acme.com"
	if _, err := f.users.AddUser(ctx, memberP, tenant.ID, req); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("AddUser(member) err = %v, want ErrForbidden", err)
	}
	if _, err := f.users.AddUser(ctx, otherAdmin, tenant.ID, req); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AddUser(other tenant) err = %v, want ErrNotFound", err)
	}
	if _, err := f.users.AddUser(ctx, superuser(), tenant.ID, req); err != nil {
		t.Errorf("AddUser(superuser) error = %v", err)
	}
	if _, err := f.users.Get(ctx, otherAdmin, member.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get(other tenant) err = %v, want ErrNotFound", err)
	}

	users, err := f.users.List(ctx, admin, tenant.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 3 {
		t.Errorf("List() = %d users, want 3", len(users))
	}
}

func TestTenantKeepsOneAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tenant, admin := f.tenantWithAdmin(t, "acme")
	su := superuser()

	demote := domain.RoleUser
	if _, err := f.users.Update(ctx, su, admin.UserID, UpdateUserRequest{Role: &demote}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("demote last admin err = %v, want ErrConflict", err)
	}
	if err := f.users.Delete(ctx, su, admin.UserID); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("delete last admin err = %v, want ErrConflict", err)
	}
	off := false
	if _, err := f.users.Update(ctx, su, admin.UserID, UpdateUserRequest{IsActive: &off}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("disable last admin err = %v, want ErrConflict", err)
	}

	second, err := f.users.Create(ctx, tenant.ID, "second@acme.com", "segredo123", "Second", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := f.users.Update(ctx, admin, second.ID, UpdateUserRequest{Role: &demote}); err != nil {
		t.Errorf("demote with two admins error = %v", err)
	}

	if err := f.users.Delete(ctx, admin, admin.UserID); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("delete self err = %v, want ErrValidation", err)
	}
	if err := f.users.Delete(ctx, admin, second.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if _, err := f.userRepo.GetByID(ctx, second.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted user err = %v, want ErrNotFound", err)
	}
}

func TestDisabledAdminDoesNotCountAsAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tenant, admin := f.tenantWithAdmin(t, "acme")
	su := superuser()

	second, err := f.users.Create(ctx, tenant.ID, "second@acme.com", "segredo123", "Second", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	off := false
	if _, err := f.users.Update(ctx, admin, second.ID, UpdateUserRequest{IsActive: &off}); err != nil {
		t.Fatalf("disable second admin error = %v", err)
	}

	admins, err := f.userRepo.CountAdmins(ctx, tenant.ID)
	if err != nil {
		t.Fatalf("CountAdmins() error = %v", err)
	}
	if admins != 1 {
		t.Errorf("CountAdmins() = %d, want 1", admins)
	}

	demote := domain.RoleUser
	if _, err := f.users.Update(ctx, su, admin.UserID, UpdateUserRequest{Role: &demote}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("demote only active admin err = %v, want ErrConflict", err)
	}
	if _, err := f.users.Update(ctx, su, admin.UserID, UpdateUserRequest{IsActive: &off}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("disable only active admin err = %v, want ErrConflict", err)
	}

	// The disabled admin can still be demoted or removed.
	if _, err := f.users.Update(ctx, admin, second.ID, UpdateUserRequest{Role: &demote}); err != nil {
		t.Errorf("demote disabled admin error = %v", err)
	}
	if err := f.users.Delete(ctx, admin, second.ID); err != nil {
		t.Errorf("delete disabled admin error = %v", err)
	}
}

func TestUpdateUserEmailUniqueExcludingSelf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tenant, admin := f.tenantWithAdmin(t, "acme")
	bia, err := f.users.Create(ctx, tenant.ID, "bia@acme.com", "segredo123", "Bia", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	same := "BIA@acme.com"
	if _, err := f.users.Update(ctx, admin, bia.ID, UpdateUserRequest{Email: &same}); err != nil {
		t.Errorf("Update(own email) error = %v", err)
	}
	taken := "admin@acme.com"
	if _, err := f.users.Update(ctx, admin, bia.ID, UpdateUserRequest{Email: &taken}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("Update(taken email) err = %v, want ErrConflict", err)
	}
}

func TestUpdateUserRevokesSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tenant, admin := f.tenantWithAdmin(t, "acme")
	bia, err := f.users.Create(ctx, tenant.ID, "bia@acme.com", "segredo123", "Bia", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	login, err := f.auth.Login(ctx, LoginRequest{Email: "bia@acme.com", Password: "segredo123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	claims, err := f.tokens.Validate(login.Token.AccessToken)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	updated, err := f.users.Update(ctx, admin, bia.ID, UpdateUserRequest{NewPassword: "novasenha123"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.PasswordHash == bia.PasswordHash {
		t.Error("password hash not changed")
	}

	// revocation covers tokens issued strictly before it
	revoked, err := f.revoked.IsUserRevoked(ctx, bia.ID.String(), claims.IssuedAt.Time.Add(-1))
	if err != nil || !revoked {
		t.Errorf("IsUserRevoked() = %v, %v, want true", revoked, err)
	}

	if _, err := f.auth.Verify(ctx, "bia@acme.com", "novasenha123"); err != nil {
		t.Errorf("Verify(new password) error = %v", err)
	}
}

func TestSetupSuperuser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.users.SetupSuperuser(ctx, SetupSuperuserRequest{
		Email:    "root@empresa.com.br",
		Password: "segredo123",
		FullName: "Root",
	})
	if err != nil {
		t.Fatalf("SetupSuperuser() error = %v", err)
	}
	if !user.IsSuperuser || user.Role != domain.RoleAdmin {
		t.Errorf("user = %+v, want superuser admin", user)
	}

	tenant, err := f.tenants.GetBySlug(ctx, "admin-empresa")
	if err != nil {
		t.Fatalf("GetBySlug(admin-empresa) error = %v", err)
	}
	if tenant.ID != user.TenantID || tenant.Name != "Admin Root" {
		t.Errorf("tenant = %+v", tenant)
	}

	_, err = f.users.SetupSuperuser(ctx, SetupSuperuserRequest{Email: "x@y.com", Password: "segredo123", FullName: "X"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second SetupSuperuser() err = %v, want ErrConflict", err)
	}
}

func TestSetupSuperuserPromotesExistingUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, admin := f.tenantWithAdmin(t, "acme")

	user, err := f.users.SetupSuperuser(ctx, SetupSuperuserRequest{
		Email:    "admin@acme.com",
		Password: "outrasenha1",
		FullName: "Admin",
	})
	if err != nil {
		t.Fatalf("SetupSuperuser() error = %v", err)
	}
	if user.ID != admin.UserID || !user.IsSuperuser {
		t.Errorf("user = %+v, want promoted %s", user, admin.UserID)
	}
	stored, err := f.userRepo.GetByID(ctx, admin.UserID)
	if err != nil || !stored.IsSuperuser {
		t.Errorf("stored = %+v, %v", stored, err)
	}
	if _, err := f.auth.Verify(ctx, "admin@acme.com", "outrasenha1"); err != nil {
		t.Errorf("Verify(new password) error = %v", err)
	}
}

func TestMeReturnsCaller(t *testing.T) {
	f := newFixture(t)
	_, admin := f.tenantWithAdmin(t, "acme")
	me, err := f.users.Me(context.Background(), admin)
	if err != nil || me.ID != admin.UserID {
		t.Errorf("Me() = %v, %v", me, err)
	}
	if _, err := f.users.Me(context.Background(), domain.Principal{UserID: uuid.New()}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Me(unknown) err = %v, want ErrNotFound", err)
	}
}
