package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/internal/repository"
	"github.com/gomesrodrigo528/app-form/internal/repository/datastore"
	"github.com/gomesrodrigo528/app-form/internal/storage/memory"
	"github.com/gomesrodrigo528/app-form/pkg/blacklist"
	"github.com/gomesrodrigo528/app-form/pkg/email"
	"github.com/gomesrodrigo528/app-form/pkg/hash"
	"github.com/gomesrodrigo528/app-form/pkg/jwt"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []email.LeadNotification
	err  error
}

func (f *fakeNotifier) NotifyNewLead(_ context.Context, n email.LeadNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return f.err
}

type fixture struct {
	clock    *testClock
	revoked  *blacklist.MemoryBlacklist
	notifier *fakeNotifier
	tokens   *jwt.TokenService

	tenantRepo     repository.TenantRepository
	userRepo       repository.UserRepository
	leadRepo       repository.LeadRepository
	submissionRepo repository.SubmissionRepository
	responseRepo   repository.ResponseRepository

	users       *UserService
	tenants     *TenantService
	auth        *AuthService
	forms       *FormService
	leads       *LeadService
	submissions *SubmissionService
	intake      *IntakeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := memory.NewWithSchema()
	log := zap.NewNop()
	clock := &testClock{t: time.Now().UTC().Truncate(time.Second)}

	f := &fixture{
		clock:          clock,
		revoked:        blacklist.NewMemoryBlacklist(),
		notifier:       &fakeNotifier{},
		tenantRepo:     datastore.NewTenantRepository(db),
		userRepo:       datastore.NewUserRepository(db),
		leadRepo:       datastore.NewLeadRepository(db),
		submissionRepo: datastore.NewSubmissionRepository(db),
		responseRepo:   datastore.NewResponseRepository(db),
	}
	formRepo := datastore.NewFormRepository(db)
	fieldRepo := datastore.NewFieldRepository(db)
	settingsRepo := datastore.NewSettingsRepository(db)

	tokens, err := jwt.NewTokenService("test-secret", time.Hour, "app-form-test")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	f.tokens = tokens

	hasher := hash.NewHasher(bcrypt.MinCost)
	f.users = NewUserService(f.userRepo, f.tenantRepo, hasher, f.revoked, time.Hour, log)
	f.tenants = NewTenantService(f.tenantRepo, settingsRepo, f.userRepo, f.users, log)
	f.auth = NewAuthService(f.userRepo, f.tenantRepo, hasher, tokens, f.revoked, log)
	f.forms = NewFormService(formRepo, fieldRepo, f.tenants, "https://forms.example.com/", log)
	f.leads = NewLeadService(f.leadRepo)
	f.submissions = NewSubmissionService(f.submissionRepo, f.responseRepo, f.leadRepo, formRepo, fieldRepo)
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}
	f.intake = NewIntakeService(f.forms, f.leads, f.submissions, f.notifier, loc, log)

	f.users.now = clock.Now
	f.tenants.now = clock.Now
	f.auth.now = clock.Now
	f.forms.now = clock.Now
	f.leads.now = clock.Now
	f.submissions.now = clock.Now
	f.intake.now = clock.Now

	return f
}

// tenantWithAdmin creates a tenant with one admin and returns the admin's principal.
func (f *fixture) tenantWithAdmin(t *testing.T, tenantSlug string) (*domain.Tenant, domain.Principal) {
	t.Helper()
	ctx := context.Background()

	tenant, err := f.tenants.Create(ctx, "Tenant "+tenantSlug, tenantSlug, "owner@"+tenantSlug+".com")
	if err != nil {
		t.Fatalf("Create tenant %s error = %v", tenantSlug, err)
	}
	admin, err := f.users.Create(ctx, tenant.ID, "admin@"+tenantSlug+".com", "segredo123", "Admin", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Create admin error = %v", err)
	}
	return tenant, principalOf(admin)
}

func principalOf(u *domain.User) domain.Principal {
	return domain.Principal{UserID: u.ID, TenantID: u.TenantID, Role: u.Role, IsSuperuser: u.IsSuperuser}
}

func (f *fixture) form(t *testing.T, p domain.Principal, title string, fields ...FieldRequest) (*domain.Form, []*domain.FormField) {
	t.Helper()
	ctx := context.Background()

	form, err := f.forms.CreateForm(ctx, p, CreateFormRequest{Title: title})
	if err != nil {
		t.Fatalf("CreateForm() error = %v", err)
	}
	var created []*domain.FormField
	for _, req := range fields {
		field, err := f.forms.CreateField(ctx, p, form.ID, req)
		if err != nil {
			t.Fatalf("CreateField(%s) error = %v", req.Label, err)
		}
		created = append(created, field)
	}
	return form, created
}

func superuser() domain.Principal {
	return domain.Principal{UserID: uuid.New(), TenantID: uuid.New(), Role: domain.RoleAdmin, IsSuperuser: true}
}
