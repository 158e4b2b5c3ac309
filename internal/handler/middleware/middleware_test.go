package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gomesrodrigo528/app-form/internal/domain"
)

type fakeAuth struct {
	claims *domain.Claims
	err    error
}

func (f fakeAuth) Authenticate(_ context.Context, token string) (*domain.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	if token != "good" {
		return nil, domain.ErrInvalidCredentials
	}
	return f.claims, nil
}

func status(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	resp.Body.Close()
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	claims := &domain.Claims{UserID: uuid.New(), TenantID: uuid.New(), Role: domain.RoleAdmin}

	newApp := func(auth Authenticator) *fiber.App {
		app := fiber.New()
		app.Get("/", AuthMiddleware(auth), func(c *fiber.Ctx) error {
			p := Principal(c)
			if p.UserID != claims.UserID || p.TenantID != claims.TenantID {
				return c.SendStatus(http.StatusInternalServerError)
			}
			return c.SendStatus(http.StatusNoContent)
		})
		return app
	}

	tests := []struct {
		name   string
		auth   Authenticator
		header string
		want   int
	}{
		{"missing header", fakeAuth{claims: claims}, "", http.StatusUnauthorized},
		{"wrong scheme", fakeAuth{claims: claims}, "Basic good", http.StatusUnauthorized},
		{"empty token", fakeAuth{claims: claims}, "Bearer  ", http.StatusUnauthorized},
		{"bad token", fakeAuth{claims: claims}, "Bearer bad", http.StatusUnauthorized},
		{"store down", fakeAuth{err: fmt.Errorf("%w: redis", domain.ErrUnavailable)}, "Bearer good", http.StatusServiceUnavailable},
		{"valid", fakeAuth{claims: claims}, "Bearer good", http.StatusNoContent},
		{"scheme is case insensitive", fakeAuth{claims: claims}, "bearer good", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := status(t, newApp(tt.auth), req).StatusCode; got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRequireSuperuser(t *testing.T) {
	for _, su := range []bool{false, true} {
		claims := &domain.Claims{UserID: uuid.New(), TenantID: uuid.New(), Role: domain.RoleAdmin, IsSuperuser: su}
		app := fiber.New()
		app.Get("/", AuthMiddleware(fakeAuth{claims: claims}), RequireSuperuser(), func(c *fiber.Ctx) error {
			return c.SendStatus(http.StatusNoContent)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		want := http.StatusForbidden
		if su {
			want = http.StatusNoContent
		}
		if got := status(t, app, req).StatusCode; got != want {
			t.Errorf("superuser=%v status = %d, want %d", su, got, want)
		}
	}
}

func TestLoggerAndRecovery(t *testing.T) {
	app := fiber.New()
	app.Use(LoggerMiddleware(zap.NewNop()))
	app.Use(RecoveryMiddleware())
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.ErrTeapot
	})

	resp := status(t, app, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("panic status = %d, want 500", resp.StatusCode)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Error("missing request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
	req.Header.Set(requestIDHeader, "abc")
	resp = status(t, app, req)
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("error status = %d, want 418", resp.StatusCode)
	}
	if got := resp.Header.Get(requestIDHeader); got != "abc" {
		t.Errorf("request id = %q, want echoed", got)
	}
}
