package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gomesrodrigo528/app-form/internal/storage"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return s
}

func tenantRow(id, slug string, at time.Time) storage.Row {
	return storage.Row{
		"id": id, "name": slug, "slug": slug, "is_active": true,
		"created_at": at, "updated_at": at,
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	row, err := s.Insert(ctx, "tenants", tenantRow("t1", "acme", now))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if row["slug"] != "acme" {
		t.Errorf("slug = %v, want acme", row["slug"])
	}
	if row["owner_email"] != "" {
		t.Errorf("owner_email = %#v, want column default", row["owner_email"])
	}

	if _, err := s.Insert(ctx, "tenants", tenantRow("t2", "beta", now.Add(time.Hour))); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	rows, err := s.Select(ctx, "tenants", storage.Where(storage.Gte("created_at", now.Add(time.Minute))))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(rows) != 1 || rows[0]["id"] != "t2" {
		t.Fatalf("Select(gte) = %v, want only t2", rows)
	}

	n, err := s.Update(ctx, "tenants", []storage.Filter{storage.Eq("id", "t1")}, storage.Row{"name": "Acme"})
	if err != nil || n != 1 {
		t.Fatalf("Update() = %d, %v, want 1, nil", n, err)
	}

	total, err := s.Count(ctx, "tenants", nil)
	if err != nil || total != 2 {
		t.Fatalf("Count() = %d, %v, want 2, nil", total, err)
	}

	n, err = s.Delete(ctx, "tenants", []storage.Filter{storage.Eq("slug", "beta")})
	if err != nil || n != 1 {
		t.Fatalf("Delete() = %d, %v, want 1, nil", n, err)
	}
}

func TestSQLiteUniqueViolationIsConflict(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := s.Insert(ctx, "tenants", tenantRow("t1", "acme", now)); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	_, err := s.Insert(ctx, "tenants", tenantRow("t2", "acme", now))
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestSQLiteOptionsStoredAsJSON(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := s.Insert(ctx, "tenants", tenantRow("t1", "acme", now)); err != nil {
		t.Fatalf("Insert(tenant) error = %v", err)
	}
	if _, err := s.Insert(ctx, "forms", storage.Row{
		"id": "f1", "tenant_id": "t1", "title": "Contato", "created_at": now, "updated_at": now,
	}); err != nil {
		t.Fatalf("Insert(form) error = %v", err)
	}
	row, err := s.Insert(ctx, "form_fields", storage.Row{
		"id": "x1", "form_id": "f1", "field_type": "checkbox", "label": "Cores",
		"options": []string{"A", "B"}, "created_at": now, "updated_at": now,
	})
	if err != nil {
		t.Fatalf("Insert(field) error = %v", err)
	}
	if row["options"] != `["A","B"]` {
		t.Errorf("options = %#v, want JSON text", row["options"])
	}
}

func TestSQLiteCancelledContextIsUnavailable(t *testing.T) {
	s := openSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Select(ctx, "tenants", storage.Query{})
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestSQLiteDeletesCascadeExceptAnswers(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()
	now := time.Now()

	inserts := []struct {
		table string
		row   storage.Row
	}{
		{"tenants", tenantRow("t1", "acme", now)},
		{"forms", storage.Row{"id": "f1", "tenant_id": "t1", "title": "Contato", "created_at": now, "updated_at": now}},
		{"form_fields", storage.Row{"id": "x1", "form_id": "f1", "field_type": "text", "label": "Nome", "created_at": now, "updated_at": now}},
		{"leads", storage.Row{"id": "l1", "tenant_id": "t1", "phone": "5511999990000", "created_at": now}},
		{"form_submissions", storage.Row{"id": "s1", "form_id": "f1", "lead_id": "l1", "tenant_id": "t1", "started_at": now}},
		{"form_responses", storage.Row{"id": "r1", "submission_id": "s1", "field_id": "x1", "response_value": "Ana", "created_at": now}},
	}
	for _, in := range inserts {
		if _, err := s.Insert(ctx, in.table, in.row); err != nil {
			t.Fatalf("Insert(%s) error = %v", in.table, err)
		}
	}

	if n, err := s.Delete(ctx, "form_fields", []storage.Filter{storage.Eq("id", "x1")}); err != nil || n != 1 {
		t.Fatalf("Delete(field) = %d, %v, want 1, nil", n, err)
	}
	if n, _ := s.Count(ctx, "form_responses", nil); n != 1 {
		t.Errorf("responses after field delete = %d, want 1", n)
	}

	if n, err := s.Delete(ctx, "forms", []storage.Filter{storage.Eq("id", "f1")}); err != nil || n != 1 {
		t.Fatalf("Delete(form) = %d, %v, want 1, nil", n, err)
	}
	for _, table := range []string{"form_submissions", "form_responses"} {
		if n, _ := s.Count(ctx, table, nil); n != 0 {
			t.Errorf("%s after form delete = %d, want 0", table, n)
		}
	}
	if n, _ := s.Count(ctx, "leads", nil); n != 1 {
		t.Errorf("leads after form delete = %d, want 1", n)
	}
}

func TestSQLiteRejectsOrphanRows(t *testing.T) {
	s := openSQLite(t)
	now := time.Now()

	_, err := s.Insert(context.Background(), "forms", storage.Row{
		"id": "f1", "tenant_id": "missing", "title": "Contato", "created_at": now, "updated_at": now,
	})
	if !errors.Is(err, storage.ErrRejected) {
		t.Errorf("err = %v, want ErrRejected", err)
	}
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{":memory:", ":memory:?_pragma=foreign_keys(1)"},
		{"data/app.db", "data/app.db?_pragma=foreign_keys(1)"},
		{"file:app.db?cache=shared", "file:app.db?cache=shared&_pragma=foreign_keys(1)"},
		{"app.db?_pragma=foreign_keys(0)", "app.db?_pragma=foreign_keys(0)"},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.in); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
