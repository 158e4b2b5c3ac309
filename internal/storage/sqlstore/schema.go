package sqlstore

import (
	"context"
	"fmt"
	"strings"
)

// column types per driver
type dialect struct {
	id, ts, boolean, list string
}

var dialects = map[string]dialect{
	DriverPostgres: {id: "UUID", ts: "TIMESTAMPTZ", boolean: "BOOLEAN", list: "JSONB"},
	DriverSQLite:   {id: "TEXT", ts: "TEXT", boolean: "BOOLEAN", list: "TEXT"},
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		id {{id}} PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		owner_email TEXT NOT NULL DEFAULT '',
		whatsapp_number TEXT NOT NULL DEFAULT '',
		primary_color TEXT NOT NULL DEFAULT '',
		secondary_color TEXT NOT NULL DEFAULT '',
		is_active {{bool}} NOT NULL DEFAULT TRUE,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id {{id}} PRIMARY KEY,
		tenant_id {{id}} NOT NULL REFERENCES tenants(id),
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		is_active {{bool}} NOT NULL DEFAULT TRUE,
		is_superuser {{bool}} NOT NULL DEFAULT FALSE,
		last_login {{ts}},
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL,
		UNIQUE (tenant_id, email)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
	`CREATE TABLE IF NOT EXISTS forms (
		id {{id}} PRIMARY KEY,
		tenant_id {{id}} NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_active {{bool}} NOT NULL DEFAULT TRUE,
		created_by {{id}},
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_forms_tenant ON forms(tenant_id)`,
	`CREATE TABLE IF NOT EXISTS form_fields (
		id {{id}} PRIMARY KEY,
		form_id {{id}} NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
		field_type TEXT NOT NULL,
		label TEXT NOT NULL,
		placeholder TEXT NOT NULL DEFAULT '',
		is_required {{bool}} NOT NULL DEFAULT FALSE,
		field_order INTEGER NOT NULL DEFAULT 0,
		options {{list}},
		is_multiple {{bool}} NOT NULL DEFAULT FALSE,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_form_fields_form ON form_fields(form_id)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id {{id}} PRIMARY KEY,
		tenant_id {{id}} NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		phone TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		created_at {{ts}} NOT NULL,
		UNIQUE (tenant_id, phone)
	)`,
	`CREATE TABLE IF NOT EXISTS form_submissions (
		id {{id}} PRIMARY KEY,
		form_id {{id}} NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
		lead_id {{id}} NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
		tenant_id {{id}} NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'incomplete',
		started_at {{ts}} NOT NULL,
		completed_at {{ts}},
		whatsapp_sent {{bool}} NOT NULL DEFAULT FALSE,
		whatsapp_sent_at {{ts}}
	)`,
	`CREATE INDEX IF NOT EXISTS idx_form_submissions_tenant ON form_submissions(tenant_id)`,
	`CREATE TABLE IF NOT EXISTS form_responses (
		id {{id}} PRIMARY KEY,
		submission_id {{id}} NOT NULL REFERENCES form_submissions(id) ON DELETE CASCADE,
		field_id {{id}} NOT NULL,
		response_value TEXT NOT NULL DEFAULT '',
		created_at {{ts}} NOT NULL,
		UNIQUE (submission_id, field_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_form_responses_field ON form_responses(field_id)`,
	`CREATE TABLE IF NOT EXISTS tenant_settings (
		tenant_id {{id}} PRIMARY KEY REFERENCES tenants(id) ON DELETE CASCADE,
		welcome_message TEXT NOT NULL DEFAULT '',
		thank_you_message TEXT NOT NULL DEFAULT ''
	)`,
}

// upgrades bring databases created by older schemas in line. Answers used to be
// deleted with their field.
var upgrades = map[string][]string{
	DriverPostgres: {
		`ALTER TABLE form_responses DROP CONSTRAINT IF EXISTS form_responses_field_id_fkey`,
	},
}

// Migrate creates the tables when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	d, ok := dialects[s.b.driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", s.b.driver)
	}

	r := strings.NewReplacer("{{id}}", d.id, "{{ts}}", d.ts, "{{bool}}", d.boolean, "{{list}}", d.list)
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, r.Replace(stmt)); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	for _, stmt := range upgrades[s.b.driver] {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to upgrade schema: %w", err)
		}
	}
	return nil
}
