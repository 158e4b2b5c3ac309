// Package datastore implements the repositories on top of a storage.Client. Rows are
// decoded into domain records here and nowhere else.
package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/internal/storage"
)

const (
	tableTenants     = "tenants"
	tableSettings    = "tenant_settings"
	tableUsers       = "users"
	tableForms       = "forms"
	tableFields      = "form_fields"
	tableLeads       = "leads"
	tableSubmissions = "form_submissions"
	tableResponses   = "form_responses"
)

// translate converts storage errors into domain errors. A rejected request keeps
// its backend detail out of the message; storage.Observe has logged it already.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrConflict):
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	case errors.Is(err, storage.ErrRejected):
		return fmt.Errorf("%s: %w: request rejected by storage", op, domain.ErrValidation)
	default:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
	}
}

func idFilter(id uuid.UUID) []storage.Filter {
	return []storage.Filter{storage.Eq("id", id.String())}
}

// selectOne returns the first matching row or domain.ErrNotFound.
func selectOne(ctx context.Context, db storage.Client, table string, filters ...storage.Filter) (storage.Row, error) {
	rows, err := db.Select(ctx, table, storage.Where(filters...).Take(1))
	if err != nil {
		return nil, translate("select "+table, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return rows[0], nil
}

// expectOne maps a zero row count to domain.ErrNotFound.
func expectOne(n int64, err error, op string) error {
	if err != nil {
		return translate(op, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func nullableID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id.String()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func asBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	case int:
		return x != 0
	case float64:
		return x != 0
	case json.Number:
		n, _ := x.Int64()
		return n != 0
	case string:
		b, _ := strconv.ParseBool(x)
		return b
	default:
		return false
	}
}

func asInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case int32:
		return int(x)
	case float64:
		return int(x)
	case json.Number:
		n, _ := x.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(x)
		return n
	default:
		return 0
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func asTime(v any) time.Time {
	switch x := v.(type) {
	case time.Time:
		return x.UTC()
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}

func asTimePtr(v any) *time.Time {
	t := asTime(v)
	if t.IsZero() {
		return nil
	}
	return &t
}

func asUUID(v any) uuid.UUID {
	switch x := v.(type) {
	case uuid.UUID:
		return x
	case [16]byte:
		return uuid.UUID(x)
	}
	id, err := uuid.Parse(asString(v))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// asStrings decodes option lists stored natively, as JSON arrays or as JSON text.
func asStrings(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		if len(x) == 0 {
			return nil
		}
		return append([]string(nil), x...)
	case []any:
		if len(x) == 0 {
			return nil
		}
		out := make([]string, 0, len(x))
		for _, item := range x {
			out = append(out, asString(item))
		}
		return out
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		var out []string
		if err := json.Unmarshal([]byte(x), &out); err != nil || len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}
