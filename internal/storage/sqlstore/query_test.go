package sqlstore

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/gomesrodrigo528/app-form/internal/storage"
)

func TestSelectQuery(t *testing.T) {
	b := builder{driver: DriverPostgres}
	q := storage.Where(storage.Eq("tenant_id", "t1"), storage.Neq("id", "x"), storage.Eq("completed_at", nil)).
		OrderBy(storage.Asc("field_order"), storage.Desc("created_at")).
		Take(10)

	query, args, err := b.selectQuery("form_fields", q)
	if err != nil {
		t.Fatalf("selectQuery() error = %v", err)
	}
	want := "SELECT * FROM form_fields WHERE tenant_id = ? AND id <> ? AND completed_at IS NULL ORDER BY field_order ASC, created_at DESC LIMIT 10"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []any{"t1", "x"}) {
		t.Errorf("args = %v", args)
	}
}

func TestInsertQuerySortsColumnsAndEncodesLists(t *testing.T) {
	b := builder{driver: DriverSQLite}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("BRT", -3*3600))

	query, args, err := b.insertQuery("form_fields", storage.Row{
		"options":    []string{"A", "B"},
		"label":      "Cor",
		"created_at": at,
	})
	if err != nil {
		t.Fatalf("insertQuery() error = %v", err)
	}
	want := "INSERT INTO form_fields (created_at, label, options) VALUES (?, ?, ?) RETURNING *"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	wantArgs := []any{"2024-01-02T06:04:05.000000000Z", "Cor", `["A","B"]`}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %#v, want %#v", args, wantArgs)
	}
}

func TestUpdateQueryOrdersSetBeforeWhereArgs(t *testing.T) {
	b := builder{driver: DriverPostgres}
	query, args, err := b.updateQuery("form_submissions",
		[]storage.Filter{storage.Eq("id", "s1"), storage.Eq("whatsapp_sent", false)},
		storage.Row{"whatsapp_sent": true})
	if err != nil {
		t.Fatalf("updateQuery() error = %v", err)
	}
	want := "UPDATE form_submissions SET whatsapp_sent = ? WHERE id = ? AND whatsapp_sent = ?"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []any{true, "s1", false}) {
		t.Errorf("args = %v", args)
	}
}

func TestCountAndDeleteQueries(t *testing.T) {
	b := builder{driver: DriverPostgres}
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := b.countQuery("leads", []storage.Filter{storage.Gte("created_at", since)})
	if err != nil {
		t.Fatalf("countQuery() error = %v", err)
	}
	if query != "SELECT COUNT(*) FROM leads WHERE created_at >= ?" {
		t.Errorf("query = %q", query)
	}
	if got, ok := args[0].(time.Time); !ok || !got.Equal(since) {
		t.Errorf("args[0] = %#v, want %v", args[0], since)
	}

	query, _, err = b.deleteQuery("forms", nil)
	if err != nil {
		t.Fatalf("deleteQuery() error = %v", err)
	}
	if query != "DELETE FROM forms" {
		t.Errorf("query = %q", query)
	}
}

func TestInvalidIdentifiersAreRejected(t *testing.T) {
	b := builder{driver: DriverSQLite}
	cases := []func() error{
		func() error { _, _, err := b.selectQuery("forms; DROP TABLE x", storage.Query{}); return err },
		func() error {
			_, _, err := b.selectQuery("forms", storage.Where(storage.Eq("id = 1 OR 1", 1)))
			return err
		},
		func() error {
			_, _, err := b.selectQuery("forms", storage.Query{Order: []storage.Order{storage.Asc("Title")}})
			return err
		},
		func() error { _, _, err := b.insertQuery("forms", storage.Row{"bad-col": 1}); return err },
		func() error { _, _, err := b.insertQuery("forms", storage.Row{}); return err },
		func() error { _, _, err := b.updateQuery("forms", nil, storage.Row{}); return err },
	}
	for i, fn := range cases {
		if err := fn(); !errors.Is(err, storage.ErrRejected) {
			t.Errorf("case %d: err = %v, want ErrRejected", i, err)
		}
	}
}
