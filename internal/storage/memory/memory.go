// Package memory is an in-process storage backend. Rows keep insertion order, so
// ordered selects are stable.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gomesrodrigo528/app-form/internal/storage"
)

type Store struct {
	mu      sync.RWMutex
	tables  map[string][]storage.Row
	unique  map[string][][]string
	cascade map[string][]reference
}

// reference is a child table column holding the id of a parent row.
type reference struct {
	table  string
	column string
}

type Option func(*Store)

// WithUnique declares a unique key on table; inserts and updates that would duplicate
// it fail with storage.ErrConflict.
func WithUnique(table string, columns ...string) Option {
	return func(s *Store) {
		s.unique[table] = append(s.unique[table], columns)
	}
}

// WithCascade removes the rows of child whose column holds the id of a deleted
// parent row, like ON DELETE CASCADE.
func WithCascade(parent, child, column string) Option {
	return func(s *Store) {
		s.cascade[parent] = append(s.cascade[parent], reference{table: child, column: column})
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		tables:  make(map[string][]storage.Row),
		unique:  make(map[string][][]string),
		cascade: make(map[string][]reference),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewWithSchema returns a store carrying the same unique keys and cascading
// deletes as the SQL schema. Responses outlive the fields they answer.
func NewWithSchema() *Store {
	return New(
		WithUnique("tenants", "slug"),
		WithUnique("users", "tenant_id", "email"),
		WithUnique("leads", "tenant_id", "phone"),
		WithUnique("form_responses", "submission_id", "field_id"),
		WithUnique("tenant_settings", "tenant_id"),
		WithCascade("tenants", "forms", "tenant_id"),
		WithCascade("tenants", "leads", "tenant_id"),
		WithCascade("tenants", "form_submissions", "tenant_id"),
		WithCascade("tenants", "tenant_settings", "tenant_id"),
		WithCascade("forms", "form_fields", "form_id"),
		WithCascade("forms", "form_submissions", "form_id"),
		WithCascade("leads", "form_submissions", "lead_id"),
		WithCascade("form_submissions", "form_responses", "submission_id"),
	)
}

func (s *Store) Select(ctx context.Context, table string, q storage.Query) ([]storage.Row, error) {
	if err := storage.ContextErr(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []storage.Row
	for _, row := range s.tables[table] {
		if matches(row, q.Filters) {
			out = append(out, clone(row))
		}
	}
	if len(q.Order) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.Order {
				c := compare(out[i][o.Column], out[j][o.Column])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, table string, row storage.Row) (storage.Row, error) {
	if err := storage.ContextErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := clone(row)
	if err := s.checkUnique(table, stored, -1); err != nil {
		return nil, err
	}
	s.tables[table] = append(s.tables[table], stored)
	return clone(stored), nil
}

func (s *Store) Update(ctx context.Context, table string, filters []storage.Filter, patch storage.Row) (int64, error) {
	if err := storage.ContextErr(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[table]
	var updated []int
	next := make([]storage.Row, len(rows))
	copy(next, rows)
	for i, row := range rows {
		if !matches(row, filters) {
			continue
		}
		changed := clone(row)
		for k, v := range patch {
			changed[k] = cloneValue(v)
		}
		next[i] = changed
		updated = append(updated, i)
	}
	for _, i := range updated {
		if err := checkUniqueIn(s.unique[table], next, next[i], i); err != nil {
			return 0, err
		}
	}
	s.tables[table] = next
	return int64(len(updated)), nil
}

func (s *Store) Delete(ctx context.Context, table string, filters []storage.Filter) (int64, error) {
	if err := storage.ContextErr(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteLocked(table, filters), nil
}

func (s *Store) deleteLocked(table string, filters []storage.Filter) int64 {
	var kept, removed []storage.Row
	for _, row := range s.tables[table] {
		if matches(row, filters) {
			removed = append(removed, row)
			continue
		}
		kept = append(kept, row)
	}
	s.tables[table] = kept

	for _, ref := range s.cascade[table] {
		for _, row := range removed {
			if id, ok := row["id"]; ok && id != nil {
				s.deleteLocked(ref.table, []storage.Filter{storage.Eq(ref.column, id)})
			}
		}
	}
	return int64(len(removed))
}

func (s *Store) Count(ctx context.Context, table string, filters []storage.Filter) (int64, error) {
	if err := storage.ContextErr(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, row := range s.tables[table] {
		if matches(row, filters) {
			n++
		}
	}
	return n, nil
}

func (s *Store) checkUnique(table string, row storage.Row, self int) error {
	return checkUniqueIn(s.unique[table], s.tables[table], row, self)
}

func checkUniqueIn(keys [][]string, rows []storage.Row, row storage.Row, self int) error {
	for _, cols := range keys {
		for i, other := range rows {
			if i == self {
				continue
			}
			same := true
			for _, c := range cols {
				if row[c] == nil || compare(row[c], other[c]) != 0 {
					same = false
					break
				}
			}
			if same {
				return fmt.Errorf("%w: duplicate key (%s)", storage.ErrConflict, strings.Join(cols, ", "))
			}
		}
	}
	return nil
}

func matches(row storage.Row, filters []storage.Filter) bool {
	for _, f := range filters {
		v := row[f.Column]
		switch f.Op {
		case storage.OpEq:
			if v == nil || f.Value == nil {
				if v != f.Value {
					return false
				}
				continue
			}
			if compare(v, f.Value) != 0 {
				return false
			}
		case storage.OpNeq:
			if v == nil || f.Value == nil || compare(v, f.Value) == 0 {
				return false
			}
		case storage.OpGte:
			if v == nil || f.Value == nil || compare(v, f.Value) < 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compare orders two scalars; nil sorts first and mismatched types compare by their
// printed form.
func compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func clone(row storage.Row) storage.Row {
	out := make(storage.Row, len(row))
	for k, v := range row {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	if list, ok := v.([]string); ok {
		return append([]string(nil), list...)
	}
	return v
}
