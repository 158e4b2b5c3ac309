package sqlstore

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gomesrodrigo528/app-form/internal/storage"
)

var identRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// sqliteTime is fixed width so text comparison matches time order.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

func checkIdent(name string) error {
	if !identRegex.MatchString(name) {
		return fmt.Errorf("%w: invalid identifier %q", storage.ErrRejected, name)
	}
	return nil
}

// builder renders statements with '?' placeholders; the store rebinds them per driver.
type builder struct {
	driver string
}

func (b builder) arg(v any) any {
	switch x := v.(type) {
	case []string:
		if x == nil {
			x = []string{}
		}
		raw, _ := json.Marshal(x)
		return string(raw)
	case time.Time:
		if b.driver == DriverSQLite {
			return x.UTC().Format(sqliteTime)
		}
		return x.UTC()
	case fmt.Stringer:
		return x.String()
	default:
		return v
	}
}

func (b builder) where(filters []storage.Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		if err := checkIdent(f.Column); err != nil {
			return "", nil, err
		}
		switch f.Op {
		case storage.OpEq:
			if f.Value == nil {
				clauses = append(clauses, f.Column+" IS NULL")
				continue
			}
			clauses = append(clauses, f.Column+" = ?")
		case storage.OpNeq:
			if f.Value == nil {
				clauses = append(clauses, f.Column+" IS NOT NULL")
				continue
			}
			clauses = append(clauses, f.Column+" <> ?")
		case storage.OpGte:
			clauses = append(clauses, f.Column+" >= ?")
		default:
			return "", nil, fmt.Errorf("%w: unsupported operator %q", storage.ErrRejected, f.Op)
		}
		args = append(args, b.arg(f.Value))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func (b builder) selectQuery(table string, q storage.Query) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	where, args, err := b.where(q.Filters)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM " + table + where)
	if len(q.Order) > 0 {
		parts := make([]string, 0, len(q.Order))
		for _, o := range q.Order {
			if err := checkIdent(o.Column); err != nil {
				return "", nil, err
			}
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts = append(parts, o.Column+" "+dir)
		}
		sb.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}
	return sb.String(), args, nil
}

// sortedColumns keeps generated SQL deterministic.
func sortedColumns(row storage.Row) ([]string, error) {
	cols := make([]string, 0, len(row))
	for col := range row {
		if err := checkIdent(col); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols, nil
}

func (b builder) insertQuery(table string, row storage.Row) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	if len(row) == 0 {
		return "", nil, fmt.Errorf("%w: empty insert into %s", storage.ErrRejected, table)
	}
	cols, err := sortedColumns(row)
	if err != nil {
		return "", nil, err
	}

	args := make([]any, len(cols))
	marks := make([]string, len(cols))
	for i, col := range cols {
		args[i] = b.arg(row[col])
		marks[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))
	return query, args, nil
}

func (b builder) updateQuery(table string, filters []storage.Filter, patch storage.Row) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	if len(patch) == 0 {
		return "", nil, fmt.Errorf("%w: empty update of %s", storage.ErrRejected, table)
	}
	cols, err := sortedColumns(patch)
	if err != nil {
		return "", nil, err
	}

	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(filters))
	for i, col := range cols {
		sets[i] = col + " = ?"
		args = append(args, b.arg(patch[col]))
	}
	where, whereArgs, err := b.where(filters)
	if err != nil {
		return "", nil, err
	}
	return "UPDATE " + table + " SET " + strings.Join(sets, ", ") + where, append(args, whereArgs...), nil
}

func (b builder) deleteQuery(table string, filters []storage.Filter) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	where, args, err := b.where(filters)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + table + where, args, nil
}

func (b builder) countQuery(table string, filters []storage.Filter) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	where, args, err := b.where(filters)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM " + table + where, args, nil
}
