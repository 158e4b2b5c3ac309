// Package sqlstore implements the storage contract on a SQL database through sqlx.
// PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite) are supported.
package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/gomesrodrigo528/app-form/internal/storage"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Store struct {
	db *sqlx.DB
	b  builder
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s dsn is required", driver)
	}

	if driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one writer; also keeps a :memory: database on a single connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}
	return New(db), nil
}

// sqliteDSN turns on foreign keys for every connection so deletes cascade as they
// do on PostgreSQL.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// New wraps an existing connection pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, b: builder{driver: db.DriverName()}}
}

func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Select(ctx context.Context, table string, q storage.Query) ([]storage.Row, error) {
	query, args, err := s.b.selectQuery(table, q)
	if err != nil {
		return nil, err
	}
	return s.queryRows(ctx, query, args)
}

func (s *Store) Insert(ctx context.Context, table string, row storage.Row) (storage.Row, error) {
	query, args, err := s.b.insertQuery(table, row)
	if err != nil {
		return nil, err
	}
	rows, err := s.queryRows(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: insert into %s returned no row", storage.ErrRejected, table)
	}
	return rows[0], nil
}

func (s *Store) Update(ctx context.Context, table string, filters []storage.Filter, patch storage.Row) (int64, error) {
	query, args, err := s.b.updateQuery(table, filters, patch)
	if err != nil {
		return 0, err
	}
	return s.exec(ctx, query, args)
}

func (s *Store) Delete(ctx context.Context, table string, filters []storage.Filter) (int64, error) {
	query, args, err := s.b.deleteQuery(table, filters)
	if err != nil {
		return 0, err
	}
	return s.exec(ctx, query, args)
}

func (s *Store) Count(ctx context.Context, table string, filters []storage.Filter) (int64, error) {
	query, args, err := s.b.countQuery(table, filters)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(query), args...); err != nil {
		return 0, classify(ctx, err)
	}
	return n, nil
}

func (s *Store) exec(ctx context.Context, query string, args []any) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, classify(ctx, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify(ctx, err)
	}
	return n, nil
}

func (s *Store) queryRows(ctx context.Context, query string, args []any) ([]storage.Row, error) {
	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer rows.Close()

	var out []storage.Row
	for rows.Next() {
		m := make(map[string]any)
		if err := rows.MapScan(m); err != nil {
			return nil, classify(ctx, err)
		}
		for k, v := range m {
			if raw, ok := v.([]byte); ok {
				m[k] = string(raw)
			}
		}
		out = append(out, storage.Row(m))
	}
	if err := rows.Err(); err != nil {
		return nil, classify(ctx, err)
	}
	return out, nil
}
