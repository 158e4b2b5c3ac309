// Package storage defines the row-level contract of the remote relational store.
// Backends live in sub-packages; services never see raw transport errors, only the
// typed errors declared here.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnavailable covers transport failures, cancelled contexts and expired deadlines.
	ErrUnavailable = errors.New("storage: unavailable")
	// ErrConflict is a unique constraint violation.
	ErrConflict = errors.New("storage: conflict")
	// ErrRejected is any other request the backend refused (bad column, check constraint).
	ErrRejected = errors.New("storage: rejected")
)

// Row maps column names to scalar values: string, bool, int, int64, float64,
// time.Time, []string or nil.
type Row map[string]any

type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpGte Op = "gte"
)

type Filter struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Filter  { return Filter{Column: column, Op: OpEq, Value: value} }
func Neq(column string, value any) Filter { return Filter{Column: column, Op: OpNeq, Value: value} }
func Gte(column string, value any) Filter { return Filter{Column: column, Op: OpGte, Value: value} }

type Order struct {
	Column string
	Desc   bool
}

func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

// Query selects rows matching every filter.
type Query struct {
	Filters []Filter
	Order   []Order
	Limit   int
}

// Where starts a query from a list of filters.
func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

func (q Query) OrderBy(orders ...Order) Query {
	q.Order = append(append([]Order(nil), q.Order...), orders...)
	return q
}

func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

// Client is the contract every backend implements.
type Client interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table string, filters []Filter, patch Row) (int64, error)
	Delete(ctx context.Context, table string, filters []Filter) (int64, error)
	Count(ctx context.Context, table string, filters []Filter) (int64, error)
}

// Unavailable wraps err as ErrUnavailable, keeping its message.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// ContextErr converts a done context into ErrUnavailable and returns nil otherwise.
func ContextErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return Unavailable(err)
	}
	return nil
}

// ErrorKind names the class of a storage error for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrRejected):
		return "rejected"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "unknown"
	}
}
