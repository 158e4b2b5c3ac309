package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gomesrodrigo528/app-form/pkg/metrics"
)

type observed struct {
	next Client
	log  *zap.Logger
}

// Observe wraps a client so every operation is timed and every failure is logged once,
// at the storage boundary, before the typed error travels up.
func Observe(next Client, log *zap.Logger) Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &observed{next: next, log: log.Named("storage")}
}

func (o *observed) done(table, op string, start time.Time, err error) {
	metrics.TrackStorage(table, op)(start)
	if err == nil {
		return
	}
	kind := ErrorKind(err)
	metrics.StorageErrorCounter.WithLabelValues(table, op, kind).Inc()
	fields := []zap.Field{
		zap.String("table", table),
		zap.String("operation", op),
		zap.String("kind", kind),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	}
	if kind == "conflict" {
		o.log.Info("storage operation conflicted", fields...)
		return
	}
	o.log.Error("storage operation failed", fields...)
}

func (o *observed) Select(ctx context.Context, table string, q Query) (rows []Row, err error) {
	defer func(start time.Time) { o.done(table, "select", start, err) }(time.Now())
	return o.next.Select(ctx, table, q)
}

func (o *observed) Insert(ctx context.Context, table string, row Row) (out Row, err error) {
	defer func(start time.Time) { o.done(table, "insert", start, err) }(time.Now())
	return o.next.Insert(ctx, table, row)
}

func (o *observed) Update(ctx context.Context, table string, filters []Filter, patch Row) (n int64, err error) {
	defer func(start time.Time) { o.done(table, "update", start, err) }(time.Now())
	return o.next.Update(ctx, table, filters, patch)
}

func (o *observed) Delete(ctx context.Context, table string, filters []Filter) (n int64, err error) {
	defer func(start time.Time) { o.done(table, "delete", start, err) }(time.Now())
	return o.next.Delete(ctx, table, filters)
}

func (o *observed) Count(ctx context.Context, table string, filters []Filter) (n int64, err error) {
	defer func(start time.Time) { o.done(table, "count", start, err) }(time.Now())
	return o.next.Count(ctx, table, filters)
}
