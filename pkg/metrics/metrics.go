package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appform_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "method", "status"},
	)

	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appform_login_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"}, // success, invalid_credentials, inactive, error
	)

	HashMigrationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appform_password_hash_migrations_total",
			Help: "Total number of legacy password hashes rewritten to bcrypt",
		},
		[]string{"scheme"},
	)

	SubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appform_submissions_total",
			Help: "Total number of public form submissions by outcome",
		},
		[]string{"outcome"}, // whatsapp, success_page, rejected, error
	)

	StorageErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appform_storage_errors_total",
			Help: "Total number of failed storage operations",
		},
		[]string{"table", "operation", "kind"},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "appform_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	StorageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "appform_storage_operation_duration_seconds",
			Help:    "Duration of storage operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"table", "operation"},
	)
)

var registerOnce sync.Once

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestCounter,
			LoginCounter,
			HashMigrationCounter,
			SubmissionCounter,
			StorageErrorCounter,
			RequestDuration,
			StorageDuration,
		)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one finished HTTP request.
func ObserveRequest(route, method string, status int, elapsed time.Duration) {
	HTTPRequestCounter.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// TrackStorage returns a func that records the duration since start when deferred.
//
//	defer metrics.TrackStorage("forms", "select")(time.Now())
func TrackStorage(table, operation string) func(time.Time) {
	return func(start time.Time) {
		StorageDuration.WithLabelValues(table, operation).Observe(time.Since(start).Seconds())
	}
}
