// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jobboard_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheLookups counts cache-aside lookups by namespace and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_cache_lookups_total",
		Help: "Cache-aside lookups by namespace and result",
	}, []string{"namespace", "result"})

	// RegistrationsTotal counts successful registrations by role.
	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_registrations_total",
		Help: "Successful account registrations by role",
	}, []string{"role"})

	// LoginsTotal counts login attempts by outcome.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_logins_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})

	// ApplicationsSubmitted counts applications by offer type.
	ApplicationsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_applications_submitted_total",
		Help: "Applications submitted by offer type",
	}, []string{"offer_type"})

	// ApplicationStatusChanges counts status writes by target status.
	ApplicationStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_application_status_changes_total",
		Help: "Application status changes by target status",
	}, []string{"status"})

	// AuthorizationDenials counts rejected authorization checks by resource kind and reason.
	AuthorizationDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobboard_authorization_denials_total",
		Help: "Authorization denials by resource kind and reason",
	}, []string{"kind", "reason"})

	// OffersExpired counts offers deactivated by the expiry sweep.
	OffersExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobboard_offers_expired_total",
		Help: "Job offers deactivated after their deadline passed",
	})

	// ActiveNotificationSockets tracks open notification websockets.
	ActiveNotificationSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jobboard_notification_sockets_active",
		Help: "Open notification websocket connections",
	})

	// NotificationDrops counts events not delivered to a socket because its buffer was full.
	NotificationDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobboard_notification_drops_total",
		Help: "Notification events dropped due to websocket backpressure",
	})
)

const queryStartKey = "observability:query_start"

// RegisterDatabaseMetrics installs GORM callbacks that record query latency
// per operation and table.
func RegisterDatabaseMetrics(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
		}
	}

	cb := db.Callback()
	steps := []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
	}
	for _, s := range steps {
		if err := s.before("metrics:before_"+s.op, before); err != nil {
			return err
		}
		if err := s.after("metrics:after_"+s.op, after(s.op)); err != nil {
			return err
		}
	}
	return nil
}
