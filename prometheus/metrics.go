package prometheus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/PauloHelder/thronus01-sub002/pkg/config"
)

var (
	// Link operations on the church network (candidate lookup, confirm, unlink, permissions)
	LinkOperationCounter *prometheus.CounterVec

	// Re-parenting events (a linked church confirmed a link to a new parent)
	RelinkCounter prometheus.Counter

	// Read-gate authorization decisions
	GateDecisionCounter *prometheus.CounterVec

	// Aggregate queries that failed after authorization
	AggregateFailureCounter *prometheus.CounterVec

	// Church CRUD operation counter
	ChurchOperationCounter *prometheus.CounterVec

	// Member operation counter
	MemberOperationCounter *prometheus.CounterVec

	// Finance entry counter
	FinanceEntryCounter *prometheus.CounterVec

	// Invite counters
	InviteCounter *prometheus.CounterVec

	// Database operation duration
	DBOperationDuration *prometheus.HistogramVec

	// System info
	InfoGauge *prometheus.GaugeVec
)

var initOnce sync.Once

// InitMetrics initializes Prometheus metrics with configuration. Metric
// names are derived from the configured prefix (METRICS_PREFIX).
func InitMetrics(conf *config.Config) {
	initOnce.Do(func() {
		prefix := conf.Metrics.Prefix

		LinkOperationCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_link_operations_total",
				Help: "Total number of church-network link operations",
			},
			[]string{"operation", "outcome"}, // outcome is "ok" or "error"
		)

		RelinkCounter = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_link_reparent_total",
				Help: "Total number of link confirmations that replaced an existing parent",
			},
		)

		GateDecisionCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_gate_decisions_total",
				Help: "Total number of permission-gate decisions for cross-church reads",
			},
			[]string{"capability", "decision"}, // decision is "allow" or "deny"
		)

		AggregateFailureCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_aggregate_failures_total",
				Help: "Total number of authorized aggregate queries that failed",
			},
			[]string{"capability"},
		)

		ChurchOperationCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_church_operations_total",
				Help: "Total number of church operations",
			},
			[]string{"operation"}, // "create", "access", "update", etc.
		)

		MemberOperationCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_member_operations_total",
				Help: "Total number of member operations",
			},
			[]string{"operation"},
		)

		FinanceEntryCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_finance_entries_total",
				Help: "Total number of finance entries recorded",
			},
			[]string{"kind"}, // "income" or "expense"
		)

		InviteCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_invites_total",
				Help: "Total number of member invites by state transition",
			},
			[]string{"event"}, // "created", "accepted", "rejected", "expired"
		)

		DBOperationDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"}, // "query", "insert", "update", "delete"
		)

		InfoGauge = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + "_service_info",
				Help: "Information about the church service",
			},
			[]string{"version"},
		)
		InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
	})
}

// RecordLinkOperation increments the link operation counter
func RecordLinkOperation(operation, outcome string) {
	LinkOperationCounter.WithLabelValues(operation, outcome).Inc()
}

// RecordGateDecision increments the gate decision counter
func RecordGateDecision(capability string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	GateDecisionCounter.WithLabelValues(capability, decision).Inc()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}
