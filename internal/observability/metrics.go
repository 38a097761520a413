package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	apiRequestsTotal  *prometheus.CounterVec
	apiLatencySeconds *prometheus.HistogramVec
	apiErrorsTotal    *prometheus.CounterVec

	snapshotsDeliveredTotal *prometheus.CounterVec
	snapshotsAppliedTotal   *prometheus.CounterVec
	subscriptionErrorsTotal *prometheus.CounterVec

	reportTransitionsTotal *prometheus.CounterVec

	auditRecordedTotal *prometheus.CounterVec
	auditDroppedTotal  prometheus.Counter
	auditFailedTotal   prometheus.Counter

	badgeSubscribersActive prometheus.Gauge
	liveStreamClients      prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		snapshotsDeliveredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stream_snapshots_delivered_total",
			Help: "Full-result-set snapshots delivered by live subscriptions.",
		}, []string{"collection"})

		snapshotsAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_snapshots_applied_total",
			Help: "Snapshots applied to the in-memory state store.",
		}, []string{"collection"})

		subscriptionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stream_subscription_errors_total",
			Help: "Transient fetch failures absorbed by live subscriptions.",
		}, []string{"collection"})

		reportTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_transitions_total",
			Help: "Shortage report lifecycle transitions.",
		}, []string{"from", "to"})

		auditRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_entries_recorded_total",
			Help: "Audit entries persisted to the activity feed.",
		}, []string{"type"})

		auditDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_entries_dropped_total",
			Help: "Audit entries dropped because the queue was full.",
		})

		auditFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_entries_failed_total",
			Help: "Audit entries that failed to persist and were discarded.",
		})

		badgeSubscribersActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "badge_subscribers_active",
			Help: "Currently connected badge stream subscribers.",
		})

		liveStreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_live_clients",
			Help: "Currently connected live dashboard websocket clients.",
		})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			snapshotsDeliveredTotal, snapshotsAppliedTotal, subscriptionErrorsTotal,
			reportTransitionsTotal,
			auditRecordedTotal, auditDroppedTotal, auditFailedTotal,
			badgeSubscribersActive, liveStreamClients,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// SnapshotsDeliveredTotal exposes the subscription delivery counter.
func SnapshotsDeliveredTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return snapshotsDeliveredTotal
}

// SnapshotsAppliedTotal exposes the state store apply counter.
func SnapshotsAppliedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return snapshotsAppliedTotal
}

// SubscriptionErrorsTotal exposes the absorbed subscription error counter.
func SubscriptionErrorsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return subscriptionErrorsTotal
}

// ReportTransitionsTotal exposes the lifecycle transition counter.
func ReportTransitionsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return reportTransitionsTotal
}

// AuditRecordedTotal exposes the persisted audit entry counter.
func AuditRecordedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return auditRecordedTotal
}

// AuditDroppedTotal exposes the dropped audit entry counter.
func AuditDroppedTotal() prometheus.Counter {
	RegisterMetrics()
	return auditDroppedTotal
}

// AuditFailedTotal exposes the failed audit entry counter.
func AuditFailedTotal() prometheus.Counter {
	RegisterMetrics()
	return auditFailedTotal
}

// BadgeSubscribersActive exposes the badge subscriber gauge.
func BadgeSubscribersActive() prometheus.Gauge {
	RegisterMetrics()
	return badgeSubscribersActive
}

// LiveStreamClients exposes the live dashboard client gauge.
func LiveStreamClients() prometheus.Gauge {
	RegisterMetrics()
	return liveStreamClients
}
