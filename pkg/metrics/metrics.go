// Package metrics provides Prometheus metrics for the verzoeken service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemoteRequestsTotal tracks calls to sibling APIs
	RemoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "verzoeken",
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      "Total number of requests to remote APIs by operation, resource and outcome",
		},
		[]string{"operation", "resource", "status"},
	)

	// RemoteRequestDuration tracks the duration of calls to sibling APIs
	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "verzoeken",
			Subsystem: "remote",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests to remote APIs in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "resource"},
	)

	// MirrorSyncTotal tracks mirror create/delete outcomes
	MirrorSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "verzoeken",
			Subsystem: "mirror",
			Name:      "sync_total",
			Help:      "Total number of mirror synchronizations by action and outcome",
		},
		[]string{"action", "status"},
	)

	// RelationChecksTotal tracks remote relation consistency checks
	RelationChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "verzoeken",
			Subsystem: "relations",
			Name:      "checks_total",
			Help:      "Total number of remote relation checks by polarity and outcome",
		},
		[]string{"polarity", "outcome"},
	)

	// MaskedRelations tracks relations currently hidden because their deletion is in flight
	MaskedRelations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "verzoeken",
			Subsystem: "mask",
			Name:      "entries",
			Help:      "Number of relations marked for deletion by this instance",
		},
	)

	// NotificationsPublished tracks published notifications
	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "verzoeken",
			Subsystem: "notifications",
			Name:      "published_total",
			Help:      "Total number of notifications published by resource and outcome",
		},
		[]string{"resource", "status"},
	)
)

func RecordRemoteRequest(operation, resource, status string, durationSeconds float64) {
	RemoteRequestsTotal.WithLabelValues(operation, resource, status).Inc()
	RemoteRequestDuration.WithLabelValues(operation, resource).Observe(durationSeconds)
}

func RecordMirrorSync(action, status string) {
	MirrorSyncTotal.WithLabelValues(action, status).Inc()
}

func RecordRelationCheck(polarity, outcome string) {
	RelationChecksTotal.WithLabelValues(polarity, outcome).Inc()
}

func RecordNotification(resource, status string) {
	NotificationsPublished.WithLabelValues(resource, status).Inc()
}
