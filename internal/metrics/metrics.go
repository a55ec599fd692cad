// Package metrics provides Prometheus metrics for BlazeAlert.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "blazealert"
)

// Pipeline metrics
var (
	// AlertsIngested counts uniquely ingested alerts by severity and source.
	AlertsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "alerts_ingested_total",
			Help:      "Total number of uniquely ingested alerts",
		},
		[]string{"severity", "source"},
	)

	// DuplicatesMerged counts alerts merged into an existing active alert.
	DuplicatesMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duplicates_merged_total",
			Help:      "Total number of duplicate alerts merged",
		},
	)

	// AlertsRouted counts routing decisions by target channel.
	AlertsRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "alerts_routed_total",
			Help:      "Total number of alert-to-channel routing decisions",
		},
		[]string{"channel"},
	)

	// ActiveAlerts tracks the size of the in-memory active alert set.
	ActiveAlerts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "active_alerts",
			Help:      "Number of unresolved alerts tracked in memory",
		},
	)

	// DeliveryErrors counts failed channel deliveries by channel.
	DeliveryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channels",
			Name:      "delivery_errors_total",
			Help:      "Total number of failed channel deliveries",
		},
		[]string{"channel"},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsInFlight tracks requests currently being served.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)
