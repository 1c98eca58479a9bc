// Package telemetry holds the process's Prometheus collectors.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

var ReconcileTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "basin",
		Subsystem: "reconcile",
		Name:      "total",
		Help:      "Total number of per-descriptor reconcile attempts by kind and outcome.",
	},
	[]string{"kind", "outcome"},
)

var ReconcileDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "basin",
		Subsystem: "reconcile",
		Name:      "duration_seconds",
		Help:      "Per-descriptor reconcile duration in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"kind"},
)

var ReflectorMessagesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "basin",
		Subsystem: "reflector",
		Name:      "messages_total",
		Help:      "Total number of event-queue messages processed by outcome.",
	},
	[]string{"outcome"},
)

var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "basin",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Intake HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// All returns every basin-specific collector for registration.
func All() []prometheus.Collector {
	return []prometheus.Collector{
		ReconcileTotal,
		ReconcileDuration,
		ReflectorMessagesTotal,
		HTTPRequestDuration,
	}
}
