// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warden_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "warden_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Directory metrics

	DirectoryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_directory_operations_total",
			Help: "Total number of directory operations by backend, operation and result",
		},
		[]string{"backend", "operation", "result"},
	)

	// DirectoryCircuitBreakerState is 0 for closed, 1 for half-open and 2 for open.
	DirectoryCircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "warden_directory_circuit_breaker_state",
			Help: "Directory circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Notification metrics

	NotifyMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warden_notify_messages_published_total",
			Help: "Total number of directory change events published",
		},
	)

	NotifyMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_notify_messages_consumed_total",
			Help: "Total number of directory change events consumed by result",
		},
		[]string{"result"}, // "reset", "skipped_own", "failed", "invalid"
	)

	// Reload history metrics

	HistoryEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_reload_history_entries_total",
			Help: "Total number of reload history entries by result",
		},
		[]string{"result"}, // "stored", "dropped", "failed"
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDirectoryOperation records one directory backend call.
func RecordDirectoryOperation(backend, operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	DirectoryOperationsTotal.WithLabelValues(backend, operation, result).Inc()
}

// SetCircuitBreakerState records a breaker state transition.
func SetCircuitBreakerState(name string, state float64) {
	DirectoryCircuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordNotifyPublish records a published change event.
func RecordNotifyPublish() {
	NotifyMessagesPublished.Inc()
}

// RecordNotifyConsume records the handling result of a consumed change event.
func RecordNotifyConsume(result string) {
	NotifyMessagesConsumed.WithLabelValues(result).Inc()
}

// RecordHistoryEntry records the fate of one reload history entry.
func RecordHistoryEntry(result string) {
	HistoryEntriesTotal.WithLabelValues(result).Inc()
}
