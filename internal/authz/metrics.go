// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package authz

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the authorization core.
//
// Categories:
//   - Decisions: allow/deny counts and latency
//   - Snapshots: reloads, rule counts, current generation
//   - Actor: mailbox depth and handle failures
//   - Cache: hit/miss rates and size
var (
	// AuthzDecisionsTotal counts decisions by role and outcome.
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"role", "decision"},
	)

	// AuthzDecisionDuration tracks the latency of Enforcer.Check.
	AuthzDecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warden_authz_decision_duration_seconds",
			Help:    "Duration of authorization decisions in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
		[]string{"cache_hit"},
	)

	// AuthzDeniedTotal tracks denials separately for alerting.
	AuthzDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_authz_denied_total",
			Help: "Total number of authorization denials",
		},
		[]string{"role"},
	)

	// AuthzBypassGrantsTotal counts grants made to the bypass subject.
	AuthzBypassGrantsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warden_authz_bypass_grants_total",
			Help: "Total number of checks granted through the bypass subject",
		},
	)

	AuthzCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warden_authz_cache_hits_total",
			Help: "Total number of decision cache hits",
		},
	)

	AuthzCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warden_authz_cache_misses_total",
			Help: "Total number of decision cache misses",
		},
	)

	AuthzCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "warden_authz_cache_entries",
			Help: "Current number of entries in the decision cache",
		},
	)

	AuthzCacheEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warden_authz_cache_evictions_total",
			Help: "Total number of decision cache evictions (TTL expiry)",
		},
	)

	// AuthzPolicyReloadsTotal counts policy reloads by result and failure kind.
	AuthzPolicyReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_authz_policy_reloads_total",
			Help: "Total number of policy reloads",
		},
		[]string{"result"}, // "success", "unavailable", "decode", "error"
	)

	AuthzPolicyReloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "warden_authz_policy_reload_duration_seconds",
			Help:    "Duration of policy reloads including directory fetches",
			Buckets: prometheus.DefBuckets,
		},
	)

	// AuthzPolicyRulesTotal tracks the number of policy rules in the current snapshot.
	AuthzPolicyRulesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "warden_authz_policy_rules",
			Help: "Number of permission rules in the installed snapshot",
		},
	)

	// AuthzGroupingRulesTotal tracks the number of account to role edges.
	AuthzGroupingRulesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "warden_authz_grouping_rules",
			Help: "Number of account to role assignments in the installed snapshot",
		},
	)

	AuthzSnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "warden_authz_snapshot_version",
			Help: "Generation number of the installed policy snapshot",
		},
	)

	AuthzPatternsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warden_authz_patterns_skipped_total",
			Help: "Total number of malformed permission rules skipped during reloads",
		},
	)

	// AuthzErrorsTotal counts evaluation errors (not denials).
	AuthzErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_authz_errors_total",
			Help: "Total number of authorization evaluation errors",
		},
		[]string{"error_type"}, // "enforcer_error", "actor_panic"
	)

	// AuthzMailboxDepth tracks queued actor messages.
	AuthzMailboxDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "warden_authz_mailbox_depth",
			Help: "Number of messages waiting in the authorization actor mailbox",
		},
	)

	// AuthzCommErrorsTotal counts handle failures by kind.
	AuthzCommErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_authz_comm_errors_total",
			Help: "Total number of actor communication failures",
		},
		[]string{"kind"}, // "send_failed", "no_reply"
	)
)

// RecordAuthzDecision records the outcome and latency of one check.
func RecordAuthzDecision(role string, allowed bool, duration time.Duration, cacheHit bool) {
	if role == "" {
		role = "none"
	}
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	AuthzDecisionsTotal.WithLabelValues(role, decision).Inc()

	cacheHitLabel := "false"
	if cacheHit {
		cacheHitLabel = "true"
	}
	AuthzDecisionDuration.WithLabelValues(cacheHitLabel).Observe(duration.Seconds())

	if !allowed {
		AuthzDeniedTotal.WithLabelValues(role).Inc()
	}
}

// RecordPolicyReload records a reload result. err is nil on success.
func RecordPolicyReload(err error, duration time.Duration) {
	AuthzPolicyReloadDuration.Observe(duration.Seconds())
	AuthzPolicyReloadsTotal.WithLabelValues(reloadResult(err)).Inc()
}

func reloadResult(err error) string {
	if err == nil {
		return "success"
	}
	var de *DirectoryError
	if errors.As(err, &de) {
		return de.Kind.String()
	}
	return "error"
}

// UpdateSnapshotStats updates the gauges describing the installed snapshot.
func UpdateSnapshotStats(s SnapshotStatus) {
	AuthzPolicyRulesTotal.Set(float64(s.Rules))
	AuthzGroupingRulesTotal.Set(float64(s.Users))
	AuthzSnapshotVersion.Set(float64(s.Version))
}

// RecordCommError records a handle failure.
func RecordCommError(err error) {
	switch err {
	case ErrSendFailed:
		AuthzCommErrorsTotal.WithLabelValues("send_failed").Inc()
	case ErrNoReply:
		AuthzCommErrorsTotal.WithLabelValues("no_reply").Inc()
	}
}
