// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package authz

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// histogramCount returns the number of observations recorded by h.
func histogramCount(t *testing.T, h prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := h.(prometheus.Metric)
	if !ok {
		t.Fatalf("%T is not a prometheus.Metric", h)
	}
	var m io_prometheus_client.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordAuthzDecision(t *testing.T) {
	allowed := AuthzDecisionsTotal.WithLabelValues("metrics-role", "allowed")
	denied := AuthzDecisionsTotal.WithLabelValues("metrics-role", "denied")
	deniedByRole := AuthzDeniedTotal.WithLabelValues("metrics-role")
	beforeAllowed, beforeDenied, beforeByRole := testutil.ToFloat64(allowed), testutil.ToFloat64(denied), testutil.ToFloat64(deniedByRole)

	RecordAuthzDecision("metrics-role", true, time.Microsecond, false)
	RecordAuthzDecision("metrics-role", false, time.Microsecond, true)

	if got := testutil.ToFloat64(allowed); got != beforeAllowed+1 {
		t.Errorf("allowed = %v, want %v", got, beforeAllowed+1)
	}
	if got := testutil.ToFloat64(denied); got != beforeDenied+1 {
		t.Errorf("denied = %v, want %v", got, beforeDenied+1)
	}
	if got := testutil.ToFloat64(deniedByRole); got != beforeByRole+1 {
		t.Errorf("denied by role = %v, want %v", got, beforeByRole+1)
	}
}

func TestRecordAuthzDecision_UnknownRoleLabel(t *testing.T) {
	counter := AuthzDecisionsTotal.WithLabelValues("none", "denied")
	before := testutil.ToFloat64(counter)

	RecordAuthzDecision("", false, time.Microsecond, false)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("none/denied = %v, want %v", got, before+1)
	}
}

func TestReloadResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{Unavailable("find_all_roles", errors.New("x")), "unavailable"},
		{Decode("find_all_users", errors.New("x")), "decode"},
		{errors.New("casbin model broken"), "error"},
	}
	for _, tt := range tests {
		if got := reloadResult(tt.err); got != tt.want {
			t.Errorf("reloadResult(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRecordPolicyReload(t *testing.T) {
	counter := AuthzPolicyReloadsTotal.WithLabelValues("decode")
	before := testutil.ToFloat64(counter)

	RecordPolicyReload(Decode("find_all_roles", errors.New("bad")), time.Millisecond)

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("decode reloads = %v, want %v", got, before+1)
	}
}

func TestUpdateSnapshotStats(t *testing.T) {
	UpdateSnapshotStats(SnapshotStatus{Version: 7, Rules: 12, Users: 4})

	if got := testutil.ToFloat64(AuthzSnapshotVersion); got != 7 {
		t.Errorf("snapshot version = %v, want 7", got)
	}
	if got := testutil.ToFloat64(AuthzPolicyRulesTotal); got != 12 {
		t.Errorf("policy rules = %v, want 12", got)
	}
	if got := testutil.ToFloat64(AuthzGroupingRulesTotal); got != 4 {
		t.Errorf("grouping rules = %v, want 4", got)
	}
}

func TestRecordCommError(t *testing.T) {
	sendFailed := AuthzCommErrorsTotal.WithLabelValues("send_failed")
	noReply := AuthzCommErrorsTotal.WithLabelValues("no_reply")
	beforeSend, beforeNoReply := testutil.ToFloat64(sendFailed), testutil.ToFloat64(noReply)

	RecordCommError(ErrSendFailed)
	RecordCommError(ErrNoReply)
	RecordCommError(errors.New("unrelated"))

	if got := testutil.ToFloat64(sendFailed); got != beforeSend+1 {
		t.Errorf("send_failed = %v, want %v", got, beforeSend+1)
	}
	if got := testutil.ToFloat64(noReply); got != beforeNoReply+1 {
		t.Errorf("no_reply = %v, want %v", got, beforeNoReply+1)
	}
}

func TestRecordAuthzDecision_ObservesLatency(t *testing.T) {
	hit := AuthzDecisionDuration.WithLabelValues("true")
	miss := AuthzDecisionDuration.WithLabelValues("false")
	beforeHit, beforeMiss := histogramCount(t, hit), histogramCount(t, miss)

	RecordAuthzDecision("latency-role", true, 50*time.Microsecond, true)
	RecordAuthzDecision("latency-role", true, 80*time.Microsecond, false)
	RecordAuthzDecision("latency-role", false, 90*time.Microsecond, false)

	if got := histogramCount(t, hit); got != beforeHit+1 {
		t.Errorf("cache hit samples = %d, want %d", got, beforeHit+1)
	}
	if got := histogramCount(t, miss); got != beforeMiss+2 {
		t.Errorf("cache miss samples = %d, want %d", got, beforeMiss+2)
	}
}

func TestRecordPolicyReload_ObservesDuration(t *testing.T) {
	before := histogramCount(t, AuthzPolicyReloadDuration)

	RecordPolicyReload(nil, 3*time.Millisecond)
	RecordPolicyReload(Unavailable("find_all_roles", errors.New("x")), time.Millisecond)

	if got := histogramCount(t, AuthzPolicyReloadDuration); got != before+2 {
		t.Errorf("reload samples = %d, want %d", got, before+2)
	}
}
