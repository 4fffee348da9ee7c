// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tomtom215/warden/internal/history"
	"github.com/tomtom215/warden/internal/middleware"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// historyResponse is the body of GET /api/v1/authz/history.
type historyResponse struct {
	Entries []history.Entry `json:"entries"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// AuthzHistory lists past policy loads, newest first.
//
// Query parameters: outcome (success or failure, repeatable), since and
// until (RFC 3339), limit (1-500, default 50) and offset.
func (h *Handler) AuthzHistory(w http.ResponseWriter, r *http.Request) {
	filter, msg := parseHistoryFilter(r.URL.Query())
	if msg != "" {
		respondError(w, r, http.StatusBadRequest, codeInvalidRequest, msg, nil)
		return
	}

	entries, total, err := h.history.Query(r.Context(), filter)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	middleware.WriteJSON(w, http.StatusOK, historyResponse{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

// parseHistoryFilter builds a QueryFilter from query parameters. A
// non-empty message reports the first invalid parameter.
func parseHistoryFilter(q url.Values) (history.QueryFilter, string) {
	filter := history.QueryFilter{Limit: defaultHistoryLimit}

	for _, o := range q["outcome"] {
		outcome := history.Outcome(o)
		if outcome != history.OutcomeSuccess && outcome != history.OutcomeFailure {
			return filter, "outcome must be success or failure"
		}
		filter.Outcomes = append(filter.Outcomes, outcome)
	}

	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, "since must be an RFC 3339 timestamp"
		}
		filter.Since = &since
	}
	if v := q.Get("until"); v != "" {
		until, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, "until must be an RFC 3339 timestamp"
		}
		filter.Until = &until
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxHistoryLimit {
			return filter, "limit must be between 1 and 500"
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, "offset must be a non-negative integer"
		}
		filter.Offset = offset
	}

	return filter, ""
}
