// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import "time"

// APIResponse is the standardized envelope for all HTTP endpoints.
//
// Status is "success" or "error". Data carries the payload on success;
// Error is populated only on failure.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response observability fields.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
}

// APIError carries structured error details.
//
// Code is a stable machine-readable identifier (NOT_FOUND,
// INVALID_ARGUMENT, UNAVAILABLE, VALIDATION_ERROR, INTERNAL_ERROR);
// Message is human-readable.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RecommendationResponse is the payload served for a recommendation
// request. RecsetID identifies the impression written for this serving
// and is what clients echo back when posting engagements.
type RecommendationResponse struct {
	RecsetID string       `json:"recset_id"`
	UserID   int          `json:"user_id"`
	Engine   string       `json:"engine"`
	K        int          `json:"k"`
	Items    []ScoredItem `json:"items"`
}
