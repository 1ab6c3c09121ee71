// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import "errors"

// Sentinel errors forming Curator's error taxonomy. Storage,
// orchestration and evaluation failures wrap one of these three classes
// so callers can dispatch with errors.Is; the API layer maps them onto
// 404, 400 and 503. Errors are surfaced directly to the caller — the
// core never retries and never swallows one.
var (
	// ErrNotFound indicates a referenced entity is absent: an unknown
	// user, or an engagement naming a recset_id with no stored
	// impression. The event log never silently inserts an orphaned
	// engagement because it could never be attributed and would corrupt
	// PaC aggregates without any visible failure.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates malformed input: non-positive k, an
	// empty required field, a placeholder action type, or a sentinel
	// zero timestamp.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnavailable indicates the storage engine cannot be reached.
	// Fast-fail; retries belong to the transport layer, not the core.
	ErrUnavailable = errors.New("storage unavailable")
)
