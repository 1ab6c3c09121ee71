// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package models defines the shared data types persisted and served by
// Curator: the append-only impression and engagement event records, the
// catalog entities backing the scorers, and the API response envelope.
package models

import (
	"time"
)

// Engine tags identify which scorer produced an impression.
const (
	EngineBaseline = "baseline"
	EngineNeural   = "nn"
)

// Impression records one recommendation list served to a user.
//
// Impressions are append-only: created exactly once per recommendation
// request, never updated, and deleted only by a bulk reset that removes
// dependent engagements first.
type Impression struct {
	// RecsetID is the opaque unique identifier generated at creation.
	// It is the join key that links engagements back to this impression.
	RecsetID string `json:"recset_id"`

	// UserID identifies the recipient.
	UserID int `json:"user_id"`

	// Engine is the scorer that produced the list: "baseline" or "nn".
	// Always the engine actually used, even after a silent auto fallback.
	Engine string `json:"engine"`

	// Platform is the serving surface the list was requested from.
	Platform string `json:"platform"`

	// K is the list length requested at serving time. len(ItemIDs) <= K.
	K int `json:"k"`

	// ItemIDs is the served list in rank order; position 0 is the top
	// recommendation. Immutable once written.
	ItemIDs []int `json:"item_ids"`

	// CreatedAt is the serving timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Engagement records one user action taken in response to a previously
// served impression. Append-only.
type Engagement struct {
	// RecsetID references the impression this action responds to. The
	// event log rejects engagements whose RecsetID is unknown: an
	// orphaned engagement can never be attributed and would corrupt
	// aggregate counts silently.
	RecsetID string `json:"recset_id"`

	// UserID must match the referenced impression's user.
	UserID int `json:"user_id"`

	// ItemID is the item acted upon. It need not be a member of the
	// impression's list; such engagements are valid records but can
	// never count as a hit.
	ItemID int `json:"item_id"`

	// ActionType is a free-form tag such as "click", "like" or "watch".
	ActionType string `json:"action_type"`

	// Platform is a free-form tag such as "web" or "mobile".
	Platform string `json:"platform"`

	// CreatedAt is the action timestamp.
	CreatedAt time.Time `json:"created_at"`
}
