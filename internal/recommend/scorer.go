// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package recommend provides the scorer abstraction, the two concrete
// scorers (baseline heuristic and neural factorization inference), and
// the orchestrator that selects an engine, serves a list and records the
// impression.
//
// The package depends on the storage layer only through the
// CatalogProvider and ImpressionWriter interfaces so the database
// package can implement them without a circular import.
package recommend

import (
	"context"

	"curator/internal/models"
)

// Scorer is one interchangeable ranking strategy.
//
// Score returns at most k items in rank order, excluding items the user
// has already interacted with in the training history. Repeated calls
// may legitimately return different orders; callers must not assume
// reproducibility.
type Scorer interface {
	// Name is the engine tag recorded on impressions this scorer serves.
	Name() string

	// Ready reports whether the scorer can serve. The baseline scorer is
	// always ready; the neural scorer is ready only with a loaded model.
	Ready() bool

	Score(ctx context.Context, userID, k int) ([]models.ScoredItem, error)
}

// Candidate is one entry of the popularity-ranked candidate pool the
// scorers draw from.
type Candidate struct {
	ItemID       int
	Title        string
	Genres       []string
	Interactions float64
	AvgRating    float64
}

// RatedItem is one positively rated historical item, used to build a
// user's genre affinity profile.
type RatedItem struct {
	Genres []string
	Rating int
}

// CatalogProvider supplies the training-history data scorers and the
// orchestrator need. Implemented by the database package.
type CatalogProvider interface {
	// UserExists reports whether the user is in the catalog.
	UserExists(ctx context.Context, userID int) (bool, error)

	// InteractionCount returns the user's total interaction count.
	InteractionCount(ctx context.Context, userID int) (int, error)

	// SeenItems returns the set of item IDs the user has interacted with.
	SeenItems(ctx context.Context, userID int) (map[int]struct{}, error)

	// Candidates returns the top items by interaction count with their
	// aggregate stats, at most limit entries.
	Candidates(ctx context.Context, limit int) ([]Candidate, error)

	// RatedItems returns the user's items rated 4 or higher.
	RatedItems(ctx context.Context, userID int) ([]RatedItem, error)
}

// ImpressionWriter appends impressions to the event log. Implemented by
// the database package.
type ImpressionWriter interface {
	RecordImpression(ctx context.Context, imp *models.Impression) (string, error)
}
