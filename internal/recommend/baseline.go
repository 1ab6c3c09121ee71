// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"curator/internal/metrics"
	"curator/internal/models"
)

// BaselineScorer ranks the popularity-ranked candidate pool with a
// weighted blend of log-normalized popularity, average rating and the
// user's genre affinity profile. It has no trained state and is always
// ready.
type BaselineScorer struct {
	catalog        CatalogProvider
	candidateLimit int
}

// Blend weights. Popularity dominates so cold users still get a sane
// list; the genre term only moves items for users with rated history.
const (
	weightPopularity = 0.55
	weightAvgRating  = 0.25
	weightGenreMatch = 0.20

	maxAvgRating = 5.0
)

// NewBaselineScorer creates a baseline scorer drawing at most
// candidateLimit candidates per request.
func NewBaselineScorer(catalog CatalogProvider, candidateLimit int) *BaselineScorer {
	return &BaselineScorer{catalog: catalog, candidateLimit: candidateLimit}
}

// Name implements Scorer.
func (s *BaselineScorer) Name() string { return models.EngineBaseline }

// Ready implements Scorer. The baseline needs no model.
func (s *BaselineScorer) Ready() bool { return true }

// Score implements Scorer.
func (s *BaselineScorer) Score(ctx context.Context, userID, k int) ([]models.ScoredItem, error) {
	start := time.Now()
	defer func() {
		metrics.ScoreDuration.WithLabelValues(models.EngineBaseline).Observe(time.Since(start).Seconds())
	}()

	seen, err := s.catalog.SeenItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seen items: %w", err)
	}

	affinity, err := genreAffinity(ctx, s.catalog, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build genre affinity: %w", err)
	}

	candidates, err := s.catalog.Candidates(ctx, s.candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	// Log-normalize popularity against the pool maximum so the head of
	// the distribution does not drown everything else.
	maxCount := 1.0
	for _, c := range candidates {
		if c.Interactions > maxCount {
			maxCount = c.Interactions
		}
	}

	scored := make([]models.ScoredItem, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.ItemID]; ok {
			continue
		}

		popularityScore := math.Log1p(c.Interactions) / math.Log1p(maxCount)
		avgRatingScore := clamp01(c.AvgRating / maxAvgRating)

		genreScore := 0.0
		if len(affinity) > 0 {
			for _, g := range c.Genres {
				genreScore += affinity[g]
			}
			genreScore = clamp01(genreScore)
		}

		scored = append(scored, models.ScoredItem{
			ItemID: c.ItemID,
			Title:  c.Title,
			Genres: c.Genres,
			Score: weightPopularity*popularityScore +
				weightAvgRating*avgRatingScore +
				weightGenreMatch*genreScore,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// genreAffinity builds a normalized genre weight map from the user's
// positively rated items. A rating of 4 contributes weight 1, a rating
// of 5 contributes 2. Users without positive ratings get an empty map.
func genreAffinity(ctx context.Context, catalog CatalogProvider, userID int) (map[string]float64, error) {
	rated, err := catalog.RatedItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]float64)
	total := 0.0
	for _, r := range rated {
		w := float64(r.Rating - 3)
		for _, g := range r.Genres {
			raw[g] += w
			total += w
		}
	}
	if total <= 0 {
		return nil, nil
	}
	for g := range raw {
		raw[g] /= total
	}
	return raw, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
