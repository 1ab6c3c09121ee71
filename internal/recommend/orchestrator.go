// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package recommend

import (
	"context"
	"fmt"

	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/metrics"
	"curator/internal/models"
)

// Selector names the engine a caller requests: a concrete scorer or
// auto routing.
type Selector string

const (
	SelectorBaseline Selector = models.EngineBaseline
	SelectorNeural   Selector = models.EngineNeural
	SelectorAuto     Selector = "auto"
)

// ParseSelector converts a request string into a Selector. The empty
// string defaults to auto.
func ParseSelector(s string) (Selector, error) {
	switch s {
	case "", string(SelectorAuto):
		return SelectorAuto, nil
	case string(SelectorBaseline):
		return SelectorBaseline, nil
	case string(SelectorNeural):
		return SelectorNeural, nil
	default:
		return "", fmt.Errorf("%w: unknown engine %q", models.ErrInvalidArgument, s)
	}
}

// Result is one served recommendation list together with the identity
// of its logged impression.
type Result struct {
	RecsetID string
	Engine   string
	K        int
	Items    []models.ScoredItem
}

// Orchestrator routes a request to a scorer and appends the impression
// to the event log. Serving and logging are a unit: every successful
// call leaves exactly one impression behind, carrying the engine that
// actually produced the list.
type Orchestrator struct {
	baseline Scorer
	neural   Scorer
	catalog  CatalogProvider
	log      ImpressionWriter
	cfg      *config.RecommendConfig
}

// NewOrchestrator wires the two scorers to the catalog and event log.
func NewOrchestrator(baseline, neural Scorer, catalog CatalogProvider, log ImpressionWriter, cfg *config.RecommendConfig) *Orchestrator {
	return &Orchestrator{baseline: baseline, neural: neural, catalog: catalog, log: log, cfg: cfg}
}

// Recommend serves a top-k list for userID using the selected engine
// and records the impression.
//
// k must be positive (ErrInvalidArgument) and is clamped to the
// configured maximum. Unknown users are rejected with ErrNotFound
// before any scoring happens. The auto selector routes to the neural
// scorer only when it is ready and the user has enough history;
// otherwise, and whenever the neural scorer returns nothing for an
// auto request, the baseline serves instead.
func (o *Orchestrator) Recommend(ctx context.Context, userID, k int, selector Selector, platform string) (*Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", models.ErrInvalidArgument, k)
	}
	if k > o.cfg.MaxK {
		k = o.cfg.MaxK
	}

	exists, err := o.catalog.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: user %d", models.ErrNotFound, userID)
	}

	scorer, err := o.pick(ctx, userID, selector)
	if err != nil {
		return nil, err
	}

	items, err := scorer.Score(ctx, userID, k)
	if err != nil {
		return nil, fmt.Errorf("%s scoring failed: %w", scorer.Name(), err)
	}

	// The neural scorer legitimately returns nothing for users outside
	// the model's index range. Under auto that is a routing miss, not an
	// answer.
	if selector == SelectorAuto && scorer.Name() == models.EngineNeural && len(items) == 0 {
		metrics.AutoFallbacks.Inc()
		scorer = o.baseline
		items, err = scorer.Score(ctx, userID, k)
		if err != nil {
			return nil, fmt.Errorf("baseline scoring failed: %w", err)
		}
	}

	itemIDs := make([]int, len(items))
	for i, it := range items {
		itemIDs[i] = it.ItemID
	}

	imp := &models.Impression{
		UserID:   userID,
		Engine:   scorer.Name(),
		Platform: platform,
		K:        k,
		ItemIDs:  itemIDs,
	}
	recsetID, err := o.log.RecordImpression(ctx, imp)
	if err != nil {
		return nil, fmt.Errorf("failed to record impression: %w", err)
	}

	logging.Debug().
		Str("recset_id", recsetID).
		Int("user_id", userID).
		Str("engine", scorer.Name()).
		Int("k", k).
		Int("served", len(items)).
		Msg("Recommendation served")

	return &Result{RecsetID: recsetID, Engine: scorer.Name(), K: k, Items: items}, nil
}

// pick resolves the selector to a concrete scorer.
func (o *Orchestrator) pick(ctx context.Context, userID int, selector Selector) (Scorer, error) {
	switch selector {
	case SelectorBaseline:
		return o.baseline, nil
	case SelectorNeural:
		if !o.neural.Ready() {
			return nil, fmt.Errorf("%w: neural engine has no loaded model", models.ErrUnavailable)
		}
		return o.neural, nil
	case SelectorAuto:
		if !o.neural.Ready() {
			metrics.AutoFallbacks.Inc()
			return o.baseline, nil
		}
		count, err := o.catalog.InteractionCount(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count interactions: %w", err)
		}
		if count < o.cfg.MinHistory {
			metrics.AutoFallbacks.Inc()
			return o.baseline, nil
		}
		return o.neural, nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", models.ErrInvalidArgument, selector)
	}
}
