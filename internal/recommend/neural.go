// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package recommend

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"curator/internal/logging"
	"curator/internal/metrics"
	"curator/internal/models"
)

// FactorModel holds exported matrix-factorization weights. Training
// happens offline; the server only loads the exported JSON artifact and
// runs the forward pass.
//
// User and item indices are zero-based: catalog ID n maps to row n-1.
type FactorModel struct {
	NumUsers    int         `json:"num_users"`
	NumItems    int         `json:"num_items"`
	Dim         int         `json:"dim"`
	UserFactors [][]float64 `json:"user_factors"`
	ItemFactors [][]float64 `json:"item_factors"`
	UserBiases  []float64   `json:"user_biases"`
	ItemBiases  []float64   `json:"item_biases"`
	GlobalBias  float64     `json:"global_bias"`
}

// validate checks the weight matrices agree with the declared dims.
func (m *FactorModel) validate() error {
	if m.NumUsers <= 0 || m.NumItems <= 0 || m.Dim <= 0 {
		return fmt.Errorf("%w: model dims must be positive (users=%d items=%d dim=%d)",
			models.ErrInvalidArgument, m.NumUsers, m.NumItems, m.Dim)
	}
	if len(m.UserFactors) != m.NumUsers || len(m.ItemFactors) != m.NumItems {
		return fmt.Errorf("%w: factor matrix shape mismatch (%d user rows, %d item rows)",
			models.ErrInvalidArgument, len(m.UserFactors), len(m.ItemFactors))
	}
	for i, row := range m.UserFactors {
		if len(row) != m.Dim {
			return fmt.Errorf("%w: user factor row %d has dim %d, want %d",
				models.ErrInvalidArgument, i, len(row), m.Dim)
		}
	}
	for i, row := range m.ItemFactors {
		if len(row) != m.Dim {
			return fmt.Errorf("%w: item factor row %d has dim %d, want %d",
				models.ErrInvalidArgument, i, len(row), m.Dim)
		}
	}
	if len(m.UserBiases) != 0 && len(m.UserBiases) != m.NumUsers {
		return fmt.Errorf("%w: %d user biases for %d users", models.ErrInvalidArgument, len(m.UserBiases), m.NumUsers)
	}
	if len(m.ItemBiases) != 0 && len(m.ItemBiases) != m.NumItems {
		return fmt.Errorf("%w: %d item biases for %d items", models.ErrInvalidArgument, len(m.ItemBiases), m.NumItems)
	}
	return nil
}

// NeuralScorer scores the shared candidate pool with a loaded factor
// model. The score is sigmoid(u·v + b_u + b_v + b0), a probability of
// positive engagement. Without a loaded model the scorer reports not
// ready and the orchestrator routes around it.
type NeuralScorer struct {
	catalog        CatalogProvider
	candidateLimit int
	model          *FactorModel
}

// NewNeuralScorer creates a neural scorer. modelPath may be empty, in
// which case the scorer starts (and stays) not ready.
func NewNeuralScorer(catalog CatalogProvider, candidateLimit int, modelPath string) *NeuralScorer {
	s := &NeuralScorer{catalog: catalog, candidateLimit: candidateLimit}
	if modelPath == "" {
		return s
	}
	if err := s.LoadModel(modelPath); err != nil {
		logging.Warn().Err(err).Str("path", modelPath).
			Msg("Neural model unavailable, serving will fall back to baseline")
	}
	return s
}

// LoadModel reads and validates a factor model from path.
func (s *NeuralScorer) LoadModel(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model file: %w", err)
	}
	var m FactorModel
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to decode model file: %w", err)
	}
	if err := m.validate(); err != nil {
		return err
	}
	s.model = &m
	logging.Info().Str("path", path).
		Int("users", m.NumUsers).Int("items", m.NumItems).Int("dim", m.Dim).
		Msg("Neural model loaded")
	return nil
}

// Name implements Scorer.
func (s *NeuralScorer) Name() string { return models.EngineNeural }

// Ready implements Scorer.
func (s *NeuralScorer) Ready() bool { return s.model != nil }

// Score implements Scorer. A user outside the model's index range gets
// an empty list, not an error; the orchestrator treats that as a miss
// and falls back.
func (s *NeuralScorer) Score(ctx context.Context, userID, k int) ([]models.ScoredItem, error) {
	if s.model == nil {
		return nil, fmt.Errorf("%w: neural model not loaded", models.ErrUnavailable)
	}

	start := time.Now()
	defer func() {
		metrics.ScoreDuration.WithLabelValues(models.EngineNeural).Observe(time.Since(start).Seconds())
	}()

	userIdx := userID - 1
	if userIdx < 0 || userIdx >= s.model.NumUsers {
		return nil, nil
	}

	seen, err := s.catalog.SeenItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seen items: %w", err)
	}
	candidates, err := s.catalog.Candidates(ctx, s.candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	scored := make([]models.ScoredItem, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.ItemID]; ok {
			continue
		}
		itemIdx := c.ItemID - 1
		if itemIdx < 0 || itemIdx >= s.model.NumItems {
			continue
		}
		scored = append(scored, models.ScoredItem{
			ItemID: c.ItemID,
			Title:  c.Title,
			Genres: c.Genres,
			Score:  s.model.predict(userIdx, itemIdx),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (m *FactorModel) predict(userIdx, itemIdx int) float64 {
	u := m.UserFactors[userIdx]
	v := m.ItemFactors[itemIdx]
	logit := m.GlobalBias
	for d := 0; d < m.Dim; d++ {
		logit += u[d] * v[d]
	}
	if len(m.UserBiases) > 0 {
		logit += m.UserBiases[userIdx]
	}
	if len(m.ItemBiases) > 0 {
		logit += m.ItemBiases[itemIdx]
	}
	return 1.0 / (1.0 + math.Exp(-logit))
}
