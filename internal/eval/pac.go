// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package eval computes Precision at Curation (PaC) over the event log.
//
// PaC asks: of the items we served, how many did the user actually
// engage with inside an attribution window? Attribution joins on the
// user and the window, not on the recset_id an engagement happens to
// carry, so engagements driven by a list the client rendered from an
// earlier impression still credit every overlapping impression by the
// same user.
package eval

import (
	"context"
	"fmt"
	"time"

	"curator/internal/database"
	"curator/internal/logging"
	"curator/internal/metrics"
	"curator/internal/models"
)

// EventSource is the slice of the event log the evaluator reads.
type EventSource interface {
	ScanImpressions(ctx context.Context, filter database.ImpressionFilter) ([]models.Impression, error)
	ScanEngagements(ctx context.Context, filter database.EngagementFilter) ([]models.Engagement, error)
}

// Params selects the impressions to evaluate and shapes the join.
// Start is required. End defaults to the evaluation time. Engine,
// Platform and ActionTypes are optional filters; Platform and
// ActionTypes restrict which engagements may count as hits.
type Params struct {
	Start       time.Time
	End         time.Time
	K           int
	WindowHours int
	Engine      string
	Platform    string
	ActionTypes []string
}

// Evaluator computes PaC reports against an event source.
type Evaluator struct {
	source EventSource
	maxWin int
}

// NewEvaluator creates an Evaluator. maxWindowHours bounds the
// attribution window a single evaluation may request.
func NewEvaluator(source EventSource, maxWindowHours int) *Evaluator {
	return &Evaluator{source: source, maxWin: maxWindowHours}
}

// Evaluate computes a PaC report for the impressions in [Start, End].
//
// Per impression the evaluated list is the first min(k, len) items. A
// hit is a distinct recommended item the same user engaged with inside
// [CreatedAt, CreatedAt+window], both ends inclusive; duplicate
// engagements with one item count once. Impressions with no qualifying
// engagements contribute a ratio of zero, they are never excluded. An
// impression with an empty evaluated list contributes zero to the mean
// and nothing to the pooled counts.
func (e *Evaluator) Evaluate(ctx context.Context, p Params) (*models.PaCReport, error) {
	if p.Start.IsZero() {
		return nil, fmt.Errorf("%w: start is required", models.ErrInvalidArgument)
	}
	if p.End.IsZero() {
		p.End = time.Now().UTC()
	}
	if p.End.Before(p.Start) {
		return nil, fmt.Errorf("%w: end %s precedes start %s",
			models.ErrInvalidArgument, p.End.Format(time.RFC3339), p.Start.Format(time.RFC3339))
	}
	if p.K <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", models.ErrInvalidArgument, p.K)
	}
	if p.WindowHours <= 0 {
		return nil, fmt.Errorf("%w: window_hours must be positive, got %d", models.ErrInvalidArgument, p.WindowHours)
	}
	if e.maxWin > 0 && p.WindowHours > e.maxWin {
		return nil, fmt.Errorf("%w: window_hours %d exceeds maximum %d", models.ErrInvalidArgument, p.WindowHours, e.maxWin)
	}

	started := time.Now()
	defer func() {
		metrics.PaCEvaluations.Inc()
		metrics.PaCEvaluationDuration.Observe(time.Since(started).Seconds())
	}()

	window := time.Duration(p.WindowHours) * time.Hour

	impressions, err := e.source.ScanImpressions(ctx, database.ImpressionFilter{
		Start:  p.Start,
		End:    p.End,
		Engine: p.Engine,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan impressions: %w", err)
	}

	report := &models.PaCReport{
		Start:       p.Start,
		End:         p.End,
		K:           p.K,
		WindowHours: p.WindowHours,
		Impressions: len(impressions),
	}
	if len(impressions) == 0 {
		return report, nil
	}

	// One engagement scan covers every impression's window: the latest
	// window closes at End+window. Bucketing by user makes the per
	// impression join a walk over that user's engagements only.
	engagements, err := e.source.ScanEngagements(ctx, database.EngagementFilter{
		Start:       p.Start,
		End:         p.End.Add(window),
		Platform:    p.Platform,
		ActionTypes: p.ActionTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan engagements: %w", err)
	}

	byUser := make(map[int][]models.Engagement)
	for _, eng := range engagements {
		byUser[eng.UserID] = append(byUser[eng.UserID], eng)
	}

	ratioSum := 0.0
	for _, imp := range impressions {
		top := imp.ItemIDs
		if len(top) > p.K {
			top = top[:p.K]
		}
		if len(top) == 0 {
			continue
		}
		report.TotalRecommended += len(top)

		topSet := make(map[int]struct{}, len(top))
		for _, id := range top {
			topSet[id] = struct{}{}
		}

		windowEnd := imp.CreatedAt.Add(window)
		hits := make(map[int]struct{})
		for _, eng := range byUser[imp.UserID] {
			if eng.CreatedAt.Before(imp.CreatedAt) || eng.CreatedAt.After(windowEnd) {
				continue
			}
			if _, ok := topSet[eng.ItemID]; ok {
				hits[eng.ItemID] = struct{}{}
			}
		}

		report.TotalHits += len(hits)
		ratioSum += float64(len(hits)) / float64(len(top))
	}

	mean := ratioSum / float64(report.Impressions)
	report.PaCMean = &mean
	if report.TotalRecommended > 0 {
		micro := float64(report.TotalHits) / float64(report.TotalRecommended)
		report.PaCMicro = &micro
	}

	logging.Debug().
		Time("start", p.Start).
		Time("end", p.End).
		Int("k", p.K).
		Int("window_hours", p.WindowHours).
		Int("impressions", report.Impressions).
		Int("hits", report.TotalHits).
		Msg("PaC evaluated")
	return report, nil
}
