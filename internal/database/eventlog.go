// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// eventlog.go - append-only storage for impressions and engagements.
//
// Both tables are insert-only: records are created exactly once, never
// updated, and reads always see either a complete record or none at all.
// Scans are inclusive on both ends of the time range.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"curator/internal/metrics"
	"curator/internal/models"
)

// ImpressionFilter selects impressions for a scan. Start and End are
// inclusive. Engine and UserID are optional; zero values match all.
type ImpressionFilter struct {
	Start  time.Time
	End    time.Time
	Engine string
	UserID int
}

// EngagementFilter selects engagements for a scan. Start and End are
// inclusive. UserID, Platform and ActionTypes are optional; zero values
// match all.
type EngagementFilter struct {
	Start       time.Time
	End         time.Time
	UserID      int
	Platform    string
	ActionTypes []string
}

// RecordImpression appends one impression and returns its recset_id.
// A fresh UUID and the current timestamp are generated when unset.
// Fails only when storage is unavailable.
func (db *DB) RecordImpression(ctx context.Context, imp *models.Impression) (string, error) {
	if imp.RecsetID == "" {
		imp.RecsetID = uuid.NewString()
	}
	if imp.CreatedAt.IsZero() {
		imp.CreatedAt = time.Now().UTC()
	}
	if imp.Platform == "" {
		imp.Platform = "web"
	}

	itemIDs, err := json.Marshal(imp.ItemIDs)
	if err != nil {
		return "", fmt.Errorf("failed to encode item_ids: %w", err)
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO rec_impressions (recset_id, user_id, engine, platform, k, item_ids, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		imp.RecsetID, imp.UserID, imp.Engine, imp.Platform, imp.K, string(itemIDs), imp.CreatedAt,
	)
	metrics.DBQueryDuration.WithLabelValues("insert", "rec_impressions").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("insert", "rec_impressions").Inc()
		return "", fmt.Errorf("%w: failed to insert impression: %v", models.ErrUnavailable, err)
	}

	metrics.ImpressionsRecorded.WithLabelValues(imp.Engine).Inc()
	return imp.RecsetID, nil
}

// RecordEngagement appends one engagement.
//
// The referenced impression must exist (ErrNotFound otherwise — an
// orphaned engagement can never be attributed, so it is rejected rather
// than silently inserted) and the engagement's user must match the
// impression's user (ErrInvalidArgument).
func (db *DB) RecordEngagement(ctx context.Context, eng *models.Engagement) error {
	var impUserID int
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id FROM rec_impressions WHERE recset_id = ?`, eng.RecsetID,
	).Scan(&impUserID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: impression %s", models.ErrNotFound, eng.RecsetID)
	}
	if err != nil {
		return fmt.Errorf("%w: failed to look up impression: %v", models.ErrUnavailable, err)
	}
	if impUserID != eng.UserID {
		return fmt.Errorf("%w: engagement user %d does not match impression user %d",
			models.ErrInvalidArgument, eng.UserID, impUserID)
	}

	if eng.CreatedAt.IsZero() {
		eng.CreatedAt = time.Now().UTC()
	}
	if eng.Platform == "" {
		eng.Platform = "web"
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO engagements (recset_id, user_id, item_id, action_type, platform, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		eng.RecsetID, eng.UserID, eng.ItemID, eng.ActionType, eng.Platform, eng.CreatedAt,
	)
	metrics.DBQueryDuration.WithLabelValues("insert", "engagements").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("insert", "engagements").Inc()
		return fmt.Errorf("%w: failed to insert engagement: %v", models.ErrUnavailable, err)
	}

	metrics.EngagementsRecorded.Inc()
	return nil
}

// ScanImpressions returns impressions with created_at in [Start, End],
// ordered by created_at, optionally filtered by engine and user.
func (db *DB) ScanImpressions(ctx context.Context, filter ImpressionFilter) ([]models.Impression, error) {
	where := []string{"created_at >= ?", "created_at <= ?"}
	args := []interface{}{filter.Start, filter.End}

	if filter.Engine != "" {
		where = append(where, "engine = ?")
		args = append(args, filter.Engine)
	}
	if filter.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}

	query := fmt.Sprintf(`
		SELECT recset_id, user_id, engine, platform, k, item_ids, created_at
		FROM rec_impressions
		WHERE %s
		ORDER BY created_at`, strings.Join(where, " AND "))

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.DBQueryDuration.WithLabelValues("scan", "rec_impressions").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("scan", "rec_impressions").Inc()
		return nil, fmt.Errorf("%w: failed to scan impressions: %v", models.ErrUnavailable, err)
	}
	defer rows.Close()

	var impressions []models.Impression
	for rows.Next() {
		var imp models.Impression
		var itemIDs string
		if err := rows.Scan(&imp.RecsetID, &imp.UserID, &imp.Engine, &imp.Platform,
			&imp.K, &itemIDs, &imp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan impression row: %w", err)
		}
		if err := json.Unmarshal([]byte(itemIDs), &imp.ItemIDs); err != nil {
			return nil, fmt.Errorf("failed to decode item_ids for %s: %w", imp.RecsetID, err)
		}
		impressions = append(impressions, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating impressions: %w", err)
	}
	return impressions, nil
}

// ScanEngagements returns engagements with created_at in [Start, End],
// ordered by created_at, with optional user, platform and multi-value
// action type filters.
func (db *DB) ScanEngagements(ctx context.Context, filter EngagementFilter) ([]models.Engagement, error) {
	where := []string{"created_at >= ?", "created_at <= ?"}
	args := []interface{}{filter.Start, filter.End}

	if filter.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Platform != "" {
		where = append(where, "platform = ?")
		args = append(args, filter.Platform)
	}
	if len(filter.ActionTypes) > 0 {
		placeholders := make([]string, len(filter.ActionTypes))
		for i, action := range filter.ActionTypes {
			placeholders[i] = "?"
			args = append(args, action)
		}
		where = append(where, fmt.Sprintf("action_type IN (%s)", strings.Join(placeholders, ", ")))
	}

	query := fmt.Sprintf(`
		SELECT recset_id, user_id, item_id, action_type, platform, created_at
		FROM engagements
		WHERE %s
		ORDER BY created_at`, strings.Join(where, " AND "))

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.DBQueryDuration.WithLabelValues("scan", "engagements").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("scan", "engagements").Inc()
		return nil, fmt.Errorf("%w: failed to scan engagements: %v", models.ErrUnavailable, err)
	}
	defer rows.Close()

	var engagements []models.Engagement
	for rows.Next() {
		var eng models.Engagement
		if err := rows.Scan(&eng.RecsetID, &eng.UserID, &eng.ItemID, &eng.ActionType,
			&eng.Platform, &eng.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan engagement row: %w", err)
		}
		engagements = append(engagements, eng)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating engagements: %w", err)
	}
	return engagements, nil
}

// GetImpression returns a single impression by recset_id.
func (db *DB) GetImpression(ctx context.Context, recsetID string) (*models.Impression, error) {
	var imp models.Impression
	var itemIDs string
	err := db.conn.QueryRowContext(ctx,
		`SELECT recset_id, user_id, engine, platform, k, item_ids, created_at
		 FROM rec_impressions WHERE recset_id = ?`, recsetID,
	).Scan(&imp.RecsetID, &imp.UserID, &imp.Engine, &imp.Platform, &imp.K, &itemIDs, &imp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: impression %s", models.ErrNotFound, recsetID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get impression: %v", models.ErrUnavailable, err)
	}
	if err := json.Unmarshal([]byte(itemIDs), &imp.ItemIDs); err != nil {
		return nil, fmt.Errorf("failed to decode item_ids for %s: %w", recsetID, err)
	}
	return &imp, nil
}
