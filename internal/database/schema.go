// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the catalog and event-log tables.
//
// Layout mirrors the reference direction of the data: engagements
// reference impressions, impressions and interactions reference users
// and items. Bulk resets must delete in that order (see ResetEvents and
// ResetAll).
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// tableCreationQueries returns the table and index creation statements.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			age INTEGER,
			gender TEXT,
			occupation TEXT,
			zip_code TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			release_date TEXT,
			genres TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		// Historical user-item events from the seeded dataset. Feeds the
		// scorers (candidate exclusion, popularity, genre affinity) and
		// the auto selector's history threshold.
		`CREATE TABLE IF NOT EXISTS interactions (
			user_id INTEGER NOT NULL,
			item_id INTEGER NOT NULL,
			event_type TEXT NOT NULL,
			rating INTEGER,
			weight DOUBLE,
			platform TEXT NOT NULL DEFAULT 'web',
			ts TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_item ON interactions(item_id)`,

		// Append-only impression log. item_ids holds the ranked list as
		// a JSON array; rank order is significant and immutable.
		`CREATE TABLE IF NOT EXISTS rec_impressions (
			recset_id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			engine TEXT NOT NULL,
			platform TEXT NOT NULL DEFAULT 'web',
			k INTEGER NOT NULL,
			item_ids TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rec_impressions_created ON rec_impressions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_rec_impressions_user_created ON rec_impressions(user_id, created_at)`,

		// Append-only engagement log. recset_id must reference a stored
		// impression; RecordEngagement enforces this before inserting.
		`CREATE TABLE IF NOT EXISTS engagements (
			recset_id TEXT NOT NULL,
			user_id INTEGER NOT NULL,
			item_id INTEGER NOT NULL,
			action_type TEXT NOT NULL,
			platform TEXT NOT NULL DEFAULT 'web',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_engagements_recset ON engagements(recset_id)`,
		`CREATE INDEX IF NOT EXISTS idx_engagements_user_created ON engagements(user_id, created_at)`,
	}
}
