// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// catalog.go - seeded catalog reads backing the scorers and the
// catalog API surface.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"curator/internal/metrics"
	"curator/internal/models"
	"curator/internal/recommend"
)

// parseGenres splits a stored comma-joined genre list.
func parseGenres(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

// UserExists implements recommend.CatalogProvider.
func (db *DB) UserExists(ctx context.Context, userID int) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE id = ?`, userID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: failed to check user: %v", models.ErrUnavailable, err)
	}
	return true, nil
}

// InteractionCount implements recommend.CatalogProvider.
func (db *DB) InteractionCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interactions WHERE user_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count interactions: %v", models.ErrUnavailable, err)
	}
	return count, nil
}

// SeenItems implements recommend.CatalogProvider.
func (db *DB) SeenItems(ctx context.Context, userID int) (map[int]struct{}, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT item_id FROM interactions WHERE user_id = ?`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load seen items: %v", models.ErrUnavailable, err)
	}
	defer rows.Close()

	seen := make(map[int]struct{})
	for rows.Next() {
		var itemID int
		if err := rows.Scan(&itemID); err != nil {
			return nil, fmt.Errorf("failed to scan seen item row: %w", err)
		}
		seen[itemID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seen items: %w", err)
	}
	return seen, nil
}

// Candidates implements recommend.CatalogProvider: the top items by
// interaction count with their aggregate stats. Unrated items carry an
// average rating of zero.
func (db *DB) Candidates(ctx context.Context, limit int) ([]recommend.Candidate, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT
		  i.id,
		  i.title,
		  i.genres,
		  COUNT(x.user_id) AS interaction_count,
		  COALESCE(AVG(CASE WHEN x.rating IS NOT NULL THEN x.rating END), 0) AS avg_rating
		FROM items i
		LEFT JOIN interactions x ON x.item_id = i.id
		GROUP BY i.id, i.title, i.genres
		ORDER BY interaction_count DESC
		LIMIT ?`, limit)
	metrics.DBQueryDuration.WithLabelValues("scan", "items").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues("scan", "items").Inc()
		return nil, fmt.Errorf("%w: failed to load candidates: %v", models.ErrUnavailable, err)
	}
	defer rows.Close()

	var candidates []recommend.Candidate
	for rows.Next() {
		var c recommend.Candidate
		var genres string
		if err := rows.Scan(&c.ItemID, &c.Title, &genres, &c.Interactions, &c.AvgRating); err != nil {
			return nil, fmt.Errorf("failed to scan candidate row: %w", err)
		}
		c.Genres = parseGenres(genres)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}
	return candidates, nil
}

// RatedItems implements recommend.CatalogProvider: the user's items
// rated 4 or higher, with their genres.
func (db *DB) RatedItems(ctx context.Context, userID int) ([]recommend.RatedItem, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT i.genres, x.rating
		FROM interactions x
		JOIN items i ON i.id = x.item_id
		WHERE x.user_id = ? AND x.rating IS NOT NULL AND x.rating >= 4`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load rated items: %v", models.ErrUnavailable, err)
	}
	defer rows.Close()

	var rated []recommend.RatedItem
	for rows.Next() {
		var genres string
		var r recommend.RatedItem
		if err := rows.Scan(&genres, &r.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan rated item row: %w", err)
		}
		r.Genres = parseGenres(genres)
		rated = append(rated, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rated items: %w", err)
	}
	return rated, nil
}

// ListUsers returns a page of catalog users ordered by id.
func (db *DB) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, age, gender, occupation, zip_code, created_at FROM users ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list users: %v", models.ErrUnavailable, err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var age sql.NullInt64
		var gender, occupation, zip sql.NullString
		if err := rows.Scan(&u.ID, &age, &gender, &occupation, &zip, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		u.Age = int(age.Int64)
		u.Gender = gender.String
		u.Occupation = occupation.String
		u.ZipCode = zip.String
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// ListItems returns a page of catalog items ordered by id.
func (db *DB) ListItems(ctx context.Context, limit, offset int) ([]models.Item, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, release_date, genres, created_at FROM items ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list items: %v", models.ErrUnavailable, err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var it models.Item
		var release, genres sql.NullString
		if err := rows.Scan(&it.ID, &it.Title, &release, &genres, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		it.ReleaseDate = release.String
		it.Genres = parseGenres(genres.String)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// GetItem returns a single catalog item by id.
func (db *DB) GetItem(ctx context.Context, itemID int) (*models.Item, error) {
	var it models.Item
	var release, genres sql.NullString
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, release_date, genres, created_at FROM items WHERE id = ?`, itemID,
	).Scan(&it.ID, &it.Title, &release, &genres, &it.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: item %d", models.ErrNotFound, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get item: %v", models.ErrUnavailable, err)
	}
	it.ReleaseDate = release.String
	it.Genres = parseGenres(genres.String)
	return &it, nil
}

// ListInteractions returns a page of a user's interactions, newest
// first. The user must exist (ErrNotFound otherwise).
func (db *DB) ListInteractions(ctx context.Context, userID, limit, offset int) ([]models.Interaction, error) {
	exists, err := db.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: user %d", models.ErrNotFound, userID)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, item_id, event_type, rating, weight, platform, ts
		FROM interactions
		WHERE user_id = ?
		ORDER BY ts DESC
		LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list interactions: %v", models.ErrUnavailable, err)
	}
	defer rows.Close()

	var interactions []models.Interaction
	for rows.Next() {
		var x models.Interaction
		var rating sql.NullInt64
		var weight sql.NullFloat64
		if err := rows.Scan(&x.UserID, &x.ItemID, &x.EventType, &rating, &weight, &x.Platform, &x.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction row: %w", err)
		}
		if rating.Valid {
			r := int(rating.Int64)
			x.Rating = &r
		}
		x.Weight = weight.Float64
		interactions = append(interactions, x)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interactions: %w", err)
	}
	return interactions, nil
}

// Counts returns the catalog and event-log row counts for the health
// and seed endpoints.
func (db *DB) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, 5)
	for _, table := range []string{"users", "items", "interactions", "rec_impressions", "engagements"} {
		var n int
		// Table names come from the fixed list above, never from input.
		if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("%w: failed to count %s: %v", models.ErrUnavailable, table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
