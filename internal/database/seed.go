// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// seed.go - catalog seeding from a MovieLens-100k dataset directory and
// a small built-in demo dataset for development.
package database

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"curator/internal/logging"
	"curator/internal/models"
)

// SeedResult reports what a seeding run loaded.
type SeedResult struct {
	Users        int `json:"users"`
	Items        int `json:"items"`
	Interactions int `json:"interactions"`
}

// latin1 converts a Latin-1 encoded line to a UTF-8 string. The
// MovieLens files are Latin-1; titles with accented characters would
// otherwise come out mangled.
func latin1(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

// readLines streams a Latin-1 file line by line.
func readLines(path string, fn func(line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(latin1(scanner.Bytes()))
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// loadGenreOrder reads u.genre (name|id) into a slice where the index
// is the genre id, so item genre flags resolve positionally.
func loadGenreOrder(path string) ([]string, error) {
	byID := make(map[int]string)
	maxID := -1
	err := readLines(path, func(line string) error {
		name, idStr, ok := strings.Cut(line, "|")
		if !ok {
			return fmt.Errorf("%w: malformed genre line %q", models.ErrInvalidArgument, line)
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return fmt.Errorf("%w: malformed genre id %q", models.ErrInvalidArgument, idStr)
		}
		byID[id] = name
		if id > maxID {
			maxID = id
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order := make([]string, maxID+1)
	for id, name := range byID {
		order[id] = name
	}
	return order, nil
}

// SeedFromDir loads a MovieLens-100k dataset (u.genre, u.user, u.item,
// u.data) from dir into the catalog tables. Users and items are
// upserted so reseeding is idempotent; interactions append.
func (db *DB) SeedFromDir(ctx context.Context, dir, platform string) (*SeedResult, error) {
	if platform == "" {
		platform = "web"
	}

	paths := map[string]string{
		"u.genre": filepath.Join(dir, "u.genre"),
		"u.user":  filepath.Join(dir, "u.user"),
		"u.item":  filepath.Join(dir, "u.item"),
		"u.data":  filepath.Join(dir, "u.data"),
	}
	for name, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("%w: missing dataset file %s", models.ErrNotFound, name)
		}
	}

	genreOrder, err := loadGenreOrder(paths["u.genre"])
	if err != nil {
		return nil, fmt.Errorf("failed to load u.genre: %w", err)
	}

	result := &SeedResult{}
	start := time.Now()

	if result.Users, err = db.seedUsers(ctx, paths["u.user"]); err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}
	if result.Items, err = db.seedItems(ctx, paths["u.item"], genreOrder); err != nil {
		return nil, fmt.Errorf("failed to seed items: %w", err)
	}
	if result.Interactions, err = db.seedInteractions(ctx, paths["u.data"], platform); err != nil {
		return nil, fmt.Errorf("failed to seed interactions: %w", err)
	}

	logging.Info().
		Str("dir", dir).
		Int("users", result.Users).
		Int("items", result.Items).
		Int("interactions", result.Interactions).
		Dur("elapsed", time.Since(start)).
		Msg("Dataset seeded")
	return result, nil
}

// seedUsers loads u.user: id|age|gender|occupation|zip.
func (db *DB) seedUsers(ctx context.Context, path string) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin transaction: %v", models.ErrUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO users (id, age, gender, occupation, zip_code) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare user insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	err = readLines(path, func(line string) error {
		parts := strings.Split(line, "|")
		if len(parts) < 5 {
			return nil
		}
		userID, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil
		}
		age, _ := strconv.Atoi(parts[1])
		if _, err := stmt.ExecContext(ctx, userID, age, parts[2], parts[3], parts[4]); err != nil {
			return fmt.Errorf("failed to insert user %d: %w", userID, err)
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit users: %v", models.ErrUnavailable, err)
	}
	return count, nil
}

// seedItems loads u.item: id|title|release_date|video_date|imdb_url|
// genre flags. A flag at position n marks the genre with id n; the
// "unknown" genre is dropped.
func (db *DB) seedItems(ctx context.Context, path string, genreOrder []string) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin transaction: %v", models.ErrUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO items (id, title, release_date, genres) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	err = readLines(path, func(line string) error {
		parts := strings.Split(line, "|")
		if len(parts) < 5 {
			return nil
		}
		itemID, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil
		}
		title := parts[1]
		releaseDate := parts[2]

		var genres []string
		for i, flag := range parts[5:] {
			if i >= len(genreOrder) {
				break
			}
			if flag == "1" && !strings.EqualFold(genreOrder[i], "unknown") {
				genres = append(genres, genreOrder[i])
			}
		}

		if _, err := stmt.ExecContext(ctx, itemID, title, releaseDate, strings.Join(genres, ",")); err != nil {
			return fmt.Errorf("failed to insert item %d: %w", itemID, err)
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit items: %v", models.ErrUnavailable, err)
	}
	return count, nil
}

// seedInteractions loads u.data: whitespace-separated user, item,
// rating, unix timestamp. Every row is a "rating" event with weight
// equal to the rating.
func (db *DB) seedInteractions(ctx context.Context, path, platform string) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin transaction: %v", models.ErrUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO interactions (user_id, item_id, event_type, rating, weight, platform, ts)
		VALUES (?, ?, 'rating', ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare interaction insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	err = readLines(path, func(line string) error {
		parts := strings.Fields(line)
		if len(parts) < 4 {
			return nil
		}
		userID, err1 := strconv.Atoi(parts[0])
		itemID, err2 := strconv.Atoi(parts[1])
		rating, err3 := strconv.Atoi(parts[2])
		ts, err4 := strconv.ParseInt(parts[3], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil
		}
		if _, err := stmt.ExecContext(ctx, userID, itemID, rating, float64(rating), platform,
			time.Unix(ts, 0).UTC()); err != nil {
			return fmt.Errorf("failed to insert interaction: %w", err)
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit interactions: %v", models.ErrUnavailable, err)
	}
	return count, nil
}

// demoItems is a tiny self-contained catalog for development and tests
// when no dataset directory is mounted.
var demoItems = []struct {
	id     int
	title  string
	genres string
}{
	{1, "Station Nine", "Sci-Fi,Drama"},
	{2, "The Long Meadow", "Drama,Romance"},
	{3, "Cobalt Run", "Action,Thriller"},
	{4, "Paper Lanterns", "Drama"},
	{5, "Midnight Cartography", "Mystery,Thriller"},
	{6, "The Gull", "Comedy"},
	{7, "Northern Switch", "Action,Sci-Fi"},
	{8, "Quiet Harbor", "Romance"},
}

// SeedDemo loads a small built-in catalog: a handful of users, items
// and enough rating history for the scorers to produce non-trivial
// lists.
func (db *DB) SeedDemo(ctx context.Context) (*SeedResult, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", models.ErrUnavailable, err)
	}
	defer tx.Rollback()

	result := &SeedResult{}

	for userID := 1; userID <= 5; userID++ {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO users (id, age, gender, occupation, zip_code) VALUES (?, ?, '', '', '')`,
			userID, 20+userID*5); err != nil {
			return nil, fmt.Errorf("failed to insert demo user %d: %w", userID, err)
		}
		result.Users++
	}

	for _, it := range demoItems {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO items (id, title, release_date, genres) VALUES (?, ?, '', ?)`,
			it.id, it.title, it.genres); err != nil {
			return nil, fmt.Errorf("failed to insert demo item %d: %w", it.id, err)
		}
		result.Items++
	}

	// Deterministic rating pattern: user u rates item i with
	// 1 + (u*i mod 5), skipping every third pair so each user has
	// unseen items left to recommend.
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for userID := 1; userID <= 5; userID++ {
		for _, it := range demoItems {
			if (userID+it.id)%3 == 0 {
				continue
			}
			rating := 1 + (userID*it.id)%5
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO interactions (user_id, item_id, event_type, rating, weight, platform, ts)
				VALUES (?, ?, 'rating', ?, ?, 'web', ?)`,
				userID, it.id, rating, float64(rating),
				base.Add(time.Duration(result.Interactions)*time.Minute)); err != nil {
				return nil, fmt.Errorf("failed to insert demo interaction: %w", err)
			}
			result.Interactions++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit demo seed: %v", models.ErrUnavailable, err)
	}

	logging.Info().
		Int("users", result.Users).
		Int("items", result.Items).
		Int("interactions", result.Interactions).
		Msg("Demo catalog seeded")
	return result, nil
}

// ResetEvents deletes the event log, engagements before impressions,
// and leaves the catalog untouched.
func (db *DB) ResetEvents(ctx context.Context) error {
	for _, table := range []string{"engagements", "rec_impressions"} {
		if _, err := db.conn.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%w: failed to clear %s: %v", models.ErrUnavailable, table, err)
		}
	}
	logging.Info().Msg("Event log reset")
	return nil
}

// ResetAll deletes everything, children before parents.
func (db *DB) ResetAll(ctx context.Context) error {
	for _, table := range []string{"engagements", "rec_impressions", "interactions", "items", "users"} {
		if _, err := db.conn.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%w: failed to clear %s: %v", models.ErrUnavailable, table, err)
		}
	}
	logging.Info().Msg("All tables reset")
	return nil
}
