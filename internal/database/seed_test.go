// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"curator/internal/models"
)

// writeMovieLensFixture lays out a minimal ml-100k style dataset.
func writeMovieLensFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"u.genre": "unknown|0\nAction|1\nComedy|2\nDrama|3\n",
		"u.user":  "1|24|M|technician|85711\n2|53|F|other|94043\n",
		"u.item": "1|Toy Story (1995)|01-Jan-1995||http://example/1|0|1|1|0\n" +
			"2|GoldenEye (1995)|01-Jan-1995||http://example/2|0|1|0|1\n" +
			"3|Mystery Entry|||http://example/3|1|0|0|0\n",
		"u.data": "1\t1\t5\t874965758\n1\t2\t3\t874965759\n2\t1\t4\t874965760\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write fixture %s: %v", name, err)
		}
	}
	return dir
}

func TestSeedFromDir(t *testing.T) {
	db := setupTestDB(t)
	dir := writeMovieLensFixture(t)

	result, err := db.SeedFromDir(context.Background(), dir, "web")
	if err != nil {
		t.Fatalf("SeedFromDir failed: %v", err)
	}
	if result.Users != 2 || result.Items != 3 || result.Interactions != 3 {
		t.Errorf("seed result = %+v, want 2 users, 3 items, 3 interactions", result)
	}

	item, err := db.GetItem(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if item.Title != "Toy Story (1995)" {
		t.Errorf("title = %q", item.Title)
	}
	// Flags 0|1|1|0 select genre ids 1 and 2.
	if len(item.Genres) != 2 || item.Genres[0] != "Action" || item.Genres[1] != "Comedy" {
		t.Errorf("genres = %v, want [Action Comedy]", item.Genres)
	}

	// Item 3 carries only the "unknown" flag, which is dropped.
	item3, err := db.GetItem(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if len(item3.Genres) != 0 {
		t.Errorf("unknown genre kept: %v", item3.Genres)
	}
}

func TestSeedFromDirIdempotentForCatalog(t *testing.T) {
	db := setupTestDB(t)
	dir := writeMovieLensFixture(t)

	for i := 0; i < 2; i++ {
		if _, err := db.SeedFromDir(context.Background(), dir, "web"); err != nil {
			t.Fatalf("SeedFromDir run %d failed: %v", i, err)
		}
	}

	counts, err := db.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	// Users and items upsert; interactions append.
	if counts["users"] != 2 || counts["items"] != 3 {
		t.Errorf("catalog counts after reseed = %+v", counts)
	}
	if counts["interactions"] != 6 {
		t.Errorf("interactions = %d, want 6 appended rows", counts["interactions"])
	}
}

func TestSeedFromDirMissingFile(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()

	if _, err := db.SeedFromDir(context.Background(), dir, "web"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound for missing dataset files", err)
	}
}

func TestSeedDemoFeedsScorers(t *testing.T) {
	db := setupTestDB(t)

	result, err := db.SeedDemo(context.Background())
	if err != nil {
		t.Fatalf("SeedDemo failed: %v", err)
	}
	if result.Users == 0 || result.Items == 0 || result.Interactions == 0 {
		t.Fatalf("demo seed loaded nothing: %+v", result)
	}

	exists, err := db.UserExists(context.Background(), 1)
	if err != nil || !exists {
		t.Errorf("demo user 1 missing (exists=%v err=%v)", exists, err)
	}

	candidates, err := db.Candidates(context.Background(), 100)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(candidates) != result.Items {
		t.Errorf("got %d candidates, want %d", len(candidates), result.Items)
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Interactions > candidates[i-1].Interactions {
			t.Errorf("candidates not ordered by interaction count at %d", i)
		}
	}
}

func TestCatalogProviderReads(t *testing.T) {
	db := setupTestDB(t)
	dir := writeMovieLensFixture(t)
	if _, err := db.SeedFromDir(context.Background(), dir, "web"); err != nil {
		t.Fatalf("SeedFromDir failed: %v", err)
	}

	ctx := context.Background()

	count, err := db.InteractionCount(ctx, 1)
	if err != nil || count != 2 {
		t.Errorf("InteractionCount = %d, %v, want 2", count, err)
	}

	seen, err := db.SeenItems(ctx, 1)
	if err != nil {
		t.Fatalf("SeenItems failed: %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("seen = %v, want items 1 and 2", seen)
	}
	if _, ok := seen[1]; !ok {
		t.Error("item 1 missing from seen set")
	}

	// User 1 rated item 1 a 5 and item 2 a 3: only the 5 qualifies.
	rated, err := db.RatedItems(ctx, 1)
	if err != nil {
		t.Fatalf("RatedItems failed: %v", err)
	}
	if len(rated) != 1 || rated[0].Rating != 5 {
		t.Errorf("rated = %+v, want one item rated 5", rated)
	}

	interactions, err := db.ListInteractions(ctx, 1, 50, 0)
	if err != nil {
		t.Fatalf("ListInteractions failed: %v", err)
	}
	if len(interactions) != 2 {
		t.Fatalf("got %d interactions, want 2", len(interactions))
	}
	if interactions[0].Timestamp.Before(interactions[1].Timestamp) {
		t.Error("interactions not ordered newest first")
	}
	if interactions[0].EventType != "rating" {
		t.Errorf("event_type = %q, want rating", interactions[0].EventType)
	}

	if _, err := db.ListInteractions(ctx, 999, 50, 0); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown user error = %v, want ErrNotFound", err)
	}
}

func TestResetEventsKeepsCatalog(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.SeedDemo(context.Background()); err != nil {
		t.Fatalf("SeedDemo failed: %v", err)
	}

	recsetID := recordTestImpression(t, db, 1, []int{1, 2}, time.Now().UTC())
	if err := db.RecordEngagement(context.Background(), &models.Engagement{
		RecsetID: recsetID, UserID: 1, ItemID: 1, ActionType: "click",
	}); err != nil {
		t.Fatalf("RecordEngagement failed: %v", err)
	}

	if err := db.ResetEvents(context.Background()); err != nil {
		t.Fatalf("ResetEvents failed: %v", err)
	}

	counts, err := db.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts["rec_impressions"] != 0 || counts["engagements"] != 0 {
		t.Errorf("event log not cleared: %+v", counts)
	}
	if counts["users"] == 0 || counts["items"] == 0 || counts["interactions"] == 0 {
		t.Errorf("catalog was cleared: %+v", counts)
	}
}

func TestResetAllClearsEverything(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.SeedDemo(context.Background()); err != nil {
		t.Fatalf("SeedDemo failed: %v", err)
	}

	if err := db.ResetAll(context.Background()); err != nil {
		t.Fatalf("ResetAll failed: %v", err)
	}

	counts, err := db.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	for table, n := range counts {
		if n != 0 {
			t.Errorf("table %s has %d rows after ResetAll", table, n)
		}
	}
}
