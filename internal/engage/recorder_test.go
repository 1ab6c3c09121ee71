// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package engage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"curator/internal/models"
)

// fakeLog records accepted engagements and simulates storage-level
// referential checks.
type fakeLog struct {
	impressionUser map[string]int
	recorded       []models.Engagement
}

func (f *fakeLog) RecordEngagement(_ context.Context, eng *models.Engagement) error {
	userID, ok := f.impressionUser[eng.RecsetID]
	if !ok {
		return fmt.Errorf("%w: impression %s", models.ErrNotFound, eng.RecsetID)
	}
	if userID != eng.UserID {
		return fmt.Errorf("%w: user mismatch", models.ErrInvalidArgument)
	}
	f.recorded = append(f.recorded, *eng)
	return nil
}

func validEngagement() *models.Engagement {
	return &models.Engagement{
		RecsetID:   "recset-1",
		UserID:     1,
		ItemID:     42,
		ActionType: "click",
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecordAcceptsValidEngagement(t *testing.T) {
	log := &fakeLog{impressionUser: map[string]int{"recset-1": 1}}
	rec := NewRecorder(log)

	if err := rec.Record(context.Background(), validEngagement()); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if len(log.recorded) != 1 {
		t.Fatalf("recorded %d engagements, want 1", len(log.recorded))
	}
}

func TestRecordValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Engagement)
	}{
		{"missing recset_id", func(e *models.Engagement) { e.RecsetID = "" }},
		{"zero user_id", func(e *models.Engagement) { e.UserID = 0 }},
		{"negative item_id", func(e *models.Engagement) { e.ItemID = -1 }},
		{"empty action", func(e *models.Engagement) { e.ActionType = "" }},
		{"placeholder string", func(e *models.Engagement) { e.ActionType = "string" }},
		{"placeholder unset", func(e *models.Engagement) { e.ActionType = "UNSET" }},
		{"whitespace action", func(e *models.Engagement) { e.ActionType = "   " }},
		{"epoch timestamp", func(e *models.Engagement) { e.CreatedAt = time.Unix(0, 0) }},
		{"pre-epoch timestamp", func(e *models.Engagement) { e.CreatedAt = time.Unix(-1, 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &fakeLog{impressionUser: map[string]int{"recset-1": 1}}
			rec := NewRecorder(log)

			eng := validEngagement()
			tt.mutate(eng)
			if err := rec.Record(context.Background(), eng); !errors.Is(err, models.ErrInvalidArgument) {
				t.Errorf("Record error = %v, want ErrInvalidArgument", err)
			}
			if len(log.recorded) != 0 {
				t.Errorf("invalid engagement reached storage")
			}
		})
	}
}

func TestRecordUnsetTimestampAllowed(t *testing.T) {
	log := &fakeLog{impressionUser: map[string]int{"recset-1": 1}}
	rec := NewRecorder(log)

	eng := validEngagement()
	eng.CreatedAt = time.Time{}
	if err := rec.Record(context.Background(), eng); err != nil {
		t.Fatalf("unset timestamp rejected: %v", err)
	}
}

func TestRecordPropagatesStorageErrors(t *testing.T) {
	log := &fakeLog{impressionUser: map[string]int{"recset-1": 1}}
	rec := NewRecorder(log)

	orphan := validEngagement()
	orphan.RecsetID = "no-such-recset"
	if err := rec.Record(context.Background(), orphan); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("orphan error = %v, want ErrNotFound", err)
	}

	mismatch := validEngagement()
	mismatch.UserID = 7
	if err := rec.Record(context.Background(), mismatch); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("mismatch error = %v, want ErrInvalidArgument", err)
	}
}
