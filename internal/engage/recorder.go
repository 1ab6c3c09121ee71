// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engage validates and records engagement events against the
// append-only log. All business validation lives here; the storage
// layer only enforces referential checks it needs the database for.
package engage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"curator/internal/logging"
	"curator/internal/metrics"
	"curator/internal/models"
)

// EngagementLog is the slice of the event log the recorder writes to.
type EngagementLog interface {
	RecordEngagement(ctx context.Context, eng *models.Engagement) error
}

// Recorder validates engagements before they reach storage.
type Recorder struct {
	log EngagementLog
}

// NewRecorder creates a Recorder writing to log.
func NewRecorder(log EngagementLog) *Recorder {
	return &Recorder{log: log}
}

// placeholderActions are literal junk values observed from client SDK
// defaults and API explorers. They carry no signal and would silently
// dilute evaluation, so they are rejected up front.
var placeholderActions = map[string]struct{}{
	"":       {},
	"string": {},
	"unset":  {},
}

// Record validates eng and appends it to the event log.
//
// Required fields must be present and the action type must not be a
// placeholder (ErrInvalidArgument). A zero or pre-epoch timestamp is a
// client serialization bug, not a real event time, and is rejected the
// same way; an unset timestamp is filled with the current time by the
// log. Referential failures surface from storage as ErrNotFound or
// ErrInvalidArgument.
func (r *Recorder) Record(ctx context.Context, eng *models.Engagement) error {
	if err := r.validate(eng); err != nil {
		metrics.EngagementsRejected.WithLabelValues("invalid_argument").Inc()
		return err
	}

	if err := r.log.RecordEngagement(ctx, eng); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			metrics.EngagementsRejected.WithLabelValues("not_found").Inc()
		case errors.Is(err, models.ErrInvalidArgument):
			metrics.EngagementsRejected.WithLabelValues("invalid_argument").Inc()
		}
		return err
	}

	logging.Debug().
		Str("recset_id", eng.RecsetID).
		Int("user_id", eng.UserID).
		Int("item_id", eng.ItemID).
		Str("action_type", eng.ActionType).
		Msg("Engagement recorded")
	return nil
}

func (r *Recorder) validate(eng *models.Engagement) error {
	if eng.RecsetID == "" {
		return fmt.Errorf("%w: recset_id is required", models.ErrInvalidArgument)
	}
	if eng.UserID <= 0 {
		return fmt.Errorf("%w: user_id must be positive", models.ErrInvalidArgument)
	}
	if eng.ItemID <= 0 {
		return fmt.Errorf("%w: item_id must be positive", models.ErrInvalidArgument)
	}

	action := strings.ToLower(strings.TrimSpace(eng.ActionType))
	if _, bad := placeholderActions[action]; bad {
		return fmt.Errorf("%w: action_type %q is a placeholder", models.ErrInvalidArgument, eng.ActionType)
	}

	// The zero sentinel (1970-01-01 and earlier) means a client failed
	// to serialize the timestamp. An actually-unset time is fine.
	if !eng.CreatedAt.IsZero() && !eng.CreatedAt.After(time.Unix(0, 0)) {
		return fmt.Errorf("%w: created_at %s predates the epoch", models.ErrInvalidArgument, eng.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
