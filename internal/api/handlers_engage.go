// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"curator/internal/models"
)

// engagementRequest is the POST /engagements payload. CreatedAt is
// optional RFC3339; when omitted the event log stamps the current time.
type engagementRequest struct {
	RecsetID   string `json:"recset_id" validate:"required"`
	UserID     int    `json:"user_id" validate:"required,gt=0"`
	ItemID     int    `json:"item_id" validate:"required,gt=0"`
	ActionType string `json:"action_type" validate:"required"`
	Platform   string `json:"platform" validate:"omitempty,max=64"`
	CreatedAt  string `json:"created_at" validate:"omitempty"`
}

// handleCreateEngagement records one engagement event.
//
// POST /api/v1/engagements
func (s *Server) handleCreateEngagement(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req engagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "invalid JSON body", nil)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	var createdAt time.Time
	if req.CreatedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.CreatedAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, codeInvalidArgument, "created_at must be RFC3339", nil)
			return
		}
		createdAt = parsed.UTC()
	}

	eng := &models.Engagement{
		RecsetID:   req.RecsetID,
		UserID:     req.UserID,
		ItemID:     req.ItemID,
		ActionType: req.ActionType,
		Platform:   req.Platform,
		CreatedAt:  createdAt,
	}

	if err := s.recorder.Record(r.Context(), eng); err != nil {
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, eng, started)
}
