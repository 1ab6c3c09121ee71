// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"curator/internal/models"
	"curator/internal/recommend"
)

// handleRecommendations serves a top-k list for a user and records the
// impression. The response carries the recset_id clients echo back when
// posting engagements.
//
// GET /api/v1/recommendations/user/{userID}?k=&engine=&platform=
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "userID must be a positive integer", nil)
		return
	}

	selector, err := recommend.ParseSelector(r.URL.Query().Get("engine"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	k := getIntParam(r, "k", s.cfg.Recommend.DefaultK)
	platform := r.URL.Query().Get("platform")
	if platform == "" {
		platform = "web"
	}

	result, err := s.orchestrator.Recommend(r.Context(), userID, k, selector, platform)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, &models.RecommendationResponse{
		RecsetID: result.RecsetID,
		UserID:   userID,
		Engine:   result.Engine,
		K:        result.K,
		Items:    result.Items,
	}, started)
}
