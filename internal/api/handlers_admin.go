// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// seedRequest is the POST /admin/seed payload. With Demo set the
// built-in catalog loads; otherwise Dir (or the configured dataset
// directory) names a MovieLens-100k layout.
type seedRequest struct {
	Dir      string `json:"dir"`
	Demo     bool   `json:"demo"`
	Platform string `json:"platform" validate:"omitempty,oneof=web mobile"`
}

// handleSeed loads the catalog tables.
//
// POST /api/v1/admin/seed
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req seedRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, codeInvalidArgument, "invalid JSON body", nil)
			return
		}
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if req.Demo {
		result, err := s.db.SeedDemo(r.Context())
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondSuccess(w, http.StatusOK, result, started)
		return
	}

	dir := req.Dir
	if dir == "" {
		dir = s.cfg.Seed.Dir
	}
	if dir == "" {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "no dataset directory given or configured", nil)
		return
	}

	result, err := s.db.SeedFromDir(r.Context(), dir, req.Platform)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, result, started)
}

// handleReset clears stored data. scope=events (default) clears only
// the event log; scope=all clears the catalog too.
//
// POST /api/v1/admin/reset?scope=events|all
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	scope := r.URL.Query().Get("scope")
	switch scope {
	case "", "events":
		if err := s.db.ResetEvents(r.Context()); err != nil {
			respondDomainError(w, err)
			return
		}
		scope = "events"
	case "all":
		if err := s.db.ResetAll(r.Context()); err != nil {
			respondDomainError(w, err)
			return
		}
	default:
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "scope must be events or all", nil)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]string{"scope": scope}, started)
}
