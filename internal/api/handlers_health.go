// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"time"
)

// healthResponse reports service liveness and store row counts.
type healthResponse struct {
	Status string         `json:"status"`
	Tables map[string]int `json:"tables,omitempty"`
}

// handleHealth verifies the storage engine answers queries.
//
// GET /api/v1/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if err := s.db.Health(r.Context()); err != nil {
		respondDomainError(w, err)
		return
	}

	counts, err := s.db.Counts(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, &healthResponse{Status: "ok", Tables: counts}, started)
}
