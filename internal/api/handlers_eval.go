// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"curator/internal/eval"
)

// evalRequest validates the query parameters of the PaC endpoint.
type evalRequest struct {
	K           int    `validate:"gt=0"`
	WindowHours int    `validate:"gt=0"`
	Engine      string `validate:"omitempty,oneof=baseline nn"`
}

// handleEvalPaC runs a Precision at Curation evaluation over the event
// log.
//
// GET /api/v1/eval/pac?start=&end=&k=&window_hours=&engine=&platform=&action_types=
func (s *Server) handleEvalPaC(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	start, err := getTimeParam(r, "start")
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, err.Error(), nil)
		return
	}
	if start.IsZero() {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "start is required", nil)
		return
	}
	end, err := getTimeParam(r, "end")
	if err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, err.Error(), nil)
		return
	}

	req := evalRequest{
		K:           getIntParam(r, "k", s.cfg.Eval.DefaultK),
		WindowHours: getIntParam(r, "window_hours", s.cfg.Eval.DefaultWindowHours),
		Engine:      r.URL.Query().Get("engine"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	report, err := s.evaluator.Evaluate(r.Context(), eval.Params{
		Start:       start,
		End:         end,
		K:           req.K,
		WindowHours: req.WindowHours,
		Engine:      req.Engine,
		Platform:    r.URL.Query().Get("platform"),
		ActionTypes: parseCommaSeparated(r.URL.Query().Get("action_types")),
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, report, started)
}
