// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// handleListUsers returns a page of catalog users.
//
// GET /api/v1/users?limit=&offset=
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	limit := clampPageSize(getIntParam(r, "limit", 0), s.cfg.API.DefaultPageSize, s.cfg.API.MaxPageSize)
	offset := getIntParam(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	users, err := s.db.ListUsers(r.Context(), limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, users, started)
}

// handleListItems returns a page of catalog items.
//
// GET /api/v1/items?limit=&offset=
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	limit := clampPageSize(getIntParam(r, "limit", 0), s.cfg.API.DefaultPageSize, s.cfg.API.MaxPageSize)
	offset := getIntParam(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	items, err := s.db.ListItems(r.Context(), limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, items, started)
}

// handleGetItem returns one catalog item.
//
// GET /api/v1/items/{itemID}
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	itemID, err := strconv.Atoi(chi.URLParam(r, "itemID"))
	if err != nil || itemID <= 0 {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "itemID must be a positive integer", nil)
		return
	}

	item, err := s.db.GetItem(r.Context(), itemID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, item, started)
}

// handleListInteractions returns a page of one user's training history,
// newest first.
//
// GET /api/v1/users/{userID}/interactions?limit=&offset=
func (s *Server) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, codeInvalidArgument, "userID must be a positive integer", nil)
		return
	}

	limit := clampPageSize(getIntParam(r, "limit", 0), s.cfg.API.DefaultPageSize, s.cfg.API.MaxPageSize)
	offset := getIntParam(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	interactions, err := s.db.ListInteractions(r.Context(), userID, limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, interactions, started)
}
