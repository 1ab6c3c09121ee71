// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"curator/internal/models"
)

// Stable machine-readable error codes returned in the envelope.
const (
	codeNotFound        = "NOT_FOUND"
	codeInvalidArgument = "INVALID_ARGUMENT"
	codeUnavailable     = "UNAVAILABLE"
	codeValidation      = "VALIDATION_ERROR"
	codeInternal        = "INTERNAL_ERROR"
)

// respondDomainError maps the error taxonomy onto HTTP statuses:
// ErrNotFound to 404, ErrInvalidArgument to 400, ErrUnavailable to 503,
// anything unclassified to 500.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, err.Error(), nil)
	case errors.Is(err, models.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, codeInvalidArgument, err.Error(), nil)
	case errors.Is(err, models.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, codeUnavailable, "storage unavailable", err)
	default:
		respondError(w, http.StatusInternalServerError, codeInternal, "internal error", err)
	}
}
