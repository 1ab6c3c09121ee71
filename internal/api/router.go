// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP transport: the chi router, request
// handlers, and the mapping from the error taxonomy onto HTTP statuses.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"curator/internal/config"
	"curator/internal/database"
	"curator/internal/engage"
	"curator/internal/eval"
	"curator/internal/middleware"
	"curator/internal/recommend"
)

// Server bundles the handler dependencies behind one router.
type Server struct {
	cfg          *config.Config
	db           *database.DB
	orchestrator *recommend.Orchestrator
	recorder     *engage.Recorder
	evaluator    *eval.Evaluator
	limiter      *middleware.RateLimiter
}

// NewServer creates the API server. The rate limiter is owned by the
// server and stopped by Close.
func NewServer(cfg *config.Config, db *database.DB, orchestrator *recommend.Orchestrator,
	recorder *engage.Recorder, evaluator *eval.Evaluator) *Server {
	return &Server{
		cfg:          cfg,
		db:           db,
		orchestrator: orchestrator,
		recorder:     recorder,
		evaluator:    evaluator,
		limiter:      middleware.NewRateLimiter(float64(cfg.API.RateLimitRPS), cfg.API.RateLimitBurst),
	}
}

// Close releases server-owned resources.
func (s *Server) Close() {
	s.limiter.Stop()
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.PrometheusMetrics)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.limiter.Middleware)

		r.Get("/health", s.handleHealth)

		r.Get("/recommendations/user/{userID}", s.handleRecommendations)
		r.Post("/engagements", s.handleCreateEngagement)
		r.Get("/eval/pac", s.handleEvalPaC)

		r.Get("/users", s.handleListUsers)
		r.Get("/users/{userID}/interactions", s.handleListInteractions)
		r.Get("/items", s.handleListItems)
		r.Get("/items/{itemID}", s.handleGetItem)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/seed", s.handleSeed)
			r.Post("/reset", s.handleReset)
		})
	})

	return r
}
