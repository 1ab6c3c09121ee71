// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command server runs the Curator recommendation service: top-K list
// serving, append-only impression/engagement logging, and Precision at
// Curation evaluation over the event log.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"curator/internal/api"
	"curator/internal/config"
	"curator/internal/database"
	"curator/internal/engage"
	"curator/internal/eval"
	"curator/internal/logging"
	"curator/internal/recommend"
	"curator/internal/supervisor"
	"curator/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("database", cfg.Database.Path).
		Msg("Starting curator")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if err := seedOnStartup(db, cfg); err != nil {
		return err
	}

	baseline := recommend.NewBaselineScorer(db, cfg.Recommend.CandidateLimit)
	neural := recommend.NewNeuralScorer(db, cfg.Recommend.CandidateLimit, cfg.Recommend.ModelPath)
	orchestrator := recommend.NewOrchestrator(baseline, neural, db, db, &cfg.Recommend)
	recorder := engage.NewRecorder(db)
	evaluator := eval.NewEvaluator(db, cfg.Eval.MaxWindowHours)

	server := api.NewServer(cfg, db, orchestrator, recorder, evaluator)
	defer server.Close()

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Listening")
	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop cleanly")
		}
	}

	logging.Info().Msg("Shutdown complete")
	return nil
}

// seedOnStartup loads the catalog when configured: a dataset directory
// takes precedence over the built-in demo data. An already-populated
// catalog is left alone so restarts do not append duplicate history.
func seedOnStartup(db *database.DB, cfg *config.Config) error {
	ctx := context.Background()

	counts, err := db.Counts(ctx)
	if err != nil {
		return err
	}
	if counts["users"] > 0 {
		logging.Info().Int("users", counts["users"]).Msg("Catalog already populated, skipping seed")
		return nil
	}

	switch {
	case cfg.Seed.Dir != "":
		if _, err := db.SeedFromDir(ctx, cfg.Seed.Dir, ""); err != nil {
			return err
		}
	case cfg.Seed.Demo:
		if _, err := db.SeedDemo(ctx); err != nil {
			return err
		}
	}
	return nil
}
