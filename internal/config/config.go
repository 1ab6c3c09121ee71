// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides layered configuration for Curator using Koanf v2.
//
// Configuration loading order (highest priority wins):
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml)
//  3. Environment variables (CURATOR_SERVER_PORT -> server.port)
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Recommend RecommendConfig `koanf:"recommend"`
	Eval      EvalConfig      `koanf:"eval"`
	Seed      SeedConfig      `koanf:"seed"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file location. ":memory:" or empty selects an
	// in-memory database (used by tests).
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads limits DuckDB worker threads. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// RecommendConfig holds scorer and orchestrator settings.
type RecommendConfig struct {
	// DefaultK is the list length served when the caller does not ask for one.
	DefaultK int `koanf:"default_k"`
	// MaxK caps the list length a caller may request.
	MaxK int `koanf:"max_k"`
	// CandidateLimit bounds the popularity-ranked candidate pool the
	// scorers draw from.
	CandidateLimit int `koanf:"candidate_limit"`
	// MinHistory is the interaction count a user needs before the auto
	// selector will consider the neural scorer.
	MinHistory int `koanf:"min_history"`
	// ModelPath points at the trained factorization model file. Empty
	// disables the neural scorer.
	ModelPath string `koanf:"model_path"`
}

// EvalConfig holds PaC evaluation defaults.
type EvalConfig struct {
	// DefaultK is the truncation depth applied when the query omits k.
	DefaultK int `koanf:"default_k"`
	// DefaultWindowHours is the attribution window applied when the
	// query omits one.
	DefaultWindowHours int `koanf:"default_window_hours"`
	// MaxWindowHours caps the attribution window a caller may request.
	MaxWindowHours int `koanf:"max_window_hours"`
}

// SeedConfig controls dataset ingestion at startup.
type SeedConfig struct {
	// Dir is a directory containing MovieLens-style u.user / u.item /
	// u.data files. Empty disables file seeding.
	Dir string `koanf:"dir"`
	// Demo seeds a small built-in catalog when true (for demos and CI).
	Demo bool `koanf:"demo"`
}

// APIConfig holds request handling limits.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
	// RateLimitRPS is the sustained per-client request rate. 0 disables
	// rate limiting.
	RateLimitRPS int `koanf:"rate_limit_rps"`
	// RateLimitBurst is the per-client burst allowance.
	RateLimitBurst int `koanf:"rate_limit_burst"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks configuration invariants after loading.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Recommend.DefaultK <= 0 {
		return fmt.Errorf("recommend.default_k must be positive, got %d", c.Recommend.DefaultK)
	}
	if c.Recommend.MaxK < c.Recommend.DefaultK {
		return fmt.Errorf("recommend.max_k (%d) must be >= recommend.default_k (%d)",
			c.Recommend.MaxK, c.Recommend.DefaultK)
	}
	if c.Recommend.CandidateLimit <= 0 {
		return fmt.Errorf("recommend.candidate_limit must be positive, got %d", c.Recommend.CandidateLimit)
	}
	if c.Recommend.MinHistory < 0 {
		return fmt.Errorf("recommend.min_history must not be negative, got %d", c.Recommend.MinHistory)
	}
	if c.Eval.DefaultK <= 0 {
		return fmt.Errorf("eval.default_k must be positive, got %d", c.Eval.DefaultK)
	}
	if c.Eval.DefaultWindowHours <= 0 {
		return fmt.Errorf("eval.default_window_hours must be positive, got %d", c.Eval.DefaultWindowHours)
	}
	if c.Eval.MaxWindowHours < c.Eval.DefaultWindowHours {
		return fmt.Errorf("eval.max_window_hours (%d) must be >= eval.default_window_hours (%d)",
			c.Eval.MaxWindowHours, c.Eval.DefaultWindowHours)
	}
	if c.API.RateLimitRPS < 0 || c.API.RateLimitBurst < 0 {
		return fmt.Errorf("api rate limit settings must not be negative")
	}
	return nil
}
