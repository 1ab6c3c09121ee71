// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"curator/internal/config"
	"curator/internal/database"
	"curator/internal/engage"
	"curator/internal/eval"
	"curator/internal/models"
	"curator/internal/recommend"
)

// setupTestServer builds the full stack against an in-memory store
// with the demo catalog loaded.
func setupTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg.Database.Path = ""
	cfg.Database.Threads = 1
	// Generous limit so burst tests elsewhere do not bleed into these.
	cfg.API.RateLimitRPS = 10000
	cfg.API.RateLimitBurst = 10000

	db, err := database.New(&cfg.Database)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.SeedDemo(t.Context()); err != nil {
		t.Fatalf("failed to seed demo catalog: %v", err)
	}

	baseline := recommend.NewBaselineScorer(db, cfg.Recommend.CandidateLimit)
	neural := recommend.NewNeuralScorer(db, cfg.Recommend.CandidateLimit, "")
	orchestrator := recommend.NewOrchestrator(baseline, neural, db, db, &cfg.Recommend)
	recorder := engage.NewRecorder(db)
	evaluator := eval.NewEvaluator(db, cfg.Eval.MaxWindowHours)

	server := NewServer(cfg, db, orchestrator, recorder, evaluator)
	t.Cleanup(server.Close)
	return server, server.Router()
}

// doRequest executes a request and decodes the response envelope.
func doRequest(t *testing.T, handler http.Handler, method, path string, body []byte) (*httptest.ResponseRecorder, *models.APIResponse) {
	t.Helper()

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var envelope models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope from %s %s: %v (body %q)", method, path, err, rec.Body.String())
	}
	return rec, &envelope
}

// decodeData re-decodes the envelope's data field into out.
func decodeData(t *testing.T, envelope *models.APIResponse, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("failed to re-encode data: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, handler := setupTestServer(t)

	rec, envelope := doRequest(t, handler, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if envelope.Status != "success" {
		t.Errorf("envelope status = %q", envelope.Status)
	}

	var health healthResponse
	decodeData(t, envelope, &health)
	if health.Status != "ok" || health.Tables["users"] == 0 {
		t.Errorf("health = %+v", health)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, handler := setupTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("curator_")) {
		t.Error("metrics exposition missing curator series")
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	_, handler := setupTestServer(t)

	rec, envelope := doRequest(t, handler, http.MethodGet, "/api/v1/recommendations/user/1?k=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp models.RecommendationResponse
	decodeData(t, envelope, &resp)
	if resp.RecsetID == "" {
		t.Error("missing recset_id")
	}
	if resp.Engine != models.EngineBaseline {
		t.Errorf("engine = %q, want baseline (no model loaded)", resp.Engine)
	}
	if resp.K != 3 || len(resp.Items) > 3 {
		t.Errorf("k = %d with %d items", resp.K, len(resp.Items))
	}
	for i := 1; i < len(resp.Items); i++ {
		if resp.Items[i].Score > resp.Items[i-1].Score {
			t.Errorf("items not ranked at position %d", i)
		}
	}
}

func TestRecommendationsErrors(t *testing.T) {
	_, handler := setupTestServer(t)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantErr  string
	}{
		{"unknown user", "/api/v1/recommendations/user/999", http.StatusNotFound, codeNotFound},
		{"bad user id", "/api/v1/recommendations/user/abc", http.StatusBadRequest, codeInvalidArgument},
		{"zero k", "/api/v1/recommendations/user/1?k=0", http.StatusBadRequest, codeInvalidArgument},
		{"unknown engine", "/api/v1/recommendations/user/1?engine=bogus", http.StatusBadRequest, codeInvalidArgument},
		{"nn without model", "/api/v1/recommendations/user/1?engine=nn", http.StatusServiceUnavailable, codeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, envelope := doRequest(t, handler, http.MethodGet, tt.path, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if envelope.Error == nil || envelope.Error.Code != tt.wantErr {
				t.Errorf("error = %+v, want code %s", envelope.Error, tt.wantErr)
			}
		})
	}
}

func serveRecommendation(t *testing.T, handler http.Handler, userID int) models.RecommendationResponse {
	t.Helper()
	rec, envelope := doRequest(t, handler, http.MethodGet,
		fmt.Sprintf("/api/v1/recommendations/user/%d?k=5", userID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("recommendation failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp models.RecommendationResponse
	decodeData(t, envelope, &resp)
	return resp
}

func TestEngagementLifecycle(t *testing.T) {
	_, handler := setupTestServer(t)
	served := serveRecommendation(t, handler, 1)
	if len(served.Items) == 0 {
		t.Fatal("no items served")
	}

	body, _ := json.Marshal(map[string]interface{}{
		"recset_id":   served.RecsetID,
		"user_id":     1,
		"item_id":     served.Items[0].ItemID,
		"action_type": "click",
	})
	rec, _ := doRequest(t, handler, http.MethodPost, "/api/v1/engagements", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestEngagementErrors(t *testing.T) {
	_, handler := setupTestServer(t)
	served := serveRecommendation(t, handler, 1)

	payload := func(mutate func(map[string]interface{})) []byte {
		m := map[string]interface{}{
			"recset_id":   served.RecsetID,
			"user_id":     1,
			"item_id":     1,
			"action_type": "click",
		}
		mutate(m)
		b, _ := json.Marshal(m)
		return b
	}

	tests := []struct {
		name     string
		body     []byte
		wantCode int
	}{
		{"orphan recset", payload(func(m map[string]interface{}) { m["recset_id"] = "no-such" }), http.StatusNotFound},
		{"user mismatch", payload(func(m map[string]interface{}) { m["user_id"] = 2 }), http.StatusBadRequest},
		{"placeholder action", payload(func(m map[string]interface{}) { m["action_type"] = "string" }), http.StatusBadRequest},
		{"missing action", payload(func(m map[string]interface{}) { delete(m, "action_type") }), http.StatusBadRequest},
		{"epoch timestamp", payload(func(m map[string]interface{}) { m["created_at"] = "1970-01-01T00:00:00Z" }), http.StatusBadRequest},
		{"bad timestamp", payload(func(m map[string]interface{}) { m["created_at"] = "yesterday" }), http.StatusBadRequest},
		{"not json", []byte("{"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doRequest(t, handler, http.MethodPost, "/api/v1/engagements", tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestEvalPaCEndpoint(t *testing.T) {
	_, handler := setupTestServer(t)
	served := serveRecommendation(t, handler, 1)

	body, _ := json.Marshal(map[string]interface{}{
		"recset_id":   served.RecsetID,
		"user_id":     1,
		"item_id":     served.Items[0].ItemID,
		"action_type": "click",
	})
	if rec, _ := doRequest(t, handler, http.MethodPost, "/api/v1/engagements", body); rec.Code != http.StatusCreated {
		t.Fatalf("engagement failed: %d", rec.Code)
	}

	start := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	rec, envelope := doRequest(t, handler, http.MethodGet,
		"/api/v1/eval/pac?start="+start+"&k=5&window_hours=24", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var report models.PaCReport
	decodeData(t, envelope, &report)
	if report.Impressions != 1 || report.TotalHits != 1 {
		t.Errorf("report = %+v, want one impression with one hit", report)
	}
	want := 1.0 / float64(len(served.Items))
	if report.PaCMean == nil || *report.PaCMean != want {
		t.Errorf("pac_mean = %v, want %v", report.PaCMean, want)
	}
}

func TestEvalPaCEmptyRange(t *testing.T) {
	_, handler := setupTestServer(t)

	rec, envelope := doRequest(t, handler, http.MethodGet,
		"/api/v1/eval/pac?start=2020-01-01T00:00:00Z&end=2020-01-02T00:00:00Z&k=10&window_hours=24", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var report models.PaCReport
	decodeData(t, envelope, &report)
	if report.Impressions != 0 {
		t.Errorf("impressions = %d", report.Impressions)
	}
	if report.PaCMean != nil || report.PaCMicro != nil {
		t.Errorf("metrics not null on empty range: %v %v", report.PaCMean, report.PaCMicro)
	}
}

func TestEvalPaCValidation(t *testing.T) {
	_, handler := setupTestServer(t)

	tests := []struct {
		name string
		path string
	}{
		{"missing start", "/api/v1/eval/pac?k=10&window_hours=24"},
		{"bad start", "/api/v1/eval/pac?start=notatime&k=10&window_hours=24"},
		{"zero k", "/api/v1/eval/pac?start=2026-01-01T00:00:00Z&k=0&window_hours=24"},
		{"bad engine", "/api/v1/eval/pac?start=2026-01-01T00:00:00Z&k=10&window_hours=24&engine=bogus"},
		{"oversized window", "/api/v1/eval/pac?start=2026-01-01T00:00:00Z&k=10&window_hours=999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := doRequest(t, handler, http.MethodGet, tt.path, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCatalogEndpoints(t *testing.T) {
	_, handler := setupTestServer(t)

	rec, envelope := doRequest(t, handler, http.MethodGet, "/api/v1/users?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("users status = %d", rec.Code)
	}
	var users []models.User
	decodeData(t, envelope, &users)
	if len(users) != 2 {
		t.Errorf("got %d users, want 2", len(users))
	}

	rec, envelope = doRequest(t, handler, http.MethodGet, "/api/v1/items", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("items status = %d", rec.Code)
	}
	var items []models.Item
	decodeData(t, envelope, &items)
	if len(items) == 0 {
		t.Error("no items listed")
	}

	rec, _ = doRequest(t, handler, http.MethodGet, "/api/v1/items/1", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("item status = %d", rec.Code)
	}
	rec, _ = doRequest(t, handler, http.MethodGet, "/api/v1/items/9999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing item status = %d, want 404", rec.Code)
	}

	rec, envelope = doRequest(t, handler, http.MethodGet, "/api/v1/users/1/interactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("interactions status = %d", rec.Code)
	}
	var interactions []models.Interaction
	decodeData(t, envelope, &interactions)
	if len(interactions) == 0 {
		t.Error("no interactions listed")
	}

	rec, _ = doRequest(t, handler, http.MethodGet, "/api/v1/users/999/interactions", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing user interactions status = %d, want 404", rec.Code)
	}
}

func TestAdminResetEndpoint(t *testing.T) {
	_, handler := setupTestServer(t)
	serveRecommendation(t, handler, 1)

	rec, _ := doRequest(t, handler, http.MethodPost, "/api/v1/admin/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rec.Code)
	}

	_, envelope := doRequest(t, handler, http.MethodGet, "/api/v1/health", nil)
	var health healthResponse
	decodeData(t, envelope, &health)
	if health.Tables["rec_impressions"] != 0 {
		t.Errorf("impressions remain after reset: %+v", health.Tables)
	}
	if health.Tables["users"] == 0 {
		t.Errorf("catalog cleared by events-scope reset: %+v", health.Tables)
	}

	rec, _ = doRequest(t, handler, http.MethodPost, "/api/v1/admin/reset?scope=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bogus scope status = %d, want 400", rec.Code)
	}
}

func TestAdminSeedDemoEndpoint(t *testing.T) {
	_, handler := setupTestServer(t)

	if rec, _ := doRequest(t, handler, http.MethodPost, "/api/v1/admin/reset?scope=all", nil); rec.Code != http.StatusOK {
		t.Fatalf("reset failed: %d", rec.Code)
	}

	body := []byte(`{"demo": true}`)
	rec, envelope := doRequest(t, handler, http.MethodPost, "/api/v1/admin/seed", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result database.SeedResult
	decodeData(t, envelope, &result)
	if result.Users == 0 || result.Items == 0 {
		t.Errorf("seed result = %+v", result)
	}
}

func TestRequestIDHeaderPresent(t *testing.T) {
	_, handler := setupTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}
