// Curator - Recommendation Serving and Curation Metrics
// Copyright 2026 Curator Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// mockServer simulates http.Server lifecycle behavior.
type mockServer struct {
	listenErr    error
	shutdownErr  error
	shutdownDone chan struct{}
	closed       chan struct{}
}

func newMockServer() *mockServer {
	return &mockServer{
		shutdownDone: make(chan struct{}, 1),
		closed:       make(chan struct{}),
	}
}

func (m *mockServer) ListenAndServe() error {
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.closed
	return http.ErrServerClosed
}

func (m *mockServer) Shutdown(_ context.Context) error {
	m.shutdownDone <- struct{}{}
	close(m.closed)
	return m.shutdownErr
}

func TestServeGracefulShutdown(t *testing.T) {
	server := newMockServer()
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	select {
	case <-server.shutdownDone:
	default:
		t.Error("Shutdown was not called")
	}
}

func TestServeStartupFailure(t *testing.T) {
	server := newMockServer()
	server.listenErr = errors.New("address already in use")
	svc := NewHTTPServerService(server, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, server.listenErr) {
		t.Errorf("Serve returned %v, want wrapped listen error", err)
	}
}

func TestServeTreatsServerClosedAsClean(t *testing.T) {
	server := newMockServer()
	close(server.closed)
	svc := NewHTTPServerService(server, time.Second)

	if err := svc.Serve(context.Background()); err != nil {
		t.Errorf("Serve returned %v, want nil for ErrServerClosed", err)
	}
}

func TestStringName(t *testing.T) {
	svc := NewHTTPServerService(newMockServer(), 0)
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}
