// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package eventprocessor

import (
	"context"
	"errors"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
)

func startEmbeddedServer(t *testing.T) *EmbeddedServer {
	t.Helper()
	cfg := DefaultServerConfig()
	cfg.Enabled = true
	cfg.Port = -1
	cfg.StoreDir = t.TempDir()

	srv, err := NewEmbeddedServer(cfg)
	if err != nil {
		t.Fatalf("NewEmbeddedServer: %v", err)
	}
	t.Cleanup(srv.Shutdown)
	return srv
}

func TestEmbeddedServer_AcceptsConnections(t *testing.T) {
	srv := startEmbeddedServer(t)

	if !srv.IsRunning() {
		t.Fatal("server not running")
	}
	if srv.JetStreamEnabled() {
		t.Error("JetStream enabled by default")
	}

	nc, err := natsgo.Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	nc.Close()
}

func TestEmbeddedServer_JetStream(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Port = -1
	cfg.JetStream = true
	cfg.StoreDir = t.TempDir()

	srv, err := NewEmbeddedServer(cfg)
	if err != nil {
		t.Fatalf("NewEmbeddedServer: %v", err)
	}
	defer srv.Shutdown()

	if !srv.JetStreamEnabled() {
		t.Error("JetStream not enabled")
	}
}

func TestEmbeddedServer_ServeStopsOnCancel(t *testing.T) {
	srv := startEmbeddedServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
	if srv.IsRunning() {
		t.Error("server still running after Serve returned")
	}
}
