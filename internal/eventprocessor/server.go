// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package eventprocessor

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"

	"github.com/tomtom215/seawatch/internal/logging"
)

// readyTimeout bounds how long NewEmbeddedServer waits for the server.
const readyTimeout = 30 * time.Second

// EmbeddedServer runs a NATS server inside the process for single-node
// deployments. The ingest subscriber and the event publisher connect to it
// like to any other server.
type EmbeddedServer struct {
	server    *server.Server
	config    ServerConfig
	clientURL string
}

// NewEmbeddedServer creates and starts an embedded NATS server.
func NewEmbeddedServer(cfg ServerConfig) (*EmbeddedServer, error) {
	opts := &server.Options{
		ServerName:         "seawatch",
		Host:               cfg.Host,
		Port:               cfg.Port,
		JetStream:          cfg.JetStream,
		StoreDir:           cfg.StoreDir,
		JetStreamMaxMemory: cfg.MaxMemory,
		JetStreamMaxStore:  cfg.MaxStore,
		NoSigs:             true,
		MaxPayload:         1024 * 1024,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}
	ns.SetLogger(natsLogger{}, false, false)

	go ns.Start()

	if !ns.ReadyForConnections(readyTimeout) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within %s", readyTimeout)
	}

	s := &EmbeddedServer{
		server:    ns,
		config:    cfg,
		clientURL: ns.ClientURL(),
	}
	logging.Info().
		Str("url", s.clientURL).
		Bool("jetstream", ns.JetStreamEnabled()).
		Msg("embedded NATS server started")
	return s, nil
}

// ClientURL returns the connection URL for clients.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

// Serve blocks until ctx is done and then shuts the server down.
func (s *EmbeddedServer) Serve(ctx context.Context) error {
	<-ctx.Done()
	s.server.Shutdown()
	s.server.WaitForShutdown()
	logging.Info().Msg("embedded NATS server stopped")
	return ctx.Err()
}

func (s *EmbeddedServer) String() string { return "nats-server" }

// Shutdown stops the server without waiting for Serve.
func (s *EmbeddedServer) Shutdown() {
	s.server.Shutdown()
	s.server.WaitForShutdown()
}

// IsRunning reports whether the server accepts connections.
func (s *EmbeddedServer) IsRunning() bool {
	return s.server.Running()
}

// JetStreamEnabled returns whether JetStream is enabled.
func (s *EmbeddedServer) JetStreamEnabled() bool {
	return s.server.JetStreamEnabled()
}

// natsLogger routes the server's log lines into zerolog.
type natsLogger struct{}

func (natsLogger) Noticef(format string, v ...interface{}) {
	logging.Debug().Str("component", "nats-server").Msgf(format, v...)
}

func (natsLogger) Warnf(format string, v ...interface{}) {
	logging.Warn().Str("component", "nats-server").Msgf(format, v...)
}

func (natsLogger) Fatalf(format string, v ...interface{}) {
	logging.Error().Str("component", "nats-server").Msgf(format, v...)
}

func (natsLogger) Errorf(format string, v ...interface{}) {
	logging.Error().Str("component", "nats-server").Msgf(format, v...)
}

func (natsLogger) Debugf(format string, v ...interface{}) {
	logging.Trace().Str("component", "nats-server").Msgf(format, v...)
}

func (natsLogger) Tracef(format string, v ...interface{}) {
	logging.Trace().Str("component", "nats-server").Msgf(format, v...)
}
