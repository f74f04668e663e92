// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/tomtom215/seawatch/internal/analysis"
	"github.com/tomtom215/seawatch/internal/api"
	"github.com/tomtom215/seawatch/internal/behaviour"
	"github.com/tomtom215/seawatch/internal/categorizer"
	"github.com/tomtom215/seawatch/internal/config"
	"github.com/tomtom215/seawatch/internal/grid"
	"github.com/tomtom215/seawatch/internal/ingest"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
	"github.com/tomtom215/seawatch/internal/notify"
	"github.com/tomtom215/seawatch/internal/supervisor"
	"github.com/tomtom215/seawatch/internal/supervisor/services"
	"github.com/tomtom215/seawatch/internal/tracker"
	ws "github.com/tomtom215/seawatch/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("seawatch failed")
	}
}

//nolint:gocyclo // sequential wiring
func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(cfg.Logging)
	metrics.SetAppInfo(version, runtime.Version())

	logging.Info().
		Str("version", version).
		Str("ingest_source", cfg.Ingest.Source).
		Str("events_store", cfg.Events.Store).
		Float64("grid_resolution", cfg.Grid.Resolution).
		Msg("starting seawatch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, err := grid.New(cfg.Grid.Resolution)
	if err != nil {
		return err
	}
	speeds, err := categorizer.NewSpeedTable(cfg.Statistics.SpeedBounds)
	if err != nil {
		return err
	}

	stats, err := openStatistics(ctx, cfg)
	if err != nil {
		return err
	}
	defer stats.Close()
	if err := validateStatistics(ctx, cfg, speeds, stats.repo); err != nil {
		return err
	}

	store, err := openEventStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	natsServer, err := startEmbeddedNATS(cfg)
	if err != nil {
		return err
	}
	if natsServer != nil {
		defer natsServer.Shutdown()
	}

	publisher, err := newPublisher(cfg, natsServer)
	if err != nil {
		return err
	}
	if publisher != nil {
		defer func() {
			if err := publisher.Close(); err != nil {
				logging.Warn().Err(err).Msg("close event publisher")
			}
		}()
	}

	hub := ws.NewHub()

	var eventPublisher notify.EventPublisher
	var freeFlowSink analysis.FreeFlowSink
	if publisher != nil {
		eventPublisher = publisher
		freeFlowSink = publisher
	}
	dispatcher, err := notify.New(cfg.Notify, hub, eventPublisher)
	if err != nil {
		return fmt.Errorf("create notifiers: %w", err)
	}
	logging.Info().Strs("notifiers", dispatcher.Names()).Msg("notifications configured")

	trk := tracker.NewService(cfg.Tracker, g)
	manager := behaviour.NewManager(cfg.Behaviour, nil)
	engine := analysis.NewEngine(cfg.Analysis, speeds, stats.repo, freeFlowSink, analysis.Deps{
		Events:       store.repo,
		Behaviour:    manager,
		Notifier:     dispatcher,
		StoreTimeout: cfg.Analysis.StoreTimeout,
	})
	engine.Attach(trk)

	source, err := ingest.NewSource(cfg.Ingest)
	if err != nil {
		return err
	}
	ingestSvc := ingest.NewService(source, trk, ingest.NewChain(cfg.Filter, ingest.TrackNames(trk)))

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if natsServer != nil {
		tree.AddDataService(natsServer)
	}
	if store.checkpointer != nil {
		tree.AddDataService(services.NewCheckpointService(store.checkpointer, 0))
	}

	clock := time.Now
	if cfg.Ingest.Source == ingest.SourceFile {
		clock = trk.StreamTime
	}
	tree.AddMessagingService(hub)
	tree.AddMessagingService(services.NewSweeperService(trk, cfg.Tracker.SweepInterval, clock))
	tree.AddMessagingService(services.NewIngestService(ingestSvc, func() {
		if !cfg.Server.Enabled {
			logging.Info().Msg("replay finished, stopping")
			cancel()
		}
	}))

	if cfg.Server.Enabled {
		handler := api.NewHandler(cfg.API, api.Deps{
			Events:    store.repo,
			Tracks:    trk,
			Analyses:  engine,
			Ingest:    ingestSvc,
			WebSocket: ws.Handler(hub),
			Checks:    healthChecks(store, publisher),
			Version:   version,
		})
		server := &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Handler:           api.NewRouter(cfg.API, handler).Setup(),
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
		logging.Info().Str("addr", server.Addr).Msg("HTTP API enabled")
	}

	watchConfig(engine)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop")
		}
	}

	trk.Close()
	dispatcher.Wait()
	if err := dispatcher.Close(); err != nil {
		logging.Warn().Err(err).Msg("close notifiers")
	}

	st := trk.Stats()
	logging.Info().
		Int("tracks", st.Tracks).
		Int64("updates", st.Updates).
		Interface("analyses", engine.Stats().Snapshot()).
		Msg("seawatch stopped")
	return nil
}
