// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/tomtom215/seawatch/internal/analysis"
	"github.com/tomtom215/seawatch/internal/api"
	"github.com/tomtom215/seawatch/internal/categorizer"
	"github.com/tomtom215/seawatch/internal/config"
	"github.com/tomtom215/seawatch/internal/eventprocessor"
	"github.com/tomtom215/seawatch/internal/events"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/statistics"
	"github.com/tomtom215/seawatch/internal/supervisor/services"
)

// statisticsStore is the badger store and the repository the analyses
// read, which may be a cache in front of it.
type statisticsStore struct {
	badger *statistics.BadgerRepository
	repo   statistics.Repository
}

func (s *statisticsStore) Close() {
	if err := s.badger.Close(); err != nil {
		logging.Warn().Err(err).Msg("close statistics store")
	}
}

// openStatistics opens the trained statistics, importing a dump first
// when statistics.import is set.
func openStatistics(ctx context.Context, cfg *config.Config) (*statisticsStore, error) {
	bad, err := statistics.OpenBadger(statistics.BadgerConfig{
		Path:           cfg.Statistics.Path,
		ReadOnly:       cfg.Statistics.ReadOnly,
		GridResolution: cfg.Grid.Resolution,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Statistics.Import != "" {
		if err := importStatistics(ctx, bad, cfg.Statistics.Import); err != nil {
			bad.Close()
			return nil, err
		}
	}

	s := &statisticsStore{badger: bad, repo: bad}
	if cfg.Statistics.CacheSize > 0 {
		s.repo = statistics.NewCachedRepository(bad, cfg.Statistics.CacheSize)
	}
	return s, nil
}

func importStatistics(ctx context.Context, repo statistics.Repository, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open statistics import: %w", err)
	}
	defer f.Close()

	start := time.Now()
	n, err := statistics.Import(ctx, repo, f)
	if err != nil {
		return fmt.Errorf("import statistics from %s: %w", path, err)
	}
	logging.Info().
		Str("path", path).
		Int("histograms", n).
		Dur("duration", time.Since(start)).
		Msg("statistics imported")
	return nil
}

// validateStatistics checks the store serves every enabled statistical
// analysis at the configured grid resolution and speed table.
func validateStatistics(ctx context.Context, cfg *config.Config, speeds categorizer.SpeedTable, repo statistics.Repository) error {
	var features []string
	if cfg.Analysis.CourseOverGround.Enabled {
		features = append(features, statistics.FeatureCourseOverGround)
	}
	if cfg.Analysis.SpeedOverGround.Enabled {
		features = append(features, statistics.FeatureSpeedOverGround)
	}
	if cfg.Analysis.ShipTypeAndSize.Enabled {
		features = append(features, statistics.FeatureShipTypeAndSize)
	}
	if len(features) == 0 {
		return nil
	}
	if err := statistics.Validate(ctx, repo, cfg.Grid.Resolution, features...); err != nil {
		return fmt.Errorf("statistics cannot serve the enabled analyses: %w", err)
	}
	if cfg.Analysis.SpeedOverGround.Enabled {
		if err := statistics.ValidateSpeedTable(ctx, repo, speeds); err != nil {
			return fmt.Errorf("statistics cannot serve the speed over ground analysis: %w", err)
		}
	}
	return nil
}

// eventStore is the configured repository. checkpointer is set for DuckDB.
type eventStore struct {
	repo         events.Repository
	checkpointer services.Checkpointer
	close        func() error
}

func (s *eventStore) Close() {
	if s.close == nil {
		return
	}
	if err := s.close(); err != nil {
		logging.Warn().Err(err).Msg("close event store")
	}
}

func openEventStore(ctx context.Context, cfg *config.Config) (*eventStore, error) {
	if cfg.Events.Store != config.EventStoreDuckDB {
		logging.Info().Msg("events kept in memory")
		return &eventStore{repo: events.NewMemoryRepository()}, nil
	}

	repo, err := events.OpenDuckDB(ctx, cfg.Events.Path)
	if err != nil {
		return nil, err
	}
	return &eventStore{repo: repo, checkpointer: repo, close: repo.Close}, nil
}

// startEmbeddedNATS starts the embedded server when nats.enabled is set.
func startEmbeddedNATS(cfg *config.Config) (*eventprocessor.EmbeddedServer, error) {
	if !cfg.NATS.Enabled {
		return nil, nil
	}
	srv, err := eventprocessor.NewEmbeddedServer(cfg.NATS)
	if err != nil {
		return nil, fmt.Errorf("start embedded nats: %w", err)
	}
	return srv, nil
}

// newPublisher creates the event publisher, pointing a NATS publisher
// without a URL at the embedded server. It returns nil when disabled.
func newPublisher(cfg *config.Config, embedded *eventprocessor.EmbeddedServer) (*eventprocessor.Publisher, error) {
	pc := cfg.Publisher
	if !pc.Enabled {
		return nil, nil
	}
	if pc.Transport == eventprocessor.TransportNATS && pc.URL == "" && embedded != nil {
		pc.URL = embedded.ClientURL()
	}

	p, err := eventprocessor.NewPublisher(pc, logging.NewWatermillAdapter("eventprocessor"))
	if err != nil {
		return nil, fmt.Errorf("create event publisher: %w", err)
	}
	logging.Info().
		Str("transport", pc.Transport).
		Str("events_topic", pc.EventsTopic()).
		Msg("event publisher ready")
	return p, nil
}

func healthChecks(store *eventStore, publisher *eventprocessor.Publisher) []api.HealthCheck {
	checks := []api.HealthCheck{{
		Name: "event-store",
		Check: func(ctx context.Context) error {
			_, err := store.repo.FindRecent(ctx, time.Now(), 1)
			return err
		},
	}}
	if publisher != nil {
		checks = append(checks, api.HealthCheck{
			Name:  "event-publisher",
			Check: func(context.Context) error { return publisher.Healthy() },
		})
	}
	return checks
}

// AnalysisToggler is satisfied by *analysis.Engine.
type AnalysisToggler interface {
	SetEnabled(name string, enabled bool) error
}

// watchConfig reloads the config file on change and applies the logging
// settings and analysis enable flags. Other settings need a restart.
func watchConfig(engine AnalysisToggler) {
	path := config.ConfigFile()
	if path == "" {
		return
	}

	var mu sync.Mutex
	err := config.WatchConfigFile(path, func() {
		mu.Lock()
		defer mu.Unlock()

		cfg, err := config.LoadWithKoanf()
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("config reload rejected")
			return
		}
		logging.Init(cfg.Logging)
		applyAnalysisFlags(engine, cfg.Analysis)
		logging.Info().Str("path", path).Msg("configuration reloaded")
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("config file not watched")
	}
}

func applyAnalysisFlags(engine AnalysisToggler, cfg analysis.Config) {
	for name, enabled := range cfg.EnabledByName() {
		if err := engine.SetEnabled(name, enabled); err != nil {
			logging.Warn().Err(err).Str("analysis", name).Msg("cannot apply enable flag")
		}
	}
}
