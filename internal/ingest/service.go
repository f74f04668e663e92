// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
	"github.com/tomtom215/seawatch/internal/tracker"
)

// Source types.
const (
	SourceFile = "file"
	SourceMQTT = "mqtt"
	SourceNATS = "nats"
)

// Config selects and configures the message source.
type Config struct {
	Source string     `koanf:"source" validate:"oneof=file mqtt nats"`
	File   FileConfig `koanf:"file"`
	MQTT   MQTTConfig `koanf:"mqtt"`
	NATS   NATSConfig `koanf:"nats"`
}

// DefaultConfig returns the ingest defaults.
func DefaultConfig() Config {
	return Config{
		Source: SourceFile,
		File:   FileConfig{Path: "-"},
		MQTT:   DefaultMQTTConfig(),
		NATS:   DefaultNATSConfig(),
	}
}

// NewSource creates the configured source.
func NewSource(cfg Config) (Source, error) {
	switch cfg.Source {
	case SourceFile:
		if cfg.File.Path == "" {
			return nil, errors.New("ingest.file.path is required")
		}
		return NewFileSource(cfg.File), nil
	case SourceMQTT:
		return NewMQTTSource(cfg.MQTT), nil
	case SourceNATS:
		return NewNATSSource(cfg.NATS), nil
	default:
		return nil, fmt.Errorf("unknown ingest source %q", cfg.Source)
	}
}

// Stats are the ingest counters.
type Stats struct {
	Received int64            `json:"received"`
	Accepted int64            `json:"accepted"`
	Filtered map[string]int64 `json:"filtered"`
	Rejected int64            `json:"rejected"`
}

// Service runs a source and applies its messages to the tracker.
type Service struct {
	source  Source
	tracker *tracker.Service
	filters Chain

	received atomic.Int64
	accepted atomic.Int64
	rejected atomic.Int64

	filtered map[string]*atomic.Int64
}

// NewService creates the ingest service.
func NewService(source Source, t *tracker.Service, filters Chain) *Service {
	s := &Service{
		source:   source,
		tracker:  t,
		filters:  filters,
		filtered: make(map[string]*atomic.Int64, len(filters)),
	}
	for _, f := range filters {
		s.filtered[f.Name()] = new(atomic.Int64)
	}
	return s
}

// TrackNames looks vessel names up in the tracker, for ShipNameFilter.
func TrackNames(t *tracker.Service) NameLookup {
	return func(mmsi int) string {
		if track, ok := t.Track(mmsi); ok {
			return track.ShipName()
		}
		return ""
	}
}

func (s *Service) String() string { return "ingest(" + s.source.String() + ")" }

// Serve implements suture.Service. It returns nil when a finite source
// reaches its end.
func (s *Service) Serve(ctx context.Context) error {
	logging.Info().Str("source", s.source.String()).Msg("ingest started")
	err := s.source.Run(ctx, s.Handle)
	s.tracker.Drain()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("ingest from %s: %w", s.source, err)
	}
	st := s.Stats()
	logging.Info().
		Int64("received", st.Received).
		Int64("accepted", st.Accepted).
		Int64("rejected", st.Rejected).
		Msg("ingest stopped")
	return err
}

// Handle filters m and applies it to the tracker.
func (s *Service) Handle(m Message) {
	s.received.Add(1)
	metrics.RecordMessageReceived(string(m.Kind))

	if reason, rejected := s.filters.Reject(m); rejected {
		s.filtered[reason].Add(1)
		metrics.RecordMessageDropped(reason)
		logging.Trace().Int("mmsi", m.MMSI).Str("filter", reason).Msg("message filtered")
		return
	}

	if s.tracker.Update(m.Timestamp, m.MMSI, m.Report()) {
		s.accepted.Add(1)
	} else {
		s.rejected.Add(1)
	}
}

// Stats returns a snapshot of the counters.
func (s *Service) Stats() Stats {
	st := Stats{
		Received: s.received.Load(),
		Accepted: s.accepted.Load(),
		Rejected: s.rejected.Load(),
		Filtered: make(map[string]int64, len(s.filtered)),
	}
	for name, n := range s.filtered {
		st.Filtered[name] = n.Load()
	}
	return st
}
