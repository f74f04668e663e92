// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package config

import (
	"fmt"

	"github.com/tomtom215/seawatch/internal/categorizer"
	"github.com/tomtom215/seawatch/internal/eventprocessor"
	"github.com/tomtom215/seawatch/internal/geometry"
	"github.com/tomtom215/seawatch/internal/ingest"
	"github.com/tomtom215/seawatch/internal/validation"
)

// Validate checks the struct tags of every section, then the rules that
// span fields or sections.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	checks := []func() error{
		c.validateStatistics,
		c.validateDrift,
		c.validateEvents,
		c.validateIngest,
		c.validatePublisher,
		c.validateAreas,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateStatistics() error {
	if _, err := categorizer.NewSpeedTable(c.Statistics.SpeedBounds); err != nil {
		return fmt.Errorf("statistics.speed_bounds: %w", err)
	}
	if c.Statistics.ReadOnly && c.Statistics.Import != "" {
		return fmt.Errorf("statistics.import requires statistics.read_only=false")
	}
	return nil
}

// validateDrift keeps the drift period inside the track history, since a
// track never holds a longer span of reports.
func (c *Config) validateDrift() error {
	if !c.Analysis.Drift.Enabled {
		return nil
	}
	if c.Analysis.Drift.Period >= c.Tracker.HistoryWindow {
		return fmt.Errorf("analysis.drift.period %s must be shorter than tracker.history_window %s",
			c.Analysis.Drift.Period, c.Tracker.HistoryWindow)
	}
	return nil
}

func (c *Config) validateEvents() error {
	if c.Events.Store == EventStoreDuckDB && c.Events.Path == "" {
		return fmt.Errorf("events.path is required when events.store=%s", EventStoreDuckDB)
	}
	return nil
}

func (c *Config) validateIngest() error {
	switch c.Ingest.Source {
	case ingest.SourceFile:
		if c.Ingest.File.Path == "" {
			return fmt.Errorf("ingest.file.path is required when ingest.source=%s", ingest.SourceFile)
		}
	case ingest.SourceMQTT:
		if c.Ingest.MQTT.Broker == "" || c.Ingest.MQTT.Topic == "" {
			return fmt.Errorf("ingest.mqtt.broker and ingest.mqtt.topic are required when ingest.source=%s", ingest.SourceMQTT)
		}
	case ingest.SourceNATS:
		if c.Ingest.NATS.URL == "" || c.Ingest.NATS.Subject == "" {
			return fmt.Errorf("ingest.nats.url and ingest.nats.subject are required when ingest.source=%s", ingest.SourceNATS)
		}
	}
	return nil
}

// validatePublisher lets a nats publisher without a URL through when the
// embedded server runs, since it connects to that server.
func (c *Config) validatePublisher() error {
	pc := c.Publisher
	if pc.Enabled && pc.Transport == eventprocessor.TransportNATS && pc.URL == "" {
		if !c.NATS.Enabled {
			return fmt.Errorf("publisher.url is required unless nats.enabled=true")
		}
		pc.URL = "nats://embedded"
	}
	if err := pc.Validate(); err != nil {
		return fmt.Errorf("publisher: %w", err)
	}
	if c.NATS.Enabled && c.NATS.JetStream && c.NATS.StoreDir == "" {
		return fmt.Errorf("nats.store_dir is required when nats.jetstream=true")
	}
	return nil
}

func (c *Config) validateAreas() error {
	if err := validateBox("filter.location", c.Filter.Location); err != nil {
		return err
	}
	return validateBox("analysis.freeflow.bbox", c.Analysis.FreeFlow.Area)
}

// validateBox accepts the zero box, which disables the area.
func validateBox(name string, b geometry.BoundingBox) error {
	if b.IsZero() {
		return nil
	}
	if b.North > 90 || b.South < -90 || b.East > 180 || b.West < -180 {
		return fmt.Errorf("%s %s is outside the valid coordinate range", name, b)
	}
	if b.North <= b.South || b.East <= b.West {
		return fmt.Errorf("%s %s is empty", name, b)
	}
	return nil
}
