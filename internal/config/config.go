// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package config

import (
	"time"

	"github.com/tomtom215/seawatch/internal/analysis"
	"github.com/tomtom215/seawatch/internal/api"
	"github.com/tomtom215/seawatch/internal/behaviour"
	"github.com/tomtom215/seawatch/internal/eventprocessor"
	"github.com/tomtom215/seawatch/internal/ingest"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/notify"
	"github.com/tomtom215/seawatch/internal/tracker"
	"github.com/tomtom215/seawatch/internal/training"
)

// Event repository types.
const (
	EventStoreMemory = "memory"
	EventStoreDuckDB = "duckdb"
)

// Config holds all application configuration.
type Config struct {
	Logging    logging.Config              `koanf:"logging"`
	Server     ServerConfig                `koanf:"server"`
	Grid       GridConfig                  `koanf:"grid"`
	Statistics StatisticsConfig            `koanf:"statistics"`
	Events     EventsConfig                `koanf:"events"`
	Tracker    tracker.Config              `koanf:"tracker"`
	Behaviour  behaviour.Config            `koanf:"behaviour"`
	Analysis   analysis.Config             `koanf:"analysis"`
	Filter     ingest.FilterConfig         `koanf:"filter"`
	Ingest     ingest.Config               `koanf:"ingest"`
	Notify     notify.Config               `koanf:"notify"`
	Publisher  eventprocessor.Config       `koanf:"publisher"`
	NATS       eventprocessor.ServerConfig `koanf:"nats"`
	API        api.Config                  `koanf:"api"`
	Training   training.Config             `koanf:"training"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Enabled starts the HTTP API. Batch replays usually turn it off.
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port" validate:"gte=1,lte=65535"`

	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

// GridConfig sets the cell size of the statistics grid.
type GridConfig struct {
	// Resolution is the cell size in degrees. It must match the resolution
	// the statistics were trained with.
	Resolution float64 `koanf:"resolution" validate:"gt=0,lte=1"`
}

// StatisticsConfig locates the trained statistics.
type StatisticsConfig struct {
	// Path is the BadgerDB directory.
	Path     string `koanf:"path" validate:"required"`
	ReadOnly bool   `koanf:"read_only"`

	// CacheSize is the number of cells kept in the LRU. Zero disables the
	// cache.
	CacheSize int `koanf:"cache_size" validate:"gte=0"`

	// SpeedBounds are the speed bucket boundaries in knots the sog
	// statistics were trained with.
	SpeedBounds []float64 `koanf:"speed_bounds" validate:"min=2"`

	// Import loads a JSON lines statistics dump into the store at startup.
	Import string `koanf:"import"`
}

// EventsConfig selects the event repository.
type EventsConfig struct {
	Store string `koanf:"store" validate:"oneof=memory duckdb"`

	// Path is the DuckDB database file.
	Path string `koanf:"path"`
}
