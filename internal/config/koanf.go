// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/seawatch/internal/analysis"
	"github.com/tomtom215/seawatch/internal/api"
	"github.com/tomtom215/seawatch/internal/behaviour"
	"github.com/tomtom215/seawatch/internal/categorizer"
	"github.com/tomtom215/seawatch/internal/eventprocessor"
	"github.com/tomtom215/seawatch/internal/grid"
	"github.com/tomtom215/seawatch/internal/ingest"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/notify"
	"github.com/tomtom215/seawatch/internal/tracker"
	"github.com/tomtom215/seawatch/internal/training"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"seawatch.yaml",
	"seawatch.yml",
	"/etc/seawatch/config.yaml",
	"/etc/seawatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults of every section.
func defaultConfig() *Config {
	lc := logging.DefaultConfig()
	lc.Output = nil

	return &Config{
		Logging: lc,
		Server: ServerConfig{
			Enabled:         true,
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Grid: GridConfig{
			Resolution: grid.DefaultResolution,
		},
		Statistics: StatisticsConfig{
			Path:        "/data/statistics",
			ReadOnly:    true,
			CacheSize:   100000,
			SpeedBounds: append([]float64(nil), categorizer.DefaultSpeedBounds...),
		},
		Events: EventsConfig{
			Store: EventStoreMemory,
			Path:  "/data/events.duckdb",
		},
		Tracker:   tracker.DefaultConfig(),
		Behaviour: behaviour.DefaultConfig(),
		Analysis:  analysis.DefaultConfig(),
		Filter:    ingest.FilterConfig{},
		Ingest:    ingest.DefaultConfig(),
		Notify:    notify.DefaultConfig(),
		Publisher: eventprocessor.DefaultConfig(),
		NATS:      eventprocessor.DefaultServerConfig(),
		API:       api.DefaultConfig(),
		Training:  training.DefaultConfig(),
	}
}

// LoadWithKoanf loads configuration using a layered approach:
//  1. Defaults
//  2. Config file (optional)
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// ConfigFile returns the config file LoadWithKoanf reads, or "" when
// there is none.
func ConfigFile() string {
	return findConfigFile()
}

// sliceConfigPaths are read as comma separated lists from the environment.
var sliceConfigPaths = []string{
	"tracker.blacklist",
	"filter.shipname_skip",
	"statistics.speed_bounds",
	"api.cors_allowed_origins",
}

// processSliceFields splits string values of list settings on commas.
// Lists from the YAML file are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Logging
	"log_level":     "logging.level",
	"log_format":    "logging.format",
	"log_caller":    "logging.caller",
	"log_timestamp": "logging.timestamp",

	// HTTP server
	"http_enabled":          "server.enabled",
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Grid and statistics
	"grid_resolution":         "grid.resolution",
	"statistics_path":         "statistics.path",
	"statistics_read_only":    "statistics.read_only",
	"statistics_cache_size":   "statistics.cache_size",
	"statistics_speed_bounds": "statistics.speed_bounds",
	"statistics_import":       "statistics.import",
	"training_course_sog_min": "training.course_sog_min",

	// Event repository
	"events_store": "events.store",
	"events_path":  "events.path",

	// Tracker
	"tracker_workers":                 "tracker.workers",
	"tracker_queue_size":              "tracker.queue_size",
	"tracker_blacklist":               "tracker.blacklist",
	"tracker_stale_age":               "tracker.stale_age",
	"tracker_interpolation_threshold": "tracker.interpolation_threshold",
	"tracker_interpolation_step":      "tracker.interpolation_step",
	"tracker_time_event_period":       "tracker.time_event_period",
	"tracker_history_window":          "tracker.history_window",
	"tracker_sweep_interval":          "tracker.sweep_interval",

	// Behaviour
	"behaviour_raise_threshold": "behaviour.raise_threshold",
	"behaviour_lower_threshold": "behaviour.lower_threshold",

	// Statistical analyses
	"analysis_cog_enabled":                  "analysis.cog.enabled",
	"analysis_cog_pd":                       "analysis.cog.pd",
	"analysis_cog_cell_ship_count_min":      "analysis.cog.cell_ship_count_min",
	"analysis_cog_sog_min":                  "analysis.cog.sog_min",
	"analysis_cog_loa_min":                  "analysis.cog.loa_min",
	"analysis_sog_enabled":                  "analysis.sog.enabled",
	"analysis_sog_pd":                       "analysis.sog.pd",
	"analysis_sog_cell_ship_count_min":      "analysis.sog.cell_ship_count_min",
	"analysis_sog_sog_min":                  "analysis.sog.sog_min",
	"analysis_sog_loa_min":                  "analysis.sog.loa_min",
	"analysis_typesize_enabled":             "analysis.typesize.enabled",
	"analysis_typesize_pd":                  "analysis.typesize.pd",
	"analysis_typesize_cell_ship_count_min": "analysis.typesize.cell_ship_count_min",
	"analysis_typesize_sog_min":             "analysis.typesize.sog_min",
	"analysis_typesize_loa_min":             "analysis.typesize.loa_min",

	// Rule based analyses
	"analysis_drift_enabled":              "analysis.drift.enabled",
	"analysis_drift_sog_min":              "analysis.drift.sog_min",
	"analysis_drift_sog_max":              "analysis.drift.sog_max",
	"analysis_drift_cog_hdg":              "analysis.drift.cog_hdg",
	"analysis_drift_period":               "analysis.drift.period",
	"analysis_drift_distance":             "analysis.drift.distance",
	"analysis_drift_loa_min":              "analysis.drift.loa_min",
	"analysis_suddenspeedchange_enabled":  "analysis.suddenspeedchange.enabled",
	"analysis_suddenspeedchange_sog_high": "analysis.suddenspeedchange.sog_high",
	"analysis_suddenspeedchange_sog_low":  "analysis.suddenspeedchange.sog_low",
	"analysis_suddenspeedchange_decay":    "analysis.suddenspeedchange.decay",
	"analysis_suddenspeedchange_sustain":  "analysis.suddenspeedchange.sustain",
	"analysis_suddenspeedchange_loa_min":  "analysis.suddenspeedchange.loa_min",
	"analysis_closeencounter_enabled":     "analysis.closeencounter.enabled",
	"analysis_closeencounter_sog_min":     "analysis.closeencounter.sog_min",
	"analysis_closeencounter_radius":      "analysis.closeencounter.radius",
	"analysis_closeencounter_time_window": "analysis.closeencounter.time_window",
	"analysis_closeencounter_retention":   "analysis.closeencounter.retention",
	"analysis_closeencounter_dedupe_size": "analysis.closeencounter.dedupe_size",
	"analysis_freeflow_enabled":           "analysis.freeflow.enabled",
	"analysis_freeflow_run_period":        "analysis.freeflow.run_period",
	"analysis_freeflow_bbox_north":        "analysis.freeflow.bbox.north",
	"analysis_freeflow_bbox_east":         "analysis.freeflow.bbox.east",
	"analysis_freeflow_bbox_south":        "analysis.freeflow.bbox.south",
	"analysis_freeflow_bbox_west":         "analysis.freeflow.bbox.west",
	"analysis_freeflow_xl":                "analysis.freeflow.xl",
	"analysis_freeflow_xb":                "analysis.freeflow.xb",
	"analysis_freeflow_dcog":              "analysis.freeflow.dcog",
	"analysis_safetyzone_length":          "analysis.safetyzone.length",
	"analysis_safetyzone_breadth":         "analysis.safetyzone.breadth",
	"analysis_safetyzone_behind":          "analysis.safetyzone.behind",
	"analysis_store_timeout":              "analysis.store_timeout",

	// Ingest filters
	"filter_location_north": "filter.location.north",
	"filter_location_east":  "filter.location.east",
	"filter_location_south": "filter.location.south",
	"filter_location_west":  "filter.location.west",
	"filter_shipname_skip":  "filter.shipname_skip",
	"filter_downsampling":   "filter.downsampling",

	// Ingest source
	"ingest_source":              "ingest.source",
	"ingest_file_path":           "ingest.file.path",
	"ingest_file_speed":          "ingest.file.speed",
	"mqtt_broker":                "ingest.mqtt.broker",
	"mqtt_topic":                 "ingest.mqtt.topic",
	"mqtt_client_id":             "ingest.mqtt.client_id",
	"mqtt_username":              "ingest.mqtt.username",
	"mqtt_password":              "ingest.mqtt.password",
	"mqtt_qos":                   "ingest.mqtt.qos",
	"mqtt_buffer":                "ingest.mqtt.buffer",
	"mqtt_connect_timeout":       "ingest.mqtt.connect_timeout",
	"ingest_nats_url":            "ingest.nats.url",
	"ingest_nats_subject":        "ingest.nats.subject",
	"ingest_nats_queue_group":    "ingest.nats.queue_group",
	"ingest_nats_jetstream":      "ingest.nats.jetstream",
	"ingest_nats_durable_name":   "ingest.nats.durable_name",
	"ingest_nats_max_reconnects": "ingest.nats.max_reconnects",
	"ingest_nats_reconnect_wait": "ingest.nats.reconnect_wait",

	// Notifications
	"notify_timeout":     "notify.timeout",
	"notify_websocket":   "notify.websocket",
	"notify_publish":     "notify.publish",
	"webhook_url":        "notify.webhook.url",
	"webhook_rate_limit": "notify.webhook.rate_limit",
	"webhook_timeout":    "notify.webhook.timeout",
	"redis_url":          "notify.redis.url",
	"redis_channel":      "notify.redis.channel",

	// Event publisher
	"publisher_enabled":        "publisher.enabled",
	"publisher_transport":      "publisher.transport",
	"publisher_url":            "publisher.url",
	"publisher_topic_prefix":   "publisher.topic_prefix",
	"publisher_jetstream":      "publisher.jetstream",
	"publisher_max_reconnects": "publisher.max_reconnects",
	"publisher_reconnect_wait": "publisher.reconnect_wait",

	// Embedded NATS server
	"nats_embedded":   "nats.enabled",
	"nats_host":       "nats.host",
	"nats_port":       "nats.port",
	"nats_jetstream":  "nats.jetstream",
	"nats_store_dir":  "nats.store_dir",
	"nats_max_memory": "nats.max_memory",
	"nats_max_store":  "nats.max_store",

	// API
	"cors_origins":        "api.cors_allowed_origins",
	"rate_limit_requests": "api.rate_limit_requests",
	"rate_limit_window":   "api.rate_limit_window",
	"rate_limit_disabled": "api.rate_limit_disabled",
	"max_event_limit":     "api.max_event_limit",
	"ready_timeout":       "api.ready_timeout",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unknown variables map to "" and are ignored.
//
// Examples:
//   - ANALYSIS_COG_PD -> analysis.cog.pd
//   - HTTP_PORT -> server.port
//   - MQTT_BROKER -> ingest.mqtt.broker
//   - NATS_EMBEDDED -> nats.enabled
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile calls callback whenever the file at path changes.
// Callers reload with LoadWithKoanf and guard the result themselves.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("config watch failed")
			return
		}
		callback()
	})
}
