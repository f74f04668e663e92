// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/seawatch/internal/grid"
	"github.com/tomtom215/seawatch/internal/ingest"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Grid.Resolution != grid.DefaultResolution {
		t.Errorf("Grid.Resolution = %v, want %v", cfg.Grid.Resolution, grid.DefaultResolution)
	}
	if cfg.Events.Store != EventStoreMemory {
		t.Errorf("Events.Store = %q, want %q", cfg.Events.Store, EventStoreMemory)
	}
	if cfg.Ingest.Source != ingest.SourceFile {
		t.Errorf("Ingest.Source = %q, want %q", cfg.Ingest.Source, ingest.SourceFile)
	}
	if cfg.Analysis.CourseOverGround.PD != 0.001 {
		t.Errorf("Analysis.CourseOverGround.PD = %v, want 0.001", cfg.Analysis.CourseOverGround.PD)
	}
	if cfg.Analysis.FreeFlow.Enabled {
		t.Error("Analysis.FreeFlow.Enabled should be false by default")
	}
	if cfg.Training.CourseSOGMin != 2.0 {
		t.Errorf("Training.CourseSOGMin = %v, want 2.0", cfg.Training.CourseSOGMin)
	}
	if cfg.Behaviour.RaiseThreshold != 2 || cfg.Behaviour.LowerThreshold != 3 {
		t.Errorf("Behaviour thresholds = %d/%d, want 2/3", cfg.Behaviour.RaiseThreshold, cfg.Behaviour.LowerThreshold)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS.Enabled should be false by default")
	}
	if cfg.Logging.Output != nil {
		t.Error("Logging.Output should be left to logging.Init")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"ANALYSIS_COG_PD", "analysis.cog.pd"},
		{"analysis_cog_pd", "analysis.cog.pd"},
		{"HTTP_PORT", "server.port"},
		{"MQTT_BROKER", "ingest.mqtt.broker"},
		{"NATS_EMBEDDED", "nats.enabled"},
		{"TRACKER_BLACKLIST", "tracker.blacklist"},
		{"ANALYSIS_FREEFLOW_BBOX_NORTH", "analysis.freeflow.bbox.north"},
		{"REDIS_URL", "notify.redis.url"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Tracker.StaleAge != 30*time.Minute {
		t.Errorf("Tracker.StaleAge = %v, want 30m", cfg.Tracker.StaleAge)
	}
	if len(cfg.Statistics.SpeedBounds) < 2 {
		t.Errorf("Statistics.SpeedBounds = %v, want the default table", cfg.Statistics.SpeedBounds)
	}
}

func TestLoadWithKoanf_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seawatch.yaml")
	content := `
server:
  port: 9090
analysis:
  drift:
    period: 6m
    sog_max: 4.5
  freeflow:
    enabled: true
    bbox:
      north: 58.0
      east: 12.0
      south: 56.0
      west: 10.0
filter:
  shipname_skip:
    - PILOT*
    - TUG*
tracker:
  blacklist: [219000001, 219000002]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Analysis.Drift.Period != 6*time.Minute {
		t.Errorf("Drift.Period = %v, want 6m", cfg.Analysis.Drift.Period)
	}
	if cfg.Analysis.Drift.SOGMax != 4.5 {
		t.Errorf("Drift.SOGMax = %v, want 4.5", cfg.Analysis.Drift.SOGMax)
	}
	// Untouched siblings keep their defaults.
	if cfg.Analysis.Drift.SOGMin != 1.0 {
		t.Errorf("Drift.SOGMin = %v, want default 1.0", cfg.Analysis.Drift.SOGMin)
	}
	if !cfg.Analysis.FreeFlow.Enabled || cfg.Analysis.FreeFlow.Area.North != 58.0 {
		t.Errorf("FreeFlow = %+v, want enabled with north 58", cfg.Analysis.FreeFlow)
	}
	if len(cfg.Filter.ShipNameSkip) != 2 || cfg.Filter.ShipNameSkip[0] != "PILOT*" {
		t.Errorf("Filter.ShipNameSkip = %v", cfg.Filter.ShipNameSkip)
	}
	if len(cfg.Tracker.Blacklist) != 2 || cfg.Tracker.Blacklist[1] != 219000002 {
		t.Errorf("Tracker.Blacklist = %v", cfg.Tracker.Blacklist)
	}
}

func TestLoadWithKoanf_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seawatch.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("ANALYSIS_COG_PD", "0.0005")
	t.Setenv("TRACKER_STALE_AGE", "45m")
	t.Setenv("TRACKER_BLACKLIST", "1, 2,3")
	t.Setenv("FILTER_SHIPNAME_SKIP", "PILOT*,TUG")
	t.Setenv("INGEST_SOURCE", "mqtt")
	t.Setenv("MQTT_BROKER", "tcp://broker.example:1883")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Analysis.CourseOverGround.PD != 0.0005 {
		t.Errorf("CourseOverGround.PD = %v, want 0.0005", cfg.Analysis.CourseOverGround.PD)
	}
	if cfg.Tracker.StaleAge != 45*time.Minute {
		t.Errorf("Tracker.StaleAge = %v, want 45m", cfg.Tracker.StaleAge)
	}
	if len(cfg.Tracker.Blacklist) != 3 || cfg.Tracker.Blacklist[2] != 3 {
		t.Errorf("Tracker.Blacklist = %v, want [1 2 3]", cfg.Tracker.Blacklist)
	}
	if len(cfg.Filter.ShipNameSkip) != 2 || cfg.Filter.ShipNameSkip[1] != "TUG" {
		t.Errorf("Filter.ShipNameSkip = %v, want [PILOT* TUG]", cfg.Filter.ShipNameSkip)
	}
	if cfg.Ingest.Source != ingest.SourceMQTT || cfg.Ingest.MQTT.Broker != "tcp://broker.example:1883" {
		t.Errorf("Ingest = %+v", cfg.Ingest)
	}
}

func TestLoadWithKoanf_InvalidFails(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("EVENTS_STORE", "postgres")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected an error for an unknown event store")
	}
}

func TestFindConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
}

func TestConfigFile_None(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Chdir(t.TempDir())

	if got := ConfigFile(); got != "" {
		t.Errorf("ConfigFile() = %q, want empty", got)
	}
}
