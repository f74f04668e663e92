// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package eventprocessor

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.EventsTopic() != "seawatch.events" {
		t.Errorf("EventsTopic() = %s", cfg.EventsTopic())
	}
	if cfg.FreeFlowTopic() != "seawatch.freeflow" {
		t.Errorf("FreeFlowTopic() = %s", cfg.FreeFlowTopic())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"gochannel", func(c *Config) {}, false},
		{"nats with url", func(c *Config) { c.Transport = TransportNATS; c.URL = "nats://127.0.0.1:4222" }, false},
		{"nats without url", func(c *Config) { c.Transport = TransportNATS }, true},
		{"unknown transport", func(c *Config) { c.Transport = "kafka" }, true},
		{"empty prefix", func(c *Config) { c.TopicPrefix = "" }, true},
		{"disabled skips checks", func(c *Config) { c.Enabled = false; c.Transport = "kafka" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
