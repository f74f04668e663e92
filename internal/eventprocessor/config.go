// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package eventprocessor

import (
	"fmt"
	"time"
)

// Transports.
const (
	TransportChannel = "gochannel"
	TransportNATS    = "nats"
)

// Config configures the outbound publisher.
type Config struct {
	// Enabled controls whether events are published at all.
	Enabled bool `koanf:"enabled"`

	// Transport is gochannel or nats.
	Transport string `koanf:"transport" validate:"oneof=gochannel nats"`

	// URL is the NATS server URL. Ignored for gochannel; when empty with
	// the embedded server running, the supervisor fills it in.
	URL string `koanf:"url"`

	// TopicPrefix prefixes every topic.
	TopicPrefix string `koanf:"topic_prefix" validate:"required"`

	// JetStream publishes through JetStream with stream auto-provisioning
	// instead of core NATS.
	JetStream bool `koanf:"jetstream"`

	MaxReconnects   int           `koanf:"max_reconnects"`
	ReconnectWait   time.Duration `koanf:"reconnect_wait"`
	ReconnectBuffer int           `koanf:"reconnect_buffer"`

	// Buffer is the gochannel output buffer per subscriber.
	Buffer int64 `koanf:"buffer" validate:"gte=0"`

	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// DefaultConfig returns an enabled in-process publisher.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		Transport:       TransportChannel,
		URL:             "",
		TopicPrefix:     "seawatch",
		MaxReconnects:   -1, // Unlimited
		ReconnectWait:   2 * time.Second,
		ReconnectBuffer: 8 * 1024 * 1024,
		Buffer:          256,
		CircuitBreaker:  DefaultCircuitBreakerConfig("event-publisher"),
	}
}

// EventsTopic is the topic abnormal events are published on.
func (c Config) EventsTopic() string {
	return c.TopicPrefix + ".events"
}

// FreeFlowTopic is the topic free flow results are published on.
func (c Config) FreeFlowTopic() string {
	return c.TopicPrefix + ".freeflow"
}

// Validate checks settings the struct tags cannot express.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Transport {
	case TransportChannel:
	case TransportNATS:
		if c.URL == "" {
			return fmt.Errorf("%w: nats transport requires a url", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport)
	}
	if c.TopicPrefix == "" {
		return fmt.Errorf("%w: empty topic prefix", ErrInvalidConfig)
	}
	return nil
}

// ServerConfig configures the embedded NATS server.
type ServerConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Host      string `koanf:"host"`
	Port      int    `koanf:"port" validate:"gte=-1,lte=65535"`
	JetStream bool   `koanf:"jetstream"`
	StoreDir  string `koanf:"store_dir"`
	MaxMemory int64  `koanf:"max_memory" validate:"gte=0"`
	MaxStore  int64  `koanf:"max_store" validate:"gte=0"`
}

// DefaultServerConfig returns a disabled embedded server listening on the
// standard port when turned on.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Enabled:   false,
		Host:      "127.0.0.1",
		Port:      4222,
		JetStream: false,
		StoreDir:  "./data/nats",
		MaxMemory: 256 << 20, // 256MB
		MaxStore:  1 << 30,   // 1GB
	}
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	Name             string        `koanf:"name"`
	MaxRequests      uint32        `koanf:"max_requests"`      // Allowed in half-open state
	Interval         time.Duration `koanf:"interval"`          // Reset interval for counts
	Timeout          time.Duration `koanf:"timeout"`           // Time to stay open
	FailureThreshold uint32        `koanf:"failure_threshold"` // Failures before opening
}

// DefaultCircuitBreakerConfig returns production defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}
