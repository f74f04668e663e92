// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package notify

import (
	"time"

	"github.com/tomtom215/seawatch/internal/eventprocessor"
)

// Config configures every notifier.
type Config struct {
	// Timeout bounds each delivery.
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`

	Webhook WebhookConfig `koanf:"webhook"`
	Redis   RedisConfig   `koanf:"redis"`

	// Websocket pushes events to connected websocket clients.
	Websocket bool `koanf:"websocket"`

	// Publish sends events to the watermill publisher.
	Publish bool `koanf:"publish"`
}

// DefaultConfig enables the in-process destinations only.
func DefaultConfig() Config {
	return Config{
		Timeout:   10 * time.Second,
		Webhook:   DefaultWebhookConfig(),
		Redis:     DefaultRedisConfig(),
		Websocket: true,
		Publish:   true,
	}
}

// WebhookConfig configures the webhook notifier.
type WebhookConfig struct {
	URL     string            `koanf:"url" validate:"omitempty,url"`
	Headers map[string]string `koanf:"headers"`

	// RateLimit is the minimum interval between two requests.
	RateLimit time.Duration `koanf:"rate_limit" validate:"gte=0"`

	// Timeout is the HTTP client timeout.
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`

	CircuitBreaker eventprocessor.CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// DefaultWebhookConfig returns a webhook config without a URL.
func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{
		RateLimit:      500 * time.Millisecond,
		Timeout:        10 * time.Second,
		CircuitBreaker: eventprocessor.DefaultCircuitBreakerConfig("webhook"),
	}
}

// RedisConfig configures the redis notifier.
type RedisConfig struct {
	// URL is a redis:// URL. Empty disables the notifier.
	URL     string `koanf:"url"`
	Channel string `koanf:"channel" validate:"required"`
}

// DefaultRedisConfig returns a redis config without a URL.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{Channel: "seawatch:events"}
}
