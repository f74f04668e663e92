// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package notify

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/seawatch/internal/models"
)

// RedisPublisher is the part of the redis client the notifier uses.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes event JSON on a redis pub/sub channel.
type RedisNotifier struct {
	client  RedisPublisher
	channel string
	closer  func() error
}

// NewRedisNotifier connects to cfg.URL. It returns nil without a URL.
func NewRedisNotifier(cfg RedisConfig) (*RedisNotifier, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	n := NewRedisNotifierWithClient(client, cfg.Channel)
	n.closer = client.Close
	return n, nil
}

// NewRedisNotifierWithClient publishes through an existing client.
func NewRedisNotifierWithClient(client RedisPublisher, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultRedisConfig().Channel
	}
	return &RedisNotifier{client: client, channel: channel}
}

// Name returns the notifier name.
func (n *RedisNotifier) Name() string {
	return "redis"
}

// Enabled always returns true.
func (n *RedisNotifier) Enabled() bool {
	return true
}

// Send publishes the event. Zero receivers is not an error.
func (n *RedisNotifier) Send(ctx context.Context, e *models.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish on %s: %w", n.channel, err)
	}
	return nil
}

// Close closes the client if the notifier created it.
func (n *RedisNotifier) Close() error {
	if n.closer == nil {
		return nil
	}
	return n.closer()
}
