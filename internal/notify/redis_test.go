// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/seawatch/internal/models"
)

type fakeRedis struct {
	channel string
	payload []byte
	err     error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx, "publish", channel, message)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisNotifier_Send(t *testing.T) {
	client := &fakeRedis{}
	n := NewRedisNotifierWithClient(client, "")

	e := newEvent()
	require.NoError(t, n.Send(context.Background(), e))

	assert.Equal(t, "seawatch:events", client.channel)
	var got models.Event
	require.NoError(t, json.Unmarshal(client.payload, &got))
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, models.EventClassCloseEncounter, got.Class)
}

func TestRedisNotifier_PublishError(t *testing.T) {
	client := &fakeRedis{err: errors.New("connection refused")}
	n := NewRedisNotifierWithClient(client, "alerts")

	err := n.Send(context.Background(), newEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alerts")
	assert.NoError(t, n.Close())
}

func TestNewRedisNotifier(t *testing.T) {
	n, err := NewRedisNotifier(RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = NewRedisNotifier(RedisConfig{URL: "redis://localhost:6379/2", Channel: "c"})
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "redis", n.Name())
	assert.NoError(t, n.Close())
}
