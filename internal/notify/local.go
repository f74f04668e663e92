// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package notify

import (
	"context"

	"github.com/tomtom215/seawatch/internal/models"
)

// EventBroadcaster pushes events to live clients.
type EventBroadcaster interface {
	BroadcastEvent(e *models.Event)
}

// EventPublisher publishes events on a message bus.
type EventPublisher interface {
	PublishEvent(ctx context.Context, e *models.Event) error
}

// BroadcastNotifier hands events to the websocket hub.
type BroadcastNotifier struct {
	hub EventBroadcaster
}

// NewBroadcastNotifier wraps hub.
func NewBroadcastNotifier(hub EventBroadcaster) *BroadcastNotifier {
	return &BroadcastNotifier{hub: hub}
}

func (n *BroadcastNotifier) Name() string  { return "websocket" }
func (n *BroadcastNotifier) Enabled() bool { return n.hub != nil }

// Send queues the event. The hub drops it if its queue is full.
func (n *BroadcastNotifier) Send(_ context.Context, e *models.Event) error {
	n.hub.BroadcastEvent(e)
	return nil
}

// PublisherNotifier hands events to the watermill publisher.
type PublisherNotifier struct {
	publisher EventPublisher
}

// NewPublisherNotifier wraps publisher.
func NewPublisherNotifier(publisher EventPublisher) *PublisherNotifier {
	return &PublisherNotifier{publisher: publisher}
}

func (n *PublisherNotifier) Name() string  { return "publisher" }
func (n *PublisherNotifier) Enabled() bool { return n.publisher != nil }

func (n *PublisherNotifier) Send(ctx context.Context, e *models.Event) error {
	return n.publisher.PublishEvent(ctx, e)
}
