// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

// Package notify fans saved abnormal events out to external consumers:
// an HTTP webhook, a redis pub/sub channel, the websocket hub and the
// watermill event publisher.
package notify

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/tomtom215/seawatch/internal/analysis"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
	"github.com/tomtom215/seawatch/internal/models"
)

// Notifier delivers one event to one destination.
type Notifier interface {
	Send(ctx context.Context, e *models.Event) error
	Name() string
	Enabled() bool
}

// Delivery results recorded in metrics.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Dispatcher sends every event to all enabled notifiers concurrently.
// It implements analysis.Notifier.
type Dispatcher struct {
	notifiers []Notifier
	closers   []io.Closer
	timeout   time.Duration
	wg        sync.WaitGroup
}

var _ analysis.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. Each delivery gets its own timeout,
// detached from the caller's context.
func NewDispatcher(timeout time.Duration, notifiers ...Notifier) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	return &Dispatcher{notifiers: notifiers, timeout: timeout}
}

// New builds the dispatcher for cfg. hub and publisher are optional and
// only used when cfg enables them.
func New(cfg Config, hub EventBroadcaster, publisher EventPublisher) (*Dispatcher, error) {
	d := NewDispatcher(cfg.Timeout)

	if cfg.Webhook.URL != "" {
		d.Add(NewWebhookNotifier(cfg.Webhook))
	}
	redisNotifier, err := NewRedisNotifier(cfg.Redis)
	if err != nil {
		return nil, err
	}
	if redisNotifier != nil {
		d.Add(redisNotifier)
		d.closers = append(d.closers, redisNotifier)
	}
	if cfg.Websocket && hub != nil {
		d.Add(NewBroadcastNotifier(hub))
	}
	if cfg.Publish && publisher != nil {
		d.Add(NewPublisherNotifier(publisher))
	}

	logging.Info().Strs("notifiers", d.Names()).Msg("event notifiers configured")
	return d, nil
}

// Add registers another notifier. Not safe for use once events flow.
func (d *Dispatcher) Add(n Notifier) {
	d.notifiers = append(d.notifiers, n)
}

// Names lists the enabled notifiers.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		if n.Enabled() {
			names = append(names, n.Name())
		}
	}
	return names
}

// Notify starts one delivery per enabled notifier and returns without
// waiting. The event is snapshotted first since analyses keep mutating it.
func (d *Dispatcher) Notify(ctx context.Context, e *models.Event) {
	snapshot := e.Clone()
	base := context.WithoutCancel(ctx)

	for _, n := range d.notifiers {
		if !n.Enabled() {
			continue
		}
		d.wg.Add(1)
		go func(n Notifier) {
			defer d.wg.Done()
			sendCtx, cancel := context.WithTimeout(base, d.timeout)
			defer cancel()

			if err := n.Send(sendCtx, snapshot); err != nil {
				metrics.RecordNotification(n.Name(), ResultFailure)
				logging.Warn().
					Err(err).
					Str("notifier", n.Name()).
					Str("event_id", snapshot.ID.String()).
					Msg("failed to deliver event notification")
				return
			}
			metrics.RecordNotification(n.Name(), ResultSuccess)
		}(n)
	}
}

// Wait blocks until in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close waits for in-flight deliveries and releases notifier resources.
func (d *Dispatcher) Close() error {
	d.Wait()
	var errs []error
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
