// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/seawatch/internal/analysis"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
	"github.com/tomtom215/seawatch/internal/models"
)

// Publisher wraps a watermill publisher with a circuit breaker. It
// publishes saved events and implements analysis.FreeFlowSink.
type Publisher struct {
	cfg            Config
	publisher      message.Publisher
	subscriber     message.Subscriber // gochannel only
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]
	mu             sync.RWMutex
	closed         bool
	logger         watermill.LoggerAdapter
	now            func() time.Time
}

var _ analysis.FreeFlowSink = (*Publisher)(nil)

// NewPublisher creates the publisher for cfg.Transport.
func NewPublisher(cfg Config, logger watermill.LoggerAdapter) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewWatermillAdapter("eventprocessor")
	}

	p := &Publisher{
		cfg:            cfg,
		circuitBreaker: NewCircuitBreaker(cfg.CircuitBreaker),
		logger:         logger,
		now:            time.Now,
	}

	switch cfg.Transport {
	case TransportNATS:
		pub, err := newNATSPublisher(cfg, logger)
		if err != nil {
			return nil, err
		}
		p.publisher = pub
	default:
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.Buffer,
		}, logger)
		p.publisher = ch
		p.subscriber = ch
	}

	logging.Info().
		Str("transport", cfg.Transport).
		Str("events_topic", cfg.EventsTopic()).
		Str("freeflow_topic", cfg.FreeFlowTopic()).
		Msg("event publisher ready")
	return p, nil
}

func newNATSPublisher(cfg Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	natsOpts := []natsgo.Option{
		natsgo.Name("seawatch-publisher"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      !cfg.JetStream,
			AutoProvision: cfg.JetStream,
			TrackMsgId:    cfg.JetStream,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return pub, nil
}

// Publish sends msg to topic through the circuit breaker.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	msg.SetContext(ctx)
	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}

	_, err := p.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(topic, msg)
	})
	metrics.RecordPublish(topic, err)
	return err
}

// PublishEvent publishes a saved event on the events topic.
func (p *Publisher) PublishEvent(ctx context.Context, e *models.Event) error {
	data, err := Marshal(NewEventEnvelope(e, p.now()))
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("event_id", e.ID.String())
	msg.Metadata.Set("class", e.Class.String())
	msg.Metadata.Set("state", string(e.State))

	return p.Publish(ctx, p.cfg.EventsTopic(), msg)
}

// PublishFreeFlow publishes one message per free flow result. Every record
// is attempted; the errors are joined.
func (p *Publisher) PublishFreeFlow(ctx context.Context, data []analysis.FreeFlowData) error {
	var errs []error
	for _, d := range data {
		body, err := Marshal(NewFreeFlowEnvelope(d, p.now()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		msg := message.NewMessage(watermill.NewUUID(), body)
		msg.Metadata.Set("mmsi", fmt.Sprintf("%d", d.Vessel.MMSI))
		if err := p.Publish(ctx, p.cfg.FreeFlowTopic(), msg); err != nil {
			errs = append(errs, fmt.Errorf("publish free flow for %d: %w", d.Vessel.MMSI, err))
		}
	}
	return errors.Join(errs...)
}

// Subscribe subscribes to topic on the in-process transport.
func (p *Publisher) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if p.subscriber == nil {
		return nil, ErrNoSubscriber
	}
	return p.subscriber.Subscribe(ctx, topic)
}

// Config returns the publisher's configuration.
func (p *Publisher) Config() Config {
	return p.cfg
}

// Healthy reports whether publishes can currently go through.
func (p *Publisher) Healthy() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if p.circuitBreaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("circuit breaker %s is open", p.circuitBreaker.Name())
	}
	return nil
}

// Close shuts down the publisher. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.publisher.Close()
}
