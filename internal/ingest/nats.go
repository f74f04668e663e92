// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/tomtom215/seawatch/internal/logging"
)

// NATSConfig configures the NATS source.
type NATSConfig struct {
	URL        string `koanf:"url" validate:"omitempty,url"`
	Subject    string `koanf:"subject"`
	QueueGroup string `koanf:"queue_group"`

	// JetStream consumes from a stream with a durable consumer instead of
	// a plain core NATS subscription.
	JetStream   bool   `koanf:"jetstream"`
	DurableName string `koanf:"durable_name"`

	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// DefaultNATSConfig returns the NATS defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           "nats://127.0.0.1:4222",
		Subject:       "ais.messages",
		DurableName:   "seawatch-ingest",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// NATSSource consumes messages from a NATS subject through watermill.
type NATSSource struct {
	cfg     NATSConfig
	logger  watermill.LoggerAdapter
	limiter *rate.Limiter
}

// NewNATSSource creates the source.
func NewNATSSource(cfg NATSConfig) *NATSSource {
	return &NATSSource{
		cfg:     cfg,
		logger:  logging.NewWatermillAdapter("ingest"),
		limiter: newDecodeErrorLimiter(),
	}
}

func (s *NATSSource) String() string { return "nats:" + s.cfg.URL + "/" + s.cfg.Subject }

func (s *NATSSource) subscriber() (message.Subscriber, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(s.cfg.MaxReconnects),
		natsgo.ReconnectWait(s.cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				s.logger.Error("ingest subscriber disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			s.logger.Info("ingest subscriber reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	jsCfg := wmNats.JetStreamConfig{Disabled: true}
	if s.cfg.JetStream {
		jsCfg = wmNats.JetStreamConfig{
			AutoProvision:    true,
			DurablePrefix:    s.cfg.DurableName,
			SubscribeOptions: []natsgo.SubOpt{natsgo.DeliverNew()},
		}
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              s.cfg.URL,
		QueueGroupPrefix: s.cfg.QueueGroup,
		SubscribersCount: 1,
		CloseTimeout:     5 * time.Second,
		AckWaitTimeout:   30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      rawUnmarshaler{},
		JetStream:        jsCfg,
	}, s.logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	return sub, nil
}

// Run subscribes and forwards messages until ctx is cancelled.
func (s *NATSSource) Run(ctx context.Context, sink func(Message)) error {
	sub, err := s.subscriber()
	if err != nil {
		return err
	}
	defer sub.Close()

	messages, err := sub.Subscribe(ctx, s.cfg.Subject)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.cfg.Subject, err)
	}
	logging.Info().Str("url", s.cfg.URL).Str("subject", s.cfg.Subject).Msg("NATS subscribed")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return ctx.Err()
			}
			m, err := Decode(msg.Payload)
			msg.Ack()
			if err != nil {
				logDecodeError(s.limiter, s.String(), err)
				continue
			}
			sink(m)
		}
	}
}

// rawUnmarshaler accepts plain NATS payloads published by AIS feeders that
// know nothing about watermill headers.
type rawUnmarshaler struct{}

func (rawUnmarshaler) Unmarshal(msg *natsgo.Msg) (*message.Message, error) {
	id := ""
	if msg.Header != nil {
		id = msg.Header.Get(natsgo.MsgIdHdr)
	}
	if id == "" {
		id = watermill.NewUUID()
	}
	return message.NewMessage(id, msg.Data), nil
}
