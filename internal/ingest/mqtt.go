// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/time/rate"

	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
)

// MQTTConfig configures the MQTT source.
type MQTTConfig struct {
	Broker   string `koanf:"broker" validate:"omitempty,url"`
	Topic    string `koanf:"topic"`
	ClientID string `koanf:"client_id"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	QoS      byte   `koanf:"qos" validate:"lte=2"`

	// Buffer is the number of received messages waiting for the tracker.
	// Messages arriving while it is full are dropped.
	Buffer int `koanf:"buffer" validate:"gte=0"`

	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// DefaultMQTTConfig returns the MQTT defaults.
func DefaultMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Broker:         "tcp://localhost:1883",
		Topic:          "ais/#",
		ClientID:       "seawatch",
		QoS:            0,
		Buffer:         4096,
		ConnectTimeout: 10 * time.Second,
	}
}

// MQTTSource subscribes to a topic carrying one JSON message per publish.
type MQTTSource struct {
	cfg      MQTTConfig
	messages chan Message
	limiter  *rate.Limiter

	// newClient is replaced in tests.
	newClient func(*mqtt.ClientOptions) mqtt.Client
}

// NewMQTTSource creates the source.
func NewMQTTSource(cfg MQTTConfig) *MQTTSource {
	def := DefaultMQTTConfig()
	if cfg.Buffer <= 0 {
		cfg.Buffer = def.Buffer
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = def.ConnectTimeout
	}
	if cfg.ClientID == "" {
		cfg.ClientID = def.ClientID
	}
	return &MQTTSource{
		cfg:       cfg,
		messages:  make(chan Message, cfg.Buffer),
		limiter:   newDecodeErrorLimiter(),
		newClient: mqtt.NewClient,
	}
}

func (s *MQTTSource) String() string { return "mqtt:" + s.cfg.Broker + "/" + s.cfg.Topic }

// Run connects, subscribes on every (re)connect and forwards messages to
// sink until ctx is cancelled.
func (s *MQTTSource) Run(ctx context.Context, sink func(Message)) error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.cfg.Broker).
		SetClientID(fmt.Sprintf("%s-%d", s.cfg.ClientID, time.Now().Unix())).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetConnectTimeout(s.cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(30 * time.Second).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logging.Warn().Err(err).Str("broker", s.cfg.Broker).Msg("MQTT connection lost, reconnecting")
		})
	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
		opts.SetPassword(s.cfg.Password)
	}

	client := s.newClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(s.cfg.ConnectTimeout) {
		return fmt.Errorf("connect to %s: timeout", s.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to %s: %w", s.cfg.Broker, err)
	}
	defer client.Disconnect(1000)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-s.messages:
			sink(m)
		}
	}
}

func (s *MQTTSource) onConnect(client mqtt.Client) {
	token := client.Subscribe(s.cfg.Topic, s.cfg.QoS, s.onMessage)
	if !token.WaitTimeout(5 * time.Second) {
		logging.Error().Str("topic", s.cfg.Topic).Msg("MQTT subscribe timeout")
		return
	}
	if err := token.Error(); err != nil {
		logging.Error().Err(err).Str("topic", s.cfg.Topic).Msg("MQTT subscribe failed")
		return
	}
	logging.Info().Str("broker", s.cfg.Broker).Str("topic", s.cfg.Topic).Msg("MQTT subscribed")
}

var errBufferFull = errors.New("buffer full")

// onMessage runs on paho's goroutine. It never blocks: when the buffer is
// full the newest message is dropped.
func (s *MQTTSource) onMessage(_ mqtt.Client, msg mqtt.Message) {
	m, err := Decode(msg.Payload())
	if err != nil {
		logDecodeError(s.limiter, s.String(), fmt.Errorf("topic %s: %w", msg.Topic(), err))
		return
	}
	select {
	case s.messages <- m:
	default:
		metrics.RecordMessageDropped("backpressure")
		if s.limiter.Allow() {
			logging.Warn().Err(errBufferFull).Int("mmsi", m.MMSI).Msg("dropping MQTT message")
		}
	}
}
