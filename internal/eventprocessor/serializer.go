// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/seawatch/internal/analysis"
	"github.com/tomtom215/seawatch/internal/models"
)

// MessageVersion is the envelope version written by this package.
const MessageVersion = 1

// Message kinds.
const (
	KindEventOngoing = "event.ongoing"
	KindEventPast    = "event.past"
	KindFreeFlow     = "freeflow"
)

// Envelope is the JSON body of every published message. Exactly one of
// Event and FreeFlow is set.
type Envelope struct {
	Version     int                    `json:"version"`
	Kind        string                 `json:"kind"`
	PublishedAt time.Time              `json:"published_at"`
	Event       *models.Event          `json:"event,omitempty"`
	FreeFlow    *analysis.FreeFlowData `json:"free_flow,omitempty"`
}

// NewEventEnvelope wraps e. The kind follows the event state.
func NewEventEnvelope(e *models.Event, now time.Time) Envelope {
	kind := KindEventOngoing
	if !e.IsOngoing() {
		kind = KindEventPast
	}
	return Envelope{Version: MessageVersion, Kind: kind, PublishedAt: now.UTC(), Event: e}
}

// NewFreeFlowEnvelope wraps one free flow result.
func NewFreeFlowEnvelope(d analysis.FreeFlowData, now time.Time) Envelope {
	return Envelope{Version: MessageVersion, Kind: KindFreeFlow, PublishedAt: now.UTC(), FreeFlow: &d}
}

// Validate checks that the payload matches the kind.
func (e Envelope) Validate() error {
	switch e.Kind {
	case KindEventOngoing, KindEventPast:
		if e.Event == nil {
			return fmt.Errorf("%w: %s without event", ErrInvalidMessage, e.Kind)
		}
	case KindFreeFlow:
		if e.FreeFlow == nil {
			return fmt.Errorf("%w: %s without data", ErrInvalidMessage, e.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidMessage, e.Kind)
	}
	return nil
}

// Marshal validates and encodes an envelope.
func Marshal(e Envelope) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates an envelope.
func Unmarshal(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if e.Version != MessageVersion {
		return Envelope{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidMessage, e.Version)
	}
	if err := e.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}
