// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package eventprocessor

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/seawatch/internal/analysis"
	"github.com/tomtom215/seawatch/internal/geometry"
	"github.com/tomtom215/seawatch/internal/models"
)

var publishedAt = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func testEvent() *models.Event {
	e := models.NewEvent(models.EventClassDrift, publishedAt.Add(-time.Hour))
	e.Description = "TEST is drifting"
	return e
}

func TestNewEventEnvelope_KindFollowsState(t *testing.T) {
	e := testEvent()
	if got := NewEventEnvelope(e, publishedAt).Kind; got != KindEventOngoing {
		t.Errorf("ongoing kind = %s, want %s", got, KindEventOngoing)
	}

	e.Close(publishedAt)
	if got := NewEventEnvelope(e, publishedAt).Kind; got != KindEventPast {
		t.Errorf("past kind = %s, want %s", got, KindEventPast)
	}
}

func TestMarshalUnmarshal_Event(t *testing.T) {
	e := testEvent()
	data, err := Marshal(NewEventEnvelope(e, publishedAt))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Kind != KindEventOngoing || got.Version != MessageVersion {
		t.Errorf("envelope header = %s/%d", got.Kind, got.Version)
	}
	if !got.PublishedAt.Equal(publishedAt) {
		t.Errorf("PublishedAt = %v, want %v", got.PublishedAt, publishedAt)
	}
	if got.Event.ID != e.ID || got.Event.Description != e.Description || got.Event.Class != e.Class {
		t.Errorf("event = %+v, want %+v", got.Event, e)
	}
}

func TestMarshalUnmarshal_FreeFlow(t *testing.T) {
	d := analysis.FreeFlowData{
		Timestamp: publishedAt,
		Vessel:    models.Vessel{MMSI: 219000001, Name: "TANKER"},
		Centre:    geometry.NewPosition(55.5, 11.2),
		COG:       45,
		SOG:       12.5,
		Inside: []analysis.FreeFlowNeighbour{
			{Vessel: models.Vessel{MMSI: 219000002}, Centre: geometry.NewPosition(55.51, 11.21), COG: 47, SOG: 11},
		},
	}

	data, err := Marshal(NewFreeFlowEnvelope(d, publishedAt))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(d, *got.FreeFlow); diff != "" {
		t.Errorf("free flow mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvelopeValidation(t *testing.T) {
	tests := []struct {
		name     string
		envelope Envelope
	}{
		{"event kind without event", Envelope{Version: 1, Kind: KindEventOngoing}},
		{"free flow kind without data", Envelope{Version: 1, Kind: KindFreeFlow}},
		{"unknown kind", Envelope{Version: 1, Kind: "vessel.sunk", Event: testEvent()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Marshal(tt.envelope); !errors.Is(err, ErrInvalidMessage) {
				t.Errorf("err = %v, want ErrInvalidMessage", err)
			}
		})
	}
}

func TestUnmarshal_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"wrong version", `{"version":7,"kind":"freeflow","free_flow":{}}`},
		{"missing payload", `{"version":1,"kind":"event.past"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.data)); !errors.Is(err, ErrInvalidMessage) {
				t.Errorf("err = %v, want ErrInvalidMessage", err)
			}
		})
	}
}
