// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package eventprocessor

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/seawatch/internal/metrics"
)

func TestNewCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig("test-breaker"))

	if cb.Name() != "test-breaker" {
		t.Errorf("Name() = %s, want test-breaker", cb.Name())
	}
	if state := CircuitBreakerState(cb); state != "closed" {
		t.Errorf("initial state = %s, want closed", state)
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("threshold-test")
	cfg.FailureThreshold = 3
	cfg.Timeout = time.Minute
	cb := NewCircuitBreaker(cfg)

	before := testutil.ToFloat64(metrics.CircuitBreakerTransitions.WithLabelValues("threshold-test", "closed", "open"))

	failure := errors.New("broker down")
	for i := 0; i < 3; i++ {
		if _, err := cb.Execute(func() (interface{}, error) { return nil, failure }); !errors.Is(err, failure) {
			t.Fatalf("attempt %d: err = %v, want %v", i, err, failure)
		}
	}

	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("state = %s, want open", cb.State())
	}
	_, err := cb.Execute(func() (interface{}, error) { return nil, nil })
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err = %v, want ErrOpenState", err)
	}

	after := testutil.ToFloat64(metrics.CircuitBreakerTransitions.WithLabelValues("threshold-test", "closed", "open"))
	if after-before != 1 {
		t.Errorf("transition counter delta = %v, want 1", after-before)
	}
	if v := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("threshold-test")); v != 2 {
		t.Errorf("state gauge = %v, want 2", v)
	}
}

func TestCircuitBreaker_ZeroThresholdTripsOnFirstFailure(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("zero-threshold")
	cfg.FailureThreshold = 0
	cb := NewCircuitBreaker(cfg)

	_, _ = cb.Execute(func() (interface{}, error) { return nil, errors.New("fail") })
	if cb.State() != gobreaker.StateOpen {
		t.Errorf("state = %s, want open", cb.State())
	}
}
