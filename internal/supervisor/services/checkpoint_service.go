// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package services

import (
	"context"
	"time"

	"github.com/tomtom215/seawatch/internal/logging"
)

// Checkpointer is satisfied by *events.DuckDBRepository.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService flushes the DuckDB write-ahead log every interval and
// once more on shutdown. Failures are logged, not returned, so a busy
// database does not restart the service.
type CheckpointService struct {
	store    Checkpointer
	interval time.Duration
	timeout  time.Duration
}

// NewCheckpointService creates the service. interval defaults to 5m.
func NewCheckpointService(store Checkpointer, interval time.Duration) *CheckpointService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CheckpointService{store: store, interval: interval, timeout: 30 * time.Second}
}

// Serve implements suture.Service.
func (s *CheckpointService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.checkpoint(context.WithoutCancel(ctx))
			return ctx.Err()
		case <-ticker.C:
			s.checkpoint(ctx)
		}
	}
}

func (s *CheckpointService) checkpoint(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.store.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("event store checkpoint failed")
		return
	}
	logging.Debug().Dur("duration", time.Since(start)).Msg("event store checkpointed")
}

func (s *CheckpointService) String() string {
	return "event-store-checkpoint"
}
