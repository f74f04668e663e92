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

// StaleSweeper is satisfied by *tracker.Service.
type StaleSweeper interface {
	SweepStale(now time.Time) int
}

// SweeperService drops stale tracks every interval. Clock supplies the
// time tracks are aged against: the stream time for replays, the wall
// clock for live feeds. A zero time skips the sweep.
type SweeperService struct {
	sweeper  StaleSweeper
	interval time.Duration
	clock    func() time.Time
}

// NewSweeperService creates the sweeper. A nil clock uses time.Now.
func NewSweeperService(sweeper StaleSweeper, interval time.Duration, clock func() time.Time) *SweeperService {
	if interval <= 0 {
		interval = time.Minute
	}
	if clock == nil {
		clock = time.Now
	}
	return &SweeperService{sweeper: sweeper, interval: interval, clock: clock}
}

// Serve implements suture.Service.
func (s *SweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *SweeperService) sweep() {
	now := s.clock()
	if now.IsZero() {
		return
	}
	if n := s.sweeper.SweepStale(now); n > 0 {
		logging.Debug().Int("dropped", n).Time("at", now).Msg("stale tracks swept")
	}
}

func (s *SweeperService) String() string {
	return "track-sweeper"
}
