// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/seawatch/internal/logging"
)

// IngestRunner is satisfied by *ingest.Service. Serve returns nil when a
// finite source is exhausted.
type IngestRunner interface {
	Serve(ctx context.Context) error
	String() string
}

// IngestService supervises ingestion. Failures are restarted; a source
// that reached its end is not, and OnComplete is called once.
type IngestService struct {
	runner IngestRunner

	// OnComplete runs after a finite source ended, e.g. to stop the
	// process once a replay is done.
	OnComplete func()
}

// NewIngestService wraps runner.
func NewIngestService(runner IngestRunner, onComplete func()) *IngestService {
	return &IngestService{runner: runner, OnComplete: onComplete}
}

// Serve implements suture.Service.
func (s *IngestService) Serve(ctx context.Context) error {
	err := s.runner.Serve(ctx)
	switch {
	case err == nil:
		logging.Info().Str("source", s.runner.String()).Msg("ingest source exhausted")
		if s.OnComplete != nil {
			s.OnComplete()
		}
		return suture.ErrDoNotRestart
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%s: %w", s.runner, err)
	}
}

func (s *IngestService) String() string {
	return s.runner.String()
}
