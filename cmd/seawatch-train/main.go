// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/seawatch/internal/categorizer"
	"github.com/tomtom215/seawatch/internal/config"
	"github.com/tomtom215/seawatch/internal/grid"
	"github.com/tomtom215/seawatch/internal/ingest"
	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/statistics"
	"github.com/tomtom215/seawatch/internal/supervisor/services"
	"github.com/tomtom215/seawatch/internal/tracker"
	"github.com/tomtom215/seawatch/internal/training"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("seawatch-train failed")
	}
}

func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := train(ctx, cfg)
	if err != nil {
		return err
	}

	logging.Info().
		Int64("received", res.Ingest.Received).
		Int64("accepted", res.Ingest.Accepted).
		Int("cells_written", res.Cells).
		Interface("features", res.Features).
		Msg("training finished")
	return nil
}

// result summarises a training run.
type result struct {
	Ingest   ingest.Stats
	Features map[string]training.FeatureStats
	Cells    int
}

// train replays cfg.Ingest.File into the statistics store at
// cfg.Statistics.Path. A cancelled ctx stops the replay early; the counts
// gathered so far are still flushed.
func train(ctx context.Context, cfg *config.Config) (result, error) {
	if cfg.Ingest.Source != ingest.SourceFile {
		return result{}, fmt.Errorf("training replays a recording, ingest.source must be %q", ingest.SourceFile)
	}
	if cfg.Ingest.File.Path == "" {
		return result{}, errors.New("ingest.file.path is required")
	}

	g, err := grid.New(cfg.Grid.Resolution)
	if err != nil {
		return result{}, err
	}
	speeds, err := categorizer.NewSpeedTable(cfg.Statistics.SpeedBounds)
	if err != nil {
		return result{}, err
	}

	repo, err := statistics.OpenBadger(statistics.BadgerConfig{
		Path:           cfg.Statistics.Path,
		GridResolution: cfg.Grid.Resolution,
	})
	if err != nil {
		return result{}, err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logging.Warn().Err(err).Msg("close statistics store")
		}
	}()

	trk := tracker.NewService(cfg.Tracker, g)
	defer trk.Close()

	builder := training.NewBuilder(cfg.Training, cfg.Grid.Resolution, speeds)
	builder.Attach(trk)

	ingestSvc := ingest.NewService(
		ingest.NewFileSource(cfg.Ingest.File),
		trk,
		ingest.NewChain(cfg.Filter, ingest.TrackNames(trk)),
	)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		_ = services.NewSweeperService(trk, cfg.Tracker.SweepInterval, trk.StreamTime).Serve(sweepCtx)
	}()

	serveErr := ingestSvc.Serve(ctx)
	stopSweep()
	<-sweepDone

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		return result{}, serveErr
	}
	if serveErr != nil {
		logging.Warn().Msg("replay interrupted, flushing partial statistics")
	}

	cells, err := builder.Flush(context.WithoutCancel(ctx), repo)
	if err != nil {
		return result{}, fmt.Errorf("write statistics: %w", err)
	}

	return result{
		Ingest:   ingestSvc.Stats(),
		Features: builder.Stats(),
		Cells:    cells,
	}, nil
}
