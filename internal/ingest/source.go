// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
)

// Source produces messages until ctx is cancelled or the input ends.
// sink is always called from the goroutine running Run.
type Source interface {
	Run(ctx context.Context, sink func(Message)) error
	String() string
}

// maxLineSize bounds one JSON line.
const maxLineSize = 64 * 1024

// decodeErrorLog limits decode failure logging to one entry per second.
func newDecodeErrorLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Second), 1)
}

func logDecodeError(l *rate.Limiter, source string, err error) {
	metrics.RecordMessageDropped("decode")
	if l.Allow() {
		logging.Warn().Err(err).Str("source", source).Msg("dropping undecodable message")
	}
}

// FileConfig configures the file source.
type FileConfig struct {
	// Path is a JSON lines file. "-" reads standard input.
	Path string `koanf:"path"`

	// Speed paces the replay relative to message time: 1 replays in real
	// time, 10 ten times faster. Zero replays as fast as possible.
	Speed float64 `koanf:"speed" validate:"gte=0"`
}

// FileSource replays a JSON lines file.
type FileSource struct {
	cfg FileConfig
}

// NewFileSource creates the source.
func NewFileSource(cfg FileConfig) *FileSource {
	return &FileSource{cfg: cfg}
}

func (s *FileSource) String() string { return "file:" + s.cfg.Path }

// Run reads the file to the end. It returns nil at end of input.
func (s *FileSource) Run(ctx context.Context, sink func(Message)) error {
	var r io.Reader = os.Stdin
	if s.cfg.Path != "-" {
		f, err := os.Open(s.cfg.Path)
		if err != nil {
			return fmt.Errorf("open %s: %w", s.cfg.Path, err)
		}
		defer f.Close()
		r = f
	}
	return s.read(ctx, r, sink)
}

func (s *FileSource) read(ctx context.Context, r io.Reader, sink func(Message)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	limiter := newDecodeErrorLimiter()

	var (
		lines     int
		firstMsg  time.Time
		firstWall time.Time
	)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lines++
		line := scanner.Bytes()
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		m, err := Decode(line)
		if err != nil {
			logDecodeError(limiter, s.String(), fmt.Errorf("line %d: %w", lines, err))
			continue
		}

		if s.cfg.Speed > 0 {
			if firstMsg.IsZero() {
				firstMsg, firstWall = m.Timestamp, time.Now()
			}
			due := firstWall.Add(time.Duration(float64(m.Timestamp.Sub(firstMsg)) / s.cfg.Speed))
			if err := sleepUntil(ctx, due); err != nil {
				return err
			}
		}
		sink(m)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", s.cfg.Path, err)
	}
	logging.Info().Str("source", s.String()).Int("lines", lines).Msg("end of input")
	return nil
}

func sleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
