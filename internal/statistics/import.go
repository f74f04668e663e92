// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package statistics

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/tomtom215/seawatch/internal/grid"
)

// Record is one line of a statistics export.
type Record struct {
	Feature   string      `json:"feature"`
	Cell      grid.CellID `json:"cell"`
	Histogram *Histogram  `json:"histogram"`
}

// Import reads JSON lines of Record from r into repo and returns the
// number of histograms stored. Blank lines are skipped.
func Import(ctx context.Context, repo Repository, r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	n, line := 0, 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}

		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.Feature == "" || rec.Histogram == nil {
			return n, fmt.Errorf("line %d: feature and histogram are required", line)
		}
		if err := repo.Put(ctx, rec.Feature, rec.Cell, rec.Histogram); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("read statistics: %w", err)
	}
	return n, nil
}
