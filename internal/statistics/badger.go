// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package statistics

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/seawatch/internal/grid"
	"github.com/tomtom215/seawatch/internal/logging"
)

// Key layout
const (
	statKeyPrefix = "stat:"
	metaKey       = "meta"
)

// BadgerConfig configures the badger-backed store.
type BadgerConfig struct {
	Path     string
	ReadOnly bool
	// GridResolution is written to metadata by Put.
	GridResolution float64
}

// BadgerRepository stores histograms as JSON values in BadgerDB under
// "stat:<feature>:<cell>", with the metadata under "meta".
type BadgerRepository struct {
	db         *badger.DB
	resolution float64
}

// OpenBadger opens (or, unless read-only, creates) the store at cfg.Path.
func OpenBadger(cfg BadgerConfig) (*BadgerRepository, error) {
	if cfg.Path == "" {
		return nil, errors.New("statistics path is required")
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.ReadOnly = cfg.ReadOnly
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open statistics store: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("read_only", cfg.ReadOnly).
		Msg("statistics store opened")
	return NewBadgerRepository(db, cfg.GridResolution), nil
}

// NewBadgerRepository wraps an open database.
func NewBadgerRepository(db *badger.DB, resolution float64) *BadgerRepository {
	return &BadgerRepository{db: db, resolution: resolution}
}

// Close closes the database.
func (r *BadgerRepository) Close() error {
	return r.db.Close()
}

func statKey(feature string, cell grid.CellID) []byte {
	return []byte(statKeyPrefix + feature + ":" + strconv.FormatInt(int64(cell), 10))
}

// Get returns the histogram for (feature, cell) or ErrNotFound.
func (r *BadgerRepository) Get(ctx context.Context, feature string, cell grid.CellID) (*Histogram, error) {
	var h Histogram
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(statKey(feature, cell))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get histogram: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &h)
		})
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Put stores h and records feature in the metadata.
func (r *BadgerRepository) Put(ctx context.Context, feature string, cell grid.CellID, h *Histogram) error {
	if err := h.Validate(); err != nil {
		return fmt.Errorf("put %s/%d: %w", feature, cell, err)
	}
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal histogram: %w", err)
	}

	return r.db.Update(func(txn *badger.Txn) error {
		md, err := readMetadata(txn)
		if errors.Is(err, ErrNotFound) {
			md = Metadata{GridResolution: r.resolution, FormatVersion: FormatVersion}
		} else if err != nil {
			return err
		}
		known := md.HasFeature(feature) && (feature != FeatureSpeedOverGround || md.SpeedBuckets != 0)
		if err := md.recordShape(feature, h); err != nil {
			return fmt.Errorf("put %s/%d: %w", feature, cell, err)
		}

		if err := txn.Set(statKey(feature, cell), data); err != nil {
			return fmt.Errorf("set histogram: %w", err)
		}
		if known {
			return nil
		}
		if !md.HasFeature(feature) {
			md.Features = append(md.Features, feature)
		}
		return writeMetadata(txn, md)
	})
}

// Metadata returns the stored metadata or ErrNotFound.
func (r *BadgerRepository) Metadata(ctx context.Context) (Metadata, error) {
	var md Metadata
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		md, err = readMetadata(txn)
		return err
	})
	return md, err
}

// SetMetadata overwrites the metadata.
func (r *BadgerRepository) SetMetadata(ctx context.Context, md Metadata) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return writeMetadata(txn, md)
	})
}

// CountCells returns the number of stored histograms per feature.
func (r *BadgerRepository) CountCells(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(statKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := string(it.Item().Key()[len(statKeyPrefix):])
			for i := len(key) - 1; i >= 0; i-- {
				if key[i] == ':' {
					counts[key[:i]]++
					break
				}
			}
		}
		return nil
	})
	return counts, err
}

func readMetadata(txn *badger.Txn) (Metadata, error) {
	var md Metadata
	item, err := txn.Get([]byte(metaKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return md, ErrNotFound
	}
	if err != nil {
		return md, fmt.Errorf("get metadata: %w", err)
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &md)
	})
	if err != nil {
		return md, fmt.Errorf("decode metadata: %w", err)
	}
	return md, nil
}

func writeMetadata(txn *badger.Txn, md Metadata) error {
	data, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	return txn.Set([]byte(metaKey), data)
}
