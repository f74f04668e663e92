// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// DuckDB driver
	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/seawatch/internal/logging"
	"github.com/tomtom215/seawatch/internal/metrics"
	"github.com/tomtom215/seawatch/internal/models"
)

// DuckDBRepository stores events in DuckDB. The full aggregate is kept as
// a JSON payload; the columns used for lookups are denormalised beside it.
type DuckDBRepository struct {
	db *sql.DB
}

// OpenDuckDB opens the database at path (":memory:" when empty) and
// initialises the schema.
func OpenDuckDB(ctx context.Context, path string) (*DuckDBRepository, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	r := NewDuckDBRepository(db)
	if err := r.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logging.Info().Str("path", path).Msg("event store opened")
	return r, nil
}

// NewDuckDBRepository wraps an open database. Call InitSchema before use.
func NewDuckDBRepository(db *sql.DB) *DuckDBRepository {
	return &DuckDBRepository{db: db}
}

// Close closes the database.
func (r *DuckDBRepository) Close() error {
	return r.db.Close()
}

// InitSchema creates the event tables if they don't exist.
func (r *DuckDBRepository) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			class TEXT NOT NULL,
			state TEXT NOT NULL,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP,
			primary_mmsi INTEGER NOT NULL,
			title TEXT,
			description TEXT,
			payload TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// One row per involved vessel
		`CREATE TABLE IF NOT EXISTS event_vessels (
			event_id TEXT NOT NULL,
			mmsi INTEGER NOT NULL,
			imo INTEGER,
			name TEXT,
			callsign TEXT,
			is_primary BOOLEAN DEFAULT false,
			PRIMARY KEY (event_id, mmsi)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_start_time ON events(start_time DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_events_class_state ON events(class, state)`,
		`CREATE INDEX IF NOT EXISTS idx_event_vessels_mmsi ON event_vessels(mmsi)`,
	}

	for _, query := range queries {
		if _, err := r.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	// Flush the WAL so a crash right after startup does not replay DDL.
	if _, err := r.db.ExecContext(ctx, "CHECKPOINT"); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint after event schema initialization")
	}
	return nil
}

// Checkpoint flushes the DuckDB WAL into the database file.
func (r *DuckDBRepository) Checkpoint(ctx context.Context) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, "CHECKPOINT")
	metrics.RecordEventStoreOperation("checkpoint", time.Since(start), err)
	return err
}

// Save upserts e and its vessel index rows in one transaction.
func (r *DuckDBRepository) Save(ctx context.Context, e *models.Event) (err error) {
	start := time.Now()
	defer func() { metrics.RecordEventStoreOperation("save", time.Since(start), err) }()

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var endTime sql.NullTime
	if e.EndTime != nil {
		endTime = sql.NullTime{Time: e.EndTime.UTC(), Valid: true}
	}

	id := e.ID.String()
	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO events
		(id, class, state, start_time, end_time, primary_mmsi, title, description, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		id, e.Class.String(), string(e.State), e.StartTime.UTC(), endTime,
		e.PrimaryVessel(), e.Title, e.Description, string(payload))
	if err != nil {
		return fmt.Errorf("save event %s: %w", id, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM event_vessels WHERE event_id = ?`, id); err != nil {
		return fmt.Errorf("clear event vessels: %w", err)
	}
	for _, b := range e.Behaviours {
		_, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO event_vessels
			(event_id, mmsi, imo, name, callsign, is_primary) VALUES (?, ?, ?, ?, ?, ?)`,
			id, b.Vessel.MMSI, b.Vessel.IMO, b.Vessel.Name, b.Vessel.Callsign, b.Primary)
		if err != nil {
			return fmt.Errorf("save event vessel %d: %w", b.Vessel.MMSI, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit event: %w", err)
	}

	metrics.RecordEventPersisted(e.Class.String(), string(e.State))
	return nil
}

func (r *DuckDBRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	events, err := r.query(ctx, "find_by_id",
		`SELECT e.payload FROM events e WHERE e.id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}
	return events[0], nil
}

func (r *DuckDBRepository) FindOngoingByVessel(ctx context.Context, mmsi int, class models.EventClass) (*models.Event, error) {
	events, err := r.query(ctx, "find_ongoing",
		`SELECT e.payload FROM events e
		JOIN event_vessels v ON v.event_id = e.id
		WHERE e.class = ? AND e.state = ? AND v.mmsi = ?
		ORDER BY e.start_time DESC
		LIMIT 1`,
		class.String(), string(models.EventStateOngoing), mmsi)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}
	return events[0], nil
}

func (r *DuckDBRepository) FindRecent(ctx context.Context, since time.Time, limit int) ([]*models.Event, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return r.query(ctx, "find_recent",
		`SELECT e.payload FROM events e
		WHERE e.start_time >= ?
		ORDER BY e.start_time DESC, e.id
		LIMIT ?`,
		since.UTC(), limit)
}

func (r *DuckDBRepository) Find(ctx context.Context, f Filter) ([]*models.Event, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Class != nil {
		where = append(where, "e.class = ?")
		args = append(args, f.Class.String())
	}
	if f.State != "" {
		where = append(where, "e.state = ?")
		args = append(args, string(f.State))
	}
	if !f.To.IsZero() {
		where = append(where, "e.start_time <= ?")
		args = append(args, f.To.UTC())
	}
	if !f.From.IsZero() {
		where = append(where, "(e.end_time IS NULL OR e.end_time >= ?)")
		args = append(args, f.From.UTC())
	}
	if q := strings.TrimSpace(f.Vessel); q != "" {
		where = append(where, `EXISTS (SELECT 1 FROM event_vessels v WHERE v.event_id = e.id AND (
			CAST(v.mmsi AS VARCHAR) = ? OR (v.imo <> 0 AND CAST(v.imo AS VARCHAR) = ?)
			OR lower(v.name) = lower(?) OR lower(v.callsign) = lower(?)))`)
		args = append(args, q, q, q, q)
	}

	query := `SELECT e.payload FROM events e`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.start_time DESC, e.id LIMIT ?"
	args = append(args, f.limit())

	return r.query(ctx, "find", query, args...)
}

// query runs a payload-returning query and decodes every row.
func (r *DuckDBRepository) query(ctx context.Context, op, query string, args ...interface{}) (events []*models.Event, err error) {
	start := time.Now()
	defer func() { metrics.RecordEventStoreOperation(op, time.Since(start), err) }()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		var e models.Event
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return events, nil
}
