// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package events

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/seawatch/internal/models"
)

var t0 = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

// setupTestDuckDB creates an in-memory DuckDB repository.
func setupTestDuckDB(t *testing.T) *DuckDBRepository {
	t.Helper()
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		t.Fatalf("failed to open duckdb: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewDuckDBRepository(db)
	if err := repo.InitSchema(context.Background()); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return repo
}

func repositories(t *testing.T) map[string]Repository {
	return map[string]Repository{
		"memory": NewMemoryRepository(),
		"duckdb": setupTestDuckDB(t),
	}
}

func newTestEvent(class models.EventClass, start time.Time, vessels ...models.Vessel) *models.Event {
	e := models.NewEvent(class, start)
	e.Description = "test event"
	for i, v := range vessels {
		b := e.AddBehaviour(v, i == 0)
		sog := 12.5
		b.AddTrackingPoint(models.TrackingPoint{
			Timestamp:       start,
			Latitude:        56.0,
			Longitude:       12.0,
			SpeedOverGround: &sog,
			Certainty:       models.EventCertaintyRaised,
		})
	}
	return e
}

func TestRepository_SaveAndFindByID(t *testing.T) {
	ctx := context.Background()

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			e := newTestEvent(models.EventClassDrift, t0, models.Vessel{MMSI: 219000001, Name: "NORDIC STAR", ToBow: 80, ToStern: 20})

			if err := repo.Save(ctx, e); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := repo.FindByID(ctx, e.ID)
			if err != nil {
				t.Fatalf("FindByID() error = %v", err)
			}
			if diff := cmp.Diff(e, got); diff != "" {
				t.Errorf("FindByID() mismatch (-want +got):\n%s", diff)
			}

			if _, err := repo.FindByID(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
				t.Errorf("FindByID(unknown) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestRepository_SaveIsUpsert(t *testing.T) {
	ctx := context.Background()

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			e := newTestEvent(models.EventClassCourseOverGround, t0, models.Vessel{MMSI: 219000002})
			if err := repo.Save(ctx, e); err != nil {
				t.Fatal(err)
			}

			e.Behaviours[0].AddTrackingPoint(models.TrackingPoint{Timestamp: t0.Add(time.Minute), Latitude: 56.01, Longitude: 12.0})
			e.Close(t0.Add(5 * time.Minute))
			if err := repo.Save(ctx, e); err != nil {
				t.Fatal(err)
			}

			got, err := repo.FindByID(ctx, e.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got.State != models.EventStatePast || len(got.Behaviours[0].TrackingPoints) != 2 {
				t.Errorf("after update: state %s, %d points", got.State, len(got.Behaviours[0].TrackingPoints))
			}

			recent, err := repo.FindRecent(ctx, time.Time{}, 10)
			if err != nil {
				t.Fatal(err)
			}
			if len(recent) != 1 {
				t.Errorf("FindRecent() returned %d events, want 1", len(recent))
			}
		})
	}
}

func TestRepository_FindOngoingByVessel(t *testing.T) {
	ctx := context.Background()

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			primary := models.Vessel{MMSI: 219000003}
			secondary := models.Vessel{MMSI: 219000004}

			encounter := newTestEvent(models.EventClassCloseEncounter, t0, primary, secondary)
			past := newTestEvent(models.EventClassCourseOverGround, t0.Add(-time.Hour), primary)
			past.Close(t0.Add(-30 * time.Minute))
			ongoing := newTestEvent(models.EventClassCourseOverGround, t0, primary)

			for _, e := range []*models.Event{encounter, past, ongoing} {
				if err := repo.Save(ctx, e); err != nil {
					t.Fatal(err)
				}
			}

			tests := []struct {
				name   string
				mmsi   int
				class  models.EventClass
				wantID uuid.UUID
			}{
				{"ongoing cog", primary.MMSI, models.EventClassCourseOverGround, ongoing.ID},
				{"encounter by primary", primary.MMSI, models.EventClassCloseEncounter, encounter.ID},
				{"encounter by secondary", secondary.MMSI, models.EventClassCloseEncounter, encounter.ID},
				{"no such class", primary.MMSI, models.EventClassDrift, uuid.Nil},
				{"secondary has no cog event", secondary.MMSI, models.EventClassCourseOverGround, uuid.Nil},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := repo.FindOngoingByVessel(ctx, tt.mmsi, tt.class)
					if tt.wantID == uuid.Nil {
						if !errors.Is(err, ErrNotFound) {
							t.Errorf("error = %v, want ErrNotFound", err)
						}
						return
					}
					if err != nil {
						t.Fatalf("error = %v", err)
					}
					if got.ID != tt.wantID {
						t.Errorf("found %s, want %s", got.ID, tt.wantID)
					}
				})
			}
		})
	}
}

func TestRepository_FindRecent(t *testing.T) {
	ctx := context.Background()

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			var ids []uuid.UUID
			for i := 0; i < 5; i++ {
				e := newTestEvent(models.EventClassSpeedOverGround, t0.Add(time.Duration(i)*time.Minute), models.Vessel{MMSI: 219000010 + i})
				ids = append(ids, e.ID)
				if err := repo.Save(ctx, e); err != nil {
					t.Fatal(err)
				}
			}

			got, err := repo.FindRecent(ctx, t0.Add(time.Minute), 3)
			if err != nil {
				t.Fatal(err)
			}
			want := []uuid.UUID{ids[4], ids[3], ids[2]}
			if len(got) != len(want) {
				t.Fatalf("FindRecent() returned %d events, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i].ID != want[i] {
					t.Errorf("FindRecent()[%d] = %s, want %s", i, got[i].ID, want[i])
				}
			}
		})
	}
}

func TestRepository_Find(t *testing.T) {
	ctx := context.Background()
	cog := models.EventClassCourseOverGround

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			early := newTestEvent(cog, t0, models.Vessel{MMSI: 219000020, Name: "Aurora", Callsign: "OXAB2"})
			early.Close(t0.Add(10 * time.Minute))
			late := newTestEvent(models.EventClassDrift, t0.Add(time.Hour), models.Vessel{MMSI: 219000021, IMO: 9123456})
			for _, e := range []*models.Event{early, late} {
				if err := repo.Save(ctx, e); err != nil {
					t.Fatal(err)
				}
			}

			tests := []struct {
				name   string
				filter Filter
				want   []uuid.UUID
			}{
				{"everything", Filter{}, []uuid.UUID{late.ID, early.ID}},
				{"by class", Filter{Class: &cog}, []uuid.UUID{early.ID}},
				{"by state", Filter{State: models.EventStateOngoing}, []uuid.UUID{late.ID}},
				{"period overlaps early", Filter{From: t0.Add(5 * time.Minute), To: t0.Add(20 * time.Minute)}, []uuid.UUID{early.ID}},
				{"period after early", Filter{From: t0.Add(30 * time.Minute)}, []uuid.UUID{late.ID}},
				{"period before late", Filter{To: t0.Add(30 * time.Minute)}, []uuid.UUID{early.ID}},
				{"by name", Filter{Vessel: "aurora"}, []uuid.UUID{early.ID}},
				{"by callsign", Filter{Vessel: "oxab2"}, []uuid.UUID{early.ID}},
				{"by mmsi", Filter{Vessel: "219000021"}, []uuid.UUID{late.ID}},
				{"by imo", Filter{Vessel: "9123456"}, []uuid.UUID{late.ID}},
				{"unknown vessel", Filter{Vessel: "nobody"}, nil},
				{"limit", Filter{Limit: 1}, []uuid.UUID{late.ID}},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := repo.Find(ctx, tt.filter)
					if err != nil {
						t.Fatal(err)
					}
					var ids []uuid.UUID
					for _, e := range got {
						ids = append(ids, e.ID)
					}
					if diff := cmp.Diff(tt.want, ids); diff != "" {
						t.Errorf("Find() mismatch (-want +got):\n%s", diff)
					}
				})
			}
		})
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	e := newTestEvent(models.EventClassDrift, t0, models.Vessel{MMSI: 219000030})
	if err := repo.Save(ctx, e); err != nil {
		t.Fatal(err)
	}

	got, _ := repo.FindByID(ctx, e.ID)
	got.Close(t0.Add(time.Minute))

	again, _ := repo.FindByID(ctx, e.ID)
	if !again.IsOngoing() {
		t.Error("mutating a returned event changed the stored one")
	}
	if repo.Len() != 1 {
		t.Errorf("Len() = %d, want 1", repo.Len())
	}
}

func TestDuckDBRepository_Checkpoint(t *testing.T) {
	repo := setupTestDuckDB(t)
	if err := repo.Checkpoint(context.Background()); err != nil {
		t.Errorf("Checkpoint() error = %v", err)
	}
}
