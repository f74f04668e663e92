// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/seawatch/internal/events"
	"github.com/tomtom215/seawatch/internal/models"
	"github.com/tomtom215/seawatch/internal/validation"
)

// EventsQuery holds the query parameters of ListEvents.
type EventsQuery struct {
	Since  time.Time
	Until  time.Time `validate:"omitempty,gtfield=Since"`
	Class  string    `validate:"omitempty,oneof=COURSE_OVER_GROUND SPEED_OVER_GROUND SHIP_SIZE_OR_TYPE DRIFT SUDDEN_SPEED_CHANGE CLOSE_ENCOUNTER"`
	State  string    `validate:"omitempty,oneof=ONGOING PAST"`
	Vessel string    `validate:"max=64"`
	Limit  int       `validate:"gte=0"`
}

func parseTime(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.New(name + " must be an RFC 3339 timestamp")
	}
	return t, nil
}

func parseEventsQuery(r *http.Request) (EventsQuery, error) {
	q := r.URL.Query()
	var out EventsQuery
	var err error

	if out.Since, err = parseTime("since", q.Get("since")); err != nil {
		return out, err
	}
	if out.Until, err = parseTime("until", q.Get("until")); err != nil {
		return out, err
	}
	if v := q.Get("limit"); v != "" {
		if out.Limit, err = strconv.Atoi(v); err != nil {
			return out, errors.New("limit must be an integer")
		}
	}
	out.Class = q.Get("class")
	out.State = q.Get("state")
	out.Vessel = q.Get("vessel")
	return out, nil
}

// filter converts the query to a repository filter. Limit is capped.
func (q EventsQuery) filter(maxLimit int) events.Filter {
	f := events.Filter{
		From:   q.Since,
		To:     q.Until,
		State:  models.EventState(q.State),
		Vessel: q.Vessel,
		Limit:  q.Limit,
	}
	switch {
	case f.Limit == 0:
		f.Limit = min(events.DefaultLimit, maxLimit)
	case f.Limit > maxLimit:
		f.Limit = maxLimit
	}
	if q.Class != "" {
		if class, err := models.ParseEventClass(q.Class); err == nil {
			f.Class = &class
		}
	}
	return f
}

// ListEvents returns events matching the query, newest first.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query, err := parseEventsQuery(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(query); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	f := query.filter(h.cfg.MaxEventLimit)
	found, err := h.deps.Events.Find(r.Context(), f)
	if err != nil {
		rw.InternalError("failed to query events", err)
		return
	}
	if found == nil {
		found = []*models.Event{}
	}
	rw.List(found, len(found), f.Limit)
}

// GetEvent returns one event by id.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		rw.BadRequest("id must be a UUID")
		return
	}

	e, err := h.deps.Events.FindByID(r.Context(), id)
	switch {
	case errors.Is(err, events.ErrNotFound):
		rw.NotFound("event not found")
	case err != nil:
		rw.InternalError("failed to load event", err)
	default:
		rw.Success(e)
	}
}
