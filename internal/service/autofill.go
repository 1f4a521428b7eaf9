package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/rail-log/backend/internal/colorhint"
	"github.com/pkordes/rail-log/backend/internal/domain"
	"github.com/pkordes/rail-log/backend/internal/formation"
	"github.com/pkordes/rail-log/backend/internal/repo"
	"github.com/pkordes/rail-log/backend/internal/timetable"
)

// AutofillRequest is one autofill trigger from the editing surface.
// DraftKey identifies the draft being edited so that retriggers for the same
// draft supersede each other; it defaults to the user id when empty.
type AutofillRequest struct {
	UserID      uuid.UUID
	DraftKey    string
	Station     string
	TrainNumber string
	Edge        timetable.Edge
	RideDate    time.Time
}

// AutofillResult is the outcome delivered to the editing surface. Formation
// is set only on a departure-edge fill when the formation service knows the
// train; empty means unknown and the field stays untouched.
type AutofillResult struct {
	Status    timetable.Status
	Fill      timetable.Fill
	Formation string
}

// AutofillService orchestrates one autofill pass: snapshot the user's
// history for color inference, run the generation-tracked timetable lookup,
// and enrich a successful departure fill with the rolling-stock formation.
type AutofillService struct {
	rides      repo.RideRepo
	dispatcher *timetable.Dispatcher
	formations formation.Lookup
}

// NewAutofillService constructs an AutofillService.
func NewAutofillService(rides repo.RideRepo, d *timetable.Dispatcher, f formation.Lookup) *AutofillService {
	return &AutofillService{rides: rides, dispatcher: d, formations: f}
}

// Autofill runs one lookup and waits for its outcome. The history snapshot
// is taken at call time; saves completing mid-lookup do not affect it. A
// history fetch failure degrades to rule-based colors rather than failing
// the lookup.
func (s *AutofillService) Autofill(ctx context.Context, req AutofillRequest) (AutofillResult, error) {
	if req.UserID == uuid.Nil {
		return AutofillResult{}, fmt.Errorf("%w: user is required", domain.ErrValidation)
	}

	history, err := s.rides.History(ctx, req.UserID)
	if err != nil {
		slog.WarnContext(ctx, "autofill: history fetch failed, using rule-based colors", "error", err)
		history = nil
	}
	hints := colorhint.NewIndex(history)

	key := req.DraftKey
	if key == "" {
		key = req.UserID.String()
	}

	q := timetable.Query{
		Station:     req.Station,
		TrainNumber: req.TrainNumber,
		Edge:        req.Edge,
		RideDate:    req.RideDate,
	}

	select {
	case res := <-s.dispatcher.Trigger(ctx, key, q, hints):
		out := AutofillResult{Status: res.Status, Fill: res.Fill}
		if res.Status == timetable.StatusFilled && res.Fill.Edge == timetable.EdgeDeparture {
			out.Formation = s.formations.Formation(ctx, req.TrainNumber)
		}
		return out, nil
	case <-ctx.Done():
		return AutofillResult{}, fmt.Errorf("service.AutofillService.Autofill: %w", ctx.Err())
	}
}
