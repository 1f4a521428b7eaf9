// Package service contains the business logic for the rail-log API.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/rail-log/backend/internal/colorhint"
	"github.com/pkordes/rail-log/backend/internal/compose"
	"github.com/pkordes/rail-log/backend/internal/domain"
	"github.com/pkordes/rail-log/backend/internal/normalize"
	"github.com/pkordes/rail-log/backend/internal/repo"
)

// RideService implements business logic for ride-record operations.
type RideService struct {
	rides repo.RideRepo
}

// NewRideService constructs a RideService backed by the provided RideRepo.
func NewRideService(r repo.RideRepo) *RideService {
	return &RideService{rides: r}
}

// Create validates, normalizes, flattens, and persists a new ride.
// Returns domain.ErrValidation if input violates business rules.
func (s *RideService) Create(ctx context.Context, rec domain.RideRecord) (domain.RideRecord, error) {
	if err := validateRide(rec); err != nil {
		return domain.RideRecord{}, err
	}
	result, err := s.rides.Create(ctx, prepare(rec))
	if err != nil {
		return domain.RideRecord{}, fmt.Errorf("service.RideService.Create: %w", err)
	}
	return compose.Expand(result), nil
}

// GetByID returns a single ride in editing shape: persisted segments are
// expanded back into legs. Returns domain.ErrNotFound when absent.
func (s *RideService) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.RideRecord, error) {
	result, err := s.rides.GetByID(ctx, userID, id)
	if err != nil {
		return domain.RideRecord{}, fmt.Errorf("service.RideService.GetByID: %w", err)
	}
	return compose.Expand(result), nil
}

// List returns one page of the user's rides plus the total match count.
// Always returns a non-nil slice so callers can safely range over it.
func (s *RideService) List(ctx context.Context, userID uuid.UUID, search string, p domain.PaginationParams) ([]domain.RideRecord, int64, error) {
	rides, err := s.rides.List(ctx, userID, search, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.RideService.List: %w", err)
	}
	total, err := s.rides.Count(ctx, userID, search)
	if err != nil {
		return nil, 0, fmt.Errorf("service.RideService.List: %w", err)
	}
	if rides == nil {
		rides = []domain.RideRecord{}
	}
	for i, rec := range rides {
		rides[i] = compose.Expand(rec)
	}
	return rides, total, nil
}

// Update validates and persists changes to an existing ride.
func (s *RideService) Update(ctx context.Context, rec domain.RideRecord) (domain.RideRecord, error) {
	if err := validateRide(rec); err != nil {
		return domain.RideRecord{}, err
	}
	result, err := s.rides.Update(ctx, prepare(rec))
	if err != nil {
		return domain.RideRecord{}, fmt.Errorf("service.RideService.Update: %w", err)
	}
	return compose.Expand(result), nil
}

// Delete removes a ride by ID, scoped to its owner.
func (s *RideService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.rides.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("service.RideService.Delete: %w", err)
	}
	return nil
}

// NewDraft returns the defaults for a fresh entry form: today's date, the
// palette default color, and — matching the "save and keep riding" flow —
// the departure station prefilled with the arrival station of the user's
// most recent ride.
func (s *RideService) NewDraft(ctx context.Context, userID uuid.UUID, today time.Time) (domain.RideRecord, error) {
	draft := domain.RideRecord{
		UserID:   userID,
		RideDate: today,
		Color:    domain.Palette(domain.TokenSkyblue),
	}

	latest, err := s.rides.Latest(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// first ride ever, nothing to carry over
	case err != nil:
		return domain.RideRecord{}, fmt.Errorf("service.RideService.NewDraft: %w", err)
	default:
		draft.DepartureStation = latest.ArrivalStation
	}
	return draft, nil
}

// Suggestions derives the autocomplete lists from the user's history:
// distinct companies, line names, service types, and stations in history
// order. Joined multi-leg summaries are derived data, not reusable names,
// so they are excluded; the per-leg names come from the segments instead.
func (s *RideService) Suggestions(ctx context.Context, userID uuid.UUID) (domain.Suggestions, error) {
	history, err := s.rides.History(ctx, userID)
	if err != nil {
		return domain.Suggestions{}, fmt.Errorf("service.RideService.Suggestions: %w", err)
	}

	sug := domain.Suggestions{
		Companies: []string{},
		Lines:     []string{},
		Services:  []string{},
		Stations:  []string{},
	}
	seen := make(map[string]bool)
	add := func(list *[]string, kind, v string) {
		if v == "" || compose.IsCompound(v) {
			return
		}
		if key := kind + "\x00" + v; !seen[key] {
			seen[key] = true
			*list = append(*list, v)
		}
	}

	for _, rec := range history {
		add(&sug.Companies, "company", rec.RailwayCompany)
		add(&sug.Lines, "line", rec.LineName)
		add(&sug.Services, "service", rec.ServiceType)
		add(&sug.Stations, "station", rec.DepartureStation)
		add(&sug.Stations, "station", rec.ArrivalStation)
		for _, seg := range rec.Segments {
			add(&sug.Companies, "company", seg.RailwayCompany)
			add(&sug.Lines, "line", seg.LineName)
			add(&sug.Services, "service", seg.ServiceType)
		}
	}
	return sug, nil
}

// ColorIndex builds a color-inference snapshot over the user's history.
func (s *RideService) ColorIndex(ctx context.Context, userID uuid.UUID) (*colorhint.Index, error) {
	history, err := s.rides.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.RideService.ColorIndex: %w", err)
	}
	return colorhint.NewIndex(history), nil
}

// prepare applies the pre-persist transformations shared by Create and
// Update: canonical names, the color default, the delay-flag coupling, and
// the multi-leg flatten.
func prepare(rec domain.RideRecord) domain.RideRecord {
	for i, seg := range rec.Segments {
		seg.LineName, seg.ServiceType = normalize.Normalize(seg.LineName, seg.ServiceType)
		rec.Segments[i] = seg
	}
	if len(rec.Segments) == 0 {
		rec.LineName, rec.ServiceType = normalize.Normalize(rec.LineName, rec.ServiceType)
	}
	if !rec.Delayed {
		rec.DelayMinutes = 0
	}
	if rec.Color.IsZero() {
		rec.Color = colorhint.DefaultFor(rec.ServiceType)
	}
	return compose.Flatten(rec)
}

// validateRide enforces business rules common to both Create and Update.
//   - The owner and ride date are required.
//   - Delay minutes must not be negative.
func validateRide(rec domain.RideRecord) error {
	if rec.UserID == uuid.Nil {
		return fmt.Errorf("%w: user is required", domain.ErrValidation)
	}
	if rec.RideDate.IsZero() {
		return fmt.Errorf("%w: ride date is required", domain.ErrValidation)
	}
	if rec.DelayMinutes < 0 {
		return fmt.Errorf("%w: delay minutes must not be negative", domain.ErrValidation)
	}
	return nil
}
