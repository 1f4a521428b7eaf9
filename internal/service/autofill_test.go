package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/rail-log/backend/internal/domain"
	"github.com/pkordes/rail-log/backend/internal/formation"
	"github.com/pkordes/rail-log/backend/internal/service"
	"github.com/pkordes/rail-log/backend/internal/timetable"
)

// stubSource is a canned timetable.Source for autofill service tests.
type stubSource struct {
	railways   []timetable.Railway
	timetables map[string][]timetable.TrainEntry
}

func (s *stubSource) Railways(ctx context.Context) ([]timetable.Railway, error) {
	return s.railways, nil
}

func (s *stubSource) StationTimetable(ctx context.Context, id timetable.TimetableID) ([]timetable.TrainEntry, error) {
	return s.timetables[id.String()], nil
}

var _ timetable.Source = (*stubSource)(nil)

func autofillFixture(t *testing.T, f formation.Lookup) (*service.AutofillService, *mockRideRepo) {
	t.Helper()
	src := &stubSource{
		railways: []timetable.Railway{{
			ID:       "JR-East.Yamanote",
			Title:    "山手線",
			Operator: "JR-East",
			Stations: []timetable.Station{
				{ID: "JR-East.Yamanote.Tokyo", Title: "東京", Index: 1},
				{ID: "JR-East.Yamanote.Shinagawa", Title: "品川", Index: 2},
			},
		}},
		timetables: map[string][]timetable.TrainEntry{
			"JR-East.Yamanote.JR-East.Yamanote.Tokyo.Inbound.Weekday": {
				{TrainNumber: "1030G", TrainType: "Local", Time: "10:30", DestinationStation: "JR-East.Yamanote.Shinagawa"},
			},
		},
	}
	repo := &mockRideRepo{
		history: func(_ context.Context, _ uuid.UUID) ([]domain.RideRecord, error) {
			return []domain.RideRecord{
				{LineName: "山手線", ServiceType: "各駅停車", Color: domain.Palette(domain.TokenGreen)},
			}, nil
		},
	}
	d := timetable.NewDispatcher(timetable.NewEngine(src, "JR東日本"), 2*time.Second, nil)
	return service.NewAutofillService(repo, d, f), repo
}

func TestAutofillService_DepartureFill(t *testing.T) {
	svc, _ := autofillFixture(t, formation.Noop{})

	got, err := svc.Autofill(context.Background(), service.AutofillRequest{
		UserID:      uuid.New(),
		Station:     "東京",
		TrainNumber: "1030G",
		Edge:        timetable.EdgeDeparture,
		RideDate:    time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), // Monday
	})

	require.NoError(t, err)
	require.Equal(t, timetable.StatusFilled, got.Status)
	assert.Equal(t, "10:30", got.Fill.Time)
	assert.Equal(t, "山手線", got.Fill.LineName)
	// 山手線 is locals-preserving, so the Local token keeps its 各駅停車 label.
	assert.Equal(t, "各駅停車", got.Fill.ServiceType)
	assert.Equal(t, "品川", got.Fill.Destination)
	// History color wins over the rule default.
	assert.Equal(t, domain.Palette(domain.TokenGreen), got.Fill.Color)
}

func TestAutofillService_FormationAttachedOnDepartureFill(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"formation":"トウ28"}`))
	}))
	defer srv.Close()

	svc, _ := autofillFixture(t, formation.NewClient(srv.URL))

	got, err := svc.Autofill(context.Background(), service.AutofillRequest{
		UserID:      uuid.New(),
		Station:     "東京",
		TrainNumber: "1030G",
		Edge:        timetable.EdgeDeparture,
		RideDate:    time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, "トウ28", got.Formation)
}

func TestAutofillService_NoMatchLeavesDraftAlone(t *testing.T) {
	svc, _ := autofillFixture(t, formation.Noop{})

	got, err := svc.Autofill(context.Background(), service.AutofillRequest{
		UserID:      uuid.New(),
		Station:     "東京",
		TrainNumber: "9999X",
		Edge:        timetable.EdgeDeparture,
		RideDate:    time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, timetable.StatusNoMatch, got.Status)
	assert.Empty(t, got.Formation)
}

func TestAutofillService_HistoryFailureDegradesToRuleColors(t *testing.T) {
	svc, repo := autofillFixture(t, formation.Noop{})
	repo.history = func(_ context.Context, _ uuid.UUID) ([]domain.RideRecord, error) {
		return nil, assert.AnError
	}

	got, err := svc.Autofill(context.Background(), service.AutofillRequest{
		UserID:      uuid.New(),
		Station:     "東京",
		TrainNumber: "1030G",
		Edge:        timetable.EdgeDeparture,
		RideDate:    time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.Equal(t, timetable.StatusFilled, got.Status)
	assert.Equal(t, domain.Palette(domain.TokenBlue), got.Fill.Color)
}

func TestAutofillService_MissingUser(t *testing.T) {
	svc, _ := autofillFixture(t, formation.Noop{})

	_, err := svc.Autofill(context.Background(), service.AutofillRequest{})

	assert.ErrorIs(t, err, domain.ErrValidation)
}
