package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/rail-log/backend/internal/domain"
	"github.com/pkordes/rail-log/backend/internal/service"
	"github.com/pkordes/rail-log/backend/internal/timetable"
)

func TestAutofill_filled(t *testing.T) {
	ownerID := uuid.New()
	var captured service.AutofillRequest
	autofill := &mockAutofillServicer{
		autofillFn: func(ctx context.Context, req service.AutofillRequest) (service.AutofillResult, error) {
			captured = req
			return service.AutofillResult{
				Status: timetable.StatusFilled,
				Fill: timetable.Fill{
					Edge:        timetable.EdgeDeparture,
					Time:        "10:30",
					LineName:    "山手線",
					ServiceType: "各駅停車",
					Operator:    "JR東日本",
					Destination: "品川",
					Color:       domain.Palette(domain.TokenGreen),
				},
				Formation: "E235系",
			}, nil
		},
	}
	h := newTestRouter(&mockRideServicer{}, autofill)

	body := `{
		"draft_key": "draft-1",
		"station": "東京",
		"train_number": "1030G",
		"edge": "departure",
		"ride_date": "2026-05-11"
	}`
	rec := doRequest(t, h, http.MethodPost, "/api/autofill", body, ownerID)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ownerID, captured.UserID)
	assert.Equal(t, "draft-1", captured.DraftKey)
	assert.Equal(t, "1030G", captured.TrainNumber)
	assert.Equal(t, timetable.EdgeDeparture, captured.Edge)

	var resp struct {
		Status string `json:"status"`
		Fill   struct {
			Time        string `json:"time"`
			LineName    string `json:"line_name"`
			ServiceType string `json:"service_type"`
			Color       string `json:"service_color"`
		} `json:"fill"`
		Formation string `json:"formation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "filled", resp.Status)
	assert.Equal(t, "10:30", resp.Fill.Time)
	assert.Equal(t, "山手線", resp.Fill.LineName)
	assert.Equal(t, "各駅停車", resp.Fill.ServiceType)
	assert.Equal(t, "bg-green", resp.Fill.Color)
	assert.Equal(t, "E235系", resp.Formation)
}

func TestAutofill_arrivalEdge(t *testing.T) {
	var captured service.AutofillRequest
	autofill := &mockAutofillServicer{
		autofillFn: func(ctx context.Context, req service.AutofillRequest) (service.AutofillResult, error) {
			captured = req
			return service.AutofillResult{Status: timetable.StatusNoMatch}, nil
		},
	}
	h := newTestRouter(&mockRideServicer{}, autofill)

	body := `{"station":"品川","train_number":"1030G","edge":"arrival","ride_date":"2026-05-11"}`
	rec := doRequest(t, h, http.MethodPost, "/api/autofill", body, uuid.New())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, timetable.EdgeArrival, captured.Edge)
	require.Contains(t, rec.Body.String(), `"status":"no_match"`)
	require.NotContains(t, rec.Body.String(), `"fill"`)
}

func TestAutofill_superseded(t *testing.T) {
	autofill := &mockAutofillServicer{
		autofillFn: func(ctx context.Context, req service.AutofillRequest) (service.AutofillResult, error) {
			return service.AutofillResult{Status: timetable.StatusSuperseded}, nil
		},
	}
	h := newTestRouter(&mockRideServicer{}, autofill)

	body := `{"station":"東京","train_number":"1030G","ride_date":"2026-05-11"}`
	rec := doRequest(t, h, http.MethodPost, "/api/autofill", body, uuid.New())

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"superseded"`)
}

func TestAutofill_validationError(t *testing.T) {
	autofill := &mockAutofillServicer{
		autofillFn: func(ctx context.Context, req service.AutofillRequest) (service.AutofillResult, error) {
			return service.AutofillResult{}, fmt.Errorf("%w: user is required", domain.ErrValidation)
		},
	}
	h := newTestRouter(&mockRideServicer{}, autofill)

	body := `{"station":"東京","ride_date":"2026-05-11"}`
	rec := doRequest(t, h, http.MethodPost, "/api/autofill", body, uuid.New())

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "validation_error")
}

func TestAutofill_missingUser(t *testing.T) {
	h := newTestRouter(&mockRideServicer{}, &mockAutofillServicer{})

	rec := doRequest(t, h, http.MethodPost, "/api/autofill", `{}`, uuid.Nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
