package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/rail-log/backend/internal/domain"
	"github.com/pkordes/rail-log/backend/internal/service"
	"github.com/pkordes/rail-log/backend/internal/timetable"
)

// autofillRequest is the POST /api/autofill body. Edge says which time field
// the user just edited: "departure" (default) or "arrival". DraftKey lets a
// client editing several drafts keep their autofill generations apart.
type autofillRequest struct {
	DraftKey    string             `json:"draft_key"`
	Station     string             `json:"station"`
	TrainNumber string             `json:"train_number"`
	Edge        string             `json:"edge"`
	RideDate    openapi_types.Date `json:"ride_date"`
}

// autofillResponse reports the lookup outcome. Fill is present only when
// status is "filled"; a "no_match" or "superseded" response means the client
// leaves the draft untouched.
type autofillResponse struct {
	Status    string          `json:"status"`
	Fill      *timetable.Fill `json:"fill,omitempty"`
	Formation string          `json:"formation,omitempty"`
}

// Autofill handles POST /api/autofill.
func (s *Server) Autofill(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}

	var req autofillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	edge := timetable.EdgeDeparture
	if req.Edge == "arrival" {
		edge = timetable.EdgeArrival
	}

	result, err := s.autofill.Autofill(r.Context(), service.AutofillRequest{
		UserID:      uid,
		DraftKey:    req.DraftKey,
		Station:     req.Station,
		TrainNumber: req.TrainNumber,
		Edge:        edge,
		RideDate:    req.RideDate.Time,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			validationFailed(w, err)
			return
		}
		internalError(w)
		return
	}

	switch result.Status {
	case timetable.StatusFilled:
		writeJSON(w, http.StatusOK, autofillResponse{
			Status:    "filled",
			Fill:      &result.Fill,
			Formation: result.Formation,
		})
	case timetable.StatusSuperseded:
		writeJSON(w, http.StatusOK, autofillResponse{Status: "superseded"})
	default:
		writeJSON(w, http.StatusOK, autofillResponse{Status: "no_match"})
	}
}
