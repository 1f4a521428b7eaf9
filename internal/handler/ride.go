package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/rail-log/backend/internal/clock"
	"github.com/pkordes/rail-log/backend/internal/domain"
)

// rideRequest is the create/update body.
type rideRequest struct {
	RideDate         openapi_types.Date `json:"ride_date"`
	RailwayCompany   string             `json:"railway_company"`
	LineName         string             `json:"line_name"`
	ServiceType      string             `json:"service_type"`
	Destination      string             `json:"destination"`
	TrainNumber      string             `json:"train_number"`
	OperationNumber  string             `json:"operation_number"`
	FormationNumber  string             `json:"formation_number"`
	CarNumber        string             `json:"car_number"`
	DepartureStation string             `json:"departure_station"`
	ArrivalStation   string             `json:"arrival_station"`
	DepartureTime    string             `json:"departure_time"`
	ArrivalTime      string             `json:"arrival_time"`
	ServiceColor     string             `json:"service_color"`
	IsDelayed        bool               `json:"is_delayed"`
	DelayMinutes     int                `json:"delay_minutes"`
	Memo             string             `json:"memo"`
	Segments         domain.Segments    `json:"segments"`
}

// rideResponse is the wire shape of a ride. The actual_* times are the
// delay-shifted display times, present only when the ride was delayed.
type rideResponse struct {
	ID                  uuid.UUID          `json:"id"`
	UserID              uuid.UUID          `json:"user_id"`
	RideDate            openapi_types.Date `json:"ride_date"`
	RailwayCompany      string             `json:"railway_company,omitempty"`
	LineName            string             `json:"line_name,omitempty"`
	ServiceType         string             `json:"service_type,omitempty"`
	Destination         string             `json:"destination,omitempty"`
	TrainNumber         string             `json:"train_number,omitempty"`
	OperationNumber     string             `json:"operation_number,omitempty"`
	FormationNumber     string             `json:"formation_number,omitempty"`
	CarNumber           string             `json:"car_number,omitempty"`
	DepartureStation    string             `json:"departure_station,omitempty"`
	ArrivalStation      string             `json:"arrival_station,omitempty"`
	DepartureTime       string             `json:"departure_time,omitempty"`
	ArrivalTime         string             `json:"arrival_time,omitempty"`
	ActualDepartureTime string             `json:"actual_departure_time,omitempty"`
	ActualArrivalTime   string             `json:"actual_arrival_time,omitempty"`
	ServiceColor        string             `json:"service_color"`
	IsDelayed           bool               `json:"is_delayed,omitempty"`
	DelayMinutes        int                `json:"delay_minutes,omitempty"`
	Memo                string             `json:"memo,omitempty"`
	MultiLeg            bool               `json:"multi_leg,omitempty"`
	Segments            domain.Segments    `json:"segments,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// pagination is the paging envelope of list responses.
type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// listRidesResponse is the GET /api/rides body.
type listRidesResponse struct {
	Data       []rideResponse `json:"data"`
	Pagination pagination     `json:"pagination"`
}

// CreateRide handles POST /api/rides.
func (s *Server) CreateRide(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}

	var req rideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	created, err := s.rides.Create(r.Context(), requestToRide(req, uid, uuid.Nil))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			validationFailed(w, err)
			return
		}
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, rideToResponse(created))
}

// ListRides handles GET /api/rides.
// Supports ?search=, ?page=, and ?limit= query parameters.
func (s *Server) ListRides(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}

	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	rides, total, err := s.rides.List(r.Context(), uid, r.URL.Query().Get("search"), params)
	if err != nil {
		internalError(w)
		return
	}

	data := make([]rideResponse, len(rides))
	for i, rec := range rides {
		data[i] = rideToResponse(rec)
	}
	writeJSON(w, http.StatusOK, listRidesResponse{
		Data:       data,
		Pagination: pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// GetRide handles GET /api/rides/{rideID}.
func (s *Server) GetRide(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "rideID"))
	if err != nil {
		badRequest(w, "invalid ride id")
		return
	}

	rec, err := s.rides.GetByID(r.Context(), uid, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "ride not found")
			return
		}
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, rideToResponse(rec))
}

// UpdateRide handles PUT /api/rides/{rideID}.
func (s *Server) UpdateRide(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "rideID"))
	if err != nil {
		badRequest(w, "invalid ride id")
		return
	}

	var req rideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	updated, err := s.rides.Update(r.Context(), requestToRide(req, uid, id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			validationFailed(w, err)
		case errors.Is(err, domain.ErrNotFound):
			notFound(w, "ride not found")
		default:
			internalError(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, rideToResponse(updated))
}

// DeleteRide handles DELETE /api/rides/{rideID}.
func (s *Server) DeleteRide(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "rideID"))
	if err != nil {
		badRequest(w, "invalid ride id")
		return
	}

	if err := s.rides.Delete(r.Context(), uid, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "ride not found")
			return
		}
		internalError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// NewRideDraft handles GET /api/rides/new: the prefilled entry-form defaults.
func (s *Server) NewRideDraft(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}

	draft, err := s.rides.NewDraft(r.Context(), uid, time.Now())
	if err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, rideToResponse(draft))
}

// GetSuggestions handles GET /api/suggestions.
func (s *Server) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		unauthorized(w)
		return
	}

	sug, err := s.rides.Suggestions(r.Context(), uid)
	if err != nil {
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, sug)
}

// queryInt parses an optional integer query parameter; absent or malformed
// values yield nil so pagination falls back to its defaults.
func queryInt(r *http.Request, name string) *int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// requestToRide maps the request body onto a domain record.
func requestToRide(req rideRequest, userID, id uuid.UUID) domain.RideRecord {
	return domain.RideRecord{
		ID:               id,
		UserID:           userID,
		RideDate:         req.RideDate.Time,
		RailwayCompany:   req.RailwayCompany,
		LineName:         req.LineName,
		ServiceType:      req.ServiceType,
		Destination:      req.Destination,
		TrainNumber:      req.TrainNumber,
		OperationNumber:  req.OperationNumber,
		FormationNumber:  req.FormationNumber,
		CarNumber:        req.CarNumber,
		DepartureStation: req.DepartureStation,
		ArrivalStation:   req.ArrivalStation,
		DepartureTime:    req.DepartureTime,
		ArrivalTime:      req.ArrivalTime,
		Color:            domain.ParseColor(req.ServiceColor),
		Delayed:          req.IsDelayed,
		DelayMinutes:     req.DelayMinutes,
		Memo:             req.Memo,
		Segments:         req.Segments,
	}
}

// rideToResponse maps a domain record onto the wire shape, computing the
// delay-shifted display times for delayed rides.
func rideToResponse(rec domain.RideRecord) rideResponse {
	resp := rideResponse{
		ID:               rec.ID,
		UserID:           rec.UserID,
		RideDate:         openapi_types.Date{Time: rec.RideDate},
		RailwayCompany:   rec.RailwayCompany,
		LineName:         rec.LineName,
		ServiceType:      rec.ServiceType,
		Destination:      rec.Destination,
		TrainNumber:      rec.TrainNumber,
		OperationNumber:  rec.OperationNumber,
		FormationNumber:  rec.FormationNumber,
		CarNumber:        rec.CarNumber,
		DepartureStation: rec.DepartureStation,
		ArrivalStation:   rec.ArrivalStation,
		DepartureTime:    rec.DepartureTime,
		ArrivalTime:      rec.ArrivalTime,
		ServiceColor:     rec.Color.String(),
		IsDelayed:        rec.Delayed,
		DelayMinutes:     rec.DelayMinutes,
		Memo:             rec.Memo,
		MultiLeg:         len(rec.Segments) > 0,
		Segments:         rec.Segments,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
	if rec.Delayed && rec.DelayMinutes > 0 {
		resp.ActualDepartureTime = clock.Shift(rec.DepartureTime, rec.DelayMinutes)
		resp.ActualArrivalTime = clock.Shift(rec.ArrivalTime, rec.DelayMinutes)
	}
	return resp
}
