// Package handler implements the HTTP handlers for the rail-log API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, ride.go, autofill.go) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/rail-log/backend/internal/domain"
	"github.com/pkordes/rail-log/backend/internal/service"
)

// RideServicer defines the business operations the ride handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type RideServicer interface {
	Create(ctx context.Context, rec domain.RideRecord) (domain.RideRecord, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.RideRecord, error)
	List(ctx context.Context, userID uuid.UUID, search string, p domain.PaginationParams) ([]domain.RideRecord, int64, error)
	Update(ctx context.Context, rec domain.RideRecord) (domain.RideRecord, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	NewDraft(ctx context.Context, userID uuid.UUID, today time.Time) (domain.RideRecord, error)
	Suggestions(ctx context.Context, userID uuid.UUID) (domain.Suggestions, error)
}

// AutofillServicer defines the autofill operation the handler depends on.
type AutofillServicer interface {
	Autofill(ctx context.Context, req service.AutofillRequest) (service.AutofillResult, error)
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	rides    RideServicer
	autofill AutofillServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(rides RideServicer, autofill AutofillServicer) *Server {
	return &Server{rides: rides, autofill: autofill}
}

// Routes registers every endpoint on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/rides", s.ListRides)
		r.Post("/rides", s.CreateRide)
		r.Get("/rides/new", s.NewRideDraft)
		r.Get("/rides/{rideID}", s.GetRide)
		r.Put("/rides/{rideID}", s.UpdateRide)
		r.Delete("/rides/{rideID}", s.DeleteRide)
		r.Get("/suggestions", s.GetSuggestions)
		r.Post("/autofill", s.Autofill)
	})
}

// userIDHeader carries the authenticated user's id, set by the auth gateway
// in front of this service. Authentication itself is out of scope here.
const userIDHeader = "X-User-ID"

// userID extracts the owner identity from the request headers.
func userID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.Header.Get(userIDHeader))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// writeJSON serializes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}
