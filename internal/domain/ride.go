// Package domain contains the core data types for the rail-log application.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler, timetable).
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RideRecord is one logged journey.
// When Segments is non-empty the ride covers several legs on one
// departure/arrival time pair; in that case LineName, ServiceType, and Color
// are derived summaries of the segments (joined names, first segment's
// color) and Segments is the ground truth for per-leg display.
type RideRecord struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	RideDate         time.Time `json:"ride_date"`
	RailwayCompany   string    `json:"railway_company,omitempty"`
	LineName         string    `json:"line_name,omitempty"`
	ServiceType      string    `json:"service_type,omitempty"`
	Destination      string    `json:"destination,omitempty"`
	TrainNumber      string    `json:"train_number,omitempty"`
	OperationNumber  string    `json:"operation_number,omitempty"`
	FormationNumber  string    `json:"formation_number,omitempty"`
	CarNumber        string    `json:"car_number,omitempty"`
	DepartureStation string    `json:"departure_station,omitempty"`
	ArrivalStation   string    `json:"arrival_station,omitempty"`
	DepartureTime    string    `json:"departure_time,omitempty"` // "HH:MM", may be empty
	ArrivalTime      string    `json:"arrival_time,omitempty"`   // "HH:MM", may be empty
	Color            Color     `json:"service_color"`
	Delayed          bool      `json:"is_delayed,omitempty"`
	DelayMinutes     int       `json:"delay_minutes,omitempty"` // meaningful only when Delayed
	Memo             string    `json:"memo,omitempty"`
	Segments         Segments  `json:"segments,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Segment is one leg of a multi-leg journey. Legs share the parent record's
// single departure/arrival time pair, so a segment has no time fields of its
// own and no identity outside its record.
type Segment struct {
	RailwayCompany string `json:"railway_company,omitempty"`
	LineName       string `json:"line_name,omitempty"`
	ServiceType    string `json:"service_type,omitempty"`
	Destination    string `json:"destination,omitempty"`
	Color          Color  `json:"service_color"`
}

// Segments is the ordered leg list of a record.
//
// Older clients persisted the list as one JSON-encoded string inside the
// record instead of a native array, so UnmarshalJSON accepts both shapes.
// Data that is neither decodes to an empty list rather than an error: a
// malformed segment blob must never make a record unloadable.
type Segments []Segment

// UnmarshalJSON accepts a JSON array of segments or a JSON string holding
// an encoded array. Anything else yields an empty list.
func (s *Segments) UnmarshalJSON(data []byte) error {
	var direct []Segment
	if err := json.Unmarshal(data, &direct); err == nil {
		*s = direct
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		var nested []Segment
		if err := json.Unmarshal([]byte(encoded), &nested); err == nil {
			*s = nested
			return nil
		}
	}

	*s = nil
	return nil
}
