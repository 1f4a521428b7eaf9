package timetable

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkordes/rail-log/backend/internal/colorhint"
	"github.com/pkordes/rail-log/backend/internal/domain"
	"github.com/pkordes/rail-log/backend/internal/normalize"
)

// Edge identifies which time field triggered an autofill.
type Edge int

const (
	// EdgeDeparture fills the departure time plus line, operator, service
	// type, color, and destination.
	EdgeDeparture Edge = iota
	// EdgeArrival fills only the arrival time; the other fields are assumed
	// already correct from the departure-edge fill.
	EdgeArrival
)

// Fill is the field update produced by a successful lookup. It is applied to
// a draft with Apply and holds nothing the draft does not need: the source
// identifiers used to form the query are discarded.
type Fill struct {
	Edge        Edge         `json:"-"`
	Time        string       `json:"time"`
	LineName    string       `json:"line_name,omitempty"`
	ServiceType string       `json:"service_type,omitempty"`
	Operator    string       `json:"operator,omitempty"`
	Destination string       `json:"destination,omitempty"`
	Color       domain.Color `json:"service_color,omitzero"`
}

// Apply writes the fill into a draft record and returns the updated draft.
func (f Fill) Apply(rec domain.RideRecord) domain.RideRecord {
	if f.Edge == EdgeArrival {
		rec.ArrivalTime = f.Time
		return rec
	}
	rec.DepartureTime = f.Time
	rec.LineName = f.LineName
	rec.ServiceType = f.ServiceType
	rec.RailwayCompany = f.Operator
	rec.Destination = f.Destination
	rec.Color = f.Color
	return rec
}

// Engine resolves a (station, train number) pair against the timetable
// source. It is stateless; cancellation and staleness are the Dispatcher's
// concern.
type Engine struct {
	source        Source
	operatorLabel string // human-readable operator written into fills, e.g. "JR東日本"
}

// NewEngine builds an Engine over the given source.
func NewEngine(source Source, operatorLabel string) *Engine {
	return &Engine{source: source, operatorLabel: operatorLabel}
}

// Lookup searches every candidate railway and direction for a scheduled
// train matching trainNumber at the named station on rideDate's calendar
// class. The first match wins and stops the search.
//
// Lookup never returns an error: a failed or unparseable query counts as "no
// trains in this timetable" and the sweep continues. Exhausting all
// candidates yields found=false and the caller leaves the draft untouched.
func (e *Engine) Lookup(ctx context.Context, stationName, trainNumber string, edge Edge, rideDate time.Time, hints *colorhint.Index) (Fill, bool) {
	if stationName == "" || trainNumber == "" {
		return Fill{}, false
	}

	railways, err := e.source.Railways(ctx)
	if err != nil {
		slog.DebugContext(ctx, "autofill: railway master fetch failed", "error", err)
		return Fill{}, false
	}
	if len(railways) == 0 {
		return Fill{}, false
	}

	calendar := CalendarFor(rideDate)

	for _, rw := range railways {
		station, ok := rw.StationNamed(stationName)
		if !ok {
			continue
		}
		for _, direction := range Directions {
			if ctx.Err() != nil {
				return Fill{}, false
			}
			id := TimetableID{Railway: rw.ID, Station: station.ID, Direction: direction, Calendar: calendar}
			entries, err := e.source.StationTimetable(ctx, id)
			if err != nil {
				slog.DebugContext(ctx, "autofill: timetable query failed", "id", id.String(), "error", err)
				continue
			}
			for _, entry := range entries {
				if strings.EqualFold(entry.TrainNumber, trainNumber) {
					return e.fill(rw, entry, edge, railways, hints), true
				}
			}
		}
	}
	return Fill{}, false
}

// fill assembles the field update for a matched entry.
func (e *Engine) fill(rw Railway, entry TrainEntry, edge Edge, railways []Railway, hints *colorhint.Index) Fill {
	if edge == EdgeArrival {
		return Fill{Edge: EdgeArrival, Time: entry.Time}
	}

	line, service := normalize.Normalize(rw.Title, ServiceLabel(entry.TrainType))

	return Fill{
		Edge:        EdgeDeparture,
		Time:        entry.Time,
		LineName:    line,
		ServiceType: service,
		Operator:    e.operatorLabel,
		Destination: resolveStationTitle(railways, entry.DestinationStation),
		Color:       hints.ColorFor(line, service),
	}
}

// resolveStationTitle maps a destination station id back to its display name
// by scanning the railway master. Unknown ids resolve to "".
func resolveStationTitle(railways []Railway, stationID string) string {
	if stationID == "" {
		return ""
	}
	for _, rw := range railways {
		for _, s := range rw.Stations {
			if s.ID == stationID {
				return s.Title
			}
		}
	}
	return ""
}
