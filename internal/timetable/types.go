// Package timetable queries an external scheduled-timetable source and
// derives ride-record field updates from a station name and train number.
package timetable

import (
	"fmt"
	"time"
)

// Railway is one entry of the operator's railway master: the line identity
// plus its ordered station list.
type Railway struct {
	ID       string    `json:"id"`       // e.g. "JR-East.KeihinTohokuNegishi"
	Title    string    `json:"title"`    // display line name, e.g. "京浜東北・根岸線"
	Operator string    `json:"operator"` // operator id the master was filtered by
	Stations []Station `json:"station_order"`
}

// Station is one stop on a railway.
type Station struct {
	ID    string `json:"id"`    // e.g. "JR-East.KeihinTohokuNegishi.Kamata"
	Title string `json:"title"` // human-readable name, e.g. "蒲田"
	Index int    `json:"index"` // 1-based position along the line
}

// StationNamed reports whether the railway's station list contains a station
// with the given display name, and returns it.
func (r Railway) StationNamed(name string) (Station, bool) {
	for _, s := range r.Stations {
		if s.Title == name {
			return s, true
		}
	}
	return Station{}, false
}

// TrainEntry is one scheduled train in a station timetable.
type TrainEntry struct {
	TrainNumber        string `json:"train_number"`
	TrainType          string `json:"train_type"`          // source token, e.g. "Rapid"
	Time               string `json:"time"`                // scheduled "HH:MM" at this station
	DestinationStation string `json:"destination_station"` // station id, may be empty
}

// Rail directions, searched in this fixed order. The source publishes one
// timetable per (railway, station, direction, calendar) tuple.
var Directions = []string{"Inbound", "Outbound"}

// Calendar classes. The split is purely weekday-vs-weekend; public holidays
// falling on weekdays are not looked up.
const (
	CalendarWeekday         = "Weekday"
	CalendarSaturdayHoliday = "SaturdayHoliday"
)

// CalendarFor returns the calendar class for a ride date.
func CalendarFor(date time.Time) string {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return CalendarSaturdayHoliday
	default:
		return CalendarWeekday
	}
}

// TimetableID fully qualifies one station timetable at the source.
type TimetableID struct {
	Railway   string
	Station   string
	Direction string
	Calendar  string
}

// String renders the id in the source's dotted form. Also used as the cache key.
func (id TimetableID) String() string {
	return fmt.Sprintf("%s.%s.%s.%s", id.Railway, id.Station, id.Direction, id.Calendar)
}

// serviceLabels maps source train-type tokens to the service-type labels
// shown on a record. Unknown tokens pass through unchanged so that new
// source vocabulary degrades to something visible instead of disappearing.
var serviceLabels = map[string]string{
	"Local":           "普通",
	"Rapid":           "快速",
	"CommuterRapid":   "通勤快速",
	"SpecialRapid":    "特別快速",
	"SemiExpress":     "準急",
	"Express":         "急行",
	"CommuterExpress": "通勤急行",
	"RapidExpress":    "快速急行",
	"LimitedExpress":  "特急",
}

// ServiceLabel translates a source train-type token to a display label.
func ServiceLabel(token string) string {
	if label, ok := serviceLabels[token]; ok {
		return label
	}
	return token
}
