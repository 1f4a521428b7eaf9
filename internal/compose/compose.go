// Package compose converts between the editing shape of a ride record
// (explicit per-leg segments) and the flat persisted shape (joined summary
// strings plus the raw segment list).
package compose

import (
	"strings"

	"github.com/pkordes/rail-log/backend/internal/colorhint"
	"github.com/pkordes/rail-log/backend/internal/domain"
)

// Separator joins segment line names and service types into the top-level
// summary strings. A full-width slash is used rather than ・ because ・
// appears inside genuine line names (京浜東北・根岸線) and the separator
// must uniquely mark derived summaries.
const Separator = "／"

// IsCompound reports whether s is a joined multi-leg summary rather than a
// reusable line or service name. Compound summaries are excluded from
// autocomplete suggestions.
func IsCompound(s string) bool {
	return strings.Contains(s, Separator)
}

// Flatten derives the persisted shape of a record. Single-leg records pass
// through unchanged. For multi-leg records the top-level line name and
// service type become the joined segment values, and the top-level color
// becomes the first segment's color (rule-based default when the segment has
// none). The segment list itself is kept in full so Expand can restore it.
func Flatten(rec domain.RideRecord) domain.RideRecord {
	if len(rec.Segments) == 0 {
		return rec
	}

	rec.LineName = joinNonEmpty(rec.Segments, func(s domain.Segment) string { return s.LineName })
	rec.ServiceType = joinNonEmpty(rec.Segments, func(s domain.Segment) string { return s.ServiceType })

	first := rec.Segments[0]
	if first.Color.IsZero() {
		rec.Color = colorhint.DefaultFor(first.ServiceType)
	} else {
		rec.Color = first.Color
	}
	return rec
}

// Expand restores the editing shape from a persisted record. A non-empty
// persisted segment list carries over verbatim and marks the draft
// multi-leg; otherwise the record stays single-leg with no segments.
// Tolerance for segment lists stored as an encoded string lives in
// domain.Segments.UnmarshalJSON, so by the time a record reaches Expand the
// list is already structured (or empty, for malformed data).
func Expand(rec domain.RideRecord) domain.RideRecord {
	if len(rec.Segments) == 0 {
		rec.Segments = nil
	}
	return rec
}

// MultiLeg reports whether the record is a multi-leg journey.
func MultiLeg(rec domain.RideRecord) bool {
	return len(rec.Segments) > 0
}

func joinNonEmpty(segs domain.Segments, field func(domain.Segment) string) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if v := field(s); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, Separator)
}
