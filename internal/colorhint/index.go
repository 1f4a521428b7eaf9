// Package colorhint derives a display color for a (line name, service type)
// pair from the user's ride history, falling back to a rule-based default
// for pairs never seen before.
package colorhint

import (
	"strings"

	"github.com/pkordes/rail-log/backend/internal/domain"
	"github.com/pkordes/rail-log/backend/internal/normalize"
)

// expressTokens and localTokens classify service types for the rule-based
// default: express-class services get a red badge, all-stops services a blue
// one, anything else gray.
var (
	expressTokens = []string{"特急", "快速", "急行"}
	localTokens   = []string{"普通", "各駅停車"}
)

// DefaultFor returns the rule-based default color for a service type.
func DefaultFor(serviceType string) domain.Color {
	for _, tok := range expressTokens {
		if strings.Contains(serviceType, tok) {
			return domain.Palette(domain.TokenRed)
		}
	}
	for _, tok := range localTokens {
		if strings.Contains(serviceType, tok) {
			return domain.Palette(domain.TokenBlue)
		}
	}
	return domain.Palette(domain.TokenGray)
}

type key struct {
	line    string
	service string
}

// Index is a snapshot lookup from normalized (line, service) to the color
// the user last picked for that pair. Build one per autofill or edit pass;
// it does not track history mutations made after construction.
type Index struct {
	colors map[key]domain.Color
}

// NewIndex scans history in the order given and indexes each record's color
// under its normalized (line, service) pair, including every segment of
// multi-leg records. First write wins: callers pass history in store order
// (ride date descending, then departure time ascending), so the color from
// the most recent ride date takes precedence, and within a date the earliest
// departure.
func NewIndex(history []domain.RideRecord) *Index {
	idx := &Index{colors: make(map[key]domain.Color)}
	for _, rec := range history {
		if len(rec.Segments) == 0 {
			idx.add(rec.LineName, rec.ServiceType, rec.Color)
			continue
		}
		for _, seg := range rec.Segments {
			idx.add(seg.LineName, seg.ServiceType, seg.Color)
		}
	}
	return idx
}

func (idx *Index) add(line, service string, color domain.Color) {
	if color.IsZero() {
		return
	}
	line, service = normalize.Normalize(line, service)
	k := key{line: line, service: service}
	if _, seen := idx.colors[k]; !seen {
		idx.colors[k] = color
	}
}

// ColorFor returns the historical color for the pair, or the rule-based
// default when the pair has never been ridden. Explicit colors from history
// are returned as stored, never substituted.
func (idx *Index) ColorFor(lineName, serviceType string) domain.Color {
	lineName, serviceType = normalize.Normalize(lineName, serviceType)
	if c, ok := idx.colors[key{line: lineName, service: serviceType}]; ok {
		return c
	}
	return DefaultFor(serviceType)
}
