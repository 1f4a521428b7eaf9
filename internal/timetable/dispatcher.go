package timetable

import (
	"context"
	"sync"
	"time"

	"github.com/pkordes/rail-log/backend/internal/colorhint"
	"github.com/pkordes/rail-log/backend/internal/metrics"
)

// Status is the outcome of a dispatched lookup.
type Status int

const (
	// StatusFilled means the lookup matched and the fill should be applied.
	StatusFilled Status = iota
	// StatusNoMatch means the sweep exhausted every candidate without a
	// match; the draft stays untouched.
	StatusNoMatch
	// StatusSuperseded means a newer trigger for the same draft arrived
	// while this lookup was in flight. The result must be discarded.
	StatusSuperseded
)

// Result is the terminal outcome of one Trigger call.
type Result struct {
	Status Status
	Fill   Fill
}

// Query is one autofill trigger.
type Query struct {
	Station     string
	TrainNumber string
	Edge        Edge
	RideDate    time.Time
}

// Dispatcher runs lookups asynchronously and enforces "latest generation
// wins" per draft: a new trigger for the same draft key cancels the in-flight
// lookup and causes its result, should it still arrive, to be reported as
// superseded instead of applied. Without this, a slow lookup for an old
// station/train pair could overwrite fields derived from newer input.
type Dispatcher struct {
	engine  *Engine
	timeout time.Duration
	col     *metrics.Collector

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	gen    uint64
	cancel context.CancelFunc
}

// NewDispatcher builds a Dispatcher. timeout bounds one full lookup sweep;
// col may be nil.
func NewDispatcher(engine *Engine, timeout time.Duration, col *metrics.Collector) *Dispatcher {
	return &Dispatcher{
		engine:   engine,
		timeout:  timeout,
		col:      col,
		sessions: make(map[string]*session),
	}
}

// Trigger starts a lookup for the draft identified by draftKey and returns a
// channel that delivers exactly one Result. Any lookup already in flight for
// the same draft is cancelled and will report StatusSuperseded.
func (d *Dispatcher) Trigger(ctx context.Context, draftKey string, q Query, hints *colorhint.Index) <-chan Result {
	if d.col != nil {
		d.col.AutofillRequests.Inc()
	}

	d.mu.Lock()
	s, ok := d.sessions[draftKey]
	if !ok {
		s = &session{}
		d.sessions[draftKey] = s
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen

	lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	s.cancel = cancel
	d.mu.Unlock()

	out := make(chan Result, 1)
	go func() {
		defer cancel()
		start := time.Now()
		fill, found := d.engine.Lookup(lookupCtx, q.Station, q.TrainNumber, q.Edge, q.RideDate, hints)
		if d.col != nil {
			d.col.LookupDuration.Observe(time.Since(start).Seconds())
		}

		// A finished current-generation lookup is also the last one in
		// flight for this draft, so its session entry can be pruned; the
		// map would otherwise grow by one entry per draft key forever.
		// A missing entry means a newer lookup already finished and
		// pruned it, which makes this result stale too.
		d.mu.Lock()
		cur, ok := d.sessions[draftKey]
		stale := !ok || cur.gen != gen
		if !stale {
			delete(d.sessions, draftKey)
		}
		d.mu.Unlock()

		switch {
		case stale:
			if d.col != nil {
				d.col.AutofillSuperseded.Inc()
			}
			out <- Result{Status: StatusSuperseded}
		case found:
			if d.col != nil {
				d.col.AutofillMatches.Inc()
			}
			out <- Result{Status: StatusFilled, Fill: fill}
		default:
			out <- Result{Status: StatusNoMatch}
		}
	}()
	return out
}
