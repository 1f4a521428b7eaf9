// Package metrics exposes Prometheus instrumentation for the autofill
// pipeline on a private registry, served on a side-channel address separate
// from the API listener.
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles all rail-log metrics. Construct one with NewCollector
// and share it between the timetable client and the autofill dispatcher.
type Collector struct {
	reg *prometheus.Registry

	AutofillRequests   prometheus.Counter
	AutofillMatches    prometheus.Counter
	AutofillSuperseded prometheus.Counter

	TimetableQueries *prometheus.CounterVec // result label: ok|error|empty
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter

	LookupDuration prometheus.Histogram
}

// NewCollector builds and registers all metrics on a fresh private registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		AutofillRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raillog_autofill_requests_total",
			Help: "Total autofill lookups triggered.",
		}),
		AutofillMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raillog_autofill_matches_total",
			Help: "Total autofill lookups that matched a timetable entry.",
		}),
		AutofillSuperseded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raillog_autofill_superseded_total",
			Help: "Total autofill results discarded because a newer trigger arrived first.",
		}),
		TimetableQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raillog_timetable_queries_total",
			Help: "Timetable source queries by result.",
		}, []string{"result"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raillog_timetable_cache_hits_total",
			Help: "Timetable responses served from the in-process cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raillog_timetable_cache_misses_total",
			Help: "Timetable responses that required a source fetch.",
		}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "raillog_autofill_lookup_duration_seconds",
			Help:    "Wall time of a full railway-by-direction autofill sweep.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}

	reg.MustRegister(
		c.AutofillRequests, c.AutofillMatches, c.AutofillSuperseded,
		c.TimetableQueries, c.CacheHits, c.CacheMisses,
		c.LookupDuration,
	)

	return c
}

// Handler returns the /metrics handler for the private registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on addr and returns it so
// the caller can shut it down. A nil server is returned when addr is empty.
func (c *Collector) Serve(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()
	slog.Info("metrics listening", "addr", addr)
	return srv
}
