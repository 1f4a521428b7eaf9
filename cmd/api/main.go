// Package main is the entry point for the rail-log API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/pkordes/rail-log/backend/internal/config"
	"github.com/pkordes/rail-log/backend/internal/formation"
	"github.com/pkordes/rail-log/backend/internal/handler"
	"github.com/pkordes/rail-log/backend/internal/metrics"
	"github.com/pkordes/rail-log/backend/internal/middleware"
	"github.com/pkordes/rail-log/backend/internal/repo"
	"github.com/pkordes/rail-log/backend/internal/service"
	"github.com/pkordes/rail-log/backend/internal/timetable"
)

// maxBodySize caps request bodies at 1 MiB. Ride records are small; anything
// larger is a client bug or abuse.
const maxBodySize = 1 << 20

func main() {
	// --- Config -----------------------------------------------------------
	// .env is a local-development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Metrics ----------------------------------------------------------
	// The collector always exists so the rest of the wiring can record
	// unconditionally; the /metrics server runs only when configured.
	collector := metrics.NewCollector()
	if msrv := collector.Serve(cfg.MetricsAddr); msrv != nil {
		defer msrv.Close()
	}

	// --- Services ---------------------------------------------------------
	rides := repo.NewRideRepo(pool)
	rideSvc := service.NewRideService(rides)

	if cfg.TimetableBaseURL == "" {
		slog.Warn("TIMETABLE_BASE_URL not set, autofill lookups will not match")
	}
	ttClient := timetable.NewClient(cfg.TimetableBaseURL, cfg.TimetableAPIKey, cfg.TimetableOperator, collector)
	engine := timetable.NewEngine(ttClient, cfg.TimetableOperatorLabel)
	dispatcher := timetable.NewDispatcher(engine, cfg.AutofillTimeout, collector)

	var formations formation.Lookup = formation.Noop{}
	if cfg.FormationURL != "" {
		formations = formation.NewClient(cfg.FormationURL)
	}
	autofillSvc := service.NewAutofillService(rides, dispatcher, formations)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodySize))

	handler.NewServer(rideSvc, autofillSvc).Routes(r)

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
