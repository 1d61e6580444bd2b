// Package main is the entry point for the HopeSpot rescue coordination
// server. It provides a REST API for reporting roadside-assistance cases,
// working them through the rescue status pipeline, and admin reporting.
//
// Roles:
//   - Helpers submit cases (open endpoints)
//   - Rescuers accept, progress, complete or decline cases (session-gated)
//   - Admins assign rescuers, manage the roster and run reports (session-gated)
//
// All role and identity checks happen server-side: the transition engine is
// only invoked with an identity verified from the session token.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hopespot/rescue-server/internal/auth"
	"github.com/hopespot/rescue-server/internal/config"
	"github.com/hopespot/rescue-server/internal/geo"
	"github.com/hopespot/rescue-server/internal/handlers"
	"github.com/hopespot/rescue-server/internal/middleware"
	"github.com/hopespot/rescue-server/internal/storage"
	"github.com/hopespot/rescue-server/internal/store"
)

// defaultRescuers are provisioned on first start against an empty roster.
var defaultRescuers = []store.SeedDefault{
	{ID: "mike-r1", Email: "mike.davis@hopespot.local", Password: "rescue123", Name: "Mike Davis", Phone: "+1234567801"},
	{ID: "sarah-r2", Email: "sarah.williams@hopespot.local", Password: "rescue123", Name: "Sarah Williams", Phone: "+1234567802"},
}

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load config: %v", err)
	}

	sugar.Infow("Starting HopeSpot Rescue Server",
		"port", cfg.Port,
		"env", cfg.Environment,
		"storage", cfg.StorageBackend,
	)

	// Initialize the persistence adapter
	kv, err := storage.Open(context.Background(), storage.Config{
		Backend:     storage.Backend(cfg.StorageBackend),
		DataDir:     cfg.DataDir,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
	})
	if err != nil {
		sugar.Fatalf("Failed to open storage: %v", err)
	}
	defer kv.Close()

	// Initialize stores
	accounts := store.NewAccountStore(kv, cfg.RescuersKey(), sugar)
	cases := store.NewCaseStore(kv, cfg.CasesKey(), sugar)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelLoad()
	if err := accounts.Load(loadCtx); err != nil {
		sugar.Fatalf("Failed to load accounts: %v", err)
	}
	if err := cases.Load(loadCtx); err != nil {
		sugar.Fatalf("Failed to load cases: %v", err)
	}
	if err := accounts.Seed(loadCtx, defaultRescuers); err != nil {
		sugar.Fatalf("Failed to seed accounts: %v", err)
	}

	adminPassHash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		sugar.Fatalf("Failed to hash admin password: %v", err)
	}

	// Initialize handlers
	tokenTTL := time.Duration(cfg.TokenTTLHours) * time.Hour
	authHandler := handlers.NewAuthHandler(accounts, cfg.JWTSecret, tokenTTL, cfg.AdminID, adminPassHash, sugar)
	caseHandler := handlers.NewCaseHandler(cases, sugar)
	adminHandler := handlers.NewAdminHandler(cases, accounts, sugar)
	reportHandler := handlers.NewReportHandler(cases, sugar)
	geoHandler := handlers.NewGeoHandler(geo.NewClient(cfg.GeocoderURL, sugar), sugar)
	healthHandler := handlers.NewHealthHandler(cases, accounts, sugar)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting
	r.Use(middleware.RateLimit(cfg.RateLimitRPM))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", healthHandler.Check)
		r.Get("/health/ready", healthHandler.Ready)

		// Session endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/admin/login", authHandler.AdminLogin)
			r.Post("/rescuer/login", authHandler.RescuerLogin)
			r.Post("/rescuer/register", authHandler.RescuerRegister)
		})

		// Helper endpoints (no account concept for reporters)
		r.Route("/cases", func(r chi.Router) {
			r.Post("/", caseHandler.Submit)
			r.Get("/", caseHandler.List)
			r.Get("/{id}", caseHandler.Get)

			// Lifecycle transitions require a verified role
			r.With(middleware.RequireRole(cfg.JWTSecret, "admin", "rescuer")).
				Post("/{id}/transition", caseHandler.Transition)
			r.With(middleware.RequireRole(cfg.JWTSecret, "rescuer")).
				Post("/{id}/reject", caseHandler.Reject)
		})

		// Reverse geocoding proxy for the submission form
		r.Get("/geo/reverse", geoHandler.Reverse)

		// Rescuer offer pool
		r.With(middleware.RequireRole(cfg.JWTSecret, "rescuer")).
			Get("/rescuer/queue", caseHandler.Queue)

		// Admin oversight
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(cfg.JWTSecret, "admin"))
			r.Get("/cases", adminHandler.ListCases)
			r.Get("/rescuers", adminHandler.Directory)
			r.Post("/rescuers", adminHandler.Provision)
		})

		// Reports and bulk data management (admin only)
		r.Route("/reports", func(r chi.Router) {
			r.Use(middleware.RequireRole(cfg.JWTSecret, "admin"))
			r.Get("/cases", reportHandler.Cases)
			r.Get("/cases/export.csv", reportHandler.ExportCasesCSV)
			r.Get("/rescuers/export.csv", reportHandler.ExportRescuersCSV)
		})
		r.Route("/data", func(r chi.Router) {
			r.Use(middleware.RequireRole(cfg.JWTSecret, "admin"))
			r.Get("/export.json", reportHandler.ExportJSON)
			r.Post("/import", reportHandler.Import)
			r.Delete("/", reportHandler.Clear)
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}
