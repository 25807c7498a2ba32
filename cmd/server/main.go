// Package main is the entry point for the SimplyGenda calendar server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/simplygenda/backend/internal/agenda"
	"github.com/simplygenda/backend/internal/api"
	"github.com/simplygenda/backend/internal/calendar"
	"github.com/simplygenda/backend/internal/config"
	"github.com/simplygenda/backend/internal/metrics"
	"github.com/simplygenda/backend/internal/notes"
	"github.com/simplygenda/backend/internal/render"
	"github.com/simplygenda/backend/internal/snapshot"
	"github.com/simplygenda/backend/internal/storage"
	"github.com/simplygenda/backend/internal/timetable"
	"github.com/simplygenda/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	configPath := flag.String("config", "/data/config.yaml", "Path to the YAML configuration file")
	addr := flag.String("addr", "", "HTTP server address (overrides config)")
	dataDir := flag.String("data", "", "Data directory for the database and avatars (overrides config)")
	staticDir := flag.String("static", "", "Directory for static frontend files (overrides config)")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	snap := flag.Bool("snapshot", false, "Capture the /calendar page as PNG and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %q: %v", *configPath, err)
	}
	applyFlags(cfg, *addr, *dataDir, *staticDir)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.Listen); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	if *snap {
		if err := runSnapshot(cfg.Snapshot); err != nil {
			log.Fatalf("Snapshot failed: %v", err)
		}
		log.Printf("Snapshot written to %s", cfg.Snapshot.Output)
		os.Exit(0)
	}

	// Allow overriding version via environment (e.g., injected by container build/runtime)
	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	log.Printf("Starting SimplyGenda (version: %s)...", version)

	// Initialize database
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %q: %v", cfg.DataDir, err)
	}
	db, err := storage.Open(cfg.Database.Driver, cfg.DatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if db.Path() != "" {
		log.Printf("Database migrations complete (%s, %s)", db.Driver(), db.Path())
	} else {
		log.Printf("Database migrations complete (%s)", db.Driver())
	}

	avatars, err := storage.NewAvatarStore(cfg.AvatarDir, api.AvatarPrefix)
	if err != nil {
		log.Fatalf("Failed to prepare avatar directory: %v", err)
	}

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()
	broadcaster := websocket.NewEventBroadcaster(hub)

	// Initialize repositories
	eventRepo := storage.NewEventRepository(db)
	gradeRepo := storage.NewGradeRepository(db)
	userRepo := storage.NewUserRepository(db)
	sessionRepo := storage.NewSessionRepository(db)

	// Static school configuration
	tt := timetable.Default()
	if err := tt.Validate(); err != nil {
		log.Fatalf("Invalid timetable: %v", err)
	}

	m := metrics.New()
	registry := agenda.NewRegistry(
		eventRepo,
		render.NewEngine(tt),
		broadcaster,
		m,
		agenda.Options{DefaultZoom: cfg.DefaultZoom},
	)

	scheduler := agenda.NewScheduler(registry, sessionRepo)
	if err := scheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start calendar scheduler: %v", err)
	}

	router := api.NewRouter(api.Services{
		DB:          db,
		Hub:         hub,
		Registry:    registry,
		Scheduler:   scheduler,
		Users:       userRepo,
		Sessions:    sessionRepo,
		Notes:       notes.NewService(gradeRepo, tt),
		Avatars:     avatars,
		Parser:      calendar.NewParser(),
		Metrics:     m,
		StaticDir:   cfg.StaticDir,
		CORSOrigins: cfg.CORSOrigins,
		SessionTTL:  time.Duration(cfg.SessionTTLHours) * time.Hour,
		Version:     version,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Server listening on %s", cfg.Listen)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	broadcaster.NotifyAll("warning", "Redémarrage", "Le serveur redémarre, la connexion sera rétablie.")
	scheduler.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// applyFlags lets command-line values win over the file. Values derived from
// the address or data directory follow the flag unless the file set them.
func applyFlags(cfg *config.Config, addr, dataDir, staticDir string) {
	if addr != "" && addr != cfg.Listen {
		if cfg.Snapshot.URL == "http://localhost"+cfg.Listen+"/calendar" {
			cfg.Snapshot.URL = ""
		}
		cfg.Listen = addr
	}
	if dataDir != "" && dataDir != cfg.DataDir {
		if cfg.AvatarDir == filepath.Join(cfg.DataDir, "avatars") {
			cfg.AvatarDir = ""
		}
		if cfg.Snapshot.Output == filepath.Join(cfg.DataDir, "calendar.png") {
			cfg.Snapshot.Output = ""
		}
		cfg.DataDir = dataDir
	}
	if staticDir != "" {
		cfg.StaticDir = staticDir
	}
	cfg.Normalize()
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// runSnapshot captures the configured page with a headless Chromium.
func runSnapshot(sc config.SnapshotConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*snapshot.DefaultTimeout)
	defer cancel()
	return snapshot.Capture(ctx, snapshot.Options{
		URL:        sc.URL,
		OutputPath: sc.Output,
		Width:      sc.Width,
		Height:     sc.Height,
	})
}
