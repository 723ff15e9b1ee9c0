package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"roomy-backend/config"
	"roomy-backend/internal/api"
	"roomy-backend/internal/auth"
	"roomy-backend/internal/booking"
	"roomy-backend/internal/db"
	"roomy-backend/internal/notification"
	"roomy-backend/internal/reservas"
	"roomy-backend/internal/store"
)

const sessionSweepInterval = 15 * time.Minute

func main() {
	logger := log.New(os.Stdout, "roomy-backend ", log.LstdFlags)

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("failed to read .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.SessionSecret == "" {
		logger.Fatalf("auth.session_secret (or ROOMY_SESSION_SECRET) must be set")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	var webpushOptions *webpush.Options
	var notifier booking.Notifier
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, webpushOptions)
		pool.Start(ctx)
		notifier = pool
		logger.Printf("notification worker pool started with %d workers", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys are not configured; booking notifications are disabled")
	}

	client := reservas.NewClient(cfg.Reservas)
	planner := booking.NewPlanner(client, notifier, booking.Options{
		Location: cfg.Server.Location,
		CacheTTL: cfg.Reservas.AvailabilityCacheTTL,
		Source:   cfg.Reservas.AvailabilitySource,
	})

	sessions := auth.NewManager(appStore, cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	sessions.OnSessionChange(func(ev auth.SessionEvent) {
		logger.Printf("session %s %s for user %s", ev.SessionID, ev.Kind, ev.User.ID)
	})
	go sessions.RunSweeper(ctx, sessionSweepInterval)

	handler := api.NewHandler(appStore, webpushOptions, planner, sessions, auth.NewGoogleSource(cfg.Auth), api.SessionSettings{
		CookieName: cfg.Auth.CookieName,
		Secure:     cfg.Auth.CookieSecure,
		TTL:        cfg.Auth.SessionTTL,
		UIURL:      cfg.Server.UIURL,
	})
	router := api.NewRouter(handler, cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
