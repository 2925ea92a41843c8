// Package main starts the event listing API server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"eventlisting/config"
	_ "eventlisting/docs"
	"eventlisting/internal/adapters/assets"
	"eventlisting/internal/adapters/auth"
	delivery "eventlisting/internal/delivery/http"
	"eventlisting/internal/delivery/http/controllers"
	"eventlisting/internal/delivery/http/middleware"
	"eventlisting/internal/repository/postgres"
	"eventlisting/internal/services"
)

const (
	serviceTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// @title Event Listing API
// @version 1.0
// @description Event listing platform with race-free RSVP admission control.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	assetStore, err := assets.NewStore(assets.StoreConfig{
		Provider: cfg.Assets.Provider,
		S3: assets.S3Config{
			Bucket:          cfg.Assets.Bucket,
			Region:          cfg.Assets.Region,
			AccessKeyID:     cfg.Assets.AccessKeyID,
			SecretAccessKey: cfg.Assets.SecretAccessKey,
			PublicBaseURL:   cfg.Assets.PublicBaseURL,
		},
	})
	if err != nil {
		logger.Error("failed to create asset store", "err", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db)
	userRepo := postgres.NewUserRepository(db)

	tokens := auth.NewJWT(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)

	eventService := services.NewEventService(eventRepo, assetStore, logger, serviceTimeout)
	queryService := services.NewQueryService(eventRepo, serviceTimeout)
	admissionService := services.NewAdmissionService(eventRepo, serviceTimeout)
	authService := services.NewAuthService(userRepo, hasher, tokens, cfg.TokenExpiry)

	eventController := controllers.NewEventController(logger, eventService, queryService)
	rsvpController := controllers.NewRSVPController(logger, admissionService)
	authController := controllers.NewAuthController(logger, authService)

	mux := delivery.NewRouter(eventController, rsvpController, authController, tokens)
	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "err", err)
		}
	}
}
