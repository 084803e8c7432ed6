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

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"cryptvault/api/internal/api/handlers"
	"cryptvault/api/internal/api/middleware"
	"cryptvault/api/internal/api/router"
	"cryptvault/api/internal/config"
	"cryptvault/api/internal/core/services"
	"cryptvault/api/internal/db/messages"
	"cryptvault/api/internal/db/postgres"
	"cryptvault/api/internal/infrastructure/crypto"
)

func main() {
	// --- 1. Logging & Configuration ---
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("FATAL: configuration invalid", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)
	logger.Info("booting cryptvault api", "env", cfg.Environment)

	// --- 2. Cipher providers (exactly once, before any engine exists) ---
	crypto.Init()
	engine, err := crypto.NewEngine()
	if err != nil {
		logger.Error("FATAL: cipher engine unavailable", "error", err)
		os.Exit(1)
	}

	// --- 3. Storage ---
	ctx := context.Background()
	dbPool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("FATAL: DB failed", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := postgres.Migrate(ctx, dbPool); err != nil {
		logger.Error("FATAL: schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	// The message store shares the pool through database/sql.
	sqlDB := sqlx.NewDb(stdlib.OpenDBFromPool(dbPool), "pgx")
	defer sqlDB.Close()

	// --- 4. Dependency Injection ---
	userRepo := postgres.NewUserRepo(dbPool)
	messageRepo := messages.NewRepo(sqlDB)

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := services.NewAuthService(userRepo, tokenService, logger)
	messageService := services.NewMessageService(messageRepo, userRepo, engine, logger)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiterCtx, stopLimiter := context.WithCancel(ctx)
	defer stopLimiter()
	go rateLimiter.Run(limiterCtx)

	// --- 5. HTTP Gateway ---
	mux := router.NewRouter(router.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		AuthHandler:    handlers.NewAuthHandler(authService, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.IsProduction()),
		MessageHandler: handlers.NewMessageHandler(messageService),
		CipherHandler:  handlers.NewCipherHandler(engine),
		HealthHandler:  handlers.NewHealthHandler(dbPool),
		AuthMiddleware: middleware.NewAuthMiddleware(authService, logger),
		RateLimiter:    rateLimiter,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      65 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// --- 6. Graceful Exit ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("cryptvault api listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("CRITICAL: Server crashed", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("shutting down...")
	stopLimiter()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ERROR: Forced shutdown", "error", err)
	}
	logger.Info("cryptvault api stopped")
}
