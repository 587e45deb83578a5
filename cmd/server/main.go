package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	authHandlers "milty-server/internal/auth/handlers"
	"milty-server/internal/middleware"
	"milty-server/internal/milty"
	"milty-server/internal/server"
	"milty-server/internal/shared/config"
	"milty-server/internal/shared/cookies"
	"milty-server/internal/shared/database"
	"milty-server/internal/shared/logger"
	"milty-server/internal/shared/redis"
	"milty-server/internal/tile"
)

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init()
	appLogger := slog.With("component", "main")

	if err := run(appLogger); err != nil {
		appLogger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(appLogger *slog.Logger) error {
	cfg := config.GlobalConfig

	db, err := database.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Failed to close database", "error", err)
		}
	}()

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	redisClient, err := redis.Connect(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			appLogger.Error("Failed to close redis", "error", err)
		}
	}()

	catalog, err := tile.DefaultCatalog()
	if err != nil {
		return fmt.Errorf("failed to load tile catalog: %w", err)
	}

	var extraPresets []milty.Preset
	if cfg.Milty.PresetsPath != "" {
		extraPresets, err = milty.LoadPresetsFile(cfg.Milty.PresetsPath)
		if err != nil {
			return err
		}
		appLogger.Info("Loaded presets file", "path", cfg.Milty.PresetsPath, "count", len(extraPresets))
	}
	presets, err := milty.NewPresets(extraPresets...)
	if err != nil {
		return fmt.Errorf("invalid presets: %w", err)
	}

	var cache milty.DraftCache
	if redisClient != nil {
		cache = milty.NewRedisCache(redisClient.Client, cfg.Redis.DraftTTL, slog.Default())
	}

	tileService := tile.NewService(catalog, slog.Default())
	miltyService := milty.NewService(
		tileService,
		presets,
		milty.NewRepository(db),
		cache,
		cfg.Milty,
		slog.Default(),
	)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	defer rateLimiter.Stop()

	if !cfg.AuthConfigured() {
		appLogger.Warn("JWT_SECRET not set, admin endpoints will reject every request")
	}

	routes := server.NewRoutes(
		db,
		redisClient,
		tileService,
		miltyService,
		middleware.NewAuthenticator(cfg.Auth.JWTSecret),
		rateLimiter,
		authHandlers.NewSessionHandler(cfg.Auth.JWTSecret, cookies.OptionsFromConfig(cfg)),
		slog.Default(),
	)
	handler := middleware.NewCORS(cfg.Frontend).Middleware(routes.Setup())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Milty server starting",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment,
			"database_driver", cfg.Database.Driver,
			"redis_enabled", cfg.Redis.Enabled,
			"tiles", catalog.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		appLogger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	appLogger.Info("Server stopped")
	return nil
}
