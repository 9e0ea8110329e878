package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"timebudget/internal/auth"
	"timebudget/internal/cli"
	apphttp "timebudget/internal/http"
	applog "timebudget/internal/log"
	"timebudget/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(nil)
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentApp)

	logger.Info("Starting timebudget API", "backend", cfg.DataBackend, "port", cfg.Port)

	ctx := context.Background()
	store := cli.InitBackend(ctx, logger.Logger, cfg)

	authCfg := auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, ExpiresIn: cfg.JWTExpiresIn}
	svc := services.New(services.Deps{
		Store:            store.Store,
		Hasher:           auth.NewBcrypt(cfg.BcryptCost),
		Tokens:           auth.NewTokens(authCfg),
		Publisher:        store.Publisher,
		CategoryCacheTTL: cfg.CategoryCacheTTL,
	})

	seeded, err := svc.Categories.SeedDefaults(ctx)
	if err != nil {
		logger.LogError(ctx, "Failed to seed default categories", err, applog.OpSeed, applog.ErrorTypeDatabase)
		store.Close()
		os.Exit(1)
	}
	if seeded > 0 {
		logger.Info("Seeded default categories", "count", seeded)
	}

	srv := apphttp.NewServer(apphttp.ServerConfig{
		Addr:               ":" + cfg.Port,
		Auth:               authCfg,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		MetricsEnabled:     cfg.MetricsEnabled,
		CacheSweepInterval: cfg.CategoryCacheTTL,
	}, svc, store, logger)

	runCtx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("Failed to close backend", "error", err)
		}
	})

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr, "started_at", time.Now().Format(time.RFC3339))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err, "addr", srv.Addr)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Server stopped gracefully")
}
