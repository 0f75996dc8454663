package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"claimwise-auth/internal/app"
	"claimwise-auth/internal/config"
	"claimwise-auth/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		logger.Fatal("invalid configuration", map[string]any{"error": err})
	}

	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize app", map[string]any{"error": err})
	}

	go func() {
		if err := application.Run(); err != nil {
			logger.Fatal("http server failed", map[string]any{"error": err})
		}
	}()

	logger.Info("claimwise-auth started", map[string]any{
		"port":              cfg.AppPort,
		"identity_provider": cfg.IdentityProvider,
		"user_store":        cfg.UserStoreDriver,
	})

	<-ctx.Done()

	logger.Info("shutdown signal received", nil)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("graceful shutdown failed", map[string]any{"error": err})
	}

	logger.Info("claimwise-auth stopped cleanly", nil)
}
