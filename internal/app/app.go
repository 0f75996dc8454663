// Package app assembles the service: infrastructure, providers and the
// HTTP router.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"claimwise-auth/internal/config"
	"claimwise-auth/internal/logger"
)

const readHeaderTimeout = 10 * time.Second

type App struct {
	httpServer *http.Server
	cleanup    func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	router, cleanup, err := setupHTTP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		httpServer: &http.Server{
			Addr:              ":" + cfg.AppPort,
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		cleanup: cleanup,
	}, nil
}

// Run blocks serving HTTP. A graceful Shutdown makes it return nil.
func (a *App) Run() error {
	logger.Info("http server listening", map[string]any{"addr": a.httpServer.Addr})

	err := a.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests, then closes infrastructure even if
// draining timed out.
func (a *App) Shutdown(ctx context.Context) error {
	serverErr := a.httpServer.Shutdown(ctx)

	var cleanupErr error
	if a.cleanup != nil {
		cleanupErr = a.cleanup()
	}
	return errors.Join(serverErr, cleanupErr)
}
