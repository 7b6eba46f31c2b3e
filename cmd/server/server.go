package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/phrazzld/tasksplit/internal/config"
)

const readHeaderTimeout = 10 * time.Second

// runServe connects to the database, wires the application and serves HTTP
// until ctx is cancelled or SIGINT/SIGTERM arrives.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := setupAppDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	app, err := newApplication(cfg, logger, db)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(cfg.Server.Port)))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", cfg.Server.Port, err)
	}

	srv := &http.Server{
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	return serveHTTP(ctx, srv, ln, shutdownTimeout, logger)
}

// serveHTTP runs srv on ln inside a run.Group with a signal actor. The first
// actor to return stops the others; the server drains for at most
// shutdownTimeout.
func serveHTTP(
	ctx context.Context,
	srv *http.Server,
	ln net.Listener,
	shutdownTimeout time.Duration,
	logger *slog.Logger,
) error {
	var g run.Group

	// HTTP server.
	{
		g.Add(
			func() error {
				logger.Info("Starting server", "addr", ln.Addr().String())
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			},
			func(_ error) {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("Server shutdown failed", "error", err)
				}
			},
		)
	}

	// OS signals and parent context cancellation.
	{
		signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				logger.Info("Shutting down server...")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	if err := g.Run(); err != nil {
		return err
	}
	logger.Info("Server shutdown completed")
	return nil
}
