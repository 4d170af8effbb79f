package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

// Start launches the vault API and returns a channel closed once a
// termination signal arrives.
func (a *App) Start() <-chan struct{} {
	terminated := make(chan struct{})

	go func() {
		slog.Info("seedvault api listening",
			"address", a.httpServer.Addr,
			"encryption_enabled", a.codec.Encrypted(),
			"kvstore", a.config.GetString("kvstore.driver"),
			"backup_storage", a.config.GetString("storage.driver"),
			"events", a.config.GetString("messaging.driver"),
		)
		if !a.codec.Encrypted() {
			slog.Warn("seedvault is running without vault.master_key, secrets are stored as plain JSON")
		}

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("seedvault api stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sig)

		received := <-sig
		slog.Info("seedvault shutdown requested", "signal", received.String())

		if a.cancel != nil {
			a.cancel()
		}
		close(terminated)
	}()

	return terminated
}

// Serve runs the vault API on l. Used by tests that need an ephemeral port.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- a.httpServer.Serve(l)
		close(errChan)
	}()

	return errChan
}

// ShutdownTimeout bounds Stop, from app.server.shutdown_timeout_seconds.
func (a *App) ShutdownTimeout() time.Duration {
	if d := a.config.GetSecond("app.server.shutdown_timeout_seconds"); d > 0 {
		return d
	}
	return defaultShutdownTimeout
}

// Stop stops accepting requests, waits for pending security events and
// lockout alerts, then closes the vault's backing resources.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to drain seedvault api", "error", err)
	}

	slog.InfoContext(ctx, "waiting for pending security events and alerts")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background security work failed", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resource", "name", closer.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "seedvault stopped")
}
