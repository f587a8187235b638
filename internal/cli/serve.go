package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/inventory/internal/handler"
	"github.com/msomdec/inventory/internal/service"
	"github.com/spf13/cobra"
)

// Token endpoint limits: a burst of five attempts per client, then one
// every twelve seconds.
const (
	tokenBurst = 5
	tokenRate  = 1.0 / 12
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := a.database(ctx)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	inventory := service.NewInventoryService(db.Items())
	auth := service.NewAuthService(a.cfg.Auth.PasswordHash, a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL)
	limiter := service.NewTokenBucket(tokenRate, tokenBurst)
	defer limiter.Stop()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, inventory, auth, limiter)

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           handler.LogRequests(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
		// Live streams end when the signal context is cancelled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "auth", auth.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
