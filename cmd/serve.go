package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/quadro/internal/app"
	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/httpapi"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the websocket event stream",
		Long: `Run the HTTP API. Requires auth.jwt_secret (or QUADRO_JWT_SECRET).

Endpoints:
  /api/auth/*              register, login, me
  /api/kanban/*            boards, columns, cards and labels
  /api/kanban/boards/:id/ws  committed changes of one board
  /healthz /readyz /health /metrics`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default from config, :8080)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := cli.ConfigFromContext(cmd.Context())
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.ValidateServe(); err != nil {
		return cli.UsageError("%v", err)
	}

	ctx := cmd.Context()
	a, err := app.Open(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("failed to close app", "error", err)
		}
	}()

	var limiter *httpapi.RateLimiter
	if cfg.RateLimit.Enabled {
		if a.Redis() == nil {
			slog.Warn("rate limiting needs redis.addr, continuing without it")
		} else {
			limiter = httpapi.NewRateLimiter(a.Redis(), cfg.RateLimit.Requests, cfg.RateLimit.Window, a.Metrics)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpapi.NewRouter(a, httpapi.Options{
			RateLimiter:   limiter,
			AllowedOrigin: cfg.Server.AllowedOrigin,
			Version:       Version,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Hub.Run(gctx)
	})

	g.Go(func() error {
		slog.Info("quadro server starting",
			"addr", cfg.Server.Addr,
			"driver", cfg.Database.Driver,
			"lock_backend", cfg.Lock.Backend,
			"rate_limit", limiter != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("quadro server shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// ending subscriptions lets hijacked websocket handlers return
		a.Hub.Shutdown()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
