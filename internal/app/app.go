package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/thenoetrevino/quadro/internal/auth"
	"github.com/thenoetrevino/quadro/internal/config"
	"github.com/thenoetrevino/quadro/internal/database"
	"github.com/thenoetrevino/quadro/internal/events"
	"github.com/thenoetrevino/quadro/internal/locker"
	"github.com/thenoetrevino/quadro/internal/metrics"
	"github.com/thenoetrevino/quadro/internal/mutator"
	boardservice "github.com/thenoetrevino/quadro/internal/services/board"
	cardservice "github.com/thenoetrevino/quadro/internal/services/card"
	columnservice "github.com/thenoetrevino/quadro/internal/services/column"
	labelservice "github.com/thenoetrevino/quadro/internal/services/label"
	userservice "github.com/thenoetrevino/quadro/internal/services/user"
)

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	store *database.Store
	redis *redis.Client

	Hub     *events.Hub
	Metrics *metrics.Metrics
	Tokens  *auth.TokenIssuer // nil when no JWT secret is configured
	Logger  *slog.Logger

	// Service layer (business logic)
	BoardService  boardservice.Service
	ColumnService columnservice.Service
	CardService   cardservice.Service
	LabelService  labelservice.Service
	UserService   userservice.Service
}

// New creates a new App over an open store with all services initialized.
// Every service shares one mutator, so all writes publish to the same hub.
func New(store *database.Store, opts ...Option) *App {
	cfg := &appConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	hub := cfg.hub
	if hub == nil {
		hub = events.NewHub(events.WithHubMetrics(cfg.metrics), events.WithHubLogger(cfg.logger))
	}

	mutOpts := []mutator.Option{
		mutator.WithPublisher(hub),
		mutator.WithMetrics(cfg.metrics),
		mutator.WithLogger(cfg.logger),
	}
	if cfg.locker != nil {
		mutOpts = append(mutOpts, mutator.WithLocker(cfg.locker))
	}
	mut := mutator.New(store, mutOpts...)

	return &App{
		store:         store,
		redis:         cfg.redis,
		Hub:           hub,
		Metrics:       cfg.metrics,
		Tokens:        cfg.tokens,
		Logger:        cfg.logger,
		BoardService:  boardservice.NewService(mut),
		ColumnService: columnservice.NewService(mut),
		CardService:   cardservice.NewService(mut),
		LabelService:  labelservice.NewService(mut),
		UserService:   userservice.NewService(mut),
	}
}

// Open builds the whole container from cfg: store, optional redis,
// locker, metrics, hub and token issuer
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// built before anything that needs closing
	var tokens *auth.TokenIssuer
	if cfg.Auth.JWTSecret != "" {
		var err error
		tokens, err = auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			return nil, err
		}
	}

	store, err := database.Open(ctx, database.Config{
		Driver:       database.Driver(cfg.Database.Driver),
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var client *redis.Client
	if cfg.Redis.Addr != "" {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			if cfg.Lock.Backend == locker.BackendRedis {
				_ = client.Close()
				_ = store.Close()
				return nil, fmt.Errorf("failed to connect to redis: %w", err)
			}
			// the rate limiter fails open, so an unreachable redis is not fatal
			logger.Warn("redis unreachable", "addr", cfg.Redis.Addr, "error", err)
		}
	}

	lk, err := locker.New(locker.Options{
		Backend: cfg.Lock.Backend,
		Redis:   client,
		TTL:     cfg.Lock.TTL,
		Wait:    cfg.Lock.Wait,
	})
	if err != nil {
		if client != nil {
			_ = client.Close()
		}
		_ = store.Close()
		return nil, err
	}

	m := metrics.New()
	hub := events.NewHub(
		events.WithHubMetrics(m),
		events.WithHubLogger(logger),
		events.WithBufferSizes(cfg.Events.BufferSize, cfg.Events.ClientBufferSize),
		events.WithPingInterval(cfg.Events.PingInterval),
	)

	opts := []Option{
		WithHub(hub),
		WithLocker(lk),
		WithMetrics(m),
		WithRedis(client),
		WithLogger(logger),
	}
	if tokens != nil {
		opts = append(opts, WithTokenIssuer(tokens))
	}

	return New(store, opts...), nil
}

// Store returns the underlying store, used for health checks and migrations
func (a *App) Store() *database.Store {
	return a.store
}

// Redis returns the redis client, or nil when none is configured
func (a *App) Redis() *redis.Client {
	return a.redis
}

// Close stops the hub and releases the redis client and the store
func (a *App) Close() error {
	a.Hub.Shutdown()

	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.store.Close())
	return errors.Join(errs...)
}
