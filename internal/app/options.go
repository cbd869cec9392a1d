package app

import (
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/thenoetrevino/quadro/internal/auth"
	"github.com/thenoetrevino/quadro/internal/events"
	"github.com/thenoetrevino/quadro/internal/locker"
	"github.com/thenoetrevino/quadro/internal/metrics"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	hub     *events.Hub
	locker  locker.Locker
	metrics *metrics.Metrics
	tokens  *auth.TokenIssuer
	redis   *redis.Client
	logger  *slog.Logger
}

// WithHub sets the hub that receives committed board changes
func WithHub(h *events.Hub) Option {
	return func(cfg *appConfig) {
		cfg.hub = h
	}
}

// WithLocker serializes mutations per parent list
func WithLocker(l locker.Locker) Option {
	return func(cfg *appConfig) {
		cfg.locker = l
	}
}

// WithMetrics sets the metrics registry shared by the mutator, hub and HTTP layer
func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *appConfig) {
		cfg.metrics = m
	}
}

// WithTokenIssuer enables bearer token issuing and verification
func WithTokenIssuer(t *auth.TokenIssuer) Option {
	return func(cfg *appConfig) {
		cfg.tokens = t
	}
}

// WithRedis hands the app a redis client; the app closes it
func WithRedis(c *redis.Client) Option {
	return func(cfg *appConfig) {
		cfg.redis = c
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}
