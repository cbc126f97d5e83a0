// Package app assembles the store, cache, metrics and HTTP router
// from configuration. cmd/api and the end-to-end tests share it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/keydesk/keydesk/internal/cache"
	"github.com/keydesk/keydesk/internal/config"
	"github.com/keydesk/keydesk/internal/metrics"
	"github.com/keydesk/keydesk/internal/repository"
)

// App owns every long-lived dependency of the API process.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   repository.Store
	cache   *cache.Cache
	limiter cache.Limiter
	metrics metrics.Recorder
	handler http.Handler
}

// New connects to the configured backends and builds the router.
// On error everything opened so far is closed.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}
	logger.Info("connected to database", slog.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		applied, err := store.Migrate(ctx)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied", slog.Int("count", applied))
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}

	if cfg.RedisURL != "" {
		c, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.cache = c
		logger.Info("connected to Redis")
	}

	a.limiter = newLimiter(cfg, a.cache)

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		prom := metrics.NewPrometheus()
		a.metrics = prom
		metricsHandler = prom.Handler()
	} else {
		a.metrics = metrics.NewNoop()
	}

	a.handler = NewRouter(Deps{
		Config:         cfg,
		Logger:         logger,
		Store:          store,
		Cache:          a.cache,
		Limiter:        a.limiter,
		Metrics:        a.metrics,
		MetricsHandler: metricsHandler,
	})

	return a, nil
}

// newLimiter picks the shared Redis bucket when Redis is configured.
func newLimiter(cfg *config.Config, c *cache.Cache) cache.Limiter {
	if c != nil {
		return cache.NewRedisLimiter(c, cfg.RateLimitRegisterRPS, cfg.RateLimitRegisterBurst)
	}
	return cache.NewLocalLimiter(cfg.RateLimitRegisterRPS, cfg.RateLimitRegisterBurst)
}

// Handler returns the fully wired router.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Store returns the relational store.
func (a *App) Store() repository.Store {
	return a.store
}

// CloseStore releases the database pool.
func (a *App) CloseStore(context.Context) error {
	a.store.Close()
	return nil
}

// CloseCache releases the Redis client, if any.
func (a *App) CloseCache(context.Context) error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

// Close releases everything. Used when the server never started.
func (a *App) Close() error {
	err := a.CloseCache(context.Background())
	a.store.Close()
	return err
}
