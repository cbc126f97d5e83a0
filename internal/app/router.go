package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/keydesk/keydesk/internal/cache"
	"github.com/keydesk/keydesk/internal/config"
	"github.com/keydesk/keydesk/internal/handler"
	"github.com/keydesk/keydesk/internal/metrics"
	"github.com/keydesk/keydesk/internal/middleware"
	"github.com/keydesk/keydesk/internal/repository"
	"github.com/keydesk/keydesk/internal/service"
)

// Deps are the collaborators NewRouter wires together.
type Deps struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   repository.Store
	Cache   *cache.Cache // nil without Redis
	Limiter cache.Limiter
	Metrics metrics.Recorder

	// MetricsHandler is mounted at /metrics when non-nil.
	MetricsHandler http.Handler
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(d Deps) *chi.Mux {
	cfg := d.Config
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := d.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	adminService := service.NewAdminService(d.Store, cfg.AdminToken, recorder)
	userService := service.NewUserService(d.Store, cfg.APIKeyTTLDays, recorder)

	h := handler.New()
	adminHandler := handler.NewAdminHandler(adminService, logger)
	userHandler := handler.NewUserHandler(userService, logger)

	// A nil *cache.Cache must not become a non-nil interface.
	var cacheCheck handler.HealthChecker
	if d.Cache != nil {
		cacheCheck = d.Cache
	}
	healthHandler := handler.NewHealthHandler(d.Store, cacheCheck, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	maxBody := cfg.MaxRequestBodySize
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxRequestBodySize
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(maxBody))
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	// Probes and metrics stay outside the prefix.
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	adminAuth := middleware.AdminAuth(middleware.AdminAuthConfig{
		Logger: logger,
		Token:  cfg.AdminToken,
	})
	registerLimit := middleware.RateLimitIP(middleware.RateLimitConfig{
		Logger:   logger,
		Limiter:  d.Limiter,
		Recorder: recorder,
		Enabled:  cfg.RateLimitRegisterEnabled,
	})

	api := func(r chi.Router) {
		r.Route("/admin", func(r chi.Router) {
			r.Post("/register", adminHandler.Register)
			r.Post("/login", adminHandler.Login)
			r.With(adminAuth).Get("/dashboard", adminHandler.Dashboard)
		})
		r.With(registerLimit).Post("/user/register", userHandler.Register)
	}

	if cfg.APIPrefix == "" {
		r.Group(api)
	} else {
		r.Route(cfg.APIPrefix, api)
	}

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
