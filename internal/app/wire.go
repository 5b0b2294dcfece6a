package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/attaboy/strokecheck/internal/auth"
	"github.com/attaboy/strokecheck/internal/form"
	"github.com/attaboy/strokecheck/internal/guard"
	"github.com/attaboy/strokecheck/internal/handler"
	"github.com/attaboy/strokecheck/internal/infra"
	"github.com/attaboy/strokecheck/internal/repository"
	"github.com/attaboy/strokecheck/internal/risk"
	"github.com/attaboy/strokecheck/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Store     repository.CredentialStore
	Tracker   *auth.Tracker
	Evaluator risk.Evaluator
	Events    service.EventPublisher
	Metrics   *infra.Metrics
	Logger    *slog.Logger

	StrictForm     bool
	LoginRateLimit int // per client IP per minute, 0 disables
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) (chi.Router, error) {
	logger := deps.Logger
	events := deps.Events
	if events == nil {
		events = service.NopPublisher{}
	}

	renderer, err := handler.NewRenderer(logger)
	if err != nil {
		return nil, err
	}

	// Services
	parser := form.NewParser(deps.StrictForm)
	authSvc := service.NewAuthService(deps.Store, deps.Tracker, parser, events, deps.Metrics, logger)
	if deps.LoginRateLimit > 0 {
		authSvc.WithRateLimiter(guard.NewRateLimiter(deps.LoginRateLimit, time.Minute))
	}
	predictSvc := service.NewPredictionService(deps.Evaluator, parser, events, deps.Metrics, logger)

	// Handlers
	pages := handler.NewPageHandler(authSvc, predictSvc, deps.Tracker, renderer, logger)
	api := handler.NewAPIHandler(authSvc, predictSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(middleware.RealIP)
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(deps.Metrics.Middleware)
	r.Use(handler.SecurityHeaders)

	// Ops (no auth)
	r.Get("/health", handler.HealthHandler(deps.Store, predictSvc.Strategy()))
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	// Public pages
	r.Get("/", pages.Home)
	r.Get("/home", pages.Home)
	for _, p := range []string{"/login", "/login.html"} {
		r.Get(p, pages.LoginForm)
		r.Post(p, pages.Login)
	}
	for _, p := range []string{"/register", "/register.html"} {
		r.Get(p, pages.RegisterForm)
		r.Post(p, pages.Register)
	}
	r.Get("/logout", pages.Logout)

	// Session-authenticated pages
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(deps.Tracker))

		r.Get("/index", pages.Index)
		r.Get("/result", pages.Index)
		r.Post("/predict", pages.Predict)
		r.Post("/result", pages.Predict)
	})

	// JSON API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(handler.JSONContentType)

		r.Post("/auth/login", api.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireBearer(deps.Tracker))
			r.Post("/predict", api.Predict)
		})
	})

	return r, nil
}
