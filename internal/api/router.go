package api

import (
	"context"

	"github.com/Harshitk-cp/orgdb/internal/api/handlers"
	mw "github.com/Harshitk-cp/orgdb/internal/api/middleware"
	"github.com/Harshitk-cp/orgdb/internal/auth"
	"github.com/Harshitk-cp/orgdb/internal/config"
	"github.com/Harshitk-cp/orgdb/internal/metrics"
	"github.com/Harshitk-cp/orgdb/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Deps are the services the HTTP layer dispatches to.
type Deps struct {
	AdminDB     handlers.Pinger
	Provisioner *service.Provisioner
	Orgs        *service.OrganizationService
	Auth        *service.AuthService
	Resolver    *auth.Resolver
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Logger      *zap.Logger
}

// NewRouter builds the HTTP routes. ctx bounds background middleware work.
func NewRouter(ctx context.Context, d Deps) *chi.Mux {
	orgHandler := handlers.NewOrganizationHandler(d.Provisioner, d.Orgs, d.Logger)
	userHandler := handlers.NewUserHandler(d.Auth, d.Logger)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Metrics(d.Metrics))
	r.Use(mw.Logging(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(ctx, config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", handlers.Health(d.AdminDB))
	r.Get("/version", handlers.Version)
	if d.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(d.Gatherer))
	}

	r.Route("/organization", func(r chi.Router) {
		// Registration is the bootstrap path and needs no token.
		r.Post("/register", orgHandler.Register)
		r.Get("/register/{id}", orgHandler.RegistrationStatus)

		r.Group(func(r chi.Router) {
			r.Use(mw.BearerTenant(d.Resolver))
			r.Get("/by-name", orgHandler.GetByName)
			r.Post("/create-user", orgHandler.CreateUser)
		})
	})

	r.Route("/user", func(r chi.Router) {
		r.With(mw.PayloadTenant(d.Resolver)).Post("/login", userHandler.Login)
	})

	return r
}
