// Package main: HTTP route registration.
//
// initRoutes builds the router and mounts every endpoint. Global middleware
// runs in this order: request id → real ip (TRUST_PROXY only) → logging →
// panic recovery → CORS. Protected groups add the session gate on top.
package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/akinalp/rtctoken/config"
	"github.com/akinalp/rtctoken/middleware"
)

func initRoutes(cfg *config.Config, h *Handlers, svcs *Services, limiters *RateLimiters, logger *slog.Logger) http.Handler {
	gate := middleware.NewSessionGate(svcs.Auth)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.Server.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler)

	// Public
	r.Get("/", h.Health.Root)
	r.Get("/api/health", h.Health.Health)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(gate.Require)
			r.Get("/users", h.Auth.Users)
			r.Post("/logout", h.Auth.Logout)
		})
	})

	// Token issuance: every route needs a session, and each user is
	// rate limited separately.
	r.Route("/api/token", func(r chi.Router) {
		r.Use(gate.Require)
		r.Use(middleware.RateLimitByUser(limiters.Token))

		r.Post("/rtc", h.Token.Rtc)
		r.Post("/rtm", h.Token.Rtm)
		r.Post("/chat", h.Token.Chat)
	})

	return r
}
