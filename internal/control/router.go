// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package control

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clearcast/playoutd/internal/config"
	"github.com/clearcast/playoutd/internal/middleware"
)

// NewRouter builds the control channel's chi-routed HTTP handler: command
// endpoints over the engine's queue/transport operations, read-only
// snapshot endpoints, the broadcast WebSocket, and health checks.
func NewRouter(cfg *config.Config, engine Engine, hub *Hub) (http.Handler, error) {
	auth, err := NewAuthenticator(&cfg.Security)
	if err != nil {
		return nil, err
	}
	perf := middleware.NewPerformanceMonitor(1000)
	handler := NewHandler(engine, hub, perf)

	r := chi.NewRouter()

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware(&cfg.Security))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(chiMiddleware(middleware.Compression))
	r.Use(perf.Middleware)

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(healthRateLimitMiddleware(&cfg.Security))
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	if cfg.Security.AuthMode == "jwt" {
		r.Route("/api/v1/auth", func(r chi.Router) {
			r.Use(rateLimitMiddleware(&cfg.Security))
			r.Post("/login", auth.Login)
		})
	}

	r.Route("/api/v1/queue", func(r chi.Router) {
		r.Use(rateLimitMiddleware(&cfg.Security))
		r.Use(chiAuth(auth))

		r.Get("/", handler.QueueSnapshot)
		r.Post("/", handler.Enqueue)
		r.Post("/relative", handler.EnqueueRelative)
		r.Post("/reorder", handler.Reorder)
		r.Put("/{id}", handler.Update)
		r.Delete("/{id}", handler.Dequeue)
	})

	r.Route("/api/v1/active", func(r chi.Router) {
		r.Use(rateLimitMiddleware(&cfg.Security))
		r.Use(chiAuth(auth))
		r.Get("/", handler.ActiveSnapshot)
	})

	r.Route("/api/v1/performance", func(r chi.Router) {
		r.Use(rateLimitMiddleware(&cfg.Security))
		r.Use(chiAuth(auth))
		r.Get("/", handler.Performance)
	})

	r.Route("/api/v1/transport", func(r chi.Router) {
		r.Use(rateLimitMiddleware(&cfg.Security))
		r.Use(chiAuth(auth))

		r.Post("/skip", handler.Skip)
		r.Post("/restart", handler.Restart)
		r.Post("/stop", handler.StopToDefault)
	})

	r.Route("/api/v1/ws", func(r chi.Router) {
		r.Use(chiAuth(auth))
		r.Get("/", handler.WebSocket)
	})

	return r, nil
}
