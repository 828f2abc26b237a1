// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package control

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/clearcast/playoutd/internal/config"
)

// chiMiddleware adapts an http.HandlerFunc middleware into chi's
// func(http.Handler) http.Handler, so internal/middleware's existing
// request-ID and Prometheus middleware can sit in the chi stack unchanged.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// chiAuth adapts Authenticator.Authenticate the same way.
func chiAuth(a *Authenticator) func(http.Handler) http.Handler {
	return chiMiddleware(a.Authenticate)
}

// corsMiddleware builds the global go-chi/cors handler from SecurityConfig.
// CORS must sit ahead of auth so preflight OPTIONS requests never hit it.
func corsMiddleware(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// rateLimitMiddleware builds an IP-keyed go-chi/httprate limiter from
// SecurityConfig, or a no-op pass-through when rate limiting is disabled.
func rateLimitMiddleware(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow)
}

// healthRateLimitMiddleware is a permissive limiter for health/liveness
// checks, which monitoring tools poll far more often than command traffic.
func healthRateLimitMiddleware(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(cfg.RateLimitReqs*10, cfg.RateLimitWindow)
}
