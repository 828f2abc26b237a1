// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package config

import "time"

// Config is the root configuration for the playoutd daemon: engine timing
// and concurrency knobs, the control-channel HTTP/WebSocket server, renderer
// factory settings per content kind, the default-content fallback, and the
// ambient security/logging stack.
type Config struct {
	Engine    EngineConfig    `koanf:"engine"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Renderers RenderersConfig `koanf:"renderers"`
	Default   DefaultConfig   `koanf:"default"`
	Hierarchy HierarchyConfig `koanf:"hierarchy"`
}

// EngineConfig mirrors engine.Config: it governs the dispatch loop's
// retry/backoff behavior, the preload window, and the timeouts applied to
// renderer load/ready handshakes (§4.6, §7).
//
// Environment Variables:
//   - ENGINE_MAX_ACTIVE_RENDERERS: cap on concurrently active front renderers (default: 4)
//   - ENGINE_PRELOAD_WINDOW: number of Queued nodes to preload ahead of primary (default: 2)
//   - ENGINE_LOAD_TIMEOUT: deadline for a renderer's LoadMedia call (default: 10s)
//   - ENGINE_READY_SOFT_WARN_TIMEOUT: time after which a not-yet-Ready renderer logs a warning (default: 5s)
//   - ENGINE_DEFAULT_RETRY_INITIAL: initial backoff before retrying default-content install (default: 500ms)
//   - ENGINE_DEFAULT_RETRY_MAX: backoff ceiling for default-content retries (default: 30s)
type EngineConfig struct {
	MaxActiveRenderers   int           `koanf:"max_active_renderers"`
	PreloadWindow        int           `koanf:"preload_window"`
	LoadTimeout          time.Duration `koanf:"load_timeout"`
	ReadySoftWarnTimeout time.Duration `koanf:"ready_soft_warn_timeout"`
	DefaultRetryInitial  time.Duration `koanf:"default_retry_initial"`
	DefaultRetryMax      time.Duration `koanf:"default_retry_max"`
}

// ServerConfig holds the control-channel HTTP/WebSocket server's bind
// address and timeouts.
//
// Environment Variables:
//   - HTTP_HOST: bind address (default: 0.0.0.0)
//   - HTTP_PORT: bind port (default: 8080)
//   - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT
//   - ENVIRONMENT: "development", "staging", "production" (default: "development")
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	Environment  string        `koanf:"environment"`
}

// SecurityConfig holds authentication and rate-limiting settings for the
// control channel. A playout engine's control API can start or stop
// on-air content, so it is never left unauthenticated in production.
//
// Environment Variables:
//   - AUTH_MODE: none, basic, jwt (default: none)
//   - JWT_SECRET, ADMIN_USERNAME, ADMIN_PASSWORD
//   - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
//   - CORS_ORIGINS: comma-separated origin allowlist
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RenderersConfig holds per-content-kind renderer factory settings. Each
// factory registered with rendererpool.Pool is constructed from one of
// these at startup (cmd/playoutd).
//
// Environment Variables:
//   - RENDERER_LOCAL_FILE_POOL_SIZE: warm renderer pool size for localFile (default: 2)
//   - RENDERER_WEB_STREAM_POOL_SIZE, RENDERER_RTMP_POOL_SIZE, RENDERER_GRAPHICS_LAYER_POOL_SIZE
//   - RENDERER_CIRCUIT_BREAKER_MAX_REQUESTS, RENDERER_CIRCUIT_BREAKER_INTERVAL, RENDERER_CIRCUIT_BREAKER_TIMEOUT
type RenderersConfig struct {
	LocalFilePoolSize     int `koanf:"local_file_pool_size"`
	WebStreamPoolSize     int `koanf:"web_stream_pool_size"`
	RTMPPoolSize          int `koanf:"rtmp_pool_size"`
	GraphicsLayerPoolSize int `koanf:"graphics_layer_pool_size"`

	CircuitBreakerMaxRequests uint32        `koanf:"circuit_breaker_max_requests"`
	CircuitBreakerInterval    time.Duration `koanf:"circuit_breaker_interval"`
	CircuitBreakerTimeout     time.Duration `koanf:"circuit_breaker_timeout"`
}

// DefaultConfig holds the default-content fallback block installed
// whenever the playback tree's primary path runs dry (§4.6
// "default-content fallback").
//
// Environment Variables:
//   - DEFAULT_CONTENT_PATH: path to the fallback media asset (e.g. a slate loop)
//   - DEFAULT_CONTENT_ID: name given to the fallback media object
type DefaultConfig struct {
	ContentPath string `koanf:"content_path"`
	ContentID   string `koanf:"content_id"`
}

// HierarchyConfig holds the Z-ordered render hierarchy's layer capacity.
//
// Environment Variables:
//   - HIERARCHY_MAX_LAYERS: maximum number of simultaneously occupied
//     render layers before a node start is rejected (default: 8)
type HierarchyConfig struct {
	MaxLayers int `koanf:"max_layers"`
}
