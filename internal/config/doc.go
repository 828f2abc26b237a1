// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

/*
Package config provides centralized configuration management for the
playout engine daemon.

It loads, validates, and exposes the tunables for the dispatch loop, the
control-channel HTTP/WebSocket server, per-content-kind renderer factories,
the default-content fallback, the Z-ordered render hierarchy, and the
ambient logging/security stack.

# Configuration Sources

Configuration is loaded in three layers, in ascending priority:

 1. Built-in struct defaults (defaultConfig)
 2. An optional YAML config file (config.yaml, or CONFIG_PATH)
 3. Environment variables

# Configuration Structure

  - EngineConfig: dispatch loop concurrency/retry/timeout knobs
  - ServerConfig: control-channel bind address and HTTP timeouts
  - SecurityConfig: control-channel auth mode, CORS, and rate limiting
  - LoggingConfig: zerolog level/format/caller settings
  - RenderersConfig: per-content-kind renderer pool sizing and circuit breaker tuning
  - DefaultConfig: the default-content fallback asset
  - HierarchyConfig: the render hierarchy's layer capacity

# Environment Variables

Engine:
  - ENGINE_MAX_ACTIVE_RENDERERS, ENGINE_PRELOAD_WINDOW, ENGINE_LOAD_TIMEOUT,
    ENGINE_READY_SOFT_WARN_TIMEOUT, ENGINE_DEFAULT_RETRY_INITIAL, ENGINE_DEFAULT_RETRY_MAX

Server:
  - HTTP_HOST, HTTP_PORT, HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, ENVIRONMENT

Security:
  - AUTH_MODE (none, basic, jwt), JWT_SECRET, ADMIN_USERNAME, ADMIN_PASSWORD,
    RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT, CORS_ORIGINS

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Renderers:
  - RENDERER_LOCAL_FILE_POOL_SIZE, RENDERER_WEB_STREAM_POOL_SIZE, RENDERER_RTMP_POOL_SIZE,
    RENDERER_GRAPHICS_LAYER_POOL_SIZE, RENDERER_CIRCUIT_BREAKER_MAX_REQUESTS,
    RENDERER_CIRCUIT_BREAKER_INTERVAL, RENDERER_CIRCUIT_BREAKER_TIMEOUT

Default content:
  - DEFAULT_CONTENT_PATH, DEFAULT_CONTENT_ID

Render hierarchy:
  - HIERARCHY_MAX_LAYERS

# Usage Example

	import "github.com/clearcast/playoutd/internal/config"

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatalf("failed to load config: %v", err)
	}
	fmt.Printf("control channel on %s:%d\n", cfg.Server.Host, cfg.Server.Port)

# Security Best Practices

When AUTH_MODE is jwt or basic:

 1. Use a strong JWT secret: minimum 32 characters, cryptographically random.
    Generate with: openssl rand -base64 48
 2. Use a strong admin password; placeholder-looking values are rejected.
 3. AUTH_MODE=none is refused when ENVIRONMENT=production, since the control
    channel can start or stop on-air content.
 4. Wildcard CORS_ORIGINS is refused in production when auth is enabled.

# Thread Safety

The Config struct is immutable after LoadWithKoanf returns, making it safe
for concurrent access from multiple goroutines without synchronization.
*/
package config
