// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateRenderers(); err != nil {
		return err
	}
	if err := c.validateDefault(); err != nil {
		return err
	}
	if err := c.validateHierarchy(); err != nil {
		return err
	}
	return c.validateLogging()
}

// validateEngine validates the dispatch loop's timing and concurrency knobs.
func (c *Config) validateEngine() error {
	if c.Engine.MaxActiveRenderers < 1 {
		return fmt.Errorf("ENGINE_MAX_ACTIVE_RENDERERS must be at least 1")
	}
	if c.Engine.PreloadWindow < 0 {
		return fmt.Errorf("ENGINE_PRELOAD_WINDOW must be non-negative")
	}
	if c.Engine.LoadTimeout <= 0 {
		return fmt.Errorf("ENGINE_LOAD_TIMEOUT must be positive")
	}
	if c.Engine.ReadySoftWarnTimeout <= 0 {
		return fmt.Errorf("ENGINE_READY_SOFT_WARN_TIMEOUT must be positive")
	}
	if c.Engine.DefaultRetryInitial <= 0 {
		return fmt.Errorf("ENGINE_DEFAULT_RETRY_INITIAL must be positive")
	}
	if c.Engine.DefaultRetryMax < c.Engine.DefaultRetryInitial {
		return fmt.Errorf("ENGINE_DEFAULT_RETRY_MAX must be >= ENGINE_DEFAULT_RETRY_INITIAL")
	}
	return nil
}

// validateServer validates the control-channel server's bind address.
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 {
		return fmt.Errorf("HTTP timeouts must be non-negative")
	}
	return nil
}

// validateSecurity validates authentication, CORS, and rate-limit settings.
func (c *Config) validateSecurity() error {
	if err := c.validateAuthMode(); err != nil {
		return err
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	return c.validateAuthModeConfig()
}

// validAuthModes defines the allowed authentication modes for the control
// channel.
var validAuthModes = map[string]bool{
	"none":  true,
	"basic": true,
	"jwt":   true,
}

// validateAuthMode checks if auth mode is valid.
func (c *Config) validateAuthMode() error {
	if !validAuthModes[c.Security.AuthMode] {
		return fmt.Errorf("AUTH_MODE must be one of: none, basic, jwt")
	}
	return c.validateAuthModeForEnvironment()
}

// validateAuthModeForEnvironment refuses to start with AUTH_MODE=none in
// production: the control channel can start or stop on-air content, and an
// unauthenticated production deployment is an accidental open door.
func (c *Config) validateAuthModeForEnvironment() error {
	if c.Security.AuthMode == "none" && c.IsProduction() {
		return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production. " +
			"Either set AUTH_MODE to jwt or basic, or use ENVIRONMENT=development for testing purposes")
	}
	return nil
}

// validateAuthModeConfig validates configuration for the selected auth mode.
func (c *Config) validateAuthModeConfig() error {
	switch c.Security.AuthMode {
	case "jwt":
		return c.validateJWTAuth()
	case "basic":
		return c.validateBasicAuth()
	default:
		return nil
	}
}

// validateJWTAuth validates JWT authentication configuration.
func (c *Config) validateJWTAuth() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return c.validateAdminCredentials("jwt")
}

// validateBasicAuth validates Basic authentication configuration.
func (c *Config) validateBasicAuth() error {
	return c.validateAdminCredentials("basic")
}

// validateAdminCredentials validates admin username and password.
func (c *Config) validateAdminCredentials(authMode string) error {
	if c.Security.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required when AUTH_MODE is %s", authMode)
	}
	if c.Security.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required when AUTH_MODE is %s", authMode)
	}
	if containsPlaceholder(c.Security.AdminPassword) {
		return fmt.Errorf("ADMIN_PASSWORD contains a placeholder value - set a secure password")
	}
	return nil
}

// validateCORS rejects wildcard CORS in production with authentication
// enabled: wildcard CORS + authentication lets any origin reuse stolen
// credentials against the control channel.
func (c *Config) validateCORS() error {
	if c.Security.AuthMode != "none" && c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production with authentication enabled. " +
			"Set specific origins via CORS_ORIGINS or use ENVIRONMENT=development for testing purposes")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins.
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if CORS configuration has security
// concerns that should be logged at startup.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.Security.AuthMode != "none" && c.hasWildcardCORS()
}

// Rate limit constants.
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

// validateRenderers validates per-content-kind renderer pool sizing and
// circuit breaker tuning.
func (c *Config) validateRenderers() error {
	sizes := map[string]int{
		"RENDERER_LOCAL_FILE_POOL_SIZE":     c.Renderers.LocalFilePoolSize,
		"RENDERER_WEB_STREAM_POOL_SIZE":     c.Renderers.WebStreamPoolSize,
		"RENDERER_RTMP_POOL_SIZE":           c.Renderers.RTMPPoolSize,
		"RENDERER_GRAPHICS_LAYER_POOL_SIZE": c.Renderers.GraphicsLayerPoolSize,
	}
	for name, size := range sizes {
		if size < 0 {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}
	if c.Renderers.CircuitBreakerMaxRequests < 1 {
		return fmt.Errorf("RENDERER_CIRCUIT_BREAKER_MAX_REQUESTS must be at least 1")
	}
	if c.Renderers.CircuitBreakerInterval < 0 {
		return fmt.Errorf("RENDERER_CIRCUIT_BREAKER_INTERVAL must be non-negative")
	}
	if c.Renderers.CircuitBreakerTimeout <= 0 {
		return fmt.Errorf("RENDERER_CIRCUIT_BREAKER_TIMEOUT must be positive")
	}
	return nil
}

// validateDefault validates the default-content fallback settings.
func (c *Config) validateDefault() error {
	if c.Default.ContentPath == "" {
		return fmt.Errorf("DEFAULT_CONTENT_PATH is required")
	}
	if c.Default.ContentID == "" {
		return fmt.Errorf("DEFAULT_CONTENT_ID is required")
	}
	return nil
}

// validateHierarchy validates the render hierarchy's layer capacity.
func (c *Config) validateHierarchy() error {
	if c.Hierarchy.MaxLayers < 1 {
		return fmt.Errorf("HIERARCHY_MAX_LAYERS must be at least 1")
	}
	return nil
}

// validLogLevels defines the allowed log levels.
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats.
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration.
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"TODO",
	"FIXME",
	"XXX",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder
// patterns that indicate the user forgot to set a real value.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
