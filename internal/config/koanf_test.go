// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package config

import (
	"os"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.AuthMode = "none"
	cfg.Server.Environment = "development"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaultConfig() to validate, got: %v", err)
	}
}

func TestLoadWithKoanfAppliesEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ENGINE_MAX_ACTIVE_RENDERERS", "6")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("AUTH_MODE", "none")
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected HTTP_PORT override to apply, got %d", cfg.Server.Port)
	}
	if cfg.Engine.MaxActiveRenderers != 6 {
		t.Fatalf("expected ENGINE_MAX_ACTIVE_RENDERERS override to apply, got %d", cfg.Engine.MaxActiveRenderers)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[0] != "https://a.example.com" {
		t.Fatalf("expected CORS_ORIGINS to split into a trimmed slice, got %+v", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanfIgnoresUnmappedEnvVars(t *testing.T) {
	t.Setenv("SOME_UNRELATED_VARIABLE", "should-be-ignored")
	t.Setenv("AUTH_MODE", "none")
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Server.Port != defaultConfig().Server.Port {
		t.Fatalf("unmapped env var should not have perturbed config")
	}
}

func TestLoadWithKoanfPropagatesValidationFailure(t *testing.T) {
	t.Setenv("HTTP_PORT", "999999")
	t.Setenv("AUTH_MODE", "none")
	t.Setenv("ENVIRONMENT", "development")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected LoadWithKoanf to fail validation for an out-of-range port")
	}
}

func TestFindConfigFileRespectsConfigPathEnvVar(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/custom.yaml"
	if err := os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	got := findConfigFile()
	if got != path {
		t.Fatalf("expected findConfigFile to honor CONFIG_PATH, got %q", got)
	}
}

func TestFindConfigFileReturnsEmptyWhenNoneExist(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer os.Chdir(wd)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	if got := findConfigFile(); got != "" {
		t.Fatalf("expected empty result with no config file present, got %q", got)
	}
}

func TestProcessSliceFieldsSplitsCommaSeparatedString(t *testing.T) {
	k := GetKoanfInstance()
	if err := k.Set("security.cors_origins", "https://x.example.com,https://y.example.com"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := processSliceFields(k); err != nil {
		t.Fatalf("processSliceFields: %v", err)
	}
	got := k.Strings("security.cors_origins")
	if len(got) != 2 || got[0] != "https://x.example.com" || got[1] != "https://y.example.com" {
		t.Fatalf("expected split CORS origins, got %+v", got)
	}
}

func TestEnvTransformFuncMapsKnownKeys(t *testing.T) {
	cases := map[string]string{
		"HTTP_PORT":                   "server.port",
		"ENGINE_MAX_ACTIVE_RENDERERS": "engine.max_active_renderers",
		"AUTH_MODE":                   "security.auth_mode",
		"LOG_LEVEL":                   "logging.level",
		"DEFAULT_CONTENT_PATH":        "default.content_path",
		"HIERARCHY_MAX_LAYERS":        "hierarchy.max_layers",
	}
	for env, want := range cases {
		if got := envTransformFunc(env); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", env, got, want)
		}
	}
}

func TestEnvTransformFuncSkipsUnmappedKeys(t *testing.T) {
	if got := envTransformFunc("SOME_RANDOM_UNMAPPED_KEY"); got != "" {
		t.Fatalf("expected unmapped key to return empty string, got %q", got)
	}
}

func TestWatchConfigFileReturnsErrorForMissingFile(t *testing.T) {
	err := WatchConfigFile("/nonexistent/path/config.yaml", func() {})
	if err == nil {
		t.Fatal("expected error watching a nonexistent file")
	}
}

func TestDefaultConfigTimeoutsArePositive(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Engine.LoadTimeout <= 0 || cfg.Engine.DefaultRetryInitial <= 0 {
		t.Fatal("expected positive default engine timeouts")
	}
	if cfg.Renderers.CircuitBreakerTimeout <= 0 {
		t.Fatal("expected positive default circuit breaker timeout")
	}
	if cfg.Renderers.CircuitBreakerInterval < time.Second {
		t.Fatal("expected a circuit breaker interval of at least one second")
	}
}
