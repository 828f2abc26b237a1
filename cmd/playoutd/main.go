// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

// Package main is the entry point for the playoutd continuous-media
// playout daemon.
//
// # Application Architecture
//
// The daemon initializes components in the following order:
//
//  1. Configuration: load settings from environment variables (Koanf v2)
//  2. Logging: configure zerolog from the loaded configuration
//  3. Event bus: an in-process Watermill pub/sub carrying active/queue snapshots
//  4. Renderer pool: per-content-kind factories, pre-warmed to their configured size
//  5. Playback engine: the single-threaded dispatch loop owning the playback tree
//  6. Control channel: chi-routed HTTP command surface, WebSocket broadcast hub,
//     and the bus bridge forwarding engine events onto it
//  7. Supervisor tree: every long-running component above is supervised so a
//     panic in one restarts that component without taking down the process
//
// # Signal Handling
//
// The daemon shuts down gracefully on SIGINT and SIGTERM: it stops accepting
// new control-channel connections, waits for in-flight requests to finish
// (bounded by the control server's shutdown grace period), then tears down
// the supervisor tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/clearcast/playoutd/internal/config"
	"github.com/clearcast/playoutd/internal/control"
	"github.com/clearcast/playoutd/internal/engine"
	"github.com/clearcast/playoutd/internal/events"
	"github.com/clearcast/playoutd/internal/logging"
	"github.com/clearcast/playoutd/internal/media"
	"github.com/clearcast/playoutd/internal/renderer"
	"github.com/clearcast/playoutd/internal/rendererpool"
	"github.com/clearcast/playoutd/internal/supervisor"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("environment", cfg.Server.Environment).Msg("starting playoutd")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slogLogger := logging.NewSlogLoggerForComponent("supervisor")
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	bus := events.NewBus(nil)

	pool := newRendererPool()
	warmRendererPool(pool, cfg)

	defaultMake := newDefaultBlockFactory(cfg)

	engineCfg := engine.Config{
		MaxActiveRenderers:   cfg.Engine.MaxActiveRenderers,
		PreloadWindow:        cfg.Engine.PreloadWindow,
		DefaultRetryInitial:  cfg.Engine.DefaultRetryInitial,
		DefaultRetryMax:      cfg.Engine.DefaultRetryMax,
		LoadTimeout:          cfg.Engine.LoadTimeout,
		ReadySoftWarnTimeout: cfg.Engine.ReadySoftWarnTimeout,
	}
	eng := engine.New(engineCfg, pool, bus, defaultMake)

	hub := control.NewHub()
	busBridge := control.NewBusBridge(bus, hub)
	controlServer, err := control.NewServer(cfg, eng, hub)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build control server")
	}

	tree.AddPlaybackService(eng)
	tree.AddSupportService(hub)
	tree.AddSupportService(busBridge)
	tree.AddControlService(controlServer)

	logging.Info().
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("control channel configured")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("context cancelled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
		}
	}

	logging.Info().Msg("playoutd stopped gracefully")
}

// newRendererPool registers a factory per content kind. RTMP and
// graphics-layer renderers get no-op relay/broadcaster implementations;
// wiring those to a real compositor/relay is deployment-specific and out
// of scope for the daemon's own startup.
func newRendererPool() *rendererpool.Pool {
	pool := rendererpool.New(nil)
	pool.RegisterFactory(media.KindLocalFile, func(sourceHandle string) (renderer.Renderer, error) {
		return renderer.NewLocalFileRenderer(sourceHandle), nil
	})
	pool.RegisterFactory(media.KindWebStream, func(sourceHandle string) (renderer.Renderer, error) {
		return renderer.NewWebStreamRenderer(sourceHandle), nil
	})
	pool.RegisterFactory(media.KindRTMP, func(sourceHandle string) (renderer.Renderer, error) {
		return renderer.NewRTMPRenderer(sourceHandle, renderer.NoopRelay{}), nil
	})
	pool.RegisterFactory(media.KindGraphicsLayer, func(sourceHandle string) (renderer.Renderer, error) {
		return renderer.NewGraphicsLayerRenderer(sourceHandle, renderer.NoopBroadcaster{}), nil
	})
	return pool
}

// warmRendererPool pre-acquires and releases cfg.Renderers.*PoolSize
// renderers per kind so the free list starts non-empty; a zero size
// skips warming for that kind.
func warmRendererPool(pool *rendererpool.Pool, cfg *config.Config) {
	warm := func(kind media.Kind, size int) {
		leases := make([]*rendererpool.Lease, 0, size)
		for i := 0; i < size; i++ {
			lease, err := pool.Acquire(kind)
			if err != nil {
				logging.Warn().Err(err).Str("kind", string(kind)).Msg("renderer pool warm-up failed")
				break
			}
			leases = append(leases, lease)
		}
		for _, lease := range leases {
			_ = lease.Release(context.Background())
		}
	}
	warm(media.KindLocalFile, cfg.Renderers.LocalFilePoolSize)
	warm(media.KindWebStream, cfg.Renderers.WebStreamPoolSize)
	warm(media.KindRTMP, cfg.Renderers.RTMPPoolSize)
	warm(media.KindGraphicsLayer, cfg.Renderers.GraphicsLayerPoolSize)
}

// newDefaultBlockFactory builds the fallback ("title slate") ContentBlock
// the engine installs whenever the primary path runs dry.
func newDefaultBlockFactory(cfg *config.Config) func() (media.ContentBlock, error) {
	return func() (media.ContentBlock, error) {
		obj, err := media.New(
			cfg.Default.ContentID,
			media.KindLocalFile,
			media.Location{Path: cfg.Default.ContentPath, Status: media.StatusPending},
			media.InfiniteDuration,
		)
		if err != nil {
			return media.ContentBlock{}, fmt.Errorf("default block media: %w", err)
		}
		return media.NewContentBlock(cfg.Default.ContentID, "", obj, 0, 0)
	}
}
