// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package control

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/clearcast/playoutd/internal/config"
	"github.com/clearcast/playoutd/internal/events"
	"github.com/clearcast/playoutd/internal/logging"
)

// shutdownGrace bounds how long the HTTP server waits for in-flight
// requests to finish during a graceful shutdown.
const shutdownGrace = 10 * time.Second

// Server is the control channel's HTTP listener. It implements
// suture.Service so it can be supervised alongside the engine and the
// broadcast hub.
type Server struct {
	httpServer *http.Server
	addr       string
}

// NewServer builds a Server bound to cfg.Server.Host:Port, serving the
// router built by NewRouter.
func NewServer(cfg *config.Config, engine Engine, hub *Hub) (*Server, error) {
	handler, err := NewRouter(cfg, engine, hub)
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return &Server{
		addr: addr,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

// String satisfies suture.Service.
func (s *Server) String() string { return "control-server" }

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.addr).Msg("control channel listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("control server shutdown error")
		}
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// BusBridge subscribes hub to both event kinds on bus and forwards every
// received snapshot to the hub's broadcast channel until ctx is cancelled.
// Runs as its own suture.Service so a subscription failure doesn't take
// down the HTTP listener.
type BusBridge struct {
	bus *events.Bus
	hub *Hub
}

// NewBusBridge builds a BusBridge wiring bus's snapshots into hub.
func NewBusBridge(bus *events.Bus, hub *Hub) *BusBridge {
	return &BusBridge{bus: bus, hub: hub}
}

// String satisfies suture.Service.
func (b *BusBridge) String() string { return "control-bus-bridge" }

// Serve subscribes to both event kinds and forwards them to the hub until
// ctx is cancelled.
func (b *BusBridge) Serve(ctx context.Context) error {
	active, err := b.bus.Subscribe(ctx, events.ActiveBlocksChanged)
	if err != nil {
		return fmt.Errorf("control: subscribe active: %w", err)
	}
	queue, err := b.bus.Subscribe(ctx, events.PlayQueueChanged)
	if err != nil {
		return fmt.Errorf("control: subscribe queue: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-active:
			if !ok {
				active = nil
				continue
			}
			b.hub.Broadcast(event)
		case event, ok := <-queue:
			if !ok {
				queue = nil
				continue
			}
			b.hub.Broadcast(event)
		}
	}
}
