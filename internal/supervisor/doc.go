// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

/*
Package supervisor provides process supervision for the playout daemon using suture v4.

This package implements a hierarchical supervisor tree that manages the lifecycle
of the engine dispatch loop, the control-channel transport, and the
services that fan engine events out to WebSocket clients. It provides
Erlang/OTP-style supervision with automatic restart, failure isolation, and
graceful shutdown.

# Overview

The supervisor tree organizes services into three layers for failure isolation:

	RootSupervisor ("playoutd")
	├── PlaybackSupervisor ("playback-layer")
	│   └── engine.Engine (the single serialized engine task, §5)
	├── ControlSupervisor ("control-layer")
	│   └── control.Server (HTTP command sink, §6.3)
	└── SupportSupervisor ("support-layer")
	    ├── control.Hub (broadcasts ActiveBlocksChanged/PlayQueueChanged)
	    └── control.BusBridge (forwards event bus messages to the hub)

The default-block retry backoff is not a separate service; it runs inside
the engine.

This hierarchy ensures that:
  - A panic restarting the command server never drops an in-flight node
    transition in the engine dispatch loop.
  - A panic recovered while restarting the engine dispatch loop never
    disconnects clients already connected to the WebSocket hub.
  - Each layer can restart independently without violating the single-dispatch-task
    invariant the engine relies on (a restart rebuilds the dispatch loop from the
    engine's in-memory tree and front; the core persists nothing across restarts).

# Usage Example

	logger := slog.Default()
	config := supervisor.DefaultTreeConfig()

	tree, err := supervisor.NewSupervisorTree(logger, config)
	if err != nil {
	    log.Fatal(err)
	}

	tree.AddPlaybackService(eng)
	tree.AddSupportService(hub)
	tree.AddSupportService(busBridge)
	tree.AddControlService(controlServer)

	ctx := context.Background()
	if err := tree.Serve(ctx); err != nil {
	    log.Printf("Supervisor stopped: %v", err)
	}

# Configuration

The TreeConfig controls restart behavior:

	config := supervisor.TreeConfig{
	    FailureThreshold: 5.0,              // Failures before backoff
	    FailureDecay:     30.0,             // Seconds for failures to decay
	    FailureBackoff:   15 * time.Second, // Backoff duration
	    ShutdownTimeout:  10 * time.Second, // Per-service shutdown timeout
	}

Default values match suture's production-ready defaults.

# Service Interface

All services must implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - Return nil or an error: the supervisor restarts the service
  - Return suture.ErrDoNotRestart: the service is not restarted
  - Context canceled: Shutdown requested, return promptly

# Debugging Shutdown Issues

If services don't stop within the timeout:

	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    log.Printf("Service didn't stop: %v", svc)
	}
*/
package supervisor
