// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

// Package renderer defines the Renderer capability contract (§4.5, §6.1)
// and its concrete per-content-type implementations (§4.9). A Renderer
// loads a MediaObject, plays it, and publishes a status stream the engine
// drives node lifecycle from; it also exposes a ProgressListenerBus (§4.8)
// for one-shot offset callbacks used both by renderer-internal transition
// scheduling and by the engine's Concurrent-child starters.
//
// Each concrete renderer's I/O-bound step (the local-file warm-up, the web
// stream probe and the RTMP relay start in LoadMedia; the overlay show in
// the graphics layer's Play) runs through a sony/gobreaker circuit breaker,
// and Restart reaches it through LoadMedia/Play, so a renderer that is failing
// repeatedly surfaces RendererFailure quickly instead of blocking the
// engine's dispatch loop on a full I/O timeout per attempt.
package renderer
