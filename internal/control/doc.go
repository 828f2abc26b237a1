// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

/*
Package control implements the playout engine's control channel: an
HTTP command surface over the engine's queue/transport operations, plus
a WebSocket feed that mirrors every ActiveBlocksChanged/PlayQueueChanged
event onto connected clients.

Key Components:

  - Handler: translates HTTP requests into Engine method calls
  - Authenticator: enforces AUTH_MODE (none, basic, jwt) on command routes
  - Hub / Client: hub-and-spoke WebSocket broadcast, adapted from a
    single-goroutine dispatch model so client bookkeeping never races a
    broadcast in flight
  - BusBridge: subscribes to the engine's events.Bus and forwards
    snapshots to the Hub

Architecture:

	engine.Engine --Publish--> events.Bus --Subscribe--> BusBridge --> Hub --> Client...
	                                                                      ^
	HTTP command routes -----------------------------> Handler -----------+

Routes:

	GET    /api/v1/health/live
	GET    /api/v1/health/ready
	GET    /metrics
	POST   /api/v1/auth/login        (AUTH_MODE=jwt only)
	GET    /api/v1/queue
	POST   /api/v1/queue
	POST   /api/v1/queue/relative
	POST   /api/v1/queue/reorder
	PUT    /api/v1/queue/{id}
	DELETE /api/v1/queue/{id}
	GET    /api/v1/active
	GET    /api/v1/performance
	POST   /api/v1/transport/skip
	POST   /api/v1/transport/restart
	POST   /api/v1/transport/stop
	GET    /api/v1/ws

Thread Safety:

Handler holds no mutable state of its own; every command is forwarded
straight to the engine's single-threaded dispatch loop. Hub and Client
are safe for concurrent use per their own docs.
*/
package control
