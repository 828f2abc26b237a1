// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

// Package tree implements the playback tree: an arena of PlaybackNodes
// keyed by a monotonic integer id, with parent/child references held as
// ids rather than pointers (§9 design notes — this makes "cancel all
// listeners for node id X" and "remove all temp nodes from provider P"
// cheap and safe under the engine's single-threaded dispatch model).
//
// The Tree itself holds no renderer or scheduling logic; it is the pure
// data structure the engine package drives. ChildAdded/ChildRemoved
// structural events are emitted synchronously so the engine can rebind
// Concurrent-start timers (§4.2).
package tree
