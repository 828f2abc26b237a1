// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

// Package events defines the engine's two observable event kinds
// (ActiveBlocksChanged, PlayQueueChanged, §4.6) and carries them from the
// engine's single dispatch loop to slow subscribers (the control-channel
// websocket hub) over an in-process Watermill gochannel Pub/Sub, so a slow
// websocket writer never blocks the dispatch loop (§5 Ordering guarantees).
//
// Serialization uses goccy/go-json, matching the teacher's
// eventprocessor.SerializeEvent convention, minus the NATS/JetStream
// transport that convention was built for.
package events
