// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

// Package engine implements the PlaybackEngine (§4.6) and the
// TempNodeProviderRegistry (§4.7): the component that owns the playback
// tree, the active front, the renderer-to-node bindings, and the listener
// groups attached to each active node.
//
// All tree mutation and renderer-status handling runs serially on a single
// dispatch goroutine (the "engine task", §5, §9's "coroutine-style
// progression via chained callbacks becomes a state-machine dispatch
// loop"). Public methods submit a closure to the dispatch loop and block
// for its result; renderer callbacks arriving on other goroutines are
// marshalled onto the same loop before they touch the tree, hierarchy, or
// pool. Engine implements suture.Service so a supervisor tree can restart
// the dispatch loop on panic without violating the single-task invariant.
package engine
