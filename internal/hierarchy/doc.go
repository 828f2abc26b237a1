// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

// Package hierarchy implements the Z-ordered render hierarchy (§4.4): the
// ordered list of at most maxActiveRenderers active renderer source
// handles that the external compositor displays. It is the sole surface
// the compositor reads; every other engine state change that must affect
// the screen routes through Insert/Remove here.
package hierarchy
