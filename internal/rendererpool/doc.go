// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

// Package rendererpool implements the per-content-type renderer factory and
// free-list pool (§4.3), handing out leases via Acquire and reclaiming them
// via Lease.Release. A Lease is the tagged-handle-with-atomic-revoked-flag
// pattern from §9's design notes: once Release has run, the Lease's
// error-returning methods fail with ErrLeaseRevoked and its other
// renderer-driving methods return fallback values, rather than reaching the
// underlying renderer.
package rendererpool
