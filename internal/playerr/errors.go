// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

// Package playerr holds the sentinel error kinds shared across the
// playback engine's subsystems (§7 Error Handling Design). Callers should
// compare with errors.Is; the tree, renderer pool, hierarchy, and engine
// packages wrap one of these for each condition listed below. The tree's
// Delete and SpliceSequenced precondition errors are plain errors.
package playerr

import "errors"

var (
	// ErrUnknownNode: a nodeId referenced by an external request is not in the tree.
	ErrUnknownNode = errors.New("playout: unknown node")

	// ErrModifyingActiveNode: attempt to dequeue, update, or reorder a non-Queued node.
	ErrModifyingActiveNode = errors.New("playout: cannot modify an active node")

	// ErrUnsupportedContentType: no factory for the requested content-type.
	ErrUnsupportedContentType = errors.New("playout: unsupported content type")

	// ErrHierarchyFull: insertion would exceed maxActiveRenderers.
	ErrHierarchyFull = errors.New("playout: render hierarchy full")

	// ErrRendererFailure: a renderer entered Error; the owning node is force-finished.
	ErrRendererFailure = errors.New("playout: renderer failure")

	// ErrRangeError: invalid offset or transition value.
	ErrRangeError = errors.New("playout: value out of range")

	// ErrLeaseRevoked: use of a released renderer lease.
	ErrLeaseRevoked = errors.New("playout: renderer lease revoked")

	// ErrPoolClosed: acquiring after pool shutdown.
	ErrPoolClosed = errors.New("playout: renderer pool closed")

	// ErrAlreadyStopped: stopToDefault called while already on the default block.
	ErrAlreadyStopped = errors.New("playout: already on default block")

	// ErrInvalidType: a control-channel command carried a malformed payload.
	ErrInvalidType = errors.New("playout: invalid type")

	// ErrAlreadyHasSequencedChild: a node already has a primary successor.
	ErrAlreadyHasSequencedChild = errors.New("playout: node already has a sequenced child")

	// ErrConcurrentOffsetRequired: a Concurrent node was constructed without an offset.
	ErrConcurrentOffsetRequired = errors.New("playout: concurrent node requires an offset")
)
