package tree

import (
	"time"

	"github.com/clearcast/playoutd/internal/media"
)

// StartType describes how a node begins relative to its parent (§3).
type StartType string

const (
	Sequenced  StartType = "sequenced"
	Concurrent StartType = "concurrent"
)

// Status is a PlaybackNode's lifecycle state (§3 lifecycle).
type Status string

const (
	Queued           Status = "queued"
	TransitioningIn  Status = "transitioning_in"
	Playing          Status = "playing"
	TransitioningOut Status = "transitioning_out"
	Finished         Status = "finished"
)

// NodeID is a monotonic, engine-assigned node identifier. The zero value
// never refers to a live node.
type NodeID int64

// Node is a PlaybackNode (§3). Parent/children are held as NodeIDs, not
// pointers, per the arena-of-nodes pattern (§9).
//
// Children are modeled as a dedicated Sequenced slot (at most one, the
// "0-th child") plus an ordered list of Concurrent children, rather than a
// single slice indexed positionally: this lets a node carry Concurrent
// children before it ever gains a Sequenced successor without needing a
// placeholder gap at index 0 (§3: "Concurrent children have offsets and
// occupy indices > 0").
type Node struct {
	ID     NodeID
	Block  media.ContentBlock
	Start  StartType
	Offset *media.PlaybackOffset // required iff Start == Concurrent

	Parent             NodeID // zero if root
	SequencedChild     NodeID // zero if none; always the primary successor
	ConcurrentChildren []NodeID

	Status          Status
	StatusTimestamp time.Time

	// Temperamental marks a node contributed by a TempNodeProvider (§4.7).
	// ProviderID is meaningful only when Temperamental is true.
	Temperamental bool
	ProviderID    int

	// Renderer holds the engine's opaque binding for the node's leased
	// renderer (a *rendererpool.Lease in practice); nil when unassigned.
	// Held as `any` to avoid a tree->rendererpool import cycle (§3 Ownership).
	Renderer any
}

// EffectiveDurationMs delegates to the wrapped ContentBlock (§3).
func (n *Node) EffectiveDurationMs() int64 {
	return n.Block.EffectiveDurationMs()
}

// Children returns the node's children in display order: the Sequenced
// child first (if any), then Concurrent children in insertion order.
// Matches §3's "0-th child is the primary sequential successor".
func (n *Node) Children() []NodeID {
	out := make([]NodeID, 0, 1+len(n.ConcurrentChildren))
	if n.SequencedChild != 0 {
		out = append(out, n.SequencedChild)
	}
	out = append(out, n.ConcurrentChildren...)
	return out
}

// HasSequencedChild reports whether the node already has a primary
// successor.
func (n *Node) HasSequencedChild() bool {
	return n.SequencedChild != 0
}
