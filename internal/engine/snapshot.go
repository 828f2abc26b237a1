package engine

import (
	"sort"

	"github.com/clearcast/playoutd/internal/events"
	"github.com/clearcast/playoutd/internal/rendererpool"
	"github.com/clearcast/playoutd/internal/tree"
)

// queueEntryFor builds the shared QueueEntry fields both snapshot kinds
// carry (§6.3).
func queueEntryFor(id tree.NodeID, n *tree.Node) events.QueueEntry {
	return events.QueueEntry{
		QueueID:         int64(id),
		ID:              n.Block.ID,
		Media:           n.Block.Media,
		Colour:          n.Block.Colour,
		TransitionInMs:  n.Block.TransitionInMs,
		TransitionOutMs: n.Block.TransitionOutMs,
		MediaStatus:     string(n.Block.Media.Location.Status),
	}
}

// buildQueueSnapshot walks the primary path from the root node, producing
// the serialized queue described by §6.3 (i). Includes temperamental
// nodes; callers comparing against a prior queue for round-trip purposes
// are expected to filter those out themselves (§8).
func (e *Engine) buildQueueSnapshot() events.QueueSnapshot {
	var entries []events.QueueEntry
	id := e.tree.Root()
	for id != 0 {
		n, err := e.tree.Get(id)
		if err != nil {
			break
		}
		entries = append(entries, queueEntryFor(id, n))
		id = n.SequencedChild
	}
	return events.QueueSnapshot{Entries: entries}
}

// buildActiveSnapshot serializes the active front, ordered by hierarchy
// layer index (§6.3 (ii)).
func (e *Engine) buildActiveSnapshot() events.ActiveSnapshot {
	entries := make([]events.ActiveEntry, 0, len(e.front))
	for id := range e.front {
		n, err := e.tree.Get(id)
		if err != nil {
			continue
		}
		layer := -1
		var progress int64
		if lease, ok := n.Renderer.(*rendererpool.Lease); ok {
			layer = e.hier.IndexOf(lease.SourceHandle())
			progress = lease.CurrentProgressMs()
		}
		entries = append(entries, events.ActiveEntry{
			QueueEntry: queueEntryFor(id, n),
			ProgressMs: progress,
			Status:     string(n.Status),
			LayerIndex: layer,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].LayerIndex < entries[j].LayerIndex })
	return events.ActiveSnapshot{Entries: entries}
}
