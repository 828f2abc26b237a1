package hierarchy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/clearcast/playoutd/internal/metrics"
	"github.com/clearcast/playoutd/internal/playerr"
)

// DefaultMaxActiveRenderers is the default capacity (§4.4).
const DefaultMaxActiveRenderers = 32

type entry struct {
	handle string
	layer  int
	seq    int64
}

// Hierarchy is the Z-ordered list of active renderer source handles the
// external compositor displays, 0 = bottom (§4.4). It holds no renderer
// logic of its own; callers insert/remove the same opaque sourceHandle
// strings a rendererpool.Lease exposes.
type Hierarchy struct {
	mu       sync.Mutex
	entries  []entry
	maxLayer int
	nextSeq  int64
}

// New constructs a Hierarchy with the given capacity. A maxActive of 0 uses
// DefaultMaxActiveRenderers.
func New(maxActive int) *Hierarchy {
	if maxActive <= 0 {
		maxActive = DefaultMaxActiveRenderers
	}
	return &Hierarchy{maxLayer: maxActive}
}

// Insert adds handle at the given layer. Fails with ErrHierarchyFull if the
// hierarchy is already at capacity.
func (h *Hierarchy) Insert(handle string, layer int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.entries {
		if e.handle == handle {
			return fmt.Errorf("playout: source handle %q already in hierarchy", handle)
		}
	}
	if len(h.entries) >= h.maxLayer {
		metrics.RecordHierarchyFullRejection()
		return fmt.Errorf("%w: capacity %d", playerr.ErrHierarchyFull, h.maxLayer)
	}
	h.nextSeq++
	h.entries = append(h.entries, entry{handle: handle, layer: layer, seq: h.nextSeq})
	sort.SliceStable(h.entries, func(i, j int) bool {
		if h.entries[i].layer != h.entries[j].layer {
			return h.entries[i].layer < h.entries[j].layer
		}
		return h.entries[i].seq < h.entries[j].seq
	})
	metrics.SetHierarchyActiveLayers(len(h.entries))
	return nil
}

// Remove detaches handle. A no-op if handle is not present.
func (h *Hierarchy) Remove(handle string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.entries {
		if e.handle == handle {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			metrics.SetHierarchyActiveLayers(len(h.entries))
			return
		}
	}
}

// IndexOf returns handle's current Z-order position, or -1 if absent.
func (h *Hierarchy) IndexOf(handle string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.entries {
		if e.handle == handle {
			return i
		}
	}
	return -1
}

// Len reports the number of active renderers currently in the hierarchy.
func (h *Hierarchy) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// MaxLayers reports the hierarchy's capacity (§6.2).
func (h *Hierarchy) MaxLayers() int {
	return h.maxLayer
}

// Handles returns the current Z-ordered list of source handles, bottom
// first. Primarily for snapshot serialization and tests.
func (h *Hierarchy) Handles() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.handle
	}
	return out
}
