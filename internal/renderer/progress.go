package renderer

import (
	"sort"
	"sync"

	"github.com/clearcast/playoutd/internal/media"
)

// TickResolutionMs is the minimum interval at which a renderer re-checks
// pending offset listeners against current progress (§4.8: "at its internal
// tick resolution (≥ every 100 ms)").
const TickResolutionMs = 100

type pendingOffset struct {
	id         ListenerID
	absoluteMs int64
	fired      bool
	cb         func()
}

// ProgressListenerBus implements the `once(offset, callback)`/`off(id)`
// primitive (§4.8). It is evaluated against a duration once, at
// registration time, producing an absolute millisecond deadline; Check is
// then called by the owning renderer's tick loop with the current progress
// and fires every listener whose deadline has passed, in non-decreasing
// deadline order.
type ProgressListenerBus struct {
	mu      sync.Mutex
	nextID  int64
	pending []*pendingOffset
}

// NewProgressListenerBus constructs an empty bus.
func NewProgressListenerBus() *ProgressListenerBus {
	return &ProgressListenerBus{}
}

// Once evaluates offset against durationMs and registers cb to fire the
// next time Check observes progress at or past that point. Returns
// ErrRangeError if the offset cannot be evaluated (e.g. Percentage against
// infinite media).
func (b *ProgressListenerBus) Once(offset media.PlaybackOffset, durationMs int64, cb func()) (ListenerID, error) {
	abs, err := offset.Evaluate(durationMs)
	if err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := ListenerID(b.nextID)
	b.pending = append(b.pending, &pendingOffset{id: id, absoluteMs: abs, cb: cb})
	sort.Slice(b.pending, func(i, j int) bool { return b.pending[i].absoluteMs < b.pending[j].absoluteMs })
	return id, nil
}

// Off cancels a previously registered listener. A no-op if it already fired
// or does not exist (mirrors §5 Cancellation: listener groups may race a
// node's removal against a firing offset without erroring).
func (b *ProgressListenerBus) Off(id ListenerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.pending {
		if p.id == id {
			b.pending = append(b.pending[:i], b.pending[i+1:]...)
			return
		}
	}
}

// OffAll cancels every pending listener, used when a node's whole listener
// group is torn down.
func (b *ProgressListenerBus) OffAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = nil
}

// Check fires, in non-decreasing deadline order, every listener whose
// absoluteMs deadline is at or before nowMs. Each listener fires at most
// once.
func (b *ProgressListenerBus) Check(nowMs int64) {
	b.mu.Lock()
	var due []*pendingOffset
	remaining := b.pending[:0:0]
	for _, p := range b.pending {
		if p.absoluteMs <= nowMs {
			due = append(due, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	b.pending = remaining
	b.mu.Unlock()

	for _, p := range due {
		p.cb()
	}
}

// Pending reports the count of not-yet-fired listeners, for tests and
// metrics.
func (b *ProgressListenerBus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
