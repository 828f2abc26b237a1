package engine

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/clearcast/playoutd/internal/events"
	"github.com/clearcast/playoutd/internal/media"
	"github.com/clearcast/playoutd/internal/playerr"
	"github.com/clearcast/playoutd/internal/rendererpool"
	"github.com/clearcast/playoutd/internal/tree"
)

// primaryTail walks the primary path from the root node to the last node
// with no Sequenced successor.
func (e *Engine) primaryTail() tree.NodeID {
	id := e.primary
	for id != 0 {
		n, err := e.tree.Get(id)
		if err != nil {
			break
		}
		if n.SequencedChild == 0 {
			return id
		}
		id = n.SequencedChild
	}
	return e.primary
}

// afterExternalMutation runs the bookkeeping every externally-initiated
// queue mutation requires: temp-node re-evaluation, preload top-up, and the
// PlayQueueChanged notification (§4.6, §4.7).
func (e *Engine) afterExternalMutation() {
	e.reevaluateTempNodes()
	e.runPreload()
	e.emitPlayQueueChanged()
}

// Enqueue appends block to the end of the primary path (§4.6).
func (e *Engine) Enqueue(block media.ContentBlock) (tree.NodeID, error) {
	v, err := e.call(func(e *Engine) (any, error) {
		tail := e.primaryTail()
		id, err := e.tree.CreateNode(block, tree.Sequenced, nil)
		if err != nil {
			return nil, err
		}
		if tail == 0 {
			err = e.tree.SetRoot(id)
		} else {
			err = e.tree.AddChild(tail, id)
		}
		if err != nil {
			_ = e.tree.Delete(id)
			return nil, err
		}
		e.afterExternalMutation()
		return id, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(tree.NodeID), nil
}

// EnqueueRelative splices block as target's Sequenced successor (for
// StartType Sequenced) or attaches it as a Concurrent child of target at
// offset (for StartType Concurrent) (§4.6).
func (e *Engine) EnqueueRelative(block media.ContentBlock, target tree.NodeID, start tree.StartType, offset *media.PlaybackOffset) (tree.NodeID, error) {
	v, err := e.call(func(e *Engine) (any, error) {
		targetNode, err := e.tree.Get(target)
		if err != nil {
			return nil, playerr.ErrUnknownNode
		}
		if start == tree.Concurrent {
			if offset == nil {
				return nil, playerr.ErrConcurrentOffsetRequired
			}
			if _, err := offset.Evaluate(targetNode.Block.Media.DurationMs); err != nil {
				return nil, fmt.Errorf("%w: %v", playerr.ErrRangeError, err)
			}
		}
		id, err := e.tree.CreateNode(block, start, offset)
		if err != nil {
			return nil, err
		}
		if start == tree.Sequenced {
			err = e.tree.SpliceSequenced(target, id)
		} else {
			err = e.tree.AddChild(target, id)
		}
		if err != nil {
			_ = e.tree.Delete(id)
			return nil, err
		}
		e.afterExternalMutation()
		return id, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(tree.NodeID), nil
}

// Dequeue removes a Queued node, rewiring its parent directly to its own
// Sequenced successor if it had one (§4.6).
func (e *Engine) Dequeue(id tree.NodeID) error {
	_, err := e.call(func(e *Engine) (any, error) {
		n, err := e.tree.Get(id)
		if err != nil {
			return nil, playerr.ErrUnknownNode
		}
		if n.Status != tree.Queued {
			return nil, playerr.ErrModifyingActiveNode
		}
		e.releasePreload(id)
		if n.Start == tree.Sequenced {
			if _, err := e.tree.DetachSequenced(n.Parent); err != nil {
				return nil, err
			}
		} else if err := e.tree.RemoveChild(id); err != nil {
			return nil, err
		}
		if err := e.tree.Delete(id); err != nil {
			return nil, err
		}
		e.afterExternalMutation()
		return nil, nil
	})
	return err
}

// Update replaces a Queued node's block. Two successive calls carrying an
// identical block emit exactly one PlayQueueChanged (§8 round-trip).
func (e *Engine) Update(id tree.NodeID, newBlock media.ContentBlock) error {
	_, err := e.call(func(e *Engine) (any, error) {
		n, err := e.tree.Get(id)
		if err != nil {
			return nil, playerr.ErrUnknownNode
		}
		if n.Status != tree.Queued {
			return nil, playerr.ErrModifyingActiveNode
		}
		e.releasePreload(id)
		changed := !reflect.DeepEqual(n.Block, newBlock)
		n.Block = newBlock
		if changed {
			e.afterExternalMutation()
		} else {
			e.runPreload()
		}
		return nil, nil
	})
	return err
}

// Reorder detaches source (must be a Queued Sequenced node) and splices it
// before or after destination on the primary path (§4.6).
func (e *Engine) Reorder(source, destination tree.NodeID, placeBefore bool) error {
	_, err := e.call(func(e *Engine) (any, error) {
		sn, err := e.tree.Get(source)
		if err != nil {
			return nil, playerr.ErrUnknownNode
		}
		if sn.Status != tree.Queued {
			return nil, playerr.ErrModifyingActiveNode
		}
		if sn.Start != tree.Sequenced {
			return nil, playerr.ErrInvalidType
		}
		dn, err := e.tree.Get(destination)
		if err != nil {
			return nil, playerr.ErrUnknownNode
		}
		if dn.Start != tree.Sequenced {
			return nil, playerr.ErrInvalidType
		}
		if _, err := e.tree.DetachSequenced(sn.Parent); err != nil {
			return nil, err
		}
		if placeBefore {
			err = e.tree.SpliceSequenced(dn.Parent, source)
		} else {
			err = e.tree.SpliceSequenced(destination, source)
		}
		if err != nil {
			return nil, err
		}
		e.afterExternalMutation()
		return nil, nil
	})
	return err
}

// Skip treats the primary-front node as Finished immediately. If it is
// already transitioning out, the out-transition is truncated rather than
// awaited (§8 S6).
func (e *Engine) Skip() error {
	_, err := e.call(func(e *Engine) (any, error) {
		if e.primary == 0 {
			return nil, playerr.ErrUnknownNode
		}
		n, err := e.tree.Get(e.primary)
		if err != nil {
			return nil, err
		}
		if n.Status == tree.TransitioningOut {
			e.finalizeFinish(e.primary)
		} else {
			e.onNodeFinished(e.primary)
		}
		return nil, nil
	})
	return err
}

// Restart calls restart on the primary-front node's renderer and resets its
// status timestamp (§4.6).
func (e *Engine) Restart() error {
	_, err := e.call(func(e *Engine) (any, error) {
		if e.primary == 0 {
			return nil, playerr.ErrUnknownNode
		}
		n, err := e.tree.Get(e.primary)
		if err != nil {
			return nil, err
		}
		lease, ok := n.Renderer.(*rendererpool.Lease)
		if !ok {
			return nil, playerr.ErrRendererFailure
		}
		if err := lease.Restart(context.Background()); err != nil {
			return nil, err
		}
		return nil, e.tree.SetStatus(e.primary, n.Status, time.Now())
	})
	return err
}

// StopToDefault stops every non-primary branch and splices a fresh default
// node in as the primary node's immediate successor, overriding the
// playing node's transitionOutMs to match the default's transitionInMs so
// the crossfade lines up (§4.6). A no-op reporting AlreadyStopped if the
// default block is already primary.
func (e *Engine) StopToDefault() error {
	_, err := e.call(func(e *Engine) (any, error) {
		if e.primary == 0 {
			return nil, playerr.ErrUnknownNode
		}
		pn, err := e.tree.Get(e.primary)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(pn.Block.ID, "default-") {
			return nil, playerr.ErrAlreadyStopped
		}

		for id := range e.front {
			if id == e.primary {
				continue
			}
			e.forceFinish(id)
		}

		block, err := e.defaultMake()
		if err != nil {
			return nil, err
		}
		e.defaultSeq++
		block.ID = "default-" + strconv.FormatInt(e.defaultSeq, 10)
		defaultID, err := e.tree.CreateNode(block, tree.Sequenced, nil)
		if err != nil {
			return nil, err
		}
		if err := e.tree.SpliceSequenced(e.primary, defaultID); err != nil {
			_ = e.tree.Delete(defaultID)
			return nil, err
		}
		pn.Block.TransitionOutMs = block.TransitionInMs
		e.onNodeFinished(e.primary)
		e.afterExternalMutation()
		return nil, nil
	})
	return err
}

// GetQueueSnapshot returns the serialized primary queue (§6.3 (i)).
func (e *Engine) GetQueueSnapshot() (events.QueueSnapshot, error) {
	v, err := e.call(func(e *Engine) (any, error) {
		return e.buildQueueSnapshot(), nil
	})
	if err != nil {
		return events.QueueSnapshot{}, err
	}
	return v.(events.QueueSnapshot), nil
}

// GetActiveSnapshot returns the serialized active front (§6.3 (ii)).
func (e *Engine) GetActiveSnapshot() (events.ActiveSnapshot, error) {
	v, err := e.call(func(e *Engine) (any, error) {
		return e.buildActiveSnapshot(), nil
	})
	if err != nil {
		return events.ActiveSnapshot{}, err
	}
	return v.(events.ActiveSnapshot), nil
}

func (e *Engine) releasePreload(id tree.NodeID) {
	lease, ok := e.preloaded[id]
	if !ok {
		return
	}
	delete(e.preloaded, id)
	_ = lease.Release(context.Background())
}
