package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/clearcast/playoutd/internal/logging"
	"github.com/clearcast/playoutd/internal/metrics"
	"github.com/clearcast/playoutd/internal/playerr"
	"github.com/clearcast/playoutd/internal/renderer"
	"github.com/clearcast/playoutd/internal/rendererpool"
	"github.com/clearcast/playoutd/internal/tree"
)

// handleRendererStatus reacts to a status push from a node's leased
// renderer (§4.6 "renderer status handling"). Runs on the dispatch loop.
func (e *Engine) handleRendererStatus(id tree.NodeID, status renderer.Status) {
	if _, active := e.front[id]; !active {
		return
	}
	switch status {
	case renderer.Finished:
		e.onNodeFinished(id)
	case renderer.Idle:
		n, err := e.tree.Get(id)
		if err == nil && n.Status == tree.TransitioningOut {
			e.finalizeFinish(id)
		}
	case renderer.Error, renderer.Stalled:
		n, err := e.tree.Get(id)
		if err == nil && n.Temperamental {
			// Temperamental nodes are expected to be occasionally absent;
			// a stall/error simply finishes them early rather than being
			// treated as a hard RendererFailure (§4.7).
			e.onNodeFinished(id)
			return
		}
		e.onNodeError(id, fmt.Errorf("%w: renderer reported %s", playerr.ErrRendererFailure, status))
	}
}

// onNodeFinished is the normal (non-error) completion path for an active
// node (§4.6 "finishing a node"): computes the node's layer, drops any
// Concurrent child whose offset was never reached, starts the Queued
// Sequenced successor (if any) at the same layer — this is what produces
// the parent/child transition overlap (§4.6 Tie-breaks) — and then either
// finalizes immediately or begins the out-transition.
func (e *Engine) onNodeFinished(id tree.NodeID) {
	n, err := e.tree.Get(id)
	if err != nil {
		return
	}
	if n.Status == tree.TransitioningOut {
		e.finalizeFinish(id)
		return
	}

	layer := e.layerOf(id)
	e.detachUnreachedConcurrentChildren(n)

	if next := n.SequencedChild; next != 0 {
		if cn, err := e.tree.Get(next); err == nil && cn.Status == tree.Queued {
			if err := e.startNode(next, layer); err != nil {
				logging.ForNode(int64(next)).Warn().Err(err).Msg("successor node failed to start during handoff")
			}
		}
	}

	if n.Block.TransitionOutMs == 0 {
		e.finalizeFinish(id)
		return
	}

	_ = e.setNodeStatus(id, tree.TransitioningOut, time.Now())
	if lease, ok := n.Renderer.(*rendererpool.Lease); ok {
		_ = lease.StopAndUnload(context.Background())
	}
	if grp := e.listeners[id]; grp != nil {
		timeout := time.Duration(n.Block.TransitionOutMs+1000) * time.Millisecond
		grp.stopTimer = time.AfterFunc(timeout, func() {
			e.post(func(e *Engine) { e.finalizeFinish(id) })
		})
	}
	e.emitActiveBlocksChanged()
}

// layerOf reports the hierarchy layer id's renderer currently occupies, or
// 0 if it has none (already torn down or never inserted).
func (e *Engine) layerOf(id tree.NodeID) int {
	n, err := e.tree.Get(id)
	if err != nil {
		return 0
	}
	lease, ok := n.Renderer.(*rendererpool.Lease)
	if !ok {
		return 0
	}
	if idx := e.hier.IndexOf(lease.SourceHandle()); idx >= 0 {
		return idx
	}
	return 0
}

// detachUnreachedConcurrentChildren drops every still-Queued Concurrent
// child of n, logging a warning: its offset was never crossed before the
// parent finished (§4.6 "finishing a node" step 2).
func (e *Engine) detachUnreachedConcurrentChildren(n *tree.Node) {
	for _, childID := range append([]tree.NodeID(nil), n.ConcurrentChildren...) {
		cn, err := e.tree.Get(childID)
		if err != nil || cn.Status != tree.Queued {
			continue
		}
		logging.ForNode(int64(childID)).Warn().Msg("concurrent child offset never reached before parent finished, dropping")
		_ = e.tree.RemoveChild(childID)
		_ = e.tree.Delete(childID)
	}
}

// finalizeFinish releases id's renderer, removes it from the front and
// hierarchy, advances the primary path if id was the primary node, and
// otherwise simply drops a Concurrent child once its own run is complete.
func (e *Engine) finalizeFinish(id tree.NodeID) {
	if _, active := e.front[id]; !active {
		return
	}
	n, err := e.tree.Get(id)
	if err != nil {
		return
	}
	startedAt := e.nodeStartedAt(id)
	e.teardownActive(id)
	_ = e.setNodeStatus(id, tree.Finished, time.Now())
	if !startedAt.IsZero() {
		metrics.RecordNodeLifetime(string(n.Block.Media.Kind), time.Since(startedAt))
	}

	if id == e.primary {
		e.advancePrimary(n)
	} else if n.Parent != 0 {
		_ = e.tree.RemoveChild(id)
		_ = e.tree.Delete(id)
	}
	e.emitActiveBlocksChanged()
	e.emitPlayQueueChanged()
	e.runPreload()
}

// forceFinish tears an active node down immediately on unrecoverable
// renderer failure, skipping any out-transition (§7 RendererFailure).
func (e *Engine) forceFinish(id tree.NodeID) {
	if _, active := e.front[id]; !active {
		return
	}
	n, err := e.tree.Get(id)
	if err != nil {
		return
	}
	startedAt := e.nodeStartedAt(id)
	e.teardownActive(id)
	_ = e.setNodeStatus(id, tree.Finished, time.Now())
	metrics.RecordNodeFailure(string(n.Block.Media.Kind))
	if !startedAt.IsZero() {
		metrics.RecordNodeLifetime(string(n.Block.Media.Kind), time.Since(startedAt))
	}
	if id == e.primary {
		e.advancePrimary(n)
	} else if n.Parent != 0 {
		_ = e.tree.RemoveChild(id)
		_ = e.tree.Delete(id)
	}
	e.emitActiveBlocksChanged()
	e.emitPlayQueueChanged()
	e.runPreload()
}

// nodeStartedAt reports when id's listener group was installed by startNode,
// the zero Time if id has none (never started, or already torn down).
func (e *Engine) nodeStartedAt(id tree.NodeID) time.Time {
	grp, ok := e.listeners[id]
	if !ok {
		return time.Time{}
	}
	return grp.startedAt
}

// teardownActive cancels id's listener group, releases its lease, and
// removes it from the front/hierarchy bookkeeping.
func (e *Engine) teardownActive(id tree.NodeID) {
	grp, ok := e.listeners[id]
	if ok {
		delete(e.listeners, id)
		if grp.stopTimer != nil {
			grp.stopTimer.Stop()
		}
	}
	n, err := e.tree.Get(id)
	if err != nil {
		return
	}
	lease, ok := n.Renderer.(*rendererpool.Lease)
	if ok {
		e.hier.Remove(lease.SourceHandle())
		_ = lease.Release(context.Background())
	}
	n.Renderer = nil
	delete(e.front, id)
}

// advancePrimary replaces the just-finished primary node with its Queued
// Sequenced successor, or falls back to a fresh default block if none
// exists (§4.6 "default-content fallback").
func (e *Engine) advancePrimary(finished *tree.Node) {
	next := finished.SequencedChild
	if finished.Parent == 0 {
		_ = e.tree.RemoveChild(finished.ID)
	}

	if next != 0 {
		nn, err := e.tree.Get(next)
		if err == nil {
			if _, alreadyActive := e.front[next]; alreadyActive {
				// Already started during the parent's out-transition
				// overlap window (§4.6 Tie-breaks); just promote it.
				_ = e.tree.RemoveChild(next)
				_ = e.tree.Delete(finished.ID)
				if err := e.tree.SetRoot(next); err != nil {
					logging.Error().Err(err).Msg("failed to promote already-active successor to primary")
					return
				}
				e.primary = next
				return
			}
			if nn.Status == tree.Queued {
				_ = e.tree.RemoveChild(next)
				_ = e.tree.Delete(finished.ID)
				if err := e.tree.SetRoot(next); err != nil {
					logging.Error().Err(err).Msg("failed to promote next primary node")
					return
				}
				if err := e.startNode(next, 0); err != nil {
					logging.ForNode(int64(next)).Warn().Err(err).Msg("promoted primary node failed to start, falling back to default")
					_ = e.tree.RemoveChild(next)
					e.primary = 0
					e.reinstallDefaultAsync()
					return
				}
				e.primary = next
				return
			}
		}
	}

	_ = e.tree.Delete(finished.ID)
	e.primary = 0
	e.reinstallDefaultAsync()
}

// runPreload walks forward from the primary node along SequencedChild,
// preloading up to PreloadWindow distinct-content-type Queued nodes (§4.6
// "Preload policy"). Preloading of a node sharing the current primary
// node's content type is deferred until the primary node reaches
// TransitioningOut, to avoid holding two renderers of a scarce kind.
func (e *Engine) runPreload() {
	if e.primary == 0 {
		return
	}
	primaryNode, err := e.tree.Get(e.primary)
	if err != nil {
		return
	}
	primaryKind := primaryNode.Block.Media.Kind
	deferSameKind := primaryNode.Status != tree.TransitioningOut

	count := 0
	cur := primaryNode.SequencedChild
	for cur != 0 && count < e.cfg.PreloadWindow {
		n, err := e.tree.Get(cur)
		if err != nil || n.Status != tree.Queued {
			break
		}
		if _, already := e.preloaded[cur]; already {
			count++
			cur = n.SequencedChild
			continue
		}
		if deferSameKind && n.Block.Media.Kind == primaryKind {
			cur = n.SequencedChild
			continue
		}
		lease, err := e.pool.Acquire(n.Block.Media.Kind)
		if err != nil {
			logging.ForNode(int64(cur)).Warn().Err(err).Msg("preload acquire failed")
			break
		}
		ctx, cancel := context.WithTimeout(context.Background(), e.loadTimeout())
		err = lease.LoadMedia(ctx, n.Block.Media)
		cancel()
		if err != nil {
			logging.ForNode(int64(cur)).Warn().Err(err).Msg("preload failed")
			_ = lease.Release(context.Background())
			break
		}
		e.preloaded[cur] = lease
		count++
		cur = n.SequencedChild
	}
}
