package engine

import (
	"time"

	"github.com/clearcast/playoutd/internal/events"
	"github.com/clearcast/playoutd/internal/logging"
	"github.com/clearcast/playoutd/internal/media"
	"github.com/clearcast/playoutd/internal/metrics"
	"github.com/clearcast/playoutd/internal/playerr"
	"github.com/clearcast/playoutd/internal/tree"
)

// TempInsertion is one overlay a TempNodeProvider wants inserted (§4.7).
// RelativeTarget is, for StartType Sequenced, the node the new block is
// spliced immediately after; for StartType Concurrent, the parent it is
// attached to.
type TempInsertion struct {
	Block          media.ContentBlock
	RelativeTarget tree.NodeID
	Start          tree.StartType
	Offset         *media.PlaybackOffset
}

// tempProvider is a pure function from the current primary queue to the
// overlays it wants present (§4.7).
type tempProvider func(queue events.QueueSnapshot) []TempInsertion

// RegisterProvider registers p and immediately evaluates it, returning an
// engine-assigned provider id.
func (e *Engine) RegisterProvider(p tempProvider) (int, error) {
	v, err := e.call(func(e *Engine) (any, error) {
		e.nextProviderID++
		id := e.nextProviderID
		e.providers[id] = p
		e.reevaluateTempNodes()
		return id, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// UnregisterProvider removes a provider and its currently-contributed
// nodes.
func (e *Engine) UnregisterProvider(id int) error {
	_, err := e.call(func(e *Engine) (any, error) {
		if _, ok := e.providers[id]; !ok {
			return nil, playerr.ErrUnknownNode
		}
		delete(e.providers, id)
		e.clearProvider(id)
		e.emitPlayQueueChanged()
		return nil, nil
	})
	return err
}

// reevaluateTempNodes clears every temperamental node, then re-polls every
// registered provider and inserts its output, tagging each inserted node
// with its provider id (§4.7). Re-entrant calls (insertions made while
// already reevaluating) are suppressed via the reevaluating flag so
// provider-caused queue changes never themselves trigger a nested
// reevaluation.
func (e *Engine) reevaluateTempNodes() {
	if e.reevaluating {
		return
	}
	e.reevaluating = true
	defer func() { e.reevaluating = false }()
	start := time.Now()

	for id := range e.providers {
		e.clearProvider(id)
	}

	queue := e.buildQueueSnapshot()
	activeCount := 0
	for id, p := range e.providers {
		insertions := p(queue)
		nodes := make(map[tree.NodeID]struct{}, len(insertions))
		for _, ins := range insertions {
			nodeID, err := e.tree.CreateNode(ins.Block, ins.Start, ins.Offset)
			if err != nil {
				logging.Warn().Err(err).Int("providerId", id).Msg("temp node provider produced an invalid insertion")
				metrics.RecordTempNodeRejection("invalid_block")
				continue
			}
			n, err := e.tree.Get(nodeID)
			if err != nil {
				continue
			}
			n.Temperamental = true
			n.ProviderID = id

			if ins.Start == tree.Sequenced {
				err = e.tree.SpliceSequenced(ins.RelativeTarget, nodeID)
			} else {
				err = e.tree.AddChild(ins.RelativeTarget, nodeID)
			}
			if err != nil {
				logging.Warn().Err(err).Int("providerId", id).Msg("temp node provider insertion target rejected")
				metrics.RecordTempNodeRejection("target_rejected")
				_ = e.tree.Delete(nodeID)
				continue
			}
			nodes[nodeID] = struct{}{}
		}
		e.providerNodes[id] = nodes
		activeCount += len(nodes)
	}
	metrics.RecordTempNodeReevaluation(time.Since(start), activeCount)
}

// clearProvider detaches and deletes every node currently tagged as
// belonging to provider id, collapsing the gap left by any that sat on the
// primary path (§4.7 "clearing removes temperamental nodes by their
// position").
func (e *Engine) clearProvider(id int) {
	nodes, ok := e.providerNodes[id]
	if !ok {
		return
	}
	for nodeID := range nodes {
		n, err := e.tree.Get(nodeID)
		if err != nil {
			continue
		}
		if n.Start == tree.Sequenced {
			_, _ = e.tree.DetachSequenced(n.Parent)
		} else {
			_ = e.tree.RemoveChild(nodeID)
		}
		_ = e.tree.Delete(nodeID)
	}
	delete(e.providerNodes, id)
}
