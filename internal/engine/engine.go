package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/clearcast/playoutd/internal/events"
	"github.com/clearcast/playoutd/internal/hierarchy"
	"github.com/clearcast/playoutd/internal/logging"
	"github.com/clearcast/playoutd/internal/media"
	"github.com/clearcast/playoutd/internal/metrics"
	"github.com/clearcast/playoutd/internal/renderer"
	"github.com/clearcast/playoutd/internal/rendererpool"
	"github.com/clearcast/playoutd/internal/tree"
)

// Config tunes an Engine instance (§2 item 8: maxActiveRenderers, preload
// window, default-block retry backoff are all Koanf-loaded in production
// and passed through here).
type Config struct {
	MaxActiveRenderers   int
	PreloadWindow        int
	DefaultRetryInitial  time.Duration
	DefaultRetryMax      time.Duration
	LoadTimeout          time.Duration
	ReadySoftWarnTimeout time.Duration
}

// DefaultConfig returns the engine tunables named in §4.6/§4.4/§7.
func DefaultConfig() Config {
	return Config{
		MaxActiveRenderers:   hierarchy.DefaultMaxActiveRenderers,
		PreloadWindow:        3,
		DefaultRetryInitial:  2 * time.Second,
		DefaultRetryMax:      10 * time.Second,
		LoadTimeout:          30 * time.Second,
		ReadySoftWarnTimeout: 5 * time.Second,
	}
}

type cmdFunc func(e *Engine) (any, error)

type cmd struct {
	fn   cmdFunc
	resp chan cmdResult
}

type cmdResult struct {
	val any
	err error
}

// listenerGroup tracks everything attached to an active node so it can be
// cancelled in one shot on removal (§5 Cancellation).
type listenerGroup struct {
	statusID      renderer.ListenerID
	transitionID  renderer.ListenerID
	childStarters map[tree.NodeID]renderer.ListenerID
	stopTimer     *time.Timer
	startedAt     time.Time
}

// setNodeStatus transitions id to status and records the transition in the
// node-transition counter; every SetStatus call in the dispatch loop should
// go through this instead of calling e.tree.SetStatus directly.
func (e *Engine) setNodeStatus(id tree.NodeID, status tree.Status, at time.Time) error {
	err := e.tree.SetStatus(id, status, at)
	if err == nil {
		metrics.RecordNodeTransition(string(status))
	}
	return err
}

// Engine is the PlaybackEngine (§4.6). Construct with New, then run Serve
// on a goroutine (or register it with a suture supervisor) before calling
// any public method.
type Engine struct {
	cfg   Config
	tree  *tree.Tree
	pool  *rendererpool.Pool
	hier  *hierarchy.Hierarchy
	bus   *events.Bus
	cmds  chan cmd

	front     map[tree.NodeID]struct{}
	listeners map[tree.NodeID]*listenerGroup
	preloaded map[tree.NodeID]*rendererpool.Lease

	primary     tree.NodeID // the node currently occupying layer 0 of the primary path
	defaultMake func() (media.ContentBlock, error)
	defaultSeq  int64

	providers      map[int]tempProvider
	providerNodes  map[int]map[tree.NodeID]struct{}
	nextProviderID int
	reevaluating   bool
}

// New constructs an Engine. defaultMake produces a fresh default
// ("title slate") ContentBlock each time the screen would otherwise go
// dark; it is called at startup and on default-node failure/retry.
func New(cfg Config, pool *rendererpool.Pool, bus *events.Bus, defaultMake func() (media.ContentBlock, error)) *Engine {
	if cfg.MaxActiveRenderers <= 0 {
		cfg.MaxActiveRenderers = hierarchy.DefaultMaxActiveRenderers
	}
	if cfg.PreloadWindow <= 0 {
		cfg.PreloadWindow = 3
	}
	e := &Engine{
		cfg:           cfg,
		tree:          tree.New(),
		pool:          pool,
		hier:          hierarchy.New(cfg.MaxActiveRenderers),
		bus:           bus,
		cmds:          make(chan cmd, 64),
		front:         make(map[tree.NodeID]struct{}),
		listeners:     make(map[tree.NodeID]*listenerGroup),
		preloaded:     make(map[tree.NodeID]*rendererpool.Lease),
		defaultMake:   defaultMake,
		providers:     make(map[int]tempProvider),
		providerNodes: make(map[int]map[tree.NodeID]struct{}),
	}
	e.tree.OnChildAdded(e.onTreeChildAdded)
	e.tree.OnChildRemoved(e.onTreeChildRemoved)
	return e
}

// Serve implements suture.Service: runs the dispatch loop until ctx is
// cancelled. A supervisor restarting Serve after a panic gets a fresh
// dispatch goroutine operating on the same in-process tree/front state
// (§5: "a restart rebuilds the dispatch loop from the persisted tree and
// front").
func (e *Engine) Serve(ctx context.Context) error {
	if err := e.installDefault(ctx); err != nil {
		return fmt.Errorf("engine: initial default block failed: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-e.cmds:
			val, err := c.fn(e)
			if c.resp != nil {
				c.resp <- cmdResult{val: val, err: err}
			}
		}
	}
}

// String satisfies suture's named-service convention.
func (e *Engine) String() string { return "playback-engine" }

// post enqueues fn to run on the dispatch loop without waiting for a
// result; used by callbacks arriving on renderer-owned goroutines (§5:
// "external compositor callbacks are marshalled onto the engine task").
func (e *Engine) post(fn func(e *Engine)) {
	e.cmds <- cmd{fn: func(e *Engine) (any, error) {
		fn(e)
		return nil, nil
	}}
}

// call enqueues fn and blocks for its result; used by public API methods.
func (e *Engine) call(fn cmdFunc) (any, error) {
	resp := make(chan cmdResult, 1)
	e.cmds <- cmd{fn: fn, resp: resp}
	r := <-resp
	return r.val, r.err
}

// installDefault creates a fresh default node and starts it at layer 0,
// retrying with exponential backoff (capped) on failure (§7). Called once
// at startup, from Serve; a default node that fails at runtime is replaced
// by reinstallDefaultAsync instead.
func (e *Engine) installDefault(ctx context.Context) error {
	backoff := e.cfg.DefaultRetryInitial
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	maxBackoff := e.cfg.DefaultRetryMax
	if maxBackoff <= 0 {
		maxBackoff = 10 * time.Second
	}
	for attempt := 0; ; attempt++ {
		block, err := e.defaultMake()
		if err != nil {
			return fmt.Errorf("build default block: %w", err)
		}
		e.defaultSeq++
		block.ID = fmt.Sprintf("default-%d", e.defaultSeq)
		id, err := e.tree.CreateNode(block, tree.Sequenced, nil)
		if err != nil {
			return fmt.Errorf("create default node: %w", err)
		}
		if err := e.tree.SetRoot(id); err != nil {
			return fmt.Errorf("set default root: %w", err)
		}
		if err := e.startNode(id, 0); err == nil {
			e.primary = id
			return nil
		} else if attempt == 0 {
			logging.Warn().Err(err).Msg("initial default block failed to start, retrying")
		}
		_ = e.tree.RemoveChild(id)
		_ = e.tree.Delete(id)

		if attempt == 0 {
			// First failure at startup still must succeed eventually;
			// continue retrying with backoff rather than returning fatal,
			// matching §7: only "cannot be loaded at startup" at all is
			// fatal, not a first transient failure.
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// reinstallDefaultAsync is invoked from the dispatch loop when the active
// default node fails at runtime; it retries in the background (so the
// dispatch loop is not blocked) and re-enters via post once a fresh default
// node is ready to be spliced in as the new primary.
func (e *Engine) reinstallDefaultAsync() {
	go func() {
		backoff := e.cfg.DefaultRetryInitial
		if backoff <= 0 {
			backoff = 2 * time.Second
		}
		maxBackoff := e.cfg.DefaultRetryMax
		if maxBackoff <= 0 {
			maxBackoff = 10 * time.Second
		}
		for {
			block, err := e.defaultMake()
			if err == nil {
				e.post(func(e *Engine) {
					e.defaultSeq++
					block.ID = fmt.Sprintf("default-%d", e.defaultSeq)
					id, cerr := e.tree.CreateNode(block, tree.Sequenced, nil)
					if cerr != nil {
						logging.Error().Err(cerr).Msg("failed to create replacement default node")
						return
					}
					if serr := e.tree.SetRoot(id); serr != nil {
						logging.Error().Err(serr).Msg("failed to set replacement default root")
						return
					}
					if serr := e.startNode(id, 0); serr != nil {
						logging.Error().Err(serr).Msg("replacement default node also failed to start")
						_ = e.tree.RemoveChild(id)
						_ = e.tree.Delete(id)
						return
					}
					e.primary = id
				})
			}
			if err == nil {
				return
			}
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}()
}

// startNode acquires (or reuses a preloaded) renderer for id, attaches its
// listener group, loads media if needed, and transitions it into the front
// (§4.6 "Starting a node").
func (e *Engine) startNode(id tree.NodeID, layer int) error {
	n, err := e.tree.Get(id)
	if err != nil {
		return err
	}

	lease, ok := e.preloaded[id]
	if ok {
		delete(e.preloaded, id)
	} else {
		lease, err = e.pool.Acquire(n.Block.Media.Kind)
		if err != nil {
			return err
		}
	}
	n.Renderer = lease
	e.front[id] = struct{}{}

	grp := &listenerGroup{childStarters: make(map[tree.NodeID]renderer.ListenerID), startedAt: time.Now()}
	e.listeners[id] = grp

	statusID, _ := lease.OnStatus(func(s renderer.Status) {
		e.post(func(e *Engine) { e.handleRendererStatus(id, s) })
	})
	grp.statusID = statusID

	for _, childID := range n.ConcurrentChildren {
		e.installChildStarter(id, childID, layer)
	}

	loaded, hasMedia := lease.LoadedMedia()
	if !hasMedia || !loaded.Equal(n.Block.Media) {
		ctx, cancel := context.WithTimeout(context.Background(), e.loadTimeout())
		warnDone := make(chan struct{})
		go func() {
			select {
			case <-warnDone:
			case <-time.After(e.readyWarnTimeout()):
				logging.ForNode(int64(id)).Warn().Msg("renderer not ready after soft-warn timeout")
			}
		}()
		err := lease.LoadMedia(ctx, n.Block.Media)
		close(warnDone)
		cancel()
		if err != nil {
			e.onNodeError(id, err)
			return err
		}
	}

	return e.proceedStart(id, n, lease, grp, layer)
}

func (e *Engine) loadTimeout() time.Duration {
	if e.cfg.LoadTimeout > 0 {
		return e.cfg.LoadTimeout
	}
	return 30 * time.Second
}

func (e *Engine) readyWarnTimeout() time.Duration {
	if e.cfg.ReadySoftWarnTimeout > 0 {
		return e.cfg.ReadySoftWarnTimeout
	}
	return 5 * time.Second
}

// proceedStart inserts the leased renderer into the hierarchy, begins the
// in-transition (or goes straight to Playing), and starts playback.
func (e *Engine) proceedStart(id tree.NodeID, n *tree.Node, lease *rendererpool.Lease, grp *listenerGroup, layer int) error {
	if err := e.hier.Insert(lease.SourceHandle(), layer); err != nil {
		e.onNodeError(id, err)
		return err
	}

	now := time.Now()
	if n.Block.TransitionInMs > 0 {
		_ = e.setNodeStatus(id, tree.TransitioningIn, now)
		off := media.AfterStart(n.Block.TransitionInMs)
		tid, err := lease.OnceProgress(off, func() {
			e.post(func(e *Engine) { e.completeTransitionIn(id) })
		})
		if err == nil {
			grp.transitionID = tid
		}
	} else {
		_ = e.setNodeStatus(id, tree.Playing, now)
	}

	if err := lease.Play(context.Background()); err != nil {
		e.onNodeError(id, err)
		return err
	}
	e.emitActiveBlocksChanged()
	return nil
}

func (e *Engine) completeTransitionIn(id tree.NodeID) {
	if _, active := e.front[id]; !active {
		return
	}
	n, err := e.tree.Get(id)
	if err != nil {
		return
	}
	if n.Status != tree.TransitioningIn {
		return
	}
	_ = e.setNodeStatus(id, tree.Playing, time.Now())
	e.emitActiveBlocksChanged()
}

// installChildStarter arms a one-shot progress listener on parent's
// renderer that starts childID once its offset is crossed (§4.6 "for every
// existing Concurrent child, registers a one-shot onceProgress starter").
func (e *Engine) installChildStarter(parent tree.NodeID, childID tree.NodeID, parentLayer int) {
	child, err := e.tree.Get(childID)
	if err != nil || child.Offset == nil || child.Status != tree.Queued {
		return
	}
	grp, ok := e.listeners[parent]
	if !ok {
		return
	}
	pn, err := e.tree.Get(parent)
	if err != nil {
		return
	}
	lease, ok := pn.Renderer.(*rendererpool.Lease)
	if !ok {
		return
	}
	id, err := lease.OnceProgress(*child.Offset, func() {
		e.post(func(e *Engine) { _ = e.startNode(childID, parentLayer+1) })
	})
	if err != nil {
		logging.ForNode(int64(childID)).Warn().Err(err).Msg("concurrent child offset unreachable")
		return
	}
	grp.childStarters[childID] = id
}

// onTreeChildAdded installs a starter for a newly attached Concurrent child
// of an already-active parent. Runs synchronously on the dispatch loop: it
// is only ever invoked from within a Tree mutation that is itself executing
// inside a dispatch-loop cmd.
func (e *Engine) onTreeChildAdded(ev tree.ChildEvent) {
	if ev.Start != tree.Concurrent {
		return
	}
	if _, active := e.front[ev.Parent]; !active {
		return
	}
	layer := 0
	if pn, err := e.tree.Get(ev.Parent); err == nil {
		if lease, ok := pn.Renderer.(*rendererpool.Lease); ok {
			layer = e.hier.IndexOf(lease.SourceHandle())
		}
	}
	e.installChildStarter(ev.Parent, ev.Child, layer)
}

// onTreeChildRemoved cancels a pending Concurrent starter for a detached
// child, per §4.2's "removing a child that is concurrent must also detach
// its engine-side progress starter".
func (e *Engine) onTreeChildRemoved(ev tree.ChildEvent) {
	grp, ok := e.listeners[ev.Parent]
	if !ok {
		return
	}
	id, ok := grp.childStarters[ev.Child]
	if !ok {
		return
	}
	delete(grp.childStarters, ev.Child)
	if pn, err := e.tree.Get(ev.Parent); err == nil {
		if lease, ok := pn.Renderer.(*rendererpool.Lease); ok {
			lease.OffProgress(id)
		}
	}
}

// onNodeError handles an unrecoverable renderer failure for id (§7
// RendererFailure): the owning node is force-finished, logged, and
// removed; queue continues with the next node.
func (e *Engine) onNodeError(id tree.NodeID, cause error) {
	logging.ForNode(int64(id)).Error().Err(cause).Msg("renderer failure, force-finishing node")
	e.forceFinish(id)
}

func (e *Engine) emitActiveBlocksChanged() {
	if e.bus == nil {
		return
	}
	snap := e.buildActiveSnapshot()
	_ = e.bus.Publish(&events.Event{Kind: events.ActiveBlocksChanged, Active: &snap})
}

func (e *Engine) emitPlayQueueChanged() {
	if e.bus == nil {
		return
	}
	snap := e.buildQueueSnapshot()
	_ = e.bus.Publish(&events.Event{Kind: events.PlayQueueChanged, Queue: &snap})
}
