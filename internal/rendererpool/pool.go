package rendererpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/clearcast/playoutd/internal/media"
	"github.com/clearcast/playoutd/internal/metrics"
	"github.com/clearcast/playoutd/internal/playerr"
	"github.com/clearcast/playoutd/internal/renderer"
)

// Factory builds a new Renderer bound to sourceHandle, the opaque
// compositor-source id the hierarchy will later insert.
type Factory func(sourceHandle string) (renderer.Renderer, error)

// DisableFunc marks a renderer's compositor source disabled on release
// (§4.3 step iv). Optional; a nil DisableFunc is a no-op.
type DisableFunc func(sourceHandle string)

// Pool is the per-content-type renderer factory and free-list (§4.3).
// Acquire/Release are atomic with respect to each other: a renderer is
// never simultaneously in the free list and leased to a node.
type Pool struct {
	mu        sync.Mutex
	factories map[media.Kind]Factory
	free      map[media.Kind][]renderer.Renderer
	nextID    int64
	closed    bool
	disable   DisableFunc
}

// New constructs an empty Pool. disable may be nil.
func New(disable DisableFunc) *Pool {
	return &Pool{
		factories: make(map[media.Kind]Factory),
		free:      make(map[media.Kind][]renderer.Renderer),
		disable:   disable,
	}
}

// RegisterFactory binds kind to f. Intended to be called at startup, before
// any Acquire for that kind.
func (p *Pool) RegisterFactory(kind media.Kind, f Factory) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.factories[kind] = f
}

// Acquire hands out a Lease for kind: first popping the free list, else
// instantiating via the registered factory with a pool-wide monotonic
// source-handle id (§4.3).
func (p *Pool) Acquire(kind media.Kind) (*Lease, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, playerr.ErrPoolClosed
	}
	factory, ok := p.factories[kind]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", playerr.ErrUnsupportedContentType, kind)
	}

	if list := p.free[kind]; len(list) > 0 {
		r := list[len(list)-1]
		p.free[kind] = list[:len(list)-1]
		freeCount := len(p.free[kind])
		p.mu.Unlock()
		metrics.SetRendererPoolFree(string(kind), freeCount)
		metrics.RecordLeaseAcquired(string(kind))
		return newLease(p, r, kind), nil
	}
	p.nextID++
	id := p.nextID
	p.mu.Unlock()

	r, err := factory(fmt.Sprintf("%s-%d", kind, id))
	if err != nil {
		return nil, fmt.Errorf("%w: factory for %s: %v", playerr.ErrRendererFailure, kind, err)
	}
	metrics.RecordLeaseAcquired(string(kind))
	return newLease(p, r, kind), nil
}

// release is called by a Lease's Release once it has already revoked
// itself, stopped the renderer, and cancelled its listeners; it returns the
// underlying renderer to the free list (or drops it, if the pool has since
// been closed).
func (p *Pool) release(kind media.Kind, r renderer.Renderer) {
	p.mu.Lock()
	if p.disable != nil {
		p.disable(r.SourceHandle())
	}
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.free[kind] = append(p.free[kind], r)
	freeCount := len(p.free[kind])
	p.mu.Unlock()
	metrics.RecordLeaseReleased(string(kind))
	metrics.SetRendererPoolFree(string(kind), freeCount)
}

// Close marks the pool closed; further Acquire calls fail with
// ErrPoolClosed. Renderers already leased are unaffected until released.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.free = make(map[media.Kind][]renderer.Renderer)
}

// FreeCount reports the number of idle renderers held for kind, for tests
// and metrics.
func (p *Pool) FreeCount(kind media.Kind) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free[kind])
}

// Lease is a revocable handle to a pooled Renderer (§9: proxy-revocation
// becomes a tagged lease handle whose Release flips an atomic revoked
// flag). Once Release has run, the methods that return an error fail with
// ErrLeaseRevoked, OffStatus/OffProgress do nothing, and LoadedMedia,
// CurrentProgressMs and StatusNow return no media, 0 and Error without
// reaching the renderer; ContentType and SourceHandle stay readable.
type Lease struct {
	pool     *Pool
	kind     media.Kind
	renderer renderer.Renderer
	revoked  atomic.Bool
}

func newLease(p *Pool, r renderer.Renderer, kind media.Kind) *Lease {
	return &Lease{pool: p, kind: kind, renderer: r}
}

func (l *Lease) check() error {
	if l.revoked.Load() {
		return playerr.ErrLeaseRevoked
	}
	return nil
}

// ContentType reports the content-type this lease was acquired for.
func (l *Lease) ContentType() media.Kind { return l.kind }

// SourceHandle is the opaque compositor-source id for hierarchy insertion.
func (l *Lease) SourceHandle() string { return l.renderer.SourceHandle() }

func (l *Lease) LoadMedia(ctx context.Context, m media.MediaObject) error {
	if err := l.check(); err != nil {
		return err
	}
	return l.renderer.LoadMedia(ctx, m)
}

func (l *Lease) Play(ctx context.Context) error {
	if err := l.check(); err != nil {
		return err
	}
	return l.renderer.Play(ctx)
}

func (l *Lease) Restart(ctx context.Context) error {
	if err := l.check(); err != nil {
		return err
	}
	return l.renderer.Restart(ctx)
}

func (l *Lease) StopAndUnload(ctx context.Context) error {
	if err := l.check(); err != nil {
		return err
	}
	return l.renderer.StopAndUnload(ctx)
}

func (l *Lease) LoadedMedia() (media.MediaObject, bool) {
	if err := l.check(); err != nil {
		return media.MediaObject{}, false
	}
	return l.renderer.LoadedMedia()
}

func (l *Lease) CurrentProgressMs() int64 {
	if err := l.check(); err != nil {
		return 0
	}
	return l.renderer.CurrentProgressMs()
}

func (l *Lease) StatusNow() renderer.Status {
	if err := l.check(); err != nil {
		return renderer.Error
	}
	return l.renderer.StatusNow()
}

func (l *Lease) OnStatus(s renderer.StatusListener) (renderer.ListenerID, error) {
	if err := l.check(); err != nil {
		return 0, err
	}
	return l.renderer.OnStatus(s), nil
}

func (l *Lease) OffStatus(id renderer.ListenerID) {
	if l.revoked.Load() {
		return
	}
	l.renderer.OffStatus(id)
}

func (l *Lease) OnceProgress(offset media.PlaybackOffset, cb func()) (renderer.ListenerID, error) {
	if err := l.check(); err != nil {
		return 0, err
	}
	return l.renderer.OnceProgress(offset, cb)
}

func (l *Lease) OffProgress(id renderer.ListenerID) {
	if l.revoked.Load() {
		return
	}
	l.renderer.OffProgress(id)
}

// Release revokes the lease, cancels all listeners on the underlying
// renderer, stops and unloads it, marks its compositor source disabled, and
// returns it to the pool's free list (§4.3). Calling Release more than once
// is a no-op after the first call.
func (l *Lease) Release(ctx context.Context) error {
	if !l.revoked.CompareAndSwap(false, true) {
		return nil
	}
	l.renderer.OffAllStatus()
	err := l.renderer.StopAndUnload(ctx)
	l.pool.release(l.kind, l.renderer)
	return err
}
