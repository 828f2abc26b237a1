package renderer

import (
	"context"
	"fmt"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/clearcast/playoutd/internal/media"
	"github.com/clearcast/playoutd/internal/metrics"
	"github.com/clearcast/playoutd/internal/playerr"
)

// Renderer is the capability contract every content-type implementation
// satisfies (§4.5, §6.1). The hierarchy inserts a Renderer's SourceHandle;
// the engine drives everything else.
type Renderer interface {
	ContentType() media.Kind
	LoadMedia(ctx context.Context, m media.MediaObject) error
	Play(ctx context.Context) error
	Restart(ctx context.Context) error
	StopAndUnload(ctx context.Context) error
	LoadedMedia() (media.MediaObject, bool)
	CurrentProgressMs() int64
	StatusNow() Status
	OnStatus(l StatusListener) ListenerID
	OffStatus(id ListenerID)
	OffAllStatus()
	OnceProgress(offset media.PlaybackOffset, cb func()) (ListenerID, error)
	OffProgress(id ListenerID)
	SourceHandle() string
}

// breakerSettings returns gobreaker settings tripping after three
// consecutive failures, grounded on the teacher's
// eventprocessor.NewCircuitBreaker (deleted from this tree; behavior kept).
// OnStateChange mirrors every transition into the circuit-breaker gauge and
// counts trips into the open state, keyed by contentKind rather than the
// breaker's own "renderer:<kind>" name so it lines up with every other
// content-kind-labeled metric in this package.
func breakerSettings(contentKind string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "renderer:" + contentKind,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetCircuitBreakerState(contentKind, int(to))
			if to == gobreaker.StateOpen {
				metrics.RecordCircuitBreakerTrip(contentKind)
			}
		},
	}
}

// base implements the plumbing shared by every concrete Renderer: status
// multicast, a ProgressListenerBus, a progress tick loop while Playing, and
// a gobreaker wrapping I/O-bound calls. Concrete renderers embed base and
// implement LoadMedia/Play/Restart/StopAndUnload on top of it.
type base struct {
	contentType  media.Kind
	sourceHandle string
	breaker      *gobreaker.CircuitBreaker[any]

	mu             sync.Mutex
	status         Status
	media          media.MediaObject
	hasMedia       bool
	playingSince   time.Time
	statusAt       map[ListenerID]StatusListener
	nextStatusID   int64
	progress       *ProgressListenerBus
	tickerCancel   context.CancelFunc
	finiteDuration bool
	durationMs     int64
}

func newBase(contentType media.Kind, sourceHandle string) base {
	return base{
		contentType:  contentType,
		sourceHandle: sourceHandle,
		breaker:      gobreaker.NewCircuitBreaker[any](breakerSettings(string(contentType))),
		status:       Idle,
		statusAt:     make(map[ListenerID]StatusListener),
		progress:     NewProgressListenerBus(),
	}
}

func (b *base) ContentType() media.Kind   { return b.contentType }
func (b *base) SourceHandle() string      { return b.sourceHandle }
func (b *base) LoadedMedia() (media.MediaObject, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.media, b.hasMedia
}

func (b *base) StatusNow() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *base) OnStatus(l StatusListener) ListenerID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextStatusID++
	id := ListenerID(b.nextStatusID)
	b.statusAt[id] = l
	return id
}

func (b *base) OffStatus(id ListenerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.statusAt, id)
}

func (b *base) OnceProgress(offset media.PlaybackOffset, cb func()) (ListenerID, error) {
	b.mu.Lock()
	dur := b.durationMs
	hasMedia := b.hasMedia
	b.mu.Unlock()
	if !hasMedia {
		return 0, fmt.Errorf("%w: no media loaded", playerr.ErrRangeError)
	}
	return b.progress.Once(offset, dur, cb)
}

func (b *base) OffProgress(id ListenerID) {
	b.progress.Off(id)
}

// OffAllStatus removes every registered status listener, used by the
// renderer pool on Release to cancel a lease's whole listener group in one
// call (§4.3, §5 Cancellation).
func (b *base) OffAllStatus() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statusAt = make(map[ListenerID]StatusListener)
}

// CurrentProgressMs is wall-clock since entering Playing, capped at the
// loaded media's duration for finite media per §9's open-question
// resolution ("cap externally-reported progressMs at the media duration").
func (b *base) CurrentProgressMs() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.playingSince.IsZero() {
		return 0
	}
	elapsed := time.Since(b.playingSince).Milliseconds()
	if b.finiteDuration && elapsed > b.durationMs {
		return b.durationMs
	}
	return elapsed
}

// setStatus transitions status and notifies listeners outside the lock.
// Listeners are held in a map, so the order among them is not defined.
func (b *base) setStatus(s Status) {
	b.mu.Lock()
	b.status = s
	if s == Playing {
		b.playingSince = time.Now()
	}
	listeners := make([]StatusListener, 0, len(b.statusAt))
	for _, l := range b.statusAt {
		listeners = append(listeners, l)
	}
	b.mu.Unlock()

	for _, l := range listeners {
		l(s)
	}
}

// setLoaded records the loaded media and its duration; call from a concrete
// renderer's LoadMedia. The progress tick loop is started separately, by
// startTicking from Play.
func (b *base) setLoaded(m media.MediaObject) {
	b.mu.Lock()
	b.media = m
	b.hasMedia = true
	b.durationMs = m.DurationMs
	b.finiteDuration = !media.IsInfinite(m.DurationMs)
	b.mu.Unlock()
}

// startTicking launches the ≥100ms progress-check loop (§4.8). Concrete
// renderers call this from Play with whatever ctx that call received —
// typically context.Background(), since a renderer is leased and reused
// across many Play/StopAndUnload cycles and must not inherit a caller's
// short-lived request context. The loop therefore derives its own
// cancellable context rather than trusting ctx's lifetime, and stores the
// cancel func so clearLoaded can stop it; without this every Play on a
// pooled, reused renderer would leak another ticker goroutine.
func (b *base) startTicking(ctx context.Context) {
	tickCtx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	if b.tickerCancel != nil {
		b.tickerCancel()
	}
	b.tickerCancel = cancel
	b.mu.Unlock()

	ticker := time.NewTicker(TickResolutionMs * time.Millisecond)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-tickCtx.Done():
				return
			case <-ticker.C:
				b.progress.Check(b.CurrentProgressMs())
			}
		}
	}()
}

// armAutoFinish schedules cb to run once playback reaches the loaded
// media's full duration; a no-op for infinite media, which plays until
// explicitly skipped or replaced (§3).
func (b *base) armAutoFinish(cb func()) {
	b.mu.Lock()
	finite := b.finiteDuration
	dur := b.durationMs
	b.mu.Unlock()
	if !finite {
		return
	}
	_, _ = b.progress.Once(media.AfterStart(dur), dur, cb)
}

// clearLoaded resets load state on stop and stops the tick loop startTicking
// launched, if one is running.
func (b *base) clearLoaded() {
	b.mu.Lock()
	b.hasMedia = false
	b.playingSince = time.Time{}
	cancel := b.tickerCancel
	b.tickerCancel = nil
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	b.progress.OffAll()
}

// runBreaker executes fn through the breaker, translating a tripped breaker
// or fn's own error into ErrRendererFailure.
func (b *base) runBreaker(fn func() error) error {
	_, err := b.breaker.Execute(func() (any, error) {
		return nil, fn()
	})
	if err != nil {
		return fmt.Errorf("%w: %v", playerr.ErrRendererFailure, err)
	}
	return nil
}
