package renderer

import (
	"context"
	"fmt"

	"github.com/clearcast/playoutd/internal/media"
	"github.com/clearcast/playoutd/internal/playerr"
)

// Relay is the leased-ingest handle an RTMPRenderer drives. Modeled on the
// alxayo/go-rtmp corpus's relay.Manager shape: a destination registry keyed
// by stream id, exposing a start/stop/status lifecycle rather than local
// decode.
type Relay interface {
	Start(ctx context.Context, streamKey string) error
	Stop(ctx context.Context) error
	Healthy(ctx context.Context) bool
}

// NoopRelay is a Relay that always succeeds; used where no real ingest
// manager is wired (tests, and environments without a configured relay
// backend).
type NoopRelay struct{}

func (NoopRelay) Start(ctx context.Context, streamKey string) error { return nil }
func (NoopRelay) Stop(ctx context.Context) error                    { return nil }
func (NoopRelay) Healthy(ctx context.Context) bool                  { return true }

// RTMPRenderer represents a live relay leased from an external ingest
// manager. RTMP media is ordinarily infinite-duration; it plays until
// explicitly skipped or replaced (§3).
type RTMPRenderer struct {
	base
	relay Relay
}

// NewRTMPRenderer constructs a renderer driving relay for ingest start/stop.
func NewRTMPRenderer(sourceHandle string, relay Relay) *RTMPRenderer {
	if relay == nil {
		relay = NoopRelay{}
	}
	return &RTMPRenderer{
		base:  newBase(media.KindRTMP, sourceHandle),
		relay: relay,
	}
}

func (r *RTMPRenderer) LoadMedia(ctx context.Context, m media.MediaObject) error {
	if m.Kind != media.KindRTMP {
		return fmt.Errorf("%w: rtmp renderer given %s", playerr.ErrUnsupportedContentType, m.Kind)
	}
	r.setStatus(Loading)
	err := r.runBreaker(func() error {
		return r.relay.Start(ctx, m.Location.Path)
	})
	if err != nil {
		r.setStatus(Error)
		return err
	}
	r.setLoaded(m)
	r.setStatus(Ready)
	return nil
}

func (r *RTMPRenderer) Play(ctx context.Context) error {
	if r.StatusNow() != Ready {
		return fmt.Errorf("%w: play called outside Ready", playerr.ErrRendererFailure)
	}
	if !r.relay.Healthy(ctx) {
		r.setStatus(Stalled)
		return fmt.Errorf("%w: relay unhealthy at play time", playerr.ErrRendererFailure)
	}
	r.setStatus(Playing)
	r.startTicking(ctx)
	r.armAutoFinish(func() { r.setStatus(Finished) })
	return nil
}

func (r *RTMPRenderer) Restart(ctx context.Context) error {
	m, ok := r.LoadedMedia()
	if !ok {
		return fmt.Errorf("%w: restart with no loaded media", playerr.ErrRendererFailure)
	}
	if err := r.StopAndUnload(ctx); err != nil {
		return err
	}
	if err := r.LoadMedia(ctx, m); err != nil {
		return err
	}
	return r.Play(ctx)
}

func (r *RTMPRenderer) StopAndUnload(ctx context.Context) error {
	err := r.relay.Stop(ctx)
	r.clearLoaded()
	r.setStatus(Idle)
	return err
}
