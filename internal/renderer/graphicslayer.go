package renderer

import (
	"context"
	"fmt"

	"github.com/clearcast/playoutd/internal/media"
	"github.com/clearcast/playoutd/internal/playerr"
)

// LayerBroadcaster pushes show/hide instructions to a control-channel-
// subscribed browser overlay. A GraphicsLayerRenderer "renders" by
// broadcasting, not by local decode, mirroring the teacher's websocket.Hub
// broadcast-to-subscriber idea.
type LayerBroadcaster interface {
	ShowLayer(ctx context.Context, sourceHandle string, m media.MediaObject) error
	HideLayer(ctx context.Context, sourceHandle string) error
}

// NoopBroadcaster drops show/hide instructions; used in tests and where no
// control-channel hub is wired yet.
type NoopBroadcaster struct{}

func (NoopBroadcaster) ShowLayer(ctx context.Context, sourceHandle string, m media.MediaObject) error {
	return nil
}
func (NoopBroadcaster) HideLayer(ctx context.Context, sourceHandle string) error { return nil }

// GraphicsLayerRenderer drives an HTML-based overlay. durationMs may be
// infinite (a persistent overlay) or finite (a timed stinger); either way
// LoadMedia reaches Ready immediately, since there is no buffering stage for
// a graphics layer, and the show instruction is sent by Play.
type GraphicsLayerRenderer struct {
	base
	broadcaster LayerBroadcaster
}

// NewGraphicsLayerRenderer constructs a renderer pushing show/hide through
// broadcaster.
func NewGraphicsLayerRenderer(sourceHandle string, broadcaster LayerBroadcaster) *GraphicsLayerRenderer {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &GraphicsLayerRenderer{
		base:        newBase(media.KindGraphicsLayer, sourceHandle),
		broadcaster: broadcaster,
	}
}

func (r *GraphicsLayerRenderer) LoadMedia(ctx context.Context, m media.MediaObject) error {
	if m.Kind != media.KindGraphicsLayer {
		return fmt.Errorf("%w: graphics layer renderer given %s", playerr.ErrUnsupportedContentType, m.Kind)
	}
	r.setStatus(Loading)
	r.setLoaded(m)
	r.setStatus(Ready)
	return nil
}

func (r *GraphicsLayerRenderer) Play(ctx context.Context) error {
	if r.StatusNow() != Ready {
		return fmt.Errorf("%w: play called outside Ready", playerr.ErrRendererFailure)
	}
	m, _ := r.LoadedMedia()
	err := r.runBreaker(func() error {
		return r.broadcaster.ShowLayer(ctx, r.SourceHandle(), m)
	})
	if err != nil {
		r.setStatus(Error)
		return err
	}
	r.setStatus(Playing)
	r.startTicking(ctx)
	r.armAutoFinish(func() { r.setStatus(Finished) })
	return nil
}

func (r *GraphicsLayerRenderer) Restart(ctx context.Context) error {
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

func (r *GraphicsLayerRenderer) StopAndUnload(ctx context.Context) error {
	err := r.broadcaster.HideLayer(ctx, r.SourceHandle())
	r.clearLoaded()
	r.setStatus(Idle)
	return err
}
