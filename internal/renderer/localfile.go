package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/clearcast/playoutd/internal/media"
	"github.com/clearcast/playoutd/internal/playerr"
)

// LocalFileRenderer plays a local decode/playout loop. Readiness waits a
// short, timeout-bounded interval to simulate the decoder warming up and
// buffering the first frames, mirroring famish99/direttampd's
// wait-with-timeout-before-state-flip transition pattern.
type LocalFileRenderer struct {
	base
	warmup time.Duration
}

// NewLocalFileRenderer constructs a renderer bound to sourceHandle (the
// opaque compositor-source id the hierarchy will insert).
func NewLocalFileRenderer(sourceHandle string) *LocalFileRenderer {
	return &LocalFileRenderer{
		base:   newBase(media.KindLocalFile, sourceHandle),
		warmup: 150 * time.Millisecond,
	}
}

func (r *LocalFileRenderer) LoadMedia(ctx context.Context, m media.MediaObject) error {
	if m.Kind != media.KindLocalFile {
		return fmt.Errorf("%w: localfile renderer given %s", playerr.ErrUnsupportedContentType, m.Kind)
	}
	r.setStatus(Loading)
	err := r.runBreaker(func() error {
		select {
		case <-time.After(r.warmup):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		r.setStatus(Error)
		return err
	}
	r.setLoaded(m)
	r.setStatus(Ready)
	return nil
}

func (r *LocalFileRenderer) Play(ctx context.Context) error {
	if r.StatusNow() != Ready {
		return fmt.Errorf("%w: play called outside Ready", playerr.ErrRendererFailure)
	}
	r.setStatus(Playing)
	r.startTicking(ctx)
	r.armAutoFinish(func() { r.setStatus(Finished) })
	return nil
}

func (r *LocalFileRenderer) Restart(ctx context.Context) error {
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

func (r *LocalFileRenderer) StopAndUnload(ctx context.Context) error {
	r.clearLoaded()
	r.setStatus(Idle)
	return nil
}
