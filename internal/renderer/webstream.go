package renderer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"github.com/clearcast/playoutd/internal/media"
	"github.com/clearcast/playoutd/internal/playerr"
)

// WebStreamRenderer sources HTTP-delivered video. Readiness is gated on a
// successful HEAD probe of the stream's address over an HTTP/2-capable
// transport, matching the teacher's x/net dependency usage.
type WebStreamRenderer struct {
	base
	client *http.Client
}

// NewWebStreamRenderer constructs a renderer with an HTTP/2-enabled client.
func NewWebStreamRenderer(sourceHandle string) *WebStreamRenderer {
	transport := &http.Transport{}
	_ = http2.ConfigureTransport(transport)
	return &WebStreamRenderer{
		base:   newBase(media.KindWebStream, sourceHandle),
		client: &http.Client{Transport: transport, Timeout: 5 * time.Second},
	}
}

func (r *WebStreamRenderer) LoadMedia(ctx context.Context, m media.MediaObject) error {
	if m.Kind != media.KindWebStream {
		return fmt.Errorf("%w: webstream renderer given %s", playerr.ErrUnsupportedContentType, m.Kind)
	}
	r.setStatus(Loading)
	err := r.runBreaker(func() error {
		return r.probe(ctx, m.Location.Path)
	})
	if err != nil {
		r.setStatus(Error)
		return err
	}
	r.setLoaded(m)
	r.setStatus(Ready)
	return nil
}

func (r *WebStreamRenderer) probe(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty stream address", playerr.ErrRendererFailure)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, path, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: stream probe status %d", playerr.ErrRendererFailure, resp.StatusCode)
	}
	return nil
}

func (r *WebStreamRenderer) Play(ctx context.Context) error {
	if r.StatusNow() != Ready {
		return fmt.Errorf("%w: play called outside Ready", playerr.ErrRendererFailure)
	}
	r.setStatus(Playing)
	r.startTicking(ctx)
	r.armAutoFinish(func() { r.setStatus(Finished) })
	return nil
}

func (r *WebStreamRenderer) Restart(ctx context.Context) error {
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

func (r *WebStreamRenderer) StopAndUnload(ctx context.Context) error {
	r.clearLoaded()
	r.setStatus(Idle)
	return nil
}
