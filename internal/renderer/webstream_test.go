package renderer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clearcast/playoutd/internal/media"
)

func TestWebStreamRendererProbesAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewWebStreamRenderer("src-1")
	m, _ := media.New("stream", media.KindWebStream, media.Location{Path: srv.URL, Status: media.StatusReady}, media.InfiniteDuration)

	if err := r.LoadMedia(context.Background(), m); err != nil {
		t.Fatalf("LoadMedia: %v", err)
	}
	if r.StatusNow() != Ready {
		t.Fatalf("StatusNow() = %s, want Ready", r.StatusNow())
	}
}

func TestWebStreamRendererFailsOnEmptyAddress(t *testing.T) {
	r := NewWebStreamRenderer("src-1")
	m, _ := media.New("stream", media.KindWebStream, media.Location{}, media.InfiniteDuration)
	if err := r.LoadMedia(context.Background(), m); err == nil {
		t.Fatal("expected error probing an empty address")
	}
	if r.StatusNow() != Error {
		t.Fatalf("StatusNow() = %s, want Error", r.StatusNow())
	}
}
