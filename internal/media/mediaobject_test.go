package media

import "testing"

func TestMediaObjectEqual(t *testing.T) {
	a, err := New("Title", KindLocalFile, Location{Path: "/a.mp4", Status: StatusReady}, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := a
	if !a.Equal(b) {
		t.Fatal("expected equal media objects")
	}
	b.DurationMs = 2000
	if a.Equal(b) {
		t.Fatal("expected unequal media objects after duration change")
	}
}

func TestMediaObjectRejectsNegativeDuration(t *testing.T) {
	if _, err := New("x", KindLocalFile, Location{}, -5); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestMediaObjectAllowsInfiniteDuration(t *testing.T) {
	m, err := New("Live", KindRTMP, Location{Status: StatusReady}, InfiniteDuration)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsInfinite(m.DurationMs) {
		t.Fatal("expected infinite duration")
	}
}

func TestMediaObjectCloneIndependentBytes(t *testing.T) {
	m := MediaObject{Name: "x", Kind: KindLocalFile, ThumbnailBytes: []byte{1, 2, 3}}
	clone := m.Clone()
	clone.ThumbnailBytes[0] = 9
	if m.ThumbnailBytes[0] == 9 {
		t.Fatal("clone should not alias original bytes")
	}
}
