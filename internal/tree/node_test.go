package tree

import (
	"testing"

	"github.com/clearcast/playoutd/internal/media"
)

func testBlock(t *testing.T, id string, durationMs int64) media.ContentBlock {
	t.Helper()
	m, err := media.New(id+"-media", media.KindLocalFile, media.Location{Path: "/" + id}, durationMs)
	if err != nil {
		t.Fatalf("media.New: %v", err)
	}
	b, err := media.NewContentBlock(id, "", m, 0, 0)
	if err != nil {
		t.Fatalf("media.NewContentBlock: %v", err)
	}
	return b
}

func TestNodeChildrenOrdersSequencedFirst(t *testing.T) {
	n := &Node{
		SequencedChild:     5,
		ConcurrentChildren: []NodeID{2, 3},
	}
	got := n.Children()
	want := []NodeID{5, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestNodeChildrenWithOnlyConcurrent(t *testing.T) {
	n := &Node{ConcurrentChildren: []NodeID{7, 8}}
	got := n.Children()
	if len(got) != 2 || got[0] != 7 || got[1] != 8 {
		t.Fatalf("got %v, want [7 8]", got)
	}
	if n.HasSequencedChild() {
		t.Fatal("expected no sequenced child")
	}
}

func TestNodeEffectiveDurationDelegatesToBlock(t *testing.T) {
	b := testBlock(t, "a", 1000)
	n := &Node{Block: b}
	if got := n.EffectiveDurationMs(); got != 1000 {
		t.Fatalf("got %d, want 1000", got)
	}
}
