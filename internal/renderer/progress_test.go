package renderer

import (
	"testing"

	"github.com/clearcast/playoutd/internal/media"
)

func TestProgressListenerBusFiresInOrder(t *testing.T) {
	b := NewProgressListenerBus()
	var order []int

	if _, err := b.Once(media.AfterStart(500), 1000, func() { order = append(order, 500) }); err != nil {
		t.Fatalf("Once: %v", err)
	}
	if _, err := b.Once(media.AfterStart(100), 1000, func() { order = append(order, 100) }); err != nil {
		t.Fatalf("Once: %v", err)
	}
	if _, err := b.Once(media.AfterStart(900), 1000, func() { order = append(order, 900) }); err != nil {
		t.Fatalf("Once: %v", err)
	}

	b.Check(600)
	if len(order) != 2 || order[0] != 100 || order[1] != 500 {
		t.Fatalf("got %v, want [100 500]", order)
	}
	if b.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", b.Pending())
	}

	b.Check(1000)
	if len(order) != 3 || order[2] != 900 {
		t.Fatalf("got %v, want last element 900", order)
	}
}

func TestProgressListenerBusFiresAtMostOnce(t *testing.T) {
	b := NewProgressListenerBus()
	count := 0
	_, _ = b.Once(media.AfterStart(100), 1000, func() { count++ })
	b.Check(200)
	b.Check(300)
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestProgressListenerBusOffCancels(t *testing.T) {
	b := NewProgressListenerBus()
	fired := false
	id, err := b.Once(media.AfterStart(100), 1000, func() { fired = true })
	if err != nil {
		t.Fatalf("Once: %v", err)
	}
	b.Off(id)
	b.Check(200)
	if fired {
		t.Fatal("cancelled listener should not fire")
	}
}

func TestProgressListenerBusRejectsRangeError(t *testing.T) {
	b := NewProgressListenerBus()
	if _, err := b.Once(media.AtPercentage(0.5), media.InfiniteDuration, func() {}); err == nil {
		t.Fatal("expected range error for percentage against infinite duration")
	}
}

func TestProgressListenerBusOffAll(t *testing.T) {
	b := NewProgressListenerBus()
	fired := false
	_, _ = b.Once(media.AfterStart(100), 1000, func() { fired = true })
	b.OffAll()
	b.Check(200)
	if fired {
		t.Fatal("OffAll should cancel all pending listeners")
	}
}
