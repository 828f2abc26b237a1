package events

import (
	"context"
	"testing"
	"time"
)

func TestSerializeRoundTrip(t *testing.T) {
	event := &Event{
		Kind: PlayQueueChanged,
		Queue: &QueueSnapshot{Entries: []QueueEntry{
			{QueueID: 1, ID: "a", Colour: "red", TransitionInMs: 100},
		}},
	}
	data, err := Serialize(event)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got.Kind != PlayQueueChanged || len(got.Queue.Entries) != 1 || got.Queue.Entries[0].ID != "a" {
		t.Fatalf("got %+v", got)
	}
}

func TestSerializeIsDeterministic(t *testing.T) {
	event := &Event{Kind: ActiveBlocksChanged, Active: &ActiveSnapshot{}}
	a, err := Serialize(event)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	b, err := Serialize(event)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("expected deterministic serialization, got %q vs %q", a, b)
	}
}

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, PlayQueueChanged)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := bus.Publish(&Event{Kind: PlayQueueChanged, Queue: &QueueSnapshot{}}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case event := <-ch:
		if event.Kind != PlayQueueChanged {
			t.Fatalf("got kind %v, want PlayQueueChanged", event.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestKindTopicNaming(t *testing.T) {
	if PlayQueueChanged.Topic() != "queue_snapshot" {
		t.Fatalf("got %q, want queue_snapshot", PlayQueueChanged.Topic())
	}
	if ActiveBlocksChanged.Topic() != "active_snapshot" {
		t.Fatalf("got %q, want active_snapshot", ActiveBlocksChanged.Topic())
	}
}
