package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Bus decouples the engine's single dispatch loop from slow subscribers
// (the control-channel websocket hub) using an in-process Watermill
// gochannel Pub/Sub (§4.10). Publish never blocks on a subscriber: with
// BlockPublishUntilSubscriberAck off, the gochannel Pub/Sub hands each
// message to each subscriber on its own goroutine and returns without
// waiting for delivery, so a slow subscriber delays only its own messages.
type Bus struct {
	pubsub *gochannel.GoChannel
	ser    *Serializer
}

// NewBus constructs a Bus. Pass nil for logger to use Watermill's no-op
// standard logger.
func NewBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            256,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		}, logger),
		ser: NewSerializer(),
	}
}

// Publish serializes event and publishes it on its Kind's topic.
func (b *Bus) Publish(event *Event) error {
	data, err := b.ser.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}
	msg := message.NewMessage(uuid.NewString(), data)
	return b.pubsub.Publish(event.Kind.Topic(), msg)
}

// Subscribe returns a channel of deserialized Events for kind. The
// returned channel closes when ctx is done.
func (b *Bus) Subscribe(ctx context.Context, kind Kind) (<-chan *Event, error) {
	msgs, err := b.pubsub.Subscribe(ctx, kind.Topic())
	if err != nil {
		return nil, fmt.Errorf("events: subscribe %s: %w", kind, err)
	}
	out := make(chan *Event, cap(msgs))
	go func() {
		defer close(out)
		for msg := range msgs {
			event, err := b.ser.Unmarshal(msg.Payload)
			if err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the bus down.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
