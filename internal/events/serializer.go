package events

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Serializer encodes/decodes Events for transport over the Watermill bus
// and the control-channel websocket hub, mirroring the teacher's
// eventprocessor.Serializer convention.
type Serializer struct{}

// NewSerializer constructs a Serializer.
func NewSerializer() *Serializer { return &Serializer{} }

// Marshal converts an Event to deterministic JSON bytes. Field order is
// fixed by struct declaration order, satisfying §6.3's "snapshot
// serialization MUST be stable and deterministic".
func (s *Serializer) Marshal(event *Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal converts JSON bytes to an Event.
func (s *Serializer) Unmarshal(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &event, nil
}

// Serialize is a convenience wrapper around Marshal.
func Serialize(event *Event) ([]byte, error) {
	return NewSerializer().Marshal(event)
}

// Deserialize is a convenience wrapper around Unmarshal.
func Deserialize(data []byte) (*Event, error) {
	return NewSerializer().Unmarshal(data)
}
