package events

// Kind names one of the engine's two observable event kinds (§4.6).
type Kind string

const (
	// ActiveBlocksChanged is published whenever the active front (the set
	// of nodes occupying the render hierarchy) changes.
	ActiveBlocksChanged Kind = "active_blocks_changed"
	// PlayQueueChanged is published whenever the primary queue changes,
	// whether by an external mutation or by temp-node re-evaluation.
	PlayQueueChanged Kind = "play_queue_changed"
)

// Topic returns the Watermill topic name a Kind is published under. Kept
// distinct from Kind's own string value so wire topic naming can evolve
// independently of the Go-level event-kind identifier.
func (k Kind) Topic() string {
	switch k {
	case ActiveBlocksChanged:
		return "active_snapshot"
	case PlayQueueChanged:
		return "queue_snapshot"
	default:
		return string(k)
	}
}

// Event is the payload carried on a Kind's topic.
type Event struct {
	Kind   Kind            `json:"kind"`
	Active *ActiveSnapshot `json:"active,omitempty"`
	Queue  *QueueSnapshot  `json:"queue,omitempty"`
}
