package events

import "github.com/clearcast/playoutd/internal/media"

// QueueEntry is one primary-queue item as serialized to the control
// channel (§6.3 (i)).
type QueueEntry struct {
	QueueID         int64            `json:"queueId"`
	ID              string           `json:"id"`
	Media           media.MediaObject `json:"media"`
	Colour          string           `json:"colour"`
	TransitionInMs  int64            `json:"transitionInMs"`
	TransitionOutMs int64            `json:"transitionOutMs"`
	MediaStatus     string           `json:"mediaStatus"`
}

// ActiveEntry is one active-front item, QueueEntry plus the fields only
// meaningful while a node is on the front (§6.3 (ii)).
type ActiveEntry struct {
	QueueEntry
	ProgressMs int64  `json:"progressMs"`
	Status     string `json:"status"`
	LayerIndex int    `json:"layerIndex"`
}

// QueueSnapshot is the serialized primary queue, ordered front-to-back.
type QueueSnapshot struct {
	Entries []QueueEntry `json:"entries"`
}

// ActiveSnapshot is the serialized active front, ordered by layer index.
type ActiveSnapshot struct {
	Entries []ActiveEntry `json:"entries"`
}
