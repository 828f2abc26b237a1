package renderer

// Status is a Renderer's playback lifecycle state (§4.5).
type Status string

const (
	Idle     Status = "idle"
	Loading  Status = "loading"
	Ready    Status = "ready"
	Playing  Status = "playing"
	Stalled  Status = "stalled"
	Finished Status = "finished"
	Error    Status = "error"
)

// ListenerID identifies a registered status or progress listener so callers
// can cancel it individually (used by per-node listener groups, §5
// Cancellation).
type ListenerID int64

// StatusListener is invoked synchronously, in the order status changes
// occur, whenever a Renderer's Status transitions.
type StatusListener func(Status)
