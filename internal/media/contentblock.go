package media

import "fmt"

// ContentBlock wraps a MediaObject with the playback attributes the engine
// needs to schedule it: a stable id, a display colour hint, and in/out
// transition durations (§3).
//
// ContentBlock is logically immutable after creation except via the
// engine's Update path (§4.6 `update`), which replaces the whole
// value rather than mutating fields in place.
type ContentBlock struct {
	ID              string
	Colour          string
	Media           MediaObject
	TransitionInMs  int64
	TransitionOutMs int64
}

// NewContentBlock constructs a ContentBlock, validating transition durations.
func NewContentBlock(id string, colour string, m MediaObject, transitionInMs, transitionOutMs int64) (ContentBlock, error) {
	if transitionInMs < 0 {
		return ContentBlock{}, fmt.Errorf("media: negative transitionInMs %d", transitionInMs)
	}
	if transitionOutMs < 0 {
		return ContentBlock{}, fmt.Errorf("media: negative transitionOutMs %d", transitionOutMs)
	}
	return ContentBlock{
		ID:              id,
		Colour:          colour,
		Media:           m,
		TransitionInMs:  transitionInMs,
		TransitionOutMs: transitionOutMs,
	}, nil
}

// EffectiveDurationMs is transitionInMs + media.durationMs + transitionOutMs.
// Returns InfiniteDuration if the underlying media is infinite (§3).
func (c ContentBlock) EffectiveDurationMs() int64 {
	if IsInfinite(c.Media.DurationMs) {
		return InfiniteDuration
	}
	return c.TransitionInMs + c.Media.DurationMs + c.TransitionOutMs
}

// Equal compares by id plus media identity, matching §4.1's "compare-equal
// (by id plus media identity)" contract.
func (c ContentBlock) Equal(other ContentBlock) bool {
	return c.ID == other.ID && c.Media.Equal(other.Media)
}

// Clone performs a deep copy of mutable metadata while preserving the id,
// matching §4.1's "clone (deep copy of mutable metadata with preserved id)".
func (c ContentBlock) Clone() ContentBlock {
	out := c
	out.Media = c.Media.Clone()
	return out
}
