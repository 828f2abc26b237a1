package media

import (
	"errors"
	"fmt"
)

// OffsetType identifies how a PlaybackOffset anchors to a parent's timeline.
type OffsetType string

const (
	MsAfterStart OffsetType = "ms_after_start"
	MsBeforeEnd  OffsetType = "ms_before_end"
	Percentage   OffsetType = "percentage"
)

// ErrRangeError is returned by Evaluate for an offset that cannot be
// resolved against the given duration (§7 RangeError).
var ErrRangeError = errors.New("media: offset out of range")

// PlaybackOffset anchors a Concurrent child's start relative to its
// parent's playback timeline (§3).
type PlaybackOffset struct {
	Type  OffsetType
	Value float64
}

// AfterStart builds an MsAfterStart offset.
func AfterStart(ms int64) PlaybackOffset {
	return PlaybackOffset{Type: MsAfterStart, Value: float64(ms)}
}

// BeforeEnd builds an MsBeforeEnd offset.
func BeforeEnd(ms int64) PlaybackOffset {
	return PlaybackOffset{Type: MsBeforeEnd, Value: float64(ms)}
}

// AtPercentage builds a Percentage offset; value must lie in [0,1].
func AtPercentage(fraction float64) PlaybackOffset {
	return PlaybackOffset{Type: Percentage, Value: fraction}
}

// Evaluate produces an absolute millisecond offset against durationMs.
// Percentage against an infinite duration is invalid (§3): "Percentage
// against ∞ is invalid."
func (o PlaybackOffset) Evaluate(durationMs int64) (int64, error) {
	switch o.Type {
	case MsAfterStart:
		if o.Value < 0 {
			return 0, fmt.Errorf("%w: negative MsAfterStart %v", ErrRangeError, o.Value)
		}
		if !IsInfinite(durationMs) && int64(o.Value) > durationMs {
			return 0, fmt.Errorf("%w: MsAfterStart %v exceeds duration %d", ErrRangeError, o.Value, durationMs)
		}
		return int64(o.Value), nil
	case MsBeforeEnd:
		if IsInfinite(durationMs) {
			return 0, fmt.Errorf("%w: MsBeforeEnd against infinite duration", ErrRangeError)
		}
		if o.Value < 0 || int64(o.Value) > durationMs {
			return 0, fmt.Errorf("%w: MsBeforeEnd %v out of bounds for duration %d", ErrRangeError, o.Value, durationMs)
		}
		return durationMs - int64(o.Value), nil
	case Percentage:
		if IsInfinite(durationMs) {
			return 0, fmt.Errorf("%w: percentage offset against infinite duration", ErrRangeError)
		}
		if o.Value < 0 || o.Value > 1 {
			return 0, fmt.Errorf("%w: percentage %v outside [0,1]", ErrRangeError, o.Value)
		}
		return int64(o.Value * float64(durationMs)), nil
	default:
		return 0, fmt.Errorf("%w: unknown offset type %q", ErrRangeError, o.Type)
	}
}
