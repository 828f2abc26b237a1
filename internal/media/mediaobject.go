package media

import "fmt"

// Kind identifies the category of content a MediaObject refers to.
type Kind string

const (
	KindLocalFile      Kind = "local_file"
	KindWebStream      Kind = "web_stream"
	KindRTMP           Kind = "rtmp"
	KindGraphicsLayer  Kind = "graphics_layer"
)

// LocationStatus describes the readiness of a MediaObject's backing address.
type LocationStatus string

const (
	StatusReady     LocationStatus = "ready"
	StatusPending   LocationStatus = "pending"
	StatusOffline   LocationStatus = "offline"
	StatusUntracked LocationStatus = "untracked"
)

// InfiniteDuration marks a MediaObject whose playback has no natural end
// (live streams, persistent graphics layers). DurationMs otherwise holds a
// non-negative millisecond count.
const InfiniteDuration int64 = -1

// IsInfinite reports whether d represents an unbounded duration.
func IsInfinite(d int64) bool { return d == InfiniteDuration }

// Location is a MediaObject's backing address and its readiness status.
type Location struct {
	Path   string
	Status LocationStatus
}

// MediaObject is an immutable description of a piece of media. Two
// MediaObjects are Equal if every field matches; renderers use Equal to
// short-circuit redundant loads (§4.1).
type MediaObject struct {
	Name       string
	Kind       Kind
	Location   Location
	DurationMs int64
	// Thumbnail holds optional preview bytes or a URI; nil/"" if absent.
	ThumbnailURI   string
	ThumbnailBytes []byte
}

// New constructs a MediaObject, validating duration and kind.
func New(name string, kind Kind, loc Location, durationMs int64) (MediaObject, error) {
	if durationMs < 0 && !IsInfinite(durationMs) {
		return MediaObject{}, fmt.Errorf("media: negative duration %d", durationMs)
	}
	switch kind {
	case KindLocalFile, KindWebStream, KindRTMP, KindGraphicsLayer:
	default:
		return MediaObject{}, fmt.Errorf("media: unknown kind %q", kind)
	}
	return MediaObject{
		Name:       name,
		Kind:       kind,
		Location:   loc,
		DurationMs: durationMs,
	}, nil
}

// Equal reports whether two MediaObjects describe the same content.
func (m MediaObject) Equal(other MediaObject) bool {
	if m.Name != other.Name || m.Kind != other.Kind || m.DurationMs != other.DurationMs {
		return false
	}
	if m.Location != other.Location {
		return false
	}
	if m.ThumbnailURI != other.ThumbnailURI {
		return false
	}
	if len(m.ThumbnailBytes) != len(other.ThumbnailBytes) {
		return false
	}
	for i := range m.ThumbnailBytes {
		if m.ThumbnailBytes[i] != other.ThumbnailBytes[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy; byte slices are copied, not aliased.
func (m MediaObject) Clone() MediaObject {
	out := m
	if m.ThumbnailBytes != nil {
		out.ThumbnailBytes = make([]byte, len(m.ThumbnailBytes))
		copy(out.ThumbnailBytes, m.ThumbnailBytes)
	}
	return out
}
