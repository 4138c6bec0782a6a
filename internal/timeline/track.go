package timeline

import "github.com/google/uuid"

// TrackType categorizes a display row.
type TrackType string

const (
	TrackVideo    TrackType = "video"
	TrackAudio    TrackType = "audio"
	TrackText     TrackType = "text"
	TrackGraphic  TrackType = "graphic"
	TrackSubtitle TrackType = "subtitle"
)

// Track is a named display row used purely for grouping elements in the
// editing UI. It carries no timing data of its own.
type Track struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Type   TrackType `json:"type"`
	Muted  bool      `json:"muted"`
	Hidden bool      `json:"hidden"`
}

// NewTrack creates a named track of the given type.
func NewTrack(name string, trackType TrackType) Track {
	return Track{
		ID:   uuid.NewString(),
		Name: name,
		Type: trackType,
	}
}
