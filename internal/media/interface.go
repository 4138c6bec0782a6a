// Package media provides the media-source collaborators of the
// compositor: probing files with ffprobe, decoding still images, and
// extracting exact video frames with ffmpeg. Sources expose a
// seek-until-ready contract so callers never capture a frame mid-seek.
package media

import (
	"context"
	"errors"
	"image"
)

var (
	ErrUnsupportedSource = errors.New("unsupported source type")
	ErrNoFrame           = errors.New("no frame decoded")
)

// Source is a seekable media asset. Seek suspends until the source is
// positioned at the requested time; Frame returns the most recently
// decoded frame, or nil when none is available.
type Source interface {
	// Seek positions the source at time t, in source seconds, and
	// returns once the frame at t is decoded.
	Seek(ctx context.Context, t float64) error

	// Position reports the source time of the current frame.
	Position() float64

	// Frame returns the current decoded frame, nil if none.
	Frame() image.Image

	// NaturalDuration reports the source's own duration in seconds;
	// still images report 0.
	NaturalDuration() float64

	Close() error
}
