// Package encoder hands finished frame sequences to an external encoder.
// The core never interprets encoding internals; failures surface as a
// single wrapped error.
package encoder

import (
	"context"
	"errors"
)

var (
	ErrNoFrames          = errors.New("no frames to encode")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrInvalidJob        = errors.New("invalid encode job")
)

// Job describes one encode: a directory of ordered, zero-padded frames
// plus the output parameters.
type Job struct {
	FramesDir  string
	Pattern    string // e.g. "frame_%06d.png"
	Width      int
	Height     int
	FPS        float64
	Bitrate    string
	Format     string // mp4 | webm | gif
	AudioPath  string // optional audio track to mux
	OutputPath string
}

// Encoder turns a frame sequence into an encoded container file.
type Encoder interface {
	Encode(ctx context.Context, job Job) error
}
