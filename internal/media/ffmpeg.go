package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os/exec"
	"sync"
)

// ffmpegError wraps an ffmpeg/ffprobe command failure with the truncated
// command line and its combined output.
type ffmpegError struct {
	cmd     string
	output  string
	wrapped error
}

func (e *ffmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %s\nCommand: %s\nOutput: %s", e.wrapped, e.cmd, e.output)
}

func (e *ffmpegError) Unwrap() error {
	return e.wrapped
}

func newFFmpegError(cmd *exec.Cmd, output []byte, err error) error {
	cmdStr := cmd.String()
	if len(cmdStr) > 200 {
		cmdStr = cmdStr[:200] + "..."
	}
	return &ffmpegError{
		cmd:     cmdStr,
		output:  string(output),
		wrapped: err,
	}
}

// seekEpsilon is the position slack below which a seek is a no-op.
const seekEpsilon = 0.001

// videoSource extracts exact frames from a video file by shelling out to
// ffmpeg. Decoding is synchronous: Seek returns only when the frame at
// the requested time is in memory.
type videoSource struct {
	mu       sync.Mutex
	path     string
	duration float64
	position float64
	frame    image.Image
	closed   bool
}

func newVideoSource(ctx context.Context, path string) (*videoSource, error) {
	info, err := Probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", path, err)
	}
	return &videoSource{
		path:     path,
		duration: info.Duration,
		position: -1,
	}, nil
}

func (v *videoSource) Seek(ctx context.Context, t float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if t < 0 {
		t = 0
	}
	if v.frame != nil && abs(v.position-t) < seekEpsilon {
		return nil
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-ss", fmt.Sprintf("%.6f", t),
		"-i", v.path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newFFmpegError(cmd, stderr.Bytes(), err)
	}

	frame, err := png.Decode(&stdout)
	if err != nil {
		// past end of stream ffmpeg emits no frame at all
		slog.Debug("no frame decoded", "path", v.path, "time", t, "error", err)
		v.frame = nil
		v.position = t
		return fmt.Errorf("%w: %s at %.3fs", ErrNoFrame, v.path, t)
	}

	v.frame = frame
	v.position = t
	return nil
}

func (v *videoSource) Position() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.position
}

func (v *videoSource) Frame() image.Image {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frame
}

func (v *videoSource) NaturalDuration() float64 {
	return v.duration
}

func (v *videoSource) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.frame = nil
	return nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
