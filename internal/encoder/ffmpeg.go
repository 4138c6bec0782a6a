package encoder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// ffmpegError wraps an ffmpeg command failure with the truncated command
// line and its combined output.
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

type ffmpeg struct{}

// NewFFmpegEncoder creates the ffmpeg-backed encoder.
func NewFFmpegEncoder() Encoder {
	return &ffmpeg{}
}

func (f *ffmpeg) validateJob(job Job) error {
	if job.FramesDir == "" || job.Pattern == "" || job.OutputPath == "" {
		return fmt.Errorf("%w: frames dir, pattern and output path are required", ErrInvalidJob)
	}
	if job.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive", ErrInvalidJob)
	}

	entries, err := os.ReadDir(job.FramesDir)
	if err != nil {
		return fmt.Errorf("failed to read frames directory: %w", err)
	}
	hasFrames := false
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".png" {
			hasFrames = true
			break
		}
	}
	if !hasFrames {
		return fmt.Errorf("%w: %s", ErrNoFrames, job.FramesDir)
	}
	return nil
}

// Encode runs ffmpeg over the frame sequence. The format selects codec
// arguments; cancellation is reported as ctx.Err(), never wrapped as an
// encoding failure.
func (f *ffmpeg) Encode(ctx context.Context, job Job) error {
	if err := f.validateJob(job); err != nil {
		return err
	}

	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%.3f", job.FPS),
		"-i", filepath.Join(job.FramesDir, job.Pattern),
	}
	if job.AudioPath != "" {
		args = append(args, "-i", job.AudioPath, "-map", "0:v", "-map", "1:a", "-shortest")
	}

	switch job.Format {
	case "mp4":
		args = append(args,
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-movflags", "+faststart",
		)
		if job.Bitrate != "" {
			args = append(args, "-b:v", job.Bitrate)
		}
		if job.AudioPath != "" {
			args = append(args, "-c:a", "aac")
		}
	case "webm":
		args = append(args, "-c:v", "libvpx-vp9")
		if job.Bitrate != "" {
			args = append(args, "-b:v", job.Bitrate)
		}
		if job.AudioPath != "" {
			args = append(args, "-c:a", "libopus")
		}
	case "gif":
		args = append(args, "-f", "gif")
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, job.Format)
	}

	args = append(args, job.OutputPath)

	slog.Debug("encoding frame sequence",
		"framesDir", job.FramesDir,
		"format", job.Format,
		"fps", job.FPS,
		"output", job.OutputPath,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newFFmpegError(cmd, output, err)
	}

	return nil
}
