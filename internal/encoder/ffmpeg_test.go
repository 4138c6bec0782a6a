package encoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameDir(t *testing.T, frames int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < frames; i++ {
		path := filepath.Join(dir, fmt.Sprintf("frame_%06d.png", i))
		require.NoError(t, os.WriteFile(path, []byte("not a real png"), 0644))
	}
	return dir
}

func TestValidateJobMissingFields(t *testing.T) {
	enc := &ffmpeg{}

	testCases := []struct {
		name string
		job  Job
		want error
	}{
		{"empty job", Job{}, ErrInvalidJob},
		{"zero fps", Job{FramesDir: "x", Pattern: "p", OutputPath: "o"}, ErrInvalidJob},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, enc.validateJob(tc.job), tc.want)
		})
	}
}

func TestValidateJobEmptyFramesDir(t *testing.T) {
	enc := &ffmpeg{}
	job := Job{
		FramesDir:  t.TempDir(),
		Pattern:    "frame_%06d.png",
		OutputPath: "out.mp4",
		FPS:        30,
	}

	assert.ErrorIs(t, enc.validateJob(job), ErrNoFrames)
}

func TestValidateJobWithFrames(t *testing.T) {
	enc := &ffmpeg{}
	job := Job{
		FramesDir:  frameDir(t, 2),
		Pattern:    "frame_%06d.png",
		OutputPath: "out.mp4",
		FPS:        30,
	}

	assert.NoError(t, enc.validateJob(job))
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	enc := NewFFmpegEncoder()
	job := Job{
		FramesDir:  frameDir(t, 1),
		Pattern:    "frame_%06d.png",
		OutputPath: "out.xyz",
		FPS:        30,
		Format:     "xyz",
	}

	assert.ErrorIs(t, enc.Encode(context.Background(), job), ErrUnsupportedFormat)
}

func TestEncodeCancelledContext(t *testing.T) {
	enc := NewFFmpegEncoder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := Job{
		FramesDir:  frameDir(t, 1),
		Pattern:    "frame_%06d.png",
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
		FPS:        30,
		Format:     "mp4",
	}

	err := enc.Encode(ctx, job)
	assert.ErrorIs(t, err, context.Canceled)
}
