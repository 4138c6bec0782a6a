// Package export drives the compositor once per output frame and hands
// the finished frame sequence to the external encoder. The frame loop is
// deliberately sequential: every frame fully seeks and renders before the
// next begins, so no two frames ever race on a shared media-source
// handle.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/baileyeubanks/coedit/internal/compositor"
	"github.com/baileyeubanks/coedit/internal/encoder"
	"github.com/baileyeubanks/coedit/internal/media"
	"github.com/baileyeubanks/coedit/internal/progress"
	"github.com/baileyeubanks/coedit/internal/storage"
	"github.com/baileyeubanks/coedit/internal/timeline"
)

var (
	ErrInvalidRequest = errors.New("invalid export request")
)

// framePattern names the zero-padded frame files in the staging dir.
const framePattern = "frame_%06d.png"

// Request describes one export run.
type Request struct {
	Elements   []timeline.Element
	Duration   float64
	Width      int
	Height     int
	FPS        float64
	Bitrate    string
	Format     string
	Background string
	AudioPath  string
	OutputPath string

	// PublishName, when set, uploads the finished file through the
	// orchestrator's storage backend under this name.
	PublishName string
}

// TotalFrames reports how many output frames the request produces.
func (r Request) TotalFrames() int {
	return int(math.Ceil(r.Duration * r.FPS))
}

// Orchestrator owns the export pipeline: staging, the frame loop, the
// encoder hand-off and cleanup.
type Orchestrator struct {
	encoder     encoder.Encoder
	store       storage.Storage
	stagingBase string
}

// NewOrchestrator creates an orchestrator. store may be nil when no
// publishing is wanted; stagingBase defaults to the system temp dir.
func NewOrchestrator(enc encoder.Encoder, store storage.Storage, stagingBase string) *Orchestrator {
	return &Orchestrator{
		encoder:     enc,
		store:       store,
		stagingBase: stagingBase,
	}
}

func (o *Orchestrator) validate(req Request) error {
	if req.Width <= 0 || req.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidRequest, req.Width, req.Height)
	}
	if req.FPS <= 0 {
		return fmt.Errorf("%w: fps %.3f", ErrInvalidRequest, req.FPS)
	}
	if req.Duration <= 0 {
		return fmt.Errorf("%w: duration %.3f", ErrInvalidRequest, req.Duration)
	}
	if req.OutputPath == "" {
		return fmt.Errorf("%w: output path is required", ErrInvalidRequest)
	}
	return nil
}

// Export renders and encodes the composition. The staging directory is
// removed whether the run completes, fails or is cancelled, and a
// cancelled run never leaves a partial output file. Progress flows
// through the tracker; pass nil when nobody is listening.
func (o *Orchestrator) Export(ctx context.Context, req Request, tracker *progress.Tracker) error {
	if err := o.validate(req); err != nil {
		return err
	}
	if tracker == nil {
		tracker = progress.NewTracker()
	}

	tracker.Update(progress.StageInitializing, 0, "preparing export")

	stagingDir, err := os.MkdirTemp(o.stagingBase, "coedit-export-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	// cleanup is unconditional: success, failure or cancel
	defer func() {
		if err := os.RemoveAll(stagingDir); err != nil {
			slog.Warn("failed to remove staging directory", "dir", stagingDir, "error", err)
		}
	}()

	pool := media.NewPool()
	defer pool.Close()

	totalFrames := req.TotalFrames()
	slog.Info("export started",
		"frames", totalFrames,
		"fps", req.FPS,
		"size", fmt.Sprintf("%dx%d", req.Width, req.Height),
		"format", req.Format,
	)

	for frame := 0; frame < totalFrames; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		t := float64(frame) / req.FPS

		// seek every active seekable source to its exact time and
		// wait before drawing; a frame is never captured mid-seek
		if err := o.seekSources(ctx, pool, req.Elements, t); err != nil {
			return err
		}

		canvas, err := compositor.Render(compositor.Input{
			Elements:   req.Elements,
			Time:       t,
			Width:      req.Width,
			Height:     req.Height,
			Background: req.Background,
			Sources:    pool.Frames(),
		})
		if err != nil {
			return fmt.Errorf("failed to render frame %d: %w", frame, err)
		}

		if err := writeFrame(stagingDir, frame, canvas); err != nil {
			return err
		}

		tracker.UpdateFrame(frame+1, totalFrames, t)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	tracker.Update(progress.StageEncoding, 0, "encoding output")

	// encode into the staging dir first so a failed or cancelled encode
	// never leaves a partial file at the output path
	stagedOutput := filepath.Join(stagingDir, "output"+filepath.Ext(req.OutputPath))
	err = o.encoder.Encode(ctx, encoder.Job{
		FramesDir:  stagingDir,
		Pattern:    framePattern,
		Width:      req.Width,
		Height:     req.Height,
		FPS:        req.FPS,
		Bitrate:    req.Bitrate,
		Format:     req.Format,
		AudioPath:  req.AudioPath,
		OutputPath: stagedOutput,
	})
	if err != nil {
		return fmt.Errorf("encoding failed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Rename(stagedOutput, req.OutputPath); err != nil {
		if err = copyFile(stagedOutput, req.OutputPath); err != nil {
			return fmt.Errorf("failed to move output: %w", err)
		}
	}

	if o.store != nil && req.PublishName != "" {
		tracker.Update(progress.StagePublishing, 100, "publishing output")
		if err := o.publish(ctx, req.OutputPath, req.PublishName); err != nil {
			return err
		}
	}

	tracker.Update(progress.StageComplete, 100, "export complete")
	slog.Info("export complete", "output", req.OutputPath, "frames", totalFrames)
	return nil
}

// seekSources positions every active seekable element's source at its
// exact source time for composition time t.
func (o *Orchestrator) seekSources(ctx context.Context, pool *media.Pool, elements []timeline.Element, t float64) error {
	for _, el := range elements {
		if !el.Seekable() || !el.ActiveAt(t) || el.Source == "" {
			continue
		}
		src, err := pool.Acquire(ctx, el.Source)
		if err != nil {
			// missing asset degrades to the placeholder draw
			slog.Warn("source unavailable, will draw placeholder", "source", el.Source, "error", err)
			continue
		}
		if err := src.Seek(ctx, el.SourceTimeAt(t)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("source seek failed, will draw placeholder", "source", el.Source, "error", err)
		}
	}
	return nil
}

func (o *Orchestrator) publish(ctx context.Context, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open output for publishing: %w", err)
	}
	defer f.Close()

	if _, err := o.store.Save(ctx, name, f); err != nil {
		return fmt.Errorf("failed to publish output: %w", err)
	}
	return nil
}

func writeFrame(dir string, frame int, canvas *image.RGBA) error {
	path := filepath.Join(dir, fmt.Sprintf(framePattern, frame))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, canvas); err != nil {
		return fmt.Errorf("failed to encode frame %d: %w", frame, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
