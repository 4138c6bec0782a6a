package media

import (
	"context"
	"image"
	"log/slog"

	"github.com/baileyeubanks/coedit/internal/timeline"
)

// DefaultDriftTolerance is how far a source's position may drift from the
// timeline's expectation before a resync is forced, in seconds.
const DefaultDriftTolerance = 0.12

// Pool owns the open sources of a composition, keyed by source reference.
type Pool struct {
	sources map[string]Source
}

// NewPool creates an empty source pool.
func NewPool() *Pool {
	return &Pool{sources: make(map[string]Source)}
}

// Acquire returns the open source for a reference, opening it on first
// use.
func (p *Pool) Acquire(ctx context.Context, ref string) (Source, error) {
	if src, ok := p.sources[ref]; ok {
		return src, nil
	}
	src, err := Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	p.sources[ref] = src
	return src, nil
}

// Get returns an already-open source, or nil.
func (p *Pool) Get(ref string) Source {
	return p.sources[ref]
}

// Close releases every open source. Errors are logged, not returned; a
// close failure cannot be acted on.
func (p *Pool) Close() {
	for ref, src := range p.sources {
		if err := src.Close(); err != nil {
			slog.Warn("failed to close media source", "source", ref, "error", err)
		}
		delete(p.sources, ref)
	}
}

// Frames snapshots the current frame of every open source, in the shape
// the compositor consumes.
func (p *Pool) Frames() map[string]image.Image {
	frames := make(map[string]image.Image, len(p.sources))
	for ref, src := range p.sources {
		frames[ref] = src.Frame()
	}
	return frames
}

// Sync seeks every active seekable element's source to its exact expected
// source time when it has drifted beyond tolerance. Seek errors degrade to
// a log line; the element will draw its placeholder.
func (p *Pool) Sync(ctx context.Context, elements []timeline.Element, t, tolerance float64) {
	if tolerance <= 0 {
		tolerance = DefaultDriftTolerance
	}

	for _, el := range elements {
		if !el.Seekable() || !el.ActiveAt(t) || el.Source == "" {
			continue
		}
		src, err := p.Acquire(ctx, el.Source)
		if err != nil {
			slog.Warn("failed to open media source", "source", el.Source, "error", err)
			continue
		}

		expected := el.SourceTimeAt(t)
		if abs(src.Position()-expected) <= tolerance && src.Frame() != nil {
			continue
		}
		if err := src.Seek(ctx, expected); err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("media source seek failed", "source", el.Source, "time", expected, "error", err)
		}
	}
}
