package playback

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/baileyeubanks/coedit/internal/compositor"
	"github.com/baileyeubanks/coedit/internal/media"
	"github.com/baileyeubanks/coedit/internal/store"
)

// FrameSink receives finished preview frames.
type FrameSink func(frame *image.RGBA, position float64)

// Options configure a preview driver.
type Options struct {
	Width          int
	Height         int
	Background     string
	TickInterval   time.Duration
	DriftTolerance float64
}

// Driver renders preview frames. It subscribes to the store so edits
// show up in the very next frame, keeps media sources in sync with the
// clock, and pushes every frame through the same compositor the export
// pipeline uses.
type Driver struct {
	store *store.Store
	pool  *media.Pool
	opts  Options
	sink  FrameSink
	clock *Clock

	mu        sync.Mutex
	rendering bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewDriver wires a driver to a store. The sink is called on the
// clock's tick goroutine; it must not block.
func NewDriver(st *store.Store, opts Options, sink FrameSink) *Driver {
	if opts.DriftTolerance <= 0 {
		opts.DriftTolerance = media.DefaultDriftTolerance
	}

	d := &Driver{
		store: st,
		pool:  media.NewPool(),
		opts:  opts,
		sink:  sink,
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())

	d.clock = NewClock(st.Duration(), opts.TickInterval,
		func(pos float64) { d.renderAt(pos) },
		func() { slog.Debug("playback reached end") },
	)

	// edits during a paused preview re-render the current frame
	st.AddListener(func() {
		d.clock.SetEnd(st.Duration())
		if !d.clock.Playing() {
			d.renderAt(d.clock.Position())
		}
	})

	return d
}

// Play starts real-time playback from the current position.
func (d *Driver) Play() {
	d.clock.Play(d.ctx)
}

// Pause halts playback, keeping the position.
func (d *Driver) Pause() {
	d.clock.Pause()
}

// Seek jumps to a composition time and renders that frame immediately.
func (d *Driver) Seek(t float64) {
	d.clock.Seek(t)
}

// SetRate changes the playback rate.
func (d *Driver) SetRate(rate float64) {
	d.clock.SetRate(rate)
}

// Position returns the current playback position.
func (d *Driver) Position() float64 {
	return d.clock.Position()
}

// Playing reports whether playback is running.
func (d *Driver) Playing() bool {
	return d.clock.Playing()
}

// Step advances playback by an explicit delta and renders the frame.
func (d *Driver) Step(delta float64) {
	d.clock.Step(delta)
}

// renderAt produces one preview frame. Media sources are only re-seeked
// when they have drifted past the tolerance, so steady playback does
// not thrash the decoders. Moving the playhead notifies store listeners,
// so the guard keeps that notification from re-entering the render.
func (d *Driver) renderAt(pos float64) {
	d.mu.Lock()
	if d.rendering {
		d.mu.Unlock()
		return
	}
	d.rendering = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.rendering = false
		d.mu.Unlock()
	}()

	elements := d.store.Elements()
	d.store.SetPlayhead(pos)

	d.pool.Sync(d.ctx, elements, pos, d.opts.DriftTolerance)

	frame, err := compositor.Render(compositor.Input{
		Elements:   elements,
		Time:       pos,
		Width:      d.opts.Width,
		Height:     d.opts.Height,
		Background: d.opts.Background,
		Sources:    d.pool.Frames(),
	})
	if err != nil {
		slog.Error("preview render failed", "position", pos, "error", err)
		return
	}

	if d.sink != nil {
		d.sink(frame, pos)
	}
}

// Close stops playback and releases all media sources.
func (d *Driver) Close() {
	d.clock.Pause()
	d.cancel()
	d.pool.Close()
}
