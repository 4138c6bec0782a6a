// Package editor implements the timeline editing engine: tool state,
// snapping, the drag-to-edit family (move, trim, slip, ripple, roll,
// slide), blade splitting and region-to-clip materialization. The engine
// converts pointer deltas to time-space once, up front, and computes every
// drag from the reference values captured at gesture start, never
// cumulatively, so zoom level and event cadence cannot introduce drift.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/baileyeubanks/coedit/internal/store"
	"github.com/baileyeubanks/coedit/internal/timeline"
)

var (
	ErrNoDrag          = errors.New("no drag in progress")
	ErrDragInProgress  = errors.New("drag already in progress")
	ErrLockedElement   = errors.New("element is locked")
	ErrSplitOutOfRange = errors.New("split point outside element")
	ErrSplitTooSmall   = errors.New("split would violate minimum duration")
	ErrNotAdjacent     = errors.New("elements are not adjacent")
	ErrNoRegions       = errors.New("no regions to materialize")
	ErrInvalidRegion   = errors.New("invalid region bounds")
)

// Tool names an editing tool state.
type Tool string

const (
	ToolSelect Tool = "select"
	ToolBlade  Tool = "blade"
	ToolRipple Tool = "ripple"
	ToolRoll   Tool = "roll"
	ToolSlide  Tool = "slide"
	ToolSlip   Tool = "slip"
)

// DragMode names an edit gesture applied during a drag.
type DragMode string

const (
	DragMove      DragMode = "move"
	DragTrimLeft  DragMode = "trim-left"
	DragTrimRight DragMode = "trim-right"
	DragSlip      DragMode = "slip"
	DragRipple    DragMode = "ripple"
	DragRoll      DragMode = "roll"
	DragSlide     DragMode = "slide"
)

// adjacencyEpsilon is the slack allowed when deciding that two clips share
// an edit point.
const adjacencyEpsilon = 1e-6

// refValues is the timing snapshot of one element at gesture start.
type refValues struct {
	start    float64
	duration float64
	trimIn   float64
}

// dragContext is the in-progress drag captured by BeginDrag.
type dragContext struct {
	elementID string
	mode      DragMode
	ref       refValues
	// neighbor snapshots, keyed by element id, captured for the
	// ripple/roll/slide modes
	neighbors map[string]refValues
	rollRight string
	slidePrev string
	slideNext string
}

// Options configures the engine's pixel-to-time mapping and snapping.
type Options struct {
	PixelsPerSecond float64
	SnapThresholdPx float64
	SnapEnabled     bool
}

// Engine is the timeline editing engine. It owns no element state itself;
// every mutation flows through the store.
type Engine struct {
	store *store.Store
	opts  Options

	tool Tool
	drag *dragContext
}

// New creates an editing engine bound to a store.
func New(s *store.Store, opts Options) *Engine {
	if opts.PixelsPerSecond <= 0 {
		opts.PixelsPerSecond = 60
	}
	if opts.SnapThresholdPx <= 0 {
		opts.SnapThresholdPx = 8
	}
	return &Engine{
		store: s,
		opts:  opts,
		tool:  ToolSelect,
	}
}

// Tool returns the active tool.
func (e *Engine) Tool() Tool {
	return e.tool
}

// SetTool switches the active tool. Switching cancels any drag in
// progress.
func (e *Engine) SetTool(tool Tool) {
	if e.drag != nil {
		e.CancelDrag()
	}
	e.tool = tool
}

// SetZoom updates the pixels-per-second scale factor.
func (e *Engine) SetZoom(pixelsPerSecond float64) {
	if pixelsPerSecond > 0 {
		e.opts.PixelsPerSecond = pixelsPerSecond
	}
}

// SetSnapEnabled toggles snapping.
func (e *Engine) SetSnapEnabled(enabled bool) {
	e.opts.SnapEnabled = enabled
}

// PixelsToTime converts a pointer delta in pixels to seconds at the
// current zoom.
func (e *Engine) PixelsToTime(px float64) float64 {
	return px / e.opts.PixelsPerSecond
}

// BeginDrag captures the reference snapshot for a drag gesture on the
// given element. The mode is taken from the explicit argument so that the
// select tool can still move and trim; the ripple/roll/slide tools force
// their own mode.
func (e *Engine) BeginDrag(elementID string, mode DragMode) error {
	if e.drag != nil {
		return ErrDragInProgress
	}

	el, err := e.store.Element(elementID)
	if err != nil {
		return err
	}
	if el.Locked {
		return fmt.Errorf("%w: %s", ErrLockedElement, elementID)
	}

	switch e.tool {
	case ToolRipple:
		mode = DragRipple
	case ToolRoll:
		mode = DragRoll
	case ToolSlide:
		mode = DragSlide
	case ToolSlip:
		mode = DragSlip
	case ToolSelect, ToolBlade:
		// mode as requested
	}

	ctx := &dragContext{
		elementID: elementID,
		mode:      mode,
		ref: refValues{
			start:    el.StartTime,
			duration: el.Duration,
			trimIn:   el.TrimIn,
		},
		neighbors: map[string]refValues{},
	}

	switch mode {
	case DragRipple:
		for _, other := range e.store.Elements() {
			if other.ID == elementID || other.TrackID != el.TrackID {
				continue
			}
			if other.StartTime >= el.EndTime()-adjacencyEpsilon {
				ctx.neighbors[other.ID] = refValues{
					start:    other.StartTime,
					duration: other.Duration,
					trimIn:   other.TrimIn,
				}
			}
		}
	case DragRoll:
		right, err := e.rightNeighbor(el)
		if err != nil {
			return err
		}
		ctx.rollRight = right.ID
		ctx.neighbors[right.ID] = refValues{
			start:    right.StartTime,
			duration: right.Duration,
			trimIn:   right.TrimIn,
		}
	case DragSlide:
		if prev, ok := e.leftAdjacent(el); ok {
			ctx.slidePrev = prev.ID
			ctx.neighbors[prev.ID] = refValues{
				start:    prev.StartTime,
				duration: prev.Duration,
				trimIn:   prev.TrimIn,
			}
		}
		if next, ok := e.rightAdjacent(el); ok {
			ctx.slideNext = next.ID
			ctx.neighbors[next.ID] = refValues{
				start:    next.StartTime,
				duration: next.Duration,
				trimIn:   next.TrimIn,
			}
		}
	case DragMove, DragTrimLeft, DragTrimRight, DragSlip:
	}

	e.drag = ctx
	e.store.BeginGesture()
	slog.Debug("drag started", "element", elementID, "mode", mode)
	return nil
}

// UpdateDrag recomputes the dragged element (and, for the ripple, roll and
// slide modes, its neighbors) from the reference snapshot plus the total
// pointer delta in seconds.
func (e *Engine) UpdateDrag(deltaSeconds float64) error {
	if e.drag == nil {
		return ErrNoDrag
	}

	switch e.drag.mode {
	case DragMove:
		return e.updateMove(deltaSeconds)
	case DragTrimLeft:
		return e.updateTrimLeft(deltaSeconds)
	case DragTrimRight:
		return e.updateTrimRight(deltaSeconds, false)
	case DragSlip:
		return e.updateSlip(deltaSeconds)
	case DragRipple:
		return e.updateRipple(deltaSeconds)
	case DragRoll:
		return e.updateRoll(deltaSeconds)
	case DragSlide:
		return e.updateSlide(deltaSeconds)
	}
	return fmt.Errorf("unknown drag mode: %s", e.drag.mode)
}

// EndDrag commits the gesture as a single history entry.
func (e *Engine) EndDrag() error {
	if e.drag == nil {
		return ErrNoDrag
	}
	slog.Debug("drag ended", "element", e.drag.elementID, "mode", e.drag.mode)
	e.drag = nil
	e.store.EndGesture()
	return nil
}

// CancelDrag abandons the gesture and restores the pre-drag state.
func (e *Engine) CancelDrag() {
	if e.drag == nil {
		return
	}
	e.drag = nil
	e.store.CancelGesture()
}

func (e *Engine) updateMove(dt float64) error {
	d := e.drag
	newStart := math.Max(0, d.ref.start+dt)

	snapped := e.SnapTime(newStart, d.elementID)
	if snapped != newStart {
		newStart = snapped
	} else {
		// the end edge may be the one near a snap target
		end := newStart + d.ref.duration
		if snappedEnd := e.SnapTime(end, d.elementID); snappedEnd != end {
			newStart = snappedEnd - d.ref.duration
		}
	}
	newStart = math.Max(0, newStart)

	return e.store.Preview(d.elementID, timeline.Patch{StartTime: timeline.Float(newStart)})
}

func (e *Engine) updateTrimLeft(dt float64) error {
	d := e.drag
	maxStart := d.ref.start + d.ref.duration - timeline.MinDuration

	newStart := timeline.Clamp(d.ref.start+dt, 0, maxStart)
	newStart = e.SnapTime(newStart, d.elementID)
	newStart = timeline.Clamp(newStart, 0, maxStart)

	moved := newStart - d.ref.start
	patch := timeline.Patch{
		StartTime: timeline.Float(newStart),
		Duration:  timeline.Float(d.ref.duration - moved),
	}

	el, err := e.store.Element(d.elementID)
	if err != nil {
		return err
	}
	if el.IsMedia() {
		patch.TrimIn = timeline.Float(math.Max(0, d.ref.trimIn+moved))
	}
	return e.store.Preview(d.elementID, patch)
}

func (e *Engine) updateTrimRight(dt float64, ripple bool) error {
	d := e.drag
	newDuration := math.Max(timeline.MinDuration, d.ref.duration+dt)

	// snap the end edge, not the delta
	end := d.ref.start + newDuration
	end = e.SnapTime(end, d.elementID)
	newDuration = math.Max(timeline.MinDuration, end-d.ref.start)

	if err := e.store.Preview(d.elementID, timeline.Patch{Duration: timeline.Float(newDuration)}); err != nil {
		return err
	}
	if ripple {
		return e.shiftNeighbors(newDuration - d.ref.duration)
	}
	return nil
}

func (e *Engine) updateSlip(dt float64) error {
	d := e.drag
	el, err := e.store.Element(d.elementID)
	if err != nil {
		return err
	}
	if !el.IsMedia() {
		return nil
	}

	newTrimIn := math.Max(0, d.ref.trimIn+dt)
	if el.TrimOut > 0 && newTrimIn > el.TrimOut {
		newTrimIn = el.TrimOut
	}
	return e.store.Preview(d.elementID, timeline.Patch{TrimIn: timeline.Float(newTrimIn)})
}

// updateRipple trims the right edge and shifts every later clip on the
// same track by the applied delta, closing or opening the gap.
func (e *Engine) updateRipple(dt float64) error {
	return e.updateTrimRight(dt, true)
}

func (e *Engine) shiftNeighbors(applied float64) error {
	for id, ref := range e.drag.neighbors {
		shifted := math.Max(0, ref.start+applied)
		if err := e.store.Preview(id, timeline.Patch{StartTime: timeline.Float(shifted)}); err != nil {
			return err
		}
	}
	return nil
}

// updateRoll moves the shared edit point between the dragged clip and its
// right neighbor. The combined span of the pair never changes.
func (e *Engine) updateRoll(dt float64) error {
	d := e.drag
	rightRef, ok := d.neighbors[d.rollRight]
	if !ok {
		return ErrNotAdjacent
	}

	// clamp so both clips keep their minimum duration
	minDelta := timeline.MinDuration - d.ref.duration
	maxDelta := rightRef.duration - timeline.MinDuration
	delta := timeline.Clamp(dt, minDelta, maxDelta)

	edit := d.ref.start + d.ref.duration + delta
	if snapped := e.SnapTime(edit, d.elementID); snapped != edit {
		delta = timeline.Clamp(snapped-d.ref.start-d.ref.duration, minDelta, maxDelta)
	}

	if err := e.store.Preview(d.elementID, timeline.Patch{
		Duration: timeline.Float(d.ref.duration + delta),
	}); err != nil {
		return err
	}

	right, err := e.store.Element(d.rollRight)
	if err != nil {
		return err
	}
	patch := timeline.Patch{
		StartTime: timeline.Float(rightRef.start + delta),
		Duration:  timeline.Float(rightRef.duration - delta),
	}
	if right.IsMedia() {
		patch.TrimIn = timeline.Float(math.Max(0, rightRef.trimIn+delta))
	}
	return e.store.Preview(d.rollRight, patch)
}

// updateSlide shifts the dragged clip while its adjacent neighbors absorb
// the delta: the previous clip's out-point and the next clip's in-point
// move with it, so the three clips still tile the same span.
func (e *Engine) updateSlide(dt float64) error {
	d := e.drag

	minDelta := -d.ref.start
	maxDelta := math.Inf(1)
	if ref, ok := d.neighbors[d.slidePrev]; ok && d.slidePrev != "" {
		minDelta = math.Max(minDelta, timeline.MinDuration-ref.duration)
	}
	if ref, ok := d.neighbors[d.slideNext]; ok && d.slideNext != "" {
		maxDelta = ref.duration - timeline.MinDuration
	}
	delta := timeline.Clamp(dt, minDelta, maxDelta)

	if err := e.store.Preview(d.elementID, timeline.Patch{
		StartTime: timeline.Float(d.ref.start + delta),
	}); err != nil {
		return err
	}

	if d.slidePrev != "" {
		ref := d.neighbors[d.slidePrev]
		if err := e.store.Preview(d.slidePrev, timeline.Patch{
			Duration: timeline.Float(ref.duration + delta),
		}); err != nil {
			return err
		}
	}
	if d.slideNext != "" {
		ref := d.neighbors[d.slideNext]
		next, err := e.store.Element(d.slideNext)
		if err != nil {
			return err
		}
		patch := timeline.Patch{
			StartTime: timeline.Float(ref.start + delta),
			Duration:  timeline.Float(ref.duration - delta),
		}
		if next.IsMedia() {
			patch.TrimIn = timeline.Float(math.Max(0, ref.trimIn+delta))
		}
		if err := e.store.Preview(d.slideNext, patch); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) rightNeighbor(el timeline.Element) (timeline.Element, error) {
	if next, ok := e.rightAdjacent(el); ok {
		return next, nil
	}
	return timeline.Element{}, fmt.Errorf("%w: no clip starts at %s end", ErrNotAdjacent, el.ID)
}

func (e *Engine) rightAdjacent(el timeline.Element) (timeline.Element, bool) {
	for _, other := range e.store.Elements() {
		if other.ID == el.ID || other.TrackID != el.TrackID {
			continue
		}
		if math.Abs(other.StartTime-el.EndTime()) <= adjacencyEpsilon {
			return other, true
		}
	}
	return timeline.Element{}, false
}

func (e *Engine) leftAdjacent(el timeline.Element) (timeline.Element, bool) {
	for _, other := range e.store.Elements() {
		if other.ID == el.ID || other.TrackID != el.TrackID {
			continue
		}
		if math.Abs(el.StartTime-other.EndTime()) <= adjacencyEpsilon {
			return other, true
		}
	}
	return timeline.Element{}, false
}
