package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baileyeubanks/coedit/internal/store"
	"github.com/baileyeubanks/coedit/internal/timeline"
)

func newEngine(t *testing.T, snap bool) (*Engine, *store.Store) {
	t.Helper()
	s := store.New(0)
	return New(s, Options{
		PixelsPerSecond: 100,
		SnapThresholdPx: 10,
		SnapEnabled:     snap,
	}), s
}

func addClip(t *testing.T, s *store.Store, start, duration, trimIn float64, track string) timeline.Element {
	t.Helper()
	e := timeline.NewMedia(timeline.TypeVideo, "clip.mp4", 60)
	e.StartTime = start
	e.Duration = duration
	e.TrimIn = trimIn
	e.TrimOut = trimIn + 60
	e.TrackID = track
	s.Add(e)
	return e
}

func TestPixelsToTime(t *testing.T) {
	eng, _ := newEngine(t, false)

	assert.Equal(t, 0.5, eng.PixelsToTime(50))

	eng.SetZoom(200)
	assert.Equal(t, 0.25, eng.PixelsToTime(50))
}

func TestMoveClampsAtZero(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 2, 4, 0, "t1")

	require.NoError(t, eng.BeginDrag(e.ID, DragMove))
	require.NoError(t, eng.UpdateDrag(-10))
	require.NoError(t, eng.EndDrag())

	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.StartTime)
	assert.Equal(t, 4.0, got.Duration)
}

func TestMoveIsComputedFromReferenceNotCumulative(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 5, 4, 0, "t1")

	require.NoError(t, eng.BeginDrag(e.ID, DragMove))
	require.NoError(t, eng.UpdateDrag(1))
	require.NoError(t, eng.UpdateDrag(2))
	require.NoError(t, eng.UpdateDrag(1.5))
	require.NoError(t, eng.EndDrag())

	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.5, got.StartTime)
}

func TestSnapToElementEdge(t *testing.T) {
	eng, s := newEngine(t, true)
	other := addClip(t, s, 0, 3, 0, "t1") // end edge at 3.0
	e := addClip(t, s, 10, 2, 0, "t1")

	// threshold = 10px / 100pps = 0.1s; land within it
	require.NoError(t, eng.BeginDrag(e.ID, DragMove))
	require.NoError(t, eng.UpdateDrag(3.05 - 10))
	require.NoError(t, eng.EndDrag())

	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, other.EndTime(), got.StartTime)
}

func TestNoSnapOutsideThreshold(t *testing.T) {
	eng, s := newEngine(t, true)
	addClip(t, s, 0, 3, 0, "t1")
	e := addClip(t, s, 10, 2, 0, "t1")

	require.NoError(t, eng.BeginDrag(e.ID, DragMove))
	require.NoError(t, eng.UpdateDrag(3.45 - 10))
	require.NoError(t, eng.EndDrag())

	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.45, got.StartTime, 1e-9)
}

func TestSnapPrefersPlayheadOverEdges(t *testing.T) {
	eng, s := newEngine(t, true)
	addClip(t, s, 0, 3, 0, "t1") // edge at 3.0
	s.SetPlayhead(3.08)
	e := addClip(t, s, 10, 2, 0, "t1")

	// 3.04 is 0.04 from both the playhead (3.08) and the edge (3.0);
	// the playhead family is scanned first and keeps the tie
	snapped := eng.SnapTime(3.04, e.ID)
	assert.Equal(t, 3.08, snapped)
}

func TestSnapEndEdgeRecomputesStart(t *testing.T) {
	eng, s := newEngine(t, true)
	addClip(t, s, 6.5, 3, 0, "t1") // start edge at 6.5
	e := addClip(t, s, 20, 2, 0, "t1")

	// dragged so the end edge lands near 6.5: start 4.47, end 6.47
	require.NoError(t, eng.BeginDrag(e.ID, DragMove))
	require.NoError(t, eng.UpdateDrag(4.47 - 20))
	require.NoError(t, eng.EndDrag())

	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, got.StartTime, 1e-9)
}

func TestSnapDisabledReturnsInput(t *testing.T) {
	eng, s := newEngine(t, false)
	addClip(t, s, 0, 3, 0, "t1")
	e := addClip(t, s, 10, 2, 0, "t1")

	assert.Equal(t, 3.02, eng.SnapTime(3.02, e.ID))
}

func TestTrimLeftShiftsTrimIn(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 4, 6, 2, "t1")

	require.NoError(t, eng.BeginDrag(e.ID, DragTrimLeft))
	require.NoError(t, eng.UpdateDrag(1.5))
	require.NoError(t, eng.EndDrag())

	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.5, got.StartTime)
	assert.Equal(t, 4.5, got.Duration)
	assert.Equal(t, 3.5, got.TrimIn)
}

func TestTrimLeftClampsToMinDuration(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 4, 6, 0, "t1")

	require.NoError(t, eng.BeginDrag(e.ID, DragTrimLeft))
	require.NoError(t, eng.UpdateDrag(100))
	require.NoError(t, eng.EndDrag())

	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.InDelta(t, timeline.MinDuration, got.Duration, 1e-9)
	assert.InDelta(t, 4+6-timeline.MinDuration, got.StartTime, 1e-9)
}

func TestTrimRightEnforcesFloor(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 4, 6, 0, "t1")

	require.NoError(t, eng.BeginDrag(e.ID, DragTrimRight))
	require.NoError(t, eng.UpdateDrag(-100))
	require.NoError(t, eng.EndDrag())

	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, timeline.MinDuration, got.Duration)
	assert.Equal(t, 4.0, got.StartTime)
}

func TestTrimInverseGesturesRestoreOriginal(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 4, 6, 2, "t1")

	require.NoError(t, eng.BeginDrag(e.ID, DragTrimLeft))
	require.NoError(t, eng.UpdateDrag(1.25))
	require.NoError(t, eng.UpdateDrag(0))
	require.NoError(t, eng.EndDrag())

	require.NoError(t, eng.BeginDrag(e.ID, DragTrimRight))
	require.NoError(t, eng.UpdateDrag(-0.75))
	require.NoError(t, eng.UpdateDrag(0))
	require.NoError(t, eng.EndDrag())

	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.StartTime)
	assert.Equal(t, 6.0, got.Duration)
	assert.Equal(t, 2.0, got.TrimIn)
}

func TestSlipOnlyChangesTrimIn(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 4, 6, 2, "t1")

	require.NoError(t, eng.BeginDrag(e.ID, DragSlip))
	require.NoError(t, eng.UpdateDrag(1.5))
	require.NoError(t, eng.EndDrag())

	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.StartTime)
	assert.Equal(t, 6.0, got.Duration)
	assert.Equal(t, 3.5, got.TrimIn)
}

func TestSlipClampsAtZero(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 4, 6, 2, "t1")

	require.NoError(t, eng.BeginDrag(e.ID, DragSlip))
	require.NoError(t, eng.UpdateDrag(-10))
	require.NoError(t, eng.EndDrag())

	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.TrimIn)
}

func TestRippleShiftsLaterClips(t *testing.T) {
	eng, s := newEngine(t, false)
	a := addClip(t, s, 0, 4, 0, "t1")
	b := addClip(t, s, 4, 3, 0, "t1")
	c := addClip(t, s, 7, 2, 0, "t1")
	other := addClip(t, s, 5, 2, 0, "t2") // different track, untouched

	eng.SetTool(ToolRipple)
	require.NoError(t, eng.BeginDrag(a.ID, DragMove))
	require.NoError(t, eng.UpdateDrag(-1))
	require.NoError(t, eng.EndDrag())

	gotA, _ := s.Element(a.ID)
	gotB, _ := s.Element(b.ID)
	gotC, _ := s.Element(c.ID)
	gotOther, _ := s.Element(other.ID)

	assert.Equal(t, 3.0, gotA.Duration)
	assert.Equal(t, 3.0, gotB.StartTime)
	assert.Equal(t, 6.0, gotC.StartTime)
	assert.Equal(t, 5.0, gotOther.StartTime)
}

func TestRollMovesSharedEditPoint(t *testing.T) {
	eng, s := newEngine(t, false)
	a := addClip(t, s, 0, 4, 0, "t1")
	b := addClip(t, s, 4, 3, 1, "t1")

	eng.SetTool(ToolRoll)
	require.NoError(t, eng.BeginDrag(a.ID, DragMove))
	require.NoError(t, eng.UpdateDrag(1))
	require.NoError(t, eng.EndDrag())

	gotA, _ := s.Element(a.ID)
	gotB, _ := s.Element(b.ID)

	assert.Equal(t, 5.0, gotA.Duration)
	assert.Equal(t, 5.0, gotB.StartTime)
	assert.Equal(t, 2.0, gotB.Duration)
	assert.Equal(t, 2.0, gotB.TrimIn)

	// total span unchanged
	assert.Equal(t, 7.0, gotB.EndTime()-gotA.StartTime)
}

func TestRollClampsToMinDurations(t *testing.T) {
	eng, s := newEngine(t, false)
	a := addClip(t, s, 0, 4, 0, "t1")
	b := addClip(t, s, 4, 3, 0, "t1")

	eng.SetTool(ToolRoll)
	require.NoError(t, eng.BeginDrag(a.ID, DragMove))
	require.NoError(t, eng.UpdateDrag(100))
	require.NoError(t, eng.EndDrag())

	gotA, _ := s.Element(a.ID)
	gotB, _ := s.Element(b.ID)
	assert.InDelta(t, timeline.MinDuration, gotB.Duration, 1e-9)
	assert.InDelta(t, 7.0, gotB.EndTime()-gotA.StartTime, 1e-9)
}

func TestRollRequiresAdjacentNeighbor(t *testing.T) {
	eng, s := newEngine(t, false)
	a := addClip(t, s, 0, 4, 0, "t1")
	addClip(t, s, 6, 3, 0, "t1") // gap, not adjacent

	eng.SetTool(ToolRoll)
	err := eng.BeginDrag(a.ID, DragMove)
	assert.ErrorIs(t, err, ErrNotAdjacent)
}

func TestSlideShiftsClipBetweenNeighbors(t *testing.T) {
	eng, s := newEngine(t, false)
	a := addClip(t, s, 0, 4, 0, "t1")
	b := addClip(t, s, 4, 3, 0, "t1")
	c := addClip(t, s, 7, 5, 2, "t1")

	eng.SetTool(ToolSlide)
	require.NoError(t, eng.BeginDrag(b.ID, DragMove))
	require.NoError(t, eng.UpdateDrag(1))
	require.NoError(t, eng.EndDrag())

	gotA, _ := s.Element(a.ID)
	gotB, _ := s.Element(b.ID)
	gotC, _ := s.Element(c.ID)

	assert.Equal(t, 5.0, gotA.Duration)
	assert.Equal(t, 5.0, gotB.StartTime)
	assert.Equal(t, 3.0, gotB.Duration)
	assert.Equal(t, 8.0, gotC.StartTime)
	assert.Equal(t, 4.0, gotC.Duration)
	assert.Equal(t, 3.0, gotC.TrimIn)

	// the three clips still tile [0, 12)
	assert.Equal(t, 12.0, gotC.EndTime())
}

func TestDragCommitsOneHistoryEntry(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 5, 4, 0, "t1")

	require.NoError(t, eng.BeginDrag(e.ID, DragMove))
	for i := 0; i < 10; i++ {
		require.NoError(t, eng.UpdateDrag(float64(i)))
	}
	require.NoError(t, eng.EndDrag())

	require.NoError(t, s.Undo())
	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.StartTime)
}

func TestSplitLockedElement(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 0, 4, 0, "t1")
	require.NoError(t, s.Update(e.ID, timeline.Patch{Locked: timeline.Bool(true)}))

	_, err := eng.Split(e.ID, 2)
	assert.ErrorIs(t, err, ErrLockedElement)
}

func TestMergeLockedElement(t *testing.T) {
	eng, s := newEngine(t, false)
	left := addClip(t, s, 0, 2, 0, "t1")
	right := addClip(t, s, 2, 3, 2, "t1")
	require.NoError(t, s.Update(right.ID, timeline.Patch{Locked: timeline.Bool(true)}))

	err := eng.Merge(left.ID, right.ID)
	assert.ErrorIs(t, err, ErrLockedElement)

	elements := s.Elements()
	assert.Len(t, elements, 2, "a rejected merge leaves both halves")
}

func TestBeginDragOnLockedElement(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 0, 4, 0, "t1")
	require.NoError(t, s.Update(e.ID, timeline.Patch{Locked: timeline.Bool(true)}))

	err := eng.BeginDrag(e.ID, DragMove)
	assert.ErrorIs(t, err, ErrLockedElement)
}

func TestCancelDragRestoresState(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 5, 4, 0, "t1")

	require.NoError(t, eng.BeginDrag(e.ID, DragMove))
	require.NoError(t, eng.UpdateDrag(3))
	eng.CancelDrag()

	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.StartTime)
}
