package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baileyeubanks/coedit/internal/timeline"
)

func TestAddAndGetElements(t *testing.T) {
	s := New(0)

	e := timeline.NewText("hello")
	s.Add(e)

	elements := s.Elements()
	require.Len(t, elements, 1)
	assert.Equal(t, e.ID, elements[0].ID)

	// Mutating the returned copy must not touch the store
	elements[0].Text = "mutated"
	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)
}

func TestUpdateUnknownElement(t *testing.T) {
	s := New(0)

	err := s.Update("missing", timeline.Patch{X: timeline.Float(1)})

	assert.ErrorIs(t, err, ErrElementNotFound)
}

func TestUpdateEmptyPatchRecordsNoHistory(t *testing.T) {
	s := New(0)
	e := timeline.NewText("a")
	s.Add(e)

	require.NoError(t, s.Update(e.ID, timeline.Patch{}))

	// one entry from Add, nothing from the empty patch
	require.NoError(t, s.Undo())
	assert.ErrorIs(t, s.Undo(), ErrNothingToUndo)
}

func TestDeleteDropsSelection(t *testing.T) {
	s := New(0)
	e := timeline.NewText("a")
	s.Add(e)
	s.Select(e.ID)
	require.Contains(t, s.Selection(), e.ID)

	require.NoError(t, s.Delete(e.ID))

	assert.Empty(t, s.Elements())
	assert.Empty(t, s.Selection())
}

func TestLockedElementRejectsUpdate(t *testing.T) {
	s := New(0)
	e := timeline.NewText("a")
	s.Add(e)
	require.NoError(t, s.Update(e.ID, timeline.Patch{Locked: timeline.Bool(true)}))

	err := s.Update(e.ID, timeline.Patch{X: timeline.Float(50)})
	assert.ErrorIs(t, err, ErrElementLocked)

	err = s.Preview(e.ID, timeline.Patch{X: timeline.Float(50)})
	assert.ErrorIs(t, err, ErrElementLocked)

	got, gerr := s.Element(e.ID)
	require.NoError(t, gerr)
	assert.Equal(t, 0.0, got.X)

	// Unlocking is the one patch a locked element accepts.
	require.NoError(t, s.Update(e.ID, timeline.Patch{Locked: timeline.Bool(false)}))
	require.NoError(t, s.Update(e.ID, timeline.Patch{X: timeline.Float(50)}))
}

func TestLockedElementRejectsDelete(t *testing.T) {
	s := New(0)
	a := timeline.NewText("a")
	b := timeline.NewText("b")
	s.Add(a)
	s.Add(b)
	require.NoError(t, s.Update(b.ID, timeline.Patch{Locked: timeline.Bool(true)}))

	err := s.Delete(a.ID, b.ID)
	assert.ErrorIs(t, err, ErrElementLocked)

	// Nothing was removed, not even the unlocked target.
	assert.Len(t, s.Elements(), 2)

	require.NoError(t, s.Delete(a.ID))
	assert.Len(t, s.Elements(), 1)
}

func TestDuplicateRegeneratesIdentityAndOffsets(t *testing.T) {
	s := New(0)
	e := timeline.NewText("a")
	e.X = 10
	e.Y = 20
	s.Add(e)

	newIDs := s.Duplicate(e.ID)

	require.Len(t, newIDs, 1)
	assert.NotEqual(t, e.ID, newIDs[0])

	dup, err := s.Element(newIDs[0])
	require.NoError(t, err)
	assert.Equal(t, 10+DuplicateOffset, dup.X)
	assert.Equal(t, 20+DuplicateOffset, dup.Y)
	assert.Equal(t, "a", dup.Text)
}

func TestUndoRedo(t *testing.T) {
	s := New(0)
	e := timeline.NewText("a")
	s.Add(e)

	require.NoError(t, s.Update(e.ID, timeline.Patch{StartTime: timeline.Float(5)}))

	require.NoError(t, s.Undo())
	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.StartTime)

	require.NoError(t, s.Redo())
	got, err = s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.StartTime)
}

func TestUndoDepthIsBounded(t *testing.T) {
	s := New(3)
	e := timeline.NewText("a")
	s.Add(e)

	for i := 1; i <= 10; i++ {
		require.NoError(t, s.Update(e.ID, timeline.Patch{X: timeline.Float(float64(i))}))
	}

	undone := 0
	for s.Undo() == nil {
		undone++
	}
	assert.Equal(t, 3, undone)
}

func TestMutationAfterUndoClearsRedo(t *testing.T) {
	s := New(0)
	e := timeline.NewText("a")
	s.Add(e)
	require.NoError(t, s.Update(e.ID, timeline.Patch{X: timeline.Float(1)}))
	require.NoError(t, s.Undo())

	require.NoError(t, s.Update(e.ID, timeline.Patch{Y: timeline.Float(2)}))

	assert.ErrorIs(t, s.Redo(), ErrNothingToRedo)
}

func TestGestureCommitsSingleHistoryEntry(t *testing.T) {
	s := New(0)
	e := timeline.NewText("a")
	s.Add(e)

	s.BeginGesture()
	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Preview(e.ID, timeline.Patch{StartTime: timeline.Float(float64(i))}))
	}
	s.EndGesture()

	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.StartTime)

	// One undo steps over the whole gesture
	require.NoError(t, s.Undo())
	got, err = s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.StartTime)
}

func TestGestureWithoutChangeRecordsNothing(t *testing.T) {
	s := New(0)
	e := timeline.NewText("a")
	s.Add(e)

	s.BeginGesture()
	s.EndGesture()

	require.NoError(t, s.Undo()) // the Add
	assert.ErrorIs(t, s.Undo(), ErrNothingToUndo)
}

func TestCancelGestureRestoresState(t *testing.T) {
	s := New(0)
	e := timeline.NewText("a")
	s.Add(e)

	s.BeginGesture()
	require.NoError(t, s.Preview(e.ID, timeline.Patch{StartTime: timeline.Float(9)}))
	s.CancelGesture()

	got, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.StartTime)
}

func TestReplaceIsAtomic(t *testing.T) {
	s := New(0)
	e := timeline.NewMedia(timeline.TypeVideo, "clip.mp4", 10)
	s.Add(e)

	a := e.Clone()
	a.ID = "a"
	a.Duration = 2
	b := e.Clone()
	b.ID = "b"
	b.StartTime = 2
	b.Duration = 3

	require.NoError(t, s.Replace(e.ID, []timeline.Element{a, b}))

	elements := s.Elements()
	require.Len(t, elements, 2)
	assert.Equal(t, "a", elements[0].ID)
	assert.Equal(t, "b", elements[1].ID)

	// One undo restores the original single element
	require.NoError(t, s.Undo())
	elements = s.Elements()
	require.Len(t, elements, 1)
	assert.Equal(t, e.ID, elements[0].ID)
}

func TestSetElementsResetsHistory(t *testing.T) {
	s := New(0)
	s.Add(timeline.NewText("a"))

	s.SetElements([]timeline.Element{timeline.NewText("b")})

	assert.ErrorIs(t, s.Undo(), ErrNothingToUndo)
	require.Len(t, s.Elements(), 1)
}

func TestListenersNotified(t *testing.T) {
	s := New(0)
	calls := 0
	s.AddListener(func() { calls++ })

	s.Add(timeline.NewText("a"))
	s.SetPlayhead(3)

	assert.Equal(t, 2, calls)
}

func TestInvariantsHoldAfterUpdateSequences(t *testing.T) {
	s := New(0)
	e := timeline.NewMedia(timeline.TypeVideo, "clip.mp4", 10)
	s.Add(e)

	patches := []timeline.Patch{
		{StartTime: timeline.Float(-5)},
		{Duration: timeline.Float(0.0001)},
		{TrimIn: timeline.Float(20), TrimOut: timeline.Float(1)},
		{StartTime: timeline.Float(3), Duration: timeline.Float(4)},
	}
	for _, p := range patches {
		require.NoError(t, s.Update(e.ID, p))

		got, err := s.Element(e.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.StartTime, 0.0)
		assert.GreaterOrEqual(t, got.Duration, timeline.MinDuration)
		assert.LessOrEqual(t, got.TrimIn, got.TrimOut)
	}
}
