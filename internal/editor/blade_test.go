package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baileyeubanks/coedit/internal/timeline"
)

func TestSplitVideo(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 2, 6, 1, "t1")

	rightID, err := eng.Split(e.ID, 4.5)
	require.NoError(t, err)

	left, err := s.Element(e.ID)
	require.NoError(t, err)
	right, err := s.Element(rightID)
	require.NoError(t, err)

	assert.Equal(t, 2.0, left.StartTime)
	assert.Equal(t, 2.5, left.Duration)
	assert.Equal(t, 1.0, left.TrimIn)

	assert.Equal(t, 4.5, right.StartTime)
	assert.Equal(t, 3.5, right.Duration)
	assert.Equal(t, 3.5, right.TrimIn) // advanced by the split offset

	// paint order: right half directly after left
	elements := s.Elements()
	require.Len(t, elements, 2)
	assert.Equal(t, left.ID, elements[0].ID)
	assert.Equal(t, right.ID, elements[1].ID)
}

func TestSplitRespectsPlaybackRate(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 0, 4, 0, "t1")
	require.NoError(t, s.Update(e.ID, timeline.Patch{PlaybackRate: timeline.Float(2)}))

	rightID, err := eng.Split(e.ID, 1)
	require.NoError(t, err)

	right, err := s.Element(rightID)
	require.NoError(t, err)
	// one timeline second at 2x consumes two source seconds
	assert.Equal(t, 2.0, right.TrimIn)
}

func TestSplitOutsideWindow(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 2, 6, 0, "t1")

	testCases := []struct {
		name string
		at   float64
		want error
	}{
		{"before start", 1.0, ErrSplitOutOfRange},
		{"at start", 2.0, ErrSplitOutOfRange},
		{"at end", 8.0, ErrSplitOutOfRange},
		{"after end", 9.0, ErrSplitOutOfRange},
		{"sliver left", 2.05, ErrSplitTooSmall},
		{"sliver right", 7.95, ErrSplitTooSmall},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.Split(e.ID, tc.at)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSplitTextPartitionsContent(t *testing.T) {
	eng, s := newEngine(t, false)
	e := timeline.NewText("abcdefgh")
	e.StartTime = 0
	e.Duration = 4
	s.Add(e)

	rightID, err := eng.Split(e.ID, 1)
	require.NoError(t, err)

	left, _ := s.Element(e.ID)
	right, _ := s.Element(rightID)
	assert.Equal(t, "ab", left.Text)
	assert.Equal(t, "cdefgh", right.Text)
}

func TestSplitSubtitlePartitionsCues(t *testing.T) {
	eng, s := newEngine(t, false)
	e := timeline.NewSubtitle([]timeline.Cue{
		{StartTime: 0, EndTime: 1, Text: "one"},
		{StartTime: 2, EndTime: 3, Text: "two"},
		{StartTime: 4, EndTime: 5, Text: "three"},
	})
	s.Add(e)

	rightID, err := eng.Split(e.ID, 2)
	require.NoError(t, err)

	left, _ := s.Element(e.ID)
	right, _ := s.Element(rightID)
	require.Len(t, left.Cues, 1)
	require.Len(t, right.Cues, 2)
	assert.Equal(t, "one", left.Cues[0].Text)
	assert.Equal(t, "two", right.Cues[0].Text)
}

func TestSplitThenMergeRestoresOriginal(t *testing.T) {
	eng, s := newEngine(t, false)
	e := timeline.NewText("hello world!")
	e.StartTime = 1
	e.Duration = 6
	s.Add(e)

	rightID, err := eng.Split(e.ID, 3)
	require.NoError(t, err)

	require.NoError(t, eng.Merge(e.ID, rightID))

	merged, err := s.Element(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, merged.StartTime)
	assert.Equal(t, 6.0, merged.Duration)
	assert.Equal(t, "hello world!", merged.Text)
	assert.Len(t, s.Elements(), 1)
}

func TestMergeRejectsNonAdjacent(t *testing.T) {
	eng, s := newEngine(t, false)
	a := addClip(t, s, 0, 2, 0, "t1")
	b := addClip(t, s, 5, 2, 0, "t1")

	assert.ErrorIs(t, eng.Merge(a.ID, b.ID), ErrNotAdjacent)
}

func TestSplitIsOneUndoStep(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 0, 6, 0, "t1")

	_, err := eng.Split(e.ID, 3)
	require.NoError(t, err)
	require.Len(t, s.Elements(), 2)

	require.NoError(t, s.Undo())
	elements := s.Elements()
	require.Len(t, elements, 1)
	assert.Equal(t, e.ID, elements[0].ID)
	assert.Equal(t, 6.0, elements[0].Duration)
}
