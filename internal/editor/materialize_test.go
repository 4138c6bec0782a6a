package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baileyeubanks/coedit/internal/timeline"
)

func TestMaterializeReplacesSourceWithRegions(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 5, 10, 0, "t1")

	ids, err := eng.Materialize(e.ID, []Region{{Start: 1, End: 3}, {Start: 6, End: 9}})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	elements := s.Elements()
	require.Len(t, elements, 2)

	first := elements[0]
	second := elements[1]

	// back-to-back from the original start
	assert.Equal(t, 5.0, first.StartTime)
	assert.Equal(t, 2.0, first.Duration)
	assert.Equal(t, 7.0, second.StartTime)
	assert.Equal(t, 3.0, second.Duration)

	// trim windows follow the region bounds
	assert.Equal(t, 1.0, first.TrimIn)
	assert.Equal(t, 3.0, first.TrimOut)
	assert.Equal(t, 6.0, second.TrimIn)
	assert.Equal(t, 9.0, second.TrimOut)

	// everything else inherited
	assert.Equal(t, e.Source, first.Source)
	assert.Equal(t, e.TrackID, second.TrackID)
	assert.NotEqual(t, e.ID, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestMaterializeOffsetsByOriginalTrim(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 0, 10, 4, "t1")

	ids, err := eng.Materialize(e.ID, []Region{{Start: 2, End: 5}})
	require.NoError(t, err)

	clip, err := s.Element(ids[0])
	require.NoError(t, err)
	assert.Equal(t, 6.0, clip.TrimIn)
	assert.Equal(t, 9.0, clip.TrimOut)
}

func TestMaterializeRespectsPlaybackRate(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 0, 10, 0, "t1")
	require.NoError(t, s.Update(e.ID, timeline.Patch{PlaybackRate: timeline.Float(2)}))

	ids, err := eng.Materialize(e.ID, []Region{{Start: 0, End: 4}})
	require.NoError(t, err)

	clip, err := s.Element(ids[0])
	require.NoError(t, err)
	// four source seconds at 2x occupy two timeline seconds
	assert.Equal(t, 2.0, clip.Duration)
}

func TestMaterializeValidation(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 0, 10, 0, "t1")

	_, err := eng.Materialize(e.ID, nil)
	assert.ErrorIs(t, err, ErrNoRegions)

	_, err = eng.Materialize(e.ID, []Region{{Start: 3, End: 2}})
	assert.ErrorIs(t, err, ErrInvalidRegion)

	_, err = eng.Materialize("missing", []Region{{Start: 0, End: 1}})
	assert.Error(t, err)
}

func TestMaterializeIsOneUndoStep(t *testing.T) {
	eng, s := newEngine(t, false)
	e := addClip(t, s, 0, 10, 0, "t1")

	_, err := eng.Materialize(e.ID, []Region{{Start: 1, End: 3}, {Start: 6, End: 9}})
	require.NoError(t, err)
	require.Len(t, s.Elements(), 2)

	require.NoError(t, s.Undo())
	elements := s.Elements()
	require.Len(t, elements, 1)
	assert.Equal(t, e.ID, elements[0].ID)
}
