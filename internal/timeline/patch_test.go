package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyMergesSetFields(t *testing.T) {
	e := New(TypeText)
	originalID := e.ID

	Apply(&e, Patch{
		StartTime: Float(3),
		Duration:  Float(2),
		Text:      String("hello"),
		Opacity:   Float(0.5),
	})

	assert.Equal(t, originalID, e.ID)
	assert.Equal(t, TypeText, e.Type)
	assert.Equal(t, 3.0, e.StartTime)
	assert.Equal(t, 2.0, e.Duration)
	assert.Equal(t, "hello", e.Text)
	assert.Equal(t, 0.5, e.Opacity)
}

func TestApplyEmptyPatchIsNoOp(t *testing.T) {
	e := New(TypeShape)
	e.StartTime = 1.25
	before := e.Clone()

	Apply(&e, Patch{})

	assert.Equal(t, before, e)
}

func TestApplyClampsAfterMerge(t *testing.T) {
	testCases := []struct {
		name  string
		patch Patch
		check func(t *testing.T, e Element)
	}{
		{
			name:  "duration floor",
			patch: Patch{Duration: Float(0.001)},
			check: func(t *testing.T, e Element) {
				assert.Equal(t, MinDuration, e.Duration)
			},
		},
		{
			name:  "negative start",
			patch: Patch{StartTime: Float(-4)},
			check: func(t *testing.T, e Element) {
				assert.Equal(t, 0.0, e.StartTime)
			},
		},
		{
			name:  "opacity range",
			patch: Patch{Opacity: Float(7)},
			check: func(t *testing.T, e Element) {
				assert.Equal(t, 1.0, e.Opacity)
			},
		},
		{
			name:  "trim ordering",
			patch: Patch{TrimIn: Float(8), TrimOut: Float(2)},
			check: func(t *testing.T, e Element) {
				assert.Equal(t, 8.0, e.TrimIn)
				assert.Equal(t, 8.0, e.TrimOut)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := New(TypeVideo)
			Apply(&e, tc.patch)
			tc.check(t, e)
		})
	}
}

func TestApplyRepeatedPatchesKeepInvariants(t *testing.T) {
	e := New(TypeVideo)

	patches := []Patch{
		{StartTime: Float(-10)},
		{Duration: Float(0)},
		{StartTime: Float(5), Duration: Float(0.05)},
		{TrimIn: Float(-3)},
	}
	for _, p := range patches {
		Apply(&e, p)

		assert.GreaterOrEqual(t, e.StartTime, 0.0)
		assert.GreaterOrEqual(t, e.Duration, MinDuration)
		assert.GreaterOrEqual(t, e.TrimIn, 0.0)
		assert.LessOrEqual(t, e.TrimIn, e.TrimOut)
	}
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, Patch{X: Float(1)}.IsEmpty())
	assert.False(t, Patch{Cues: []Cue{}}.IsEmpty())
}
