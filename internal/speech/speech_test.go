package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeepRegionsFiltersAndPads(t *testing.T) {
	regions := []Region{
		{Start: 0, End: 1, Type: RegionSilence},
		{Start: 1, End: 3, Type: RegionSpeech},
		{Start: 3, End: 5, Type: RegionSilence},
		{Start: 5, End: 8, Type: RegionSpeech},
	}

	kept := KeepRegions(regions, 0.25, 0.5)

	assert.Equal(t, []Region{
		{Start: 0.75, End: 3.25, Type: RegionSpeech},
		{Start: 4.75, End: 8.25, Type: RegionSpeech},
	}, kept)
}

func TestKeepRegionsMergesOverlaps(t *testing.T) {
	regions := []Region{
		{Start: 1, End: 2, Type: RegionSpeech},
		{Start: 2.1, End: 3, Type: RegionSpeech},
	}

	// 0.1 padding makes the padded spans touch at 2.1/2.0
	kept := KeepRegions(regions, 0.1, 0)

	assert.Equal(t, []Region{
		{Start: 0.9, End: 3.1, Type: RegionSpeech},
	}, kept)
}

func TestKeepRegionsDropsShortFragments(t *testing.T) {
	regions := []Region{
		{Start: 1, End: 1.2, Type: RegionSpeech},
		{Start: 4, End: 6, Type: RegionSpeech},
	}

	kept := KeepRegions(regions, 0, 0.5)

	assert.Equal(t, []Region{
		{Start: 4, End: 6, Type: RegionSpeech},
	}, kept)
}

func TestKeepRegionsPadClampsAtZero(t *testing.T) {
	kept := KeepRegions([]Region{{Start: 0.1, End: 2, Type: RegionSpeech}}, 0.5, 0)

	assert.Equal(t, []Region{{Start: 0, End: 2.5, Type: RegionSpeech}}, kept)
}

func TestKeepRegionsEmptyInput(t *testing.T) {
	assert.Empty(t, KeepRegions(nil, 0.5, 0.5))
	assert.Empty(t, KeepRegions([]Region{{Start: 0, End: 9, Type: RegionSilence}}, 0.5, 0.5))
}

func TestKeepRegionsUnsortedInput(t *testing.T) {
	regions := []Region{
		{Start: 5, End: 6, Type: RegionSpeech},
		{Start: 1, End: 2, Type: RegionSpeech},
	}

	kept := KeepRegions(regions, 0, 0)

	assert.Equal(t, []Region{
		{Start: 1, End: 2, Type: RegionSpeech},
		{Start: 5, End: 6, Type: RegionSpeech},
	}, kept)
}
