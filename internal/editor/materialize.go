package editor

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/baileyeubanks/coedit/internal/timeline"
)

// Region is a keep-range in source-media seconds, supplied by an external
// analysis collaborator.
type Region struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Materialize replaces one source element with a run of clips, one per
// keep-region, laid out back-to-back from the original element's start.
// Each clip inherits every field from the source except its timing and
// trim windows, which derive from the region bounds offset by the source's
// original trim-in. The replacement is a single history entry.
func (e *Engine) Materialize(elementID string, regions []Region) ([]string, error) {
	if len(regions) == 0 {
		return nil, ErrNoRegions
	}

	el, err := e.store.Element(elementID)
	if err != nil {
		return nil, err
	}
	if el.Locked {
		return nil, fmt.Errorf("%w: %s", ErrLockedElement, elementID)
	}

	rate := el.PlaybackRate
	if rate <= 0 {
		rate = 1
	}

	clips := make([]timeline.Element, 0, len(regions))
	ids := make([]string, 0, len(regions))
	cursor := el.StartTime
	for i, r := range regions {
		if r.End <= r.Start || r.Start < 0 {
			return nil, fmt.Errorf("%w: region %d [%.3f,%.3f]", ErrInvalidRegion, i, r.Start, r.End)
		}

		clip := el.Clone()
		clip.ID = uuid.NewString()
		clip.StartTime = cursor
		clip.Duration = (r.End - r.Start) / rate
		clip.TrimIn = el.TrimIn + r.Start
		clip.TrimOut = el.TrimIn + r.End

		clips = append(clips, clip)
		ids = append(ids, clip.ID)
		cursor += clip.Duration
	}

	if err := e.store.Replace(elementID, clips); err != nil {
		return nil, err
	}

	slog.Debug("element materialized", "element", elementID, "clips", len(clips))
	return ids, nil
}
