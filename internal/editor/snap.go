package editor

import "math"

// SnapTime pulls a candidate timestamp onto the closest alignment target
// within the snap threshold. Candidate families are scanned in a fixed
// order, and a later family only wins with a strictly smaller distance, so
// ties resolve in favor of the playhead, then clip edges, then
// whole-second tick marks. Outside the threshold the candidate is returned
// unmodified.
func (e *Engine) SnapTime(t float64, excludeID string) float64 {
	if !e.opts.SnapEnabled {
		return t
	}

	threshold := e.opts.SnapThresholdPx / e.opts.PixelsPerSecond
	best := t
	bestDist := threshold

	consider := func(target float64) {
		if d := math.Abs(t - target); d < bestDist {
			best = target
			bestDist = d
		}
	}

	// 1. playhead
	consider(e.store.Playhead())

	// 2. other elements' start and end edges
	for _, el := range e.store.Elements() {
		if el.ID == excludeID {
			continue
		}
		consider(el.StartTime)
		consider(el.EndTime())
	}

	// 3. whole-second ticks
	consider(math.Round(t))

	return best
}
