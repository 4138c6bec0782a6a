// Package speech holds the collaborator types for transcription and
// silence analysis. The analysis itself happens out of process; this
// package turns its results into editing inputs.
package speech

import "sort"

// Region kinds reported by an analysis pass.
const (
	RegionSpeech  = "speech"
	RegionSilence = "silence"
)

// Word is a single transcribed word with its source-media timing.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Region is a classified span of source media, in seconds.
type Region struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Type  string  `json:"type"`
}

// KeepRegions converts an analysis result into the ordered list of
// speech spans worth keeping. Each speech region is padded on both
// sides, fragments shorter than minLen are dropped, and overlapping or
// touching spans are merged. Starts never pad below zero.
func KeepRegions(regions []Region, pad, minLen float64) []Region {
	var kept []Region
	for _, r := range regions {
		if r.Type != RegionSpeech {
			continue
		}
		if r.End-r.Start < minLen {
			continue
		}
		start := r.Start - pad
		if start < 0 {
			start = 0
		}
		kept = append(kept, Region{Start: start, End: r.End + pad, Type: RegionSpeech})
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })

	var merged []Region
	for _, r := range kept {
		if n := len(merged); n > 0 && r.Start <= merged[n-1].End {
			if r.End > merged[n-1].End {
				merged[n-1].End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
