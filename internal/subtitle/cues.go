package subtitle

import (
	"strings"

	"github.com/baileyeubanks/coedit/internal/speech"
	"github.com/baileyeubanks/coedit/internal/timeline"
)

// BuildOptions bound the size of generated display cues.
type BuildOptions struct {
	// MaxChars caps the cue text length; a word that would push past it
	// starts a new cue.
	MaxChars int
	// MaxDuration caps a single cue's on-screen time in seconds.
	MaxDuration float64
	// GapSplit starts a new cue when the silence between two words
	// exceeds this many seconds.
	GapSplit float64
}

// DefaultBuildOptions match common readability guidance for captions.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		MaxChars:    42,
		MaxDuration: 5,
		GapSplit:    0.8,
	}
}

// BuildCues groups transcribed words into display cues. Words are
// assumed ordered by start time; zero-valued options fall back to the
// defaults.
func BuildCues(words []speech.Word, opts BuildOptions) []timeline.Cue {
	def := DefaultBuildOptions()
	if opts.MaxChars <= 0 {
		opts.MaxChars = def.MaxChars
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = def.MaxDuration
	}
	if opts.GapSplit <= 0 {
		opts.GapSplit = def.GapSplit
	}

	var cues []timeline.Cue
	var cur []string
	var start, end float64

	flush := func() {
		if len(cur) == 0 {
			return
		}
		cues = append(cues, timeline.Cue{
			StartTime: start,
			EndTime:   end,
			Text:      strings.Join(cur, " "),
		})
		cur = nil
	}

	for _, w := range words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}

		if len(cur) > 0 {
			newLen := len(strings.Join(cur, " ")) + 1 + len(text)
			switch {
			case w.Start-end > opts.GapSplit:
				flush()
			case newLen > opts.MaxChars:
				flush()
			case w.End-start > opts.MaxDuration:
				flush()
			}
		}

		if len(cur) == 0 {
			start = w.Start
		}
		cur = append(cur, text)
		end = w.End
	}
	flush()

	return cues
}
