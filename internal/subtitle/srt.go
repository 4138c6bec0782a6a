package subtitle

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/baileyeubanks/coedit/internal/timeline"
)

// srtTimecode matches "HH:MM:SS,mmm --> HH:MM:SS,mmm"; a dot separator
// is tolerated on read.
var srtTimecode = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})`)

// markupTag strips inline styling such as <i>...</i> and ASS overrides
// like {\an8}.
var markupTag = regexp.MustCompile(`<[^>]+>|\{\\[^}]*\}`)

type SRTImporter struct{}

func NewSRTImporter() *SRTImporter {
	return &SRTImporter{}
}

func (s *SRTImporter) Name() string {
	return "srt"
}

// Import parses SubRip cues. Index lines are optional and ignored; both
// CRLF and LF line endings are accepted.
func (s *SRTImporter) Import(ctx context.Context, r io.Reader) ([]timeline.Cue, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var cues []timeline.Cue
	scanner := bufio.NewScanner(r)

	var cue *timeline.Cue
	var textLines []string

	flush := func() {
		if cue != nil {
			cue.Text = strings.TrimSpace(strings.Join(textLines, "\n"))
			if cue.Text != "" {
				cues = append(cues, *cue)
			}
			cue = nil
		}
		textLines = nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if m := srtTimecode.FindStringSubmatch(line); m != nil {
			flush()
			start, err := timecodeSeconds(m[1], m[2], m[3], m[4])
			if err != nil {
				return nil, err
			}
			end, err := timecodeSeconds(m[5], m[6], m[7], m[8])
			if err != nil {
				return nil, err
			}
			cue = &timeline.Cue{StartTime: start, EndTime: end}
			continue
		}

		if cue == nil {
			// a bare integer before the timecode is the cue index
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				continue
			}
			return nil, fmt.Errorf("%w: unexpected line %q", ErrInvalidFormat, line)
		}

		textLines = append(textLines, markupTag.ReplaceAllString(line, ""))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read srt input: %w", err)
	}
	if len(cues) == 0 {
		return nil, ErrNoCues
	}
	return cues, nil
}

type SRTWriter struct{}

func NewSRTWriter() *SRTWriter {
	return &SRTWriter{}
}

func (s *SRTWriter) Name() string {
	return "srt"
}

// Write serializes cues as SubRip with 1-based indices.
func (s *SRTWriter) Write(w io.Writer, cues []timeline.Cue) error {
	for i, cue := range cues {
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1,
			formatTimecode(cue.StartTime, ','),
			formatTimecode(cue.EndTime, ','),
			cue.Text,
		)
		if err != nil {
			return fmt.Errorf("failed to write cue %d: %w", i+1, err)
		}
	}
	return nil
}

func timecodeSeconds(h, m, sec, ms string) (float64, error) {
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("%w: bad hours %q", ErrInvalidFormat, h)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("%w: bad minutes %q", ErrInvalidFormat, m)
	}
	seconds, err := strconv.Atoi(sec)
	if err != nil {
		return 0, fmt.Errorf("%w: bad seconds %q", ErrInvalidFormat, sec)
	}
	// pad to milliseconds: "5" means 500ms
	for len(ms) < 3 {
		ms += "0"
	}
	millis, err := strconv.Atoi(ms)
	if err != nil {
		return 0, fmt.Errorf("%w: bad milliseconds %q", ErrInvalidFormat, ms)
	}
	return float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(millis)/1000, nil
}

func formatTimecode(t float64, msSep byte) string {
	if t < 0 {
		t = 0
	}
	totalMs := int(t*1000 + 0.5)
	h := totalMs / 3600000
	m := (totalMs % 3600000) / 60000
	s := (totalMs % 60000) / 1000
	ms := totalMs % 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, msSep, ms)
}
