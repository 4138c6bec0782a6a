package subtitle

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/baileyeubanks/coedit/internal/timeline"
)

type VTTImporter struct{}

func NewVTTImporter() *VTTImporter {
	return &VTTImporter{}
}

func (v *VTTImporter) Name() string {
	return "vtt"
}

// Import parses WebVTT cues. The WEBVTT header is required; NOTE and
// STYLE blocks are skipped and cue identifiers are ignored.
func (v *VTTImporter) Import(ctx context.Context, r io.Reader) ([]timeline.Cue, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidFormat)
	}
	header := strings.TrimRight(scanner.Text(), "\r")
	header = strings.TrimPrefix(header, "\uFEFF")
	if !strings.HasPrefix(header, "WEBVTT") {
		return nil, fmt.Errorf("%w: missing WEBVTT header", ErrInvalidFormat)
	}

	var cues []timeline.Cue
	var cue *timeline.Cue
	var textLines []string
	inComment := false

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
			inComment = false
			continue
		}

		if inComment {
			continue
		}

		if strings.HasPrefix(line, "NOTE") || strings.HasPrefix(line, "STYLE") || strings.HasPrefix(line, "REGION") {
			flush()
			inComment = true
			continue
		}

		if strings.Contains(line, "-->") {
			flush()
			start, end, err := parseVTTTimecodeLine(line)
			if err != nil {
				return nil, err
			}
			cue = &timeline.Cue{StartTime: start, EndTime: end}
			continue
		}

		if cue == nil {
			// a non-timecode line before a cue body is a cue identifier
			continue
		}

		textLines = append(textLines, markupTag.ReplaceAllString(line, ""))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vtt input: %w", err)
	}
	if len(cues) == 0 {
		return nil, ErrNoCues
	}
	return cues, nil
}

// parseVTTTimecodeLine handles both "MM:SS.mmm" and "HH:MM:SS.mmm"
// forms and ignores trailing cue settings.
func parseVTTTimecodeLine(line string) (float64, float64, error) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: bad timecode line %q", ErrInvalidFormat, line)
	}

	start, err := parseVTTTimecode(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}

	endField := strings.Fields(strings.TrimSpace(parts[1]))
	if len(endField) == 0 {
		return 0, 0, fmt.Errorf("%w: bad timecode line %q", ErrInvalidFormat, line)
	}
	end, err := parseVTTTimecode(endField[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseVTTTimecode(tc string) (float64, error) {
	fields := strings.Split(tc, ":")
	var h, m, rest string
	switch len(fields) {
	case 2:
		h, m, rest = "0", fields[0], fields[1]
	case 3:
		h, m, rest = fields[0], fields[1], fields[2]
	default:
		return 0, fmt.Errorf("%w: bad timecode %q", ErrInvalidFormat, tc)
	}

	secField := strings.SplitN(rest, ".", 2)
	ms := "000"
	if len(secField) == 2 {
		ms = secField[1]
	}
	return timecodeSeconds(h, m, secField[0], ms)
}

type VTTWriter struct{}

func NewVTTWriter() *VTTWriter {
	return &VTTWriter{}
}

func (v *VTTWriter) Name() string {
	return "vtt"
}

// Write serializes cues as WebVTT.
func (v *VTTWriter) Write(w io.Writer, cues []timeline.Cue) error {
	if _, err := fmt.Fprint(w, "WEBVTT\n\n"); err != nil {
		return fmt.Errorf("failed to write vtt header: %w", err)
	}
	for i, cue := range cues {
		_, err := fmt.Fprintf(w, "%s --> %s\n%s\n\n",
			formatTimecode(cue.StartTime, '.'),
			formatTimecode(cue.EndTime, '.'),
			cue.Text,
		)
		if err != nil {
			return fmt.Errorf("failed to write cue %d: %w", i+1, err)
		}
	}
	return nil
}
