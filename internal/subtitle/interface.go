// Package subtitle reads and writes subtitle cue files. SRT and WebVTT
// are supported; a composite importer tries each format in sequence so
// callers never need to know the file's format up front.
package subtitle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/baileyeubanks/coedit/internal/timeline"
)

var (
	ErrNoCues        = errors.New("no cues found")
	ErrInvalidFormat = errors.New("invalid subtitle format")
)

// Importer parses subtitle cues from a reader.
type Importer interface {
	Import(ctx context.Context, r io.Reader) ([]timeline.Cue, error)
	Name() string
}

// Writer serializes cues to a subtitle file format.
type Writer interface {
	Write(w io.Writer, cues []timeline.Cue) error
	Name() string
}

// CompositeImporter tries multiple importers in sequence until one succeeds
type CompositeImporter struct {
	importers []Importer
}

func (c *CompositeImporter) Name() string {
	return "composite"
}

// NewCompositeImporter builds the default format auto-detection chain.
func NewCompositeImporter() *CompositeImporter {
	return &CompositeImporter{
		importers: []Importer{
			NewVTTImporter(),
			NewSRTImporter(),
		},
	}
}

// Import parses with each importer in turn. The reader must support
// seeking back; callers pass an io.ReadSeeker-backed reader or a
// bytes.Reader.
func (c *CompositeImporter) Import(ctx context.Context, r io.Reader) ([]timeline.Cue, error) {
	seeker, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read subtitle input: %w", err)
		}
		return c.importBytes(ctx, data)
	}

	var errs []error
	for _, importer := range c.importers {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind subtitle input: %w", err)
		}
		cues, err := importer.Import(ctx, seeker)
		if err == nil {
			return cues, nil
		}
		errs = append(errs, fmt.Errorf("%s: %v", importer.Name(), err))
	}
	return nil, fmt.Errorf("all importers failed: %v", errs)
}

func (c *CompositeImporter) importBytes(ctx context.Context, data []byte) ([]timeline.Cue, error) {
	var errs []error
	for _, importer := range c.importers {
		cues, err := importer.Import(ctx, bytes.NewReader(data))
		if err == nil {
			return cues, nil
		}
		errs = append(errs, fmt.Errorf("%s: %v", importer.Name(), err))
	}
	return nil, fmt.Errorf("all importers failed: %v", errs)
}

// NewWriter returns the writer for a format name ("srt" or "vtt").
func NewWriter(format string) (Writer, error) {
	switch format {
	case "srt":
		return NewSRTWriter(), nil
	case "vtt":
		return NewVTTWriter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}
}
