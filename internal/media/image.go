package media

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// imageSource decodes a still image once and serves it for any requested
// time; an image has no timeline of its own.
type imageSource struct {
	mu       sync.Mutex
	path     string
	frame    image.Image
	position float64
}

func newImageSource(path string) (*imageSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	return &imageSource{path: path, frame: img}, nil
}

func (s *imageSource) Seek(_ context.Context, t float64) error {
	s.mu.Lock()
	s.position = t
	s.mu.Unlock()
	return nil
}

func (s *imageSource) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *imageSource) Frame() image.Image {
	return s.frame
}

func (s *imageSource) NaturalDuration() float64 { return 0 }

func (s *imageSource) Close() error {
	s.frame = nil
	return nil
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
	".avi":  true,
	".mp3":  true,
	".m4a":  true,
	".wav":  true,
	".flac": true,
}

// Open picks a source implementation by file extension.
func Open(ctx context.Context, path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExtensions[ext]:
		return newImageSource(path)
	case videoExtensions[ext]:
		return newVideoSource(ctx, path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
}
