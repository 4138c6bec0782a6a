package compositor

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontOnce   sync.Once
	fontParsed *truetype.Font

	faceMu    sync.Mutex
	faceCache = map[float64]font.Face{}
)

// fontFace returns a truetype face for the embedded Go font at the given
// size. Faces are cached; text rendering stays deterministic because the
// font bytes are compiled into the binary.
func fontFace(size float64) font.Face {
	fontOnce.Do(func() {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			// goregular.TTF is a compile-time constant; parsing it
			// cannot fail at runtime
			panic(err)
		}
		fontParsed = f
	})

	if size <= 0 {
		size = 16
	}

	faceMu.Lock()
	defer faceMu.Unlock()
	if face, ok := faceCache[size]; ok {
		return face
	}
	face := truetype.NewFace(fontParsed, &truetype.Options{Size: size})
	faceCache[size] = face
	return face
}
