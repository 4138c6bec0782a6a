package compositor

import (
	"image"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// filterStepRe matches one step of a pixel-filter chain, e.g.
// "brightness(0.2)" or "grayscale".
var filterStepRe = regexp.MustCompile(`([a-z]+)(?:\(([^)]*)\))?`)

// applyFilter runs an element's free-form filter string over its layer.
// The string is a whitespace-separated chain of steps applied left to
// right. Unknown steps and malformed arguments are skipped with a log
// line; a bad filter never fails the frame.
func applyFilter(layer *image.RGBA, filter string) *image.RGBA {
	if filter == "" {
		return layer
	}

	for _, m := range filterStepRe.FindAllStringSubmatch(filter, -1) {
		name, rawArg := m[1], m[2]
		arg, argErr := strconv.ParseFloat(rawArg, 64)

		switch name {
		case "brightness":
			if argErr == nil {
				layer = adjust.Brightness(layer, arg)
			}
		case "contrast":
			if argErr == nil {
				layer = adjust.Contrast(layer, arg)
			}
		case "saturation":
			if argErr == nil {
				layer = adjust.Saturation(layer, arg)
			}
		case "hue":
			if argErr == nil {
				layer = adjust.Hue(layer, int(arg))
			}
		case "gamma":
			if argErr == nil {
				layer = adjust.Gamma(layer, arg)
			}
		case "blur":
			if argErr == nil && arg > 0 {
				layer = blur.Gaussian(layer, arg)
			}
		case "grayscale":
			// full desaturation keeps the alpha channel, unlike a
			// conversion through image.Gray
			layer = adjust.Saturation(layer, -1)
		case "sepia":
			layer = effect.Sepia(layer)
		case "invert":
			layer = effect.Invert(layer)
		default:
			slog.Debug("unknown filter step skipped", "step", name)
		}
	}
	return layer
}
