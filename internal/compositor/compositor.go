// Package compositor renders a composition at a single timestamp. Render
// is a pure function of its inputs: identical element lists, time and
// sources yield byte-identical pixels, whichever caller asks. The live
// preview driver and the export orchestrator both draw through it; there
// is no second rendering path.
package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/blur"
	"github.com/fogleman/gg"

	"github.com/baileyeubanks/coedit/internal/timeline"
)

// Input carries everything a frame render depends on. Sources maps an
// element's source reference to its current decoded frame; entries may be
// missing or nil, in which case the element draws as a placeholder.
type Input struct {
	Elements   []timeline.Element
	Time       float64
	Width      int
	Height     int
	Background string
	Sources    map[string]image.Image
}

// Render draws all elements active at Input.Time, bottom to top in slice
// order, onto a canvas of the requested size. A failure while drawing one
// element skips that element and never aborts the frame.
func Render(in Input) (*image.RGBA, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, in.Width, in.Height))

	bg := gg.NewContextForRGBA(canvas)
	if in.Background != "" {
		bg.SetHexColor(in.Background)
	} else {
		bg.SetRGB(0, 0, 0)
	}
	bg.Clear()

	for i := range in.Elements {
		el := in.Elements[i]
		if !el.Visible || !el.ActiveAt(in.Time) {
			continue
		}
		if el.Type == timeline.TypeAudio {
			continue
		}
		compositeElement(canvas, el, in)
	}

	return canvas, nil
}

// compositeElement draws one element onto its own transparent layer, runs
// the layer through the element's filter chain and animation blur, and
// composites it onto the canvas with the element's blend mode.
func compositeElement(canvas *image.RGBA, el timeline.Element, in Input) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("element render failed, skipping", "element", el.ID, "type", el.Type, "panic", r)
		}
	}()

	anim := animAt(el, in.Time)
	opacity := timeline.Clamp(el.Opacity*anim.opacity, 0, 1)
	if opacity == 0 {
		return
	}

	layer := image.NewRGBA(image.Rect(0, 0, in.Width, in.Height))
	dc := gg.NewContextForRGBA(layer)

	x := el.X + anim.dx
	y := el.Y + anim.dy
	cx := x + el.Width/2
	cy := y + el.Height/2

	dc.Push()
	if rot := el.Rotation + anim.rotate; rot != 0 {
		dc.RotateAbout(gg.Radians(rot), cx, cy)
	}
	if anim.scale != 1 {
		dc.ScaleAbout(anim.scale, anim.scale, cx, cy)
	}
	if anim.reveal < 1 {
		dc.DrawRectangle(x, y, el.Width*anim.reveal, el.Height)
		dc.Clip()
	}

	drawElement(dc, el, x, y, in)
	dc.Pop()

	layer = applyFilter(layer, el.Filter)
	if anim.blur > 0 {
		layer = blur.Gaussian(layer, anim.blur)
	}
	if opacity < 1 {
		scaleAlpha(layer, opacity)
	}

	composite(canvas, layer, el.BlendMode)
}

// drawElement dispatches on the element's discriminant type. The switch is
// exhaustive over all seven kinds.
func drawElement(dc *gg.Context, el timeline.Element, x, y float64, in Input) {
	switch el.Type {
	case timeline.TypeShape:
		drawShape(dc, el, x, y)
	case timeline.TypeCircle:
		drawCircle(dc, el, x, y)
	case timeline.TypeText:
		drawText(dc, el, x, y)
	case timeline.TypeImage, timeline.TypeVideo:
		drawFrame(dc, el, x, y, in.Sources)
	case timeline.TypeSubtitle:
		drawSubtitle(dc, el, in)
	case timeline.TypeAudio:
		// nothing to draw
	}
}

func drawShape(dc *gg.Context, el timeline.Element, x, y float64) {
	dc.DrawRoundedRectangle(x, y, el.Width, el.Height, el.CornerRadius)
	if el.Fill != "" {
		dc.SetHexColor(el.Fill)
		dc.FillPreserve()
	}
	if el.Stroke != "" && el.StrokeWidth > 0 {
		dc.SetHexColor(el.Stroke)
		dc.SetLineWidth(el.StrokeWidth)
		dc.Stroke()
	} else {
		dc.ClearPath()
	}
}

func drawCircle(dc *gg.Context, el timeline.Element, x, y float64) {
	dc.DrawEllipse(x+el.Width/2, y+el.Height/2, el.Width/2, el.Height/2)
	if el.Fill != "" {
		dc.SetHexColor(el.Fill)
		dc.FillPreserve()
	}
	if el.Stroke != "" && el.StrokeWidth > 0 {
		dc.SetHexColor(el.Stroke)
		dc.SetLineWidth(el.StrokeWidth)
		dc.Stroke()
	} else {
		dc.ClearPath()
	}
}

func drawText(dc *gg.Context, el timeline.Element, x, y float64) {
	if el.Text == "" {
		return
	}

	dc.SetFontFace(fontFace(el.FontSize))

	if el.Background != "" {
		dc.SetHexColor(el.Background)
		dc.DrawRoundedRectangle(x, y, el.Width, el.Height, el.CornerRadius)
		dc.Fill()
	}

	align := gg.AlignCenter
	ax := 0.5
	switch el.Align {
	case "left":
		align = gg.AlignLeft
		ax = 0
	case "right":
		align = gg.AlignRight
		ax = 1
	}

	fg := el.Color
	if fg == "" {
		fg = "#ffffff"
	}
	dc.SetHexColor(fg)

	// line-wrapped, vertically centered in the element box
	dc.DrawStringWrapped(el.Text, x+ax*el.Width, y+el.Height/2, ax, 0.5, el.Width, 1.3, align)
}

// drawFrame draws the current decoded frame of an image or video source
// scaled into the element bounds. A missing or nil frame degrades to the
// placeholder; a single bad asset never blanks the composite.
func drawFrame(dc *gg.Context, el timeline.Element, x, y float64, sources map[string]image.Image) {
	frame, ok := sources[el.Source]
	if !ok || frame == nil {
		drawPlaceholder(dc, x, y, el.Width, el.Height)
		return
	}

	bounds := frame.Bounds()
	fw, fh := float64(bounds.Dx()), float64(bounds.Dy())
	if fw == 0 || fh == 0 {
		drawPlaceholder(dc, x, y, el.Width, el.Height)
		return
	}

	dc.Push()
	if el.CornerRadius > 0 {
		dc.DrawRoundedRectangle(x, y, el.Width, el.Height, el.CornerRadius)
		dc.Clip()
	}
	dc.Translate(x, y)
	dc.Scale(el.Width/fw, el.Height/fh)
	dc.DrawImage(frame, 0, 0)
	dc.Pop()
}

// drawPlaceholder renders the no-frame-available marker: a dark panel
// crossed by two diagonals.
func drawPlaceholder(dc *gg.Context, x, y, w, h float64) {
	dc.SetHexColor("#1f1f23")
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()

	dc.SetHexColor("#52525b")
	dc.SetLineWidth(2)
	dc.DrawLine(x, y, x+w, y+h)
	dc.Stroke()
	dc.DrawLine(x+w, y, x, y+h)
	dc.Stroke()
}

// subtitlePadding is the inner padding of the burned-in subtitle panel.
const subtitlePadding = 16.0

// drawSubtitle burns the active cues at the current time into the frame.
// Cue times are absolute composition seconds. The text block is centered
// horizontally, padded, drop-shadowed, and anchored per the element's
// top/center/bottom position.
func drawSubtitle(dc *gg.Context, el timeline.Element, in Input) {
	text := ""
	for _, cue := range el.Cues {
		if in.Time >= cue.StartTime && in.Time < cue.EndTime {
			if text != "" {
				text += "\n"
			}
			text += cue.Text
		}
	}
	if text == "" {
		return
	}

	dc.SetFontFace(fontFace(el.FontSize))

	maxWidth := float64(in.Width) * 0.8
	tw, th := dc.MeasureMultilineString(text, 1.3)
	if tw > maxWidth {
		tw = maxWidth
	}

	bw := tw + 2*subtitlePadding
	bh := th + 2*subtitlePadding
	bx := (float64(in.Width) - bw) / 2

	var by float64
	switch el.Position {
	case "top":
		by = float64(in.Height) * 0.08
	case "center":
		by = (float64(in.Height) - bh) / 2
	default: // bottom
		by = float64(in.Height)*0.92 - bh
	}

	if el.Background != "" {
		dc.SetHexColor(el.Background)
		dc.DrawRoundedRectangle(bx, by, bw, bh, 8)
		dc.Fill()
	}

	cx := float64(in.Width) / 2
	cy := by + bh/2

	// drop shadow, then the text itself
	dc.SetRGBA(0, 0, 0, 0.75)
	dc.DrawStringWrapped(text, cx+2, cy+2, 0.5, 0.5, tw, 1.3, gg.AlignCenter)

	fg := el.Color
	if fg == "" {
		fg = "#ffffff"
	}
	dc.SetHexColor(fg)
	dc.DrawStringWrapped(text, cx, cy, 0.5, 0.5, tw, 1.3, gg.AlignCenter)
}

// scaleAlpha multiplies every premultiplied channel of the layer by a.
func scaleAlpha(layer *image.RGBA, a float64) {
	if a >= 1 {
		return
	}
	pix := layer.Pix
	for i := 0; i < len(pix); i++ {
		pix[i] = uint8(float64(pix[i])*a + 0.5)
	}
}

// composite merges a finished layer onto the canvas with the given blend
// mode. The blend functions operate on whole same-sized images and respect
// the layer's alpha.
func composite(canvas *image.RGBA, layer *image.RGBA, mode timeline.BlendMode) {
	var blended *image.RGBA
	switch mode {
	case timeline.BlendMultiply:
		blended = blend.Multiply(canvas, layer)
	case timeline.BlendScreen:
		blended = blend.Screen(canvas, layer)
	case timeline.BlendOverlay:
		blended = blend.Overlay(canvas, layer)
	case timeline.BlendDarken:
		blended = blend.Darken(canvas, layer)
	case timeline.BlendLighten:
		blended = blend.Lighten(canvas, layer)
	case timeline.BlendAdd:
		blended = blend.Add(canvas, layer)
	case timeline.BlendDifference:
		blended = blend.Difference(canvas, layer)
	case timeline.BlendNormal:
		draw.Draw(canvas, canvas.Bounds(), layer, image.Point{}, draw.Over)
		return
	default:
		draw.Draw(canvas, canvas.Bounds(), layer, image.Point{}, draw.Over)
		return
	}
	draw.Draw(canvas, canvas.Bounds(), blended, image.Point{}, draw.Src)
}

// SolidFrame renders a single flat color, used by tests and the preview
// driver's empty state.
func SolidFrame(w, h int, c color.Color) *image.RGBA {
	im := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(im, im.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return im
}
