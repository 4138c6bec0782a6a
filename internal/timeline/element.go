// Package timeline defines the element and track model of a composition:
// the atomic timed entities placed on the timeline, their invariants, and
// the factories and patch-merge operations through which they are created
// and mutated.
package timeline

import (
	"sort"

	"github.com/google/uuid"
)

// ElementType is the closed discriminant of an element. Every switch over
// it in the editor and the compositor must list all seven kinds.
type ElementType string

const (
	TypeText     ElementType = "text"
	TypeShape    ElementType = "shape"
	TypeCircle   ElementType = "circle"
	TypeImage    ElementType = "image"
	TypeVideo    ElementType = "video"
	TypeAudio    ElementType = "audio"
	TypeSubtitle ElementType = "subtitle"
)

// AnimationKind names one of the thirteen entry/exit animation mappings.
type AnimationKind string

const (
	AnimNone       AnimationKind = "none"
	AnimFade       AnimationKind = "fade"
	AnimSlideLeft  AnimationKind = "slide-left"
	AnimSlideRight AnimationKind = "slide-right"
	AnimSlideUp    AnimationKind = "slide-up"
	AnimSlideDown  AnimationKind = "slide-down"
	AnimZoomIn     AnimationKind = "zoom-in"
	AnimZoomOut    AnimationKind = "zoom-out"
	AnimRotate     AnimationKind = "rotate"
	AnimBlur       AnimationKind = "blur"
	AnimReveal     AnimationKind = "reveal"
	AnimBounce     AnimationKind = "bounce"
	AnimPop        AnimationKind = "pop"
)

// EasingKind selects the curve applied to animation progress.
type EasingKind string

const (
	EaseLinear EasingKind = "linear"
	EaseIn     EasingKind = "ease-in"
	EaseOut    EasingKind = "ease-out"
	EaseInOut  EasingKind = "ease-in-out"
	EaseBounce EasingKind = "bounce"
)

// BlendMode selects how an element's layer composites onto the canvas.
type BlendMode string

const (
	BlendNormal     BlendMode = "normal"
	BlendMultiply   BlendMode = "multiply"
	BlendScreen     BlendMode = "screen"
	BlendOverlay    BlendMode = "overlay"
	BlendDarken     BlendMode = "darken"
	BlendLighten    BlendMode = "lighten"
	BlendAdd        BlendMode = "add"
	BlendDifference BlendMode = "difference"
)

// MinDuration is the floor below which no element duration may fall.
const MinDuration = 0.1

// Cue is a single timed text line inside a subtitle element. Times are
// absolute composition seconds, not element-relative.
type Cue struct {
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Text      string  `json:"text"`
}

// Element is the atomic timeline entity. It is a single flat struct with a
// closed Type discriminant; type-specific fields are meaningful only for
// the matching kinds and hold zero values otherwise.
type Element struct {
	ID   string      `json:"id"`
	Type ElementType `json:"type"`

	// Spatial transform
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"` // degrees
	Opacity  float64 `json:"opacity"`  // 0..1

	Visible bool `json:"visible"`
	Locked  bool `json:"locked"`

	// Timing window, global composition seconds
	StartTime float64 `json:"startTime"`
	Duration  float64 `json:"duration"`

	// Animations
	Animation     AnimationKind `json:"animation"`
	AnimDuration  float64       `json:"animDuration"`
	Easing        EasingKind    `json:"easing"`
	ExitAnimation AnimationKind `json:"exitAnimation"`
	ExitDuration  float64       `json:"exitDuration"`

	Filter    string    `json:"filter"`
	BlendMode BlendMode `json:"blendMode"`
	TrackID   string    `json:"trackId"`

	// Text fields
	Text       string  `json:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	Color      string  `json:"color,omitempty"`
	Background string  `json:"background,omitempty"`
	Align      string  `json:"align,omitempty"` // left|center|right

	// Shape fields
	Fill         string  `json:"fill,omitempty"`
	Stroke       string  `json:"stroke,omitempty"`
	StrokeWidth  float64 `json:"strokeWidth,omitempty"`
	CornerRadius float64 `json:"cornerRadius,omitempty"`

	// Media fields
	Source       string  `json:"source,omitempty"`
	TrimIn       float64 `json:"trimIn,omitempty"`
	TrimOut      float64 `json:"trimOut,omitempty"`
	PlaybackRate float64 `json:"playbackRate,omitempty"`
	Volume       float64 `json:"volume,omitempty"`
	Muted        bool    `json:"muted,omitempty"`

	// Subtitle fields
	Cues     []Cue  `json:"cues,omitempty"`
	Position string `json:"position,omitempty"` // top|center|bottom
}

// IsMedia reports whether the element references an external media source
// with a trim window.
func (e *Element) IsMedia() bool {
	switch e.Type {
	case TypeImage, TypeVideo, TypeAudio:
		return true
	case TypeText, TypeShape, TypeCircle, TypeSubtitle:
		return false
	}
	return false
}

// Seekable reports whether the element's source has its own timeline that
// must be synchronized during playback and export.
func (e *Element) Seekable() bool {
	return e.Type == TypeVideo || e.Type == TypeAudio
}

// EndTime returns the exclusive end of the element's timing window.
func (e *Element) EndTime() float64 {
	return e.StartTime + e.Duration
}

// ActiveAt reports whether the element occupies the timeline at time t.
func (e *Element) ActiveAt(t float64) bool {
	return t >= e.StartTime && t < e.EndTime()
}

// SourceTimeAt maps a composition time inside the element's window to the
// exact time on the underlying media source.
func (e *Element) SourceTimeAt(t float64) float64 {
	rate := e.PlaybackRate
	if rate <= 0 {
		rate = 1
	}
	return e.TrimIn + (t-e.StartTime)*rate
}

// New creates a fully-populated element of the given type. Every field has
// a defined value so downstream code never checks for absence.
func New(elementType ElementType) Element {
	e := Element{
		ID:            uuid.NewString(),
		Type:          elementType,
		Width:         320,
		Height:        180,
		Opacity:       1,
		Visible:       true,
		Duration:      5,
		Animation:     AnimNone,
		AnimDuration:  0.5,
		Easing:        EaseInOut,
		ExitAnimation: AnimNone,
		ExitDuration:  0.5,
		BlendMode:     BlendNormal,
	}

	switch elementType {
	case TypeText:
		e.Text = "Text"
		e.FontSize = 48
		e.Color = "#ffffff"
		e.Align = "center"
		e.Height = 80
	case TypeShape:
		e.Fill = "#4f46e5"
		e.Stroke = ""
		e.StrokeWidth = 0
	case TypeCircle:
		e.Fill = "#4f46e5"
		e.Width = 180
	case TypeImage:
		e.PlaybackRate = 1
	case TypeVideo:
		e.PlaybackRate = 1
		e.Volume = 1
	case TypeAudio:
		e.PlaybackRate = 1
		e.Volume = 1
		e.Width = 0
		e.Height = 0
	case TypeSubtitle:
		e.FontSize = 36
		e.Color = "#ffffff"
		e.Background = "#000000cc"
		e.Position = "bottom"
		e.Cues = []Cue{}
	}

	return e
}

// NewText creates a text element with the given content.
func NewText(text string) Element {
	e := New(TypeText)
	e.Text = text
	return e
}

// NewMedia creates an image, video or audio element for the given source.
// naturalDuration, when known, seeds the trim window and the clip duration.
func NewMedia(elementType ElementType, source string, naturalDuration float64) Element {
	e := New(elementType)
	e.Source = source
	if naturalDuration > 0 {
		e.TrimOut = naturalDuration
		if elementType != TypeImage {
			e.Duration = naturalDuration
		}
	}
	return e
}

// NewSubtitle creates a subtitle element from pre-built cues. The element's
// timing window is stretched to cover all cues.
func NewSubtitle(cues []Cue) Element {
	e := New(TypeSubtitle)
	e.Cues = append([]Cue{}, cues...)
	sortCues(e.Cues)
	if len(e.Cues) > 0 {
		e.StartTime = e.Cues[0].StartTime
		end := e.Cues[len(e.Cues)-1].EndTime
		if end-e.StartTime > MinDuration {
			e.Duration = end - e.StartTime
		}
	}
	return e
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	c := e
	if e.Cues != nil {
		c.Cues = append([]Cue{}, e.Cues...)
	}
	return c
}

// CloneElements deep-copies a whole element list.
func CloneElements(elements []Element) []Element {
	out := make([]Element, len(elements))
	for i, e := range elements {
		out[i] = e.Clone()
	}
	return out
}

func sortCues(cues []Cue) {
	sort.SliceStable(cues, func(i, j int) bool {
		return cues[i].StartTime < cues[j].StartTime
	})
}

// Normalize clamps every invariant back into range: duration and start
// floors, trim ordering, opacity range, cue ordering. Violations are
// corrected, never reported.
func (e *Element) Normalize() {
	if e.StartTime < 0 {
		e.StartTime = 0
	}
	if e.Duration < MinDuration {
		e.Duration = MinDuration
	}
	if e.Opacity < 0 {
		e.Opacity = 0
	}
	if e.Opacity > 1 {
		e.Opacity = 1
	}
	if e.Width < 0 {
		e.Width = 0
	}
	if e.Height < 0 {
		e.Height = 0
	}
	if e.IsMedia() {
		if e.TrimIn < 0 {
			e.TrimIn = 0
		}
		if e.TrimOut < e.TrimIn {
			e.TrimOut = e.TrimIn
		}
		if e.PlaybackRate <= 0 {
			e.PlaybackRate = 1
		}
		if e.Volume < 0 {
			e.Volume = 0
		}
	}
	if e.Type == TypeSubtitle {
		kept := e.Cues[:0]
		for _, c := range e.Cues {
			if c.EndTime >= c.StartTime {
				kept = append(kept, c)
			}
		}
		e.Cues = kept
		sortCues(e.Cues)
	}
}
