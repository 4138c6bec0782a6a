package timeline

import "reflect"

// Patch carries the fields of an element to change. Nil pointers leave the
// corresponding field untouched; ID and Type can never be patched.
type Patch struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`

	Visible *bool `json:"visible,omitempty"`
	Locked  *bool `json:"locked,omitempty"`

	StartTime *float64 `json:"startTime,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`

	Animation     *AnimationKind `json:"animation,omitempty"`
	AnimDuration  *float64       `json:"animDuration,omitempty"`
	Easing        *EasingKind    `json:"easing,omitempty"`
	ExitAnimation *AnimationKind `json:"exitAnimation,omitempty"`
	ExitDuration  *float64       `json:"exitDuration,omitempty"`

	Filter    *string    `json:"filter,omitempty"`
	BlendMode *BlendMode `json:"blendMode,omitempty"`
	TrackID   *string    `json:"trackId,omitempty"`

	Text       *string  `json:"text,omitempty"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	Color      *string  `json:"color,omitempty"`
	Background *string  `json:"background,omitempty"`
	Align      *string  `json:"align,omitempty"`

	Fill         *string  `json:"fill,omitempty"`
	Stroke       *string  `json:"stroke,omitempty"`
	StrokeWidth  *float64 `json:"strokeWidth,omitempty"`
	CornerRadius *float64 `json:"cornerRadius,omitempty"`

	Source       *string  `json:"source,omitempty"`
	TrimIn       *float64 `json:"trimIn,omitempty"`
	TrimOut      *float64 `json:"trimOut,omitempty"`
	PlaybackRate *float64 `json:"playbackRate,omitempty"`
	Volume       *float64 `json:"volume,omitempty"`
	Muted        *bool    `json:"muted,omitempty"`

	Cues     []Cue   `json:"cues,omitempty"`
	Position *string `json:"position,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return reflect.DeepEqual(p, Patch{})
}

// Apply merges the patch into the element and re-normalizes it. The
// element's identity and discriminant type are preserved unconditionally.
func Apply(e *Element, p Patch) {
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	if p.Width != nil {
		e.Width = *p.Width
	}
	if p.Height != nil {
		e.Height = *p.Height
	}
	if p.Rotation != nil {
		e.Rotation = *p.Rotation
	}
	if p.Opacity != nil {
		e.Opacity = *p.Opacity
	}
	if p.Visible != nil {
		e.Visible = *p.Visible
	}
	if p.Locked != nil {
		e.Locked = *p.Locked
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.Duration != nil {
		e.Duration = *p.Duration
	}
	if p.Animation != nil {
		e.Animation = *p.Animation
	}
	if p.AnimDuration != nil {
		e.AnimDuration = *p.AnimDuration
	}
	if p.Easing != nil {
		e.Easing = *p.Easing
	}
	if p.ExitAnimation != nil {
		e.ExitAnimation = *p.ExitAnimation
	}
	if p.ExitDuration != nil {
		e.ExitDuration = *p.ExitDuration
	}
	if p.Filter != nil {
		e.Filter = *p.Filter
	}
	if p.BlendMode != nil {
		e.BlendMode = *p.BlendMode
	}
	if p.TrackID != nil {
		e.TrackID = *p.TrackID
	}
	if p.Text != nil {
		e.Text = *p.Text
	}
	if p.FontSize != nil {
		e.FontSize = *p.FontSize
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	if p.Background != nil {
		e.Background = *p.Background
	}
	if p.Align != nil {
		e.Align = *p.Align
	}
	if p.Fill != nil {
		e.Fill = *p.Fill
	}
	if p.Stroke != nil {
		e.Stroke = *p.Stroke
	}
	if p.StrokeWidth != nil {
		e.StrokeWidth = *p.StrokeWidth
	}
	if p.CornerRadius != nil {
		e.CornerRadius = *p.CornerRadius
	}
	if p.Source != nil {
		e.Source = *p.Source
	}
	if p.TrimIn != nil {
		e.TrimIn = *p.TrimIn
	}
	if p.TrimOut != nil {
		e.TrimOut = *p.TrimOut
	}
	if p.PlaybackRate != nil {
		e.PlaybackRate = *p.PlaybackRate
	}
	if p.Volume != nil {
		e.Volume = *p.Volume
	}
	if p.Muted != nil {
		e.Muted = *p.Muted
	}
	if p.Cues != nil {
		e.Cues = append([]Cue{}, p.Cues...)
	}
	if p.Position != nil {
		e.Position = *p.Position
	}

	e.Normalize()
}

// Float returns a pointer to v, for building patches inline.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v, for building patches inline.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v, for building patches inline.
func String(v string) *string { return &v }
