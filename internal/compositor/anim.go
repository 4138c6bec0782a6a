package compositor

import "github.com/baileyeubanks/coedit/internal/timeline"

// maxAnimBlur is the gaussian radius, in pixels, of a fully blurred-out
// element in the blur animation.
const maxAnimBlur = 12.0

// animState is the set of concrete visual deltas an animation contributes
// at one instant: an opacity multiplier, a translation, a scale factor
// about the element center, an extra rotation, a gaussian blur radius, and
// a left-to-right reveal fraction treated as a clip boundary.
type animState struct {
	opacity float64
	dx, dy  float64
	scale   float64
	rotate  float64 // degrees
	blur    float64 // pixels
	reveal  float64 // 0..1 of the element width
}

func neutralAnim() animState {
	return animState{opacity: 1, scale: 1, reveal: 1}
}

// EntryProgress returns the element's entry animation progress at time t,
// pre-easing, clamped to [0, 1]. Without an entry animation it reports 1.
func EntryProgress(el timeline.Element, t float64) float64 {
	if el.Animation == timeline.AnimNone || el.AnimDuration <= 0 {
		return 1
	}
	return timeline.Clamp((t-el.StartTime)/el.AnimDuration, 0, 1)
}

// ExitProgress returns the exit animation progress at time t: 0 when the
// exit window has not begun, rising to 1 at the element's end. Without an
// exit animation it reports 0.
func ExitProgress(el timeline.Element, t float64) float64 {
	if el.ExitAnimation == timeline.AnimNone || el.ExitDuration <= 0 {
		return 0
	}
	timeToEnd := el.EndTime() - t
	if timeToEnd > el.ExitDuration {
		return 0
	}
	return timeline.Clamp(1-timeToEnd/el.ExitDuration, 0, 1)
}

// animAt resolves the element's animation state at time t. Entry and exit
// windows may overlap on short elements; the exit animation takes
// precedence when its window is active.
func animAt(el timeline.Element, t float64) animState {
	if q := ExitProgress(el, t); q > 0 {
		eased := Ease(el.Easing, q)
		return exitState(el, eased)
	}

	p := EntryProgress(el, t)
	if p >= 1 {
		return neutralAnim()
	}
	eased := Ease(el.Easing, p)
	return entryState(el, eased)
}

// entryState maps (kind, eased progress) to visual deltas for an element
// entering the frame. p runs 0 -> 1.
func entryState(el timeline.Element, p float64) animState {
	st := neutralAnim()
	w, h := el.Width, el.Height

	switch el.Animation {
	case timeline.AnimNone:
	case timeline.AnimFade:
		st.opacity = p
	case timeline.AnimSlideLeft: // enters moving leftward, from the right
		st.opacity = p
		st.dx = (1 - p) * w
	case timeline.AnimSlideRight:
		st.opacity = p
		st.dx = -(1 - p) * w
	case timeline.AnimSlideUp: // enters moving upward, from below
		st.opacity = p
		st.dy = (1 - p) * h
	case timeline.AnimSlideDown:
		st.opacity = p
		st.dy = -(1 - p) * h
	case timeline.AnimZoomIn:
		st.opacity = p
		st.scale = p
	case timeline.AnimZoomOut:
		st.opacity = p
		st.scale = 2 - p
	case timeline.AnimRotate:
		st.opacity = p
		st.rotate = (1 - p) * 180
	case timeline.AnimBlur:
		st.opacity = p
		st.blur = (1 - p) * maxAnimBlur
	case timeline.AnimReveal:
		st.reveal = p
	case timeline.AnimBounce:
		st.dy = -(1 - easeOutBounce(p)) * h
	case timeline.AnimPop:
		st.opacity = p
		st.scale = popScale(p)
	}
	return st
}

// exitState mirrors entryState for an element leaving the frame. q runs
// 0 -> 1 as the element approaches its end; directions are mirrored so a
// slide-left exit continues off to the left.
func exitState(el timeline.Element, q float64) animState {
	st := neutralAnim()
	w, h := el.Width, el.Height

	switch el.ExitAnimation {
	case timeline.AnimNone:
	case timeline.AnimFade:
		st.opacity = 1 - q
	case timeline.AnimSlideLeft:
		st.opacity = 1 - q
		st.dx = -q * w
	case timeline.AnimSlideRight:
		st.opacity = 1 - q
		st.dx = q * w
	case timeline.AnimSlideUp:
		st.opacity = 1 - q
		st.dy = -q * h
	case timeline.AnimSlideDown:
		st.opacity = 1 - q
		st.dy = q * h
	case timeline.AnimZoomIn:
		st.opacity = 1 - q
		st.scale = 1 + q
	case timeline.AnimZoomOut:
		st.opacity = 1 - q
		st.scale = 1 - q
	case timeline.AnimRotate:
		st.opacity = 1 - q
		st.rotate = q * 180
	case timeline.AnimBlur:
		st.opacity = 1 - q
		st.blur = q * maxAnimBlur
	case timeline.AnimReveal:
		st.reveal = 1 - q
	case timeline.AnimBounce:
		st.dy = -(1 - easeOutBounce(1-q)) * h
	case timeline.AnimPop:
		st.opacity = 1 - q
		st.scale = popScale(1 - q)
	}
	return st
}

// popScale overshoots to 110% before settling at 100%.
func popScale(p float64) float64 {
	if p < 0.8 {
		return p / 0.8 * 1.1
	}
	return 1.1 - 0.1*(p-0.8)/0.2
}
