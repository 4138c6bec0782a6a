package compositor

import "github.com/baileyeubanks/coedit/internal/timeline"

// Ease evaluates an easing curve at progress p in [0, 1]. Unknown kinds
// fall back to linear.
func Ease(kind timeline.EasingKind, p float64) float64 {
	p = timeline.Clamp(p, 0, 1)

	switch kind {
	case timeline.EaseIn:
		return p * p
	case timeline.EaseOut:
		return 1 - (1-p)*(1-p)
	case timeline.EaseInOut:
		if p < 0.5 {
			return 2 * p * p
		}
		q := -2*p + 2
		return 1 - q*q/2
	case timeline.EaseBounce:
		return easeOutBounce(p)
	case timeline.EaseLinear:
		return p
	}
	return p
}

// easeOutBounce is the standard four-segment bounce polynomial.
func easeOutBounce(p float64) float64 {
	const (
		n1 = 7.5625
		d1 = 2.75
	)

	switch {
	case p < 1/d1:
		return n1 * p * p
	case p < 2/d1:
		p -= 1.5 / d1
		return n1*p*p + 0.75
	case p < 2.5/d1:
		p -= 2.25 / d1
		return n1*p*p + 0.9375
	default:
		p -= 2.625 / d1
		return n1*p*p + 0.984375
	}
}
