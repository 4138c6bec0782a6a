package editor

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/baileyeubanks/coedit/internal/timeline"
)

// Split cuts an element in two at time t, which must fall strictly inside
// the element's window with at least MinDuration on either side. The right
// half is a clone with a fresh identity; for media its trim window
// advances so the source content stays continuous across the cut, and for
// text and subtitle elements the content partitions between the halves.
// The whole split is one history entry. It returns the right half's id.
func (e *Engine) Split(elementID string, t float64) (string, error) {
	el, err := e.store.Element(elementID)
	if err != nil {
		return "", err
	}
	if el.Locked {
		return "", fmt.Errorf("%w: %s", ErrLockedElement, elementID)
	}

	offset := t - el.StartTime
	if offset <= 0 || offset >= el.Duration {
		return "", fmt.Errorf("%w: t=%.3f window=[%.3f,%.3f)", ErrSplitOutOfRange, t, el.StartTime, el.EndTime())
	}
	if offset < timeline.MinDuration || el.Duration-offset < timeline.MinDuration {
		return "", fmt.Errorf("%w: t=%.3f", ErrSplitTooSmall, t)
	}

	left := el.Clone()
	left.Duration = offset

	right := el.Clone()
	right.ID = uuid.NewString()
	right.StartTime = t
	right.Duration = el.Duration - offset

	if el.IsMedia() {
		rate := el.PlaybackRate
		if rate <= 0 {
			rate = 1
		}
		right.TrimIn = el.TrimIn + offset*rate
	}

	switch el.Type {
	case timeline.TypeText:
		runes := []rune(el.Text)
		cut := int(math.Round(float64(len(runes)) * offset / el.Duration))
		cut = int(timeline.Clamp(float64(cut), 0, float64(len(runes))))
		left.Text = string(runes[:cut])
		right.Text = string(runes[cut:])
	case timeline.TypeSubtitle:
		var leftCues, rightCues []timeline.Cue
		for _, c := range el.Cues {
			if c.StartTime < t {
				leftCues = append(leftCues, c)
			} else {
				rightCues = append(rightCues, c)
			}
		}
		left.Cues = leftCues
		right.Cues = rightCues
	case timeline.TypeShape, timeline.TypeCircle, timeline.TypeImage, timeline.TypeVideo, timeline.TypeAudio:
	}

	if err := e.store.Replace(elementID, []timeline.Element{left, right}); err != nil {
		return "", err
	}

	slog.Debug("element split", "element", elementID, "at", t, "right", right.ID)
	return right.ID, nil
}

// Merge rejoins two halves produced by Split. The elements must be
// horizontally adjacent on the same track and of the same type; the merged
// element keeps the left half's identity and trim-in, spans both windows,
// and concatenates text and cues.
func (e *Engine) Merge(leftID, rightID string) error {
	left, err := e.store.Element(leftID)
	if err != nil {
		return err
	}
	right, err := e.store.Element(rightID)
	if err != nil {
		return err
	}

	if left.Locked {
		return fmt.Errorf("%w: %s", ErrLockedElement, leftID)
	}
	if right.Locked {
		return fmt.Errorf("%w: %s", ErrLockedElement, rightID)
	}

	if left.Type != right.Type || left.TrackID != right.TrackID {
		return fmt.Errorf("%w: %s and %s", ErrNotAdjacent, leftID, rightID)
	}
	if math.Abs(right.StartTime-left.EndTime()) > adjacencyEpsilon {
		return fmt.Errorf("%w: gap between %s and %s", ErrNotAdjacent, leftID, rightID)
	}

	merged := left.Clone()
	merged.Duration = left.Duration + right.Duration

	switch left.Type {
	case timeline.TypeText:
		merged.Text = left.Text + right.Text
	case timeline.TypeSubtitle:
		merged.Cues = append(append([]timeline.Cue{}, left.Cues...), right.Cues...)
	case timeline.TypeShape, timeline.TypeCircle, timeline.TypeImage, timeline.TypeVideo, timeline.TypeAudio:
	}

	// one history entry for the replace-and-delete pair
	e.store.BeginGesture()
	if err := e.store.Replace(leftID, []timeline.Element{merged}); err != nil {
		e.store.CancelGesture()
		return err
	}
	if err := e.store.Delete(rightID); err != nil {
		e.store.CancelGesture()
		return err
	}
	e.store.EndGesture()
	return nil
}
