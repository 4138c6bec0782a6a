// Package store owns the mutable state of a composition: the element list,
// tracks, selection, playhead and composition duration. All mutation goes
// through its methods, which snapshot the element list onto a bounded
// undo/redo history and notify registered listeners. Nothing else in the
// program holds a mutable reference to the element list.
package store

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/baileyeubanks/coedit/internal/timeline"
)

var (
	ErrElementNotFound = errors.New("element not found")
	ErrElementLocked   = errors.New("element is locked")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
)

// DefaultHistoryDepth bounds the undo stack when no depth is configured.
const DefaultHistoryDepth = 50

// DuplicateOffset is the spatial nudge applied to duplicated elements so
// they do not sit invisibly on top of their originals.
const DuplicateOffset = 24.0

// Store is the owned application state object. The zero value is not
// usable; construct with New.
type Store struct {
	mu sync.Mutex

	elements []timeline.Element
	tracks   []timeline.Track
	duration float64
	playhead float64

	selection map[string]struct{}

	undo         [][]timeline.Element
	redo         [][]timeline.Element
	historyDepth int
	inGesture    bool
	gestureBase  []timeline.Element

	listeners []func()
}

// New creates an empty store with the given undo depth.
func New(historyDepth int) *Store {
	if historyDepth <= 0 {
		historyDepth = DefaultHistoryDepth
	}
	return &Store{
		selection:    make(map[string]struct{}),
		historyDepth: historyDepth,
	}
}

// AddListener registers a callback invoked after every successful
// mutation. Callbacks run outside the store lock.
func (s *Store) AddListener(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// snapshot pushes the current element list onto the undo stack unless it
// value-equals the most recent entry. Callers must hold the lock.
func (s *Store) snapshot() {
	if s.inGesture {
		return
	}
	snap := timeline.CloneElements(s.elements)
	if n := len(s.undo); n > 0 && reflect.DeepEqual(s.undo[n-1], snap) {
		return
	}
	s.undo = append(s.undo, snap)
	if len(s.undo) > s.historyDepth {
		s.undo = s.undo[1:]
	}
	s.redo = nil
}

// Elements returns a deep copy of the element list in paint order.
func (s *Store) Elements() []timeline.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return timeline.CloneElements(s.elements)
}

// Element returns a copy of a single element by id.
func (s *Store) Element(id string) (timeline.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.elements {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return timeline.Element{}, fmt.Errorf("%w: %s", ErrElementNotFound, id)
}

// Tracks returns a copy of the track list.
func (s *Store) Tracks() []timeline.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]timeline.Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Duration returns the composition duration in seconds.
func (s *Store) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Playhead returns the current playhead position.
func (s *Store) Playhead() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playhead
}

// SetPlayhead moves the playhead. It does not touch history; scrubbing is
// not an edit.
func (s *Store) SetPlayhead(t float64) {
	s.mu.Lock()
	if t < 0 {
		t = 0
	}
	s.playhead = t
	s.mu.Unlock()
	s.notify()
}

// SetElements replaces the whole element list. This is the document load
// path; it resets history.
func (s *Store) SetElements(elements []timeline.Element) {
	s.mu.Lock()
	s.elements = timeline.CloneElements(elements)
	for i := range s.elements {
		s.elements[i].Normalize()
	}
	s.undo = nil
	s.redo = nil
	s.selection = make(map[string]struct{})
	s.mu.Unlock()
	s.notify()
}

// SetTracks replaces the track list.
func (s *Store) SetTracks(tracks []timeline.Track) {
	s.mu.Lock()
	s.tracks = make([]timeline.Track, len(tracks))
	copy(s.tracks, tracks)
	s.mu.Unlock()
	s.notify()
}

// SetDuration sets the composition duration.
func (s *Store) SetDuration(d float64) {
	s.mu.Lock()
	if d < 0 {
		d = 0
	}
	s.duration = d
	s.mu.Unlock()
	s.notify()
}

// Add appends an element to the top of the paint order.
func (s *Store) Add(e timeline.Element) {
	s.mu.Lock()
	s.snapshot()
	e.Normalize()
	s.elements = append(s.elements, e.Clone())
	s.mu.Unlock()
	s.notify()
}

// AddTrack appends a track row.
func (s *Store) AddTrack(tr timeline.Track) {
	s.mu.Lock()
	s.tracks = append(s.tracks, tr)
	s.mu.Unlock()
	s.notify()
}

// Update merges a patch into the element with the given id. An empty patch
// leaves the store, including its history, untouched.
func (s *Store) Update(id string, p timeline.Patch) error {
	if p.IsEmpty() {
		return nil
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	// A locked element only accepts the patch that unlocks it.
	if s.elements[idx].Locked && (p.Locked == nil || *p.Locked) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrElementLocked, id)
	}
	s.snapshot()
	timeline.Apply(&s.elements[idx], p)
	s.mu.Unlock()
	s.notify()
	return nil
}

// Delete removes elements by identity and drops their ids from the
// selection set. Unknown ids are ignored; a locked target rejects the
// whole call without removing anything.
func (s *Store) Delete(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	for _, id := range ids {
		if idx := s.indexOf(id); idx >= 0 && s.elements[idx].Locked {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrElementLocked, id)
		}
	}
	s.snapshot()
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
		delete(s.selection, id)
	}
	kept := s.elements[:0]
	for _, e := range s.elements {
		if _, gone := drop[e.ID]; !gone {
			kept = append(kept, e)
		}
	}
	s.elements = kept
	s.mu.Unlock()
	s.notify()
	return nil
}

// Duplicate clones elements by id, regenerating identities and offsetting
// the copies so they are visually distinguishable. It returns the new ids
// in input order.
func (s *Store) Duplicate(ids ...string) []string {
	s.mu.Lock()
	s.snapshot()
	newIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		idx := s.indexOf(id)
		if idx < 0 {
			continue
		}
		dup := s.elements[idx].Clone()
		dup.ID = uuid.NewString()
		dup.X += DuplicateOffset
		dup.Y += DuplicateOffset
		s.elements = append(s.elements, dup)
		newIDs = append(newIDs, dup.ID)
	}
	s.mu.Unlock()
	s.notify()
	return newIDs
}

// Replace swaps one element for an ordered run of replacements in a single
// history entry. Used by split and region materialization, which must be
// atomic with respect to undo.
func (s *Store) Replace(id string, replacements []timeline.Element) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	s.snapshot()
	delete(s.selection, id)

	out := make([]timeline.Element, 0, len(s.elements)-1+len(replacements))
	out = append(out, s.elements[:idx]...)
	for _, r := range replacements {
		r.Normalize()
		out = append(out, r.Clone())
	}
	out = append(out, s.elements[idx+1:]...)
	s.elements = out
	s.mu.Unlock()
	s.notify()
	return nil
}

// Select replaces the selection set.
func (s *Store) Select(ids ...string) {
	s.mu.Lock()
	s.selection = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if s.indexOf(id) >= 0 {
			s.selection[id] = struct{}{}
		}
	}
	s.mu.Unlock()
	s.notify()
}

// Selection returns the selected element ids.
func (s *Store) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.selection))
	for id := range s.selection {
		out = append(out, id)
	}
	return out
}

// Undo restores the most recent snapshot.
func (s *Store) Undo() error {
	s.mu.Lock()
	if len(s.undo) == 0 {
		s.mu.Unlock()
		return ErrNothingToUndo
	}
	s.redo = append(s.redo, timeline.CloneElements(s.elements))
	last := len(s.undo) - 1
	s.elements = s.undo[last]
	s.undo = s.undo[:last]
	s.pruneSelection()
	s.mu.Unlock()
	s.notify()
	return nil
}

// Redo re-applies the most recently undone snapshot.
func (s *Store) Redo() error {
	s.mu.Lock()
	if len(s.redo) == 0 {
		s.mu.Unlock()
		return ErrNothingToRedo
	}
	s.undo = append(s.undo, timeline.CloneElements(s.elements))
	last := len(s.redo) - 1
	s.elements = s.redo[last]
	s.redo = s.redo[:last]
	s.pruneSelection()
	s.mu.Unlock()
	s.notify()
	return nil
}

// BeginGesture opens a drag transaction: subsequent Preview calls mutate
// elements without recording history, and EndGesture commits the whole
// gesture as one undo entry.
func (s *Store) BeginGesture() {
	s.mu.Lock()
	if !s.inGesture {
		s.inGesture = true
		s.gestureBase = timeline.CloneElements(s.elements)
	}
	s.mu.Unlock()
}

// Preview applies a patch inside an open gesture without touching history.
// Outside a gesture it behaves like Update.
func (s *Store) Preview(id string, p timeline.Patch) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	if s.elements[idx].Locked && (p.Locked == nil || *p.Locked) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrElementLocked, id)
	}
	if !s.inGesture {
		s.snapshot()
	}
	timeline.Apply(&s.elements[idx], p)
	s.mu.Unlock()
	s.notify()
	return nil
}

// EndGesture closes the drag transaction, recording the pre-gesture state
// as a single undo entry. A gesture that changed nothing records nothing.
func (s *Store) EndGesture() {
	s.mu.Lock()
	if !s.inGesture {
		s.mu.Unlock()
		return
	}
	s.inGesture = false
	base := s.gestureBase
	s.gestureBase = nil
	if !reflect.DeepEqual(base, s.elements) {
		s.undo = append(s.undo, base)
		if len(s.undo) > s.historyDepth {
			s.undo = s.undo[1:]
		}
		s.redo = nil
	}
	s.mu.Unlock()
	s.notify()
}

// CancelGesture abandons the drag transaction and restores the
// pre-gesture element list.
func (s *Store) CancelGesture() {
	s.mu.Lock()
	if !s.inGesture {
		s.mu.Unlock()
		return
	}
	s.inGesture = false
	s.elements = s.gestureBase
	s.gestureBase = nil
	s.mu.Unlock()
	s.notify()
}

func (s *Store) indexOf(id string) int {
	for i, e := range s.elements {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) pruneSelection() {
	for id := range s.selection {
		if s.indexOf(id) < 0 {
			delete(s.selection, id)
		}
	}
}
