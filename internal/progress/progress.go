package progress

import (
	"encoding/json"
	"reflect"
	"sync"
	"time"
)

// Stage represents the current stage of an export
type Stage string

const (
	StageInitializing Stage = "initializing"
	StageCompositing  Stage = "compositing"
	StageEncoding     Stage = "encoding"
	StagePublishing   Stage = "publishing"
	StageComplete     Stage = "complete"
	StageError        Stage = "error"
	StageCancelled    Stage = "cancelled"
)

// Event represents a progress event
type Event struct {
	Stage        Stage         `json:"stage"`
	Progress     float64       `json:"progress"`
	Message      string        `json:"message"`
	Timestamp    time.Time     `json:"timestamp"`
	FrameDetails *FrameDetails `json:"frameDetails,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// FrameDetails carries per-frame export progress
type FrameDetails struct {
	FrameNumber int     `json:"frameNumber"`
	TotalFrames int     `json:"totalFrames"`
	FrameTime   float64 `json:"frameTime"`
}

// Tracker manages progress tracking with listener notification
type Tracker struct {
	mu           sync.RWMutex
	stage        Stage
	progress     float64
	message      string
	frameDetails *FrameDetails
	err          error
	listeners    []func(Event)
}

// NewTracker creates a new Tracker instance
func NewTracker() *Tracker {
	return &Tracker{
		stage:     StageInitializing,
		listeners: make([]func(Event), 0),
	}
}

// AddListener adds a new progress event listener
func (t *Tracker) AddListener(listener func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, listener)
}

// RemoveListener removes a progress event listener
func (t *Tracker) RemoveListener(listener func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	listenerPtr := reflect.ValueOf(listener).Pointer()
	for i := range t.listeners {
		if reflect.ValueOf(t.listeners[i]).Pointer() == listenerPtr {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			break
		}
	}
}

// Update updates the progress and notifies all listeners
func (t *Tracker) Update(stage Stage, progress float64, message string) {
	t.mu.Lock()
	t.stage = stage
	t.progress = progress
	t.message = message
	t.mu.Unlock()

	t.notifyListeners(Event{
		Stage:     stage,
		Progress:  progress,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// UpdateFrame updates frame-level progress
func (t *Tracker) UpdateFrame(frameNumber, totalFrames int, frameTime float64) {
	t.mu.Lock()
	t.frameDetails = &FrameDetails{
		FrameNumber: frameNumber,
		TotalFrames: totalFrames,
		FrameTime:   frameTime,
	}
	if totalFrames > 0 {
		t.progress = float64(frameNumber) / float64(totalFrames) * 100
	}
	t.stage = StageCompositing
	event := Event{
		Stage:        t.stage,
		Progress:     t.progress,
		Message:      t.message,
		Timestamp:    time.Now(),
		FrameDetails: t.frameDetails,
	}
	t.mu.Unlock()

	t.notifyListeners(event)
}

// SetError sets an error state and notifies all listeners
func (t *Tracker) SetError(err error) {
	t.mu.Lock()
	t.stage = StageError
	t.err = err
	t.mu.Unlock()

	t.notifyListeners(Event{
		Stage:     StageError,
		Progress:  t.progress,
		Message:   err.Error(),
		Timestamp: time.Now(),
		Error:     err.Error(),
	})
}

// notifyListeners sends an event to all registered listeners
func (t *Tracker) notifyListeners(event Event) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, listener := range t.listeners {
		listener(event)
	}
}

// CurrentState returns the current progress state
func (t *Tracker) CurrentState() Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	event := Event{
		Stage:        t.stage,
		Progress:     t.progress,
		Message:      t.message,
		Timestamp:    time.Now(),
		FrameDetails: t.frameDetails,
	}
	if t.err != nil {
		event.Error = t.err.Error()
	}
	return event
}

// MarshalJSON implements json.Marshaler for Event
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Timestamp: e.Timestamp.Format(time.RFC3339),
		Alias:     (*Alias)(&e),
	})
}

// UnmarshalJSON implements json.Unmarshaler for Event
func (e *Event) UnmarshalJSON(data []byte) error {
	type Alias Event
	aux := &struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, aux.Timestamp)
	if err != nil {
		return err
	}
	e.Timestamp = t
	return nil
}
