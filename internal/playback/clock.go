// Package playback drives real-time preview: a clock advances the
// playhead from wall time, and a driver renders preview frames through
// the same compositor the exporter uses.
package playback

import (
	"context"
	"sync"
	"time"
)

// DefaultTickInterval paces the preview loop at roughly 30 fps.
const DefaultTickInterval = 33 * time.Millisecond

// Clock turns wall-clock time into composition time. It never assumes
// ticks arrive on schedule: each tick measures the real elapsed time
// since the previous one, so a stalled goroutine drops frames instead
// of slowing the composition down.
type Clock struct {
	mu       sync.Mutex
	playing  bool
	rate     float64
	position float64
	end      float64
	lastTick time.Time

	interval time.Duration
	onTick   func(position float64)
	onStop   func()
	cancel   context.CancelFunc
}

// NewClock creates a stopped clock for a composition of the given
// duration. onTick observes every position change; onStop fires when
// the clock reaches the composition end.
func NewClock(end float64, interval time.Duration, onTick func(float64), onStop func()) *Clock {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Clock{
		rate:     1,
		end:      end,
		interval: interval,
		onTick:   onTick,
		onStop:   onStop,
	}
}

// Play starts the tick loop. Playing an already-playing clock is a
// no-op.
func (c *Clock) Play(ctx context.Context) {
	c.mu.Lock()
	if c.playing {
		c.mu.Unlock()
		return
	}
	c.playing = true
	c.lastTick = time.Now()
	ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	go c.loop(ctx)
}

func (c *Clock) loop(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if c.tick(now) {
				return
			}
		}
	}
}

// tick advances the position by the measured wall delta times the rate.
// It returns true when the clock has reached the end and stopped.
func (c *Clock) tick(now time.Time) bool {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return true
	}
	delta := now.Sub(c.lastTick).Seconds()
	c.lastTick = now
	done := c.advance(delta)
	pos := c.position
	onTick, onStop := c.onTick, c.onStop
	c.mu.Unlock()

	if onTick != nil {
		onTick(pos)
	}
	if done {
		c.Pause()
		if onStop != nil {
			onStop()
		}
	}
	return done
}

// advance moves the position; caller holds the lock. Returns true at
// the composition end.
func (c *Clock) advance(delta float64) bool {
	c.position += delta * c.rate
	if c.position >= c.end {
		c.position = c.end
		return true
	}
	if c.position < 0 {
		c.position = 0
		return c.rate < 0
	}
	return false
}

// Step advances the clock by an explicit delta, bypassing wall time.
// It reports whether the composition end was reached.
func (c *Clock) Step(delta float64) bool {
	c.mu.Lock()
	done := c.advance(delta)
	pos := c.position
	onTick := c.onTick
	c.mu.Unlock()

	if onTick != nil {
		onTick(pos)
	}
	return done
}

// Pause stops the tick loop, keeping the current position.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return
	}
	c.playing = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Seek moves the position, clamped into [0, end].
func (c *Clock) Seek(t float64) {
	c.mu.Lock()
	if t < 0 {
		t = 0
	}
	if t > c.end {
		t = c.end
	}
	c.position = t
	pos := c.position
	onTick := c.onTick
	c.mu.Unlock()

	if onTick != nil {
		onTick(pos)
	}
}

// SetRate changes the playback rate. Negative rates play backwards.
func (c *Clock) SetRate(rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate = rate
}

// SetEnd updates the composition end, clamping the position to it.
func (c *Clock) SetEnd(end float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.end = end
	if c.position > end {
		c.position = end
	}
}

// Position returns the current composition time.
func (c *Clock) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Playing reports whether the tick loop is running.
func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}
