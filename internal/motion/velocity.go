// Package motion derives continuous hand gestures (scroll, swipe, click) from a rolling
// window of landmark positions. Every detector is independent and keeps its own state.
package motion

import (
	"math"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// Direction is the direction of a velocity gesture.
type Direction string

const (
	NoDirection Direction = ""
	Up          Direction = "up"
	Down        Direction = "down"
	Left        Direction = "left"
	Right       Direction = "right"
)

// Axis selects which palm coordinate a velocity detector follows.
type Axis int

const (
	// Horizontal follows X; positive velocity is Right.
	Horizontal Axis = iota
	// Vertical follows Y; image Y grows downward so negative velocity is Up.
	Vertical
)

// VelocityConfig tunes a velocity detector.
type VelocityConfig struct {
	// SmoothingWindow is the number of recent samples the velocity is measured over.
	// The history holds twice as many.
	SmoothingWindow int
	// Threshold is the minimum speed in normalized units per second.
	Threshold float64
	// Sensitivity scales the measured velocity before the threshold check.
	Sensitivity float64
	// StabilityDuration is how long one direction must persist above threshold before firing.
	StabilityDuration time.Duration
	// Cooldown is the minimum time between two fires of this detector.
	Cooldown time.Duration
}

// DefaultScrollConfig returns settings for vertical palm scrolling.
func DefaultScrollConfig() VelocityConfig {
	return VelocityConfig{
		SmoothingWindow:   5,
		Threshold:         0.35,
		Sensitivity:       1.0,
		StabilityDuration: 80 * time.Millisecond,
		Cooldown:          400 * time.Millisecond,
	}
}

// DefaultSwipeConfig returns settings for horizontal swipes, which must be faster and
// fire less often than scrolls.
func DefaultSwipeConfig() VelocityConfig {
	return VelocityConfig{
		SmoothingWindow:   5,
		Threshold:         0.9,
		Sensitivity:       1.0,
		StabilityDuration: 50 * time.Millisecond,
		Cooldown:          900 * time.Millisecond,
	}
}

type sample struct {
	v  float64
	at time.Time
}

// history is a bounded ring of samples; the oldest is evicted first.
type history struct {
	buf   []sample
	limit int
}

func newHistory(limit int) history {
	return history{buf: make([]sample, 0, limit), limit: limit}
}

func (h *history) push(s sample) {
	if len(h.buf) == h.limit {
		copy(h.buf, h.buf[1:])
		h.buf = h.buf[:h.limit-1]
	}
	h.buf = append(h.buf, s)
}

func (h *history) reset() {
	h.buf = h.buf[:0]
}

func (h *history) len() int {
	return len(h.buf)
}

// velocity measures change per second across the last window samples.
func (h *history) velocity(window int) float64 {
	n := len(h.buf)
	if n < 2 {
		return 0
	}
	first := h.buf[max(n-window, 0)]
	last := h.buf[n-1]
	elapsed := last.at.Sub(first.at).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return (last.v - first.v) / elapsed
}

// VelocityDetector fires a direction when the palm center moves fast enough along one axis
// for long enough. Scroll and swipe are two configurations of it.
type VelocityDetector struct {
	axis   Axis
	config VelocityConfig
	onFire func(Direction, float64)

	mu           sync.Mutex
	hist         history
	lastVelocity float64
	lastFire     time.Time
	stableDir    Direction
	stableSince  time.Time
}

// NewVelocityDetector creates a detector for the given axis. onFire may be nil.
func NewVelocityDetector(axis Axis, config VelocityConfig, onFire func(Direction, float64)) *VelocityDetector {
	if config.SmoothingWindow < 2 {
		config.SmoothingWindow = 2
	}
	if config.Sensitivity == 0 {
		config.Sensitivity = 1
	}
	return &VelocityDetector{
		axis:   axis,
		config: config,
		onFire: onFire,
		hist:   newHistory(2 * config.SmoothingWindow),
	}
}

// NewScrollDetector follows vertical palm motion.
func NewScrollDetector(config VelocityConfig, onScroll func(Direction, float64)) *VelocityDetector {
	return NewVelocityDetector(Vertical, config, onScroll)
}

// NewSwipeDetector follows horizontal palm motion.
func NewSwipeDetector(config VelocityConfig, onSwipe func(Direction, float64)) *VelocityDetector {
	return NewVelocityDetector(Horizontal, config, onSwipe)
}

func (d *VelocityDetector) direction(v float64) Direction {
	if math.Abs(v) < d.config.Threshold {
		return NoDirection
	}
	switch {
	case d.axis == Horizontal && v > 0:
		return Right
	case d.axis == Horizontal:
		return Left
	case v < 0:
		return Up
	default:
		return Down
	}
}

// Update feeds one frame. gate is false when the hand is closed or gone, which discards
// all history so a closing hand never completes a gesture.
func (d *VelocityDetector) Update(points []detector.Point3D, at time.Time, gate bool) (Direction, bool) {
	d.mu.Lock()

	if !gate || len(points) < detector.NumLandmarks {
		d.resetLocked()
		d.mu.Unlock()
		return NoDirection, false
	}

	palm := detector.PalmCenter(points)
	coord := palm.X
	if d.axis == Vertical {
		coord = palm.Y
	}
	d.hist.push(sample{v: coord, at: at})

	v := d.hist.velocity(d.config.SmoothingWindow) * d.config.Sensitivity
	d.lastVelocity = v

	dir := d.direction(v)
	if dir == NoDirection {
		d.stableDir = NoDirection
		d.mu.Unlock()
		return NoDirection, false
	}
	if dir != d.stableDir {
		d.stableDir = dir
		d.stableSince = at
	}
	if at.Sub(d.stableSince) < d.config.StabilityDuration {
		d.mu.Unlock()
		return NoDirection, false
	}
	if !d.lastFire.IsZero() && at.Sub(d.lastFire) < d.config.Cooldown {
		d.mu.Unlock()
		return NoDirection, false
	}

	d.lastFire = at
	d.stableDir = NoDirection
	d.stableSince = time.Time{}
	onFire := d.onFire
	d.mu.Unlock()

	if onFire != nil {
		onFire(dir, v)
	}
	return dir, true
}

// Velocity returns the scaled velocity computed by the last Update.
func (d *VelocityDetector) Velocity() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastVelocity
}

// HistoryLen returns the number of samples currently held.
func (d *VelocityDetector) HistoryLen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hist.len()
}

// Reset discards the rolling history and direction tracking. The fire clock survives so a
// reset cannot be used to bypass the cooldown.
func (d *VelocityDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
}

func (d *VelocityDetector) resetLocked() {
	d.hist.reset()
	d.lastVelocity = 0
	d.stableDir = NoDirection
	d.stableSince = time.Time{}
}
