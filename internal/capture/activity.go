package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	blurKernel    = 21
	diffThreshold = 25
)

// FrameDiff measures how much of the image changed since the previous frame.
// Frames are converted to grayscale and blurred before differencing so sensor
// noise does not count as movement.
type FrameDiff struct {
	mu   sync.Mutex
	prev gocv.Mat
	seen bool
}

// NewFrameDiff returns a FrameDiff with no baseline.
func NewFrameDiff() *FrameDiff {
	return &FrameDiff{prev: gocv.NewMat()}
}

// Change returns the percentage of pixels (0..100) that differ from the previous
// frame. The first frame after construction or Reset only sets the baseline and
// reports 0.
func (f *FrameDiff) Change(frame *gocv.Mat) float64 {
	if frame == nil || frame.Empty() {
		return 0
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)

	if !f.seen || f.prev.Rows() != blurred.Rows() || f.prev.Cols() != blurred.Cols() {
		blurred.CopyTo(&f.prev)
		f.seen = true
		return 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, f.prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, diffThreshold, 255, gocv.ThresholdBinary)

	total := mask.Rows() * mask.Cols()
	blurred.CopyTo(&f.prev)
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total) * 100
}

// Reset drops the baseline frame.
func (f *FrameDiff) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.release()
}

// Close releases the baseline frame. The FrameDiff may be reused afterwards.
func (f *FrameDiff) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.release()
}

func (f *FrameDiff) release() {
	if !f.prev.Empty() {
		f.prev.Close()
		f.prev = gocv.NewMat()
	}
	f.seen = false
}

// GateConfig controls when the pipeline switches between idle and active sampling.
type GateConfig struct {
	// Threshold is the percentage of changed pixels that counts as movement.
	Threshold float64
	IdleFPS   int
	ActiveFPS int
	// Hold is how long the gate stays active after the last movement.
	Hold time.Duration
}

// DefaultGateConfig samples at 5 fps when idle, 15 fps when a hand is moving, and
// stays active for two seconds after movement stops.
func DefaultGateConfig() GateConfig {
	return GateConfig{Threshold: 1.0, IdleFPS: 5, ActiveFPS: 15, Hold: 2 * time.Second}
}

// ActivityGate turns per-frame change measurements into an idle/active state.
// Landmark detection only runs while the gate is active.
type ActivityGate struct {
	mu        sync.Mutex
	config    GateConfig
	active    bool
	lastMoved time.Time
}

// NewActivityGate returns an idle gate.
func NewActivityGate(config GateConfig) *ActivityGate {
	def := DefaultGateConfig()
	if config.IdleFPS <= 0 {
		config.IdleFPS = def.IdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = def.ActiveFPS
	}
	if config.Threshold < 0 {
		config.Threshold = def.Threshold
	}
	return &ActivityGate{config: config}
}

// Observe records the change percentage of a frame captured at the given time.
// It reports whether the gate is active after the observation and whether the
// state flipped.
func (g *ActivityGate) Observe(change float64, at time.Time) (active, switched bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	was := g.active
	if change > g.config.Threshold {
		g.lastMoved = at
		g.active = true
	} else if g.active && at.Sub(g.lastMoved) > g.config.Hold {
		g.active = false
	}
	return g.active, g.active != was
}

// Active reports whether the gate is currently active.
func (g *ActivityGate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// FPS returns the sampling rate for the current state.
func (g *ActivityGate) FPS() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return g.config.ActiveFPS
	}
	return g.config.IdleFPS
}

// SetThreshold changes the movement threshold. Negative values are ignored.
func (g *ActivityGate) SetThreshold(threshold float64) {
	if threshold < 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.config.Threshold = threshold
}

// Reset returns the gate to idle.
func (g *ActivityGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = false
	g.lastMoved = time.Time{}
}
