package motion

import (
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// HitTester resolves a screen position to the clickable element under it.
type HitTester interface {
	ElementAt(x, y float64) (id string, ok bool)
}

// PoseChecker reports whether a landmark set is an index-finger point.
type PoseChecker interface {
	IsPointing(points []detector.Point3D) bool
}

// ClickStrategy selects how a click is triggered. A session runs exactly one.
type ClickStrategy string

const (
	// StrategyPinch clicks on a thumb-index pinch after dwelling over a target.
	StrategyPinch ClickStrategy = "pinch"
	// StrategyPoint clicks when the hand switches into a pointing pose.
	StrategyPoint ClickStrategy = "point"
)

// ClickConfig tunes cursor mapping and both click strategies.
type ClickConfig struct {
	ScreenWidth  float64
	ScreenHeight float64
	// MirrorX flips the fingertip X before mapping it to the screen.
	MirrorX bool
	// Smoothing is the weight of the previous cursor position in the moving average, in [0,1).
	Smoothing float64
	// PinchThreshold is the thumb-to-index tip distance below which the hand is pinching.
	PinchThreshold float64
	// Dwell is how long one target must stay hovered before a pinch clicks it.
	Dwell time.Duration
	// Cooldown is the minimum time between clicks.
	Cooldown time.Duration
}

// DefaultClickConfig returns settings for a 1080p screen.
func DefaultClickConfig() ClickConfig {
	return ClickConfig{
		ScreenWidth:    1920,
		ScreenHeight:   1080,
		MirrorX:        true,
		Smoothing:      0.5,
		PinchThreshold: 0.05,
		Dwell:          400 * time.Millisecond,
		Cooldown:       800 * time.Millisecond,
	}
}

// Click is a fired click at a screen position.
type Click struct {
	Target string
	X, Y   float64
	At     time.Time
}

// Clicker is the common surface of the click strategies.
type Clicker interface {
	Update(points []detector.Point3D, at time.Time, gate bool) (Click, bool)
	Cursor() (x, y float64, ok bool)
	Reset()
}

// NewClicker builds the clicker for a strategy. Only one strategy exists per session.
func NewClicker(strategy ClickStrategy, config ClickConfig, hit HitTester, poses PoseChecker) (Clicker, error) {
	switch strategy {
	case StrategyPinch, "":
		if hit == nil {
			return nil, fmt.Errorf("pinch click requires a hit tester")
		}
		return NewPinchClick(config, hit), nil
	case StrategyPoint:
		if poses == nil {
			return nil, fmt.Errorf("point click requires a pose checker")
		}
		return NewPointClick(config, hit, poses), nil
	default:
		return nil, fmt.Errorf("unknown click strategy %q", strategy)
	}
}

// cursor maps the index fingertip to screen space with exponential smoothing.
type cursor struct {
	config ClickConfig
	x, y   float64
	valid  bool
}

func (c *cursor) update(tip detector.Point3D) (float64, float64) {
	nx := tip.X
	if c.config.MirrorX {
		nx = 1 - nx
	}
	rawX := nx * c.config.ScreenWidth
	rawY := tip.Y * c.config.ScreenHeight

	if !c.valid {
		c.x, c.y, c.valid = rawX, rawY, true
		return c.x, c.y
	}
	s := c.config.Smoothing
	c.x = s*c.x + (1-s)*rawX
	c.y = s*c.y + (1-s)*rawY
	return c.x, c.y
}

func (c *cursor) reset() {
	c.x, c.y, c.valid = 0, 0, false
}

// PinchClick clicks the hovered target when a pinch is held after a dwell.
type PinchClick struct {
	config ClickConfig
	hit    HitTester

	mu         sync.Mutex
	cursor     cursor
	hovered    string
	hoverSince time.Time
	lastClick  time.Time
}

// NewPinchClick creates a pinch-and-dwell clicker.
func NewPinchClick(config ClickConfig, hit HitTester) *PinchClick {
	return &PinchClick{config: config, hit: hit, cursor: cursor{config: config}}
}

// Update feeds one frame. gate is false when no usable hand is present.
func (p *PinchClick) Update(points []detector.Point3D, at time.Time, gate bool) (Click, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !gate || len(points) < detector.NumLandmarks {
		p.resetLocked()
		return Click{}, false
	}

	x, y := p.cursor.update(points[detector.IndexTip])

	target, ok := p.hit.ElementAt(x, y)
	if !ok {
		target = ""
	}
	if target != p.hovered {
		p.hovered = target
		p.hoverSince = at
	}
	if p.hovered == "" {
		return Click{}, false
	}

	pinching := detector.Distance2D(points[detector.ThumbTip], points[detector.IndexTip]) < p.config.PinchThreshold
	if !pinching || at.Sub(p.hoverSince) < p.config.Dwell {
		return Click{}, false
	}
	if !p.lastClick.IsZero() && at.Sub(p.lastClick) < p.config.Cooldown {
		return Click{}, false
	}

	click := Click{Target: p.hovered, X: x, Y: y, At: at}
	p.lastClick = at
	// Forget the hover so the same dwell cannot click twice.
	p.hovered = ""
	p.hoverSince = time.Time{}
	return click, true
}

// Cursor returns the smoothed cursor position.
func (p *PinchClick) Cursor() (float64, float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor.x, p.cursor.y, p.cursor.valid
}

// Hovered returns the target under the cursor and when hovering began.
func (p *PinchClick) Hovered() (string, time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hovered, p.hoverSince
}

// Reset clears cursor and hover state.
func (p *PinchClick) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

func (p *PinchClick) resetLocked() {
	p.cursor.reset()
	p.hovered = ""
	p.hoverSince = time.Time{}
}

// PointClick clicks on the transition into a pointing pose. It needs no dwell or pinch,
// trading precision for latency.
type PointClick struct {
	config ClickConfig
	hit    HitTester
	poses  PoseChecker

	mu        sync.Mutex
	cursor    cursor
	pointing  bool
	lastClick time.Time
}

// NewPointClick creates a point-transition clicker. hit may be nil, in which case clicks
// carry only coordinates.
func NewPointClick(config ClickConfig, hit HitTester, poses PoseChecker) *PointClick {
	return &PointClick{config: config, hit: hit, poses: poses, cursor: cursor{config: config}}
}

// Update feeds one frame.
func (p *PointClick) Update(points []detector.Point3D, at time.Time, gate bool) (Click, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !gate || len(points) < detector.NumLandmarks {
		p.cursor.reset()
		p.pointing = false
		return Click{}, false
	}

	x, y := p.cursor.update(points[detector.IndexTip])
	pointing := p.poses.IsPointing(points)
	entered := pointing && !p.pointing
	p.pointing = pointing

	if !entered {
		return Click{}, false
	}
	if !p.lastClick.IsZero() && at.Sub(p.lastClick) < p.config.Cooldown {
		return Click{}, false
	}

	click := Click{X: x, Y: y, At: at}
	if p.hit != nil {
		if id, ok := p.hit.ElementAt(x, y); ok {
			click.Target = id
		}
	}
	p.lastClick = at
	return click, true
}

// Cursor returns the smoothed cursor position.
func (p *PointClick) Cursor() (float64, float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor.x, p.cursor.y, p.cursor.valid
}

// Reset clears cursor and pose state.
func (p *PointClick) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cursor.reset()
	p.pointing = false
}
