package app

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/motion"
)

// Submitter receives the commands a session detects.
type Submitter interface {
	SubmitGesture(gesture string, confidence float64, at time.Time) control.Outcome
	SubmitClick(target string, confidence float64, at time.Time) control.Outcome
}

// SessionConfig holds every detector setting a session needs.
type SessionConfig struct {
	Confidences gesture.Confidences
	Thresholds  gesture.Thresholds
	Stabilizer  gesture.StabilizerConfig
	Scroll      motion.VelocityConfig
	Swipe       motion.VelocityConfig
	Click       motion.ClickConfig
	// ClickStrategy is empty when clicking is off.
	ClickStrategy motion.ClickStrategy
	// ScrollWhileClicking keeps scroll and swipe live while the hand is pinching or pointing.
	ScrollWhileClicking bool
}

// DefaultSessionConfig returns the stock detector settings with pinch clicking.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Confidences:   gesture.DefaultConfidences(),
		Thresholds:    gesture.DefaultThresholds(),
		Stabilizer:    gesture.DefaultStabilizerConfig(),
		Scroll:        motion.DefaultScrollConfig(),
		Swipe:         motion.DefaultSwipeConfig(),
		Click:         motion.DefaultClickConfig(),
		ClickStrategy: motion.StrategyPinch,
	}
}

// Session runs the gesture side of the engine for one enable period. It classifies
// each frame, stabilizes poses into gestures, tracks palm velocity for scroll and
// swipe, and drives the click strategy. Frames are processed one at a time in
// arrival order.
type Session struct {
	config SessionConfig
	out    Submitter
	logger *slog.Logger

	mu         sync.Mutex
	classifier *gesture.Classifier
	stabilizer *gesture.Stabilizer
	scroll     *motion.VelocityDetector
	swipe      *motion.VelocityDetector
	clicker    motion.Clicker
	frames     int
	closed     bool
}

// NewSession builds a session submitting to out. hit resolves click targets; with
// the pinch strategy and no hit tester, clicking is disabled.
func NewSession(config SessionConfig, out Submitter, hit motion.HitTester, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		config:     config,
		out:        out,
		logger:     logger.With("component", "session"),
		classifier: gesture.NewClassifier(config.Confidences, config.Thresholds),
		stabilizer: gesture.NewStabilizer(config.Stabilizer),
		scroll:     motion.NewScrollDetector(config.Scroll, nil),
		swipe:      motion.NewSwipeDetector(config.Swipe, nil),
	}
	if config.ClickStrategy != "" {
		clicker, err := motion.NewClicker(config.ClickStrategy, config.Click, hit, s.classifier)
		if err != nil {
			s.logger.Warn("clicking disabled", "strategy", string(config.ClickStrategy), "error", err)
		} else {
			s.clicker = clicker
		}
	}
	return s
}

// HandleFrame processes one frame. A frame without a complete hand breaks any held
// pose and resets the motion detectors.
func (s *Session) HandleFrame(f detector.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.frames++
	if f.At.IsZero() {
		f.At = time.Now()
	}

	if !f.Complete() {
		s.stabilizer.Observe(gesture.Analysis{}, f.At)
		s.scroll.Update(nil, f.At, false)
		s.swipe.Update(nil, f.At, false)
		if s.clicker != nil {
			s.clicker.Update(nil, f.At, false)
		}
		return
	}

	points := f.Points
	confidence := f.Score
	if confidence <= 0 {
		confidence = 1
	}

	analysis := s.classifier.Classify(points).Capped(f.Score)
	if ev, ok := s.stabilizer.Observe(analysis, f.At); ok {
		s.logger.Debug("gesture", "label", string(ev.Label), "confidence", ev.Confidence)
		s.out.SubmitGesture(string(ev.Label), ev.Confidence, ev.At)
	}

	gate := s.classifier.IsHandOpen(points)
	if !s.config.ScrollWhileClicking && s.clickPose(points) {
		gate = false
	}
	if dir, ok := s.scroll.Update(points, f.At, gate); ok {
		s.submitMotion(scrollGesture(dir), confidence, f.At)
	}
	if dir, ok := s.swipe.Update(points, f.At, gate); ok {
		s.submitMotion(swipeGesture(dir, s.config.Click.MirrorX), confidence, f.At)
	}

	if s.clicker != nil {
		if c, ok := s.clicker.Update(points, f.At, true); ok {
			s.logger.Debug("click", "target", c.Target, "x", c.X, "y", c.Y)
			s.out.SubmitClick(c.Target, confidence, c.At)
		}
	}
}

func (s *Session) submitMotion(name string, confidence float64, at time.Time) {
	if name == "" {
		return
	}
	s.logger.Debug("motion", "gesture", name)
	s.out.SubmitGesture(name, confidence, at)
}

// clickPose reports whether the hand is in the pose of the active click strategy.
func (s *Session) clickPose(points []detector.Point3D) bool {
	switch {
	case s.clicker == nil:
		return false
	case s.config.ClickStrategy == motion.StrategyPoint:
		return s.classifier.IsPointing(points)
	default:
		return detector.Distance2D(points[detector.ThumbTip], points[detector.IndexTip]) < s.config.Click.PinchThreshold
	}
}

func scrollGesture(dir motion.Direction) string {
	switch dir {
	case motion.Up:
		return control.GestureScrollUp
	case motion.Down:
		return control.GestureScrollDown
	}
	return ""
}

// swipeGesture names a swipe from the user's point of view. With a mirrored
// preview the image X axis runs opposite to the user's left and right.
func swipeGesture(dir motion.Direction, mirrored bool) string {
	if mirrored {
		switch dir {
		case motion.Left:
			dir = motion.Right
		case motion.Right:
			dir = motion.Left
		}
	}
	switch dir {
	case motion.Left:
		return control.GestureSwipeLeft
	case motion.Right:
		return control.GestureSwipeRight
	}
	return ""
}

// Cursor returns the click cursor position in screen coordinates.
func (s *Session) Cursor() (x, y float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clicker == nil {
		return 0, 0, false
	}
	return s.clicker.Cursor()
}

// Frames returns the number of frames handled.
func (s *Session) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Reset clears every rolling and stability state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.stabilizer.Reset()
	s.scroll.Reset()
	s.swipe.Reset()
	if s.clicker != nil {
		s.clicker.Reset()
	}
}

// Close resets the session and ignores all later frames.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.resetLocked()
	s.closed = true
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
