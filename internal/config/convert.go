package config

import (
	"time"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/intent"
	"github.com/ayusman/mudra/internal/motion"
)

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// StabilizerConfig returns the gesture stabilizer settings.
func (c *Config) StabilizerConfig() gesture.StabilizerConfig {
	required := make(map[gesture.Label]int, len(c.Gesture.RequiredFrames))
	for label, n := range c.Gesture.RequiredFrames {
		required[gesture.Label(label)] = n
	}
	return gesture.StabilizerConfig{
		ConfidenceFloor: c.Gesture.ConfidenceFloor,
		RequiredFrames:  required,
		Cooldown:        ms(c.Gesture.CooldownMS),
	}
}

// ScrollConfig returns the vertical velocity detector settings.
func (c *Config) ScrollConfig() motion.VelocityConfig {
	return motion.VelocityConfig{
		SmoothingWindow:   c.Motion.SmoothingWindow,
		Threshold:         c.Motion.ScrollThreshold,
		Sensitivity:       c.Motion.Sensitivity,
		StabilityDuration: ms(c.Motion.ScrollStabilityMS),
		Cooldown:          ms(c.Motion.ScrollCooldownMS),
	}
}

// SwipeConfig returns the horizontal velocity detector settings.
func (c *Config) SwipeConfig() motion.VelocityConfig {
	return motion.VelocityConfig{
		SmoothingWindow:   c.Motion.SmoothingWindow,
		Threshold:         c.Motion.SwipeThreshold,
		Sensitivity:       c.Motion.Sensitivity,
		StabilityDuration: ms(c.Motion.SwipeStabilityMS),
		Cooldown:          ms(c.Motion.SwipeCooldownMS),
	}
}

// ClickConfig returns the cursor and click settings.
func (c *Config) ClickConfig() motion.ClickConfig {
	return motion.ClickConfig{
		ScreenWidth:    c.Motion.ScreenWidth,
		ScreenHeight:   c.Motion.ScreenHeight,
		MirrorX:        c.Motion.MirrorX,
		Smoothing:      c.Motion.CursorSmoothing,
		PinchThreshold: c.Motion.PinchThreshold,
		Dwell:          ms(c.Motion.DwellMS),
		Cooldown:       ms(c.Motion.ClickCooldownMS),
	}
}

// ClickStrategy returns the click strategy, or false when clicking is off.
func (c *Config) ClickStrategy() (motion.ClickStrategy, bool) {
	if c.Motion.ClickStrategy == "off" {
		return "", false
	}
	return motion.ClickStrategy(c.Motion.ClickStrategy), true
}

// ControlConfig returns the engine settings.
func (c *Config) ControlConfig() control.Config {
	bindings := make(control.Bindings, len(c.Bindings))
	for g, a := range c.Bindings {
		bindings[g] = control.ActionID(a)
	}
	return control.Config{
		Arbitrator: control.ArbitratorConfig{
			DuplicateWindow: ms(c.Control.DuplicateWindowMS),
			PriorityWindow:  ms(c.Control.PriorityWindowMS),
		},
		Executor: control.ExecutorConfig{
			ToggleCooldown: ms(c.Control.ToggleCooldownMS),
			VolumeStep:     c.Control.VolumeStep,
			GestureScroll:  intent.ScrollAmount(c.Control.GestureScroll),
			Viewport:       c.Control.Viewport,
		},
		QuietPeriod:    ms(c.Control.QuietPeriodMS),
		CommandTimeout: ms(c.Control.CommandTimeoutMS),
		Bindings:       bindings,
	}
}

// ParserSections returns the extra section phrases for the transcript parser.
func (c *Config) ParserSections() map[string][]string {
	if len(c.Control.Sections) == 0 {
		return nil
	}
	out := make(map[string][]string, len(c.Control.Sections))
	for id, phrases := range c.Control.Sections {
		out[id] = append([]string(nil), phrases...)
	}
	return out
}

// DetectorConfig returns the MediaPipe detector settings.
func (c *Config) DetectorConfig() detector.Config {
	cfg := detector.DefaultConfig()
	cfg.MinConfidence = c.Camera.MinConfidence
	cfg.ScriptPath = c.Camera.ScriptPath
	cfg.PythonPath = c.Camera.PythonPath
	return cfg
}

// BridgeTimeout returns the host bridge request timeout.
func (c *Config) BridgeTimeout() time.Duration {
	return ms(c.Server.BridgeTimeoutMS)
}

// PluginTimeout returns the player plugin timeout.
func (c *Config) PluginTimeout() time.Duration {
	return ms(c.Playback.PluginTimeoutMS)
}

// ActiveHold returns how long the camera stays at the active frame rate after motion.
func (c *Config) ActiveHold() time.Duration {
	return ms(c.Camera.ActiveHoldMS)
}
