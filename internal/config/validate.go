package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/intent"
)

func (c *Config) normalize() error {
	var err error
	if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	if c.Playback.PluginDir, err = expandPath(c.Playback.PluginDir); err != nil {
		return fmt.Errorf("playback.plugin_dir: %w", err)
	}
	if c.Server.StaticDir, err = expandPath(c.Server.StaticDir); err != nil {
		return fmt.Errorf("server.static_dir: %w", err)
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Playback.Backend = strings.ToLower(strings.TrimSpace(c.Playback.Backend))
	c.Motion.ClickStrategy = strings.ToLower(strings.TrimSpace(c.Motion.ClickStrategy))
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validateLog,
		c.validateCamera,
		c.validateGesture,
		c.validateMotion,
		c.validateControl,
		c.validateBindings,
		c.validatePlayback,
		c.validateMQTT,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLog() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q must be debug, info, warn or error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}
	return nil
}

func (c *Config) validateCamera() error {
	if !c.Camera.Enabled {
		return nil
	}
	if c.Camera.IdleFPS <= 0 || c.Camera.ActiveFPS <= 0 {
		return errors.New("camera.idle_fps and camera.active_fps must be positive")
	}
	if c.Camera.MotionThreshold < 0 || c.Camera.MotionThreshold > 100 {
		return errors.New("camera.motion_threshold must be a percentage between 0 and 100")
	}
	return nil
}

func (c *Config) validateGesture() error {
	if c.Gesture.ConfidenceFloor < 0 || c.Gesture.ConfidenceFloor > 1 {
		return errors.New("gesture.confidence_floor must be between 0 and 1")
	}
	if c.Gesture.CooldownMS < 0 {
		return errors.New("gesture.cooldown_ms must not be negative")
	}
	for label, n := range c.Gesture.RequiredFrames {
		if n < 1 {
			return fmt.Errorf("gesture.required_frames.%s must be at least 1", label)
		}
	}
	return nil
}

func (c *Config) validateMotion() error {
	m := c.Motion
	if m.SmoothingWindow < 2 {
		return errors.New("motion.smoothing_window must be at least 2")
	}
	if m.ScrollThreshold <= 0 || m.SwipeThreshold <= 0 {
		return errors.New("motion thresholds must be positive")
	}
	if m.CursorSmoothing < 0 || m.CursorSmoothing >= 1 {
		return errors.New("motion.cursor_smoothing must be in [0,1)")
	}
	if m.ScreenWidth <= 0 || m.ScreenHeight <= 0 {
		return errors.New("motion.screen_width and motion.screen_height must be positive")
	}
	switch m.ClickStrategy {
	case "pinch", "point", "off":
	default:
		return fmt.Errorf("motion.click_strategy %q must be pinch, point or off", m.ClickStrategy)
	}
	return nil
}

func (c *Config) validateControl() error {
	ctl := c.Control
	if ctl.DuplicateWindowMS < 0 || ctl.PriorityWindowMS < 0 || ctl.QuietPeriodMS < 0 || ctl.ToggleCooldownMS < 0 {
		return errors.New("control windows must not be negative")
	}
	if ctl.CommandTimeoutMS <= 0 {
		return errors.New("control.command_timeout_ms must be positive")
	}
	if ctl.VolumeStep < 1 || ctl.VolumeStep > 100 {
		return errors.New("control.volume_step must be between 1 and 100")
	}
	switch intent.ScrollAmount(ctl.GestureScroll) {
	case intent.ScrollSmall, intent.ScrollMedium, intent.ScrollLarge, intent.ScrollPage:
	default:
		return fmt.Errorf("control.gesture_scroll %q must be small, medium, large or page", ctl.GestureScroll)
	}
	return nil
}

// bindable reports whether a gesture may be bound to action.
func bindable(action control.ActionID) bool {
	switch action {
	case control.ActionTogglePlayPause, control.ActionActivateVoice, control.ActionClick:
		return true
	}
	switch intent.Action(action) {
	case intent.Play, intent.Pause, intent.Next, intent.Previous, intent.VolumeUp,
		intent.VolumeDown, intent.ScrollUp, intent.ScrollDown, intent.GoBack:
		return true
	}
	return false
}

func (c *Config) validateBindings() error {
	for gesture, action := range c.Bindings {
		if !bindable(control.ActionID(action)) {
			return fmt.Errorf("bindings.%s: %q cannot be bound to a gesture", gesture, action)
		}
	}
	return nil
}

func (c *Config) validatePlayback() error {
	switch c.Playback.Backend {
	case BackendBridge:
	case BackendPlugin:
		if c.Playback.PluginDir == "" {
			return errors.New("playback.plugin_dir is required for the plugin backend")
		}
		if c.Playback.PluginTimeoutMS <= 0 {
			return errors.New("playback.plugin_timeout_ms must be positive")
		}
	default:
		return fmt.Errorf("playback.backend %q must be bridge or plugin", c.Playback.Backend)
	}
	if c.Playback.DefaultVolume < 0 || c.Playback.DefaultVolume > 100 {
		return errors.New("playback.default_volume must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateMQTT() error {
	if !c.MQTT.Enabled {
		return nil
	}
	if strings.TrimSpace(c.MQTT.Broker) == "" {
		return errors.New("mqtt.broker is required when mqtt is enabled")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return errors.New("mqtt.qos must be 0, 1 or 2")
	}
	return nil
}
