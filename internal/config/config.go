// Package config loads mudra's TOML configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains the HTTP listener settings.
type Server struct {
	Bind      string `toml:"bind"`
	StaticDir string `toml:"static_dir"`
	// BridgeTimeoutMS bounds one request to the connected host page.
	BridgeTimeoutMS int `toml:"bridge_timeout_ms"`
}

// Store contains the command journal location.
type Store struct {
	Path string `toml:"path"`
	// HistoryLimit is how many journal rows are kept.
	HistoryLimit int `toml:"history_limit"`
}

// Log contains log output settings.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Camera contains the optional local camera pipeline.
type Camera struct {
	Enabled         bool    `toml:"enabled"`
	Device          int     `toml:"device"`
	IdleFPS         int     `toml:"idle_fps"`
	ActiveFPS       int     `toml:"active_fps"`
	MotionThreshold float64 `toml:"motion_threshold"`
	// ActiveHoldMS keeps the active frame rate this long after motion stops.
	ActiveHoldMS  int     `toml:"active_hold_ms"`
	MinConfidence float64 `toml:"min_confidence"`
	ScriptPath    string  `toml:"script_path"`
	PythonPath    string  `toml:"python_path"`
}

// Gesture contains classifier and stabilizer tunables.
type Gesture struct {
	ConfidenceFloor float64        `toml:"confidence_floor"`
	CooldownMS      int            `toml:"cooldown_ms"`
	RequiredFrames  map[string]int `toml:"required_frames"`
}

// Motion contains the continuous-motion detector tunables.
type Motion struct {
	SmoothingWindow        int     `toml:"smoothing_window"`
	Sensitivity            float64 `toml:"sensitivity"`
	ScrollThreshold        float64 `toml:"scroll_threshold"`
	ScrollStabilityMS      int     `toml:"scroll_stability_ms"`
	ScrollCooldownMS       int     `toml:"scroll_cooldown_ms"`
	SwipeThreshold         float64 `toml:"swipe_threshold"`
	SwipeStabilityMS       int     `toml:"swipe_stability_ms"`
	SwipeCooldownMS        int     `toml:"swipe_cooldown_ms"`
	ClickStrategy          string  `toml:"click_strategy"`
	ClickCooldownMS        int     `toml:"click_cooldown_ms"`
	DwellMS                int     `toml:"dwell_ms"`
	PinchThreshold         float64 `toml:"pinch_threshold"`
	CursorSmoothing        float64 `toml:"cursor_smoothing"`
	ScreenWidth            float64 `toml:"screen_width"`
	ScreenHeight           float64 `toml:"screen_height"`
	MirrorX                bool    `toml:"mirror_x"`
	ScrollWhileClickActive bool    `toml:"scroll_while_click_active"`
}

// Control contains arbitration and command body settings.
type Control struct {
	DuplicateWindowMS int    `toml:"duplicate_window_ms"`
	PriorityWindowMS  int    `toml:"priority_window_ms"`
	QuietPeriodMS     int    `toml:"quiet_period_ms"`
	ToggleCooldownMS  int    `toml:"toggle_cooldown_ms"`
	CommandTimeoutMS  int    `toml:"command_timeout_ms"`
	VolumeStep        int    `toml:"volume_step"`
	Viewport          int    `toml:"viewport"`
	GestureScroll     string `toml:"gesture_scroll"`
	// Sections adds spoken phrases for page sections, keyed by section id.
	Sections map[string][]string `toml:"sections"`
}

// Playback selects the player backend.
type Playback struct {
	// Backend is "bridge" for the connected host page or "plugin" for a player plugin.
	Backend         string `toml:"backend"`
	PluginDir       string `toml:"plugin_dir"`
	Plugin          string `toml:"plugin"`
	PluginTimeoutMS int    `toml:"plugin_timeout_ms"`
	DefaultVolume   int    `toml:"default_volume"`
}

// MQTT contains the optional broker connection.
type MQTT struct {
	Enabled     bool   `toml:"enabled"`
	Broker      string `toml:"broker"`
	ClientID    string `toml:"client_id"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	TopicPrefix string `toml:"topic_prefix"`
	QoS         int    `toml:"qos"`
}

// Config encapsulates all configuration values.
//
// Sections:
//   - Server: HTTP API and host bridge
//   - Store: SQLite command journal
//   - Log: level and format
//   - Camera: optional local camera and MediaPipe pipeline
//   - Gesture, Motion: detector tunables, overridable at runtime through settings
//   - Control: arbitration windows and command bodies
//   - Bindings: gesture name to action
//   - Playback: player backend
//   - MQTT: remote transcripts and command events
type Config struct {
	Server   Server            `toml:"server"`
	Store    Store             `toml:"store"`
	Log      Log               `toml:"log"`
	Camera   Camera            `toml:"camera"`
	Gesture  Gesture           `toml:"gesture"`
	Motion   Motion            `toml:"motion"`
	Control  Control           `toml:"control"`
	Bindings map[string]string `toml:"bindings"`
	Playback Playback          `toml:"playback"`
	MQTT     MQTT              `toml:"mqtt"`
}

// DefaultConfigPath returns the absolute path of the default configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses and validates a configuration file. A missing file yields the
// defaults. It returns the resolved path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// overridable are the sections runtime settings may change.
var overridable = map[string]bool{"gesture": true, "motion": true, "control": true}

// ApplySettings overlays stored settings onto the config. Keys are "section.key" and
// values are TOML literals, so strings carry their quotes.
func (c *Config) ApplySettings(settings map[string]string) error {
	if len(settings) == 0 {
		return nil
	}
	bySection := make(map[string][]string)
	for key, value := range settings {
		section, field, ok := strings.Cut(key, ".")
		if !ok || field == "" || !overridable[section] {
			return fmt.Errorf("setting %q: not an overridable key", key)
		}
		bySection[section] = append(bySection[section], field+" = "+value)
	}

	var doc strings.Builder
	for section, lines := range bySection {
		fmt.Fprintf(&doc, "[%s]\n%s\n", section, strings.Join(lines, "\n"))
	}

	next := *c
	next.Gesture.RequiredFrames = cloneMap(c.Gesture.RequiredFrames)
	next.Control.Sections = cloneMap(c.Control.Sections)
	dec := toml.NewDecoder(strings.NewReader(doc.String()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		return fmt.Errorf("apply settings: %w", err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Marshal renders the config as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// CreateSample writes the sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(value string) (string, error) {
	if value == "" {
		return value, nil
	}
	if strings.HasPrefix(value, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if value == "~" {
			value = home
		} else if len(value) > 1 && (value[1] == '/' || value[1] == '\\') {
			value = filepath.Join(home, value[2:])
		}
	}
	abs, err := filepath.Abs(filepath.Clean(value))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return abs, nil
}

// ExpandPath applies the config path rules (home expansion, absolute) to value.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

func cloneMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
