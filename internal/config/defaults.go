package config

const (
	defaultConfigPath      = "~/.config/mudra/config.toml"
	defaultBind            = "127.0.0.1:7490"
	defaultBridgeTimeoutMS = 3000
	defaultStorePath       = "~/.local/share/mudra/mudra.db"
	defaultHistoryLimit    = 5000
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
	defaultPluginDir       = "~/.config/mudra/plugins"
	defaultPluginName      = "media-control"
	defaultMQTTBroker      = "tcp://localhost:1883"
	defaultMQTTClientID    = "mudra"
	defaultMQTTPrefix      = "mudra"

	BackendBridge = "bridge"
	BackendPlugin = "plugin"
)

// Default returns a Config populated with the stock settings.
func Default() Config {
	return Config{
		Server: Server{
			Bind:            defaultBind,
			BridgeTimeoutMS: defaultBridgeTimeoutMS,
		},
		Store: Store{
			Path:         defaultStorePath,
			HistoryLimit: defaultHistoryLimit,
		},
		Log: Log{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Camera: Camera{
			IdleFPS:         5,
			ActiveFPS:       15,
			MotionThreshold: 1.0,
			ActiveHoldMS:    2000,
			MinConfidence:   0.5,
		},
		Gesture: Gesture{
			ConfidenceFloor: 0.7,
			CooldownMS:      800,
			RequiredFrames: map[string]int{
				"open_hand": 1,
				"fist":      1,
				"rock":      2,
				"peace":     2,
			},
		},
		Motion: Motion{
			SmoothingWindow:   5,
			Sensitivity:       1.0,
			ScrollThreshold:   0.35,
			ScrollStabilityMS: 80,
			ScrollCooldownMS:  400,
			SwipeThreshold:    0.9,
			SwipeStabilityMS:  50,
			SwipeCooldownMS:   900,
			ClickStrategy:     "pinch",
			ClickCooldownMS:   800,
			DwellMS:           400,
			PinchThreshold:    0.05,
			CursorSmoothing:   0.5,
			ScreenWidth:       1920,
			ScreenHeight:      1080,
			MirrorX:           true,
		},
		Control: Control{
			DuplicateWindowMS: 500,
			PriorityWindowMS:  1000,
			QuietPeriodMS:     300,
			ToggleCooldownMS:  3000,
			CommandTimeoutMS:  10000,
			VolumeStep:        10,
			Viewport:          900,
			GestureScroll:     "medium",
		},
		Bindings: map[string]string{
			"open_hand":   "activate_voice",
			"fist":        "toggle_play_pause",
			"rock":        "next",
			"peace":       "previous",
			"swipe_right": "next",
			"swipe_left":  "previous",
			"scroll_up":   "scroll_up",
			"scroll_down": "scroll_down",
			"click":       "click",
		},
		Playback: Playback{
			Backend:         BackendBridge,
			PluginDir:       defaultPluginDir,
			Plugin:          defaultPluginName,
			PluginTimeoutMS: 5000,
			DefaultVolume:   70,
		},
		MQTT: MQTT{
			Broker:      defaultMQTTBroker,
			ClientID:    defaultMQTTClientID,
			TopicPrefix: defaultMQTTPrefix,
			QoS:         1,
		},
	}
}
