// Package app wires configuration, the command engine, detection sessions and the
// optional camera pipeline into one running mudra instance.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/intent"
	"github.com/ayusman/mudra/internal/motion"
	"github.com/ayusman/mudra/internal/store"
)

// ErrAlreadyRunning is returned by Start when another instance holds the lock.
var ErrAlreadyRunning = errors.New("another mudra instance is already running")

// pruneEvery is how many journal appends pass between prunes.
const pruneEvery = 100

// Options holds the collaborators of an App. Only Config is required.
type Options struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *store.Store
	Deps     control.Deps
	Hit      motion.HitTester
	Notifier control.Notifier
	Sinks    []control.Sink
	Clock    func() time.Time
	// Camera and Detector replace the configured device and MediaPipe source.
	Camera   capture.Camera
	Detector detector.Detector
	// LockPath overrides the single-instance lock file location.
	LockPath string
}

// Status is a snapshot of the running instance.
type Status struct {
	Gestures    bool      `json:"gestures"`
	Voice       bool      `json:"voice"`
	Camera      bool      `json:"camera"`
	CameraFPS   int       `json:"camera_fps,omitempty"`
	Busy        bool      `json:"busy"`
	Trackers    int       `json:"trackers"`
	Frames      int       `json:"frames"`
	Volume      *int      `json:"volume,omitempty"`
	LastAction  string    `json:"last_action,omitempty"`
	LastChannel string    `json:"last_channel,omitempty"`
	LastAt      time.Time `json:"last_at,omitempty"`
}

// App is a running mudra instance.
type App struct {
	logger *slog.Logger
	engine *control.Engine
	store  *store.Store
	hit    motion.HitTester
	now    func() time.Time
	lock   *flock.Flock

	mu         sync.RWMutex
	cfg        config.Config
	sessionCfg SessionConfig
	gestures   bool
	local      *Source
	sources    map[*Source]struct{}
	appended   int

	camera   capture.Camera
	diff     *capture.FrameDiff
	gate     *capture.ActivityGate
	detector detector.Detector
	stopCh   chan struct{}
	doneCh   chan struct{}
	locked   bool
}

// New builds an App. Stored settings are applied on top of the configuration, and
// both input channels start enabled.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("app requires a config")
	}
	cfg := *opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	a := &App{
		logger:   logger.With("component", "app"),
		store:    opts.Store,
		hit:      opts.Hit,
		now:      now,
		camera:   opts.Camera,
		detector: opts.Detector,
		sources:  map[*Source]struct{}{},
	}
	a.local = &Source{app: a, name: "local"}

	if a.store != nil {
		overrides, err := a.store.Settings().All()
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		if err := cfg.ApplySettings(overrides); err != nil {
			a.logger.Warn("ignoring stored settings", "error", err)
		}
	}
	a.cfg = cfg
	a.sessionCfg = sessionConfig(&cfg)

	engineOpts := []control.Option{
		control.WithLogger(logger),
		control.WithClock(now),
		control.WithParser(intent.NewParser(cfg.ParserSections())),
	}
	if opts.Notifier != nil {
		engineOpts = append(engineOpts, control.WithNotifier(opts.Notifier))
	}
	if a.store != nil {
		engineOpts = append(engineOpts, control.WithSink(control.SinkFunc(a.journal)))
	}
	for _, s := range opts.Sinks {
		engineOpts = append(engineOpts, control.WithSink(s))
	}
	a.engine = control.NewEngine(cfg.ControlConfig(), opts.Deps, engineOpts...)
	if cfg.Playback.Backend == config.BackendPlugin {
		a.engine.SeedVolume(cfg.Playback.DefaultVolume)
	}

	lockPath := opts.LockPath
	if lockPath == "" {
		lockPath = defaultLockPath(cfg.Store.Path)
	}
	a.lock = flock.New(lockPath)

	a.SetGesturesEnabled(true)
	return a, nil
}

func defaultLockPath(storePath string) string {
	if storePath == "" || storePath == ":memory:" {
		return filepath.Join(os.TempDir(), "mudra.lock")
	}
	return filepath.Join(filepath.Dir(storePath), "mudra.lock")
}

// sessionConfig converts the gesture and motion sections into detector settings.
func sessionConfig(cfg *config.Config) SessionConfig {
	sc := DefaultSessionConfig()
	sc.Stabilizer = cfg.StabilizerConfig()
	sc.Scroll = cfg.ScrollConfig()
	sc.Swipe = cfg.SwipeConfig()
	sc.Click = cfg.ClickConfig()
	sc.ClickStrategy = ""
	if strategy, ok := cfg.ClickStrategy(); ok {
		sc.ClickStrategy = strategy
	}
	sc.ScrollWhileClicking = cfg.Motion.ScrollWhileClickActive
	return sc
}

// journal appends a command record to the store.
func (a *App) journal(r control.Record) {
	err := a.store.Commands().Append(&store.Command{
		ID:         r.ID,
		Channel:    string(r.Channel),
		Action:     string(r.Action),
		Confidence: r.Confidence,
		Outcome:    string(r.Outcome),
		Message:    r.Message,
		Source:     r.Source,
		At:         r.At,
	})
	if err != nil {
		a.logger.Warn("journal append failed", "id", r.ID, "error", err)
		return
	}

	a.mu.Lock()
	a.appended++
	prune := a.appended%pruneEvery == 0
	limit := a.cfg.Store.HistoryLimit
	a.mu.Unlock()
	if prune && limit > 0 {
		if n, err := a.store.Commands().Prune(limit); err != nil {
			a.logger.Warn("journal prune failed", "error", err)
		} else if n > 0 {
			a.logger.Debug("journal pruned", "rows", n)
		}
	}
}

// Engine returns the command engine.
func (a *App) Engine() *control.Engine {
	return a.engine
}

// Config returns a copy of the effective configuration.
func (a *App) Config() config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// SetGesturesEnabled turns the gesture channel on or off. Disabling closes the
// session of every source so no state carries over; each source starts a fresh one
// on its next frame after enabling.
func (a *App) SetGesturesEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.engine.SetChannelEnabled(control.ChannelGesture, enabled)
	a.gestures = enabled
	if enabled {
		return
	}
	a.dropSessionsLocked()
	if a.gate != nil {
		a.gate.Reset()
	}
}

// GesturesEnabled reports whether frames are being processed.
func (a *App) GesturesEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.gestures
}

// SetVoiceEnabled turns the voice channel on or off.
func (a *App) SetVoiceEnabled(enabled bool) {
	a.engine.SetChannelEnabled(control.ChannelVoice, enabled)
}

// VoiceEnabled reports whether transcripts are accepted.
func (a *App) VoiceEnabled() bool {
	return a.engine.ChannelEnabled(control.ChannelVoice)
}

// HandleFrame passes a frame from the local camera to its session. Remote trackers
// use OpenSource instead. Frames arriving while gestures are disabled are dropped.
func (a *App) HandleFrame(f detector.Frame) {
	a.local.HandleFrame(f)
}

// HandleTranscript submits a final transcript. Interim transcripts are ignored.
func (a *App) HandleTranscript(text string, final bool, at time.Time) (intent.Intent, control.Outcome) {
	if !final {
		return intent.Intent{}, control.OutcomeIgnored
	}
	if at.IsZero() {
		at = a.now()
	}
	return a.engine.SubmitTranscript(text, at)
}

// Settings returns the stored setting overrides.
func (a *App) Settings() (map[string]string, error) {
	if a.store == nil {
		return map[string]string{}, nil
	}
	return a.store.Settings().All()
}

// UpdateSettings validates and stores setting overrides. Gesture and motion changes
// take effect in a new detection session immediately; control changes apply on the
// next start.
func (a *App) UpdateSettings(values map[string]string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.cfg
	if err := next.ApplySettings(values); err != nil {
		return err
	}
	if a.store != nil {
		if err := a.store.Settings().SetAll(values); err != nil {
			return fmt.Errorf("store settings: %w", err)
		}
	}
	a.cfg = next
	a.sessionCfg = sessionConfig(&next)
	a.dropSessionsLocked()
	a.logger.Info("settings updated", "keys", len(values))
	return nil
}

// Status returns a snapshot of the instance.
func (a *App) Status() Status {
	a.mu.RLock()
	st := Status{
		Gestures: a.gestures,
		Camera:   a.stopCh != nil,
		Trackers: len(a.sources),
		Frames:   a.framesLocked(),
	}
	if a.camera != nil && a.stopCh != nil {
		st.CameraFPS = a.camera.FPS()
	}
	a.mu.RUnlock()

	st.Voice = a.engine.ChannelEnabled(control.ChannelVoice)
	st.Busy = a.engine.Busy()
	if v, ok := a.engine.Volume(); ok {
		st.Volume = &v
	}
	if last, ok := a.engine.Last(); ok {
		st.LastAction = string(last.ActionID)
		st.LastChannel = string(last.Channel)
		st.LastAt = last.FiredAt
	}
	return st
}

// Start takes the single-instance lock and, when the camera is enabled, starts the
// local detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.locked {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(a.lock.Path()), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := a.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	a.locked = true

	if !a.cfg.Camera.Enabled && a.camera == nil {
		a.logger.Info("started", "camera", false, "lock", a.lock.Path())
		return nil
	}
	if err := a.startPipelineLocked(); err != nil {
		a.logger.Warn("camera pipeline unavailable", "error", err)
	}
	a.logger.Info("started", "camera", a.stopCh != nil, "lock", a.lock.Path())
	return nil
}

func (a *App) startPipelineLocked() error {
	if a.stopCh != nil {
		return nil
	}
	if a.detector == nil {
		mp, err := detector.NewMediaPipeDetector(a.cfg.DetectorConfig())
		if err != nil {
			return fmt.Errorf("hand detector: %w", err)
		}
		a.detector = mp
	}
	gateCfg := capture.GateConfig{
		Threshold: a.cfg.Camera.MotionThreshold,
		IdleFPS:   a.cfg.Camera.IdleFPS,
		ActiveFPS: a.cfg.Camera.ActiveFPS,
		Hold:      a.cfg.ActiveHold(),
	}
	a.gate = capture.NewActivityGate(gateCfg)
	if a.camera == nil {
		a.camera = capture.NewCamera(capture.DeviceConfig{
			Device: a.cfg.Camera.Device,
			FPS:    a.gate.FPS(),
		})
	}
	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.gate.FPS())
	a.diff = capture.NewFrameDiff()

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)
	return nil
}

// Stop halts the camera pipeline and releases the lock. In-flight commands finish.
func (a *App) Stop() {
	a.mu.Lock()
	stop, done := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if stop != nil {
		if err := a.camera.Close(); err != nil {
			a.logger.Warn("camera close failed", "error", err)
		}
		a.diff.Close()
	}
	if a.locked {
		if err := a.lock.Unlock(); err != nil {
			a.logger.Warn("lock release failed", "error", err)
		}
		a.locked = false
	}
}

// Close stops the App, closes the session and the detector, and waits for running
// command bodies.
func (a *App) Close() {
	a.Stop()

	a.mu.Lock()
	a.gestures = false
	a.dropSessionsLocked()
	det := a.detector
	a.detector = nil
	a.mu.Unlock()

	if det != nil {
		if err := det.Close(); err != nil {
			a.logger.Warn("detector close failed", "error", err)
		}
	}
	a.engine.Close()
	a.logger.Info("stopped")
}
