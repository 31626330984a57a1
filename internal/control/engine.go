package control

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/intent"
)

// Config holds the engine settings.
type Config struct {
	Arbitrator ArbitratorConfig
	Executor   ExecutorConfig
	// QuietPeriod keeps the flight claimed after a body returns.
	QuietPeriod time.Duration
	// CommandTimeout bounds a single body.
	CommandTimeout time.Duration
	Bindings       Bindings
}

// DefaultConfig returns the stock engine settings.
func DefaultConfig() Config {
	return Config{
		Arbitrator:     DefaultArbitratorConfig(),
		Executor:       DefaultExecutorConfig(),
		QuietPeriod:    300 * time.Millisecond,
		CommandTimeout: 10 * time.Second,
		Bindings:       DefaultBindings(),
	}
}

// Record is the journal entry for one submitted command. Each command produces exactly one
// record: its rejection reason, or its completion outcome once the body returns.
type Record struct {
	ID         string
	Channel    Channel
	Action     ActionID
	Confidence float64
	Outcome    Outcome
	Message    string
	Source     string
	At         time.Time
}

// Sink receives records.
type Sink interface {
	Record(Record)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Record)

func (f SinkFunc) Record(r Record) { f(r) }

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock used for quiet periods and cooldowns.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithNotifier sets where user feedback goes.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithParser replaces the transcript parser.
func WithParser(p *intent.Parser) Option {
	return func(e *Engine) { e.parser = p }
}

// WithSink adds a record sink.
func WithSink(s Sink) Option {
	return func(e *Engine) { e.sinks = append(e.sinks, s) }
}

// Engine is the single entry point both input channels submit commands to.
type Engine struct {
	config   Config
	arb      *Arbitrator
	flight   *Flight
	exec     *Executor
	parser   *intent.Parser
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sinks    []Sink
	disabled map[Channel]bool
}

// NewEngine creates an Engine driving deps.
func NewEngine(config Config, deps Deps, opts ...Option) *Engine {
	e := &Engine{
		config:   config,
		now:      time.Now,
		disabled: make(map[Channel]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "control")
	if e.notifier == nil {
		e.notifier = noopNotifier{}
	}
	if e.parser == nil {
		e.parser = intent.NewParser(nil)
	}
	if e.config.Bindings == nil {
		e.config.Bindings = DefaultBindings()
	}
	if e.config.CommandTimeout <= 0 {
		e.config.CommandTimeout = DefaultConfig().CommandTimeout
	}

	e.arb = NewArbitrator(e.config.Arbitrator)
	e.flight = NewFlight(e.config.QuietPeriod, e.now)
	e.exec = NewExecutor(deps, e.config.Executor, e.now)
	e.ctx, e.cancel = context.WithCancel(context.Background())
	return e
}

// AddSink registers a record sink.
func (e *Engine) AddSink(s Sink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, s)
}

// SetChannelEnabled turns a whole input channel on or off. Commands from a disabled channel
// are ignored.
func (e *Engine) SetChannelEnabled(ch Channel, enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disabled[ch] = !enabled
}

// ChannelEnabled reports whether ch is accepting commands.
func (e *Engine) ChannelEnabled(ch Channel) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.disabled[ch]
}

// Submit arbitrates cmd and starts its body when it wins. It never blocks on the body.
func (e *Engine) Submit(cmd Command) Outcome {
	if cmd.ID == uuid.Nil {
		cmd.ID = uuid.New()
	}
	if cmd.At.IsZero() {
		cmd.At = e.now()
	}
	log := e.logger.With("id", cmd.ID.String(), "channel", string(cmd.Channel), "action", string(cmd.Action))

	if !e.ChannelEnabled(cmd.Channel) {
		log.Debug("channel disabled")
		e.emit(cmd, OutcomeIgnored, "")
		return OutcomeIgnored
	}

	body, ok := e.exec.Body(cmd)
	if !ok {
		log.Debug("no body for action")
		e.emit(cmd, OutcomeIgnored, "")
		return OutcomeIgnored
	}

	if outcome := e.arb.Decide(cmd); outcome != OutcomeAccepted {
		log.Debug("command rejected", "outcome", string(outcome))
		e.emit(cmd, outcome, "")
		return outcome
	}

	ctx, cancel := context.WithTimeout(e.ctx, e.config.CommandTimeout)
	err := e.flight.TryRun(ctx, body, func(err error) {
		cancel()
		e.complete(log, cmd, err)
	})
	if err != nil {
		cancel()
		log.Info("command skipped", "reason", err)
		e.emit(cmd, OutcomeBusy, "")
		return OutcomeBusy
	}
	return OutcomeAccepted
}

// SubmitTranscript parses a final transcript and submits the resulting intent.
func (e *Engine) SubmitTranscript(text string, at time.Time) (intent.Intent, Outcome) {
	in := e.parser.Parse(text)
	if !in.Known() {
		e.logger.Debug("transcript not understood", "text", text)
		cmd := VoiceCommand(in, at)
		e.emit(cmd, OutcomeIgnored, "")
		return in, OutcomeIgnored
	}
	return in, e.Submit(VoiceCommand(in, at))
}

// SubmitGesture submits the action bound to a stabilized gesture.
func (e *Engine) SubmitGesture(gesture string, confidence float64, at time.Time) Outcome {
	action, ok := e.config.Bindings[gesture]
	if !ok {
		e.logger.Debug("gesture not bound", "gesture", gesture)
		return OutcomeIgnored
	}
	return e.Submit(GestureCommand(gesture, action, confidence, at))
}

// SubmitClick submits a click on target.
func (e *Engine) SubmitClick(target string, confidence float64, at time.Time) Outcome {
	action, ok := e.config.Bindings[GestureClick]
	if !ok {
		return OutcomeIgnored
	}
	cmd := GestureCommand(GestureClick, action, confidence, at)
	cmd.Target = target
	return e.Submit(cmd)
}

func (e *Engine) complete(log *slog.Logger, cmd Command, err error) {
	outcome, level, msg := OutcomeSucceeded, LevelInfo, ""
	switch {
	case err == nil:
		log.Info("command executed")
		if cmd.Action == ActionID(intent.Help) {
			msg = helpText
		}
	case errors.Is(err, ErrCooldown):
		log.Info("command cooling down")
		outcome, msg = OutcomeCooldown, Message(err)
	default:
		log.Warn("command failed", "error", err)
		outcome, level, msg = OutcomeFailed, LevelError, Message(err)
	}

	if msg != "" {
		e.notifier.Notify(Feedback{
			CommandID: cmd.ID.String(),
			Action:    string(cmd.Action),
			Level:     level,
			Message:   msg,
		})
	}
	e.emit(cmd, outcome, msg)
}

func (e *Engine) emit(cmd Command, outcome Outcome, msg string) {
	e.mu.RLock()
	sinks := make([]Sink, len(e.sinks))
	copy(sinks, e.sinks)
	e.mu.RUnlock()

	r := Record{
		ID:         cmd.ID.String(),
		Channel:    cmd.Channel,
		Action:     cmd.Action,
		Confidence: cmd.Confidence,
		Outcome:    outcome,
		Message:    msg,
		Source:     cmd.Source,
		At:         cmd.At,
	}
	for _, s := range sinks {
		s.Record(r)
	}
}

// Last returns the last accepted command.
func (e *Engine) Last() (ControlAction, bool) {
	return e.arb.Last()
}

// Volume returns the cached player volume.
func (e *Engine) Volume() (int, bool) {
	return e.exec.Volume()
}

// SeedVolume primes the volume cache.
func (e *Engine) SeedVolume(v int) {
	e.exec.SeedVolume(v)
}

// Busy reports whether a command would be dropped right now.
func (e *Engine) Busy() bool {
	return e.flight.Busy()
}

// Wait blocks until running bodies finish.
func (e *Engine) Wait() {
	e.flight.Wait()
}

// Close cancels running bodies and waits for them.
func (e *Engine) Close() {
	e.cancel()
	e.flight.Wait()
}
