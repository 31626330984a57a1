package control

import (
	"sync"
	"time"
)

// Outcome is what happened to a submitted command.
type Outcome string

const (
	// OutcomeAccepted: arbitration passed and the body was started.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeDuplicate: same action as the last command inside the duplicate window.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomePreempted: a voice command arrived inside the priority window of a gesture.
	OutcomePreempted Outcome = "preempted"
	// OutcomeBusy: another body held the flight; the command was dropped.
	OutcomeBusy Outcome = "busy"
	// OutcomeIgnored: the command had nothing to run, such as an unknown transcript.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeSucceeded and the following are completion outcomes of accepted commands.
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCooldown  Outcome = "cooldown"
)

// ArbitratorConfig sets the arbitration windows.
type ArbitratorConfig struct {
	DuplicateWindow time.Duration
	PriorityWindow  time.Duration
}

// DefaultArbitratorConfig returns a 500ms duplicate window and a 1s priority window.
func DefaultArbitratorConfig() ArbitratorConfig {
	return ArbitratorConfig{
		DuplicateWindow: 500 * time.Millisecond,
		PriorityWindow:  time.Second,
	}
}

// Arbitrator decides whether a command may run given the last accepted one. Gestures take
// priority over voice: inside the priority window a gesture replaces a voice command, while
// a voice command after a gesture is rejected.
type Arbitrator struct {
	config ArbitratorConfig

	mu   sync.Mutex
	last *ControlAction
}

// NewArbitrator creates an Arbitrator.
func NewArbitrator(config ArbitratorConfig) *Arbitrator {
	return &Arbitrator{config: config}
}

// Decide returns OutcomeAccepted and records the command, or the rejection reason.
func (a *Arbitrator) Decide(cmd Command) Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.last == nil {
		a.record(cmd)
		return OutcomeAccepted
	}

	// Channels have independent clocks; a late timestamp counts as simultaneous.
	elapsed := max(cmd.At.Sub(a.last.FiredAt), 0)

	if cmd.Action == a.last.ActionID && elapsed < a.config.DuplicateWindow {
		return OutcomeDuplicate
	}
	if elapsed < a.config.PriorityWindow &&
		cmd.Channel == ChannelVoice && a.last.Channel == ChannelGesture {
		return OutcomePreempted
	}

	a.record(cmd)
	return OutcomeAccepted
}

func (a *Arbitrator) record(cmd Command) {
	fired := cmd.At
	if a.last != nil && fired.Before(a.last.FiredAt) {
		fired = a.last.FiredAt
	}
	a.last = &ControlAction{
		Channel:    cmd.Channel,
		ActionID:   cmd.Action,
		FiredAt:    fired,
		Confidence: cmd.Confidence,
	}
}

// Last returns the last accepted command record.
func (a *Arbitrator) Last() (ControlAction, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		return ControlAction{}, false
	}
	return *a.last, true
}

// Reset forgets the last command.
func (a *Arbitrator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last = nil
}
