// Package control fuses gesture and voice commands into one stream of side effects on the
// player. An Arbitrator decides which commands win, a Flight guarantees at most one command
// body runs at a time, and an Executor holds the bodies themselves.
package control

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/intent"
)

// Channel is the input a command came from.
type Channel string

const (
	ChannelGesture Channel = "gesture"
	ChannelVoice   Channel = "voice"
)

// ActionID names a command body. Voice intents use their intent action verbatim.
type ActionID string

// Actions only gestures produce.
const (
	ActionTogglePlayPause ActionID = "toggle_play_pause"
	ActionActivateVoice   ActionID = "activate_voice"
	ActionClick           ActionID = "click"
)

// Command is one candidate side effect awaiting arbitration.
type Command struct {
	ID         uuid.UUID
	Channel    Channel
	Action     ActionID
	Confidence float64
	At         time.Time
	Slots      intent.Slots
	// Target is the element id for clicks.
	Target string
	// Source is the gesture name or raw transcript that produced the command.
	Source string
}

// VoiceCommand builds a command from a parsed transcript.
func VoiceCommand(in intent.Intent, at time.Time) Command {
	return Command{
		ID:         uuid.New(),
		Channel:    ChannelVoice,
		Action:     ActionID(in.Action),
		Confidence: in.Confidence,
		At:         at,
		Slots:      in.Slots,
		Source:     in.RawText,
	}
}

// GestureCommand builds a command from a gesture bound to an action.
func GestureCommand(gesture string, action ActionID, confidence float64, at time.Time) Command {
	return Command{
		ID:         uuid.New(),
		Channel:    ChannelGesture,
		Action:     action,
		Confidence: confidence,
		At:         at,
		Source:     gesture,
	}
}

// ControlAction is the arbitration record of the last accepted command.
type ControlAction struct {
	Channel    Channel
	ActionID   ActionID
	FiredAt    time.Time
	Confidence float64
}

// Gesture names that can be bound to actions.
const (
	GestureOpenHand   = "open_hand"
	GestureFist       = "fist"
	GestureRock       = "rock"
	GesturePeace      = "peace"
	GestureSwipeLeft  = "swipe_left"
	GestureSwipeRight = "swipe_right"
	GestureScrollUp   = "scroll_up"
	GestureScrollDown = "scroll_down"
	GestureClick      = "click"
)

// Bindings maps gesture names to actions.
type Bindings map[string]ActionID

// DefaultBindings returns the stock gesture map.
func DefaultBindings() Bindings {
	return Bindings{
		GestureOpenHand:   ActionActivateVoice,
		GestureFist:       ActionTogglePlayPause,
		GestureRock:       ActionID(intent.Next),
		GesturePeace:      ActionID(intent.Previous),
		GestureSwipeRight: ActionID(intent.Next),
		GestureSwipeLeft:  ActionID(intent.Previous),
		GestureScrollUp:   ActionID(intent.ScrollUp),
		GestureScrollDown: ActionID(intent.ScrollDown),
		GestureClick:      ActionClick,
	}
}
