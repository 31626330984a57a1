package control

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ayusman/mudra/internal/playback"
)

// Feedback is a user-visible message about a command.
type Feedback struct {
	CommandID string `json:"command_id"`
	Action    string `json:"action"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// Feedback levels.
const (
	LevelInfo  = "info"
	LevelError = "error"
)

// Notifier shows feedback to the user.
type Notifier interface {
	Notify(Feedback)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Feedback)

func (f NotifierFunc) Notify(fb Feedback) { f(fb) }

type noopNotifier struct{}

func (noopNotifier) Notify(Feedback) {}

// Message converts a command error into user text. Busy drops and nil errors produce no
// message.
func Message(err error) string {
	switch {
	case err == nil, errors.Is(err, ErrBusy):
		return ""
	case errors.Is(err, ErrCooldown):
		return "Please wait a moment before doing that again."
	case errors.Is(err, playback.ErrTargetNotFound):
		return strings.TrimSpace("Couldn't find that. " + detail(err))
	case errors.Is(err, playback.ErrUnavailable):
		return "The player isn't ready yet."
	case errors.Is(err, playback.ErrTransport):
		return "Couldn't reach the music service. Please try again."
	default:
		return "Something went wrong with that command."
	}
}

// detail returns the innermost message of a target-not-found error, which names the
// missing thing.
func detail(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "+playback.ErrTargetNotFound.Error()); i > 0 {
		msg = msg[:i]
	}
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	if msg == "" || msg == playback.ErrTargetNotFound.Error() {
		return ""
	}
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:] + "."
}

// helpText answers the help command.
const helpText = "Try: play, pause, next, previous, volume to 50, scroll down, " +
	"play the second song in new releases, play my liked songs, open library. " +
	"Gestures: open hand to talk, fist to play or pause, rock for next, peace for previous."
