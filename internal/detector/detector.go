package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Detector turns camera frames into hand landmarks.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect. Only the most confident hand
	// drives control, so the default is 1.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// ScriptPath points at the MediaPipe service script. Empty means search the usual places.
	ScriptPath string

	// PythonPath is the interpreter used to run the script. Empty means prefer a venv, then python3.
	PythonPath string

	// IdleShutdown stops the subprocess after this long without frames.
	IdleShutdown time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:      1,
		MinConfidence: 0.5,
		IdleShutdown:  30 * time.Second,
	}
}

// Best returns the highest scoring hand, or false when hands is empty.
func Best(hands []HandLandmarks) (HandLandmarks, bool) {
	if len(hands) == 0 {
		return HandLandmarks{}, false
	}
	best := hands[0]
	for _, h := range hands[1:] {
		if h.Score > best.Score {
			best = h
		}
	}
	return best, true
}
