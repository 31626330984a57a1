package gesture

import (
	"sync"
	"time"
)

// StabilizerConfig controls how many agreeing frames make a gesture and how far apart
// gesture events must be.
type StabilizerConfig struct {
	// ConfidenceFloor drops frames below this confidence before they reach the accumulator.
	ConfidenceFloor float64
	// RequiredFrames is the run length needed per label. Labels not listed need one frame.
	RequiredFrames map[Label]int
	// Cooldown is the minimum time between two events of any label.
	Cooldown time.Duration
}

// DefaultStabilizerConfig returns the stock stabilizer settings. Two-finger poses need a
// second frame because motion blur briefly produces them during hand transitions.
func DefaultStabilizerConfig() StabilizerConfig {
	return StabilizerConfig{
		ConfidenceFloor: 0.7,
		RequiredFrames: map[Label]int{
			OpenHand: 1,
			Fist:     1,
			Rock:     2,
			Peace:    2,
		},
		Cooldown: 800 * time.Millisecond,
	}
}

// Event is a stabilized gesture.
type Event struct {
	Label      Label
	Confidence float64
	At         time.Time
	// HeldSince is when the run that produced this event started.
	HeldSince time.Time
}

// tracker is the run of identical labels currently being accumulated.
type tracker struct {
	label     Label
	count     int
	firstSeen time.Time
	// fired latches once the run has produced its event.
	fired bool
}

// Stabilizer turns per-frame analyses into discrete gesture events. Each continuous run
// of one label fires at most once.
type Stabilizer struct {
	config   StabilizerConfig
	mu       sync.Mutex
	current  tracker
	lastFire time.Time
}

// NewStabilizer creates a Stabilizer with the given configuration.
func NewStabilizer(config StabilizerConfig) *Stabilizer {
	return &Stabilizer{config: config}
}

func (s *Stabilizer) required(label Label) int {
	if n, ok := s.config.RequiredFrames[label]; ok && n > 0 {
		return n
	}
	return 1
}

// Observe feeds one frame's analysis observed at the given time. It returns an event and
// true when the frame completes a run and the global cooldown has elapsed.
func (s *Stabilizer) Observe(a Analysis, at time.Time) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Label == None || a.Confidence < s.config.ConfidenceFloor {
		s.current = tracker{}
		return Event{}, false
	}

	if a.Label != s.current.label {
		s.current = tracker{label: a.Label, count: 1, firstSeen: at}
	} else {
		s.current.count++
	}

	if s.current.fired || s.current.count < s.required(a.Label) {
		return Event{}, false
	}

	// The cooldown covers every label so a quick flick through several poses fires once.
	if !s.lastFire.IsZero() && at.Sub(s.lastFire) < s.config.Cooldown {
		return Event{}, false
	}

	s.current.fired = true
	s.lastFire = at
	return Event{
		Label:      a.Label,
		Confidence: a.Confidence,
		At:         at,
		HeldSince:  s.current.firstSeen,
	}, true
}

// Current returns the label being accumulated and its run length.
func (s *Stabilizer) Current() (Label, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.label, s.current.count
}

// Reset clears the accumulator and the cooldown clock.
func (s *Stabilizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = tracker{}
	s.lastFire = time.Time{}
}
