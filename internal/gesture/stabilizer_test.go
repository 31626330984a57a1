package gesture

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func analysis(label Label, conf float64) Analysis {
	return Analysis{Label: label, Confidence: conf}
}

func TestStabilizer_InstantGestureFiresOnFirstFrame(t *testing.T) {
	s := NewStabilizer(DefaultStabilizerConfig())

	ev, ok := s.Observe(analysis(Fist, 0.9), at(0))
	if !ok {
		t.Fatal("fist should fire on its first frame")
	}
	if ev.Label != Fist || !ev.At.Equal(at(0)) {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestStabilizer_TwoFingerGestureNeedsTwoFrames(t *testing.T) {
	s := NewStabilizer(DefaultStabilizerConfig())

	if _, ok := s.Observe(analysis(Peace, 0.85), at(0)); ok {
		t.Fatal("peace must not fire on the first frame")
	}
	ev, ok := s.Observe(analysis(Peace, 0.85), at(33))
	if !ok {
		t.Fatal("peace should fire on the second frame")
	}
	if !ev.HeldSince.Equal(at(0)) {
		t.Errorf("HeldSince = %v, want %v", ev.HeldSince, at(0))
	}
}

func TestStabilizer_OneFirePerHold(t *testing.T) {
	s := NewStabilizer(DefaultStabilizerConfig())

	fires := 0
	// Hold rock for five seconds at 30 fps, far longer than the cooldown.
	for ms := 0; ms < 5000; ms += 33 {
		if _, ok := s.Observe(analysis(Rock, 0.85), at(ms)); ok {
			fires++
		}
	}
	if fires != 1 {
		t.Errorf("fires = %d, want exactly 1 for one continuous hold", fires)
	}

	label, count := s.Current()
	if label != Rock || count < 100 {
		t.Errorf("tracker = (%q, %d), want rock with a growing count", label, count)
	}
}

func TestStabilizer_LabelChangeResetsCount(t *testing.T) {
	s := NewStabilizer(DefaultStabilizerConfig())

	s.Observe(analysis(Rock, 0.85), at(0))
	s.Observe(analysis(Peace, 0.85), at(33))
	if _, ok := s.Observe(analysis(Rock, 0.85), at(66)); ok {
		t.Fatal("interrupted rock run must restart its count")
	}
	if label, count := s.Current(); label != Rock || count != 1 {
		t.Errorf("tracker = (%q, %d), want (rock, 1)", label, count)
	}
}

func TestStabilizer_ConfidenceFloor(t *testing.T) {
	s := NewStabilizer(DefaultStabilizerConfig())

	if _, ok := s.Observe(analysis(Fist, 0.5), at(0)); ok {
		t.Fatal("below-floor frame must not fire")
	}
	if label, count := s.Current(); label != None || count != 0 {
		t.Errorf("tracker = (%q, %d), want idle", label, count)
	}

	// A below-floor frame breaks a run just like a missing hand.
	s.Observe(analysis(Peace, 0.85), at(33))
	s.Observe(analysis(Peace, 0.2), at(66))
	if _, ok := s.Observe(analysis(Peace, 0.85), at(99)); ok {
		t.Error("run broken by a low-confidence frame must restart")
	}
}

func TestStabilizer_GlobalCooldown(t *testing.T) {
	cfg := DefaultStabilizerConfig()
	s := NewStabilizer(cfg)

	var fired []time.Time
	frames := []struct {
		label Label
		ms    int
	}{
		{Fist, 0},
		{OpenHand, 100},  // inside cooldown, suppressed
		{OpenHand, 200},  // still held, still suppressed
		{OpenHand, 900},  // cooldown over while held: fires
		{Fist, 950},      // new run inside cooldown of the open hand
		{None, 1000},     // hand gone
		{Fist, 1800},     // fires
	}
	for _, f := range frames {
		conf := 0.9
		if f.label == None {
			conf = 0
		}
		if ev, ok := s.Observe(analysis(f.label, conf), at(f.ms)); ok {
			fired = append(fired, ev.At)
		}
	}

	want := []time.Time{at(0), at(900), at(1800)}
	if len(fired) != len(want) {
		t.Fatalf("fired at %v, want %v", fired, want)
	}
	for i := range want {
		if !fired[i].Equal(want[i]) {
			t.Errorf("fire %d at %v, want %v", i, fired[i], want[i])
		}
		if i > 0 && fired[i].Sub(fired[i-1]) < cfg.Cooldown {
			t.Errorf("fires %d and %d closer than the cooldown", i-1, i)
		}
	}
}

func TestStabilizer_Reset(t *testing.T) {
	s := NewStabilizer(DefaultStabilizerConfig())

	s.Observe(analysis(Fist, 0.9), at(0))
	s.Reset()

	if label, count := s.Current(); label != None || count != 0 {
		t.Errorf("tracker = (%q, %d), want idle after reset", label, count)
	}
	// Reset also forgets the cooldown clock.
	if _, ok := s.Observe(analysis(Fist, 0.9), at(10)); !ok {
		t.Error("fist should fire right after reset")
	}
}

func TestStabilizer_UnlistedLabelNeedsOneFrame(t *testing.T) {
	s := NewStabilizer(StabilizerConfig{ConfidenceFloor: 0.5})
	if _, ok := s.Observe(analysis(Peace, 0.9), at(0)); !ok {
		t.Error("label without a required count should fire immediately")
	}
}
