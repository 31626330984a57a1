package gesture

import (
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func newTestClassifier() *Classifier {
	return NewClassifier(nil, DefaultThresholds())
}

func TestClassifier_Presets(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name string
		hand detector.HandLandmarks
		want Label
		conf float64
	}{
		{"open hand", detector.OpenHandLandmarks(), OpenHand, 0.95},
		{"fist", detector.FistLandmarks(), Fist, 0.90},
		{"rock", detector.RockLandmarks(), Rock, 0.85},
		{"peace", detector.PeaceLandmarks(), Peace, 0.85},
		{"pointing is not a gesture", detector.PointingLandmarks(), None, 0},
		{"half open hand is not a fist", detector.HalfOpenLandmarks(), None, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.hand.Points[:])
			if got.Label != tt.want {
				t.Errorf("label = %q, want %q", got.Label, tt.want)
			}
			if got.Confidence != tt.conf {
				t.Errorf("confidence = %f, want %f", got.Confidence, tt.conf)
			}
		})
	}
}

func TestClassifier_ShortInput(t *testing.T) {
	c := newTestClassifier()
	hand := detector.OpenHandLandmarks()

	for n := 0; n < detector.NumLandmarks; n++ {
		got := c.Classify(hand.Points[:n])
		if got.Label != None || got.Confidence != 0 {
			t.Fatalf("%d points: got %+v, want no gesture", n, got)
		}
	}
}

func TestClassifier_EdgeOnHandIsNotOpen(t *testing.T) {
	c := newTestClassifier()
	hand := detector.OpenHandLandmarks()

	// Collapse every fingertip onto the same vertical line.
	for _, tip := range detector.FingerTips {
		hand.Points[tip].X = 0.5
	}

	if got := c.Classify(hand.Points[:]); got.Label == OpenHand {
		t.Error("edge-on hand must not classify as open_hand")
	}
}

func TestClassifier_CustomConfidences(t *testing.T) {
	c := NewClassifier(Confidences{Fist: 0.5}, DefaultThresholds())

	fist := detector.FistLandmarks()
	if got := c.Classify(fist.Points[:]); got.Confidence != 0.5 {
		t.Errorf("fist confidence = %f, want 0.5", got.Confidence)
	}

	open := detector.OpenHandLandmarks()
	if got := c.Classify(open.Points[:]); got.Confidence != 0.95 {
		t.Errorf("open_hand confidence = %f, want default 0.95", got.Confidence)
	}
}

func TestClassifier_TranslationInvariant(t *testing.T) {
	c := newTestClassifier()
	moved := detector.Translate(detector.PeaceLandmarks(), -0.2, 0.1)

	if got := c.Classify(moved.Points[:]); got.Label != Peace {
		t.Errorf("label = %q, want peace", got.Label)
	}
}

func TestClassifier_Gates(t *testing.T) {
	c := newTestClassifier()

	open := detector.OpenHandLandmarks()
	fist := detector.FistLandmarks()
	point := detector.PointingLandmarks()

	if !c.IsHandOpen(open.Points[:]) {
		t.Error("open hand should pass the open gate")
	}
	if c.IsHandOpen(fist.Points[:]) {
		t.Error("fist should not pass the open gate")
	}
	if c.IsHandOpen(nil) {
		t.Error("missing landmarks should not pass the open gate")
	}
	if !c.IsPointing(point.Points[:]) {
		t.Error("pointing hand should be pointing")
	}
	if c.IsPointing(open.Points[:]) {
		t.Error("open hand should not be pointing")
	}
}

func TestAnalysis_Capped(t *testing.T) {
	fist := Analysis{Label: Fist, Confidence: 0.9}

	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{"weak detection lowers confidence", 0.2, 0.2},
		{"strong detection keeps the label confidence", 0.97, 0.9},
		{"unknown score keeps the label confidence", 0, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fist.Capped(tt.score); got.Confidence != tt.want || got.Label != Fist {
				t.Errorf("Capped(%v) = %+v, want fist at %v", tt.score, got, tt.want)
			}
		})
	}
}
