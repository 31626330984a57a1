// Package gesture turns per-frame hand landmarks into discrete gesture events: a stateless
// geometric classifier and a stabilizer that debounces its output over time.
package gesture

import (
	"github.com/ayusman/mudra/internal/detector"
)

// Label is a discrete hand pose.
type Label string

const (
	None     Label = ""
	OpenHand Label = "open_hand"
	Fist     Label = "fist"
	Rock     Label = "rock"
	Peace    Label = "peace"
)

// Labels lists every label the classifier can produce, in evaluation order.
var Labels = []Label{OpenHand, Fist, Rock, Peace}

// Analysis is the classification of one frame.
type Analysis struct {
	Label      Label
	Confidence float64
	Points     []detector.Point3D
}

// Capped lowers the confidence to the detection score of the frame, so a weakly
// detected hand can fall under the stabilizer floor. A score of zero means unknown.
func (a Analysis) Capped(score float64) Analysis {
	if score > 0 && score < a.Confidence {
		a.Confidence = score
	}
	return a
}

// Confidences maps each label to the confidence reported when its predicate matches.
// The scores are fixed per label rather than computed from the geometry.
type Confidences map[Label]float64

// DefaultConfidences returns the per-label confidence table.
func DefaultConfidences() Confidences {
	return Confidences{
		OpenHand: 0.95,
		Fist:     0.90,
		Rock:     0.85,
		Peace:    0.85,
	}
}

// Thresholds are the geometric margins used by the pose predicates, in normalized
// image units.
type Thresholds struct {
	// ExtendMargin is how far a fingertip must sit above its knuckle to count as extended.
	ExtendMargin float64
	// FoldMargin is how far above its knuckle a fingertip may sit and still count as folded.
	FoldMargin float64
	// MinSpread is the minimum index-to-pinky tip span of an open hand.
	MinSpread float64
	// ThumbReach is the thumb tip to index knuckle distance separating an extended thumb from a tucked one.
	ThumbReach float64
	// FistRadius is the maximum mean fingertip-to-wrist distance of a fist.
	FistRadius float64
}

// DefaultThresholds returns margins tuned for a hand filling roughly a fifth of the frame.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ExtendMargin: 0.08,
		FoldMargin:   0.03,
		MinSpread:    0.10,
		ThumbReach:   0.10,
		FistRadius:   0.17,
	}
}

// Classifier evaluates fixed geometric predicates against one landmark set.
// It holds no per-frame state and is safe for concurrent use.
type Classifier struct {
	confidences Confidences
	thresholds  Thresholds
}

// NewClassifier creates a Classifier. Missing confidence entries fall back to defaults.
func NewClassifier(conf Confidences, th Thresholds) *Classifier {
	merged := DefaultConfidences()
	for l, c := range conf {
		merged[l] = c
	}
	return &Classifier{confidences: merged, thresholds: th}
}

// Classify returns the first matching label in priority order open_hand, fist, rock,
// peace. Fewer than 21 points, or no match, yields None with zero confidence.
func (c *Classifier) Classify(points []detector.Point3D) Analysis {
	if len(points) < detector.NumLandmarks {
		return Analysis{Label: None}
	}

	var label Label
	switch {
	case c.isOpenHand(points):
		label = OpenHand
	case c.isFist(points):
		label = Fist
	case c.isRock(points):
		label = Rock
	case c.isPeace(points):
		label = Peace
	default:
		return Analysis{Label: None, Points: points}
	}

	return Analysis{Label: label, Confidence: c.confidences[label], Points: points}
}

// fingerExtended reports whether finger i (0=index .. 3=pinky) points up past its knuckle.
func (c *Classifier) fingerExtended(points []detector.Point3D, i int) bool {
	tip := points[detector.FingerTips[i]]
	pip := points[detector.FingerPIPs[i]]
	mcp := points[detector.FingerMCPs[i]]
	return tip.Y < mcp.Y-c.thresholds.ExtendMargin && tip.Y < pip.Y
}

// fingerFolded reports whether finger i sits at or below its knuckle line.
func (c *Classifier) fingerFolded(points []detector.Point3D, i int) bool {
	tip := points[detector.FingerTips[i]]
	mcp := points[detector.FingerMCPs[i]]
	return tip.Y >= mcp.Y-c.thresholds.FoldMargin
}

func (c *Classifier) thumbExtended(points []detector.Point3D) bool {
	tip := points[detector.ThumbTip]
	wrist := points[detector.Wrist]
	return detector.Distance2D(tip, points[detector.IndexMCP]) > c.thresholds.ThumbReach &&
		detector.Distance2D(tip, wrist) > detector.Distance2D(points[detector.ThumbMCP], wrist)
}

func (c *Classifier) thumbTucked(points []detector.Point3D) bool {
	return detector.Distance2D(points[detector.ThumbTip], points[detector.IndexMCP]) <= c.thresholds.ThumbReach
}

func (c *Classifier) isOpenHand(points []detector.Point3D) bool {
	for i := range detector.FingerTips {
		if !c.fingerExtended(points, i) {
			return false
		}
	}
	if !c.thumbExtended(points) {
		return false
	}
	// An edge-on flat hand has every tip stacked on one line.
	span := detector.Distance2D(points[detector.IndexTip], points[detector.PinkyTip])
	return span >= c.thresholds.MinSpread
}

func (c *Classifier) isFist(points []detector.Point3D) bool {
	for i := range detector.FingerTips {
		if !c.fingerFolded(points, i) {
			return false
		}
	}
	if !c.thumbTucked(points) {
		return false
	}
	// A relaxed half-open hand also has its tips near the knuckle line; a fist keeps them
	// close to the wrist.
	wrist := points[detector.Wrist]
	var sum float64
	for _, tip := range detector.FingerTips {
		sum += detector.Distance2D(points[tip], wrist)
	}
	return sum/float64(len(detector.FingerTips)) <= c.thresholds.FistRadius
}

func (c *Classifier) isRock(points []detector.Point3D) bool {
	return c.fingerExtended(points, 0) &&
		c.fingerFolded(points, 1) &&
		c.fingerFolded(points, 2) &&
		c.fingerExtended(points, 3) &&
		c.thumbTucked(points)
}

func (c *Classifier) isPeace(points []detector.Point3D) bool {
	return c.fingerExtended(points, 0) &&
		c.fingerExtended(points, 1) &&
		c.fingerFolded(points, 2) &&
		c.fingerFolded(points, 3) &&
		c.thumbTucked(points)
}

// IsHandOpen reports whether all four non-thumb fingers are extended. It gates the
// scroll and swipe detectors and ignores the thumb and spread checks of OpenHand.
func (c *Classifier) IsHandOpen(points []detector.Point3D) bool {
	if len(points) < detector.NumLandmarks {
		return false
	}
	for i := range detector.FingerTips {
		if !c.fingerExtended(points, i) {
			return false
		}
	}
	return true
}

// IsPointing reports whether only the index finger is extended.
func (c *Classifier) IsPointing(points []detector.Point3D) bool {
	if len(points) < detector.NumLandmarks {
		return false
	}
	return c.fingerExtended(points, 0) &&
		c.fingerFolded(points, 1) &&
		c.fingerFolded(points, 2) &&
		c.fingerFolded(points, 3)
}
