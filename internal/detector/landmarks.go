// Package detector provides the hand landmark model consumed by gesture and motion detection,
// and the landmark sources that produce it.
package detector

import (
	"math"
	"time"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Finger joint indices for the four non-thumb fingers, ordered index to pinky.
var (
	FingerMCPs = [4]int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP}
	FingerPIPs = [4]int{IndexPIP, MiddlePIP, RingPIP, PinkyPIP}
	FingerTips = [4]int{IndexTip, MiddleTip, RingTip, PinkyTip}
)

// Point3D represents one normalized hand joint. X and Y are in [0,1] camera space with
// Y growing downward; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Frame is one processed camera frame: the landmark sequence of a single hand, the
// detection confidence reported by the producer, and the capture time.
type Frame struct {
	Points []Point3D `json:"points"`
	Score  float64   `json:"score"`
	At     time.Time `json:"-"`
}

// Frame converts the fixed-size landmark array into a Frame captured at the given time.
func (h *HandLandmarks) Frame(at time.Time) Frame {
	points := make([]Point3D, NumLandmarks)
	copy(points, h.Points[:])
	return Frame{Points: points, Score: h.Score, At: at}
}

// Complete reports whether the frame carries a full 21-point hand.
func (f Frame) Complete() bool {
	return len(f.Points) >= NumLandmarks
}

// Mirror returns a copy of points with X flipped around the vertical center line.
func Mirror(points []Point3D) []Point3D {
	out := make([]Point3D, len(points))
	for i, p := range points {
		out[i] = Point3D{X: 1 - p.X, Y: p.Y, Z: p.Z}
	}
	return out
}

// PalmCenter returns the midpoint between the wrist and the middle finger knuckle.
// Callers must pass a complete landmark set.
func PalmCenter(points []Point3D) Point3D {
	w, m := points[Wrist], points[MiddleMCP]
	return Point3D{
		X: (w.X + m.X) / 2,
		Y: (w.Y + m.Y) / 2,
		Z: (w.Z + m.Z) / 2,
	}
}

// Distance2D is the Euclidean distance between two points in the image plane.
func Distance2D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// HandScale is the wrist to middle knuckle distance, a proxy for how large the hand
// appears in frame.
func HandScale(points []Point3D) float64 {
	if len(points) < NumLandmarks {
		return 0
	}
	return distance3D(points[Wrist], points[MiddleMCP])
}
