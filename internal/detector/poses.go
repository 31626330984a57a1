package detector

// Preset hand poses used by tests and the classify command. Coordinates are in mirrored,
// normalized camera space with the wrist low in frame (Y grows downward).

// palm fills the joints shared by every preset: wrist, knuckles and thumb base.
func palm() HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}
	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}
	h.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.76}
	h.Points[ThumbMCP] = Point3D{X: 0.61, Y: 0.72}
	h.Points[IndexMCP] = Point3D{X: 0.56, Y: 0.66}
	h.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.65}
	h.Points[RingMCP] = Point3D{X: 0.45, Y: 0.66}
	h.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.68}
	return h
}

func extendIndex(h *HandLandmarks) {
	h.Points[IndexPIP] = Point3D{X: 0.58, Y: 0.52}
	h.Points[IndexDIP] = Point3D{X: 0.59, Y: 0.44}
	h.Points[IndexTip] = Point3D{X: 0.60, Y: 0.36}
}

func extendMiddle(h *HandLandmarks) {
	h.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.50}
	h.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40}
	h.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.30}
}

func extendRing(h *HandLandmarks) {
	h.Points[RingPIP] = Point3D{X: 0.44, Y: 0.53}
	h.Points[RingDIP] = Point3D{X: 0.43, Y: 0.44}
	h.Points[RingTip] = Point3D{X: 0.42, Y: 0.35}
}

func extendPinky(h *HandLandmarks) {
	h.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.59}
	h.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.51}
	h.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.44}
}

func curlIndex(h *HandLandmarks) {
	h.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.61, Z: -0.04}
	h.Points[IndexDIP] = Point3D{X: 0.55, Y: 0.66, Z: -0.04}
	h.Points[IndexTip] = Point3D{X: 0.54, Y: 0.70, Z: -0.02}
}

func curlMiddle(h *HandLandmarks) {
	h.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.60, Z: -0.04}
	h.Points[MiddleDIP] = Point3D{X: 0.49, Y: 0.66, Z: -0.04}
	h.Points[MiddleTip] = Point3D{X: 0.49, Y: 0.70, Z: -0.02}
}

func curlRing(h *HandLandmarks) {
	h.Points[RingPIP] = Point3D{X: 0.45, Y: 0.61, Z: -0.04}
	h.Points[RingDIP] = Point3D{X: 0.45, Y: 0.66, Z: -0.04}
	h.Points[RingTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
}

func curlPinky(h *HandLandmarks) {
	h.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.63, Z: -0.04}
	h.Points[PinkyDIP] = Point3D{X: 0.41, Y: 0.67, Z: -0.04}
	h.Points[PinkyTip] = Point3D{X: 0.42, Y: 0.71, Z: -0.02}
}

func thumbOut(h *HandLandmarks) {
	h.Points[ThumbIP] = Point3D{X: 0.67, Y: 0.66}
	h.Points[ThumbTip] = Point3D{X: 0.72, Y: 0.60}
}

func thumbTucked(h *HandLandmarks) {
	h.Points[ThumbIP] = Point3D{X: 0.60, Y: 0.69}
	h.Points[ThumbTip] = Point3D{X: 0.55, Y: 0.68}
}

// OpenHandLandmarks returns an open palm: all five fingers extended and spread.
func OpenHandLandmarks() HandLandmarks {
	h := palm()
	thumbOut(&h)
	extendIndex(&h)
	extendMiddle(&h)
	extendRing(&h)
	extendPinky(&h)
	return h
}

// FistLandmarks returns a closed fist with the thumb folded across the index knuckle.
func FistLandmarks() HandLandmarks {
	h := palm()
	thumbTucked(&h)
	curlIndex(&h)
	curlMiddle(&h)
	curlRing(&h)
	curlPinky(&h)
	return h
}

// RockLandmarks returns the horns sign: index and pinky up, the rest folded.
func RockLandmarks() HandLandmarks {
	h := palm()
	thumbTucked(&h)
	extendIndex(&h)
	curlMiddle(&h)
	curlRing(&h)
	extendPinky(&h)
	return h
}

// PeaceLandmarks returns the V sign: index and middle up, the rest folded.
func PeaceLandmarks() HandLandmarks {
	h := palm()
	thumbTucked(&h)
	extendIndex(&h)
	extendMiddle(&h)
	curlRing(&h)
	curlPinky(&h)
	return h
}

// PointingLandmarks returns a hand pointing with the index finger only.
func PointingLandmarks() HandLandmarks {
	h := palm()
	thumbTucked(&h)
	extendIndex(&h)
	curlMiddle(&h)
	curlRing(&h)
	curlPinky(&h)
	return h
}

// HalfOpenLandmarks returns a relaxed hand with the fingers loosely bent. Its fingertips
// sit near the knuckle line but far from the wrist, so it must not read as a fist.
func HalfOpenLandmarks() HandLandmarks {
	h := palm()
	thumbTucked(&h)
	h.Points[IndexPIP] = Point3D{X: 0.60, Y: 0.56}
	h.Points[IndexDIP] = Point3D{X: 0.64, Y: 0.58}
	h.Points[IndexTip] = Point3D{X: 0.68, Y: 0.64}
	h.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.55}
	h.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.57}
	h.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.63}
	h.Points[RingPIP] = Point3D{X: 0.42, Y: 0.56}
	h.Points[RingDIP] = Point3D{X: 0.36, Y: 0.58}
	h.Points[RingTip] = Point3D{X: 0.32, Y: 0.64}
	h.Points[PinkyPIP] = Point3D{X: 0.35, Y: 0.60}
	h.Points[PinkyDIP] = Point3D{X: 0.30, Y: 0.63}
	h.Points[PinkyTip] = Point3D{X: 0.26, Y: 0.67}
	return h
}

// PinchLandmarks returns an open hand whose thumb and index tips touch.
func PinchLandmarks() HandLandmarks {
	h := OpenHandLandmarks()
	h.Points[IndexPIP] = Point3D{X: 0.60, Y: 0.56}
	h.Points[IndexDIP] = Point3D{X: 0.63, Y: 0.52}
	h.Points[IndexTip] = Point3D{X: 0.64, Y: 0.52}
	h.Points[ThumbIP] = Point3D{X: 0.66, Y: 0.60}
	h.Points[ThumbTip] = Point3D{X: 0.655, Y: 0.53}
	return h
}

// Translate returns a copy of h with every joint shifted by (dx, dy).
func Translate(h HandLandmarks, dx, dy float64) HandLandmarks {
	out := h
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	return out
}
