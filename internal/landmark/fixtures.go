package landmark

// The pose presets below describe a right hand facing the camera. They are
// used by the mock detector and by tests across the module.

// curledFingers places middle, ring and pinky curled toward the palm.
func curledFingers(s *Set) {
	s.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	s.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	s.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	s.Points[MiddleTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	s.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	s.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	s.Points[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	s.Points[RingTip] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	s.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	s.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	s.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	s.Points[PinkyTip] = Point3D{X: 0.35, Y: 0.74, Z: -0.02}
}

func curledIndex(s *Set) {
	s.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	s.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	s.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	s.Points[IndexTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}
}

func newRightHand() Set {
	s := Set{Handedness: "Right", Score: 0.95}
	s.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}
	return s
}

// PointingLandmarks returns an index finger pointing up with every other
// finger folded: the draw pose.
func PointingLandmarks() Set {
	s := newRightHand()

	// Thumb tucked across the palm
	s.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: 0.0}
	s.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.70, Z: -0.01}
	s.Points[ThumbIP] = Point3D{X: 0.57, Y: 0.64, Z: -0.02}
	s.Points[ThumbTip] = Point3D{X: 0.53, Y: 0.67, Z: -0.03}

	s.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	s.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.50, Z: 0.0}
	s.Points[IndexDIP] = Point3D{X: 0.55, Y: 0.40, Z: 0.0}
	s.Points[IndexTip] = Point3D{X: 0.55, Y: 0.30, Z: 0.0}

	curledFingers(&s)
	return s
}

// PinchLandmarks returns thumb and index tips touching: the erase pose.
// The index finger is still raised, so the draw predicate also holds.
func PinchLandmarks() Set {
	s := newRightHand()

	s.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.75, Z: 0.0}
	s.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.66, Z: 0.0}
	s.Points[ThumbIP] = Point3D{X: 0.60, Y: 0.55, Z: 0.0}
	s.Points[ThumbTip] = Point3D{X: 0.57, Y: 0.46, Z: 0.0}

	s.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	s.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.56, Z: 0.0}
	s.Points[IndexDIP] = Point3D{X: 0.57, Y: 0.50, Z: 0.0}
	s.Points[IndexTip] = Point3D{X: 0.56, Y: 0.45, Z: 0.0}

	curledFingers(&s)
	return s
}

// OpenPalmLandmarks returns all five fingers extended: the clear pose.
func OpenPalmLandmarks() Set {
	s := newRightHand()

	s.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	s.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	s.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	s.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	s.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	s.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	s.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	s.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	s.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	s.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	s.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	s.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	s.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	s.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	s.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	s.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	s.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	s.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	s.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	s.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return s
}

// ShakaLandmarks returns thumb and pinky extended with the three middle
// fingers folded: the color-cycle pose.
func ShakaLandmarks() Set {
	s := newRightHand()

	s.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	s.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.68, Z: 0.03}
	s.Points[ThumbIP] = Point3D{X: 0.63, Y: 0.62, Z: 0.03}
	s.Points[ThumbTip] = Point3D{X: 0.66, Y: 0.55, Z: 0.03}

	curledIndex(&s)
	curledFingers(&s)

	s.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	s.Points[PinkyPIP] = Point3D{X: 0.38, Y: 0.60, Z: 0.0}
	s.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.55, Z: 0.0}
	s.Points[PinkyTip] = Point3D{X: 0.36, Y: 0.50, Z: 0.0}

	return s
}

// FistLandmarks returns every finger folded. No gesture matches it.
func FistLandmarks() Set {
	s := newRightHand()

	s.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: 0.0}
	s.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.70, Z: -0.01}
	s.Points[ThumbIP] = Point3D{X: 0.57, Y: 0.64, Z: -0.02}
	s.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.67, Z: -0.03}

	curledIndex(&s)
	curledFingers(&s)
	return s
}
