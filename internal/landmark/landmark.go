// Package landmark defines the hand keypoint model shared by the detector,
// the gesture classifier and the frame pipeline.
package landmark

import (
	"image"
	"math"
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

// Point3D is a single keypoint. X and Y are normalized to the image
// (0,0 top-left, 1,1 bottom-right); Z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pixel denormalizes the point into pixel space of a height x width image.
// Coordinates are truncated, not rounded, and are not clamped to the image.
func (p Point3D) Pixel(height, width int) image.Point {
	return image.Point{
		X: int(p.X * float64(width)),
		Y: int(p.Y * float64(height)),
	}
}

// Distance2D returns the Euclidean distance between a and b in the image
// plane, ignoring depth.
func Distance2D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Set is one detected hand: 21 keypoints in anatomical order.
// A nil *Set means no hand was detected in the frame.
type Set struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Finger identifies one of the five digits.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

// Fingers lists all digits, thumb first.
var Fingers = [...]Finger{Thumb, Index, Middle, Ring, Pinky}

var fingerNames = [...]string{"thumb", "index", "middle", "ring", "pinky"}

func (f Finger) String() string {
	if f < Thumb || f > Pinky {
		return "unknown"
	}
	return fingerNames[f]
}

// TipIndex returns the landmark index of the fingertip.
func (f Finger) TipIndex() int {
	switch f {
	case Thumb:
		return ThumbTip
	case Index:
		return IndexTip
	case Middle:
		return MiddleTip
	case Ring:
		return RingTip
	default:
		return PinkyTip
	}
}

// JointIndex returns the landmark index of the joint the tip is compared
// against: IP for the thumb, PIP for the other fingers.
func (f Finger) JointIndex() int {
	switch f {
	case Thumb:
		return ThumbIP
	case Index:
		return IndexPIP
	case Middle:
		return MiddlePIP
	case Ring:
		return RingPIP
	default:
		return PinkyPIP
	}
}

// Tip returns the fingertip point of f.
func (s *Set) Tip(f Finger) Point3D {
	return s.Points[f.TipIndex()]
}

// Joint returns the reference joint point of f.
func (s *Set) Joint(f Finger) Point3D {
	return s.Points[f.JointIndex()]
}

// Extended reports whether the tip of f is above its joint in image space.
// Image y grows downward, so "above" is numerically smaller.
func (s *Set) Extended(f Finger) bool {
	return s.Tip(f).Y < s.Joint(f).Y
}

// Folded reports whether the tip of f is below its joint in image space.
// A tip level with its joint is neither extended nor folded.
func (s *Set) Folded(f Finger) bool {
	return s.Tip(f).Y > s.Joint(f).Y
}

// Connections lists the landmark pairs that form the hand skeleton.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}
