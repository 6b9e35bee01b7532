// Package testdata builds synthetic camera frames and gesture scripts for
// end-to-end tests.
package testdata

import (
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/aircanvas/internal/capture"
	"github.com/ayusman/aircanvas/internal/landmark"
)

// FrameHeight and FrameWidth match the default camera resolution.
const (
	FrameHeight = 480
	FrameWidth  = 640
)

// Step is one frame of a scripted gesture sequence. A nil Hand means no
// hand is in view.
type Step struct {
	Name string
	Hand *landmark.Set
}

// Shift returns a copy of s moved by dx, dy in normalized coordinates.
// Relative finger positions are unchanged, so the pose classifies the same.
func Shift(s landmark.Set, dx, dy float64) *landmark.Set {
	out := s
	for i := range out.Points {
		out.Points[i].X += dx
		out.Points[i].Y += dy
	}
	return &out
}

// DrawingScript draws a short red stroke, erases once, cycles to green,
// draws a green dot and lifts the hand.
func DrawingScript() []Step {
	point := landmark.PointingLandmarks()
	return []Step{
		{"draw-1", Shift(point, -0.10, 0)},
		{"draw-2", Shift(point, -0.05, 0)},
		{"draw-3", Shift(point, 0, 0)},
		{"erase", ptr(landmark.PinchLandmarks())},
		{"cycle", ptr(landmark.ShakaLandmarks())},
		{"draw-green", Shift(point, 0.10, 0)},
		{"lift", nil},
	}
}

// Sets returns the hands of steps in order, for a mock detector sequence.
func Sets(steps []Step) []*landmark.Set {
	sets := make([]*landmark.Set, len(steps))
	for i, s := range steps {
		sets[i] = s.Hand
	}
	return sets
}

// Frame returns a black frame at the default resolution.
func Frame() gocv.Mat {
	return capture.SolidFrame(FrameHeight, FrameWidth, color.RGBA{A: 255})
}

// AlternatingFrames returns n frames that switch between black and white,
// so every frame registers as motion.
func AlternatingFrames(n, height, width int) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		c := color.RGBA{A: 255}
		if i%2 == 1 {
			c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		m := capture.SolidFrame(height, width, c)
		frames[i] = &m
	}
	return frames
}

// CloseAll releases frames.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		if f != nil {
			f.Close()
		}
	}
}

func ptr(s landmark.Set) *landmark.Set { return &s }
