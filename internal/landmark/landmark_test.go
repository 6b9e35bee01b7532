package landmark

import (
	"image"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestDistance2D(t *testing.T) {
	tests := []struct {
		name string
		a, b Point3D
		want float64
	}{
		{name: "same point", a: Point3D{X: 0.3, Y: 0.3}, b: Point3D{X: 0.3, Y: 0.3}, want: 0},
		{name: "3-4-5 triangle", a: Point3D{X: 0, Y: 0}, b: Point3D{X: 0.3, Y: 0.4}, want: 0.5},
		{name: "depth is ignored", a: Point3D{X: 0.1, Y: 0.1, Z: 5}, b: Point3D{X: 0.1, Y: 0.1, Z: -5}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance2D(tt.a, tt.b)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("Distance2D() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestPoint3D_Pixel(t *testing.T) {
	p := Point3D{X: 0.5, Y: 0.25}

	got := p.Pixel(480, 640)
	want := image.Point{X: 320, Y: 120}
	if got != want {
		t.Errorf("Pixel() = %v, want %v", got, want)
	}

	// Truncation, not rounding
	p = Point3D{X: 0.0999, Y: 0.0999}
	got = p.Pixel(10, 10)
	if got != (image.Point{X: 0, Y: 0}) {
		t.Errorf("Pixel() = %v, want (0,0)", got)
	}
}

func TestFinger_Indices(t *testing.T) {
	tests := []struct {
		finger    Finger
		wantTip   int
		wantJoint int
	}{
		{Thumb, ThumbTip, ThumbIP},
		{Index, IndexTip, IndexPIP},
		{Middle, MiddleTip, MiddlePIP},
		{Ring, RingTip, RingPIP},
		{Pinky, PinkyTip, PinkyPIP},
	}

	for _, tt := range tests {
		t.Run(tt.finger.String(), func(t *testing.T) {
			if got := tt.finger.TipIndex(); got != tt.wantTip {
				t.Errorf("TipIndex() = %d, want %d", got, tt.wantTip)
			}
			if got := tt.finger.JointIndex(); got != tt.wantJoint {
				t.Errorf("JointIndex() = %d, want %d", got, tt.wantJoint)
			}
		})
	}
}

func TestSet_ExtendedFolded(t *testing.T) {
	var s Set
	s.Points[IndexPIP] = Point3D{Y: 0.5}

	s.Points[IndexTip] = Point3D{Y: 0.3}
	if !s.Extended(Index) || s.Folded(Index) {
		t.Error("tip above joint should be extended")
	}

	s.Points[IndexTip] = Point3D{Y: 0.7}
	if s.Extended(Index) || !s.Folded(Index) {
		t.Error("tip below joint should be folded")
	}

	s.Points[IndexTip] = Point3D{Y: 0.5}
	if s.Extended(Index) || s.Folded(Index) {
		t.Error("tip level with joint should be neither extended nor folded")
	}
}

func TestFixtures(t *testing.T) {
	tests := []struct {
		name     string
		set      Set
		extended []Finger
		folded   []Finger
	}{
		{
			name:     "pointing",
			set:      PointingLandmarks(),
			extended: []Finger{Index},
			folded:   []Finger{Thumb, Middle, Ring, Pinky},
		},
		{
			name:     "open palm",
			set:      OpenPalmLandmarks(),
			extended: []Finger{Thumb, Index, Middle, Ring, Pinky},
		},
		{
			name:     "shaka",
			set:      ShakaLandmarks(),
			extended: []Finger{Thumb, Pinky},
			folded:   []Finger{Index, Middle, Ring},
		},
		{
			name:   "fist",
			set:    FistLandmarks(),
			folded: []Finger{Thumb, Index, Middle, Ring, Pinky},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, f := range tt.extended {
				if !tt.set.Extended(f) {
					t.Errorf("%s should be extended", f)
				}
			}
			for _, f := range tt.folded {
				if !tt.set.Folded(f) {
					t.Errorf("%s should be folded", f)
				}
			}
			if tt.set.Handedness != "Right" {
				t.Errorf("expected handedness Right, got %s", tt.set.Handedness)
			}
		})
	}

	t.Run("pinch tips are close", func(t *testing.T) {
		s := PinchLandmarks()
		if d := Distance2D(s.Tip(Thumb), s.Tip(Index)); d >= 0.05 {
			t.Errorf("pinch distance = %f, want < 0.05", d)
		}
	})
}
