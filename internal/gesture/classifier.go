// Package gesture turns a hand landmark set into discrete drawing commands.
package gesture

import (
	"image"

	"github.com/ayusman/aircanvas/internal/landmark"
)

// PinchThreshold is the maximum normalized thumb-to-index distance that
// still counts as a pinch.
const PinchThreshold = 0.05

// IsDrawing reports the draw pose: index finger extended, middle finger folded.
func IsDrawing(set *landmark.Set) bool {
	if set == nil {
		return false
	}
	return set.Extended(landmark.Index) && set.Folded(landmark.Middle)
}

// IsEraser reports a pinch between thumb tip and index tip.
func IsEraser(set *landmark.Set) bool {
	if set == nil {
		return false
	}
	return landmark.Distance2D(set.Tip(landmark.Thumb), set.Tip(landmark.Index)) < PinchThreshold
}

// IsClear reports an open palm: every finger extended.
func IsClear(set *landmark.Set) bool {
	if set == nil {
		return false
	}
	for _, f := range landmark.Fingers {
		if !set.Extended(f) {
			return false
		}
	}
	return true
}

// IsColorCycle reports thumb and pinky extended with index, middle and ring folded.
func IsColorCycle(set *landmark.Set) bool {
	if set == nil {
		return false
	}
	return set.Extended(landmark.Thumb) &&
		set.Extended(landmark.Pinky) &&
		set.Folded(landmark.Index) &&
		set.Folded(landmark.Middle) &&
		set.Folded(landmark.Ring)
}

// Fingertip returns the index fingertip in pixel space of a height x width frame.
func Fingertip(set *landmark.Set, height, width int) image.Point {
	return set.Tip(landmark.Index).Pixel(height, width)
}

// Classifier evaluates gestures for one session. Its only state is the
// palette advanced by ColorCycleTrigger.
type Classifier struct {
	palette *Palette
}

// NewClassifier creates a Classifier with its own palette.
func NewClassifier() *Classifier {
	return &Classifier{palette: NewPalette()}
}

// Palette returns the classifier's palette.
func (c *Classifier) Palette() *Palette {
	return c.palette
}

// IsDrawingGesture reports whether set is the draw pose.
func (c *Classifier) IsDrawingGesture(set *landmark.Set) bool {
	return IsDrawing(set)
}

// IsEraserGesture reports whether set is a pinch.
func (c *Classifier) IsEraserGesture(set *landmark.Set) bool {
	return IsEraser(set)
}

// IsClearCanvasGesture reports whether set is an open palm.
func (c *Classifier) IsClearCanvasGesture(set *landmark.Set) bool {
	return IsClear(set)
}

// ColorCycleTrigger advances the palette once when set is the color-cycle
// pose and returns the newly selected color. Otherwise it returns false and
// leaves the palette untouched. Every qualifying call advances; callers that
// want one step per gesture should use an Arbiter with CycleEdge.
func (c *Classifier) ColorCycleTrigger(set *landmark.Set) (NamedColor, bool) {
	if !IsColorCycle(set) {
		return NamedColor{}, false
	}
	return c.palette.Advance(), true
}
