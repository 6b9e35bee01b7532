// Package detector turns video frames into hand landmark sets.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/aircanvas/internal/landmark"
)

// Detector finds at most one hand in a frame.
type Detector interface {
	// Detect returns the landmarks of the single visible hand, or nil when
	// no hand is visible. A missing hand is not an error.
	Detect(frame *gocv.Mat) (*landmark.Set, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands the model tracks. Only the
	// first detected hand is used.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ScriptPath overrides the hand service script lookup.
	ScriptPath string

	// Python overrides the interpreter lookup.
	Python string
}

// DefaultConfig returns the single-hand drawing configuration.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.5,
	}
}
