package canvas

import (
	"fmt"

	"gocv.io/x/gocv"
)

// DefaultFrameWeight is the share of the live frame in the blended output;
// the overlay gets the remainder.
const DefaultFrameWeight = 0.7

// Composite blends overlay over frame into dst. Both inputs must have the
// same size and type.
func Composite(frame, overlay gocv.Mat, dst *gocv.Mat, frameWeight float64) error {
	if frame.Rows() != overlay.Rows() || frame.Cols() != overlay.Cols() {
		return fmt.Errorf("composite %dx%d frame with %dx%d overlay: size mismatch",
			frame.Cols(), frame.Rows(), overlay.Cols(), overlay.Rows())
	}
	if frameWeight <= 0 || frameWeight >= 1 {
		frameWeight = DefaultFrameWeight
	}

	gocv.AddWeighted(frame, frameWeight, overlay, 1-frameWeight, 0, dst)
	return nil
}
