// Package canvas accumulates drawing marks and renders them into an
// overlay that is blended over the live video.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Tool defaults.
const (
	DefaultBrushRadius  = 10
	DefaultEraserRadius = 30
)

// Snapshot resolution used for saved drawings.
const (
	SnapshotHeight = 480
	SnapshotWidth  = 640
)

// ErrInvalidDimensions is returned when a render is requested with a
// non-positive height or width.
var ErrInvalidDimensions = errors.New("canvas dimensions must be positive")

// DefaultColor is the pen color of a fresh canvas.
var DefaultColor = color.RGBA{R: 255, A: 255}

// background is the overlay value for untouched pixels.
var background = color.RGBA{}

// Mark is one recorded drawing or erasing action.
type Mark struct {
	Point  image.Point `json:"point"`
	Color  color.RGBA  `json:"color"`
	Radius int         `json:"radius"`
	Erase  bool        `json:"erase"`
}

// Canvas owns the ordered mark sequence of one drawing session together
// with the current tool state. It is not safe for concurrent use.
type Canvas struct {
	marks        []Mark
	color        color.RGBA
	brushRadius  int
	eraserRadius int
	eraser       bool

	// overlay is allocated while rows and cols are non-zero.
	overlay gocv.Mat
	rows    int
	cols    int
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithBrushRadius sets the initial draw radius.
func WithBrushRadius(r int) Option {
	return func(c *Canvas) {
		if r > 0 {
			c.brushRadius = r
		}
	}
}

// WithEraserRadius sets the fixed eraser radius.
func WithEraserRadius(r int) Option {
	return func(c *Canvas) {
		if r > 0 {
			c.eraserRadius = r
		}
	}
}

// New creates an empty canvas.
func New(opts ...Option) *Canvas {
	c := &Canvas{
		color:        DefaultColor,
		brushRadius:  DefaultBrushRadius,
		eraserRadius: DefaultEraserRadius,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddPoint appends a mark at p using the current color, brush radius and
// eraser flag.
func (c *Canvas) AddPoint(p image.Point) {
	c.marks = append(c.marks, Mark{
		Point:  p,
		Color:  c.color,
		Radius: c.brushRadius,
		Erase:  c.eraser,
	})
}

// ChangeColor sets the color of future marks.
func (c *Canvas) ChangeColor(col color.RGBA) {
	c.color = col
}

// SetEraserMode sets whether future marks erase.
func (c *Canvas) SetEraserMode(enabled bool) {
	c.eraser = enabled
}

// SetBrushSize sets the draw radius of future marks. Non-positive sizes are ignored.
func (c *Canvas) SetBrushSize(size int) {
	if size <= 0 {
		return
	}
	c.brushRadius = size
}

// Clear drops every mark. Tool state is kept.
func (c *Canvas) Clear() {
	c.marks = c.marks[:0]
}

// Marks returns a copy of the mark sequence.
func (c *Canvas) Marks() []Mark {
	out := make([]Mark, len(c.marks))
	copy(out, c.marks)
	return out
}

// Len returns the number of recorded marks.
func (c *Canvas) Len() int { return len(c.marks) }

// Color returns the current pen color.
func (c *Canvas) Color() color.RGBA { return c.color }

// BrushSize returns the current draw radius.
func (c *Canvas) BrushSize() int { return c.brushRadius }

// EraserSize returns the eraser radius.
func (c *Canvas) EraserSize() int { return c.eraserRadius }

// EraserMode reports whether future marks erase.
func (c *Canvas) EraserMode() bool { return c.eraser }

// RenderOverlay replays every mark onto a height x width BGR buffer and
// returns it. The buffer belongs to the canvas: it is reused by the next
// call and must not be closed by the caller. It is reallocated only when
// the requested dimensions change.
func (c *Canvas) RenderOverlay(height, width int) (*gocv.Mat, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("render %dx%d: %w", width, height, ErrInvalidDimensions)
	}

	if c.rows != height || c.cols != width {
		c.release()
		c.overlay = gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
		c.rows = height
		c.cols = width
	}

	c.replay(&c.overlay)
	return &c.overlay, nil
}

// Snapshot renders the marks at height x width into a private buffer and
// returns it PNG encoded. The overlay buffer is left untouched.
func (c *Canvas) Snapshot(height, width int) ([]byte, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("snapshot %dx%d: %w", width, height, ErrInvalidDimensions)
	}

	img := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	defer img.Close()
	c.replay(&img)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory released by buf.Close
	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}

// replay resets dst to the background and paints every mark in order.
func (c *Canvas) replay(dst *gocv.Mat) {
	dst.SetTo(gocv.NewScalar(0, 0, 0, 0))

	for _, m := range c.marks {
		if m.Erase {
			gocv.Circle(dst, m.Point, c.eraserRadius, background, -1)
			continue
		}
		gocv.Circle(dst, m.Point, m.Radius, m.Color, -1)
	}
}

func (c *Canvas) release() {
	if c.rows != 0 {
		c.overlay.Close()
	}
	c.overlay = gocv.Mat{}
	c.rows, c.cols = 0, 0
}

// Close releases the overlay buffer. The canvas may still be rendered
// afterwards; a new buffer is allocated on demand.
func (c *Canvas) Close() error {
	c.release()
	return nil
}
