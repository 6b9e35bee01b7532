// Package app runs the per-user drawing pipeline: camera frames go through
// hand detection and gesture arbitration, the resulting command updates the
// user's canvas, and the canvas is blended back over the mirrored video.
package app

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/aircanvas/internal/canvas"
	"github.com/ayusman/aircanvas/internal/capture"
	"github.com/ayusman/aircanvas/internal/detector"
	"github.com/ayusman/aircanvas/internal/gesture"
	"github.com/ayusman/aircanvas/internal/landmark"
	"github.com/ayusman/aircanvas/internal/logging"
)

var (
	// ErrNoSession is returned when a user has no open drawing session.
	ErrNoSession = errors.New("no drawing session")
	// ErrUnknownColor is returned by SetColor for names outside the palette.
	ErrUnknownColor = errors.New("unknown color")
	// ErrEmptyFrame is returned when ProcessFrame gets nothing to work on.
	ErrEmptyFrame = errors.New("empty frame")
)

// Pipeline timing defaults.
const (
	IdleFPS       = 5
	ActiveFPS     = 15
	IdleTimeoutMs = 2000
)

// Config tunes a drawing session.
type Config struct {
	Mirror          bool
	DrawLandmarks   bool
	FrameWeight     float64
	CyclePolicy     gesture.CyclePolicy
	BrushRadius     int
	EraserRadius    int
	IdleFPS         int
	ActiveFPS       int
	IdleTimeout     time.Duration
	MotionThreshold float64
	JPEGQuality     int
	SnapshotHeight  int
	SnapshotWidth   int
}

// DefaultConfig mirrors the video, draws the hand skeleton and advances the
// palette once per color-cycle pose.
func DefaultConfig() Config {
	return Config{
		Mirror:          true,
		DrawLandmarks:   true,
		FrameWeight:     canvas.DefaultFrameWeight,
		CyclePolicy:     gesture.CycleEdge,
		BrushRadius:     canvas.DefaultBrushRadius,
		EraserRadius:    canvas.DefaultEraserRadius,
		IdleFPS:         IdleFPS,
		ActiveFPS:       ActiveFPS,
		IdleTimeout:     IdleTimeoutMs * time.Millisecond,
		MotionThreshold: capture.DefaultMotionThreshold,
		JPEGQuality:     80,
		SnapshotHeight:  canvas.SnapshotHeight,
		SnapshotWidth:   canvas.SnapshotWidth,
	}
}

// State is a point-in-time view of a session's tools.
type State struct {
	Color      string `json:"color"`
	Hex        string `json:"hex"`
	BrushSize  int    `json:"brush_size"`
	EraserSize int    `json:"eraser_size"`
	Eraser     bool   `json:"eraser"`
	Marks      int    `json:"marks"`
	Running    bool   `json:"running"`
	Active     bool   `json:"active"`
	Enabled    bool   `json:"enabled"`
}

// Session is one user's drawing session. It owns the canvas, palette and
// arbiter for the session's lifetime; mu serializes every canvas access so
// the frame loop and HTTP handlers never mutate it in parallel.
type Session struct {
	id       string
	cfg      Config
	camera   capture.Camera
	detector detector.Detector
	motion   *capture.MotionDetector
	gate     *capture.ActivityGate
	log      *slog.Logger

	mu      sync.Mutex
	canvas  *canvas.Canvas
	arbiter *gesture.Arbiter
	enabled bool
	active  bool
	closed  bool

	loopMu sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}

	hub *hub
}

// NewSession wires a session for userID around cam and det. The session
// takes ownership of both.
func NewSession(userID string, cfg Config, cam capture.Camera, det detector.Detector) *Session {
	s := &Session{
		id:       userID,
		cfg:      cfg,
		camera:   cam,
		detector: det,
		motion:   capture.NewMotionDetector(cfg.MotionThreshold),
		gate:     capture.NewActivityGate(cfg.IdleTimeout),
		log:      logging.WithComponent("session").With("user", userID),
		enabled:  true,
		hub:      newHub(),
	}
	s.canvas = s.newCanvas()
	s.arbiter = gesture.NewArbiter(gesture.NewClassifier(), cfg.CyclePolicy)
	return s
}

func (s *Session) newCanvas() *canvas.Canvas {
	var opts []canvas.Option
	if s.cfg.BrushRadius > 0 {
		opts = append(opts, canvas.WithBrushRadius(s.cfg.BrushRadius))
	}
	if s.cfg.EraserRadius > 0 {
		opts = append(opts, canvas.WithEraserRadius(s.cfg.EraserRadius))
	}
	return canvas.New(opts...)
}

// ID returns the owning user's ID.
func (s *Session) ID() string { return s.id }

// ProcessFrame runs one frame through the pipeline and returns the
// composited output, which the caller must close. A detector failure is
// logged and the frame is composited without gesture processing.
func (s *Session) ProcessFrame(frame *gocv.Mat) (gocv.Mat, gesture.Event, error) {
	out, ev, _, err := s.process(frame, true)
	return out, ev, err
}

// process mirrors frame, optionally detects and applies a gesture, and
// composites the overlay. hand reports whether a hand was seen.
func (s *Session) process(frame *gocv.Mat, detect bool) (out gocv.Mat, ev gesture.Event, hand bool, err error) {
	if frame == nil || frame.Empty() {
		return gocv.Mat{}, ev, false, ErrEmptyFrame
	}

	view := gocv.NewMat()
	defer view.Close()
	if s.cfg.Mirror {
		gocv.Flip(*frame, &view, 1)
	} else {
		frame.CopyTo(&view)
	}
	rows, cols := view.Rows(), view.Cols()

	var set *landmark.Set
	if detect && s.detector != nil {
		set, err = s.detector.Detect(&view)
		if err != nil {
			s.log.Warn("hand detection failed", "error", err)
			set, err = nil, nil
			detect = false
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if detect {
		ev = s.arbiter.Decide(set, rows, cols)
		s.apply(ev)
	}

	overlay, err := s.canvas.RenderOverlay(rows, cols)
	if err != nil {
		return gocv.Mat{}, ev, set != nil, err
	}

	if set != nil && s.cfg.DrawLandmarks {
		drawHand(&view, set)
	}

	out = gocv.NewMat()
	if err := canvas.Composite(view, *overlay, &out, s.cfg.FrameWeight); err != nil {
		out.Close()
		return gocv.Mat{}, ev, set != nil, fmt.Errorf("composite: %w", err)
	}
	return out, ev, set != nil, nil
}

// apply mutates the canvas for ev. Caller holds mu.
func (s *Session) apply(ev gesture.Event) {
	switch ev.Kind {
	case gesture.KindClear:
		s.canvas.Clear()
	case gesture.KindColorCycle:
		if ev.Advanced {
			s.canvas.ChangeColor(ev.Color.RGBA)
		}
	case gesture.KindErase:
		s.canvas.SetEraserMode(true)
		s.canvas.AddPoint(ev.Point)
	case gesture.KindDraw:
		s.canvas.SetEraserMode(false)
		s.canvas.AddPoint(ev.Point)
	default:
		s.canvas.SetEraserMode(false)
	}
}

var (
	skeletonColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	jointColor    = color.RGBA{G: 200, B: 255, A: 255}
)

// drawHand paints the hand skeleton onto img.
func drawHand(img *gocv.Mat, set *landmark.Set) {
	rows, cols := img.Rows(), img.Cols()
	var pts [landmark.NumLandmarks]image.Point
	for i, p := range set.Points {
		pts[i] = p.Pixel(rows, cols)
	}
	for _, c := range landmark.Connections {
		gocv.Line(img, pts[c[0]], pts[c[1]], skeletonColor, 2)
	}
	for _, p := range pts {
		gocv.Circle(img, p, 4, jointColor, -1)
	}
}

// Snapshot renders the canvas at the configured snapshot size as PNG.
func (s *Session) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Snapshot(s.cfg.SnapshotHeight, s.cfg.SnapshotWidth)
}

// Clear empties the canvas and keeps the tool state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvas.Clear()
	s.hub.publishEvent(gesture.Event{Kind: gesture.KindClear})
}

// Reset starts the drawing over: empty canvas, default tools, fresh palette.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvas.Close()
	s.canvas = s.newCanvas()
	s.arbiter = gesture.NewArbiter(gesture.NewClassifier(), s.cfg.CyclePolicy)
}

// SetBrushSize changes the pen radius. Non-positive sizes are ignored.
func (s *Session) SetBrushSize(size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvas.SetBrushSize(size)
}

// SetColor selects a palette color by name. The gesture palette follows,
// so the next color-cycle gesture moves on from the chosen color.
func (s *Session) SetColor(name string) error {
	c, ok := gesture.Lookup(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownColor)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arbiter.Classifier().Palette().Select(c.Name)
	s.canvas.ChangeColor(c.RGBA)
	return nil
}

// SetEnabled pauses or resumes frame processing in the loop.
func (s *Session) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

// IsEnabled reports whether the loop processes frames.
func (s *Session) IsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Marks returns a copy of the recorded marks.
func (s *Session) Marks() []canvas.Mark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Marks()
}

// State returns the current tool state.
func (s *Session) State() State {
	s.mu.Lock()
	c := s.canvas.Color()
	st := State{
		Color:      gesture.NameOf(c),
		Hex:        gesture.NamedColor{RGBA: c}.Hex(),
		BrushSize:  s.canvas.BrushSize(),
		EraserSize: s.canvas.EraserSize(),
		Eraser:     s.canvas.EraserMode(),
		Marks:      s.canvas.Len(),
		Active:     s.active,
		Enabled:    s.enabled,
	}
	s.mu.Unlock()

	st.Running = s.Running()
	return st
}

// SubscribeFrames returns a channel of JPEG encoded output frames and a
// cancel func. Slow subscribers miss frames rather than stall the loop.
func (s *Session) SubscribeFrames() (<-chan []byte, func()) {
	return s.hub.subscribeFrames()
}

// SubscribeEvents returns a channel of non-none gesture events and a cancel func.
func (s *Session) SubscribeEvents() (<-chan gesture.Event, func()) {
	return s.hub.subscribeEvents()
}

// Close stops the loop and releases the camera, detector and canvas.
// It is safe to call more than once.
func (s *Session) Close() error {
	s.Stop()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.canvas.Close()
	s.mu.Unlock()

	s.hub.close()
	s.motion.Close()

	var errs []error
	if s.detector != nil {
		if err := s.detector.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close detector: %w", err))
		}
	}
	s.log.Info("session closed")
	return errors.Join(errs...)
}
