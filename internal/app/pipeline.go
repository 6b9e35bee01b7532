package app

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/aircanvas/internal/capture"
	"github.com/ayusman/aircanvas/internal/gesture"
)

// Start opens the camera and runs the frame loop in the background.
// Calling Start on a running session is a no-op.
func (s *Session) Start() error {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()

	if s.stopCh != nil {
		return nil
	}

	if err := s.camera.Open(); err != nil {
		return err
	}
	s.camera.SetFPS(s.cfg.IdleFPS)
	s.motion.Reset()
	s.gate = capture.NewActivityGate(s.cfg.IdleTimeout)
	s.setActive(false)

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.run(s.stopCh, s.doneCh)

	s.log.Info("frame loop started")
	return nil
}

// Stop halts the loop and closes the camera. The canvas is kept.
func (s *Session) Stop() {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()

	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	<-s.doneCh
	s.stopCh = nil
	s.doneCh = nil

	if err := s.camera.Close(); err != nil {
		s.log.Warn("error closing camera", "error", err)
	}
	s.log.Info("frame loop stopped")
}

// Running reports whether the frame loop is active.
func (s *Session) Running() bool {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	return s.stopCh != nil
}

// run is the frame loop. It starts idle, where frames are only composited
// over the existing drawing. Motion or a visible hand switches to active
// mode at the higher frame rate with hand detection; after IdleTimeout
// without either it drops back to idle.
func (s *Session) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := fpsInterval(s.cfg.IdleFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.IsEnabled() {
				continue
			}

			frame, err := s.camera.ReadFrame()
			if err != nil {
				s.log.Debug("error reading frame", "error", err)
				continue
			}

			now := time.Now()
			moved, _ := s.motion.Detect(frame)
			active, changed := s.gate.Observe(moved, now)

			out, ev, hand, err := s.process(frame, active)
			frame.Close()
			if err != nil {
				s.log.Warn("frame processing failed", "error", err)
				continue
			}

			// A tracked hand keeps the loop active even when it holds still.
			if hand {
				s.gate.Force(true, now)
			}

			if changed {
				s.setActive(active)
				fps := s.cfg.IdleFPS
				if active {
					fps = s.cfg.ActiveFPS
				}
				s.camera.SetFPS(fps)
				ticker.Reset(fpsInterval(fps))
				s.log.Debug("pipeline mode changed", "active", active, "fps", fps)
			}

			s.publish(out, ev)
			out.Close()
		}
	}
}

func (s *Session) setActive(active bool) {
	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
}

func (s *Session) publish(out gocv.Mat, ev gesture.Event) {
	if notify(ev) {
		s.hub.publishEvent(ev)
	}
	if !s.hub.hasFrameSubscribers() {
		return
	}
	data, err := encodeJPEG(out, s.cfg.JPEGQuality)
	if err != nil {
		s.log.Warn("encode frame", "error", err)
		return
	}
	s.hub.publishFrame(data)
}

// encodeJPEG returns a Go-owned copy of img encoded as JPEG.
func encodeJPEG(img gocv.Mat, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}

func fpsInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = IdleFPS
	}
	return time.Second / time.Duration(fps)
}

// notify reports whether ev goes out to event subscribers. A held
// color-cycle pose that did not move the palette is not news.
func notify(ev gesture.Event) bool {
	switch ev.Kind {
	case gesture.KindNone:
		return false
	case gesture.KindColorCycle:
		return ev.Advanced
	default:
		return true
	}
}
