package app

import (
	"errors"
	"image/color"
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/aircanvas/internal/capture"
	"github.com/ayusman/aircanvas/internal/detector"
	"github.com/ayusman/aircanvas/internal/gesture"
	"github.com/ayusman/aircanvas/internal/landmark"
)

type testRig struct {
	mu        sync.Mutex
	cameras   []*capture.MockCamera
	detectors []*detector.MockDetector
	frames    []*gocv.Mat
}

// newTestManager returns a Manager whose sessions use mock cameras that
// alternate black and white frames, so the motion gate sees movement.
func newTestManager(t *testing.T, autoStart bool) (*Manager, *testRig) {
	t.Helper()

	black := capture.SolidFrame(120, 160, color.RGBA{A: 255})
	white := capture.SolidFrame(120, 160, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	rig := &testRig{frames: []*gocv.Mat{&black, &white}}

	cfg := testConfig()
	cfg.IdleFPS = 50
	cfg.ActiveFPS = 50

	m := NewManager(cfg,
		func() capture.Camera {
			rig.mu.Lock()
			defer rig.mu.Unlock()
			cam := capture.NewMockCamera(rig.frames, true)
			rig.cameras = append(rig.cameras, cam)
			return cam
		},
		func() (detector.Detector, error) {
			rig.mu.Lock()
			defer rig.mu.Unlock()
			det := detector.NewMockDetector()
			rig.detectors = append(rig.detectors, det)
			return det, nil
		},
	)
	m.SetAutoStart(autoStart)

	t.Cleanup(func() {
		m.CloseAll()
		black.Close()
		white.Close()
	})
	return m, rig
}

func TestManager_OpenGetClose(t *testing.T) {
	m, rig := newTestManager(t, false)

	if _, err := m.Get("alice"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Get() before Open error = %v, want ErrNoSession", err)
	}

	s, err := m.Open("alice")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got, err := m.Get("alice")
	if err != nil || got != s {
		t.Fatalf("Get() = %p, %v; want %p", got, err, s)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}

	if err := m.Close("alice"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !rig.detectors[0].Closed() {
		t.Error("Close() should release the session detector")
	}
	if err := m.Close("alice"); !errors.Is(err, ErrNoSession) {
		t.Errorf("second Close() error = %v, want ErrNoSession", err)
	}
}

func TestManager_OpenResetsCanvas(t *testing.T) {
	m, rig := newTestManager(t, false)

	s, _ := m.Open("alice")
	rig.detectors[0].SetHand(ptr(landmark.PointingLandmarks()))
	process(t, s)
	if len(s.Marks()) != 1 {
		t.Fatal("expected a mark before reopening")
	}

	again, err := m.Open("alice")
	if err != nil {
		t.Fatal(err)
	}
	if again != s {
		t.Error("Open() should reuse the user's session")
	}
	if len(again.Marks()) != 0 {
		t.Error("Open() should start the drawing over")
	}
	if len(rig.detectors) != 1 {
		t.Errorf("detectors created = %d, want 1", len(rig.detectors))
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	m, rig := newTestManager(t, false)

	alice, _ := m.Open("alice")
	bob, _ := m.Open("bob")

	rig.detectors[0].SetHand(ptr(landmark.ShakaLandmarks()))
	rig.detectors[1].SetHand(ptr(landmark.PointingLandmarks()))

	process(t, alice)
	process(t, bob)

	if got := alice.State().Color; got != "green" {
		t.Errorf("alice color = %q, want green", got)
	}
	if got := bob.State().Color; got != "red" {
		t.Errorf("bob color = %q, want red (palette is per session)", got)
	}
	if len(alice.Marks()) != 0 || len(bob.Marks()) != 1 {
		t.Errorf("marks alice=%d bob=%d, want 0 and 1", len(alice.Marks()), len(bob.Marks()))
	}
}

func TestManager_SetEnabledAndClearAll(t *testing.T) {
	m, rig := newTestManager(t, false)

	a, _ := m.Open("alice")
	rig.detectors[0].SetHand(ptr(landmark.PointingLandmarks()))
	process(t, a)

	m.SetEnabled(false)
	if a.IsEnabled() || m.IsEnabled() {
		t.Error("SetEnabled(false) should pause sessions")
	}
	b, _ := m.Open("bob")
	if b.IsEnabled() {
		t.Error("sessions opened while paused should start paused")
	}

	m.ClearAll()
	if len(a.Marks()) != 0 {
		t.Error("ClearAll() should clear every canvas")
	}
}

func TestManager_DetectorFactoryError(t *testing.T) {
	m := NewManager(testConfig(),
		func() capture.Camera { return capture.NewMockCamera(nil, false) },
		func() (detector.Detector, error) { return nil, errors.New("no python") },
	)
	if _, err := m.Open("alice"); err == nil {
		t.Error("Open() should fail when the detector cannot be created")
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestManager_ReopenStartFailureDropsSession(t *testing.T) {
	m, rig := newTestManager(t, true)

	s, err := m.Open("alice")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	s.Stop()
	rig.cameras[0].SetOpenError(errors.New("device busy"))

	if _, err := m.Open("alice"); err == nil {
		t.Fatal("Open() should fail when the camera cannot restart")
	}
	if _, err := m.Get("alice"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Get() after failed reopen error = %v, want ErrNoSession", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
	if !rig.detectors[0].Closed() {
		t.Error("dropped session should close its detector")
	}

	rig.cameras[0].SetOpenError(nil)
	if _, err := m.Open("alice"); err != nil {
		t.Errorf("Open() after failure error = %v, want a fresh session", err)
	}
}

func TestManager_OpenStartFailure(t *testing.T) {
	m := NewManager(testConfig(),
		func() capture.Camera {
			cam := capture.NewMockCamera(nil, false)
			cam.SetOpenError(errors.New("no camera"))
			return cam
		},
		func() (detector.Detector, error) { return detector.NewMockDetector(), nil },
	)
	if _, err := m.Open("alice"); err == nil {
		t.Error("Open() should fail when the camera cannot open")
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestSession_FrameLoop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping frame loop test in short mode")
	}

	m, rig := newTestManager(t, true)

	s, err := m.Open("alice")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	rig.detectors[0].SetHand(ptr(landmark.PointingLandmarks()))

	frames, cancelFrames := s.SubscribeFrames()
	defer cancelFrames()
	events, cancelEvents := s.SubscribeEvents()
	defer cancelEvents()

	if !s.Running() {
		t.Fatal("session should be running after Open")
	}

	select {
	case data := <-frames:
		if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
			t.Error("stream frame should be JPEG")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a frame")
	}

	select {
	case ev := <-events:
		if ev.Kind != gesture.KindDraw {
			t.Errorf("event = %v, want draw", ev.Kind)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a draw event")
	}

	st := s.State()
	if !st.Active {
		t.Error("session should be active while a hand is tracked")
	}
	if st.Marks == 0 {
		t.Error("draw events should add marks")
	}

	s.Stop()
	if s.Running() {
		t.Error("Running() should be false after Stop")
	}
	if rig.cameras[0].IsOpen() {
		t.Error("Stop() should close the camera")
	}
	s.Stop()
}
