package e2e

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayusman/aircanvas/internal/app"
	"github.com/ayusman/aircanvas/internal/auth"
	"github.com/ayusman/aircanvas/internal/capture"
	"github.com/ayusman/aircanvas/internal/detector"
	"github.com/ayusman/aircanvas/internal/gesture"
	"github.com/ayusman/aircanvas/internal/landmark"
	"github.com/ayusman/aircanvas/internal/server"
	"github.com/ayusman/aircanvas/internal/store"
	"github.com/ayusman/aircanvas/testdata"
)

type harness struct {
	ts       *httptest.Server
	sessions *app.Manager

	mu        sync.Mutex
	detectors map[int]*detector.MockDetector
	n         int
}

func newHarness(t *testing.T, autoStart bool) *harness {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}

	frames := testdata.AlternatingFrames(2, 120, 160)

	h := &harness{detectors: make(map[int]*detector.MockDetector)}
	cfg := app.DefaultConfig()
	cfg.IdleFPS = 30
	cfg.ActiveFPS = 30
	h.sessions = app.NewManager(cfg,
		func() capture.Camera { return capture.NewMockCamera(frames, true) },
		func() (detector.Detector, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			det := detector.NewMockDetector()
			h.detectors[h.n] = det
			h.n++
			return det, nil
		},
	)
	h.sessions.SetAutoStart(autoStart)

	srv := server.New(server.Config{
		Store:    s,
		Auth:     auth.NewService(s, auth.WithCost(bcrypt.MinCost)),
		Sessions: h.sessions,
	})
	h.ts = httptest.NewServer(srv)

	t.Cleanup(func() {
		h.ts.Close()
		h.sessions.CloseAll()
		s.Close()
		testdata.CloseAll(frames)
	})
	return h
}

func (h *harness) detector(t *testing.T, i int) *detector.MockDetector {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	det, ok := h.detectors[i]
	if !ok {
		t.Fatalf("detector %d not created", i)
	}
	return det
}

func (h *harness) login(t *testing.T, name, email string) *http.Client {
	t.Helper()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	h.expect(t, client, http.MethodPost, "/api/auth/signup",
		`{"name":"`+name+`","email":"`+email+`","password":"hunter22"}`, http.StatusCreated)
	h.expect(t, client, http.MethodPost, "/api/auth/login",
		`{"email":"`+email+`","password":"hunter22"}`, http.StatusOK)
	return client
}

// expect performs a request, checks the status and returns the body.
func (h *harness) expect(t *testing.T, client *http.Client, method, path, body string, status int) []byte {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, h.ts.URL+path, r)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != status {
		t.Fatalf("%s %s status = %d, want %d (%s)", method, path, resp.StatusCode, status, data)
	}
	return data
}

func rgbAt(img image.Image, x, y int) color.RGBA {
	r, g, b, _ := img.At(x, y).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}
}

func TestE2E_DrawSaveExport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	h := newHarness(t, false)
	alice := h.login(t, "Alice", "alice@example.com")
	bob := h.login(t, "Bob", "bob@example.com")

	h.expect(t, alice, http.MethodPost, "/api/canvas/session", "", http.StatusOK)

	var me struct {
		ID string `json:"id"`
	}
	json.Unmarshal(h.expect(t, alice, http.MethodGet, "/api/auth/me", "", http.StatusOK), &me)
	sess, err := h.sessions.Get(me.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	script := testdata.DrawingScript()
	h.detector(t, 0).SetSequence(testdata.Sets(script)...)

	want := []gesture.Kind{
		gesture.KindDraw, gesture.KindDraw, gesture.KindDraw,
		gesture.KindErase, gesture.KindColorCycle, gesture.KindDraw, gesture.KindNone,
	}

	t.Run("RunScript", func(t *testing.T) {
		frame := testdata.Frame()
		defer frame.Close()

		for i, step := range script {
			out, ev, err := sess.ProcessFrame(&frame)
			if err != nil {
				t.Fatalf("step %s: ProcessFrame() error = %v", step.Name, err)
			}
			if out.Rows() != testdata.FrameHeight || out.Cols() != testdata.FrameWidth {
				t.Errorf("step %s: output %dx%d", step.Name, out.Cols(), out.Rows())
			}
			out.Close()

			if ev.Kind != want[i] {
				t.Errorf("step %s: kind = %v, want %v", step.Name, ev.Kind, want[i])
			}
		}

		var state app.State
		json.Unmarshal(h.expect(t, alice, http.MethodGet, "/api/canvas", "", http.StatusOK), &state)
		if state.Color != "green" || state.Eraser || state.Marks != 5 {
			t.Errorf("state = %+v, want green, pen, 5 marks", state)
		}
	})

	var saved struct {
		ID string `json:"id"`
	}
	t.Run("Save", func(t *testing.T) {
		json.Unmarshal(h.expect(t, alice, http.MethodPost, "/api/drawings", "", http.StatusCreated), &saved)
		if saved.ID == "" {
			t.Fatal("save returned no id")
		}
	})

	t.Run("DownloadMatchesStrokes", func(t *testing.T) {
		data := h.expect(t, alice, http.MethodGet, "/api/drawings/"+saved.ID, "", http.StatusOK)
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("png.Decode() error = %v", err)
		}

		point := landmark.PointingLandmarks()
		red := testdata.Shift(point, -0.10, 0).Points[landmark.IndexTip].Pixel(testdata.FrameHeight, testdata.FrameWidth)
		green := testdata.Shift(point, 0.10, 0).Points[landmark.IndexTip].Pixel(testdata.FrameHeight, testdata.FrameWidth)
		pinch := landmark.PinchLandmarks()
		erased := pinch.Points[landmark.IndexTip].Pixel(testdata.FrameHeight, testdata.FrameWidth)

		if got := rgbAt(img, red.X, red.Y); got != (color.RGBA{R: 255, A: 255}) {
			t.Errorf("pixel at %v = %v, want red", red, got)
		}
		if got := rgbAt(img, green.X, green.Y); got != (color.RGBA{G: 255, A: 255}) {
			t.Errorf("pixel at %v = %v, want green", green, got)
		}
		if got := rgbAt(img, erased.X, erased.Y); got != (color.RGBA{A: 255}) {
			t.Errorf("pixel at %v = %v, want background", erased, got)
		}
	})

	t.Run("Exports", func(t *testing.T) {
		thumb := h.expect(t, alice, http.MethodGet, "/api/drawings/"+saved.ID+"/thumbnail", "", http.StatusOK)
		if _, err := png.DecodeConfig(bytes.NewReader(thumb)); err != nil {
			t.Errorf("thumbnail is not a PNG: %v", err)
		}
		pdf := h.expect(t, alice, http.MethodGet, "/api/drawings/"+saved.ID+"/pdf", "", http.StatusOK)
		if !bytes.HasPrefix(pdf, []byte("%PDF")) {
			t.Error("pdf export missing %PDF header")
		}
	})

	t.Run("Isolation", func(t *testing.T) {
		h.expect(t, bob, http.MethodGet, "/api/drawings/"+saved.ID, "", http.StatusNotFound)
		h.expect(t, bob, http.MethodGet, "/api/canvas", "", http.StatusConflict)
	})

	t.Run("ReopenResets", func(t *testing.T) {
		var state app.State
		json.Unmarshal(h.expect(t, alice, http.MethodPost, "/api/canvas/session", "", http.StatusOK), &state)
		if state.Marks != 0 || state.Color != "red" {
			t.Errorf("state after reopen = %+v, want empty red canvas", state)
		}
	})
}

func TestE2E_LiveLoopEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	h := newHarness(t, true)
	client := h.login(t, "Ada", "ada@example.com")
	h.expect(t, client, http.MethodPost, "/api/canvas/session", "", http.StatusOK)

	base, _ := url.Parse(h.ts.URL)
	header := http.Header{}
	for _, c := range client.Jar.Cookies(base) {
		header.Add("Cookie", c.String())
	}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(h.ts.URL, "http")+"/api/events", header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	pointing := landmark.PointingLandmarks()
	h.detector(t, 0).SetHand(&pointing)

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	var msg server.EventMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if msg.Kind != "draw" {
		t.Errorf("kind = %q, want draw", msg.Kind)
	}

	// Gestures are ignored while input is disabled.
	h.sessions.SetEnabled(false)
	time.Sleep(100 * time.Millisecond)
	var before app.State
	json.Unmarshal(h.expect(t, client, http.MethodGet, "/api/canvas", "", http.StatusOK), &before)
	time.Sleep(200 * time.Millisecond)
	var after app.State
	json.Unmarshal(h.expect(t, client, http.MethodGet, "/api/canvas", "", http.StatusOK), &after)
	if after.Marks != before.Marks {
		t.Errorf("marks grew from %d to %d while disabled", before.Marks, after.Marks)
	}
	if after.Enabled {
		t.Error("state reports enabled after SetEnabled(false)")
	}
}
