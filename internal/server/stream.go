package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ayusman/aircanvas/internal/app"
	"github.com/ayusman/aircanvas/internal/auth"
)

// StreamHandler serves the caller's composited frames as MJPEG.
type StreamHandler struct {
	sessions *app.Manager
}

// NewStreamHandler creates a new StreamHandler over the session manager.
func NewStreamHandler(sessions *app.Manager) *StreamHandler {
	return &StreamHandler{sessions: sessions}
}

// ServeHTTP streams frames until the client disconnects or the session closes.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	u, ok := auth.UserFrom(r.Context())
	if !ok {
		http.Error(w, "Not logged in", http.StatusUnauthorized)
		return
	}
	sess, err := h.sessions.Get(u.ID)
	if errors.Is(err, app.ErrNoSession) {
		http.Error(w, "No drawing session", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}

	frames, cancel := sess.SubscribeFrames()
	defer cancel()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flush(w)

	for {
		select {
		case <-r.Context().Done():
			return
		case buf, ok := <-frames:
			if !ok {
				return
			}
			if err := writePart(w, buf); err != nil {
				return
			}
			flush(w)
		}
	}
}

// writePart writes one JPEG part of the multipart stream.
func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\r\n")
	return err
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
