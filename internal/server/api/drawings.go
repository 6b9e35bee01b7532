package api

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/aircanvas/internal/app"
	"github.com/ayusman/aircanvas/internal/export"
	"github.com/ayusman/aircanvas/internal/store"
)

// DrawingHandler serves /api/drawings. Every lookup is scoped to the
// caller, so another user's drawing answers 404.
type DrawingHandler struct {
	store    *store.Store
	sessions *app.Manager
}

// NewDrawingHandler creates a DrawingHandler.
func NewDrawingHandler(st *store.Store, sessions *app.Manager) *DrawingHandler {
	return &DrawingHandler{store: st, sessions: sessions}
}

type drawingResponse struct {
	ID        string `json:"id"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toDrawingResponse(d *store.Drawing) drawingResponse {
	return drawingResponse{
		ID:        d.ID,
		Width:     d.Width,
		Height:    d.Height,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
}

func (h *DrawingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}

	parts := splitPath(r.URL.Path, "/api/drawings")
	switch len(parts) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r, u.ID)
		case http.MethodPost:
			h.save(w, r, u.ID)
		default:
			methodNotAllowed(w)
		}
	case 1:
		switch r.Method {
		case http.MethodGet:
			h.download(w, r, u.ID, parts[0])
		case http.MethodDelete:
			h.delete(w, r, u.ID, parts[0])
		default:
			methodNotAllowed(w)
		}
	case 2:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		switch parts[1] {
		case "thumbnail":
			h.thumbnail(w, r, u.ID, parts[0])
		case "pdf":
			h.pdf(w, r, u.ID, parts[0])
		default:
			http.NotFound(w, r)
		}
	default:
		http.NotFound(w, r)
	}
}

func (h *DrawingHandler) list(w http.ResponseWriter, r *http.Request, userID string) {
	drawings, err := h.store.Drawings().List(userID)
	if err != nil {
		internalError(w, r, "Failed to list drawings", err)
		return
	}

	resp := make([]drawingResponse, 0, len(drawings))
	for _, d := range drawings {
		resp = append(resp, toDrawingResponse(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

// save snapshots the caller's canvas and stores it as a PNG.
func (h *DrawingHandler) save(w http.ResponseWriter, r *http.Request, userID string) {
	s, err := h.sessions.Get(userID)
	if errors.Is(err, app.ErrNoSession) {
		writeError(w, http.StatusConflict, "No drawing session")
		return
	}
	if err != nil {
		internalError(w, r, "Failed to load session", err)
		return
	}

	data, err := s.Snapshot()
	if err != nil {
		internalError(w, r, "Failed to render drawing", err)
		return
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		internalError(w, r, "Failed to render drawing", err)
		return
	}

	d := &store.Drawing{
		UserID:    userID,
		ImageData: data,
		Width:     cfg.Width,
		Height:    cfg.Height,
	}
	if err := h.store.Drawings().Create(d); err != nil {
		internalError(w, r, "Failed to save drawing", err)
		return
	}

	writeJSON(w, http.StatusCreated, drawingResponse{
		ID:        d.ID,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	})
}

// lookup loads a drawing owned by userID, writing 404 when absent.
func (h *DrawingHandler) lookup(w http.ResponseWriter, r *http.Request, userID, id string) (*store.Drawing, bool) {
	d, err := h.store.Drawings().Get(userID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Drawing not found")
		return nil, false
	}
	if err != nil {
		internalError(w, r, "Failed to load drawing", err)
		return nil, false
	}
	return d, true
}

func (h *DrawingHandler) download(w http.ResponseWriter, r *http.Request, userID, id string) {
	d, ok := h.lookup(w, r, userID, id)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment;filename=drawing_%s.png", d.ID))
	w.Header().Set("Content-Length", strconv.Itoa(len(d.ImageData)))
	w.Write(d.ImageData)
}

func (h *DrawingHandler) thumbnail(w http.ResponseWriter, r *http.Request, userID, id string) {
	d, ok := h.lookup(w, r, userID, id)
	if !ok {
		return
	}
	thumb, err := export.Thumbnail(d.ImageData, export.ThumbWidth, export.ThumbHeight)
	if err != nil {
		internalError(w, r, "Failed to render thumbnail", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(thumb)
}

func (h *DrawingHandler) pdf(w http.ResponseWriter, r *http.Request, userID, id string) {
	d, ok := h.lookup(w, r, userID, id)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := export.PDF(&buf, d.ImageData, export.PDFOptions{
		Title:   "Drawing " + d.ID,
		Created: d.CreatedAt,
	})
	if err != nil {
		internalError(w, r, "Failed to render PDF", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment;filename=drawing_%s.pdf", d.ID))
	w.Write(buf.Bytes())
}

func (h *DrawingHandler) delete(w http.ResponseWriter, r *http.Request, userID, id string) {
	err := h.store.Drawings().Delete(userID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Drawing not found")
		return
	}
	if err != nil {
		internalError(w, r, "Failed to delete drawing", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
