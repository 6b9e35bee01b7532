package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/aircanvas/internal/app"
)

// CanvasHandler serves /api/canvas and its sub-resources.
type CanvasHandler struct {
	sessions *app.Manager
}

// NewCanvasHandler creates a CanvasHandler over the session manager.
func NewCanvasHandler(sessions *app.Manager) *CanvasHandler {
	return &CanvasHandler{sessions: sessions}
}

type updateCanvasRequest struct {
	Color     *string `json:"color"`
	BrushSize *int    `json:"brush_size"`
}

func (h *CanvasHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}

	parts := splitPath(r.URL.Path, "/api/canvas")
	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			h.state(w, r, u.ID)
		case http.MethodPut:
			h.update(w, r, u.ID)
		default:
			methodNotAllowed(w)
		}
	case len(parts) == 1 && parts[0] == "session":
		switch r.Method {
		case http.MethodPost:
			h.open(w, r, u.ID)
		case http.MethodDelete:
			h.close(w, r, u.ID)
		default:
			methodNotAllowed(w)
		}
	case len(parts) == 1 && parts[0] == "clear":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.clear(w, r, u.ID)
	default:
		http.NotFound(w, r)
	}
}

// session resolves the caller's drawing session, writing 409 if none is open.
func (h *CanvasHandler) session(w http.ResponseWriter, r *http.Request, userID string) (*app.Session, bool) {
	s, err := h.sessions.Get(userID)
	if errors.Is(err, app.ErrNoSession) {
		writeError(w, http.StatusConflict, "No drawing session")
		return nil, false
	}
	if err != nil {
		internalError(w, r, "Failed to load session", err)
		return nil, false
	}
	return s, true
}

func (h *CanvasHandler) open(w http.ResponseWriter, r *http.Request, userID string) {
	s, err := h.sessions.Open(userID)
	if err != nil {
		internalError(w, r, "Failed to start session", err)
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

func (h *CanvasHandler) close(w http.ResponseWriter, r *http.Request, userID string) {
	if err := h.sessions.Close(userID); err != nil && !errors.Is(err, app.ErrNoSession) {
		internalError(w, r, "Failed to stop session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CanvasHandler) state(w http.ResponseWriter, r *http.Request, userID string) {
	s, ok := h.session(w, r, userID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

func (h *CanvasHandler) update(w http.ResponseWriter, r *http.Request, userID string) {
	var req updateCanvasRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.BrushSize != nil && *req.BrushSize <= 0 {
		writeError(w, http.StatusBadRequest, "brush_size must be positive")
		return
	}

	s, ok := h.session(w, r, userID)
	if !ok {
		return
	}

	if req.Color != nil {
		if err := s.SetColor(*req.Color); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.BrushSize != nil {
		s.SetBrushSize(*req.BrushSize)
	}
	writeJSON(w, http.StatusOK, s.State())
}

func (h *CanvasHandler) clear(w http.ResponseWriter, r *http.Request, userID string) {
	s, ok := h.session(w, r, userID)
	if !ok {
		return
	}
	s.Clear()
	w.WriteHeader(http.StatusNoContent)
}
