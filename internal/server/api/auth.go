package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/ayusman/aircanvas/internal/auth"
	"github.com/ayusman/aircanvas/internal/store"
)

// SessionCloser ends a user's drawing session.
type SessionCloser interface {
	Close(userID string) error
}

// AuthHandler serves /api/auth/{signup,login,logout,me}.
type AuthHandler struct {
	auth     *auth.Service
	sessions SessionCloser
}

// NewAuthHandler creates an AuthHandler. sessions may be nil.
func NewAuthHandler(a *auth.Service, sessions SessionCloser) *AuthHandler {
	return &AuthHandler{auth: a, sessions: sessions}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func toUserResponse(u *store.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/auth")
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}

	switch parts[0] {
	case "signup":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.signup(w, r)
	case "login":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.login(w, r)
	case "logout":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.logout(w, r)
	case "me":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.me(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	u, err := h.auth.Signup(req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already registered")
		return
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		internalError(w, r, "Failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	u, sess, err := h.auth.Login(req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		internalError(w, r, "Failed to log in", err)
		return
	}

	auth.SetCookie(w, sess)
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// logout closes the drawing session and the login session. It succeeds
// even without a valid cookie.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	token := auth.Token(r)
	if u, err := h.auth.Authenticate(token); err == nil && h.sessions != nil {
		h.sessions.Close(u.ID)
	}
	if token != "" {
		if err := h.auth.Logout(token); err != nil {
			internalError(w, r, "Failed to log out", err)
			return
		}
	}
	auth.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.Authenticate(auth.Token(r))
	if errors.Is(err, auth.ErrUnauthenticated) {
		writeError(w, http.StatusUnauthorized, "Not logged in")
		return
	}
	if err != nil {
		internalError(w, r, "Failed to load user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}
