// Package api implements the JSON handlers behind /api.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/ayusman/aircanvas/internal/auth"
	"github.com/ayusman/aircanvas/internal/logging"
	"github.com/ayusman/aircanvas/internal/store"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// internalError logs err and answers 500 with a generic message.
func internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logging.WithComponent("api").Error(msg, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

// splitPath trims prefix from the request path and returns the remaining
// non-empty segments.
func splitPath(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// currentUser returns the user placed in the context by auth.Service.Require.
func currentUser(w http.ResponseWriter, r *http.Request) (*store.User, bool) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not logged in")
	}
	return u, ok
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
