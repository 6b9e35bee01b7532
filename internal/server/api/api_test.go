package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/api/drawings", nil},
		{"/api/drawings/", nil},
		{"/api/drawings/abc", []string{"abc"}},
		{"/api/drawings/abc/pdf", []string{"abc", "pdf"}},
		{"/api/drawings/abc/thumbnail/", []string{"abc", "thumbnail"}},
	}
	for _, tt := range tests {
		if got := splitPath(tt.path, "/api/drawings"); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusConflict, "Email already registered")

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Email already registered" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestHandlers_RequireUser(t *testing.T) {
	handlers := map[string]http.Handler{
		"/api/canvas":   NewCanvasHandler(nil),
		"/api/drawings": NewDrawingHandler(nil, nil),
	}
	for path, h := range handlers {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without user status = %d, want %d", path, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestAuthHandler_Routing(t *testing.T) {
	h := NewAuthHandler(nil, nil)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/auth/signup", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/auth/login", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/auth/me", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/auth/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/auth/", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}
