// Package server provides the HTTP server for the air canvas.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ayusman/aircanvas/internal/app"
	"github.com/ayusman/aircanvas/internal/auth"
	"github.com/ayusman/aircanvas/internal/logging"
	"github.com/ayusman/aircanvas/internal/server/api"
	"github.com/ayusman/aircanvas/internal/store"
)

// ShutdownTimeout bounds how long Serve waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Config holds the server configuration. Store, Auth and Sessions must
// all be set for the API routes to be registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Auth      *auth.Service
	Sessions  *app.Manager
}

// Server represents the HTTP server for the air canvas application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	log    *slog.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    logging.WithComponent("server"),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil && s.config.Auth != nil && s.config.Sessions != nil {
		authHandler := api.NewAuthHandler(s.config.Auth, s.config.Sessions)
		s.mux.Handle("/api/auth/", authHandler)

		require := s.config.Auth.Require

		canvasHandler := require(api.NewCanvasHandler(s.config.Sessions))
		s.mux.Handle("/api/canvas", canvasHandler)
		s.mux.Handle("/api/canvas/", canvasHandler)

		drawingHandler := require(api.NewDrawingHandler(s.config.Store, s.config.Sessions))
		s.mux.Handle("/api/drawings", drawingHandler)
		s.mux.Handle("/api/drawings/", drawingHandler)

		s.mux.Handle("/api/stream", require(NewStreamHandler(s.config.Sessions)))
		s.mux.Handle("/api/events", require(NewEventsHandler(s.config.Sessions)))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down. Open
// drawing sessions are closed on shutdown so streaming responses end.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if s.config.Sessions != nil {
		srv.RegisterOnShutdown(func() {
			if err := s.config.Sessions.CloseAll(); err != nil {
				s.log.Warn("close sessions", "error", err)
			}
		})
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
