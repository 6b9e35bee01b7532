package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ayusman/aircanvas/internal/capture"
	"github.com/ayusman/aircanvas/internal/detector"
	"github.com/ayusman/aircanvas/internal/logging"
)

// CameraFactory builds the camera for a new session.
type CameraFactory func() capture.Camera

// DetectorFactory builds the hand detector for a new session.
type DetectorFactory func() (detector.Detector, error)

// Manager keeps one independent Session per user. Sessions never share a
// canvas, palette, camera handle or detector.
type Manager struct {
	cfg         Config
	newCamera   CameraFactory
	newDetector DetectorFactory
	autoStart   bool
	log         *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	enabled  bool
}

// NewManager returns a Manager that starts each session's frame loop on Open.
func NewManager(cfg Config, newCamera CameraFactory, newDetector DetectorFactory) *Manager {
	return &Manager{
		cfg:         cfg,
		newCamera:   newCamera,
		newDetector: newDetector,
		autoStart:   true,
		log:         logging.WithComponent("sessions"),
		sessions:    make(map[string]*Session),
		enabled:     true,
	}
}

// SetAutoStart controls whether Open starts the frame loop. Tests drive
// sessions through ProcessFrame with it off.
func (m *Manager) SetAutoStart(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoStart = on
}

// Open returns the user's session, creating it if needed. Opening an
// existing session starts its drawing over. A session whose frame loop
// fails to start is closed and removed. The manager lock is not held
// while cameras open.
func (m *Manager) Open(userID string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	autoStart, enabled := m.autoStart, m.enabled
	m.mu.Unlock()

	if ok {
		s.Reset()
		if autoStart {
			if err := s.Start(); err != nil {
				m.drop(userID, s)
				return nil, fmt.Errorf("start session: %w", err)
			}
		}
		return s, nil
	}

	det, err := m.newDetector()
	if err != nil {
		return nil, fmt.Errorf("create detector: %w", err)
	}

	s = NewSession(userID, m.cfg, m.newCamera(), det)
	s.SetEnabled(enabled)
	if autoStart {
		if err := s.Start(); err != nil {
			s.Close()
			return nil, fmt.Errorf("start session: %w", err)
		}
	}

	m.mu.Lock()
	if existing, ok := m.sessions[userID]; ok {
		// A concurrent Open won the race; keep its session.
		m.mu.Unlock()
		s.Close()
		return existing, nil
	}
	m.sessions[userID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.log.Info("session opened", "user", userID, "sessions", n)
	return s, nil
}

// drop removes s from the map if it is still the user's session and closes it.
func (m *Manager) drop(userID string, s *Session) {
	m.mu.Lock()
	if m.sessions[userID] == s {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	if err := s.Close(); err != nil {
		m.log.Warn("close failed session", "user", userID, "error", err)
	}
	m.log.Info("session dropped after start failure", "user", userID)
}

// Get returns the user's session or ErrNoSession.
func (m *Manager) Get(userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Close ends the user's session and discards its canvas.
func (m *Manager) Close(userID string) error {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if !ok {
		return ErrNoSession
	}
	m.log.Info("session closed", "user", userID)
	return s.Close()
}

// CloseAll ends every session.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// SetEnabled pauses or resumes every session, including ones opened later.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
	for _, s := range m.sessions {
		s.SetEnabled(enabled)
	}
}

// IsEnabled reports the global pause state.
func (m *Manager) IsEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// ClearAll empties every session's canvas.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		s.Clear()
	}
}
