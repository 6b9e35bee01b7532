package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/aircanvas/internal/landmark"
)

// MockDetector is a test implementation of the Detector interface.
// It returns a fixed set, or walks a scripted sequence one frame at a time.
type MockDetector struct {
	mu       sync.Mutex
	set      *landmark.Set
	sequence []*landmark.Set
	err      error
	calls    int
	closed   bool
}

// NewMockDetector creates a new MockDetector that sees no hand.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHand sets the landmarks returned by every Detect call. nil means no hand.
func (m *MockDetector) SetHand(set *landmark.Set) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = set
	m.sequence = nil
}

// SetSequence scripts one result per Detect call. Once exhausted the
// detector reports no hand.
func (m *MockDetector) SetSequence(sets ...*landmark.Set) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = append([]*landmark.Set(nil), sets...)
	m.set = nil
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Detect returns the pre-configured landmarks or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*landmark.Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if m.sequence != nil {
		if len(m.sequence) == 0 {
			return nil, nil
		}
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.set, nil
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
