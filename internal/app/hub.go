package app

import (
	"sync"

	"github.com/ayusman/aircanvas/internal/gesture"
)

const subscriberBuffer = 4

// hub fans frames and events out to subscribers. Sends never block: a
// subscriber that falls behind misses messages.
type hub struct {
	mu     sync.Mutex
	frames map[chan []byte]struct{}
	events map[chan gesture.Event]struct{}
	closed bool
}

func newHub() *hub {
	return &hub{
		frames: make(map[chan []byte]struct{}),
		events: make(map[chan gesture.Event]struct{}),
	}
}

func (h *hub) subscribeFrames() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.frames[ch] = struct{}{}
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.frames[ch]; ok {
			delete(h.frames, ch)
			close(ch)
		}
	}
}

func (h *hub) subscribeEvents() (<-chan gesture.Event, func()) {
	ch := make(chan gesture.Event, subscriberBuffer*4)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.events[ch] = struct{}{}
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.events[ch]; ok {
			delete(h.events, ch)
			close(ch)
		}
	}
}

func (h *hub) hasFrameSubscribers() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.frames) > 0
}

func (h *hub) publishFrame(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.frames {
		select {
		case ch <- data:
		default:
		}
	}
}

func (h *hub) publishEvent(ev gesture.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.events {
		select {
		case ch <- ev:
		default:
		}
	}
}

// close ends every subscription.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.frames {
		close(ch)
	}
	for ch := range h.events {
		close(ch)
	}
	h.frames = nil
	h.events = nil
}
