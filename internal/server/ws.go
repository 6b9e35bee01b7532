package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/ayusman/aircanvas/internal/app"
	"github.com/ayusman/aircanvas/internal/auth"
	"github.com/ayusman/aircanvas/internal/gesture"
	"github.com/ayusman/aircanvas/internal/logging"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventMessage is the JSON form of a gesture event.
type EventMessage struct {
	Kind      string `json:"kind"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Color     string `json:"color,omitempty"`
	Hex       string `json:"hex,omitempty"`
	Advanced  bool   `json:"advanced,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NewEventMessage converts ev, stamped with now.
func NewEventMessage(ev gesture.Event, now time.Time) EventMessage {
	msg := EventMessage{
		Kind:      ev.Kind.String(),
		X:         ev.Point.X,
		Y:         ev.Point.Y,
		Advanced:  ev.Advanced,
		Timestamp: now.UnixMilli(),
	}
	if ev.Kind == gesture.KindColorCycle {
		msg.Color = ev.Color.Name
		msg.Hex = ev.Color.Hex()
	}
	return msg
}

// EventsHandler pushes the caller's gesture events over a WebSocket.
type EventsHandler struct {
	sessions *app.Manager
}

// NewEventsHandler creates a new EventsHandler over the session manager.
func NewEventsHandler(sessions *app.Manager) *EventsHandler {
	return &EventsHandler{sessions: sessions}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logging.WithComponent("events")

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

	// Subscribe before the handshake completes so no event after it is lost.
	events, cancel := sess.SubscribeEvents()
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Reading keeps control frames flowing and reports disconnects.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case ev, ok := <-events:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(NewEventMessage(ev, time.Now())); err != nil {
				log.Debug("websocket write failed", "user", u.ID, "error", err)
				return
			}
		}
	}
}
