package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/flexit/internal/pose"
	"github.com/ayusman/flexit/internal/session"
	"github.com/ayusman/flexit/internal/tracker"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type frameMessage struct {
	Landmarks pose.Frame `json:"landmarks"`
}

type errorMessage struct {
	Error string `json:"error"`
}

// SessionStreamHandler feeds landmark frames received over a WebSocket into
// a session and answers each one with its Result, in order.
type SessionStreamHandler struct {
	sessions *session.Manager
}

// NewSessionStreamHandler creates a new SessionStreamHandler.
func NewSessionStreamHandler(m *session.Manager) *SessionStreamHandler {
	return &SessionStreamHandler{sessions: m}
}

// ServeHTTP handles /api/sessions/{id}/ws upgrade requests.
func (h *SessionStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	id = strings.TrimSuffix(id, "/ws")

	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if _, err := h.sessions.Get(id); err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debugf("session %s stream closed: %v", id, err)
			}
			return
		}

		// The session may have been ended since the last message.
		s, err := h.sessions.Get(id)
		if err != nil {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteJSON(errorMessage{Error: "session ended"})
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
			return
		}

		var reply any
		var msg frameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			reply = errorMessage{Error: "invalid frame message"}
		} else {
			reply = s.Process(msg.Landmarks)
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

// TrackerStreamHandler broadcasts live tracker updates via WebSocket.
type TrackerStreamHandler struct {
	tracker *tracker.Tracker
}

// NewTrackerStreamHandler creates a new TrackerStreamHandler.
func NewTrackerStreamHandler(t *tracker.Tracker) *TrackerStreamHandler {
	return &TrackerStreamHandler{tracker: t}
}

// ServeHTTP handles /api/tracker/ws upgrade requests.
func (h *TrackerStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.tracker.Subscribe()
	defer unsubscribe()

	// Keep reading so close frames are noticed
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(u); err != nil {
				return
			}
		}
	}
}
