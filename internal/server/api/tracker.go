package api

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/flexit/internal/session"
	"github.com/ayusman/flexit/internal/tracker"
)

// Tracker is the live camera loop as seen by the API.
type Tracker interface {
	Start() error
	Stop() (session.Summary, error)
	Running() bool
	SessionID() string
}

// TrackerHandler serves /api/tracker, /api/tracker/start and /api/tracker/stop.
type TrackerHandler struct {
	tracker Tracker
}

// NewTrackerHandler creates a new TrackerHandler.
func NewTrackerHandler(t Tracker) *TrackerHandler {
	return &TrackerHandler{tracker: t}
}

type trackerStatusResponse struct {
	Running   bool   `json:"running"`
	SessionID string `json:"session_id,omitempty"`
}

func (h *TrackerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tracker"), "/")

	switch action {
	case "":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.status(w)
	case "start":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		if err := h.tracker.Start(); err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.status(w)
	case "stop":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		summary, err := h.tracker.Stop()
		if errors.Is(err, tracker.ErrNotRunning) {
			writeError(w, http.StatusConflict, "Tracker is not running")
			return
		}
		if err != nil {
			log.Errorf("stop tracker: %v", err)
		}
		writeJSON(w, http.StatusOK, summary)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *TrackerHandler) status(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, trackerStatusResponse{
		Running:   h.tracker.Running(),
		SessionID: h.tracker.SessionID(),
	})
}
