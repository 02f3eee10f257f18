package api

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/flexit/internal/reps"
	"github.com/ayusman/flexit/internal/session"
)

// SessionHandler handles HTTP requests for live tracking sessions.
type SessionHandler struct {
	sessions *session.Manager
}

// NewSessionHandler creates a new SessionHandler backed by m.
func NewSessionHandler(m *session.Manager) *SessionHandler {
	return &SessionHandler{sessions: m}
}

// ServeHTTP routes /api/sessions, /api/sessions/{id} and
// /api/sessions/{id}/frames.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			methodNotAllowed(w)
		}
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.end(w, r, id)
		default:
			methodNotAllowed(w)
		}
	case len(parts) == 2 && parts[1] == "frames":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.frame(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// Request and response types

type createSessionRequest struct {
	Exercise      string           `json:"exercise"`
	Thresholds    *reps.Thresholds `json:"thresholds,omitempty"`
	MinVisibility float64          `json:"min_visibility"`
}

type listSessionsResponse struct {
	Sessions []session.Summary `json:"sessions"`
}

// list handles GET /api/sessions and returns every open session.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	open := h.sessions.List()

	response := listSessionsResponse{
		Sessions: make([]session.Summary, 0, len(open)),
	}
	for _, s := range open {
		response.Sessions = append(response.Sessions, s.Summary())
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/sessions. An empty body opens a session with
// the default thresholds.
func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	if req.MinVisibility < 0 || req.MinVisibility > 1 {
		writeError(w, http.StatusBadRequest, "min_visibility must be between 0 and 1")
		return
	}

	opts := session.Options{
		Exercise:      req.Exercise,
		MinVisibility: req.MinVisibility,
	}
	if req.Thresholds != nil {
		if err := req.Thresholds.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts.Thresholds = *req.Thresholds
	}

	s, err := h.sessions.Create(opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, s.Summary())
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, s.Summary())
}

// end handles DELETE /api/sessions/{id}. The session is closed even when
// saving it fails; the summary is returned in both cases.
func (h *SessionHandler) end(w http.ResponseWriter, r *http.Request, id string) {
	summary, err := h.sessions.End(id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		log.Errorf("end session %s: %v", id, err)
	}

	writeJSON(w, http.StatusOK, summary)
}

// frame handles POST /api/sessions/{id}/frames.
func (h *SessionHandler) frame(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req frameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, s.Process(req.Landmarks))
}
