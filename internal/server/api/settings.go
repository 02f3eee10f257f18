package api

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/flexit/internal/reps"
	"github.com/ayusman/flexit/internal/session"
	"github.com/ayusman/flexit/internal/store"
)

// ThresholdsHandler serves GET and PUT /api/settings/thresholds. Saved
// thresholds become the default for sessions opened afterwards.
type ThresholdsHandler struct {
	store    *store.Store
	sessions *session.Manager
}

// NewThresholdsHandler creates a new ThresholdsHandler.
func NewThresholdsHandler(s *store.Store, m *session.Manager) *ThresholdsHandler {
	return &ThresholdsHandler{store: s, sessions: m}
}

func (h *ThresholdsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.sessions.DefaultThresholds())
	case http.MethodPut:
		h.update(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *ThresholdsHandler) update(w http.ResponseWriter, r *http.Request) {
	var t reps.Thresholds
	if !decodeJSON(w, r, &t) {
		return
	}

	if err := t.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Settings().SetThresholds(t); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save thresholds")
		return
	}

	if err := h.sessions.SetDefaultThresholds(t); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to apply thresholds")
		return
	}

	log.Infof("default thresholds set to %.0f/%.0f", t.Squat, t.Standing)
	writeJSON(w, http.StatusOK, t)
}

// LoadThresholds applies the saved default thresholds to m, if any.
func LoadThresholds(s *store.Store, m *session.Manager) error {
	t, err := s.Settings().Thresholds()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	return m.SetDefaultThresholds(t)
}
