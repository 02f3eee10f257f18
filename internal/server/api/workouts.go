package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/flexit/internal/pose"
	"github.com/ayusman/flexit/internal/store"
)

// WorkoutHandler handles HTTP requests for stored workouts.
type WorkoutHandler struct {
	store *store.Store
}

// NewWorkoutHandler creates a new WorkoutHandler with the given store.
func NewWorkoutHandler(s *store.Store) *WorkoutHandler {
	return &WorkoutHandler{store: s}
}

// ServeHTTP routes /api/workouts, /api/workouts/stats and /api/workouts/{id}.
func (h *WorkoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/workouts")
	path = strings.Trim(path, "/")

	switch path {
	case "":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.list(w, r)
		return
	case "stats":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.stats(w, r)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, path)
	case http.MethodDelete:
		h.delete(w, r, path)
	default:
		methodNotAllowed(w)
	}
}

// Response types

type workoutResponse struct {
	ID                string            `json:"id"`
	Exercise          string            `json:"exercise"`
	Reps              int               `json:"rep_count"`
	Frames            int               `json:"frames"`
	SkippedFrames     int               `json:"skipped_frames"`
	SquatThreshold    float64           `json:"squat_threshold"`
	StandingThreshold float64           `json:"standing_threshold"`
	StartedAt         string            `json:"started_at"`
	EndedAt           string            `json:"ended_at"`
	DurationSeconds   float64           `json:"duration_seconds"`
	PoseCounts        map[pose.Type]int `json:"pose_counts,omitempty"`
}

type listWorkoutsResponse struct {
	Workouts []workoutResponse `json:"workouts"`
}

type statsResponse struct {
	Workouts   int               `json:"workouts"`
	Reps       int               `json:"rep_count"`
	Frames     int               `json:"frames"`
	PoseCounts map[pose.Type]int `json:"pose_counts"`
}

func toWorkoutResponse(wo *store.Workout) workoutResponse {
	return workoutResponse{
		ID:                wo.ID,
		Exercise:          wo.Exercise,
		Reps:              wo.Reps,
		Frames:            wo.Frames,
		SkippedFrames:     wo.SkippedFrames,
		SquatThreshold:    wo.SquatThreshold,
		StandingThreshold: wo.StandingThreshold,
		StartedAt:         wo.StartedAt.Format(timeFormat),
		EndedAt:           wo.EndedAt.Format(timeFormat),
		DurationSeconds:   wo.Duration().Seconds(),
		PoseCounts:        wo.PoseCounts,
	}
}

// list handles GET /api/workouts[?limit=n], newest first.
func (h *WorkoutHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	workouts, err := h.store.Workouts().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list workouts")
		return
	}

	response := listWorkoutsResponse{
		Workouts: make([]workoutResponse, 0, len(workouts)),
	}
	for _, wo := range workouts {
		response.Workouts = append(response.Workouts, toWorkoutResponse(wo))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/workouts/{id}.
func (h *WorkoutHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	wo, err := h.store.Workouts().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Workout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get workout")
		return
	}

	writeJSON(w, http.StatusOK, toWorkoutResponse(wo))
}

// delete handles DELETE /api/workouts/{id}.
func (h *WorkoutHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Workouts().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Workout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete workout")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// stats handles GET /api/workouts/stats.
func (h *WorkoutHandler) stats(w http.ResponseWriter, r *http.Request) {
	totals, err := h.store.Workouts().Totals()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Workouts:   totals.Workouts,
		Reps:       totals.Reps,
		Frames:     totals.Frames,
		PoseCounts: totals.Poses,
	})
}
