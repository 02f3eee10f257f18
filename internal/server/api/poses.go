package api

import (
	"net/http"

	"github.com/ayusman/flexit/internal/pose"
)

type rangeResponse struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type thresholdResponse struct {
	Knee rangeResponse  `json:"knee"`
	Hip  *rangeResponse `json:"hip,omitempty"`
}

type poseInfo struct {
	Name       string             `json:"name"`
	Thresholds *thresholdResponse `json:"thresholds,omitempty"`
}

type listPosesResponse struct {
	// Poses are in rule evaluation order; unknown comes last.
	Poses []poseInfo `json:"poses"`
}

type classifyResponse struct {
	Pose   pose.Type    `json:"pose"`
	Angles *pose.Angles `json:"angles,omitempty"`
}

// PosesHandler serves GET /api/poses.
type PosesHandler struct{}

// NewPosesHandler creates a new PosesHandler.
func NewPosesHandler() *PosesHandler {
	return &PosesHandler{}
}

func (h *PosesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	reference := pose.ReferenceThresholds()
	response := listPosesResponse{}

	for _, t := range append(pose.Rules(), pose.Unknown) {
		info := poseInfo{Name: string(t)}
		if th, ok := reference[t]; ok {
			tr := &thresholdResponse{Knee: rangeResponse{Min: th.Knee.Min, Max: th.Knee.Max}}
			if th.Hip != nil {
				tr.Hip = &rangeResponse{Min: th.Hip.Min, Max: th.Hip.Max}
			}
			info.Thresholds = tr
		}
		response.Poses = append(response.Poses, info)
	}

	writeJSON(w, http.StatusOK, response)
}

// ClassifyHandler serves POST /api/classify. It is stateless: no session
// or rep counter is touched.
type ClassifyHandler struct{}

// NewClassifyHandler creates a new ClassifyHandler.
func NewClassifyHandler() *ClassifyHandler {
	return &ClassifyHandler{}
}

func (h *ClassifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req frameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response := classifyResponse{Pose: pose.Unknown}
	if a, ok := pose.Measure(req.Landmarks); ok {
		response.Angles = &a
		response.Pose = pose.ClassifyAngles(a)
	}

	writeJSON(w, http.StatusOK, response)
}
