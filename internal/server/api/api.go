// Package api provides HTTP API handlers for the flexit pose service.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/flexit/internal/pose"
)

// maxBodyBytes caps request bodies; a full frame is well under 8 KiB.
const maxBodyBytes = 1 << 20

const timeFormat = time.RFC3339

type errorResponse struct {
	Error string `json:"error"`
}

// frameRequest carries one landmark frame. Missing landmarks may be sent
// as null or left off the end of the array.
type frameRequest struct {
	Landmarks pose.Frame `json:"landmarks"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
