package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/flexit/internal/pose"
	"github.com/ayusman/flexit/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// frameBody encodes a landmark frame request.
func frameBody(t *testing.T, f pose.Frame) *bytes.Buffer {
	t.Helper()

	data, err := json.Marshal(frameRequest{Landmarks: f})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	return bytes.NewBuffer(data)
}

func kneeFrame(knee float64) pose.Frame {
	return pose.Synthesize(pose.Posture{RightKnee: knee, LeftKnee: knee, RightHip: 170, LeftHip: 170})
}

func serve(h http.Handler, method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
