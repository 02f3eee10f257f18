package api

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/ayusman/flexit/internal/pose"
	"github.com/ayusman/flexit/internal/reps"
	"github.com/ayusman/flexit/internal/session"
)

func TestSessionHandler_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	m := session.NewManager(session.ManagerConfig{Recorder: s})
	h := NewSessionHandler(m)

	rec := serve(h, http.MethodPost, "/api/sessions", bytes.NewBufferString(`{"exercise":"air squat"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var created session.Summary
	decode(t, rec, &created)
	if created.ID == "" || created.Exercise != "air squat" {
		t.Fatalf("unexpected created session: %+v", created)
	}
	if created.Thresholds != reps.DefaultThresholds() {
		t.Errorf("thresholds = %+v, want defaults", created.Thresholds)
	}

	var last session.Result
	for _, knee := range []float64{170, 120, 70, 120, 170} {
		rec := serve(h, http.MethodPost, "/api/sessions/"+created.ID+"/frames", frameBody(t, kneeFrame(knee)))
		if rec.Code != http.StatusOK {
			t.Fatalf("frame status = %d, want %d", rec.Code, http.StatusOK)
		}
		decode(t, rec, &last)
	}
	if last.Reps != 1 || last.Squatting || last.Pose != pose.Standing {
		t.Errorf("unexpected final result: %+v", last)
	}

	rec = serve(h, http.MethodGet, "/api/sessions/"+created.ID, nil)
	var live session.Summary
	decode(t, rec, &live)
	if live.Reps != 1 || live.Frames != 5 {
		t.Errorf("unexpected live summary: %+v", live)
	}

	rec = serve(h, http.MethodGet, "/api/sessions", nil)
	var listed listSessionsResponse
	decode(t, rec, &listed)
	if len(listed.Sessions) != 1 {
		t.Errorf("expected 1 open session, got %d", len(listed.Sessions))
	}

	rec = serve(h, http.MethodDelete, "/api/sessions/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d, want %d", rec.Code, http.StatusOK)
	}
	var ended session.Summary
	decode(t, rec, &ended)
	if ended.EndedAt.IsZero() || ended.Reps != 1 {
		t.Errorf("unexpected ended summary: %+v", ended)
	}

	if _, err := s.Workouts().GetByID(created.ID); err != nil {
		t.Errorf("ended session should be stored as a workout: %v", err)
	}

	rec = serve(h, http.MethodGet, "/api/sessions/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after end = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSessionHandler_Create(t *testing.T) {
	m := session.NewManager(session.ManagerConfig{})
	h := NewSessionHandler(m)

	t.Run("empty body uses defaults", func(t *testing.T) {
		rec := serve(h, http.MethodPost, "/api/sessions", nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
		}
		var created session.Summary
		decode(t, rec, &created)
		if created.Exercise != session.DefaultExercise {
			t.Errorf("exercise = %q", created.Exercise)
		}
	})

	t.Run("custom thresholds", func(t *testing.T) {
		body := `{"thresholds":{"squat_threshold":90,"standing_threshold":150}}`
		rec := serve(h, http.MethodPost, "/api/sessions", bytes.NewBufferString(body))
		var created session.Summary
		decode(t, rec, &created)
		if created.Thresholds != (reps.Thresholds{Squat: 90, Standing: 150}) {
			t.Errorf("thresholds = %+v", created.Thresholds)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{"exercise":`},
		{"inverted thresholds", `{"thresholds":{"squat_threshold":160,"standing_threshold":80}}`},
		{"visibility out of range", `{"min_visibility":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, http.MethodPost, "/api/sessions", bytes.NewBufferString(tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestSessionHandler_Frames(t *testing.T) {
	m := session.NewManager(session.ManagerConfig{})
	h := NewSessionHandler(m)

	s, err := m.Create(session.Options{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("incomplete frame is skipped, not rejected", func(t *testing.T) {
		f := kneeFrame(60)
		f[pose.RightKnee] = nil

		rec := serve(h, http.MethodPost, "/api/sessions/"+s.ID()+"/frames", frameBody(t, f))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var result session.Result
		decode(t, rec, &result)
		if !result.Skipped || result.Pose != pose.Unknown || result.Squatting {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		rec := serve(h, http.MethodPost, "/api/sessions/nope/frames", frameBody(t, kneeFrame(60)))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		rec := serve(h, http.MethodPost, "/api/sessions/"+s.ID()+"/frames", bytes.NewBufferString("nope"))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/api/sessions/"+s.ID()+"/frames", nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})

	t.Run("unknown sub-resource", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/api/sessions/"+s.ID()+"/bogus", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestSessionHandler_EndUnknown(t *testing.T) {
	h := NewSessionHandler(session.NewManager(session.ManagerConfig{}))

	rec := serve(h, http.MethodDelete, "/api/sessions/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
