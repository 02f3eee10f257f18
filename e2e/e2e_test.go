package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/flexit/internal/capture"
	"github.com/ayusman/flexit/internal/detector"
	"github.com/ayusman/flexit/internal/metrics"
	"github.com/ayusman/flexit/internal/pose"
	"github.com/ayusman/flexit/internal/reps"
	"github.com/ayusman/flexit/internal/server"
	"github.com/ayusman/flexit/internal/server/api"
	"github.com/ayusman/flexit/internal/session"
	"github.com/ayusman/flexit/internal/store"
	"github.com/ayusman/flexit/internal/tracker"
)

type stack struct {
	store    *store.Store
	sessions *session.Manager
	detector *detector.MockDetector
	tracker  *tracker.Tracker
	server   *httptest.Server
}

func newStack(t *testing.T, dbPath string) *stack {
	t.Helper()

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	m, reg := metrics.NewTestManagerAndRegistry()
	sessions := session.NewManager(session.ManagerConfig{Recorder: s, Metrics: m})
	if err := api.LoadThresholds(s, sessions); err != nil {
		t.Fatalf("LoadThresholds() error = %v", err)
	}

	cam := capture.NewBlankMockCamera()
	cam.SetFPS(100)
	t.Cleanup(cam.Release)

	det := detector.NewMockDetector()
	tr := tracker.New(tracker.Config{Camera: cam, Detector: det, Sessions: sessions})

	ts := httptest.NewServer(server.New(server.Config{
		Store:    s,
		Sessions: sessions,
		Tracker:  tr,
		Metrics:  m,
		Gatherer: reg,
	}))
	t.Cleanup(ts.Close)

	return &stack{store: s, sessions: sessions, detector: det, tracker: tr, server: ts}
}

func TestE2E_LiveTracking(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st := newStack(t, filepath.Join(t.TempDir(), "data.db"))
	client := st.server.Client()
	st.detector.SetFrames(detector.StandingFrame())

	wsURL := "ws" + strings.TrimPrefix(st.server.URL, "http") + "/api/tracker/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer conn.Close()

	resp, err := client.Post(st.server.URL+"/api/tracker/start", "application/json", nil)
	if err != nil {
		t.Fatalf("start tracker error = %v", err)
	}
	var status struct {
		Running   bool   `json:"running"`
		SessionID string `json:"session_id"`
	}
	json.NewDecoder(resp.Body).Decode(&status)
	resp.Body.Close()
	if !status.Running || status.SessionID == "" {
		t.Fatalf("tracker status = %+v, want running with a session", status)
	}

	next := func() tracker.Update {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		var u tracker.Update
		if err := conn.ReadJSON(&u); err != nil {
			t.Fatalf("read update error = %v", err)
		}
		return u
	}

	t.Run("StandingIsClassified", func(t *testing.T) {
		u := next()
		if u.SessionID != status.SessionID {
			t.Errorf("update session = %s, want %s", u.SessionID, status.SessionID)
		}
		if u.Pose != pose.Standing {
			t.Errorf("pose = %s, want %s", u.Pose, pose.Standing)
		}
	})

	t.Run("SquatsAreCounted", func(t *testing.T) {
		for i := 1; i <= 2; i++ {
			st.detector.SetFrames(detector.DeepSquatFrame())
			for u := next(); !u.Squatting; u = next() {
			}
			st.detector.SetFrames(detector.StandingFrame())
			u := next()
			for u.Reps < i {
				u = next()
			}
			if u.Reps != i {
				t.Fatalf("reps = %d, want %d", u.Reps, i)
			}
		}
	})

	var workoutID string
	t.Run("StopRecordsWorkout", func(t *testing.T) {
		resp, err := client.Post(st.server.URL+"/api/tracker/stop", "application/json", nil)
		if err != nil {
			t.Fatalf("stop tracker error = %v", err)
		}
		defer resp.Body.Close()

		var summary session.Summary
		json.NewDecoder(resp.Body).Decode(&summary)
		if summary.Reps != 2 {
			t.Errorf("summary reps = %d, want 2", summary.Reps)
		}
		workoutID = summary.ID

		w, err := st.store.Workouts().GetByID(workoutID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if w.Reps != 2 || w.PoseCounts[pose.DeepSquat] == 0 {
			t.Errorf("stored workout = %+v", w)
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, _ := client.Get(st.server.URL + "/api/workouts/" + workoutID)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("get workout status = %d", resp.StatusCode)
		}
		resp.Body.Close()

		resp, _ = client.Post(st.server.URL+"/api/tracker/stop", "application/json", nil)
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("second stop status = %d, want %d", resp.StatusCode, http.StatusConflict)
		}
		resp.Body.Close()
	})
}

func TestE2E_SavedThresholdsSurviveRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	dbPath := filepath.Join(t.TempDir(), "data.db")
	want := reps.Thresholds{Squat: 100, Standing: 150}

	first := newStack(t, dbPath)
	req, _ := http.NewRequest(http.MethodPut, first.server.URL+"/api/settings/thresholds",
		strings.NewReader(`{"squat_threshold": 100, "standing_threshold": 150}`))
	resp, err := first.server.Client().Do(req)
	if err != nil {
		t.Fatalf("PUT thresholds error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT thresholds status = %d", resp.StatusCode)
	}
	first.server.Close()
	first.store.Close()

	second := newStack(t, dbPath)
	if got := second.sessions.DefaultThresholds(); got != want {
		t.Fatalf("thresholds after restart = %+v, want %+v", got, want)
	}

	// A 95 degree knee is a squat under the saved band but not the default one.
	s, err := second.sessions.Create(session.Options{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	s.Process(pose.Synthesize(pose.Posture{RightKnee: 95, LeftKnee: 95, RightHip: 170, LeftHip: 170}))
	r := s.Process(pose.Synthesize(pose.Posture{RightKnee: 155, LeftKnee: 155, RightHip: 170, LeftHip: 170}))
	if r.Reps != 1 {
		t.Errorf("reps = %d, want 1", r.Reps)
	}
}
