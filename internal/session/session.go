// Package session ties the pose classifier and the rep counter together
// for one person working out in front of one frame source.
package session

import (
	"sync"
	"time"

	"github.com/ayusman/flexit/internal/metrics"
	"github.com/ayusman/flexit/internal/pose"
	"github.com/ayusman/flexit/internal/reps"
)

// DefaultExercise labels sessions created without an exercise name.
const DefaultExercise = "squat"

// Options configures a new session. Zero thresholds take the manager's
// defaults.
type Options struct {
	Exercise      string
	Thresholds    reps.Thresholds
	MinVisibility float64
}

// Result is the outcome of processing one frame.
type Result struct {
	Frame     int          `json:"frame"`
	Pose      pose.Type    `json:"pose"`
	Angles    *pose.Angles `json:"angles,omitempty"`
	KneeAngle float64      `json:"knee_angle"`
	Reps      int          `json:"rep_count"`
	Squatting bool         `json:"is_squatting"`
	Skipped   bool         `json:"skipped"` // rep counter had no right-leg landmarks
}

// Summary describes a session, live or ended. EndedAt is zero while the
// session is open.
type Summary struct {
	ID         string            `json:"id"`
	Exercise   string            `json:"exercise"`
	Thresholds reps.Thresholds   `json:"thresholds"`
	Reps       int               `json:"rep_count"`
	Squatting  bool              `json:"is_squatting"`
	LastAngle  float64           `json:"last_angle"`
	LastPose   pose.Type         `json:"last_pose"`
	Frames     int               `json:"frames"`
	Skipped    int               `json:"skipped_frames"`
	PoseCounts map[pose.Type]int `json:"pose_counts"`
	StartedAt  time.Time         `json:"started_at"`
	EndedAt    time.Time         `json:"ended_at,omitzero"`
}

// Session owns the rep state of one tracking session. Frames are applied
// one at a time in arrival order.
type Session struct {
	id            string
	exercise      string
	minVisibility float64
	startedAt     time.Time
	metrics       *metrics.Manager

	mu         sync.Mutex
	counter    *reps.Counter
	frames     int
	skipped    int
	poseCounts map[pose.Type]int
	lastPose   pose.Type
}

func newSession(id string, opts Options, startedAt time.Time, m *metrics.Manager) (*Session, error) {
	counter, err := reps.NewCounter(opts.Thresholds)
	if err != nil {
		return nil, err
	}

	exercise := opts.Exercise
	if exercise == "" {
		exercise = DefaultExercise
	}

	s := &Session{
		id:            id,
		exercise:      exercise,
		minVisibility: opts.MinVisibility,
		startedAt:     startedAt,
		metrics:       m,
		counter:       counter,
		poseCounts:    make(map[pose.Type]int),
		lastPose:      pose.Unknown,
	}

	if m != nil {
		counter.OnRep = func(int) { m.CounterReps.Inc() }
	}

	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Process classifies a frame and advances the rep counter. The two read the
// same frame independently; neither sees the other's result.
func (s *Session) Process(f pose.Frame) Result {
	start := time.Now()

	f = f.WithMinVisibility(s.minVisibility)

	s.mu.Lock()
	defer s.mu.Unlock()

	result := Result{Pose: pose.Unknown}
	if a, ok := pose.Measure(f); ok {
		result.Angles = &a
		result.Pose = pose.ClassifyAngles(a)
	}

	state, ok := s.counter.Observe(f)
	result.Skipped = !ok
	result.KneeAngle = state.LastAngle
	result.Reps = state.Reps
	result.Squatting = state.Squatting()

	s.frames++
	if result.Skipped {
		s.skipped++
	}
	s.poseCounts[result.Pose]++
	s.lastPose = result.Pose
	result.Frame = s.frames

	if s.metrics != nil {
		s.metrics.CounterFrames.WithLabelValues(string(result.Pose)).Inc()
		if result.Skipped {
			s.metrics.CounterSkippedTicks.Inc()
		}
		s.metrics.HistFrameDuration.Observe(time.Since(start).Seconds())
	}

	return result
}

// Summary returns a snapshot of the session.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[pose.Type]int, len(s.poseCounts))
	for k, v := range s.poseCounts {
		counts[k] = v
	}

	state := s.counter.State()
	return Summary{
		ID:         s.id,
		Exercise:   s.exercise,
		Thresholds: s.counter.Thresholds(),
		Reps:       state.Reps,
		Squatting:  state.Squatting(),
		LastAngle:  state.LastAngle,
		LastPose:   s.lastPose,
		Frames:     s.frames,
		Skipped:    s.skipped,
		PoseCounts: counts,
		StartedAt:  s.startedAt,
	}
}
