package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/flexit/internal/metrics"
	"github.com/ayusman/flexit/internal/reps"
)

// ErrSessionNotFound is returned when no open session has the given ID.
var ErrSessionNotFound = errors.New("session not found")

// Recorder persists the summary of an ended session.
type Recorder interface {
	RecordWorkout(s Summary) error
}

// ManagerConfig holds the collaborators of a Manager. All fields are optional.
type ManagerConfig struct {
	Thresholds reps.Thresholds // defaults for sessions created without their own
	Recorder   Recorder
	Metrics    *metrics.Manager
}

// Manager keeps the open sessions. Every session owns its own counter state;
// the manager only indexes them.
type Manager struct {
	thresholds reps.Thresholds
	recorder   Recorder
	metrics    *metrics.Manager
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager. Zero default thresholds fall back to
// reps.DefaultThresholds.
func NewManager(cfg ManagerConfig) *Manager {
	thresholds := cfg.Thresholds
	if thresholds == (reps.Thresholds{}) {
		thresholds = reps.DefaultThresholds()
	}

	return &Manager{
		thresholds: thresholds,
		recorder:   cfg.Recorder,
		metrics:    cfg.Metrics,
		now:        time.Now,
		sessions:   make(map[string]*Session),
	}
}

// DefaultThresholds returns the band new sessions get when they set none.
func (m *Manager) DefaultThresholds() reps.Thresholds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.thresholds
}

// SetDefaultThresholds changes the band for sessions created afterwards.
// Open sessions keep the thresholds they started with.
func (m *Manager) SetDefaultThresholds(t reps.Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.thresholds = t
	return nil
}

// Create opens a new session.
func (m *Manager) Create(opts Options) (*Session, error) {
	if opts.Thresholds == (reps.Thresholds{}) {
		opts.Thresholds = m.DefaultThresholds()
	}

	s, err := newSession(uuid.New().String(), opts, m.now(), m.metrics)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.CounterSessions.Inc()
		m.metrics.GaugeActiveSessions.Inc()
	}

	log.Debugf("session %s started (%s, thresholds %.0f/%.0f)",
		s.id, s.exercise, opts.Thresholds.Squat, opts.Thresholds.Standing)
	return s, nil
}

// Get returns an open session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// List returns the open sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].startedAt.Equal(sessions[j].startedAt) {
			return sessions[i].id < sessions[j].id
		}
		return sessions[i].startedAt.Before(sessions[j].startedAt)
	})
	return sessions
}

// End closes a session and discards its state. The summary is handed to the
// recorder, if any. A recorder failure is returned alongside the summary;
// the session is closed either way.
func (m *Manager) End(id string) (Summary, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return Summary{}, ErrSessionNotFound
	}

	if m.metrics != nil {
		m.metrics.GaugeActiveSessions.Dec()
	}

	summary := s.Summary()
	summary.EndedAt = m.now()

	log.Debugf("session %s ended with %d reps over %d frames", id, summary.Reps, summary.Frames)

	if m.recorder != nil {
		if err := m.recorder.RecordWorkout(summary); err != nil {
			return summary, fmt.Errorf("record workout %s: %w", id, err)
		}
	}

	return summary, nil
}

// EndAll closes every open session, recording each one. It returns the
// first recorder error.
func (m *Manager) EndAll() error {
	var firstErr error
	for _, s := range m.List() {
		if _, err := m.End(s.id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
