// Package tracker runs the live camera loop: capture, detect, classify, count.
package tracker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/flexit/internal/capture"
	"github.com/ayusman/flexit/internal/detector"
	"github.com/ayusman/flexit/internal/session"
)

// subscriberBuffer is how many updates a slow subscriber may lag behind
// before updates to it are dropped.
const subscriberBuffer = 16

// ErrNotRunning is returned by Stop when the tracker was never started.
var ErrNotRunning = errors.New("tracker is not running")

// Config holds the collaborators of a Tracker.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Sessions *session.Manager
	Options  session.Options // used for every session the tracker opens
}

// Update is published to subscribers once per processed camera frame.
type Update struct {
	SessionID string `json:"session_id"`
	Timestamp int64  `json:"timestamp"`
	session.Result
}

// Tracker feeds camera frames through the detector into a session.
type Tracker struct {
	config Config

	mu      sync.RWMutex
	session *session.Session
	stopCh  chan struct{}
	doneCh  chan struct{}

	subMu       sync.Mutex
	subscribers map[chan Update]struct{}
}

// New creates a Tracker. It does not touch the camera until Start.
func New(config Config) *Tracker {
	return &Tracker{
		config:      config,
		subscribers: make(map[chan Update]struct{}),
	}
}

// Start opens the camera, opens a session, and begins the capture loop.
// Starting a running tracker is a no-op.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopCh != nil {
		return nil
	}

	if err := t.config.Camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	s, err := t.config.Sessions.Create(t.config.Options)
	if err != nil {
		t.config.Camera.Close()
		return err
	}

	t.session = s
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	go t.run(s, t.stopCh, t.doneCh, t.config.Camera.FPS())

	log.Infof("tracking started, session %s", s.ID())
	return nil
}

// Stop halts the loop, waits for it to exit, releases the camera and
// detector, and ends the session. It returns the session summary.
func (t *Tracker) Stop() (session.Summary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopCh == nil {
		return session.Summary{}, ErrNotRunning
	}

	close(t.stopCh)
	<-t.doneCh
	t.stopCh = nil
	t.doneCh = nil

	if err := t.config.Camera.Close(); err != nil {
		log.Warnf("error closing camera: %v", err)
	}

	if t.config.Detector != nil {
		if err := t.config.Detector.Close(); err != nil {
			log.Warnf("error closing detector: %v", err)
		}
	}

	id := t.session.ID()
	t.session = nil

	summary, err := t.config.Sessions.End(id)
	log.Infof("tracking stopped, session %s: %d reps", id, summary.Reps)
	return summary, err
}

// Running reports whether the capture loop is active.
func (t *Tracker) Running() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stopCh != nil
}

// SessionID returns the ID of the session being fed, or "" when stopped.
func (t *Tracker) SessionID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.session == nil {
		return ""
	}
	return t.session.ID()
}

// Subscribe registers for updates. The returned function unsubscribes and
// closes the channel.
func (t *Tracker) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, subscriberBuffer)

	t.subMu.Lock()
	t.subscribers[ch] = struct{}{}
	t.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.subMu.Lock()
			delete(t.subscribers, ch)
			t.subMu.Unlock()
			close(ch)
		})
	}
}

func (t *Tracker) publish(u Update) {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	for ch := range t.subscribers {
		select {
		case ch <- u:
		default:
		}
	}
}

func (t *Tracker) run(s *session.Session, stopCh, doneCh chan struct{}, fps int) {
	defer close(doneCh)

	if fps <= 0 {
		fps = capture.DefaultFPS
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			t.step(s)
		}
	}
}

// step reads one frame and feeds the first detected person to s. Read and
// detection errors are logged and the tick is dropped.
func (t *Tracker) step(s *session.Session) {
	frame, err := t.config.Camera.ReadFrame()
	if err != nil {
		log.Debugf("error reading frame: %v", err)
		return
	}

	if t.config.Detector == nil {
		frame.Close()
		return
	}

	poses, err := t.config.Detector.Detect(frame)
	frame.Close()

	if err != nil {
		log.Warnf("error detecting pose: %v", err)
		return
	}

	if len(poses) == 0 {
		return
	}

	result := s.Process(poses[0])
	t.publish(Update{
		SessionID: s.ID(),
		Timestamp: time.Now().UnixMilli(),
		Result:    result,
	})
}
