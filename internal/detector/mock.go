package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/flexit/internal/pose"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	frames []pose.Frame
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFrames sets the poses that will be returned by Detect.
func (m *MockDetector) SetFrames(frames ...pose.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = frames
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured poses or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]pose.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.frames, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// StandingFrame returns a preset of an upright person with a slight
// shoulder tilt.
func StandingFrame() pose.Frame {
	return pose.Synthesize(pose.Posture{RightKnee: 175, LeftKnee: 175, RightHip: 175, LeftHip: 175})
}

// DeepSquatFrame returns a preset with both knees well below 90 degrees.
func DeepSquatFrame() pose.Frame {
	return pose.Synthesize(pose.Posture{RightKnee: 70, LeftKnee: 70, RightHip: 170, LeftHip: 170})
}

// TPoseFrame returns a preset with straight legs and level shoulders.
func TPoseFrame() pose.Frame {
	return pose.Synthesize(pose.Posture{RightKnee: 175, LeftKnee: 175, RightHip: 175, LeftHip: 175, LevelShoulders: true})
}
