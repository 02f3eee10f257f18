// Package reps counts squat repetitions from a stream of knee angles.
package reps

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/flexit/internal/pose"
)

// ErrInvalidThresholds is returned when the squat threshold does not sit
// strictly below the standing threshold, or either is outside [0, 180].
var ErrInvalidThresholds = errors.New("invalid rep thresholds")

// Default thresholds in degrees of right-knee angle.
const (
	DefaultSquatThreshold    = 80.0
	DefaultStandingThreshold = 160.0
	initialAngle             = 180.0
)

// Phase is the state of the squat detector.
type Phase int

const (
	PhaseStanding Phase = iota
	PhaseSquatting
)

func (p Phase) String() string {
	switch p {
	case PhaseStanding:
		return "standing"
	case PhaseSquatting:
		return "squatting"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Thresholds is the hysteresis band of the squat detector.
type Thresholds struct {
	Squat    float64 `json:"squat_threshold" toml:"squat_threshold"`
	Standing float64 `json:"standing_threshold" toml:"standing_threshold"`
}

// DefaultThresholds returns the 80/160 degree band.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Squat:    DefaultSquatThreshold,
		Standing: DefaultStandingThreshold,
	}
}

// Validate checks that the band is well formed.
func (t Thresholds) Validate() error {
	if math.IsNaN(t.Squat) || math.IsNaN(t.Standing) {
		return fmt.Errorf("%w: thresholds must be numbers", ErrInvalidThresholds)
	}
	if t.Squat < 0 || t.Standing > 180 {
		return fmt.Errorf("%w: squat %.1f and standing %.1f must lie within [0, 180]",
			ErrInvalidThresholds, t.Squat, t.Standing)
	}
	if t.Squat >= t.Standing {
		return fmt.Errorf("%w: squat %.1f must be below standing %.1f",
			ErrInvalidThresholds, t.Squat, t.Standing)
	}
	return nil
}

// State is the carried state of one counting session.
type State struct {
	Phase     Phase   `json:"-"`
	Reps      int     `json:"rep_count"`
	LastAngle float64 `json:"last_angle"`
}

// NewState returns the state at session start.
func NewState() State {
	return State{Phase: PhaseStanding, LastAngle: initialAngle}
}

// Squatting reports whether the detector is in the squatting phase.
func (s State) Squatting() bool {
	return s.Phase == PhaseSquatting
}

// Update applies one knee angle to the state and returns the new state.
//
// Standing moves to squatting when the angle drops below the squat
// threshold. Squatting moves back to standing, completing one rep, when the
// angle rises above the standing threshold. Anything else keeps the phase.
// At most one transition happens per call even if the thresholds overlap.
func Update(s State, kneeAngle float64, t Thresholds) State {
	switch s.Phase {
	case PhaseStanding:
		if kneeAngle < t.Squat {
			s.Phase = PhaseSquatting
		}
	case PhaseSquatting:
		if kneeAngle > t.Standing {
			s.Phase = PhaseStanding
			s.Reps++
		}
	}
	s.LastAngle = kneeAngle
	return s
}

// KneeAngle returns the right-leg hip-knee-ankle angle of a frame, or false
// if any of the three landmarks is absent.
func KneeAngle(f pose.Frame) (float64, bool) {
	if !f.Has(pose.RightHip, pose.RightKnee, pose.RightAnkle) {
		return 0, false
	}
	return pose.Angle(
		f[pose.RightHip].Point(),
		f[pose.RightKnee].Point(),
		f[pose.RightAnkle].Point(),
	), true
}

// Counter owns the rep state of one tracking session. It is not safe for
// concurrent use; callers feed it one frame at a time.
type Counter struct {
	thresholds Thresholds
	state      State

	// OnRep, if set, is called with the new total each time a rep completes.
	OnRep func(reps int)
}

// NewCounter creates a Counter with validated thresholds.
func NewCounter(t Thresholds) (*Counter, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Counter{
		thresholds: t,
		state:      NewState(),
	}, nil
}

// Observe feeds one frame. It returns false and leaves the state untouched
// when the right hip, knee or ankle is missing.
func (c *Counter) Observe(f pose.Frame) (State, bool) {
	angle, ok := KneeAngle(f)
	if !ok {
		return c.state, false
	}
	return c.ObserveAngle(angle), true
}

// ObserveAngle feeds one knee angle directly.
func (c *Counter) ObserveAngle(angle float64) State {
	prev := c.state.Reps
	c.state = Update(c.state, angle, c.thresholds)

	if c.state.Reps > prev && c.OnRep != nil {
		c.OnRep(c.state.Reps)
	}
	return c.state
}

// State returns the current state.
func (c *Counter) State() State {
	return c.state
}

// Thresholds returns the band the counter was created with.
func (c *Counter) Thresholds() Thresholds {
	return c.thresholds
}

// Reset returns the counter to its initial state.
func (c *Counter) Reset() {
	c.state = NewState()
}
