// Package detector turns camera frames into pose landmark frames.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/flexit/internal/pose"
)

// Detector defines the interface for pose detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns one landmark frame per
	// detected person. Returns an empty slice if nobody is in view.
	Detect(frame *gocv.Mat) ([]pose.Frame, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for pose detection.
type Config struct {
	// MinDetectionConf is the minimum detection confidence threshold (0.0-1.0).
	MinDetectionConf float64 `toml:"min_detection_confidence" env:"MIN_DETECTION_CONFIDENCE"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `toml:"min_tracking_confidence" env:"MIN_TRACKING_CONFIDENCE"`

	// ModelComplexity selects the landmark model: 0 lite, 1 full, 2 heavy.
	ModelComplexity int `toml:"model_complexity" env:"MODEL_COMPLEXITY"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinDetectionConf: 0.5,
		MinTrackingConf:  0.5,
		ModelComplexity:  1,
	}
}
