// Package config loads service settings from defaults, an optional TOML
// file, and FLEXIT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/flexit/internal/capture"
	"github.com/ayusman/flexit/internal/detector"
	"github.com/ayusman/flexit/internal/reps"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "FLEXIT_"

// Config is the service configuration.
type Config struct {
	Addr      string `toml:"addr" env:"ADDR"`
	DBPath    string `toml:"db_path" env:"DB_PATH"`
	StaticDir string `toml:"static_dir" env:"STATIC_DIR"`

	// logging
	LogLevel      string `toml:"log_level" env:"LOG_LEVEL"`
	LogFile       string `toml:"log_file" env:"LOG_FILE"`
	LogToStdout   bool   `toml:"log_to_stdout" env:"LOG_TO_STDOUT"`
	LogFormatJSON bool   `toml:"log_format_json" env:"LOG_FORMAT_JSON"`

	// metrics
	MetricsNamespace string `toml:"metrics_namespace" env:"METRICS_NAMESPACE"`
	MetricsSubsystem string `toml:"metrics_subsystem" env:"METRICS_SUBSYSTEM"`

	// rep counting
	SquatThreshold    float64 `toml:"squat_threshold" env:"SQUAT_THRESHOLD"`
	StandingThreshold float64 `toml:"standing_threshold" env:"STANDING_THRESHOLD"`
	MinVisibility     float64 `toml:"min_visibility" env:"MIN_VISIBILITY"`

	// live camera tracking
	Tracking bool            `toml:"tracking" env:"TRACKING"`
	Camera   capture.Config  `toml:"camera" envPrefix:"CAMERA_"`
	Detector detector.Config `toml:"detector" envPrefix:"DETECTOR_"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	t := reps.DefaultThresholds()
	return &Config{
		Addr:              "127.0.0.1:8080",
		DBPath:            "flexit.db",
		StaticDir:         "web",
		LogLevel:          "info",
		LogToStdout:       true,
		MetricsNamespace:  "flexit",
		MetricsSubsystem:  "server",
		SquatThreshold:    t.Squat,
		StandingThreshold: t.Standing,
		Camera:            capture.DefaultConfig(),
		Detector:          detector.DefaultConfig(),
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty), and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			log.Warnf("config %s: ignoring unknown keys %s", path, strings.Join(keys, ", "))
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Thresholds returns the configured default rep thresholds.
func (c *Config) Thresholds() reps.Thresholds {
	return reps.Thresholds{Squat: c.SquatThreshold, Standing: c.StandingThreshold}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if err := c.Thresholds().Validate(); err != nil {
		errs = append(errs, err)
	}
	if !unitInterval(c.MinVisibility) {
		errs = append(errs, fmt.Errorf("min_visibility %v outside [0, 1]", c.MinVisibility))
	}
	if !unitInterval(c.Detector.MinDetectionConf) {
		errs = append(errs, fmt.Errorf("detector.min_detection_confidence %v outside [0, 1]", c.Detector.MinDetectionConf))
	}
	if !unitInterval(c.Detector.MinTrackingConf) {
		errs = append(errs, fmt.Errorf("detector.min_tracking_confidence %v outside [0, 1]", c.Detector.MinTrackingConf))
	}
	if c.Detector.ModelComplexity < 0 || c.Detector.ModelComplexity > 2 {
		errs = append(errs, fmt.Errorf("detector.model_complexity %d not in 0..2", c.Detector.ModelComplexity))
	}
	if c.Camera.FPS < 0 {
		errs = append(errs, fmt.Errorf("camera.fps %d is negative", c.Camera.FPS))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func unitInterval(v float64) bool {
	return v >= 0 && v <= 1
}
