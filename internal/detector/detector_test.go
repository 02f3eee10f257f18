package detector

import (
	"errors"
	"testing"

	"github.com/ayusman/flexit/internal/pose"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MinDetectionConf != 0.5 {
		t.Errorf("expected detection confidence 0.5, got %f", cfg.MinDetectionConf)
	}
	if cfg.MinTrackingConf != 0.5 {
		t.Errorf("expected tracking confidence 0.5, got %f", cfg.MinTrackingConf)
	}
	if cfg.ModelComplexity != 1 {
		t.Errorf("expected model complexity 1, got %d", cfg.ModelComplexity)
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns no poses by default", func(t *testing.T) {
		mock := NewMockDetector()

		frames, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if frames != nil {
			t.Errorf("expected nil frames, got %v", frames)
		}
	})

	t.Run("returns configured poses", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetFrames(StandingFrame(), DeepSquatFrame())

		frames, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(frames) != 2 {
			t.Errorf("expected 2 frames, got %d", len(frames))
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		frames, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if frames != nil {
			t.Errorf("expected nil frames when error is set, got %v", frames)
		}
	})

	t.Run("Close returns nil", func(t *testing.T) {
		if err := NewMockDetector().Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPresets(t *testing.T) {
	tests := []struct {
		name  string
		frame pose.Frame
		want  pose.Type
	}{
		{"standing", StandingFrame(), pose.Standing},
		{"deep squat", DeepSquatFrame(), pose.DeepSquat},
		{"t-pose", TPoseFrame(), pose.TPose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.frame) != pose.NumLandmarks {
				t.Fatalf("expected %d landmarks, got %d", pose.NumLandmarks, len(tt.frame))
			}
			if got := pose.Classify(tt.frame); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("no poses", func(t *testing.T) {
		frames, err := parseResponse([]byte(`{"poses":[]}` + "\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(frames) != 0 {
			t.Errorf("expected no frames, got %d", len(frames))
		}
	})

	t.Run("landmarks with visibility and gaps", func(t *testing.T) {
		line := `{"poses":[{"landmarks":[{"x":0.1,"y":0.2,"z":-0.3,"visibility":0.9},null,{"x":0.5,"y":0.6}]}]}`

		frames, err := parseResponse([]byte(line))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(frames) != 1 {
			t.Fatalf("expected 1 frame, got %d", len(frames))
		}

		f := frames[0]
		if len(f) != 3 {
			t.Fatalf("expected 3 landmarks, got %d", len(f))
		}
		if f[0].X != 0.1 || f[0].Y != 0.2 || f[0].Z != -0.3 {
			t.Errorf("unexpected first landmark: %+v", f[0])
		}
		if f[0].Visibility == nil || *f[0].Visibility != 0.9 {
			t.Errorf("expected visibility 0.9, got %v", f[0].Visibility)
		}
		if f[1] != nil {
			t.Errorf("expected nil landmark, got %+v", f[1])
		}
		if f[2].Visibility != nil {
			t.Errorf("expected unknown visibility, got %v", *f[2].Visibility)
		}
	})

	t.Run("service error", func(t *testing.T) {
		_, err := parseResponse([]byte(`{"error":"model not loaded"}`))
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := parseResponse([]byte(`{"poses":`))
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestScriptArgs(t *testing.T) {
	d := &MediaPipeDetector{config: DefaultConfig(), script: "/opt/flexit/" + scriptName}

	args := d.scriptArgs()
	want := []string{
		"/opt/flexit/" + scriptName,
		"--min-detection-confidence", "0.5",
		"--min-tracking-confidence", "0.5",
		"--model-complexity", "1",
	}

	if len(args) != len(want) {
		t.Fatalf("expected %d args, got %v", len(want), args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg %d: expected %q, got %q", i, want[i], args[i])
		}
	}
}
