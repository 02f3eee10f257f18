package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCamera_Playback(t *testing.T) {
	frame1 := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame1, &frame2}, false)

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		f.Close()
	}

	// Third read should fail (no loop)
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames after all frames consumed, got %v", err)
	}

	cam.Reset()
	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() after Reset error = %v", err)
	}
	f.Close()
}

func TestMockCamera_Loop(t *testing.T) {
	cam := NewBlankMockCamera()
	defer cam.Release()

	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		if f.Cols() != DefaultWidth || f.Rows() != DefaultHeight {
			t.Errorf("frame size = %dx%d", f.Cols(), f.Rows())
		}
		f.Close()
	}
}

func TestMockCamera_NotOpen(t *testing.T) {
	cam := NewMockCamera(nil, false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen, got %v", err)
	}

	cam.Open()
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}
}

func TestMockCamera_FPS(t *testing.T) {
	cam := NewMockCamera(nil, false)

	if cam.FPS() != DefaultFPS {
		t.Errorf("FPS() = %d, want %d", cam.FPS(), DefaultFPS)
	}

	cam.SetFPS(30)
	cam.SetFPS(0)
	if cam.FPS() != 30 {
		t.Errorf("FPS() = %d, want 30", cam.FPS())
	}
}

func TestMockCamera_ImplementsCamera(t *testing.T) {
	var _ Camera = (*MockCamera)(nil)
}
