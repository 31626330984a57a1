package capture

import (
	"errors"
	"testing"
)

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name    string
		config  DeviceConfig
		wantFPS int
	}{
		{"defaults", DefaultDeviceConfig(), 5},
		{"second device", DeviceConfig{Device: 1, FPS: 10}, 10},
		{"zero fps falls back", DeviceConfig{Device: 2}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.config)
			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
			if cam.IsOpen() {
				t.Error("camera should not be open before Open")
			}
		})
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(DefaultDeviceConfig())

	tests := []struct {
		fps  int
		want int
	}{
		{10, 10},
		{30, 30},
		{0, 30},
		{-5, 30},
		{1, 1},
	}
	for _, tt := range tests {
		cam.SetFPS(tt.fps)
		if got := cam.FPS(); got != tt.want {
			t.Errorf("SetFPS(%d): FPS() = %d, want %d", tt.fps, got, tt.want)
		}
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultDeviceConfig())

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultDeviceConfig())

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera = %v, want nil", err)
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(DefaultDeviceConfig())
	if err := cam.Open(); err != nil {
		t.Skipf("camera not available: %v", err)
	}
	if !cam.IsOpen() {
		t.Error("IsOpen() should be true after Open")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Skipf("camera opened but produced no frame: %v", err)
	}
	if mat.Empty() {
		t.Error("ReadFrame() returned an empty frame")
	}
	mat.Close()

	if err := cam.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() should be false after Close")
	}
}
