// Package capture reads camera frames with GoCV (OpenCV) and decides how fast the
// detection loop should sample them.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture geometry. MediaPipe works on normalized coordinates, so a small
// frame keeps the subprocess fast without losing landmark precision.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrNoFrame is returned when the device produced no usable frame.
	ErrNoFrame = errors.New("camera produced no frame")
)

// Camera is a frame source for the detection pipeline.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller owns the returned Mat.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// DeviceConfig selects and sizes a capture device.
type DeviceConfig struct {
	Device int
	Width  int
	Height int
	FPS    int
}

// DefaultDeviceConfig returns the first camera at 640x480 sampled at 5 fps.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{Device: 0, Width: DefaultWidth, Height: DefaultHeight, FPS: 5}
}

type device struct {
	config  DeviceConfig
	mu      sync.Mutex
	capture *gocv.VideoCapture
	fps     int
}

// NewCamera returns a Camera for the configured device. The device is not touched
// until Open.
func NewCamera(config DeviceConfig) Camera {
	if config.Width <= 0 || config.Height <= 0 {
		config.Width, config.Height = DefaultWidth, DefaultHeight
	}
	if config.FPS <= 0 {
		config.FPS = DefaultDeviceConfig().FPS
	}
	return &device{config: config, fps: config.FPS}
}

func (d *device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(d.config.Device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", d.config.Device, err)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(d.config.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(d.config.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(d.fps))

	d.capture = vc
	return nil
}

func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capture == nil {
		return nil
	}
	err := d.capture.Close()
	d.capture = nil
	return err
}

func (d *device) ReadFrame() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := d.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrNoFrame
	}
	return &mat, nil
}

// SetFPS changes the sampling rate. Non-positive values are ignored.
func (d *device) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.fps = fps
	if d.capture != nil {
		d.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (d *device) FPS() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fps
}

func (d *device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.capture != nil
}
