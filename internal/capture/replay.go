package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrReplayExhausted is returned by a non-looping ReplayCamera after its last frame.
var ErrReplayExhausted = errors.New("replay camera has no more frames")

// ReplayCamera plays back a fixed frame sequence. It stands in for a device in
// pipeline tests and for recorded sessions.
type ReplayCamera struct {
	mu     sync.Mutex
	frames []*gocv.Mat
	index  int
	loop   bool
	open   bool
	fps    int
}

// NewReplayCamera returns a camera over frames. With loop set, playback restarts
// after the last frame.
func NewReplayCamera(frames []*gocv.Mat, loop bool) *ReplayCamera {
	return &ReplayCamera{frames: frames, loop: loop, fps: DefaultDeviceConfig().FPS}
}

func (c *ReplayCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.index = 0
	return nil
}

func (c *ReplayCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

// ReadFrame returns a clone of the next frame.
func (c *ReplayCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	if len(c.frames) == 0 {
		return nil, ErrNoFrame
	}
	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, ErrReplayExhausted
		}
		c.index = 0
	}

	frame := c.frames[c.index].Clone()
	c.index++
	return &frame, nil
}

func (c *ReplayCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *ReplayCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *ReplayCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}
