package app

import (
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// runPipeline samples the camera until stop is closed.
//
// The loop starts at the idle rate. Frame differencing drives the activity gate;
// when it opens the camera switches to the active rate and frames go to the hand
// detector, and when it closes again the rate drops and the session state is
// cleared. Frames without a hand still reach the session so held poses and motion
// tracking are broken.
func (a *App) runPipeline(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	a.mu.RLock()
	cam, diff, gate, det := a.camera, a.diff, a.gate, a.detector
	a.mu.RUnlock()

	ticker := time.NewTicker(interval(gate.FPS()))
	defer ticker.Stop()
	log := a.logger.With("component", "pipeline")

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		if !a.GesturesEnabled() {
			continue
		}

		frame, err := cam.ReadFrame()
		if err != nil {
			log.Debug("frame read failed", "error", err)
			continue
		}
		now := a.now()

		active, switched := gate.Observe(diff.Change(frame), now)
		if switched {
			fps := gate.FPS()
			cam.SetFPS(fps)
			ticker.Reset(interval(fps))
			log.Info("sampling rate changed", "active", active, "fps", fps)
			if !active {
				a.resetSession()
			}
		}
		if !active {
			frame.Close()
			continue
		}

		hands, err := det.Detect(frame)
		frame.Close()
		if err != nil {
			log.Warn("hand detection failed", "error", err)
			continue
		}
		best, ok := detector.Best(hands)
		if !ok {
			a.HandleFrame(detector.Frame{At: now})
			continue
		}
		a.HandleFrame(best.Frame(now))
	}
}

func interval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}

func (a *App) resetSession() {
	a.mu.RLock()
	s := a.local.session
	a.mu.RUnlock()
	if s != nil {
		s.Reset()
	}
}
