package app

import (
	"github.com/ayusman/mudra/internal/detector"
)

// FrameSource is one landmark stream. Each source runs its own detection session,
// so concurrent trackers never share stability or motion state.
type FrameSource interface {
	HandleFrame(f detector.Frame)
	Close()
}

// Source is a FrameSource registered with an App. Its session is built on the first
// frame after gestures are enabled and dropped when they are disabled or the
// detector settings change.
type Source struct {
	app  *App
	name string

	// guarded by app.mu
	session *Session
	closed  bool
}

// OpenSource registers a new landmark stream. Close it when the stream ends.
func (a *App) OpenSource(name string) FrameSource {
	src := &Source{app: a, name: name}
	a.mu.Lock()
	a.sources[src] = struct{}{}
	n := len(a.sources)
	a.mu.Unlock()
	a.logger.Debug("source opened", "source", name, "sources", n)
	return src
}

// HandleFrame passes f to the source's session. Frames arriving while gestures are
// disabled are dropped.
func (s *Source) HandleFrame(f detector.Frame) {
	sess := s.app.sessionFor(s)
	if sess == nil {
		return
	}
	if f.At.IsZero() {
		f.At = s.app.now()
	}
	sess.HandleFrame(f)
}

// Close tears down the session and unregisters the source.
func (s *Source) Close() {
	a := s.app
	a.mu.Lock()
	if s.closed {
		a.mu.Unlock()
		return
	}
	s.closed = true
	s.dropSessionLocked()
	delete(a.sources, s)
	a.mu.Unlock()
	a.logger.Debug("source closed", "source", s.name)
}

func (s *Source) dropSessionLocked() {
	if s.session != nil {
		s.session.Close()
		s.session = nil
	}
}

// sessionFor returns the live session of src, building one when needed.
func (a *App) sessionFor(src *Source) *Session {
	a.mu.RLock()
	sess, on, closed := src.session, a.gestures, src.closed
	a.mu.RUnlock()
	if sess != nil || !on || closed {
		return sess
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gestures || src.closed {
		return nil
	}
	if src.session == nil {
		src.session = NewSession(a.sessionCfg, a.engine, a.hit, a.logger.With("source", src.name))
	}
	return src.session
}

// dropSessionsLocked closes the session of every source, including the local one.
func (a *App) dropSessionsLocked() {
	a.local.dropSessionLocked()
	for src := range a.sources {
		src.dropSessionLocked()
	}
}

// framesLocked sums the frames handled by the live sessions.
func (a *App) framesLocked() int {
	n := 0
	if a.local.session != nil {
		n += a.local.session.Frames()
	}
	for src := range a.sources {
		if src.session != nil {
			n += src.session.Frames()
		}
	}
	return n
}
