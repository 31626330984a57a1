package control

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: t0} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t0.Add(d)
}

// fakePlayer records calls. When block is set, Next waits on it.
type fakePlayer struct {
	mu      sync.Mutex
	calls   []string
	playing bool
	block   chan struct{}
	err     error
}

func (p *fakePlayer) record(call string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
	return p.err
}

func (p *fakePlayer) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePlayer) Play(context.Context) error { return p.record("play") }
func (p *fakePlayer) Pause(context.Context) error {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
	return p.record("pause")
}
func (p *fakePlayer) Resume(context.Context) error {
	p.mu.Lock()
	p.playing = true
	p.mu.Unlock()
	return p.record("resume")
}
func (p *fakePlayer) Next(ctx context.Context) error {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.record("next")
}
func (p *fakePlayer) Previous(context.Context) error { return p.record("previous") }
func (p *fakePlayer) PlayQuery(_ context.Context, q string) error {
	return p.record("play_query:" + q)
}
func (p *fakePlayer) PlayMood(_ context.Context, m string) error {
	return p.record("play_mood:" + m)
}
func (p *fakePlayer) PlayNthTrack(_ context.Context, n int) error {
	return p.record(fmt.Sprintf("play_track:%d", n))
}
func (p *fakePlayer) PlayPlaylist(_ context.Context, name string) error {
	return p.record("play_playlist:" + name)
}
func (p *fakePlayer) PlayLikedSongs(context.Context) error { return p.record("play_liked") }
func (p *fakePlayer) SearchAndPlay(_ context.Context, q string) error {
	return p.record("search_and_play:" + q)
}
func (p *fakePlayer) SetVolume(_ context.Context, v int) error {
	return p.record(fmt.Sprintf("set_volume:%d", v))
}
func (p *fakePlayer) AdjustVolume(_ context.Context, d int) error {
	return p.record(fmt.Sprintf("adjust_volume:%d", d))
}
func (p *fakePlayer) IsPlaying(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing, nil
}

// readingPlayer also reports its volume.
type readingPlayer struct {
	fakePlayer
	volume int
}

func (p *readingPlayer) Volume(context.Context) (int, error) { return p.volume, nil }

type fakePage struct {
	mu    sync.Mutex
	calls []string
}

func (p *fakePage) record(call string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
	return nil
}

func (p *fakePage) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePage) ScrollBy(_ context.Context, px int) error {
	return p.record(fmt.Sprintf("scroll:%d", px))
}
func (p *fakePage) ScrollToSection(_ context.Context, id string) error {
	return p.record("section:" + id)
}
func (p *fakePage) ScrollToEdge(_ context.Context, top bool) error {
	if top {
		return p.record("top")
	}
	return p.record("bottom")
}
func (p *fakePage) PlayItemInSection(_ context.Context, id string, n int) error {
	return p.record(fmt.Sprintf("play_item:%s:%d", id, n))
}
func (p *fakePage) Click(_ context.Context, id string) error { return p.record("click:" + id) }

type fakeNav struct {
	fakePage
}

func (n *fakeNav) OpenHome(context.Context) error     { return n.record("open:home") }
func (n *fakeNav) OpenLibrary(context.Context) error  { return n.record("open:library") }
func (n *fakeNav) OpenEmotions(context.Context) error { return n.record("open:emotions") }
func (n *fakeNav) OpenSettings(context.Context) error { return n.record("open:settings") }
func (n *fakeNav) GoBack(context.Context) error       { return n.record("back") }
func (n *fakeNav) OpenSearch(_ context.Context, q string) error {
	return n.record("open:search:" + q)
}

type fakeListener struct {
	fakePage
}

func (l *fakeListener) StartListening(context.Context) error { return l.record("listen") }
func (l *fakeListener) StopListening(context.Context) error  { return l.record("stop") }

// recorder collects records and feedback.
type recorder struct {
	mu       sync.Mutex
	records  []Record
	feedback []Feedback
}

func (r *recorder) Record(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *recorder) Notify(fb Feedback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedback = append(r.feedback, fb)
}

func (r *recorder) Outcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Outcome
	for _, rec := range r.records {
		out = append(out, rec.Outcome)
	}
	return out
}

func (r *recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, fb := range r.feedback {
		out = append(out, fb.Message)
	}
	return out
}

func ptr(n int) *int { return &n }
