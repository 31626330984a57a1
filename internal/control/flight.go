package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrBusy is returned when a command body is already running or the quiet period after
// the last one has not elapsed. Busy commands are dropped, never queued.
var ErrBusy = errors.New("command in flight")

// Flight is a single-slot execution mutex. The slot stays claimed for the whole body,
// including any waiting it does, and for a quiet period after it returns.
type Flight struct {
	quiet time.Duration
	now   func() time.Time

	mu         sync.Mutex
	busy       bool
	quietUntil time.Time
	wg         sync.WaitGroup
}

// NewFlight creates a Flight. now may be nil for the wall clock.
func NewFlight(quiet time.Duration, now func() time.Time) *Flight {
	if now == nil {
		now = time.Now
	}
	return &Flight{quiet: quiet, now: now}
}

// TryRun claims the slot and runs body on its own goroutine, then calls done with the
// body's result before releasing. It returns ErrBusy without running anything when the
// slot is taken.
func (f *Flight) TryRun(ctx context.Context, body func(context.Context) error, done func(error)) error {
	f.mu.Lock()
	if f.busy || f.now().Before(f.quietUntil) {
		f.mu.Unlock()
		return ErrBusy
	}
	f.busy = true
	f.wg.Add(1)
	f.mu.Unlock()

	go func() {
		defer f.wg.Done()
		err := runGuarded(ctx, body)
		if done != nil {
			done(err)
		}
		f.mu.Lock()
		f.busy = false
		f.quietUntil = f.now().Add(f.quiet)
		f.mu.Unlock()
	}()
	return nil
}

// runGuarded converts a panicking body into an error so the input loops keep going.
func runGuarded(ctx context.Context, body func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command panicked: %v", r)
		}
	}()
	return body(ctx)
}

// Busy reports whether a new command would be dropped right now.
func (f *Flight) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy || f.now().Before(f.quietUntil)
}

// Wait blocks until every started body has finished.
func (f *Flight) Wait() {
	f.wg.Wait()
}
