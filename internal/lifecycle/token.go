// Package lifecycle provides the cancellation token spec.md §9 calls for in
// place of the original's signal-set global ("job_canceled"): a small
// atomic flag that signal handlers set and loop bodies poll at the top of
// each iteration.
package lifecycle

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Token is a cancellation flag safe to read and write from a signal
// handler goroutine and poll from a cooperative loop body.
type Token struct {
	canceled  atomic.Bool
	forced    atomic.Bool
	quitCount atomic.Int32
}

// NewToken returns an uncanceled token.
func NewToken() *Token { return &Token{} }

// Canceled reports whether Cancel has been called at least once.
func (t *Token) Canceled() bool { return t.canceled.Load() }

// Forced reports whether Cancel has been called a second time, meaning the
// loop should stop immediately rather than finish its current unit of work.
func (t *Token) Forced() bool { return t.forced.Load() }

// Cancel sets the flag. The first call requests a clean shutdown observed
// at the next loop head; a second call forces immediate exit, matching "a
// second SIGTERM forces immediate exit" (spec.md §5).
func (t *Token) Cancel() {
	if !t.canceled.CompareAndSwap(false, true) {
		t.forced.Store(true)
	}
}

// WatchSignals spawns a goroutine that cancels token on SIGTERM and invokes
// onQuit on SIGQUIT (spec.md §4.3 step 2: "SIGQUIT dumps caller identity
// then aborts"). It returns a stop function that releases the signal
// registration.
func WatchSignals(token *Token, onQuit func()) (stop func()) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGQUIT)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-ch:
				switch sig {
				case syscall.SIGTERM:
					token.Cancel()
				case syscall.SIGQUIT:
					token.quitCount.Add(1)
					if onQuit != nil {
						onQuit()
					}
					os.Exit(1)
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
