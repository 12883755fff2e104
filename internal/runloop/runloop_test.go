package runloop

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"printcore/internal/backendreport"
)

type writeStep struct {
	err error
}

// scriptedDevice replays a queue of forced Write errors before falling back
// to actually buffering the bytes, letting tests simulate transient
// ENXIO/ENOSPC conditions the real kernel would surface.
type scriptedDevice struct {
	mu      sync.Mutex
	writes  []writeStep
	i       int
	written bytes.Buffer
}

func (d *scriptedDevice) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.i < len(d.writes) {
		step := d.writes[d.i]
		d.i++
		if step.err != nil {
			return 0, step.err
		}
	}
	return d.written.Write(p)
}

func (d *scriptedDevice) Read(p []byte) (int, error) { return 0, io.EOF }

// delayedEOFReader yields data once, then pauses before reporting EOF, so a
// concurrently dispatched goroutine (e.g. the side channel) has time to run
// before the loop exits.
type delayedEOFReader struct {
	data []byte
	read bool
}

func (r *delayedEOFReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(p, r.data), nil
	}
	time.Sleep(50 * time.Millisecond)
	return 0, io.EOF
}

func newTestReporter() (*backendreport.Writer, *bytes.Buffer) {
	var events bytes.Buffer
	return &backendreport.Writer{Discovery: io.Discard, Events: &events}, &events
}

func TestRunLoopCopiesPrintDataToDevice(t *testing.T) {
	reporter, _ := newTestReporter()
	dev := &scriptedDevice{}
	rl := New(Config{
		PrintSource:  strings.NewReader("hello"),
		Device:       dev,
		SNMPInterval: time.Hour,
		Reporter:     reporter,
	})

	written, err := rl.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written != 5 {
		t.Fatalf("expected 5 bytes written, got %d", written)
	}
	if dev.written.String() != "hello" {
		t.Fatalf("expected device to receive %q, got %q", "hello", dev.written.String())
	}
}

// S5 — run-loop offline recovery.
func TestOfflineRecoveryEmitsStateAndInfoLines(t *testing.T) {
	reporter, events := newTestReporter()
	dev := &scriptedDevice{writes: []writeStep{
		{err: syscall.ENXIO},
		{err: syscall.ENXIO},
	}}
	rl := New(Config{
		PrintSource:  strings.NewReader("AB"),
		Device:       dev,
		UpdateState:  true,
		SNMPInterval: time.Hour,
		Reporter:     reporter,
	})

	written, err := rl.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written != 2 {
		t.Fatalf("expected 2 bytes eventually written, got %d", written)
	}

	got := events.String()
	wantInOrder := []string{
		"STATE: +offline-report",
		"INFO: The printer is not connected.",
		"STATE: -offline-report",
		"INFO: The printer is now connected.",
	}
	last := 0
	for _, want := range wantInOrder {
		idx := strings.Index(got[last:], want)
		if idx < 0 {
			t.Fatalf("expected %q in event stream, got:\n%s", want, got)
		}
		last += idx + len(want)
	}
}

func TestOutOfSpaceEmitsMediaEmptyWarningOnce(t *testing.T) {
	reporter, events := newTestReporter()
	dev := &scriptedDevice{writes: []writeStep{
		{err: syscall.ENOSPC},
		{err: syscall.ENOSPC},
	}}
	rl := New(Config{
		PrintSource:  strings.NewReader("X"),
		Device:       dev,
		UpdateState:  true,
		SNMPInterval: time.Hour,
		Reporter:     reporter,
	})

	if _, err := rl.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := events.String()
	if strings.Count(got, "STATE: +media-empty-warning") != 1 {
		t.Fatalf("expected exactly one +media-empty-warning, got:\n%s", got)
	}
	if strings.Count(got, "STATE: -media-empty-warning") != 1 {
		t.Fatalf("expected exactly one -media-empty-warning, got:\n%s", got)
	}
}

func TestOutOfSpaceSuppressedWithoutUpdateState(t *testing.T) {
	reporter, events := newTestReporter()
	dev := &scriptedDevice{writes: []writeStep{
		{err: syscall.ENOSPC},
		{err: syscall.ENOSPC},
	}}
	rl := New(Config{
		PrintSource:  strings.NewReader("X"),
		Device:       dev,
		SNMPInterval: time.Hour,
		Reporter:     reporter,
	})

	if _, err := rl.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := events.String()
	if strings.Contains(got, "media-empty-warning") {
		t.Fatalf("expected no media-empty-warning lines when UpdateState is false, got:\n%s", got)
	}
}

func TestSideChannelDroppedAfterFailure(t *testing.T) {
	reporter, _ := newTestReporter()
	dev := &scriptedDevice{}
	var calls int
	var mu sync.Mutex
	rl := New(Config{
		PrintSource:  &delayedEOFReader{data: []byte("x")},
		Device:       dev,
		SNMPInterval: time.Hour,
		Reporter:     reporter,
		SideChannel: func() bool {
			mu.Lock()
			calls++
			mu.Unlock()
			return false // drop on first dispatch
		},
	})

	if _, err := rl.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls == 0 {
		t.Fatal("expected side channel to be invoked at least once")
	}
	if rl.sideAlive {
		t.Fatal("expected side channel to be disabled after returning false")
	}
}

func TestDrainStopsOnEOF(t *testing.T) {
	var dev bytes.Buffer
	if err := Drain(strings.NewReader("payload"), &dev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dev.String() != "payload" {
		t.Fatalf("expected drained bytes %q, got %q", "payload", dev.String())
	}
}
