// Package runloop implements the print RunLoop of spec.md §4.3: it copies
// spooler-supplied data to a device while servicing back-channel bytes,
// side-channel requests, and periodic SNMP polling.
//
// The original design multiplexes one select(2) call over a dynamically
// composed fd set. Go has no portable equivalent that also composes with
// blocking os.File reads/writes, so each input that would have been an arm
// of that select is instead driven by its own goroutine feeding a channel;
// RunLoop.Run is a single select statement over those channels, preserving
// the same "one readiness wait per iteration" shape spec.md §5 requires
// while staying inside idiomatic Go. Device writes are attempted directly
// rather than gated on a "writable" readiness arm, since a direct Write
// already blocks until the kernel can accept data or returns an error.
package runloop

import (
	"context"
	"io"
	"time"

	"printcore/internal/backendreport"
	"printcore/internal/ioerrs"
	"printcore/internal/lifecycle"
	"printcore/internal/log"
)

const (
	printBufSize = 8 * 1024
	bcReadSize   = 1024
)

// SideChannel services at most one side-channel request per invocation and
// reports whether it should be invoked again; a false return disables the
// side channel for the remainder of the job (spec.md §4.3 step 5).
type SideChannel func() bool

// SNMPPoller performs one periodic supplies poll (internal/supplies).
type SNMPPoller interface {
	Poll() error
}

// BackChannel receives bytes read from the device in bidi mode.
type BackChannel interface {
	Write(p []byte) (int, error)
}

// Device is the device-side fd: read for back-channel bytes (bidi mode),
// write for print data. A plain *os.File satisfies it.
type Device interface {
	io.Reader
	io.Writer
}

// Config configures one RunLoop invocation, mirroring the inputs listed in
// spec.md §4.3.
type Config struct {
	PrintSource io.Reader
	// StdinPrint marks PrintSource as the job's standard input, per step 2:
	// SIGTERM is ignored on such loops so the driver can eject the final
	// page itself.
	StdinPrint  bool
	Device      Device
	Bidi        bool
	UpdateState bool
	SideChannel SideChannel
	BackChannel BackChannel
	SNMPPoller  SNMPPoller
	// SNMPInterval overrides the default 5-second poll cadence; zero means
	// the default.
	SNMPInterval time.Duration
	Reporter     *backendreport.Writer
	Logger       *log.Logger
	Token        *lifecycle.Token
}

// RunLoop is one job's single-threaded copy loop.
type RunLoop struct {
	cfg Config

	buf    []byte
	bufLen int
	bufOff int

	written int64

	bidi          bool
	offline       bool
	outOfSpace    bool
	sideAlive     bool
	nextSNMPPoll  time.Time

	printReadReq  chan struct{}
	printReadRes  chan readResult
	bcReadRes     chan readResult
	sideDone      chan bool
	sideInFlight  bool
}

type readResult struct {
	n   int
	err error
	buf []byte
}

// New constructs a RunLoop. It does not start any goroutines until Run is
// called.
func New(cfg Config) *RunLoop {
	if cfg.SNMPInterval == 0 {
		cfg.SNMPInterval = 5 * time.Second
	}
	return &RunLoop{
		cfg:          cfg,
		buf:          make([]byte, printBufSize),
		bidi:         cfg.Bidi && cfg.Device != nil,
		sideAlive:    cfg.SideChannel != nil,
		nextSNMPPoll: time.Now().Add(cfg.SNMPInterval),
		printReadReq: make(chan struct{}, 1),
		printReadRes: make(chan readResult, 1),
		bcReadRes:    make(chan readResult, 1),
		sideDone:     make(chan bool, 1),
	}
}

// BidiActive reports whether the loop still considers the device
// bidirectional: true until the back-channel reader hits EOF or an error,
// per spec.md §4.3 step 6. Callers servicing the side channel use this to
// answer CUPS_SC_CMD_GET_BIDI truthfully instead of a constant.
func (r *RunLoop) BidiActive() bool { return r.bidi }

// Run drives the loop until the print fd reaches EOF, the job is canceled,
// or an unrecoverable error occurs. It returns the total bytes written to
// the device and, on an unrecoverable error, that error.
func (r *RunLoop) Run(ctx context.Context) (int64, error) {
	go r.printReaderLoop()
	if r.bidi {
		go r.backChannelReaderLoop()
	}
	r.requestPrintRead()

	pollTimer := time.NewTimer(r.cfg.SNMPInterval)
	defer pollTimer.Stop()

	for {
		if r.cfg.Token != nil && r.cfg.Token.Forced() {
			return r.written, nil
		}
		if r.cfg.Token != nil && r.cfg.Token.Canceled() && !r.cfg.StdinPrint {
			// step 2: SIGTERM is ignored when the driver (print fd is
			// stdin) still needs to eject the final page.
			return r.written, nil
		}

		r.maybeRequestSideChannel()

		if r.bufLen > r.bufOff {
			// The device-write arm is always "ready" while data is
			// buffered, so service the other arms without blocking and
			// then attempt the write — this is what lets writeBuffered's
			// internal retry-with-sleep (offline, transient errors) make
			// forward progress without waiting on an unrelated event.
			select {
			case <-ctx.Done():
				return r.written, ctx.Err()
			case res := <-r.bcReadRes:
				r.handleBackChannel(res)
			case ok := <-r.sideDone:
				r.sideInFlight = false
				if !ok {
					r.sideAlive = false
				}
			case <-pollTimer.C:
				r.maybeSNMPPoll()
				pollTimer.Reset(r.cfg.SNMPInterval)
			default:
			}
			if done, err := r.writeBuffered(); err != nil {
				return r.written, err
			} else if done {
				return r.written, nil
			}
			continue
		}

		select {
		case <-ctx.Done():
			return r.written, ctx.Err()

		case res := <-r.printReadRes:
			if r.handlePrintRead(res) {
				return r.written, nil
			}

		case res := <-r.bcReadRes:
			r.handleBackChannel(res)

		case ok := <-r.sideDone:
			r.sideInFlight = false
			if !ok {
				r.sideAlive = false
			}

		case <-pollTimer.C:
			r.maybeSNMPPoll()
			pollTimer.Reset(r.cfg.SNMPInterval)
		}
	}
}

func (r *RunLoop) requestPrintRead() {
	if r.bufLen == r.bufOff {
		select {
		case r.printReadReq <- struct{}{}:
		default:
		}
	}
}

func (r *RunLoop) printReaderLoop() {
	buf := make([]byte, printBufSize)
	for range r.printReadReq {
		n, err := r.cfg.PrintSource.Read(buf)
		out := make([]byte, n)
		copy(out, buf[:n])
		r.printReadRes <- readResult{n: n, err: err, buf: out}
	}
}

func (r *RunLoop) backChannelReaderLoop() {
	buf := make([]byte, bcReadSize)
	for {
		n, err := r.cfg.Device.Read(buf)
		out := make([]byte, n)
		copy(out, buf[:n])
		r.bcReadRes <- readResult{n: n, err: err, buf: out}
		if err != nil {
			return
		}
	}
}

// handlePrintRead implements spec.md §4.3 step 7 and the EOF/EINTR cases of
// step 3. It returns true when the loop should exit.
func (r *RunLoop) handlePrintRead(res readResult) bool {
	if res.err != nil {
		if ioerrs.ShouldRetry(res.err) {
			if res.n == 0 && r.written == 0 {
				// step 3: first interrupt before any output is a clean
				// user cancellation, not an error.
				return true
			}
			r.requestPrintRead()
			return false
		}
		r.cfg.Reporter.Error("print data read failed: " + res.err.Error())
		return true
	}
	if res.n == 0 {
		return true // EOF
	}
	copy(r.buf, res.buf)
	r.bufLen = res.n
	r.bufOff = 0
	return false
}

// handleBackChannel implements step 6: forward device bytes to the
// spooler's back-channel writer; EOF or error disables bidi for the rest of
// the job.
func (r *RunLoop) handleBackChannel(res readResult) {
	if res.n > 0 && r.cfg.BackChannel != nil {
		_, _ = r.cfg.BackChannel.Write(res.buf)
	}
	if res.err != nil {
		r.bidi = false
	}
}

// maybeRequestSideChannel invokes the configured side-channel callback when
// the print buffer is empty and no dispatch is already in flight, per
// spec.md §4.3's readiness condition for the side-channel arm.
func (r *RunLoop) maybeRequestSideChannel() {
	if !r.sideAlive || r.sideInFlight || r.bufLen > r.bufOff {
		return
	}
	r.sideInFlight = true
	go func() {
		ok := r.cfg.SideChannel()
		r.sideDone <- ok
	}()
}

// writeBuffered implements step 8. It returns (true, nil) when the loop
// should exit after this write (never, under normal operation — only error
// paths exit via the returned error).
func (r *RunLoop) writeBuffered() (bool, error) {
	n, err := r.cfg.Device.Write(r.buf[r.bufOff:r.bufLen])
	r.written += int64(n)
	r.bufOff += n
	if err == nil {
		if r.outOfSpace {
			r.outOfSpace = false
			r.cfg.Reporter.State(false, "media-empty-warning")
		}
		if r.offline {
			r.offline = false
			r.cfg.Reporter.State(false, "offline-report")
			r.cfg.Reporter.Info("The printer is now connected.")
		}
		if r.bufOff == r.bufLen {
			r.bufOff, r.bufLen = 0, 0
			r.requestPrintRead()
		}
		return false, nil
	}

	switch ioerrs.Classify(err) {
	case ioerrs.OutOfSpace:
		if r.cfg.UpdateState && !r.outOfSpace {
			r.outOfSpace = true
			r.cfg.Reporter.State(true, "media-empty-warning")
			r.cfg.Reporter.Debug("Out of paper")
		}
		return false, nil
	case ioerrs.Offline:
		if r.cfg.UpdateState && !r.offline {
			r.offline = true
			r.cfg.Reporter.State(true, "offline-report")
			r.cfg.Reporter.Info("The printer is not connected.")
		}
		time.Sleep(time.Second)
		return false, nil
	case ioerrs.Transient:
		return false, nil
	default:
		r.cfg.Reporter.Error("device write failed: " + err.Error())
		return false, err
	}
}

// maybeSNMPPoll implements step 9: poll at most once every SNMPInterval;
// disable further polling permanently on hard failure.
func (r *RunLoop) maybeSNMPPoll() {
	if r.cfg.SNMPPoller == nil || time.Now().Before(r.nextSNMPPoll) {
		return
	}
	if err := r.cfg.SNMPPoller.Poll(); err != nil {
		r.cfg.Logger.WarnRateLimited("snmp-poll", time.Minute, "supplies poll failed", "err", err)
		r.nextSNMPPoll = time.Now().Add(24 * 365 * time.Hour) // effectively never
		return
	}
	r.nextSNMPPoll = time.Now().Add(r.cfg.SNMPInterval)
}
