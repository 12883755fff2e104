package runloop

import (
	"io"
	"os"
	"time"

	"printcore/internal/ioerrs"
)

// Drain implements spec.md §4.3's "Drain variant": steps 7 and 8 only, with
// a non-blocking tight retry, returning once the print fd reports EOF or no
// readable data remains. WaitLoop does not call it, and cmd/backend's
// side-channel drain-output hook does not use it either.
func Drain(printFile io.Reader, deviceFile io.Writer) error {
	buf := make([]byte, printBufSize)
	for {
		n, err := printFile.Read(buf)
		if n == 0 && err == nil {
			return nil
		}
		if err != nil {
			if ioerrs.ShouldRetry(err) {
				continue
			}
			return nil // EOF or unreadable: nothing left to drain
		}
		off := 0
		for off < n {
			wn, werr := deviceFile.Write(buf[off:n])
			off += wn
			if werr != nil && !ioerrs.ShouldRetry(werr) {
				return werr
			}
		}
	}
}

// WaitLoop implements spec.md §4.3's "Wait-for-input variant": it blocks on
// standard input while still servicing the side channel and periodic SNMP
// polling, returning true once stdin becomes readable.
func WaitLoop(cfg Config) (bool, error) {
	cfg.PrintSource = os.Stdin
	cfg.StdinPrint = true
	cfg.Device = nil
	cfg.Bidi = false
	r := New(cfg)

	readable := make(chan bool, 1)
	go func() {
		buf := make([]byte, 1)
		n, _ := os.Stdin.Read(buf)
		readable <- n >= 0
	}()

	pollTimer := time.NewTimer(cfg.SNMPInterval)
	defer pollTimer.Stop()

	for {
		r.maybeRequestSideChannel()
		select {
		case ok := <-readable:
			return ok, nil
		case ok := <-r.sideDone:
			r.sideInFlight = false
			if !ok {
				r.sideAlive = false
			}
		case <-pollTimer.C:
			r.maybeSNMPPoll()
			pollTimer.Reset(cfg.SNMPInterval)
		}
	}
}
