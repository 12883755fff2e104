// Command backend runs one print job through the RunLoop, side-channel
// handler, and supplies walker of spec.md §4.3-§4.5, following the
// spooler backend convention of spec.md §6:
//
//	backend job-id user title copies options [file]
//
// Device transport is limited to the raw AppSocket ("socket://host:port")
// scheme directly dialed over TCP; USB transport drivers are out of scope
// per spec.md's Non-goals.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"printcore/internal/backendreport"
	"printcore/internal/deviceuri"
	"printcore/internal/lifecycle"
	"printcore/internal/log"
	"printcore/internal/runloop"
	"printcore/internal/sidechannel"
	"printcore/internal/snmpclient"
	"printcore/internal/supplies"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger := log.New("backend", log.INFO, os.Getenv("CUPS_SERVERROOT"))
	defer logger.Close()

	reporter := &backendreport.Writer{Discovery: os.Stdout, Events: os.Stderr}

	if len(os.Args) == 1 {
		// spec.md §6: zero arguments means "list devices" — this backend
		// is job-oriented, so it reports none of its own (discovery is
		// cmd/dnssd and cmd/snmpdiscover's job) and exits cleanly.
		return 0
	}
	if len(os.Args) < 6 {
		fmt.Fprintln(os.Stderr, "Usage: backend job-id user title copies options [file]")
		return 1
	}

	deviceURI := os.Getenv("DEVICE_URI")
	parsed, err := deviceuri.Parse(deviceURI)
	if err != nil || parsed.Scheme != "socket" {
		reporter.Error("unsupported or missing DEVICE_URI: " + deviceURI)
		return 1
	}

	conn, err := net.DialTimeout("tcp", parsed.Authority, 10*time.Second)
	if err != nil {
		reporter.Error("connecting to device failed: " + err.Error())
		return 4 // stop-queue, per spec.md §7 resource-exhaustion/connect-failure guidance
	}
	defer conn.Close()

	printSource, stdinPrint, err := openPrintSource()
	if err != nil {
		reporter.Error("opening print data failed: " + err.Error())
		return 1
	}
	if !stdinPrint {
		defer printSource.Close()
	}

	token := lifecycle.NewToken()
	stopSignals := lifecycle.WatchSignals(token, func() {
		logger.Error("backend: SIGQUIT received, aborting")
	})
	defer stopSignals()

	host, _, _ := net.SplitHostPort(parsed.Authority)
	walker, poller := buildSuppliesWalker(host, reporter, logger)

	// loop is assigned below, once runloop.New has it; the handler's
	// BidiInUse closure isn't called until the job is actually running, by
	// which point loop is non-nil.
	var loop *runloop.RunLoop
	handler := &sidechannel.Handler{
		Drain:           func() error { return nil },
		BidiInUse:       func() bool { return loop.BidiActive() },
		DeviceConnected: func() bool { return true },
		SNMP:            dialSupplySNMP(host),
		Logger:          logger,
	}
	sideFd := openSideChannelFD()

	cfg := runloop.Config{
		PrintSource: printSource,
		StdinPrint:  stdinPrint,
		Device:      conn,
		Bidi:        true,
		UpdateState: true,
		SideChannel: sideChannelCallback(sideFd, handler),
		BackChannel: nopBackChannel{},
		SNMPPoller:  poller,
		Reporter:    reporter,
		Logger:      logger,
		Token:       token,
	}
	if walker != nil {
		_ = walker.SwitchAddress(host)
	}

	loop = runloop.New(cfg)
	if _, err := loop.Run(context.Background()); err != nil {
		return 1
	}
	return 0
}

func openPrintSource() (*os.File, bool, error) {
	if len(os.Args) == 7 {
		f, err := os.Open(os.Args[6])
		return f, false, err
	}
	return os.Stdin, true, nil
}

func openSideChannelFD() *os.File {
	// CUPS convention: the side-channel fd is 4. It's absent when this
	// backend is run outside a spooler, which sideChannelCallback handles.
	f := os.NewFile(4, "sidechannel")
	return f
}

func sideChannelCallback(fd *os.File, h *sidechannel.Handler) runloop.SideChannel {
	if fd == nil {
		return nil
	}
	return func() bool {
		req, err := sidechannel.ReadFrame(fd)
		if err != nil {
			return false
		}
		resp := h.Dispatch(req)
		if err := sidechannel.WriteFrame(fd, resp); err != nil {
			return false
		}
		return true
	}
}

func dialSupplySNMP(host string) snmpclient.Client {
	if host == "" {
		return nil
	}
	client, err := snmpclient.Dial(host, "public", 2*time.Second)
	if err != nil {
		return nil
	}
	return client
}

func buildSuppliesWalker(host string, reporter *backendreport.Writer, logger *log.Logger) (*supplies.Walker, *suppliesPoller) {
	if host == "" {
		return nil, nil
	}
	client := dialSupplySNMP(host)
	if client == nil {
		return nil, nil
	}
	gating := supplies.Gating{SuppliesEnabled: true}
	if ppdPath := os.Getenv("PPD"); ppdPath != "" {
		if f, err := os.Open(ppdPath); err == nil {
			defer f.Close()
			if g, err := supplies.ParsePPDGating(f); err == nil {
				gating = g
			} else {
				logger.Warn("backend: PPD parse failed", "err", err)
			}
		}
	}
	w := supplies.New(supplies.Config{
		SNMP:     client,
		Reporter: reporter,
		CacheDir: os.Getenv("CUPS_CACHEDIR"),
		Gating:   gating,
	})
	return w, &suppliesPoller{walker: w}
}

// suppliesPoller adapts *supplies.Walker to runloop.SNMPPoller, always
// requesting the lightweight level-only re-walk since the device address
// doesn't change within a single job.
type suppliesPoller struct {
	walker *supplies.Walker
}

func (p *suppliesPoller) Poll() error {
	return p.walker.Poll(false)
}

// nopBackChannel discards back-channel bytes; a real spooler integration
// would forward these to the job's back-channel fd (fd 3 in the CUPS
// convention), which this standalone binary doesn't open.
type nopBackChannel struct{}

func (nopBackChannel) Write(p []byte) (int, error) { return len(p), nil }
