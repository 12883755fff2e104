package dnssd

import (
	"os"
	"path/filepath"
	"syscall"
	"time"

	"printcore/internal/deviceuri"
	"printcore/internal/log"
)

// Exit codes shared with the run loop, per spec.md §6.
const (
	ExitOK             = 0
	ExitFailed         = 1
	ExitAuthRequired   = 2
	ExitHoldJob        = 3
	ExitStopQueue      = 4
	ExitCancelJob      = 5
	ExitRetryJobNow    = 6
	ExitRetryCurrentTime = 7
)

// ResolveFunc resolves a "dnssd://..." URI to a scheme-matching backend URI
// (e.g. "ipp://host/queue"). This is the synchronous resolver spec.md §4.1
// calls an external collaborator; Dispatch takes it as a parameter, and
// cmd/dnssd passes a zeroconf-backed one.
type ResolveFunc func(dnssdURI string) (resolved string, err error)

// Dispatch implements spec.md §4.1's "Dispatch-as-resolver mode": when
// invoked with the full spooler argument set, resolve DEVICE_URI and
// execve the scheme-matching backend with the resolved URI as argv[0].
//
// serverBin is CUPS_SERVERBIN; class is the CLASS environment variable
// (non-empty membership triggers the "try-next-in-class" exit rather than
// indefinite retry).
func Dispatch(args []string, deviceURI, serverBin, class string, resolve ResolveFunc, logger *log.Logger) int {
	retryDelay := time.Second
	for {
		resolved, err := resolve(deviceURI)
		if err == nil {
			parsed, perr := deviceuri.Parse(resolved)
			if perr != nil {
				logger.Error("dnssd: resolved URI is invalid", "uri", resolved, "err", perr)
				return ExitFailed
			}
			backendPath := filepath.Join(serverBin, "backend", parsed.Scheme)
			argv := append([]string{resolved}, args[1:]...)
			env := os.Environ()
			execErr := syscall.Exec(backendPath, argv, env)
			// syscall.Exec only returns on error.
			logger.Error("dnssd: exec failed", "path", backendPath, "err", execErr)
			return ExitFailed
		}
		logger.Debug("dnssd: resolve failed, retrying", "err", err)
		if class != "" {
			return ExitFailed
		}
		time.Sleep(retryDelay)
	}
}

// DispatchUsage documents the expected argv shape, for callers building
// argv before invoking Dispatch.
const DispatchUsage = "dnssd job-id user title copies options [file]"
