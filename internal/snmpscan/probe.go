package snmpscan

import (
	"context"
	"net"
	"strconv"
	"time"
)

// ProbeResult is what Probe discovered when no DeviceURI rule matched.
type ProbeResult struct {
	URIs      []string
	Suppress  bool // an mDNS responder is present; let DNS-SD report it instead
}

// Probe implements spec.md §4.2 "Probe": try a DeviceURI rule first (done by
// the caller via MatchDeviceURI), then a 1-second-bounded TCP connect to
// port 9100 (AppSocket), then port 515 (LPD), and optionally test for an
// mDNS responder on port 5353 to avoid duplicating DNS-SD discovery.
func Probe(ctx context.Context, addr string, checkMDNS bool) ProbeResult {
	if checkMDNS && portOpen(ctx, addr, 5353, 300*time.Millisecond) {
		return ProbeResult{Suppress: true}
	}
	if portOpen(ctx, addr, 9100, time.Second) {
		return ProbeResult{URIs: []string{"socket://" + addr}}
	}
	if portOpen(ctx, addr, 515, time.Second) {
		return ProbeResult{URIs: []string{"lpd://" + addr + "/"}}
	}
	return ProbeResult{}
}

func portOpen(ctx context.Context, addr string, port int, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(addr, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
