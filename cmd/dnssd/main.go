// Command dnssd is the DNS-SD DiscoveryEngine backend of spec.md §2/§4.1.
// Invoked with no arguments it lists discovered network printers on
// stdout; invoked with the spooler's job argument set it resolves
// DEVICE_URI and execs the scheme-matching backend, per spec.md §4.1's
// "dispatch-as-resolver mode" and scenario S6.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"

	"printcore/internal/backendreport"
	"printcore/internal/deviceuri"
	"printcore/internal/dnsname"
	"printcore/internal/dnssd"
	"printcore/internal/log"
)

func main() {
	logger := log.New("dnssd", log.INFO, os.Getenv("CUPS_SERVERROOT"))
	defer logger.Close()

	if len(os.Args) == 1 {
		os.Exit(listDevices(logger))
	}

	deviceURI := os.Getenv("DEVICE_URI")
	serverBin := os.Getenv("CUPS_SERVERBIN")
	class := os.Getenv("CLASS")
	os.Exit(dnssd.Dispatch(os.Args, deviceURI, serverBin, class, resolveViaZeroconf, logger))
}

func listDevices(logger *log.Logger) int {
	reporter := &backendreport.Writer{Discovery: os.Stdout, Events: os.Stderr}
	engine := dnssd.NewEngine(dnssd.ZeroconfBackend{}, reporter, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	engine.Start(ctx)
	engine.RunUntilDone(ctx, 2*time.Second)
	return dnssd.ExitOK
}

// resolveViaZeroconf is the synchronous resolver spec.md §4.1 treats as an
// external collaborator: it looks up the full service name a dnssd:// URI
// names and builds the "ipp://host:port/path" URI the matching backend
// expects, using the TXT record's "rp" (resource path) key.
func resolveViaZeroconf(dnssdURI string) (string, error) {
	parsed, err := deviceuri.Parse(dnssdURI)
	if err != nil {
		return "", fmt.Errorf("dnssd: invalid URI %q: %w", dnssdURI, err)
	}
	fullName := dnsname.Unquote(parsed.Authority)
	instance, service, domain, ok := splitFullName(fullName)
	if !ok {
		return "", fmt.Errorf("dnssd: cannot parse full name %q", fullName)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", fmt.Errorf("dnssd: new resolver: %w", err)
	}
	entries := make(chan *zeroconf.ServiceEntry, 1)
	go func() {
		_ = resolver.Lookup(ctx, instance, service, domain, entries)
	}()

	select {
	case entry, ok := <-entries:
		if !ok || entry == nil {
			return "", fmt.Errorf("dnssd: no resolution for %q", fullName)
		}
		return buildIPPURI(entry), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func buildIPPURI(entry *zeroconf.ServiceEntry) string {
	host := entry.HostName
	if len(entry.AddrIPv4) > 0 {
		host = entry.AddrIPv4[0].String()
	}
	path := resourcePath(entry.Text)
	return fmt.Sprintf("ipp://%s:%d%s", host, entry.Port, path)
}

func resourcePath(txt []string) string {
	for _, rec := range txt {
		if strings.HasPrefix(rec, "rp=") {
			rp := strings.TrimPrefix(rec, "rp=")
			if !strings.HasPrefix(rp, "/") {
				rp = "/" + rp
			}
			return rp
		}
	}
	return "/ipp/print"
}

// splitFullName locates the known registration-type marker inside an
// unescaped DNS-SD full name to split it back into instance/service/domain,
// since instance names may themselves contain literal dots.
func splitFullName(full string) (instance, service, domain string, ok bool) {
	for _, rt := range dnssd.RegistrationTypes {
		marker := "." + rt + "."
		idx := strings.Index(full, marker)
		if idx < 0 {
			continue
		}
		instance = full[:idx]
		domain = full[idx+len(marker):]
		return instance, rt, domain, true
	}
	return "", "", "", false
}
