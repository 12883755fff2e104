package dnssd

import (
	"context"
	"strings"

	"github.com/grandcat/zeroconf"

	"printcore/internal/dnsname"
)

// ZeroconfBackend adapts github.com/grandcat/zeroconf (the teacher's mDNS
// dependency, see agent/agent/mdns.go) to the ResolverBackend capability.
type ZeroconfBackend struct{}

// Browse implements ResolverBackend using zeroconf.Resolver.Browse. Each
// resolved zeroconf.ServiceEntry is translated into a ServiceEvent carrying
// its decoded TXT map.
func (ZeroconfBackend) Browse(ctx context.Context, regType, domain string, local bool, events chan<- ServiceEvent) error {
	if domain == "" {
		domain = "local."
	}
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return err
	}
	entries := make(chan *zeroconf.ServiceEntry, 16)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-entries:
				if !ok {
					return
				}
				events <- ServiceEvent{
					Name:     dnsname.Unquote(e.Instance),
					Domain:   e.Domain,
					FullName: zeroconfFullName(e, regType, domain),
					RegType:  regType,
					TXT:      parseTXT(e.Text),
					Local:    local,
				}
			}
		}
	}()
	return resolver.Browse(ctx, regType, strings.TrimSuffix(domain, "."), entries)
}

func zeroconfFullName(e *zeroconf.ServiceEntry, regType, domain string) string {
	return dnsname.Quote(e.Instance) + "." + regType + "." + domain
}

// NameJoin mirrors the dotted full-name assembly zeroconf uses internally.
func (ZeroconfBackend) NameJoin(instance, regType, domain string) string {
	return dnsname.Quote(instance) + "." + regType + "." + domain
}

// Unquote decodes the DNS backslash escaping zeroconf leaves in instance
// names.
func (ZeroconfBackend) Unquote(fullName string) string {
	return dnsname.Unquote(fullName)
}

// parseTXT decodes a TXT record's "key=value" strings (already
// length-prefix-decoded by zeroconf) into a map, per spec.md §4.1.
func parseTXT(records []string) map[string]string {
	out := make(map[string]string, len(records))
	for _, rec := range records {
		idx := strings.IndexByte(rec, '=')
		if idx < 0 {
			out[rec] = ""
			continue
		}
		out[rec[:idx]] = rec[idx+1:]
	}
	return out
}
