// Package addrlist expands the "@LOCAL" and "@IF(name)" address-list
// tokens used by the snmp.conf Address directive, which the SNMP scanner
// expands before sending; community strings are not expanded, per spec.md
// §3 "Address/community lists".
package addrlist

import (
	"fmt"
	"net"
	"regexp"
)

var ifPattern = regexp.MustCompile(`^@IF\(([^)]+)\)$`)

// Interfaces abstracts net.Interfaces/addrs so tests can supply a fake
// topology without touching the real network stack.
type Interfaces interface {
	Interfaces() ([]net.Interface, error)
	Addrs(iface net.Interface) ([]net.Addr, error)
}

type osInterfaces struct{}

func (osInterfaces) Interfaces() ([]net.Interface, error) { return net.Interfaces() }
func (osInterfaces) Addrs(iface net.Interface) ([]net.Addr, error) { return iface.Addrs() }

// System is the real, OS-backed Interfaces implementation.
var System Interfaces = osInterfaces{}

// Expand resolves a single address-list token into zero or more concrete
// broadcast addresses. A plain address (not starting with '@') expands to
// itself. "@LOCAL" expands to the broadcast address of every IPv4 interface
// that has the broadcast flag set. "@IF(name)" does the same restricted to
// one named interface.
func Expand(token string, ifaces Interfaces) ([]string, error) {
	if token == "@LOCAL" {
		return broadcastAddrs(ifaces, "")
	}
	if m := ifPattern.FindStringSubmatch(token); m != nil {
		return broadcastAddrs(ifaces, m[1])
	}
	return []string{token}, nil
}

func broadcastAddrs(ifaces Interfaces, only string) ([]string, error) {
	all, err := ifaces.Interfaces()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, iface := range all {
		if only != "" && iface.Name != only {
			continue
		}
		if iface.Flags&net.FlagBroadcast == 0 {
			continue
		}
		addrs, err := ifaces.Addrs(iface)
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipnet.IP.To4()
			if ip4 == nil {
				continue
			}
			bcast := make(net.IP, len(ip4))
			for i := range ip4 {
				bcast[i] = ip4[i] | ^ipnet.Mask[i]
			}
			out = append(out, bcast.String())
		}
	}
	if only != "" && len(out) == 0 {
		return nil, fmt.Errorf("addrlist: interface %q not found or has no broadcast IPv4 address", only)
	}
	return out, nil
}

// ExpandAll expands every token in tokens, in order, concatenating results.
func ExpandAll(tokens []string, ifaces Interfaces) ([]string, error) {
	var out []string
	for _, t := range tokens {
		exp, err := Expand(t, ifaces)
		if err != nil {
			return nil, err
		}
		out = append(out, exp...)
	}
	return out, nil
}
