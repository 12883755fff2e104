package addrlist

import (
	"net"
	"testing"
)

type fakeIfaces struct {
	ifaces map[string][]net.Addr
	flags  map[string]net.Flags
}

func (f fakeIfaces) Interfaces() ([]net.Interface, error) {
	var out []net.Interface
	for name := range f.ifaces {
		out = append(out, net.Interface{Name: name, Flags: f.flags[name]})
	}
	return out, nil
}

func (f fakeIfaces) Addrs(iface net.Interface) ([]net.Addr, error) {
	return f.ifaces[iface.Name], nil
}

func mustIPNet(s string) *net.IPNet {
	ip, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	ipnet.IP = ip.To4()
	return ipnet
}

func TestExpandPlainAddress(t *testing.T) {
	out, err := Expand("10.0.0.5", System)
	if err != nil || len(out) != 1 || out[0] != "10.0.0.5" {
		t.Fatalf("got %v err %v", out, err)
	}
}

func TestExpandLocalBroadcastsOnlyBroadcastIfaces(t *testing.T) {
	fi := fakeIfaces{
		ifaces: map[string][]net.Addr{
			"eth0": {mustIPNet("192.168.1.10/24")},
			"lo":   {mustIPNet("127.0.0.1/8")},
		},
		flags: map[string]net.Flags{
			"eth0": net.FlagBroadcast | net.FlagUp,
			"lo":   net.FlagLoopback | net.FlagUp,
		},
	}
	out, err := Expand("@LOCAL", fi)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0] != "192.168.1.255" {
		t.Fatalf("got %v", out)
	}
}

func TestExpandIFRestrictsToNamedInterface(t *testing.T) {
	fi := fakeIfaces{
		ifaces: map[string][]net.Addr{
			"eth0": {mustIPNet("192.168.1.10/24")},
			"eth1": {mustIPNet("10.0.0.10/24")},
		},
		flags: map[string]net.Flags{
			"eth0": net.FlagBroadcast,
			"eth1": net.FlagBroadcast,
		},
	}
	out, err := Expand("@IF(eth1)", fi)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0] != "10.0.0.255" {
		t.Fatalf("got %v", out)
	}
}

func TestExpandIFMissingInterfaceErrors(t *testing.T) {
	fi := fakeIfaces{ifaces: map[string][]net.Addr{}}
	if _, err := Expand("@IF(nonexistent)", fi); err == nil {
		t.Fatalf("expected error for missing interface")
	}
}
