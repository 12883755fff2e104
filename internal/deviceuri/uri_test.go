package deviceuri

import "testing"

func TestDNSSDCupsSharedUsesCupsPath(t *testing.T) {
	u := DNSSD("Office Printer._ipp._tcp.local.", "abc-123", true)
	want := `dnssd://Office\032Printer._ipp._tcp.local./cups?uuid=abc-123`
	if u != want {
		t.Fatalf("got %q want %q", u, want)
	}
}

func TestDNSSDNonSharedUsesRootPath(t *testing.T) {
	u := DNSSD("Office Printer._ipp._tcp.local.", "", false)
	want := `dnssd://Office\032Printer._ipp._tcp.local./`
	if u != want {
		t.Fatalf("got %q want %q", u, want)
	}
}

func TestBuildAndParseRoundTrip(t *testing.T) {
	u := Build("socket", "192.168.1.5:9100", "", "SN1", "uuid-1", "Lobby")
	p, err := Parse(u)
	if err != nil {
		t.Fatal(err)
	}
	if p.Scheme != "socket" || p.Authority != "192.168.1.5:9100" || p.Serial != "SN1" || p.UUID != "uuid-1" || p.Location != "Lobby" {
		t.Fatalf("got %+v", p)
	}
}
