package backendreport

import (
	"bytes"
	"strings"
	"testing"
)

func newTestWriter() (*Writer, *bytes.Buffer, *bytes.Buffer) {
	var disc, events bytes.Buffer
	return &Writer{Discovery: &disc, Events: &events}, &disc, &events
}

func TestReportDiscoveryQuotesEmptyFields(t *testing.T) {
	w, disc, _ := newTestWriter()
	w.ReportDiscovery("network", "dnssd://Printer._ipp._tcp.local./", "HP LaserJet", "", "", "")
	got := disc.String()
	if got != `network dnssd://Printer._ipp._tcp.local./ "HP LaserJet" "" "" ""`+"\n" {
		t.Fatalf("unexpected discovery line: %q", got)
	}
}

func TestStateAddAndRemove(t *testing.T) {
	w, _, events := newTestWriter()
	w.State(true, "media-empty-warning")
	w.State(false, "media-empty-warning")
	want := "STATE: +media-empty-warning\nSTATE: -media-empty-warning\n"
	if events.String() != want {
		t.Fatalf("got %q want %q", events.String(), want)
	}
}

func TestStateMultipleKeywords(t *testing.T) {
	w, _, events := newTestWriter()
	w.State(true, "toner-low-report", "media-empty-warning")
	if !strings.Contains(events.String(), "STATE: +toner-low-report +media-empty-warning") {
		t.Fatalf("got %q", events.String())
	}
}

func TestAttrMarkerLevelsCSV(t *testing.T) {
	w, _, events := newTestWriter()
	w.AttrMarkerLevels([]int{3, 100, 50})
	if events.String() != "ATTR: marker-levels=3,100,50\n" {
		t.Fatalf("got %q", events.String())
	}
}

func TestAttrMarkerNamesEscaping(t *testing.T) {
	w, _, events := newTestWriter()
	w.AttrMarkerNames([]string{`Black Toner`, `Cyan "High Yield"`})
	want := `ATTR: marker-names='"Black Toner"','"Cyan \\\"High Yield\\\""'` + "\n"
	if events.String() != want {
		t.Fatalf("got %q want %q", events.String(), want)
	}
}

func TestAllCSVArraysEqualCardinality(t *testing.T) {
	// invariant 2 (spec.md §8): levels/colors/names/types share cardinality
	// within one poll — exercised here as a formatting sanity check rather
	// than a walker test.
	w, _, events := newTestWriter()
	w.AttrMarkerLevels([]int{3, 100})
	w.AttrMarkerColors([]string{"#000000", "#00FFFF"})
	w.AttrMarkerTypes([]string{"toner", "ink"})
	lines := strings.Split(strings.TrimRight(events.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 ATTR lines, got %d", len(lines))
	}
	for _, l := range lines {
		if strings.Count(l, ",") != 1 {
			t.Fatalf("expected 2 entries (1 comma) in line %q", l)
		}
	}
}
