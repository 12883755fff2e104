// Package backendreport formats the two line protocols every printcore
// backend speaks to its spooler, per spec.md §6: a discovery line on stdout
// and STATE:/ATTR: event lines on stderr.
package backendreport

import (
	"fmt"
	"io"
	"strings"
)

// Writer emits the backend's external interface lines. Discovery normally
// writes to os.Stdout, Events to os.Stderr; tests substitute buffers.
type Writer struct {
	Discovery io.Writer
	Events    io.Writer
}

// ReportDiscovery writes one "<class> <uri> ..." line, satisfying both the
// DNS-SD and SNMP ReportDiscovery interfaces. Quote delimiters are always
// present even when a field is empty, per spec.md §6.
func (w *Writer) ReportDiscovery(class, uri, makeModel, info, deviceID, location string) {
	fmt.Fprintf(w.Discovery, "%s %s %q %q %q %q\n", class, uri, makeModel, info, deviceID, location)
}

// State emits one "STATE: +keyword" or "STATE: -keyword" line. Multiple
// keywords in one call are space-separated, matching the wire format.
func (w *Writer) State(add bool, keywords ...string) {
	if len(keywords) == 0 {
		return
	}
	sign := "+"
	if !add {
		sign = "-"
	}
	parts := make([]string, len(keywords))
	for i, k := range keywords {
		parts[i] = sign + k
	}
	fmt.Fprintf(w.Events, "STATE: %s\n", strings.Join(parts, " "))
}

// AttrMarkerLevels emits "ATTR: marker-levels=<csv>".
func (w *Writer) AttrMarkerLevels(levels []int) {
	w.attrCSVInts("marker-levels", levels)
}

// AttrMarkerColors emits "ATTR: marker-colors=<csv>".
func (w *Writer) AttrMarkerColors(colors []string) {
	w.attrCSV("marker-colors", colors)
}

// AttrMarkerTypes emits "ATTR: marker-types=<csv>".
func (w *Writer) AttrMarkerTypes(types []string) {
	w.attrCSV("marker-types", types)
}

// AttrMarkerNames emits "ATTR: marker-names=..." using the quoting
// snmp-supplies.c's marker-names loop produces: each name becomes its own
// '"..."' token (single quote, double quote, name, double quote, single
// quote) with any backslash, double-quote, or single-quote inside the name
// preceded by three literal backslashes, and the tokens are comma-joined
// with no further outer wrapping.
func (w *Writer) AttrMarkerNames(names []string) {
	tokens := make([]string, len(names))
	for i, n := range names {
		tokens[i] = `'"` + escapeMarkerName(n) + `"'`
	}
	fmt.Fprintf(w.Events, "ATTR: marker-names=%s\n", strings.Join(tokens, ","))
}

func escapeMarkerName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '"', '\'':
			b.WriteString(`\\\`)
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (w *Writer) attrCSV(name string, values []string) {
	fmt.Fprintf(w.Events, "ATTR: %s=%s\n", name, strings.Join(values, ","))
}

func (w *Writer) attrCSVInts(name string, values []int) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	fmt.Fprintf(w.Events, "ATTR: %s=%s\n", name, strings.Join(parts, ","))
}

// Info emits an "INFO: <message>" diagnostic line, used for the
// connected/disconnected narration spec.md scenario S5 expects alongside
// the STATE transitions.
func (w *Writer) Info(msg string) {
	fmt.Fprintf(w.Events, "INFO: %s\n", msg)
}

// Debug emits a "DEBUG: <message>" line.
func (w *Writer) Debug(msg string) {
	fmt.Fprintf(w.Events, "DEBUG: %s\n", msg)
}

// Error emits an "ERROR: <message>" line, the last thing written before a
// backend exits on an unrecoverable transport error (spec.md §7).
func (w *Writer) Error(msg string) {
	fmt.Fprintf(w.Events, "ERROR: %s\n", msg)
}
