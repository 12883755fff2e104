package supplies

import (
	"github.com/gosnmp/gosnmp"

	"printcore/internal/snmpclient"
)

// hrPrinterDetectedErrorState bit positions, RFC 3805's
// HrPrinterDetectedErrorState TEXTUAL-CONVENTION, MSB-first within the
// 16-bit big-endian octet string.
const (
	bitLowPaper            uint16 = 1 << 15
	bitNoPaper             uint16 = 1 << 14
	bitLowToner            uint16 = 1 << 13
	bitNoToner             uint16 = 1 << 12
	bitDoorOpen            uint16 = 1 << 11
	bitJammed              uint16 = 1 << 10
	bitOffline             uint16 = 1 << 9
	bitServiceRequested    uint16 = 1 << 8
	bitInputTrayMissing    uint16 = 1 << 7
	bitOutputTrayMissing   uint16 = 1 << 6
	bitMarkerSupplyMissing uint16 = 1 << 5
	bitOutputNearFull      uint16 = 1 << 4
	bitOutputFull          uint16 = 1 << 3
	bitInputTrayEmpty      uint16 = 1 << 2
)

// ExtraStatus carries the optional hrPrinterStatus/prtMarkerLifeCount
// values spec.md §4.5 step 6 lets a caller request alongside a poll.
type ExtraStatus struct {
	PrinterStatus   int
	MarkerLifeCount int
}

// Poll runs one supplies-walker cycle, per spec.md §4.5 steps 1-5. When
// addrChanged is false and the walker already has a supply list, it first
// re-walks the supply levels only. When addrChanged is true it walks
// nothing and reports the supply list the last SwitchAddress loaded; Poll
// never re-discovers the supply table itself. Events are emitted in the
// fixed order spec.md §5
// guarantees: ATTR: marker-levels, then supply-state deltas, then
// printer-state deltas.
func (w *Walker) Poll(addrChanged bool) error {
	if !w.cfg.Gating.SuppliesEnabled {
		return nil
	}
	if !addrChanged && w.initialized && len(w.supplies) > 0 {
		if err := w.refreshLevels(); err != nil {
			return err
		}
	}

	levels := make([]int, len(w.supplies))
	colors := make([]string, len(w.supplies))
	types := make([]string, len(w.supplies))
	names := make([]string, len(w.supplies))
	for i, s := range w.supplies {
		levels[i] = w.percent(s)
		colors[i] = s.Color
		types[i] = typeName(s.Type)
		names[i] = s.Description
	}

	w.cfg.Reporter.AttrMarkerLevels(levels)
	w.cfg.Reporter.AttrMarkerColors(colors)
	w.cfg.Reporter.AttrMarkerNames(names)
	w.cfg.Reporter.AttrMarkerTypes(types)

	w.diffSupplyState(levels)
	return w.diffPrinterState()
}

// PollExtra fetches the printer status and marker life count spec.md
// §4.5 step 6 describes as caller-optional; a failed GET leaves the
// corresponding field zero rather than aborting the poll.
func (w *Walker) PollExtra() ExtraStatus {
	var out ExtraStatus
	if pdu, err := w.get(snmpclient.HrPrinterStatus); err == nil {
		out.PrinterStatus = intValue(pdu)
	}
	if pdu, err := w.get(snmpclient.PrtMarkerLifeCount); err == nil {
		out.MarkerLifeCount = intValue(pdu)
	}
	return out
}

func (w *Walker) refreshLevels() error {
	return w.snmp().Walk(snmpclient.PrtMarkerSuppliesLevel, func(pdu gosnmp.SnmpPDU) error {
		_, idx, ok := matchColumn(trimLeadingDot(pdu.Name), snmpclient.PrtMarkerSuppliesLevel)
		if !ok || idx < 1 || idx > len(w.supplies) {
			return nil
		}
		w.supplies[idx-1].Level = intValue(pdu)
		return nil
	})
}

// percent computes a supply's fill percentage per spec.md §4.5 step 2:
// level/max scaled to 100 when a max is known; the capacity-quirk
// passthrough when max is zero and the quirk is set; 50 otherwise.
// Receptacles (class 4) report fullness, so their percentage is inverted.
func (w *Walker) percent(s Supply) int {
	var pct int
	switch {
	case s.MaxCapacity > 0:
		pct = 100 * s.Level / s.MaxCapacity
	case w.cfg.Gating.CapacityQuirk && s.Level >= 0 && s.Level <= 100:
		pct = s.Level
	default:
		pct = 50
	}
	if s.Class == ClassReceptacleThatIsFilled {
		pct = 100 - pct
	}
	return pct
}

// diffSupplyState implements step 3: bucket each supply by type category,
// flag low (<=5, >1) or empty (<=1), and emit the delta against the
// previous poll's state set. Waste and unrecognized types are never
// reported.
func (w *Walker) diffSupplyState(levels []int) {
	next := map[string]bool{}
	for i, s := range w.supplies {
		low, empty := lowEmptyKeywords(categorize(s.Type))
		if low == "" {
			continue
		}
		switch pct := levels[i]; {
		case pct <= 1:
			next[empty] = true
		case pct <= 5:
			next[low] = true
		}
	}
	w.emitStateDiff(&w.supplyState, next)
}

// diffPrinterState implements step 5: GET the detected-error-state octet
// string, translate it to the fixed printer-state-reasons table, and emit
// the delta. A failed GET leaves the previous state untouched rather than
// clearing it, so a transient SNMP hiccup doesn't spuriously clear a live
// condition.
func (w *Walker) diffPrinterState() error {
	pdu, err := w.get(snmpclient.HrPrinterDetectedErrorState)
	if err != nil {
		return nil
	}
	bits := errorStateBits(rawBytes(pdu))
	w.emitStateDiff(&w.printerState, printerStateKeywords(bits))
	return nil
}

func errorStateBits(raw []byte) uint16 {
	if len(raw) < 2 {
		return 0
	}
	return uint16(raw[0])<<8 | uint16(raw[1])
}

func printerStateKeywords(bits uint16) map[string]bool {
	out := map[string]bool{}
	if bits&(bitNoPaper|bitInputTrayEmpty) != 0 {
		out["media-empty-warning"] = true
	}
	if bits&bitDoorOpen != 0 {
		out["door-open-report"] = true
	}
	if bits&bitJammed != 0 {
		out["media-jam-warning"] = true
	}
	if bits&bitInputTrayMissing != 0 {
		out["input-tray-missing-warning"] = true
	}
	if bits&bitOutputTrayMissing != 0 {
		out["output-tray-missing-warning"] = true
	}
	if bits&bitMarkerSupplyMissing != 0 {
		out["marker-supply-missing-warning"] = true
	}
	if bits&bitOutputNearFull != 0 {
		out["output-area-almost-full-report"] = true
	}
	if bits&bitOutputFull != 0 {
		out["output-area-full-warning"] = true
	}
	return out
}

// emitStateDiff reports +keyword for anything newly present in next and
// -keyword for anything that dropped out of *prev, then replaces *prev.
// Used for both the supply-state and printer-state keyword sets, which is
// why it's keyed by an arbitrary string set rather than a fixed-width
// bitmask: unlike the source's C integer, an unbounded number of supplies
// means the set of possible keywords isn't bounded to fit one machine word.
func (w *Walker) emitStateDiff(prev *map[string]bool, next map[string]bool) {
	if *prev == nil {
		*prev = map[string]bool{}
	}
	for kw := range next {
		if !(*prev)[kw] {
			w.cfg.Reporter.State(true, kw)
		}
	}
	for kw := range *prev {
		if !next[kw] {
			w.cfg.Reporter.State(false, kw)
		}
	}
	*prev = next
}

func trimLeadingDot(oid string) string {
	if len(oid) > 0 && oid[0] == '.' {
		return oid[1:]
	}
	return oid
}
