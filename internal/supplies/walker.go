// Package supplies implements the SNMP supplies walker, spec.md §4.5: it
// polls a printer's Printer-MIB marker-supplies and host-resources error
// state over the shared SNMP client and emits the ATTR:/STATE: lines
// internal/backendreport formats. The four globals the source kept for
// this job (current_addr, current_state, supply_state, charset) are
// bundled here into a Walker the caller owns, per spec.md §9.
package supplies

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosnmp/gosnmp"

	"printcore/internal/backendreport"
	"printcore/internal/snmpclient"
	"printcore/internal/supplies/charset"
)

// Supply is one row of the marker-supplies table.
type Supply struct {
	Class         int
	Type          int
	Description   string
	Level         int
	MaxCapacity   int
	Unit          int
	ColorantIndex int
	Color         string
}

// Config wires a Walker to its SNMP client, cache directory, and PPD
// gating flags. SNMP is an interface so tests substitute a fake.
type Config struct {
	SNMP     snmpclient.Client
	Reporter *backendreport.Writer
	CacheDir string
	Gating   Gating
}

// Walker is the per-device state spec.md §9 calls a "walker-context
// structure": the resolved character set, the cached descriptor, and the
// previously-emitted supply/printer state, so repeated polls of the same
// address emit only the deltas.
type Walker struct {
	cfg Config

	addr        string
	description string
	charsetSet  charset.Set
	supplies    []Supply
	initialized bool

	supplyState  map[string]bool
	printerState map[string]bool
}

// New constructs a Walker. Callers that skip ParsePPDGating should set
// cfg.Gating.SuppliesEnabled true themselves, matching spec.md's
// "default-true absence permitted" rule for *cupsSNMPSupplies.
func New(cfg Config) *Walker {
	return &Walker{cfg: cfg}
}

func (w *Walker) snmp() snmpclient.Client { return w.cfg.SNMP }

// SwitchAddress performs spec.md §4.5's initialization sequence: read the
// device description, resolve the character set, try the on-disk cache,
// and fall back to a full marker-supplies walk. A missing device
// description declares zero supplies rather than failing.
func (w *Walker) SwitchAddress(addr string) error {
	w.addr = addr
	w.supplyState = nil
	w.printerState = nil

	descPDU, err := w.get(snmpclient.HrDeviceDescr)
	if err != nil {
		w.supplies = nil
		w.description = ""
		w.initialized = true
		return nil
	}
	description := string(rawBytes(descPDU))
	w.charsetSet = w.resolveCharset()
	w.description = description

	if cached, ok := w.loadCache(addr); ok && cached.Description == description {
		w.supplies = cached.Supplies
		w.initialized = true
		return nil
	}

	if err := w.walkMarkerSupplies(); err != nil {
		return err
	}
	w.saveCache(addr, cachedDescriptor{
		Version:     descriptorVersion,
		Charset:     int(w.charsetSet),
		Description: description,
		Supplies:    w.supplies,
	})
	w.initialized = true
	return nil
}

func (w *Walker) resolveCharset() charset.Set {
	locPDU, err := w.get(snmpclient.PrtGeneralCurrentLocalization)
	if err != nil {
		return charset.Unknown
	}
	loc := intValue(locPDU)
	nameOID := fmt.Sprintf("%s.%d", snmpclient.PrtLocalizationCharacterSetPfx, loc)
	namePDU, err := w.get(nameOID)
	if err != nil {
		return charset.Unknown
	}
	return charset.Resolve(string(rawBytes(namePDU)))
}

func (w *Walker) get(oid string) (gosnmp.SnmpPDU, error) {
	pkt, err := w.snmp().Get([]string{oid})
	if err != nil {
		return gosnmp.SnmpPDU{}, err
	}
	if len(pkt.Variables) == 0 {
		return gosnmp.SnmpPDU{}, fmt.Errorf("supplies: empty response for %s", oid)
	}
	return pkt.Variables[0], nil
}

// suppliesColumns lists the marker-supplies table columns the full walk
// collects, in no particular order — splitColumnIndex matches whichever
// prefix fits.
var suppliesColumns = []string{
	snmpclient.PrtMarkerSuppliesClass,
	snmpclient.PrtMarkerSuppliesType,
	snmpclient.PrtMarkerSuppliesDesc,
	snmpclient.PrtMarkerSuppliesUnit,
	snmpclient.PrtMarkerSuppliesMaxCap,
	snmpclient.PrtMarkerSuppliesLevel,
	snmpclient.PrtMarkerSuppliesColorID,
}

func splitColumnIndex(oid string) (col string, idx int, ok bool) {
	oid = strings.TrimPrefix(oid, ".")
	for _, c := range suppliesColumns {
		if col, idx, ok := matchColumn(oid, c); ok {
			return col, idx, ok
		}
	}
	return "", 0, false
}

func matchColumn(oid, column string) (string, int, bool) {
	prefix := column + ".1."
	if !strings.HasPrefix(oid, prefix) {
		return "", 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(oid, prefix))
	if err != nil {
		return "", 0, false
	}
	return column, n, true
}

// walkMarkerSupplies performs the full prtMarkerSuppliesEntry walk of
// spec.md §4.5 step 4 and the colorant-name walk that follows it.
func (w *Walker) walkMarkerSupplies() error {
	rows := map[int]*Supply{}
	maxIndex := 0

	err := w.snmp().Walk(snmpclient.PrtMarkerSuppliesEntry, func(pdu gosnmp.SnmpPDU) error {
		col, idx, ok := splitColumnIndex(pdu.Name)
		if !ok {
			return nil
		}
		row := rows[idx]
		if row == nil {
			row = &Supply{}
			rows[idx] = row
		}
		if idx > maxIndex {
			maxIndex = idx
		}
		switch col {
		case snmpclient.PrtMarkerSuppliesClass:
			row.Class = intValue(pdu)
		case snmpclient.PrtMarkerSuppliesType:
			row.Type = intValue(pdu)
		case snmpclient.PrtMarkerSuppliesDesc:
			row.Description = charset.Decode(w.charsetSet, rawBytes(pdu))
		case snmpclient.PrtMarkerSuppliesUnit:
			row.Unit = intValue(pdu)
		case snmpclient.PrtMarkerSuppliesMaxCap:
			row.MaxCapacity = intValue(pdu)
		case snmpclient.PrtMarkerSuppliesLevel:
			row.Level = intValue(pdu)
		case snmpclient.PrtMarkerSuppliesColorID:
			row.ColorantIndex = intValue(pdu)
		}
		return nil
	})
	if err != nil {
		return err
	}

	supplies := make([]Supply, 0, maxIndex)
	for i := 1; i <= maxIndex; i++ {
		if r, ok := rows[i]; ok {
			supplies = append(supplies, *r)
		}
	}
	w.supplies = supplies

	return w.walkColorants()
}

func (w *Walker) walkColorants() error {
	colors := map[int]string{}
	err := w.snmp().Walk(snmpclient.PrtMarkerColorantValue, func(pdu gosnmp.SnmpPDU) error {
		_, idx, ok := matchColumn(trimLeadingDot(pdu.Name), snmpclient.PrtMarkerColorantValue)
		if !ok {
			return nil
		}
		colors[idx] = string(rawBytes(pdu))
		return nil
	})
	if err != nil {
		return err
	}
	for i := range w.supplies {
		s := &w.supplies[i]
		if name, ok := colors[s.ColorantIndex]; ok {
			s.Color = resolveColor(name)
		} else {
			s.Color = "none"
		}
	}
	return nil
}

func intValue(pdu gosnmp.SnmpPDU) int {
	switch v := pdu.Value.(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	default:
		return 0
	}
}

func rawBytes(pdu gosnmp.SnmpPDU) []byte {
	if b, ok := pdu.Value.([]byte); ok {
		return b
	}
	return []byte(fmt.Sprintf("%v", pdu.Value))
}

func typeName(t int) string {
	switch t {
	case TypeToner, TypeTonerCartridge:
		return "toner"
	case TypeWasteToner:
		return "wasteToner"
	case TypeInk, TypeInkCartridge:
		return "ink"
	case TypeInkRibbon:
		return "ribbon"
	case TypeWasteInk:
		return "wasteInk"
	case TypeOpc:
		return "opc"
	case TypeDeveloper:
		return "developer"
	case TypeSolidWax, TypeRibbonWax:
		return "wax"
	case TypeWasteWax:
		return "wasteWax"
	case TypeFuser:
		return "fuser"
	case TypeCoronaWire:
		return "corona"
	case TypeFuserCleaningPad:
		return "fuserPad"
	case TypeCleanerUnit:
		return "cleanerUnit"
	case TypeTransferUnit:
		return "transferUnit"
	case TypeWastePaper:
		return "wastePaper"
	default:
		return "unknown"
	}
}
