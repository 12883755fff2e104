// Package catalog holds the DNS-SD discovery catalog: a deduplicated,
// prioritized set of device records built up from asynchronous browse
// events, per spec.md §3 and §4.1.
//
// Open question resolution (spec.md §9): when a browse event arrives for a
// name that already has an entry under a *different* type, this catalog
// creates a second, independent entry rather than merging them. Selection
// between same-named entries of different types happens at announcement
// time via the tie-break predicate Better.
package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// DeviceType is the inferred kind of a discovered service, ordered so that
// ordinal comparison implements the tie-break rule in spec.md §4.1.
type DeviceType int

const (
	TypeLPD DeviceType = iota
	TypeIPP
	TypeIPPS
	TypeIPPFax
	TypePDLDatastream
	TypePrinter
	TypeRIOUSBPrint // residual "other"
)

// RegistrationTypes maps a DNS-SD service type string to its inferred
// DeviceType. Unknown types fall back to TypeRIOUSBPrint.
var RegistrationTypes = map[string]DeviceType{
	"_ipp._tcp":           TypeIPP,
	"_ipps._tcp":          TypeIPPS,
	"_ipp-tls._tcp":       TypeIPPS,
	"_fax-ipp._tcp":       TypeIPPFax,
	"_pdl-datastream._tcp": TypePDLDatastream,
	"_printer._tcp":       TypePrinter,
	"_riousbprint._tcp":   TypeRIOUSBPrint,
}

// InferType returns the DeviceType for a registration type string.
func InferType(regType string) DeviceType {
	if t, ok := RegistrationTypes[strings.ToLower(regType)]; ok {
		return t
	}
	return TypeRIOUSBPrint
}

// key uniquely identifies a catalog entry: case-insensitive name + type.
type key struct {
	name string
	typ  DeviceType
}

func newKey(name string, typ DeviceType) key {
	return key{name: strings.ToLower(name), typ: typ}
}

// Device is one entry in the discovery catalog.
type Device struct {
	Name       string // as first seen, case preserved for display
	Domain     string
	FullName   string
	Type       DeviceType
	RegType    string
	MakeModel  string
	DeviceID   string
	UUID       string
	Priority   int
	Shared     bool // CUPS-shared flag, from TXT printer-type
	Reported   bool
	LocalOnly  bool // seen by the local-suppression browser (sticky once set)
	querying   bool // a TXT query is outstanding for this entry
}

// DefaultPriority is used when a device record is created and no TXT
// priority= key has been seen yet.
const DefaultPriority = 50

// Querying reports whether a TXT query is in flight for this device.
func (d *Device) Querying() bool { return d.querying }

// Catalog is the process-lifetime set of discovered devices.
type Catalog struct {
	entries map[key]*Device
	order   []key // insertion order, for deterministic iteration
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{entries: make(map[key]*Device)}
}

// Upsert implements the browse-event handling in spec.md §4.1 "Duplicate
// resolution": create on first sighting, upgrade domain from "local." to a
// wider domain on a later non-local report of the same (name, type), and
// otherwise leave distinct types as distinct entries.
func (c *Catalog) Upsert(name, domain, fullName, regType string, local bool) *Device {
	typ := InferType(regType)
	k := newKey(name, typ)
	if d, ok := c.entries[k]; ok {
		if d.Domain == "local." && domain != "local." {
			d.Domain = domain
			d.FullName = fullName
		}
		if local {
			d.LocalOnly = true
		}
		return d
	}
	d := &Device{
		Name:      name,
		Domain:    domain,
		FullName:  fullName,
		Type:      typ,
		RegType:   regType,
		Priority:  DefaultPriority,
		LocalOnly: local,
	}
	c.entries[k] = d
	c.order = append(c.order, k)
	return d
}

// MarkQuerying flags a device as having an outstanding TXT query, enforcing
// the "at most 50 outstanding" cap is the caller's responsibility (the
// announcement pass in internal/dnssd counts outstanding queries itself).
func (d *Device) MarkQuerying(q bool) { d.querying = q }

// EnsureUUID assigns a random UUID to devices whose TXT record carried none,
// so every reported device has a stable identity (enrichment over spec.md,
// which leaves UUID empty when absent from TXT).
func (d *Device) EnsureUUID() {
	if d.UUID == "" {
		d.UUID = uuid.NewString()
	}
}

// Unreported returns catalog entries not yet reported, in insertion order.
func (c *Catalog) Unreported() []*Device {
	var out []*Device
	for _, k := range c.order {
		d := c.entries[k]
		if !d.Reported {
			out = append(out, d)
		}
	}
	return out
}

// All returns every catalog entry in insertion order.
func (c *Catalog) All() []*Device {
	out := make([]*Device, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.entries[k])
	}
	return out
}

// Better implements the tie-break of spec.md §4.1 step 4: when two resolved
// candidates share both name and domain, the lower priority number wins;
// equal priorities are broken by the lower type ordinal. Step 3 (same name,
// different domain: first seen wins) is a pure arrival-order rule and is
// handled by the announcement pass's iteration order, not by this predicate
// — it only applies once both candidates are known to share a domain.
func Better(current, candidate *Device) bool {
	if current == nil {
		return true
	}
	if candidate.Priority != current.Priority {
		return candidate.Priority < current.Priority
	}
	return candidate.Type < current.Type
}
