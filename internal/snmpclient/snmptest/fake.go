// Package snmptest provides a scripted snmpclient.Client for use in other
// packages' tests, so the scanner and supplies walker can be exercised
// without opening real UDP sockets.
package snmptest

import "github.com/gosnmp/gosnmp"

// Fake is a scripted snmpclient.Client.
type Fake struct {
	GetResponses map[string]gosnmp.SnmpPDU
	WalkEntries  map[string][]gosnmp.SnmpPDU
	Closed       bool
}

// NewFake creates an empty Fake ready for its maps to be populated.
func NewFake() *Fake {
	return &Fake{
		GetResponses: make(map[string]gosnmp.SnmpPDU),
		WalkEntries:  make(map[string][]gosnmp.SnmpPDU),
	}
}

func (f *Fake) Get(oids []string) (*gosnmp.SnmpPacket, error) {
	pkt := &gosnmp.SnmpPacket{}
	for _, oid := range oids {
		if pdu, ok := f.GetResponses[oid]; ok {
			pkt.Variables = append(pkt.Variables, pdu)
		} else {
			pkt.Variables = append(pkt.Variables, gosnmp.SnmpPDU{Name: oid, Type: gosnmp.NoSuchObject})
		}
	}
	return pkt, nil
}

func (f *Fake) GetNext(oids []string) (*gosnmp.SnmpPacket, error) { return f.Get(oids) }

func (f *Fake) Walk(root string, fn gosnmp.WalkFunc) error {
	for _, pdu := range f.WalkEntries[root] {
		if err := fn(pdu); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fake) Close() error {
	f.Closed = true
	return nil
}
