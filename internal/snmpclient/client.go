package snmpclient

import (
	"fmt"
	"time"

	"github.com/gosnmp/gosnmp"
)

// Client is the subset of gosnmp's surface the scanner, side channel, and
// supplies walker depend on. Tests substitute a fake implementing this
// interface instead of opening real sockets.
type Client interface {
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	GetNext(oids []string) (*gosnmp.SnmpPacket, error)
	Walk(rootOid string, walkFn gosnmp.WalkFunc) error
	Close() error
}

// Dial opens an SNMPv1 client to target:161 with the given community and
// read timeout, matching the 1-2 second timeouts spec.md §5 specifies.
func Dial(target, community string, timeout time.Duration) (Client, error) {
	g := &gosnmp.GoSNMP{
		Target:    target,
		Port:      161,
		Community: community,
		Version:   gosnmp.Version1,
		Timeout:   timeout,
		Retries:   1,
	}
	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("snmpclient: connect %s: %w", target, err)
	}
	return g, nil
}

// FormatValue renders an SNMP PDU value per its ASN.1 type the way the
// side-channel SNMP proxy must (spec.md §4.4): integer/counter/gauge/
// timeticks as decimal, octet-string raw, hex-string as uppercase hex pairs,
// oid dotted, null empty.
func FormatValue(pdu gosnmp.SnmpPDU) string {
	switch pdu.Type {
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Counter64, gosnmp.Gauge32, gosnmp.TimeTicks:
		return fmt.Sprintf("%v", pdu.Value)
	case gosnmp.OctetString:
		if b, ok := pdu.Value.([]byte); ok {
			return string(b)
		}
		return fmt.Sprintf("%v", pdu.Value)
	case gosnmp.ObjectIdentifier:
		return fmt.Sprintf("%v", pdu.Value)
	case gosnmp.Null, gosnmp.NoSuchObject, gosnmp.NoSuchInstance:
		return ""
	default:
		if b, ok := pdu.Value.([]byte); ok {
			return hexPairs(b)
		}
		return fmt.Sprintf("%v", pdu.Value)
	}
}

func hexPairs(b []byte) string {
	const hexdigits = "0123456789ABCDEF"
	out := make([]byte, 0, len(b)*2)
	for _, c := range b {
		out = append(out, hexdigits[c>>4], hexdigits[c&0x0f])
	}
	return string(out)
}
