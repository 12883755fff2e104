package snmpscan

import (
	"context"
	"fmt"
	"time"

	"github.com/gosnmp/gosnmp"

	"printcore/internal/addrlist"
	"printcore/internal/log"
	"printcore/internal/snmpclient"
)

// Reporter receives one device-URI report per discovered printer, mirroring
// the "network <uri> ..." stdout line of spec.md §6. The scanner itself only
// decides what to report; formatting is backendreport's job.
type Reporter interface {
	ReportSNMP(class, uri, makeModel, info, deviceID, location string)
}

// Scanner runs the SNMP DiscoveryEngine described in spec.md §4.2.
type Scanner struct {
	cfg      Config
	cache    *Cache
	reporter Reporter
	logger   *log.Logger
	dial     func(addr, community string, timeout time.Duration) (snmpclient.Client, error)
}

// NewScanner builds a Scanner. dial is overridable for tests; production
// callers pass snmpclient.Dial.
func NewScanner(cfg Config, reporter Reporter, logger *log.Logger, dial func(string, string, time.Duration) (snmpclient.Client, error)) *Scanner {
	return &Scanner{cfg: cfg, cache: NewCache(), reporter: reporter, logger: logger, dial: dial}
}

// followUpOIDs is the set of GETs issued once a device's first DEVICE_TYPE
// reply is seen, tagged with the symbolic request-id that routes the
// eventual reply into the cache (spec.md §4.2 step 3).
var followUpOIDs = []struct {
	oid string
	tag int
}{
	{snmpclient.HrDeviceDescr, snmpclient.DeviceDescription},
	{snmpclient.PpmPrinterIEEE1284DeviceID, snmpclient.DeviceID},
	{snmpclient.PpmPortServiceNameOrURI, snmpclient.DeviceURI},
	{snmpclient.SysLocation, snmpclient.DeviceLocation},
	{snmpclient.LexmarkProductOID, snmpclient.DeviceProduct},
	{snmpclient.XeroxProductOID, snmpclient.DeviceProduct},
}

// Run executes the scan loop of spec.md §4.2 step 3 against the expanded
// address list, honoring MaxRunTime. It blocks until the budget elapses or
// every discovered device has been reported.
func (s *Scanner) Run(ctx context.Context) error {
	targets, err := addrlist.ExpandAll(s.cfg.Addresses, addrlist.System)
	if err != nil {
		return fmt.Errorf("snmpscan: expanding addresses: %w", err)
	}

	deadline := time.Now().Add(time.Duration(s.cfg.MaxRunTimeSecs) * time.Second)
	clients := make(map[string]map[string]snmpclient.Client) // addr -> community -> client

	for _, addr := range targets {
		for _, community := range s.cfg.Communities {
			client, err := s.dial(addr, community, 2*time.Second)
			if err != nil {
				s.logger.Debug("snmpscan: dial failed", "addr", addr, "err", err)
				continue
			}
			if clients[addr] == nil {
				clients[addr] = make(map[string]snmpclient.Client)
			}
			clients[addr][community] = client
		}
	}
	defer func() {
		for _, byCommunity := range clients {
			for _, c := range byCommunity {
				_ = c.Close()
			}
		}
	}()

	for time.Now().Before(deadline) {
		progressed := false
		for addr, byCommunity := range clients {
			for _, client := range byCommunity {
				if s.pollOnce(addr, client) {
					progressed = true
				}
			}
		}
		s.reportReady(ctx)
		if !progressed && s.allReported() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil
}

// pollOnce issues one round of synchronous GETs against client and folds any
// replies into the cache. gosnmp's Get is synchronous, so "polling" here
// means re-checking an address we have not yet fully resolved, which plays
// the same role as correlating asynchronous UDP replies in the original
// select-based design.
func (s *Scanner) pollOnce(addr string, client snmpclient.Client) bool {
	entry, seen := s.cache.Lookup(addr)
	if seen && entry.Reported {
		return false
	}
	progressed := false

	if !seen || !entry.sawDeviceType {
		pkt, err := client.Get([]string{snmpclient.HrDeviceType})
		if err != nil || len(pkt.Variables) == 0 || isEmpty(pkt.Variables[0]) {
			return false
		}
		entry = s.cache.GetOrCreate(addr)
		entry.sawDeviceType = true
		progressed = true
	}

	oids := make([]string, len(followUpOIDs))
	for i, f := range followUpOIDs {
		oids[i] = f.oid
	}
	pkt, err := client.Get(oids)
	if err != nil {
		return progressed
	}
	for i, v := range pkt.Variables {
		if i >= len(followUpOIDs) || isEmpty(v) {
			continue
		}
		switch followUpOIDs[i].tag {
		case snmpclient.DeviceDescription:
			raw := snmpclient.FormatValue(v)
			entry.Info = RepairMakeModel(raw)
			entry.MakeAndModel = entry.Info
			progressed = true
		case snmpclient.DeviceID:
			entry.DeviceID = snmpclient.FormatValue(v)
			progressed = true
		case snmpclient.DeviceURI:
			entry.URI = snmpclient.FormatValue(v)
			progressed = true
		case snmpclient.DeviceLocation:
			entry.Location = snmpclient.FormatValue(v)
			progressed = true
		case snmpclient.DeviceProduct:
			// Vendor-private product strings only apply before a
			// standard device-id has been seen, matching snmp.c's
			// "device && !device->id" guard on DEVICE_PRODUCT.
			if entry.DeviceID == "" {
				raw := snmpclient.FormatValue(v)
				if entry.Info == "" {
					entry.Info = raw
				}
				entry.MakeAndModel = raw
				progressed = true
			}
		}
	}
	return progressed
}

func isEmpty(pdu gosnmp.SnmpPDU) bool {
	return pdu.Type == gosnmp.NoSuchObject || pdu.Type == gosnmp.NoSuchInstance || pdu.Type == gosnmp.Null
}

// reportReady walks the cache emitting reports for devices that are Ready,
// per spec.md §4.2 step 3's timeout branch, and invoking Probe for those
// without a URI.
func (s *Scanner) reportReady(ctx context.Context) {
	for _, e := range s.cache.All() {
		if e.Reported || !e.Ready() {
			continue
		}
		if e.URI == "" {
			if uris, ok := MatchDeviceURI(s.cfg.DeviceURIRules, e.MakeAndModel, e.Address); ok {
				for _, u := range uris {
					s.reporter.ReportSNMP("network", u, e.MakeAndModel, e.Info, e.DeviceID, e.Location)
				}
				e.Reported = true
				continue
			}
			result := Probe(ctx, e.Address, true)
			if result.Suppress {
				e.Reported = true
				continue
			}
			if len(result.URIs) == 0 {
				continue
			}
			for _, u := range result.URIs {
				s.reporter.ReportSNMP("network", u, e.MakeAndModel, e.Info, e.DeviceID, e.Location)
			}
			e.Reported = true
			continue
		}
		s.reporter.ReportSNMP("network", e.URI, e.MakeAndModel, e.Info, e.DeviceID, e.Location)
		e.Reported = true
	}
}

func (s *Scanner) allReported() bool {
	for _, e := range s.cache.All() {
		if !e.Reported {
			return false
		}
	}
	return len(s.cache.All()) > 0
}
