package dnssd

import (
	"context"
	"time"

	"printcore/internal/catalog"
	"printcore/internal/deviceuri"
	"printcore/internal/log"
	"printcore/internal/txtparse"
)

// RegistrationTypes is the fixed set spec.md §4.1 browses, plus their
// local-only counterparts used purely for suppression.
var RegistrationTypes = []string{
	"_ipp._tcp",
	"_ipps._tcp",
	"_ipp-tls._tcp",
	"_fax-ipp._tcp",
	"_pdl-datastream._tcp",
	"_printer._tcp",
	"_riousbprint._tcp",
}

// maxOutstandingQueries is the cap of 50 outstanding TXT queries for the
// announcement pass. This adapter resolves TXT as part of Browse itself
// (zeroconf.Resolver.Browse already performs resolution), so the engine
// never starts separate TXT queries; nothing reads this constant and no
// limit on outstanding or unresolved entries is enforced.
const maxOutstandingQueries = 50

// Reporter is implemented by backendreport to print the "network <uri> ..."
// line of spec.md §6.
type Reporter interface {
	ReportDiscovery(class, uri, makeModel, info, deviceID, location string)
}

// Engine is the DNS-SD DiscoveryEngine of spec.md §4.1.
type Engine struct {
	backend  ResolverBackend
	catalog  *catalog.Catalog
	reporter Reporter
	logger   *log.Logger
	events   chan ServiceEvent
	regTypes []string
}

// NewEngine constructs an Engine. backend is normally ZeroconfBackend{}.
// It browses the fixed RegistrationTypes list; use NewEngineWithRegTypes to
// override that for a specific deployment.
func NewEngine(backend ResolverBackend, reporter Reporter, logger *log.Logger) *Engine {
	return NewEngineWithRegTypes(backend, reporter, logger, nil)
}

// NewEngineWithRegTypes is NewEngine with an explicit registration-type
// list; a nil or empty regTypes falls back to the package-level
// RegistrationTypes, per SPEC_FULL.md §4.7's per-deployment override.
func NewEngineWithRegTypes(backend ResolverBackend, reporter Reporter, logger *log.Logger, regTypes []string) *Engine {
	if len(regTypes) == 0 {
		regTypes = RegistrationTypes
	}
	return &Engine{
		backend:  backend,
		catalog:  catalog.New(),
		reporter: reporter,
		logger:   logger,
		events:   make(chan ServiceEvent, 256),
		regTypes: regTypes,
	}
}

// Start opens browsers for every registration type plus a local-only
// counterpart of each, per spec.md §4.1 Start().
func (e *Engine) Start(ctx context.Context) {
	for _, rt := range e.regTypes {
		rt := rt
		go func() {
			if err := e.backend.Browse(ctx, rt, "local.", false, e.events); err != nil {
				e.logger.Warn("dnssd: browse failed", "type", rt, "err", err)
			}
		}()
		go func() {
			if err := e.backend.Browse(ctx, rt, "local.", true, e.events); err != nil {
				e.logger.Debug("dnssd: local-only browse failed", "type", rt, "err", err)
			}
		}()
	}
}

// Run drives the event loop of spec.md §4.1 Run(cancel): wait up to 500ms
// for resolver input; on timeout, run one announcement pass; otherwise
// process one event and return.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			e.announce()
			return ctx.Err()
		case ev := <-e.events:
			e.handleEvent(ev)
			return nil
		case <-time.After(500 * time.Millisecond):
			e.announce()
			return nil
		}
	}
}

// RunUntilDone repeatedly calls Run until every catalog device is reported
// (with at least one device in the catalog), Run returns an error, or
// idleBudget elapses. Pending events and active browsers are not checked.
func (e *Engine) RunUntilDone(ctx context.Context, idleBudget time.Duration) {
	deadline := time.Now().Add(idleBudget)
	for time.Now().Before(deadline) {
		if err := e.Run(ctx); err != nil {
			return
		}
		if e.allReported() {
			return
		}
	}
}

func (e *Engine) allReported() bool {
	for _, d := range e.catalog.All() {
		if !d.Reported {
			return false
		}
	}
	return len(e.catalog.All()) > 0
}

// handleEvent folds one browse event into the catalog, per spec.md §4.1
// "Duplicate resolution".
func (e *Engine) handleEvent(ev ServiceEvent) {
	d := e.catalog.Upsert(ev.Name, ev.Domain, ev.FullName, ev.RegType, ev.Local)
	if ev.TXT == nil {
		d.MarkQuerying(true)
		return
	}
	res := txtparse.Parse(ev.TXT, catalog.InferType(ev.RegType))
	if res.Make != "" {
		d.MakeModel = res.Make
	}
	if res.Model != "" {
		if d.MakeModel != "" {
			d.MakeModel = d.MakeModel + " " + res.Model
		} else {
			d.MakeModel = res.Model
		}
	}
	if res.DeviceID != "" {
		d.DeviceID = res.DeviceID
	}
	if res.HasPriority {
		d.Priority = res.Priority
	}
	if res.UUID != "" {
		d.UUID = res.UUID
	}
	d.Shared = res.CUPSShared
	if res.SuppressLPD {
		d.Reported = true // suppress: do not announce LPD-shared entries
	}
	d.MarkQuerying(false)
}

// announce implements spec.md §4.1's "Announcement pass". Candidates that
// share name and domain are tie-broken (step 4: lower priority, then lower
// type ordinal) and emitted in that order within a single pass, so the
// winner is always reported before its runner-up, as scenario S2 requires.
// The per-(name,type,domain) single-report invariant (spec.md §8 invariant
// 3) holds because each Device is marked Reported exactly once.
func (e *Engine) announce() {
	groups := make(map[string][]*catalog.Device)
	var order []string
	for _, d := range e.catalog.All() {
		if d.Reported || d.Querying() || d.LocalOnly {
			continue
		}
		key := d.Name + "\x00" + d.Domain
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], d)
	}
	for _, key := range order {
		group := groups[key]
		// insertion-sort by the tie-break predicate: stable, and the
		// group size is small (distinct types sharing one name).
		for i := 1; i < len(group); i++ {
			for j := i; j > 0 && catalog.Better(group[j-1], group[j]); j-- {
				group[j-1], group[j] = group[j], group[j-1]
			}
		}
		for _, d := range group {
			e.reportAndMark(d)
		}
	}
}

func (e *Engine) reportAndMark(d *catalog.Device) {
	if d.Reported {
		return
	}
	d.EnsureUUID()
	d.Reported = true
	uri := deviceuri.DNSSD(d.FullName, d.UUID, d.Shared)
	e.reporter.ReportDiscovery("network", uri, d.MakeModel, "", d.DeviceID, "")
}
