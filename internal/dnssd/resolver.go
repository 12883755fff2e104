// Package dnssd implements the DNS-SD DiscoveryEngine of spec.md §4.1.
//
// Design note (spec.md §9): the resolver library's asynchronous callbacks
// are abstracted behind a small ResolverBackend capability so the engine
// itself never depends on a specific mDNS stack; only resolver_zeroconf.go
// knows about grandcat/zeroconf. A second backend (e.g. Avahi) could be
// added by implementing ResolverBackend without touching engine.go.
package dnssd

import "context"

// ServiceEvent is one "service added" notification from a browser, already
// decomposed into the fields the catalog needs.
type ServiceEvent struct {
	Name     string // unquoted instance name
	Domain   string
	FullName string // raw, still-quoted full name, for Report's URI
	RegType  string
	TXT      map[string]string
	Local    bool // delivered by a local-interface-restricted browser
}

// ResolverBackend is the capability boundary spec.md §9 calls for: a
// resolver library adapter that can browse a registration type and resolve
// TXT records for a matched instance.
type ResolverBackend interface {
	// Browse starts browsing regType in domain (""  means the backend's
	// default, typically "local."), delivering one ServiceEvent per
	// discovered instance on events until ctx is canceled. local reports
	// whether this browser should mark entries LocalOnly (used for the
	// two local-interface-restricted browsers spec.md §4.1 describes).
	Browse(ctx context.Context, regType, domain string, local bool, events chan<- ServiceEvent) error

	// NameJoin builds a fully-qualified service name from instance/regType/domain,
	// in the resolver library's own escaping convention.
	NameJoin(instance, regType, domain string) string

	// Unquote decodes the library's full-name escaping back to a raw name.
	Unquote(fullName string) string
}
