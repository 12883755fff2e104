// Package deviceuri builds and parses the percent-encoded opaque device URI
// form used throughout the backends, per spec.md §3 "Device URI".
package deviceuri

import (
	"fmt"
	"net/url"
	"strings"
)

// DNSSD builds a "dnssd://<quoted-fullname>/[cups]?uuid=..." URI. cupsShared
// selects the "/cups" path form per spec.md §3. The dots separating the full
// name's labels and any existing backslash escapes are kept as they are; a
// space, control or non-ASCII byte is written as "\NNN".
func DNSSD(fullName, uuid string, cupsShared bool) string {
	path := "/"
	if cupsShared {
		path = "/cups"
	}
	q := url.Values{}
	if uuid != "" {
		q.Set("uuid", uuid)
	}
	var name strings.Builder
	for i := 0; i < len(fullName); i++ {
		if b := fullName[i]; b <= ' ' || b >= 0x7f {
			fmt.Fprintf(&name, "\\%03d", b)
		} else {
			name.WriteByte(b)
		}
	}
	u := fmt.Sprintf("dnssd://%s%s", name.String(), path)
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// Build constructs a generic "<scheme>://<authority>[/<path>][?<query>]" URI
// with serial=, uuid=, location= query parameters included only when
// non-empty, per spec.md §3.
func Build(scheme, authority, path, serial, uuid, location string) string {
	u := scheme + "://" + authority
	if path != "" {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		u += path
	}
	q := url.Values{}
	if serial != "" {
		q.Set("serial", serial)
	}
	if uuid != "" {
		q.Set("uuid", uuid)
	}
	if location != "" {
		q.Set("location", location)
	}
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// Parsed holds the decomposed fields of a device URI.
type Parsed struct {
	Scheme    string
	Authority string
	Path      string
	Serial    string
	UUID      string
	Location  string
}

// Parse decomposes a device URI produced by Build or DNSSD.
func Parse(raw string) (Parsed, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || scheme == "" {
		return Parsed{}, fmt.Errorf("deviceuri: no scheme in %q", raw)
	}
	rest, rawQuery, _ := strings.Cut(rest, "?")
	authority, _, _ := strings.Cut(rest, "/")
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Parsed{}, err
	}
	return Parsed{
		Scheme:    scheme,
		Authority: authority,
		Path:      rest[len(authority):],
		Serial:    q.Get("serial"),
		UUID:      q.Get("uuid"),
		Location:  q.Get("location"),
	}, nil
}
