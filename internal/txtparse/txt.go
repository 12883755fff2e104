// Package txtparse decodes DNS-SD TXT records into the make/model/device-ID
// fields used by the discovery catalog, per spec.md §4.1 "TXT parsing".
package txtparse

import (
	"sort"
	"strconv"
	"strings"

	"printcore/internal/catalog"
)

// Result holds the fields synthesized from a TXT record.
type Result struct {
	Make        string
	Model       string
	DeviceID    string // synthesized from usb_* keys and CMD: from pdl
	Priority    int
	HasPriority bool
	CUPSShared  bool
	SuppressLPD bool
	UUID        string
}

// mimeToCmd maps pdl= MIME types to IEEE 1284 CMD: tokens.
var mimeToCmd = map[string]string{
	"application/pdf":         "PDF",
	"application/postscript":  "PS",
	"application/vnd.hp-pcl":  "PCL",
}

// Parse decodes the TXT key/value pairs (already split from the
// length-prefixed wire records by the DNS-SD library) for an entry of the
// given inferred type. A "_printer._tcp" (LPD) entry suppresses announcement
// of a CUPS-shared queue rather than reporting it, per backend/dnssd.c.
func Parse(pairs map[string]string, typ catalog.DeviceType) Result {
	var r Result
	var idFields []string
	var cmdFromPDL string
	isLPD := typ == catalog.TypePrinter

	// Iterate in a stable order so synthesized device-ID field ordering is
	// deterministic across runs, matching spec.md §8's reproducibility law.
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := pairs[k]
		lk := strings.ToLower(k)
		switch {
		case lk == "usb_mfg", lk == "usb_manu", lk == "usb_manufacturer":
			r.Make = v
		case lk == "usb_mdl", lk == "usb_model":
			r.Model = v
		case strings.HasPrefix(lk, "usb_"):
			field := strings.ToUpper(strings.TrimPrefix(lk, "usb_"))
			idFields = append(idFields, field+":"+v+";")
		case lk == "product":
			if !strings.Contains(v, "Ghostscript") {
				r.Model = strings.Trim(stripParens(v), " ")
			}
		case lk == "ty":
			if idx := strings.IndexByte(v, ','); idx >= 0 {
				v = v[:idx]
			}
			r.Model = v
		case lk == "pdl":
			cmdFromPDL = pdlToCmd(v)
		case lk == "priority":
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				r.Priority = n
				r.HasPriority = true
			}
		case lk == "printer-type":
			// backend/dnssd.c only honors printer-type for IPP/IPPS/LPD
			// ("printer") registrations; other types ignore it.
			if typ == catalog.TypeIPP || typ == catalog.TypeIPPS || typ == catalog.TypePrinter {
				r.CUPSShared = true
				if isLPD {
					r.SuppressLPD = true
				}
			}
		case lk == "uuid":
			r.UUID = v
		}
	}

	r.DeviceID = strings.Join(idFields, "")
	if !strings.Contains(r.DeviceID, "CMD:") && cmdFromPDL != "" {
		r.DeviceID += "CMD:" + cmdFromPDL + ";"
	}
	return r
}

func stripParens(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return s[1 : len(s)-1]
	}
	return s
}

// pdlToCmd synthesizes a CMD: value from a comma-separated pdl= MIME list.
func pdlToCmd(pdl string) string {
	var cmds []string
	for _, mime := range strings.Split(pdl, ",") {
		mime = strings.TrimSpace(strings.ToLower(mime))
		if cmd, ok := mimeToCmd[mime]; ok {
			cmds = append(cmds, cmd)
			continue
		}
		if strings.HasPrefix(mime, "image/") {
			sub := strings.TrimPrefix(mime, "image/")
			cmds = append(cmds, strings.ToUpper(sub))
		}
	}
	return strings.Join(cmds, ",")
}
