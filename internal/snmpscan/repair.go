package snmpscan

import "strings"

// RepairMakeModel applies the textual cleanups of spec.md §4.2
// "make-and-model repair" to a raw hrDeviceDescr value. spec.md §8
// invariant 5 requires the output to start with the recognized
// manufacturer prefix whenever the input matched one of these rules.
func RepairMakeModel(raw string) string {
	s := raw

	if id, ok := tryParseAs1284ID(s); ok {
		mfg := id["MFG"]
		mdl := id["MDL"]
		if mfg == "" {
			mfg = id["MANUFACTURER"]
		}
		if mdl == "" {
			mdl = id["MODEL"]
		}
		if mfg != "" || mdl != "" {
			return strings.TrimSpace(mfg + " " + mdl)
		}
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "hewlett-packard"):
		s = "HP " + strings.TrimSpace(s[len("hewlett-packard"):])
	case strings.HasPrefix(lower, "hp "):
		s = "HP " + strings.TrimSpace(s[3:])
	case strings.HasPrefix(lower, "deskjet"):
		s = "HP DeskJet " + strings.TrimSpace(s[len("deskjet"):])
	case strings.HasPrefix(lower, "officejet"):
		s = "HP OfficeJet " + strings.TrimSpace(s[len("officejet"):])
	case strings.HasPrefix(lower, "stylus_pro_"):
		s = "EPSON Stylus Pro " + s[len("stylus_pro_"):]
	}

	s = stripFragment(s, ", Inc.,")
	s = stripTrailingNetwork(s)
	s = stripAfterTrailingComma(s)

	return strings.TrimSpace(s)
}

// tryParseAs1284ID detects a description that is itself a 1284 device-ID
// string (contains both ':' and ';') and parses it.
func tryParseAs1284ID(s string) (map[string]string, bool) {
	if !strings.Contains(s, ":") || !strings.Contains(s, ";") {
		return nil, false
	}
	fields := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		fields[strings.ToUpper(strings.TrimSpace(kv[0]))] = strings.TrimSpace(kv[1])
	}
	return fields, len(fields) > 0
}

func stripFragment(s, frag string) string {
	return strings.ReplaceAll(s, frag, "")
}

func stripTrailingNetwork(s string) string {
	if idx := strings.Index(s, " Network"); idx >= 0 {
		return s[:idx]
	}
	return s
}

func stripAfterTrailingComma(s string) string {
	if idx := strings.LastIndexByte(s, ','); idx >= 0 {
		return s[:idx]
	}
	return s
}
