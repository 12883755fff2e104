// Package charset resolves a Printer-MIB character-set name to a decoder
// and applies it to raw supply-description bytes, per spec.md §4.5's
// "Character-set decoding" rules. It wraps golang.org/x/text's encoding
// packages rather than hand-rolling ISO-8859-1/Shift-JIS/UTF-16/UTF-32
// tables.
package charset

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Set is a resolved Printer-MIB character set.
type Set int

const (
	Unknown Set = iota
	ASCII       // ASCII / UTF-8 / Unicode-ASCII: copied as-is
	ISOLatin1   // ISO-Latin-1 / Unicode-Latin-1
	ShiftJIS    // Shift-JIS / Windows-31J
	UCS2BE      // UCS-2, also used for plain "UCS-2" without explicit endianness
	UTF16LE
	UCS4BE
	UCS4LE
)

// Resolve maps a prtLocalizationCharacterSet MIB string (case-insensitive)
// to a Set. Unrecognized names return Unknown.
func Resolve(name string) Set {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "us-ascii", "ascii", "utf-8", "unicode-ascii":
		return ASCII
	case "iso-8859-1", "iso-latin-1", "unicode-latin1", "latin1":
		return ISOLatin1
	case "shift-jis", "windows-31j", "shift_jis":
		return ShiftJIS
	case "ucs-2", "utf-16be", "unicode":
		return UCS2BE
	case "utf-16le":
		return UTF16LE
	case "ucs-4", "utf-32", "utf-32be":
		return UCS4BE
	case "utf-32le":
		return UCS4LE
	default:
		return Unknown
	}
}

// Decode converts raw supply-description bytes to UTF-8 according to set.
// A decoder failure or an Unknown set falls back to the byte-for-byte
// passthrough spec.md §4.5 specifies.
func Decode(set Set, raw []byte) string {
	switch set {
	case ASCII:
		return string(raw)
	case ISOLatin1:
		if out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw); err == nil {
			return string(out)
		}
	case ShiftJIS:
		if out, err := japanese.ShiftJIS.NewDecoder().Bytes(raw); err == nil {
			return string(out)
		}
	case UCS2BE:
		if out, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw); err == nil {
			return string(out)
		}
	case UTF16LE:
		if out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw); err == nil {
			return string(out)
		}
	case UCS4BE:
		if out, err := utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM).NewDecoder().Bytes(raw); err == nil {
			return string(out)
		}
	case UCS4LE:
		if out, err := utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM).NewDecoder().Bytes(raw); err == nil {
			return string(out)
		}
	}
	return passthrough(raw)
}

// passthrough copies raw byte-for-byte, replacing any byte with the high
// bit set or below 0x20 (other than tab, newline, and carriage return)
// with '?'.
func passthrough(raw []byte) string {
	out := make([]byte, len(raw))
	for i, b := range raw {
		if b >= 0x80 || (b < 0x20 && b != '\t' && b != '\n' && b != '\r') {
			out[i] = '?'
		} else {
			out[i] = b
		}
	}
	return string(out)
}
