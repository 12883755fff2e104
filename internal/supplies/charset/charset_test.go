package charset

import "testing"

func TestResolveKnownNames(t *testing.T) {
	cases := map[string]Set{
		"US-ASCII":   ASCII,
		"ISO-8859-1": ISOLatin1,
		"Shift-JIS":  ShiftJIS,
		"UCS-2":      UCS2BE,
		"UTF-16LE":   UTF16LE,
		"UCS-4":      UCS4BE,
		"UTF-32LE":   UCS4LE,
	}
	for name, want := range cases {
		if got := Resolve(name); got != want {
			t.Errorf("Resolve(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestResolveUnknownFallsBack(t *testing.T) {
	if Resolve("some-vendor-charset") != Unknown {
		t.Fatal("expected Unknown for an unrecognized name")
	}
}

func TestDecodeASCIICopiesAsIs(t *testing.T) {
	if got := Decode(ASCII, []byte("Black Toner")); got != "Black Toner" {
		t.Fatalf("got %q", got)
	}
}

func TestDecodeUnknownPassthroughMasksControlAndHighBit(t *testing.T) {
	raw := []byte{'A', 0x01, 'B', 0xFF, 'C', '\t', '\n'}
	got := Decode(Unknown, raw)
	want := "A?B?C\t\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestDecodeISOLatin1(t *testing.T) {
	// 0xE9 in ISO-8859-1 is U+00E9 (é).
	got := Decode(ISOLatin1, []byte{'c', 0xE9})
	if got != "cé" {
		t.Fatalf("got %q", got)
	}
}
