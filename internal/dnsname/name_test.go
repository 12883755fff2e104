package dnsname

import "testing"

func TestUnquoteDecimalEscape(t *testing.T) {
	if got := Unquote(`Sales\032Printer`); got != "Sales Printer" {
		t.Fatalf("got %q", got)
	}
}

func TestUnquoteLiteralEscape(t *testing.T) {
	if got := Unquote(`foo\.bar`); got != "foo.bar" {
		t.Fatalf("got %q", got)
	}
}

func TestUnquoteNeverContainsBackslash(t *testing.T) {
	inputs := []string{`a\\b`, `\001\002`, `plain`, `trailing\`}
	for _, in := range inputs {
		out := Unquote(in)
		for i := 0; i < len(out); i++ {
			if out[i] == '\\' {
				t.Fatalf("Unquote(%q) = %q still contains a backslash", in, out)
			}
		}
		if len(out) > len(in) {
			t.Fatalf("Unquote(%q) = %q is longer than input", in, out)
		}
	}
}

func TestRoundTripQuoteUnquote(t *testing.T) {
	cases := []string{"Office Printer", "foo.bar", "plain-name", "weird\x01byte"}
	for _, s := range cases {
		if got := Unquote(Quote(s)); got != s {
			t.Fatalf("round trip failed for %q: got %q", s, got)
		}
	}
}
