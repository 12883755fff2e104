package catalog

import "testing"

func TestUpsertDedupesByNameAndType(t *testing.T) {
	c := New()
	d1 := c.Upsert("Printer", "local.", "Printer._ipp._tcp.local.", "_ipp._tcp", true)
	d2 := c.Upsert("Printer", "local.", "Printer._ipp._tcp.local.", "_ipp._tcp", false)

	if d1 != d2 {
		t.Fatalf("expected same catalog entry for duplicate (name, type)")
	}
	if len(c.All()) != 1 {
		t.Fatalf("expected 1 catalog entry, got %d", len(c.All()))
	}
	if !d1.LocalOnly {
		t.Fatalf("expected LocalOnly to be sticky once set by either browser")
	}
}

func TestUpsertUpgradesDomainFromLocal(t *testing.T) {
	c := New()
	d := c.Upsert("Printer", "local.", "Printer._ipp._tcp.local.", "_ipp._tcp", false)
	d2 := c.Upsert("Printer", "example.com.", "Printer._ipp._tcp.example.com.", "_ipp._tcp", false)

	if d != d2 {
		t.Fatalf("expected domain upgrade to reuse the same entry")
	}
	if d.Domain != "example.com." {
		t.Fatalf("expected domain upgraded to example.com., got %q", d.Domain)
	}
}

func TestUpsertDistinctTypesAreSeparateEntries(t *testing.T) {
	c := New()
	c.Upsert("Printer", "local.", "f1", "_ipp._tcp", false)
	c.Upsert("Printer", "local.", "f2", "_pdl-datastream._tcp", false)

	if len(c.All()) != 2 {
		t.Fatalf("expected 2 separate entries for differing types, got %d", len(c.All()))
	}
}

func TestBetterPriorityThenTypeOrdinal(t *testing.T) {
	ipp := &Device{Type: TypeIPP, Priority: 50}
	pdl := &Device{Type: TypePDLDatastream, Priority: 50}

	if Better(ipp, pdl) {
		t.Fatalf("equal priority should keep lower type ordinal (ipp) as best")
	}
	if !Better(pdl, ipp) {
		t.Fatalf("ipp (lower ordinal) should replace pdl as best")
	}

	lowerPriority := &Device{Type: TypePDLDatastream, Priority: 10}
	if !Better(ipp, lowerPriority) {
		t.Fatalf("lower priority number should win regardless of type ordinal")
	}
}

func TestEnsureUUIDOnlyFillsEmpty(t *testing.T) {
	d := &Device{}
	d.EnsureUUID()
	if d.UUID == "" {
		t.Fatalf("expected UUID to be assigned")
	}
	got := d.UUID
	d.EnsureUUID()
	if d.UUID != got {
		t.Fatalf("EnsureUUID must not overwrite an existing UUID")
	}
}
