package snmpscan

import "testing"

func TestCacheGetOrCreateIsIdempotent(t *testing.T) {
	c := NewCache()
	e1 := c.GetOrCreate("10.0.0.1")
	e2 := c.GetOrCreate("10.0.0.1")
	if e1 != e2 {
		t.Fatalf("expected same entry for repeated GetOrCreate")
	}
	if len(c.All()) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(c.All()))
	}
}

func TestCacheEntryReadyRequiresInfoAndMakeModel(t *testing.T) {
	e := &CacheEntry{}
	if e.Ready() {
		t.Fatalf("empty entry should not be ready")
	}
	e.Info = "desc"
	if e.Ready() {
		t.Fatalf("entry with only Info should not be ready")
	}
	e.MakeAndModel = "HP LaserJet"
	if !e.Ready() {
		t.Fatalf("entry with Info and MakeAndModel should be ready")
	}
}
