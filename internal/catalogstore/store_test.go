package catalogstore

import (
	"context"
	"testing"
)

func TestStoreInMemory(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	uri := "dnssd://HP%20LaserJet._ipp._tcp.local./?uuid=abc"

	if err := store.Touch(ctx, "network", uri, "HP LaserJet", "MFG:HP;MDL:LaserJet;", "Room 1"); err != nil {
		t.Fatalf("first Touch: %v", err)
	}

	first, err := store.Get(ctx, uri)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first == nil {
		t.Fatal("expected a record after first Touch")
	}
	if first.TimesReSeen != 0 {
		t.Errorf("expected TimesReSeen 0 on first sighting, got %d", first.TimesReSeen)
	}
	firstSeen := first.FirstSeen

	if err := store.Touch(ctx, "network", uri, "HP LaserJet", "MFG:HP;MDL:LaserJet;", "Room 1"); err != nil {
		t.Fatalf("second Touch: %v", err)
	}
	second, err := store.Get(ctx, uri)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if second.TimesReSeen != 1 {
		t.Errorf("expected TimesReSeen 1 after second sighting, got %d", second.TimesReSeen)
	}
	if !second.FirstSeen.Equal(firstSeen) {
		t.Errorf("expected first_seen to be preserved, got %v want %v", second.FirstSeen, firstSeen)
	}
	if !second.LastSeen.After(firstSeen) && !second.LastSeen.Equal(firstSeen) {
		t.Errorf("expected last_seen to advance")
	}
}

func TestStoreGetUnknownReturnsNil(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	rec, err := store.Get(context.Background(), "dnssd://nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil for unknown uri, got %+v", rec)
	}
}

func TestStoreAllOrdersByLastSeenDescending(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Touch(ctx, "network", "dnssd://a", "A", "", ""); err != nil {
		t.Fatalf("Touch a: %v", err)
	}
	if err := store.Touch(ctx, "network", "dnssd://b", "B", "", ""); err != nil {
		t.Fatalf("Touch b: %v", err)
	}
	// Re-touch "a" so it becomes the most recently seen.
	if err := store.Touch(ctx, "network", "dnssd://a", "A", "", ""); err != nil {
		t.Fatalf("re-Touch a: %v", err)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}
	if all[0].URI != "dnssd://a" {
		t.Errorf("expected most recently seen first, got %s", all[0].URI)
	}
}
