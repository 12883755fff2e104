package snmpscan

import "testing"

func TestRepairHewlettPackardPrefix(t *testing.T) {
	got := RepairMakeModel("Hewlett-Packard LaserJet 4000, Network Printer")
	if got[:2] != "HP" {
		t.Fatalf("expected HP prefix, got %q", got)
	}
}

func TestRepairDeskjet(t *testing.T) {
	got := RepairMakeModel("deskjet 2540 series")
	want := "HP DeskJet 2540 series"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRepairStylusPro(t *testing.T) {
	got := RepairMakeModel("stylus_pro_3880")
	want := "EPSON Stylus Pro 3880"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRepairStripsTrailingNetworkSuffix(t *testing.T) {
	got := RepairMakeModel("hp LaserJet 4000 Network Printer")
	if got != "HP LaserJet 4000" {
		t.Fatalf("got %q", got)
	}
}

func TestRepairStripsAfterTrailingComma(t *testing.T) {
	got := RepairMakeModel("Brother HL-2270DW, Firmware 1.0")
	if got != "Brother HL-2270DW" {
		t.Fatalf("got %q", got)
	}
}

func TestRepairParsesEmbedded1284ID(t *testing.T) {
	got := RepairMakeModel("MFG:Canon;MDL:imageRUNNER;CMD:PS;")
	if got != "Canon imageRUNNER" {
		t.Fatalf("got %q", got)
	}
}
