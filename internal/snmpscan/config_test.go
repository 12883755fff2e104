package snmpscan

import (
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Addresses) != 1 || cfg.Addresses[0] != "@LOCAL" {
		t.Fatalf("expected default @LOCAL address, got %v", cfg.Addresses)
	}
	if len(cfg.Communities) != 1 || cfg.Communities[0] != "public" {
		t.Fatalf("expected default public community, got %v", cfg.Communities)
	}
}

func TestParseConfigOverridesDefaults(t *testing.T) {
	text := `
# comment line
Address 10.0.0.5
Address @IF(eth0)
Community private
DebugLevel 2
MaxRunTime 30
HostNameLookups off
`
	cfg, err := ParseConfig(strings.NewReader(text), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Addresses) != 2 || cfg.Addresses[0] != "10.0.0.5" {
		t.Fatalf("got %v", cfg.Addresses)
	}
	if len(cfg.Communities) != 1 || cfg.Communities[0] != "private" {
		t.Fatalf("got %v", cfg.Communities)
	}
	if cfg.DebugLevel != 2 || cfg.MaxRunTimeSecs != 30 || cfg.HostNameLookups {
		t.Fatalf("got %+v", cfg)
	}
}

func TestParseConfigDeviceURIRule(t *testing.T) {
	text := `DeviceURI "HP LaserJet.*" socket://%s ipp://%s/ipp/print`
	cfg, err := ParseConfig(strings.NewReader(text), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.DeviceURIRules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(cfg.DeviceURIRules))
	}
	rule := cfg.DeviceURIRules[0]
	if !rule.Pattern.MatchString("hp laserjet 4000") {
		t.Fatalf("expected case-insensitive match")
	}
	uris := rule.Apply("192.168.1.5")
	if uris[0] != "socket://192.168.1.5" || uris[1] != "ipp://192.168.1.5/ipp/print" {
		t.Fatalf("got %v", uris)
	}
}

func TestParseConfigUnknownDirectiveWarns(t *testing.T) {
	var warnings []string
	_, err := ParseConfig(strings.NewReader("Bogus value"), func(s string) { warnings = append(warnings, s) })
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
}
