// Package config loads cmd/telemetryd's TOML configuration, following the
// teacher's common/config pattern of a defaults-then-override loader built
// on BurntSushi/toml.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// SNMPConfig mirrors the address/community lists snmpscan.Config already
// accepts, so telemetryd.toml can drive the same scanner the snmp.conf
// grammar does.
type SNMPConfig struct {
	Addresses      []string `toml:"addresses"`
	Communities    []string `toml:"communities"`
	MaxRunTimeSecs int      `toml:"max_run_time_secs"`
	PollInterval   int      `toml:"poll_interval_secs"`
}

// DNSSDConfig controls which registration types the DNS-SD engine browses.
// Empty RegistrationTypes means "use dnssd.RegistrationTypes".
type DNSSDConfig struct {
	RegistrationTypes []string `toml:"registration_types"`
}

// WebConfig holds the operator dashboard's websocket bind settings.
type WebConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

// DatabaseConfig holds the catalogstore's sqlite path.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// ServiceConfig names the installable OS service, per the teacher's
// agent/service.go getServiceConfig().
type ServiceConfig struct {
	Name        string `toml:"name"`
	DisplayName string `toml:"display_name"`
}

// Config is the top-level telemetryd.toml shape.
type Config struct {
	SNMP     SNMPConfig     `toml:"snmp"`
	DNSSD    DNSSDConfig    `toml:"dnssd"`
	Web      WebConfig      `toml:"web"`
	Database DatabaseConfig `toml:"database"`
	Service  ServiceConfig  `toml:"service"`
}

// Default returns telemetryd's configuration with sensible defaults, mirroring
// DefaultAgentConfig's role in the teacher.
func Default() *Config {
	return &Config{
		SNMP: SNMPConfig{
			Addresses:      []string{"@LOCAL"},
			Communities:    []string{"public"},
			MaxRunTimeSecs: 120,
			PollInterval:   30,
		},
		Web: WebConfig{
			ListenAddr: "127.0.0.1:9631",
		},
		Database: DatabaseConfig{
			Path: "telemetryd.db",
		},
		Service: ServiceConfig{
			Name:        "printcore-telemetryd",
			DisplayName: "printcore telemetry daemon",
		},
	}
}

// Load reads configPath into a Config seeded with Default(), then applies
// environment variable overrides, following LoadAgentConfig's precedence
// (file first, then env).
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", configPath, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TELEMETRYD_WEB_LISTEN_ADDR"); v != "" {
		cfg.Web.ListenAddr = v
	}
	if v := os.Getenv("TELEMETRYD_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TELEMETRYD_SNMP_COMMUNITY"); v != "" {
		cfg.SNMP.Communities = []string{v}
	}
	if v := os.Getenv("TELEMETRYD_SNMP_MAX_RUN_TIME_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SNMP.MaxRunTimeSecs = n
		}
	}
	if v := os.Getenv("TELEMETRYD_SNMP_POLL_INTERVAL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SNMP.PollInterval = n
		}
	}
}
