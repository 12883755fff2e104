// Command telemetryd is the long-running operator-dashboard daemon of
// SPEC_FULL.md §4.7: it runs the DNS-SD and SNMP DiscoveryEngines
// continuously (rather than the spooler's one-shot invocation), persists
// discovery history, and streams discovery/event lines to a local
// websocket for dashboard clients. It is ambient tooling, not one of the
// spooler-invoked backends spec.md §6 describes.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kardianos/service"

	"printcore/internal/backendreport"
	"printcore/internal/catalogstore"
	"printcore/internal/config"
	"printcore/internal/dnssd"
	"printcore/internal/log"
	"printcore/internal/snmpclient"
	"printcore/internal/snmpscan"
	"printcore/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "telemetryd.toml", "Configuration file path")
	serviceCmd := flag.String("service", "", "Service control: install, uninstall, start, stop, run")
	flag.Parse()

	if *serviceCmd != "" {
		handleServiceCommand(*serviceCmd, *configPath)
		return
	}
	if !service.Interactive() {
		runAsService(*configPath)
		return
	}
	runDaemon(context.Background(), *configPath)
}

func handleServiceCommand(cmd, configPath string) {
	cfg, err := loadConfigOrDefault(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetryd: %v\n", err)
		os.Exit(1)
	}
	svcConfig := getServiceConfig(cfg.Service.Name, cfg.Service.DisplayName)
	prg := &program{configPath: configPath}
	s, err := service.New(prg, svcConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetryd: creating service: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case "install":
		err = s.Install()
	case "uninstall":
		err = s.Uninstall()
	case "start":
		err = s.Start()
	case "stop":
		err = s.Stop()
	case "run":
		err = s.Run()
	default:
		fmt.Fprintf(os.Stderr, "telemetryd: unknown -service value %q\n", cmd)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetryd: %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func runAsService(configPath string) {
	cfg, err := loadConfigOrDefault(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetryd: %v\n", err)
		os.Exit(1)
	}
	svcConfig := getServiceConfig(cfg.Service.Name, cfg.Service.DisplayName)
	prg := &program{configPath: configPath}
	s, err := service.New(prg, svcConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetryd: creating service: %v\n", err)
		os.Exit(1)
	}
	if err := s.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "telemetryd: %v\n", err)
		os.Exit(1)
	}
}

func loadConfigOrDefault(configPath string) (*config.Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// runDaemon wires the discovery engines, catalogstore, and websocket hub
// together and runs until ctx is cancelled.
func runDaemon(ctx context.Context, configPath string) {
	cfg, err := loadConfigOrDefault(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetryd: %v\n", err)
		return
	}

	logger := log.New("telemetryd", log.INFO, os.Getenv("CUPS_SERVERROOT"))
	defer logger.Close()

	store, err := catalogstore.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("telemetryd: opening catalogstore failed", "err", err)
		return
	}
	defer store.Close()

	hub := telemetry.NewHub()
	defer hub.Stop()

	wsServer := telemetry.NewServer(hub, logger)
	httpSrv := &http.Server{Addr: cfg.Web.ListenAddr, Handler: wsServer}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("telemetryd: websocket server failed", "err", err)
		}
	}()
	defer httpSrv.Close()

	reporter := &telemetryReporter{
		w:      &backendreport.Writer{Discovery: hubWriter{hub, "discovery"}, Events: hubWriter{hub, "event"}},
		store:  store,
		logger: logger,
	}

	dnssdEngine := dnssd.NewEngineWithRegTypes(dnssd.ZeroconfBackend{}, reporter, logger, cfg.DNSSD.RegistrationTypes)
	dnssdEngine.Start(ctx)

	scanner := snmpscan.NewScanner(snmpscan.Config{
		Addresses:       cfg.SNMP.Addresses,
		Communities:     cfg.SNMP.Communities,
		MaxRunTimeSecs:  cfg.SNMP.MaxRunTimeSecs,
		HostNameLookups: true,
	}, reporter, logger, snmpclient.Dial)

	pollInterval := time.Duration(cfg.SNMP.PollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			scanCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.SNMP.MaxRunTimeSecs)*time.Second)
			if err := scanner.Run(scanCtx); err != nil && err != context.Canceled && err != context.DeadlineExceeded {
				logger.Warn("telemetryd: snmp scan failed", "err", err)
			}
			cancel()
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollInterval):
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := dnssdEngine.Run(ctx); err != nil {
			return
		}
	}
}

// hubWriter adapts backendreport.Writer's io.Writer sinks to the telemetry
// hub: each Write call corresponds to one formatted STATE:/ATTR:/discovery
// line, which is published verbatim (minus its trailing newline).
type hubWriter struct {
	hub  *telemetry.Hub
	kind string
}

func (w hubWriter) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	if line != "" {
		w.hub.Publish(telemetry.Event{Kind: w.kind, Line: line})
	}
	return len(p), nil
}

// telemetryReporter satisfies both dnssd.Reporter (ReportDiscovery) and
// snmpscan.Reporter (ReportSNMP) so the same instance drives both engines:
// it formats the discovery line via backendreport.Writer and records the
// sighting in catalogstore.
type telemetryReporter struct {
	w      *backendreport.Writer
	store  *catalogstore.Store
	logger *log.Logger
}

func (r *telemetryReporter) ReportDiscovery(class, uri, makeModel, info, deviceID, location string) {
	r.w.ReportDiscovery(class, uri, makeModel, info, deviceID, location)
	if err := r.store.Touch(context.Background(), class, uri, makeModel, deviceID, location); err != nil {
		r.logger.Warn("telemetryd: catalogstore touch failed", "err", err)
	}
}

func (r *telemetryReporter) ReportSNMP(class, uri, makeModel, info, deviceID, location string) {
	r.ReportDiscovery(class, uri, makeModel, info, deviceID, location)
}
