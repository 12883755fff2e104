// Command snmpdiscover is the SNMP DiscoveryEngine backend of spec.md
// §2/§4.2: it scans snmp.conf's configured addresses/communities and
// prints one discovery line per printer-like device found.
package main

import (
	"context"
	"os"
	"time"

	"printcore/internal/backendreport"
	"printcore/internal/log"
	"printcore/internal/snmpclient"
	"printcore/internal/snmpscan"
)

// reportAdapter satisfies snmpscan.Reporter by forwarding to
// backendreport.Writer's single ReportDiscovery method.
type reportAdapter struct {
	w *backendreport.Writer
}

func (r reportAdapter) ReportSNMP(class, uri, makeModel, info, deviceID, location string) {
	r.w.ReportDiscovery(class, uri, makeModel, info, deviceID, location)
}

func main() {
	logger := log.New("snmpdiscover", log.INFO, os.Getenv("CUPS_SERVERROOT"))
	defer logger.Close()

	cfg := snmpscan.DefaultConfig()
	if confPath := confFilePath(); confPath != "" {
		if f, err := os.Open(confPath); err == nil {
			defer f.Close()
			parsed, err := snmpscan.ParseConfig(f, func(msg string) { logger.Warn("snmp.conf: " + msg) })
			if err != nil {
				logger.Error("snmp.conf: parse failed", "err", err)
				os.Exit(1)
			}
			cfg = parsed
		}
	}

	reporter := reportAdapter{w: &backendreport.Writer{Discovery: os.Stdout, Events: os.Stderr}}
	scanner := snmpscan.NewScanner(cfg, reporter, logger, snmpclient.Dial)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.MaxRunTimeSecs)*time.Second)
	defer cancel()
	if err := scanner.Run(ctx); err != nil {
		logger.Error("snmpdiscover: scan failed", "err", err)
		os.Exit(1)
	}
}

func confFilePath() string {
	root := os.Getenv("CUPS_SERVERROOT")
	if root == "" {
		return ""
	}
	return root + "/snmp.conf"
}
