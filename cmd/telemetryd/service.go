package main

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/kardianos/service"
)

// program implements service.Interface, grounded on the teacher's
// agent/service.go program type.
type program struct {
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	svcLogger  service.Logger
	configPath string
}

func (p *program) Start(s service.Service) error {
	p.svcLogger, _ = s.Logger(nil)
	if p.svcLogger != nil {
		p.svcLogger.Info("printcore telemetryd service starting")
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.done = make(chan struct{})

	go p.run()
	return nil
}

func (p *program) run() {
	defer close(p.done)
	if p.svcLogger != nil {
		p.svcLogger.Info("printcore telemetryd service running")
	}
	runDaemon(p.ctx, p.configPath)
	if p.svcLogger != nil {
		p.svcLogger.Info("printcore telemetryd service stopping")
	}
}

func (p *program) Stop(s service.Service) error {
	if p.svcLogger != nil {
		p.svcLogger.Info("printcore telemetryd service stop requested")
	}
	if p.cancel != nil {
		p.cancel()
	}
	timeout := time.After(30 * time.Second)
	select {
	case <-p.done:
		if p.svcLogger != nil {
			p.svcLogger.Info("printcore telemetryd service stopped gracefully")
		}
	case <-timeout:
		if p.svcLogger != nil {
			p.svcLogger.Warning("printcore telemetryd service stopped with timeout")
		}
	}
	return nil
}

// getServiceConfig returns the kardianos/service configuration for the
// current platform, following getServiceConfig's shape in the teacher.
func getServiceConfig(name, displayName string) *service.Config {
	var workingDir string
	switch runtime.GOOS {
	case "windows":
		workingDir = os.Getenv("ProgramData")
	case "darwin":
		workingDir = "/Library/Application Support/printcore"
	default:
		workingDir = "/var/lib/printcore"
	}

	return &service.Config{
		Name:             name,
		DisplayName:      displayName,
		Description:      "printcore telemetry daemon: continuous DNS-SD/SNMP discovery with a websocket dashboard feed.",
		WorkingDirectory: workingDir,
		Arguments:        []string{"-service", "run"},
		Option: service.KeyValue{
			"Restart":           "on-failure",
			"RestartSec":        5,
			"SuccessExitStatus": "0 SIGTERM",
			"KillMode":          "mixed",
			"KillSignal":        "SIGTERM",
			"RunAtLoad":         true,
			"KeepAlive":         true,
		},
	}
}
