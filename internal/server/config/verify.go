package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyAOF(&cfg.AOF); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics, cfg.Server.Addr); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Addr == "" {
		return errors.New("server.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("server.addr %q: %w", cfg.Addr, err)
	}
	if cfg.PollTimeout <= 0 {
		return errors.New("server.poll_timeout must be positive")
	}
	if cfg.SweepInterval <= 0 {
		return errors.New("server.sweep_interval must be positive")
	}
	if cfg.MaxOutputBuffer < 1 {
		return errors.New("server.max_output_buffer must be at least 1")
	}
	if cfg.WriteBudget < 1 {
		return errors.New("server.write_budget must be at least 1")
	}
	if cfg.ReadChunk < 1 {
		return errors.New("server.read_chunk must be at least 1")
	}
	if cfg.MaxClients < 0 {
		return errors.New("server.max_clients must not be negative")
	}
	if cfg.AcceptRate < 0 {
		return errors.New("server.accept_rate must not be negative")
	}
	return nil
}

func verifyAOF(cfg *AOFSection) error {
	switch cfg.Fsync {
	case "everysec", "no":
	default:
		return fmt.Errorf("aof.fsync must be \"everysec\" or \"no\", got %q", cfg.Fsync)
	}
	if cfg.Path == "" {
		return errors.New("aof.path is required")
	}
	if filepath.Base(cfg.Path) == "." || filepath.Base(cfg.Path) == string(filepath.Separator) {
		return fmt.Errorf("aof.path %q must name a file", cfg.Path)
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection, respAddr string) error {
	if !cfg.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("metrics.addr %q: %w", cfg.Addr, err)
	}
	if cfg.Addr == respAddr {
		return fmt.Errorf("metrics.addr conflicts with server.addr %q", respAddr)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level)
	}
	switch cfg.Format {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log.format %q is not one of json, text, console", cfg.Format)
	}
	return nil
}
