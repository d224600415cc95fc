package config

import (
	"fmt"

	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/aof"
	"github.com/yndnr/respkv/internal/storage/memory"
)

// ToRedisServerConfig maps the server section onto the event loop config.
func ToRedisServerConfig(cfg *ServerConfig) *redisserver.Config {
	if cfg == nil {
		return redisserver.DefaultConfig()
	}
	s := cfg.Server
	return &redisserver.Config{
		Addr:            s.Addr,
		PollTimeout:     s.PollTimeout,
		SweepInterval:   s.SweepInterval,
		MaxOutputBuffer: s.MaxOutputBuffer,
		WriteBudget:     s.WriteBudget,
		ReadChunk:       s.ReadChunk,
		MaxClients:      s.MaxClients,
		AcceptRate:      s.AcceptRate,
	}
}

// MemoryOptions returns the store options for the memory section.
func MemoryOptions(cfg *ServerConfig) []memory.Option {
	return []memory.Option{
		memory.WithMemoryLimit(cfg.Memory.MaxBytes),
		memory.WithEntryOverhead(cfg.Memory.EntryOverhead),
	}
}

// FsyncPolicy returns the parsed AOF fsync policy.
func FsyncPolicy(cfg *ServerConfig) (aof.FsyncPolicy, error) {
	p, err := aof.ParseFsyncPolicy(cfg.AOF.Fsync)
	if err != nil {
		return "", fmt.Errorf("aof.fsync: %w", err)
	}
	return p, nil
}
