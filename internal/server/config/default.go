package config

import "time"

// Default configuration values.
const (
	DefaultAddr            = "127.0.0.1:6380"
	DefaultPollTimeout     = 100 * time.Millisecond
	DefaultSweepInterval   = 5 * time.Second
	DefaultMaxOutputBuffer = 2 << 20
	DefaultWriteBudget     = 1 << 20
	DefaultReadChunk       = 16 << 10
	DefaultMaxClients      = 10000

	DefaultMaxBytes      uint64 = 100 << 20
	DefaultEntryOverhead uint64 = 64

	DefaultAOFPath  = "appendonly.aof"
	DefaultAOFFsync = "everysec"

	DefaultMetricsAddr = "127.0.0.1:9121"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:            DefaultAddr,
			PollTimeout:     DefaultPollTimeout,
			SweepInterval:   DefaultSweepInterval,
			MaxOutputBuffer: DefaultMaxOutputBuffer,
			WriteBudget:     DefaultWriteBudget,
			ReadChunk:       DefaultReadChunk,
			MaxClients:      DefaultMaxClients,
		},
		Memory: MemorySection{
			MaxBytes:      DefaultMaxBytes,
			EntryOverhead: DefaultEntryOverhead,
		},
		AOF: AOFSection{
			Enabled: false,
			Path:    DefaultAOFPath,
			Fsync:   DefaultAOFFsync,
		},
		Metrics: MetricsSection{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
