package config

import "time"

// ServerConfig is the root configuration for respkv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Memory  MemorySection  `koanf:"memory"`
	AOF     AOFSection     `koanf:"aof"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the RESP listener and its event loop.
type ServerSection struct {
	Addr string `koanf:"addr"`

	// PollTimeout bounds each readiness wait.
	PollTimeout time.Duration `koanf:"poll_timeout"`

	// SweepInterval is the spacing between active expiry sweeps.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// MaxOutputBuffer is the per-connection output size at which reading
	// from that connection pauses.
	MaxOutputBuffer int `koanf:"max_output_buffer"`

	// WriteBudget is the number of bytes written per loop iteration.
	WriteBudget int `koanf:"write_budget"`

	ReadChunk  int     `koanf:"read_chunk"`
	MaxClients int     `koanf:"max_clients"`
	AcceptRate float64 `koanf:"accept_rate"`
}

// MemorySection configures the store's memory budget.
type MemorySection struct {
	// MaxBytes is the eviction threshold. 0 disables eviction.
	MaxBytes      uint64 `koanf:"max_bytes"`
	EntryOverhead uint64 `koanf:"entry_overhead"`
}

// AOFSection configures persistence.
type AOFSection struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
	Fsync   string `koanf:"fsync"`
}

// MetricsSection configures the admin HTTP endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
