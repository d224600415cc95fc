package config

import "strings"

// Sanitize returns a normalized copy of the config: enum values are
// lower-cased and surrounding whitespace is trimmed. The result is what the
// server runs with and what it logs at startup.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	sanitized.Server.Addr = strings.TrimSpace(sanitized.Server.Addr)
	sanitized.AOF.Path = strings.TrimSpace(sanitized.AOF.Path)
	sanitized.AOF.Fsync = normalizeEnum(sanitized.AOF.Fsync)
	sanitized.Metrics.Addr = strings.TrimSpace(sanitized.Metrics.Addr)
	sanitized.Log.Level = normalizeEnum(sanitized.Log.Level)
	sanitized.Log.Format = normalizeEnum(sanitized.Log.Format)

	return &sanitized
}

func normalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
