// Package metric exposes respkv server metrics in Prometheus format.
//
// A Registry owns its own prometheus.Registry rather than the global default
// so tests and embedded servers can create independent instances. The
// server event loop feeds it through the redisserver.Metrics interface;
// Handler serves the result at /metrics.
package metric
