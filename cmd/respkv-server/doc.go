// Package main provides the entry point for respkv-server.
//
// respkv-server is a single-node in-memory key-value server speaking the
// Redis serialization protocol. Configuration is read from defaults, an
// optional YAML file, RESPKV_* environment variables and finally flags.
//
// Usage:
//
//	respkv-server --config /etc/respkv/server.yaml
//	respkv-server --addr 0.0.0.0:6380 --aof --maxmemory 268435456
//	respkv-server version
package main
