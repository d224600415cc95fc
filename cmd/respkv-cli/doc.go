// Package main provides the entry point for respkv-cli.
//
// respkv-cli sends commands to respkv-server and prints the replies the
// way redis-cli does. Without a subcommand it starts an interactive
// session.
//
// Usage:
//
//	respkv-cli ping
//	respkv-cli set session:1 payload --ex 60
//	respkv-cli --raw info
//	respkv-cli -s 10.0.0.5:6380 config set maxmemory 268435456
//	respkv-cli
package main
