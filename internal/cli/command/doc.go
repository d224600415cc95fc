// Package command defines the respkv-cli commands using urfave/cli/v2:
//
//   - root.go: App, global flags, interactive mode
//   - keys.go: ping, get, set, del
//   - admin.go: info, config, aof, digest, raw
//
// Every command opens one connection, sends one request and prints the
// reply with the formatter selected by --raw. A server error reply is
// printed like any other reply and makes the command fail with ErrReply.
package command
