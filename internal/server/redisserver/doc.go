// Package redisserver provides the RESP front end of respkv.
//
// The server is a single-threaded, readiness-driven event loop built on
// poll(2). One goroutine owns the listening socket, every client socket,
// the command Dispatcher, the store and the AOF; commands run to completion
// in arrival order and need no locking.
//
// Supported commands:
//   - PING, ECHO, QUIT
//   - GET, SET [EX|PX], DEL, DBSIZE
//   - CONFIG GET|SET {MAXMEMORY, APPENDFSYNC}
//   - AOF ENABLE|DISABLE
//   - INFO, DEBUG DIGEST
//
// Each connection has an input and an output buffer. A connection whose
// output reaches MaxOutputBuffer stops being polled for input until the
// output drains, and each loop iteration writes at most WriteBudget bytes
// across all connections.
package redisserver
