// Package aof provides the append-only file used for durability.
//
// The log is the concatenation of the wire encoding of every successful
// mutating command, in execution order, with no framing beyond the RESP
// protocol itself. Recovery replays it through the codec and hands each
// decoded request to a caller-supplied apply function.
//
// Features:
//
//   - Immediate Writes: every Append reaches the OS before returning
//   - Fsync Policy: "everysec" fsyncs at most once per second, "no" leaves
//     durability to the OS until Close
//   - Tolerant Replay: a truncated trailing command ends replay cleanly
//
// Format:
//
//	*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n*2\r\n$3\r\nDEL\r\n$1\r\nk\r\n...
//
// A Log is not safe for concurrent use; it is owned by the server event loop.
package aof
