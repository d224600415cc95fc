// Package resp implements an incremental codec for the RESP wire protocol.
//
// The codec is pure and buffer-agnostic: Decode inspects a byte slice and
// either returns one complete value together with the number of bytes it
// occupies, reports that more input is required, or reports a protocol
// error. It never buffers input itself, so the same code serves live
// connections (which receive partial byte ranges) and append-only log
// replay (which reads the whole file at once).
//
// Value kinds:
//
//   - SimpleString: +OK\r\n
//   - Error:        -ERR message\r\n
//   - Integer:      :42\r\n
//   - BulkString:   $3\r\nfoo\r\n  (null: $-1\r\n)
//   - Array:        *2\r\n...      (null: *-1\r\n)
//
// Usage:
//
//	v, n, err := resp.Decode(buf)
//	switch {
//	case errors.Is(err, resp.ErrIncomplete):
//		// wait for more bytes, buf is untouched
//	case err != nil:
//		// protocol error
//	default:
//		buf = buf[n:]
//	}
//
// Limits (MaxDepth, MaxArrayLen, MaxBulkLen) bound the resources a single
// crafted header can claim; exceeding them is a protocol error.
package resp
