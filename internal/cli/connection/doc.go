// Package connection provides the RESP client used by respkv-cli.
//
// A Client holds one TCP connection. Requests are encoded as arrays of
// bulk strings and replies are decoded incrementally with pkg/resp, so a
// reply split across many reads is reassembled before it is returned.
package connection
