// Package output renders RESP replies for respkv-cli.
//
// The default style follows redis-cli: OK for simple strings, "quoted"
// bulk strings, (integer) n, (nil), (error) msg and numbered arrays with
// nested arrays indented under their index. Raw style prints payloads as
// they are, one per line, which suits INFO and shell pipelines.
package output
