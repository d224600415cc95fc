// Package httpserver provides the admin HTTP endpoint of respkv.
//
// The router is built on gorilla/mux and serves:
//
//   - /metrics: Prometheus exposition of the server registry
//   - /health: 200 while the RESP event loop is running, 503 otherwise
//   - /version: build information and the process run id
//
// Every request passes through Recover, RequestID and AccessLog. The admin
// listener is separate from the RESP listener and never touches the store.
package httpserver
