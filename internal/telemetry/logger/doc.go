// Package logger provides structured logging for respkv.
//
// The package wraps log/slog:
//
//   - logger.go: handler construction, the process-wide level and the default logger
//   - redact.go: masking of stored payloads before they reach any output
//   - context.go: carrying a Logger through a context.Context
//
// Components that only need a plain *slog.Logger get one from Logger.Slog,
// which shares the redacting handler and the runtime-adjustable level.
package logger
