// Package buildinfo exposes build-time metadata and the per-process run id.
//
// Version, Commit and BuildTime are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/respkv/internal/infra/buildinfo.Version=v1.0.0"
//
// The run id is a ULID minted once per process. It appears in INFO as
// run_id and in /version, so restarts are distinguishable even when the
// binary is unchanged.
package buildinfo
