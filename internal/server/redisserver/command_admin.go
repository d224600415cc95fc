package redisserver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yndnr/respkv/internal/storage/aof"
	"github.com/yndnr/respkv/pkg/resp"
)

// CONFIG GET parameter
// CONFIG SET parameter value
func handleConfig(d *Dispatcher, args [][]byte) (resp.Value, bool) {
	switch strings.ToUpper(string(args[1])) {
	case "GET":
		if len(args) != 3 {
			return wrongArity("CONFIG GET"), false
		}
		return d.configGet(args[2]), false
	case "SET":
		if len(args) != 4 {
			return wrongArity("CONFIG SET"), false
		}
		return d.configSet(args[2], args[3]), false
	default:
		return errorf("ERR unknown subcommand '%s' for 'CONFIG'", args[1]), false
	}
}

func (d *Dispatcher) configGet(param []byte) resp.Value {
	switch strings.ToUpper(string(param)) {
	case "MAXMEMORY":
		return resp.ArrayOf(
			resp.BulkString("maxmemory"),
			resp.BulkString(strconv.FormatUint(d.store.MemoryLimit(), 10)),
		)
	case "APPENDFSYNC":
		return resp.ArrayOf(
			resp.BulkString("appendfsync"),
			resp.BulkString(string(d.aofPolicy)),
		)
	default:
		return errorf("ERR Unsupported CONFIG parameter: %s", param)
	}
}

func (d *Dispatcher) configSet(param, value []byte) resp.Value {
	switch strings.ToUpper(string(param)) {
	case "MAXMEMORY":
		limit, e := parseUint(value)
		if e != numOK {
			return errorf("ERR Invalid argument '%s' for CONFIG SET 'maxmemory'", value)
		}
		d.store.SetMemoryLimit(limit)
		d.logger.Info("maxmemory changed", "maxmemory", limit)
		return replyOK
	case "APPENDFSYNC":
		policy, err := aof.ParseFsyncPolicy(string(value))
		if err != nil {
			return errorf("ERR Invalid argument '%s' for CONFIG SET 'appendfsync'", value)
		}
		d.aofPolicy = policy
		if d.log != nil {
			d.log.SetPolicy(policy)
		}
		d.logger.Info("appendfsync changed", "appendfsync", string(policy))
		return replyOK
	default:
		return errorf("ERR Unsupported CONFIG parameter: %s", param)
	}
}

// AOF ENABLE | DISABLE
func handleAOF(d *Dispatcher, args [][]byte) (resp.Value, bool) {
	switch strings.ToUpper(string(args[1])) {
	case "ENABLE":
		if err := d.EnableAOF(); err != nil {
			d.logger.Warn("aof enable failed", "path", d.aofPath, "error", err)
			return errorf("ERR failed to enable AOF: %v", err), false
		}
		return replyOK, false
	case "DISABLE":
		if err := d.DisableAOF(); err != nil {
			d.logger.Warn("aof disable failed", "path", d.aofPath, "error", err)
			return errorf("ERR failed to disable AOF: %v", err), false
		}
		return replyOK, false
	default:
		return errorf("ERR unknown subcommand '%s' for 'AOF'", args[1]), false
	}
}

// INFO
func handleInfo(d *Dispatcher, _ [][]byte) (resp.Value, bool) {
	st := d.store.Stats()

	var lastFsync int64
	if t := d.AOFLastFsync(); !t.IsZero() {
		lastFsync = t.Unix()
	}

	var b strings.Builder
	b.WriteString("# Server\r\n")
	fmt.Fprintf(&b, "respkv_version:%s\r\n", d.version)
	fmt.Fprintf(&b, "run_id:%s\r\n", d.runID)
	fmt.Fprintf(&b, "connected_clients:%d\r\n", d.clients())
	b.WriteString("# Memory\r\n")
	fmt.Fprintf(&b, "used_memory:%d\r\n", st.EstimatedMemory)
	fmt.Fprintf(&b, "maxmemory:%d\r\n", st.MemoryLimit)
	fmt.Fprintf(&b, "evicted_keys:%d\r\n", st.EvictionsTotal)
	fmt.Fprintf(&b, "expired_keys:%d\r\n", st.ExpiredTotal)
	b.WriteString("# Keyspace\r\n")
	fmt.Fprintf(&b, "keys:%d\r\n", st.Keys)
	fmt.Fprintf(&b, "expires:%d\r\n", st.Expires)
	b.WriteString("# Persistence\r\n")
	fmt.Fprintf(&b, "aof_enabled:%d\r\n", boolInt(d.AOFEnabled()))
	fmt.Fprintf(&b, "aof_fsync_policy:%s\r\n", d.aofPolicy)
	fmt.Fprintf(&b, "aof_last_fsync:%d\r\n", lastFsync)

	return resp.BulkString(b.String()), false
}

// DEBUG DIGEST
func handleDebug(d *Dispatcher, args [][]byte) (resp.Value, bool) {
	switch strings.ToUpper(string(args[1])) {
	case "DIGEST":
		if len(args) != 2 {
			return wrongArity("DEBUG DIGEST"), false
		}
		return resp.BulkString(fmt.Sprintf("%016x", d.store.Digest())), false
	default:
		return errorf("ERR unknown subcommand '%s' for 'DEBUG'", args[1]), false
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
