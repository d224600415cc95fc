package redisserver

import (
	"math"
	"strings"

	"github.com/yndnr/respkv/pkg/resp"
)

// PING [message]
func handlePing(_ *Dispatcher, args [][]byte) (resp.Value, bool) {
	if len(args) == 2 {
		return resp.Bulk(args[1]), false
	}
	return replyPong, false
}

// ECHO message
func handleEcho(_ *Dispatcher, args [][]byte) (resp.Value, bool) {
	return resp.Bulk(args[1]), false
}

// GET key
func handleGet(d *Dispatcher, args [][]byte) (resp.Value, bool) {
	value, ok := d.store.Get(string(args[1]))
	if !ok {
		return resp.NullBulk(), false
	}
	return resp.Bulk(value), false
}

// SET key value [EX seconds | PX milliseconds]...
//
// Options are read in pairs; when several are given the last one wins.
func handleSet(d *Dispatcher, args [][]byte) (resp.Value, bool) {
	var ttlMs int64
	for i := 3; i < len(args); i += 2 {
		if i+1 >= len(args) {
			return errSyntax, false
		}

		var scale int64
		switch strings.ToUpper(string(args[i])) {
		case "EX":
			scale = 1000
		case "PX":
			scale = 1
		default:
			return errSyntax, false
		}

		n, e := parsePositive(args[i+1])
		switch e {
		case numOK:
		case numNonPositive:
			return errExpireTime, false
		default:
			return errNotInteger, false
		}
		if n > math.MaxInt64/scale {
			return errExpireTime, false
		}
		ttlMs = n * scale
	}

	var expireAt int64
	if ttlMs > 0 {
		now := d.store.Now().UnixMilli()
		if ttlMs > math.MaxInt64-now {
			return errExpireTime, false
		}
		expireAt = now + ttlMs
	}

	if evicted := d.store.Set(string(args[1]), args[2], expireAt); evicted > 0 {
		d.logger.Debug("evicted keys for write", "evicted", evicted)
	}
	return replyOK, true
}

// DEL key [key ...]
func handleDel(d *Dispatcher, args [][]byte) (resp.Value, bool) {
	keys := make([]string, 0, len(args)-1)
	for _, k := range args[1:] {
		keys = append(keys, string(k))
	}
	return resp.Integer(int64(d.store.Delete(keys...))), true
}

// DBSIZE
func handleDBSize(d *Dispatcher, _ [][]byte) (resp.Value, bool) {
	return resp.Integer(int64(d.store.Len())), false
}

// QUIT
func handleQuit(_ *Dispatcher, _ [][]byte) (resp.Value, bool) {
	return replyOK, false
}
