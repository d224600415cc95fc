package aof

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/yndnr/respkv/pkg/resp"
)

// ErrCorrupted is returned by Replay when the log contains bytes that are
// not a valid RESP value.
var ErrCorrupted = errors.New("aof: corrupted log")

// ReplayStats describes a completed replay.
type ReplayStats struct {
	// Commands is the number of values handed to apply.
	Commands int

	// Bytes is the number of bytes consumed by those values.
	Bytes int

	// TrailingBytes is the length of an incomplete final fragment, usually
	// a write cut short by a crash.
	TrailingBytes int
}

// Replay reads the log at path and calls apply with each decoded value in
// order. A missing file is an empty log.
//
// Replay stops without error at an incomplete trailing fragment. On a
// malformed value it stops and returns an error wrapping ErrCorrupted; the
// values applied before that point stay applied.
func Replay(path string, apply func(resp.Value), logger *slog.Logger) (ReplayStats, error) {
	var stats ReplayStats
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return stats, nil
		}
		return stats, fmt.Errorf("aof: read %s: %w", path, err)
	}

	for stats.Bytes < len(data) {
		v, n, err := resp.Decode(data[stats.Bytes:])
		if err != nil {
			if errors.Is(err, resp.ErrIncomplete) {
				stats.TrailingBytes = len(data) - stats.Bytes
				logger.Warn("aof has incomplete trailing command",
					"path", path,
					"offset", stats.Bytes,
					"trailing_bytes", stats.TrailingBytes)
				break
			}
			return stats, fmt.Errorf("%w: offset %d: %w", ErrCorrupted, stats.Bytes, err)
		}

		apply(v)
		stats.Commands++
		stats.Bytes += n
	}

	return stats, nil
}

// Truncate cuts the log at path to size bytes. After a replay that stopped
// at an incomplete trailing fragment, truncating to ReplayStats.Bytes puts
// the next append on a record boundary.
func Truncate(path string, size int) error {
	if err := os.Truncate(path, int64(size)); err != nil {
		return fmt.Errorf("aof: truncate %s: %w", path, err)
	}
	return nil
}
