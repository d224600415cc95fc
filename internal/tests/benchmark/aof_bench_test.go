package benchmark

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/respkv/internal/storage/aof"
	"github.com/yndnr/respkv/pkg/resp"
)

// BenchmarkAOFAppend benchmarks appends under each fsync policy.
func BenchmarkAOFAppend(b *testing.B) {
	for _, policy := range []aof.FsyncPolicy{aof.FsyncEverySec, aof.FsyncNo} {
		b.Run(string(policy), func(b *testing.B) {
			l, err := aof.Open(aof.Config{
				Path:   filepath.Join(b.TempDir(), "appendonly.aof"),
				Policy: policy,
			})
			if err != nil {
				b.Fatalf("Open failed: %v", err)
			}
			defer l.Close()

			record := resp.Encode(resp.Command("SET", "bench", string(newValue(128))))

			b.SetBytes(int64(len(record)))
			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if err := l.Append(record, time.Now()); err != nil {
					b.Fatalf("Append failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkAOFReplay benchmarks replaying logs of various lengths.
func BenchmarkAOFReplay(b *testing.B) {
	for _, count := range SmallKeyCounts {
		b.Run(fmt.Sprintf("commands_%d", count), func(b *testing.B) {
			path := filepath.Join(b.TempDir(), "appendonly.aof")
			l, err := aof.Open(aof.Config{Path: path, Policy: aof.FsyncNo})
			if err != nil {
				b.Fatalf("Open failed: %v", err)
			}
			value := string(newValue(128))
			now := time.Now()
			for i := 0; i < count; i++ {
				req := resp.Command("SET", fmt.Sprintf("key:%08d", i), value)
				if err := l.Append(resp.Encode(req), now); err != nil {
					b.Fatalf("Append failed: %v", err)
				}
			}
			if err := l.Close(); err != nil {
				b.Fatalf("Close failed: %v", err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				applied := 0
				if _, err := aof.Replay(path, func(resp.Value) { applied++ }, nil); err != nil {
					b.Fatalf("Replay failed: %v", err)
				}
				if applied != count {
					b.Fatalf("replayed %d commands, want %d", applied, count)
				}
			}
		})
	}
}
