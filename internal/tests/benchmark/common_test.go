package benchmark

import (
	"crypto/rand"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/respkv/internal/storage/memory"
)

// KeyCounts defines the store sizes used by scaling benchmarks.
var KeyCounts = []int{10000, 100000, 500000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000}

// newKey returns a unique, time-ordered key.
func newKey() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, _ := ulid.New(ulid.Timestamp(time.Now()), entropy)
	return "key:" + id.String()
}

// newValue returns a value of n random bytes.
func newValue(n int) []byte {
	v := make([]byte, n)
	_, _ = rand.Read(v)
	return v
}

// prefillStore writes count keys with 128-byte values; every fourth key
// gets a one hour TTL.
func prefillStore(store *memory.Store, count int) []string {
	keys := make([]string, count)
	expireAt := store.Now().Add(time.Hour).UnixMilli()
	value := newValue(128)
	for i := 0; i < count; i++ {
		keys[i] = fmt.Sprintf("key:%08d", i)
		var ttl int64
		if i%4 == 0 {
			ttl = expireAt
		}
		store.Set(keys[i], value, ttl)
	}
	return keys
}

// reportMemory reports heap usage after a forced GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various store sizes.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
