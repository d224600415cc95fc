package memory

import (
	"fmt"
	"math"
	"testing"
	"time"
)

func TestEviction_DisabledWithZeroLimit(t *testing.T) {
	store := New(WithMemoryLimit(0))
	for i := 0; i < 100; i++ {
		if n := store.Set(fmt.Sprintf("k%d", i), make([]byte, 1024), 0); n != 0 {
			t.Fatalf("Set evicted %d keys with eviction disabled", n)
		}
	}
	if store.Len() != 100 {
		t.Fatalf("Len = %d, want 100", store.Len())
	}
}

func TestEviction_BelowLimit(t *testing.T) {
	store := New(WithMemoryLimit(1000), WithEntryOverhead(0))
	store.Set("a", make([]byte, 500), 0)
	store.Set("b", make([]byte, 498), 0)

	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}
	if got := store.Stats().EvictionsTotal; got != 0 {
		t.Fatalf("EvictionsTotal = %d, want 0", got)
	}
}

func TestEviction_EvictsToEightyPercent(t *testing.T) {
	const limit = 10000
	store := New(WithMemoryLimit(limit))

	for i := 0; i < 200; i++ {
		store.Set(fmt.Sprintf("key:%03d", i), make([]byte, 100), 0)
		if used := store.EstimateMemory(); used > limit {
			t.Fatalf("after set %d: used %d exceeds limit %d", i, used, limit)
		}
	}

	if got := store.Stats().EvictionsTotal; got == 0 {
		t.Fatal("expected evictions")
	}
}

func TestEviction_AfterTriggerUsageAtMostEightyPercent(t *testing.T) {
	store := New(WithMemoryLimit(1000), WithEntryOverhead(0))
	for i := 0; i < 9; i++ {
		store.Set(fmt.Sprintf("k%d", i), make([]byte, 98), 0)
	}
	// 9 * 100 = 900; the next write projects 1000+ and must trigger.
	evicted := store.Set("k9", make([]byte, 198), 0)
	if evicted == 0 {
		t.Fatal("expected the write to trigger eviction")
	}
	if used := store.EstimateMemory(); used > 800 {
		t.Fatalf("used = %d, want <= 800", used)
	}
	if _, ok := store.Inspect("k9"); !ok {
		t.Fatal("the key being written must survive eviction")
	}
	if got := store.Stats().EvictionsTotal; got != uint64(evicted) {
		t.Fatalf("EvictionsTotal = %d, want %d", got, evicted)
	}
}

func TestEviction_LowestAccessCountFirst(t *testing.T) {
	clock := newFakeClock()
	store := New(WithMemoryLimit(1000), WithEntryOverhead(0), WithClock(clock.Now))

	// Four keys of 200 bytes each: 800 used.
	for _, key := range []string{"hot", "warm", "cold", "idle"} {
		store.Set(key, make([]byte, 200-len(key)), 0)
		clock.Advance(time.Millisecond)
	}
	for i := 0; i < 5; i++ {
		store.Get("hot")
	}
	for i := 0; i < 2; i++ {
		store.Get("warm")
	}
	store.Get("cold")

	// Projected 800+300 > 1000 with target 800: two victims.
	store.Set("new", make([]byte, 297), 0)

	if _, ok := store.Inspect("idle"); ok {
		t.Fatal("idle (access count 1) should be evicted first")
	}
	if _, ok := store.Inspect("cold"); ok {
		t.Fatal("cold (access count 2) should be evicted second")
	}
	for _, key := range []string{"hot", "warm", "new"} {
		if _, ok := store.Inspect(key); !ok {
			t.Fatalf("%s should survive", key)
		}
	}
}

func TestEviction_TieBreakOldestAccess(t *testing.T) {
	clock := newFakeClock()
	store := New(WithMemoryLimit(300), WithEntryOverhead(0), WithClock(clock.Now))

	store.Set("b", make([]byte, 99), 0)
	clock.Advance(time.Millisecond)
	store.Set("a", make([]byte, 99), 0)
	clock.Advance(time.Millisecond)

	// 200 used; writing 130 projects 330 > 300, target 240.
	store.Set("c", make([]byte, 129), 0)

	if _, ok := store.Inspect("b"); ok {
		t.Fatal("b was accessed longest ago and should be evicted")
	}
	if _, ok := store.Inspect("a"); !ok {
		t.Fatal("a should survive")
	}
}

func TestEviction_SetMemoryLimit(t *testing.T) {
	store := New(WithMemoryLimit(0), WithEntryOverhead(0))
	for i := 0; i < 10; i++ {
		store.Set(fmt.Sprintf("k%d", i), make([]byte, 98), 0)
	}

	store.SetMemoryLimit(500)
	if store.MemoryLimit() != 500 {
		t.Fatalf("MemoryLimit = %d, want 500", store.MemoryLimit())
	}

	evicted := store.EvictIfOverBudget()
	if evicted != 6 {
		t.Fatalf("EvictIfOverBudget = %d, want 6", evicted)
	}
	if used := store.EstimateMemory(); used > 400 {
		t.Fatalf("used = %d, want <= 400", used)
	}
}

func TestEviction_ReplacementAccountsForOldValue(t *testing.T) {
	store := New(WithMemoryLimit(1000), WithEntryOverhead(0))
	store.Set("a", make([]byte, 499), 0)
	store.Set("b", make([]byte, 499), 0)

	// Replacing b with a same-sized value must not evict.
	if n := store.Set("b", make([]byte, 499), 0); n != 0 {
		t.Fatalf("replacement evicted %d keys", n)
	}
}

func TestEviction_HugeLimitNeverEvicts(t *testing.T) {
	limits := []uint64{math.MaxInt64 + 1, math.MaxUint64 - 1, math.MaxUint64}
	for _, limit := range limits {
		t.Run(fmt.Sprintf("limit_%d", limit), func(t *testing.T) {
			store := New(WithMemoryLimit(limit))
			for i := 0; i < 50; i++ {
				if n := store.Set(fmt.Sprintf("k%d", i), make([]byte, 64), 0); n != 0 {
					t.Fatalf("Set evicted %d keys", n)
				}
			}
			store.SetMemoryLimit(limit)
			store.Set("k0", make([]byte, 128), 0)

			if store.Len() != 50 {
				t.Fatalf("Len = %d, want 50", store.Len())
			}
			if got := store.Stats().EvictionsTotal; got != 0 {
				t.Fatalf("EvictionsTotal = %d, want 0", got)
			}
		})
	}
}

func TestAddSigned(t *testing.T) {
	tests := []struct {
		u     uint64
		delta int64
		want  uint64
	}{
		{10, 5, 15},
		{10, -5, 5},
		{10, -20, 0},
		{math.MaxUint64 - 1, 5, math.MaxUint64},
		{math.MaxUint64, math.MinInt64, math.MaxUint64 - 1<<63},
	}
	for _, tt := range tests {
		if got := addSigned(tt.u, tt.delta); got != tt.want {
			t.Errorf("addSigned(%d, %d) = %d, want %d", tt.u, tt.delta, got, tt.want)
		}
	}
}
