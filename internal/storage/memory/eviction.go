package memory

import (
	"math"
	"sort"
)

// MemoryLimit returns the memory budget in bytes.
func (s *Store) MemoryLimit() uint64 {
	return s.memoryLimit
}

// SetMemoryLimit changes the memory budget. Eviction against the new budget
// happens on the next write.
func (s *Store) SetMemoryLimit(limit uint64) {
	s.memoryLimit = limit
}

// EstimateMemory recomputes estimated usage as the sum over all entries of
// key length + value length + the per-entry overhead.
func (s *Store) EstimateMemory() uint64 {
	var total uint64
	for key, e := range s.entries {
		total += s.entrySize(key, e.Value)
	}
	s.used = total
	return total
}

func (s *Store) entrySize(key string, value []byte) uint64 {
	return uint64(len(key)) + uint64(len(value)) + s.entryOverhead
}

// EvictIfOverBudget evicts entries in ascending access-count order when the
// estimated memory exceeds the budget, until usage falls to 80% of the
// budget. It returns the number of keys evicted.
func (s *Store) EvictIfOverBudget() int {
	return s.evict("", 0)
}

// evictFor runs eviction ahead of writing value at key. Usage is projected
// as if the write had already happened.
func (s *Store) evictFor(key string, value []byte) int {
	incoming := int64(s.entrySize(key, value))
	if old, ok := s.entries[key]; ok {
		incoming -= int64(s.entrySize(key, old.Value))
	}
	return s.evict(key, incoming)
}

type victim struct {
	key         string
	size        uint64
	accessCount uint64
	lastAccess  int64
}

// evict removes victims other than exclude until used+incoming is at most
// 80% of the budget. Victims are ordered by access count, then least recent
// access, then key.
func (s *Store) evict(exclude string, incoming int64) int {
	if s.memoryLimit == 0 {
		return 0
	}

	projected := addSigned(s.used, incoming)
	if projected <= s.memoryLimit {
		return 0
	}
	target := s.memoryLimit - s.memoryLimit/5

	victims := make([]victim, 0, len(s.entries))
	for key, e := range s.entries {
		if key == exclude {
			continue
		}
		victims = append(victims, victim{
			key:         key,
			size:        s.entrySize(key, e.Value),
			accessCount: e.AccessCount,
			lastAccess:  e.LastAccess,
		})
	}
	sort.Slice(victims, func(i, j int) bool {
		a, b := victims[i], victims[j]
		if a.accessCount != b.accessCount {
			return a.accessCount < b.accessCount
		}
		if a.lastAccess != b.lastAccess {
			return a.lastAccess < b.lastAccess
		}
		return a.key < b.key
	})

	evicted := 0
	for _, v := range victims {
		if projected <= target {
			break
		}
		s.remove(v.key)
		projected = addSigned(projected, -int64(v.size))
		evicted++
	}

	s.evictionsTotal += uint64(evicted)
	return evicted
}

// addSigned applies delta to u, clamping at 0 and math.MaxUint64.
func addSigned(u uint64, delta int64) uint64 {
	if delta < 0 {
		d := uint64(-delta)
		if d > u {
			return 0
		}
		return u - d
	}
	d := uint64(delta)
	if u > math.MaxUint64-d {
		return math.MaxUint64
	}
	return u + d
}
