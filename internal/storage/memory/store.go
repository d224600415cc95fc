package memory

import "time"

// Defaults for memory accounting.
const (
	// DefaultMemoryLimit is the default memory budget (100MB).
	DefaultMemoryLimit uint64 = 100 << 20

	// DefaultEntryOverhead is the fixed per-entry cost added to the key and
	// value lengths when estimating memory.
	DefaultEntryOverhead uint64 = 64
)

// Entry is a stored value with its TTL and access bookkeeping.
type Entry struct {
	Value []byte

	// ExpireAt is the absolute expiration in Unix milliseconds; 0 means the
	// key has no TTL.
	ExpireAt int64

	// AccessCount starts at 1 on creation and grows by one per successful read.
	AccessCount uint64

	// LastAccess is the Unix millisecond time of creation or the latest read.
	LastAccess int64
}

// HasTTL reports whether the entry has an expiration.
func (e *Entry) HasTTL() bool {
	return e.ExpireAt > 0
}

func (e *Entry) expiredAt(nowMs int64) bool {
	return e.ExpireAt > 0 && nowMs >= e.ExpireAt
}

// Store is the key space.
type Store struct {
	entries map[string]*Entry
	expires map[string]int64

	memoryLimit   uint64
	entryOverhead uint64

	// used tracks the memory estimate incrementally; EstimateMemory
	// recomputes it from scratch.
	used           uint64
	evictionsTotal uint64
	expiredTotal   uint64

	now func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithMemoryLimit sets the memory budget in bytes. Zero disables eviction.
func WithMemoryLimit(limit uint64) Option {
	return func(s *Store) {
		s.memoryLimit = limit
	}
}

// WithEntryOverhead sets the fixed per-entry overhead used by EstimateMemory.
func WithEntryOverhead(overhead uint64) Option {
	return func(s *Store) {
		s.entryOverhead = overhead
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		entries:       make(map[string]*Entry),
		expires:       make(map[string]int64),
		memoryLimit:   DefaultMemoryLimit,
		entryOverhead: DefaultEntryOverhead,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Now returns the current time of the store's clock.
func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) nowMs() int64 {
	return s.now().UnixMilli()
}

// Get returns the value stored at key and records the access.
//
// An expired key is removed from both the key space and the expiry index
// and reported as a miss. The returned slice must not be modified.
func (s *Store) Get(key string) ([]byte, bool) {
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}

	now := s.nowMs()
	if e.expiredAt(now) {
		s.remove(key)
		s.expiredTotal++
		return nil, false
	}

	e.AccessCount++
	e.LastAccess = now
	return e.Value, true
}

// Set stores value at key, replacing any previous entry and its TTL.
//
// expireAt is an absolute Unix millisecond timestamp, or 0 for no TTL.
// The eviction policy runs first, accounting for the size of this write;
// the key being written is never chosen as a victim. Set returns the number
// of keys evicted to make room.
func (s *Store) Set(key string, value []byte, expireAt int64) int {
	evicted := s.evictFor(key, value)

	now := s.nowMs()
	if old, ok := s.entries[key]; ok {
		s.used -= s.entrySize(key, old.Value)
	}
	s.used += s.entrySize(key, value)
	s.entries[key] = &Entry{
		Value:       value,
		ExpireAt:    expireAt,
		AccessCount: 1,
		LastAccess:  now,
	}

	if expireAt > 0 {
		s.expires[key] = expireAt
	} else {
		delete(s.expires, key)
	}

	return evicted
}

// Delete removes the given keys and returns how many live keys it removed.
//
// A key that had already expired is still physically removed but does not
// count toward the result.
func (s *Store) Delete(keys ...string) int {
	now := s.nowMs()
	removed := 0
	for _, key := range keys {
		e, ok := s.entries[key]
		if !ok {
			continue
		}
		s.remove(key)
		if e.expiredAt(now) {
			s.expiredTotal++
			continue
		}
		removed++
	}
	return removed
}

// Inspect returns a copy of the entry at key without recording an access
// or applying lazy expiry.
func (s *Store) Inspect(key string) (Entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len returns the number of keys, including expired keys not yet removed.
func (s *Store) Len() int {
	return len(s.entries)
}

// remove deletes key from the key space and the expiry index.
func (s *Store) remove(key string) {
	e, ok := s.entries[key]
	if !ok {
		return
	}
	s.used -= s.entrySize(key, e.Value)
	delete(s.entries, key)
	delete(s.expires, key)
}

// Stats is a point-in-time view of store counters.
type Stats struct {
	Keys    int
	Expires int

	EstimatedMemory uint64
	MemoryLimit     uint64

	EvictionsTotal uint64
	ExpiredTotal   uint64
}

// Stats returns the store counters. It runs in constant time.
func (s *Store) Stats() Stats {
	return Stats{
		Keys:            len(s.entries),
		Expires:         len(s.expires),
		EstimatedMemory: s.used,
		MemoryLimit:     s.memoryLimit,
		EvictionsTotal:  s.evictionsTotal,
		ExpiredTotal:    s.expiredTotal,
	}
}
