package memory

// ExpireAt returns the expiry index entry for key.
func (s *Store) ExpireAt(key string) (int64, bool) {
	at, ok := s.expires[key]
	return at, ok
}

// Expires returns the number of keys in the expiry index.
func (s *Store) Expires() int {
	return len(s.expires)
}

// Sweep removes every key whose expiration has passed and returns how many
// it removed. It walks the expiry index only, so its cost is proportional to
// the number of keys with a TTL.
func (s *Store) Sweep() int {
	now := s.nowMs()
	removed := 0
	for key, at := range s.expires {
		if now < at {
			continue
		}
		// Deleting during range is safe for Go maps.
		s.remove(key)
		removed++
	}
	s.expiredTotal += uint64(removed)
	return removed
}
