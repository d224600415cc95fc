package memory

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

// Digest returns an order-independent fingerprint of the live dataset.
//
// Each live key contributes the MurmurHash3 of its key, value and whether it
// carries a TTL; contributions are combined with XOR. Access counters and
// absolute expiration times are excluded, so two stores built by the same
// sequence of writes at different times share a digest. An empty store
// digests to 0.
func (s *Store) Digest() uint64 {
	now := s.nowMs()
	var digest uint64
	var lenBuf [4]byte
	for key, e := range s.entries {
		if e.expiredAt(now) {
			continue
		}

		h := murmur3.New64()
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(key)))
		h.Write(lenBuf[:])
		h.Write([]byte(key))
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(e.Value)))
		h.Write(lenBuf[:])
		h.Write(e.Value)
		if e.HasTTL() {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}

		digest ^= h.Sum64()
	}
	return digest
}
