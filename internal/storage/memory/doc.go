// Package memory provides the in-memory key space for respkv.
//
// The store keeps a primary map from key to Entry and a parallel expiry
// index holding the absolute expiration of every key that has a TTL. The two
// structures are updated together by every mutating operation, so a key has
// an index entry exactly when its Entry carries an expiration.
//
// Features:
//
//   - Lazy Expiry: Get and Delete remove keys whose expiration has passed
//   - Periodic Sweep: Sweep walks only the expiry index
//   - Memory Budget: estimated usage is tracked on every write
//   - LFU Eviction: lowest access count first, down to 80% of the budget
//   - Digest: order-independent dataset fingerprint for verification
//
// Thread Safety:
//
// A Store is not safe for concurrent use. It is owned by the server event
// loop, which runs every command to completion on a single goroutine.
package memory
